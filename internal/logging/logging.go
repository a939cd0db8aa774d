package logging

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/yuya-takeyama/s3-tree-mirror/pkg/logger"
)

// Logger prints run-level messages: banners, warnings and the final summary.
type Logger struct {
	quiet  bool
	out    io.Writer
	errOut io.Writer
}

// NewLogger creates a new logger writing to stdout and stderr
func NewLogger(quiet bool) *Logger {
	return &Logger{quiet: quiet, out: os.Stdout, errOut: os.Stderr}
}

// Info logs an info message
func (l *Logger) Info(format string, args ...interface{}) {
	if !l.quiet {
		fmt.Fprintf(l.out, format+"\n", args...)
	}
}

// Error logs an error message
func (l *Logger) Error(format string, args ...interface{}) {
	fmt.Fprintf(l.errOut, "ERROR: "+format+"\n", args...)
}

// PrintSummary prints the totals of a mirror run.
// In quiet mode it is printed only when some copies failed.
func (l *Logger) PrintSummary(summary logger.Summary, dryRun bool, duration time.Duration) {
	if l.quiet && summary.Failed == 0 {
		return
	}

	verb := "Copied"
	if dryRun {
		verb = "Would copy"
	}

	fmt.Fprintln(l.out)
	fmt.Fprintln(l.out, "=== Summary ===")
	fmt.Fprintf(l.out, "Folders created: %d\n", summary.FoldersCreated)
	fmt.Fprintf(l.out, "%s: %d files (%s)\n", verb, summary.FilesCopied, formatBytes(summary.BytesCopied))
	fmt.Fprintf(l.out, "Skipped: %d files\n", summary.FilesSkipped)
	if summary.Failed > 0 {
		fmt.Fprintf(l.out, "Failed: %d\n", summary.Failed)
	}
	fmt.Fprintf(l.out, "Duration: %s\n", duration.Round(time.Millisecond))
}

// formatBytes formats bytes in human readable format
func formatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
