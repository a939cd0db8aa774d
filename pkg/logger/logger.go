package logger

import (
	"fmt"
	"io"
	"os"
	"path"
	"strings"
)

// Logger receives one event per mirrored entry.
type Logger interface {
	CreateFolder(path string)
	Copy(source, target string, size int64)
	Skip(path, reason string)
	Error(operation, path string, err error)
	Debug(message string)
}

// SyncLogger prints events in the style of `aws s3 sync`.
type SyncLogger struct {
	IsDryRun  bool
	IsQuiet   bool
	IsVerbose bool

	// Out and ErrOut default to os.Stdout and os.Stderr.
	Out    io.Writer
	ErrOut io.Writer
}

func (l *SyncLogger) CreateFolder(path string) {
	l.printf("mkdir: %s\n", path)
}

func (l *SyncLogger) Copy(source, target string, size int64) {
	l.printf("copy: %s to %s\n", source, target)
}

func (l *SyncLogger) Skip(path, reason string) {
	if l.IsVerbose {
		l.printf("skip: %s (%s)\n", path, reason)
	}
}

func (l *SyncLogger) Error(operation, path string, err error) {
	fmt.Fprintf(l.errOut(), "Could not %s %s: %v\n", operation, displayName(path), err)
}

func (l *SyncLogger) Debug(message string) {
	if l.IsVerbose {
		fmt.Fprintf(l.errOut(), "DEBUG: %s\n", message)
	}
}

func (l *SyncLogger) printf(format string, args ...interface{}) {
	if l.IsQuiet {
		return
	}
	if l.IsDryRun {
		format = "(dryrun) " + format
	}
	fmt.Fprintf(l.out(), format, args...)
}

func (l *SyncLogger) out() io.Writer {
	if l.Out != nil {
		return l.Out
	}
	return os.Stdout
}

func (l *SyncLogger) errOut() io.Writer {
	if l.ErrOut != nil {
		return l.ErrOut
	}
	return os.Stderr
}

// displayName keeps the full ID but leads with the base name, so the failed file
// is recognisable at a glance.
func displayName(p string) string {
	base := path.Base(strings.TrimSuffix(p, "/"))
	if base == p || base == "." || base == "/" {
		return p
	}
	return fmt.Sprintf("%s (%s)", base, p)
}

type NullLogger struct{}

func (l *NullLogger) CreateFolder(path string)                {}
func (l *NullLogger) Copy(source, target string, size int64)  {}
func (l *NullLogger) Skip(path, reason string)                {}
func (l *NullLogger) Error(operation, path string, err error) {}
func (l *NullLogger) Debug(message string)                    {}

type multiLogger []Logger

// Multi fans every event out to each of loggers in order.
func Multi(loggers ...Logger) Logger {
	return multiLogger(loggers)
}

func (m multiLogger) CreateFolder(path string) {
	for _, l := range m {
		l.CreateFolder(path)
	}
}

func (m multiLogger) Copy(source, target string, size int64) {
	for _, l := range m {
		l.Copy(source, target, size)
	}
}

func (m multiLogger) Skip(path, reason string) {
	for _, l := range m {
		l.Skip(path, reason)
	}
}

func (m multiLogger) Error(operation, path string, err error) {
	for _, l := range m {
		l.Error(operation, path, err)
	}
}

func (m multiLogger) Debug(message string) {
	for _, l := range m {
		l.Debug(message)
	}
}
