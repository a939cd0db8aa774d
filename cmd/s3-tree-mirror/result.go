package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/yuya-takeyama/s3-tree-mirror/pkg/config"
	"github.com/yuya-takeyama/s3-tree-mirror/pkg/logger"
)

// MirrorResult represents what a run did, or would do in a dry run
type MirrorResult struct {
	RunID       string        `json:"run_id"`
	DryRun      bool          `json:"dry_run"`
	Source      string        `json:"source"`
	Destination string        `json:"destination"`
	Root        string        `json:"root"`
	Files       []ResultFile  `json:"files"`
	Errors      []ErrorFile   `json:"errors"`
	Summary     ResultSummary `json:"summary"`
	FatalError  string        `json:"fatal_error,omitempty"`
}

type ResultFile struct {
	Action string `json:"action"` // "mkdir", "copied", "skipped"
	Source string `json:"source,omitempty"`
	Target string `json:"target"`
	Size   int64  `json:"size,omitempty"`
	Reason string `json:"reason,omitempty"`
}

type ErrorFile struct {
	Action string `json:"action"`
	Source string `json:"source"`
	Error  string `json:"error"`
}

type ResultSummary struct {
	FoldersCreated int   `json:"folders_created"`
	Copied         int   `json:"copied"`
	Skipped        int   `json:"skipped"`
	Failed         int   `json:"failed"`
	BytesCopied    int64 `json:"bytes_copied"`
}

func newMirrorResult(runID string, cfg *config.Config, events []logger.Event, fatal error) MirrorResult {
	result := MirrorResult{
		RunID:       runID,
		DryRun:      cfg.DryRun,
		Source:      cfg.Source,
		Destination: cfg.Destination,
		Root:        cfg.Root,
		Files:       []ResultFile{},
		Errors:      []ErrorFile{},
	}

	for _, e := range events {
		switch e.Type {
		case logger.EventCreateFolder:
			result.Files = append(result.Files, ResultFile{Action: "mkdir", Target: e.Target})
			result.Summary.FoldersCreated++
		case logger.EventCopy:
			result.Files = append(result.Files, ResultFile{
				Action: "copied",
				Source: e.Source,
				Target: e.Target,
				Size:   e.Size,
			})
			result.Summary.Copied++
			result.Summary.BytesCopied += e.Size
		case logger.EventSkip:
			result.Files = append(result.Files, ResultFile{
				Action: "skipped",
				Target: e.Target,
				Reason: e.Reason,
			})
			result.Summary.Skipped++
		case logger.EventError:
			errorFile := ErrorFile{Action: e.Operation, Source: e.Source}
			if e.Err != nil {
				errorFile.Error = e.Err.Error()
			}
			result.Errors = append(result.Errors, errorFile)
			result.Summary.Failed++
		}
	}

	if fatal != nil {
		result.FatalError = fatal.Error()
	}
	return result
}

func writeMirrorResult(path string, result MirrorResult) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	return nil
}
