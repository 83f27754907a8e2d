// Package report renders the per-run migration summary: what was
// downloaded, what was uploaded, and which days failed. The summary is the
// durable record of a run; console output is only a progress view.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/andybalholm/brotli"
)

type DayFailure struct {
	DayNumber int    `json:"dayNumber"`
	Error     string `json:"error"`
}

type CourseResult struct {
	SourceID      string       `json:"sourceId"`
	Title         string       `json:"title"`
	DestinationID string       `json:"destinationId,omitempty"`
	DaysTotal     int          `json:"daysTotal"`
	DaysCreated   int          `json:"daysCreated"`
	DaysUpdated   int          `json:"daysUpdated"`
	DaysSkipped   int          `json:"daysSkipped"`
	SkipReason    string       `json:"skipReason,omitempty"`
	Failures      []DayFailure `json:"failures,omitempty"`
}

type RunSummary struct {
	RunID      string         `json:"runId"`
	Mode       string         `json:"mode"`
	StartedAt  time.Time      `json:"startedAt"`
	FinishedAt time.Time      `json:"finishedAt"`
	Courses    []CourseResult `json:"courses"`
}

// HasFailures reports whether any course recorded a per-day failure.
func (s RunSummary) HasFailures() bool {
	for _, c := range s.Courses {
		if len(c.Failures) > 0 {
			return true
		}
	}
	return false
}

// Write persists the summary as indented JSON under dir and returns the
// file path.
func Write(dir string, s RunSummary) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("report: create dir %s: %w", dir, err)
	}

	b, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return "", fmt.Errorf("report: marshal summary: %w", err)
	}

	path := filepath.Join(dir, fmt.Sprintf("run_%s.json", s.RunID))
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return "", fmt.Errorf("report: write %s: %w", path, err)
	}
	return path, nil
}

// WriteCompressed writes a brotli-compressed copy of the summary, the form
// shipped to the SFTP drop.
func WriteCompressed(dir string, s RunSummary) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("report: create dir %s: %w", dir, err)
	}

	b, err := json.Marshal(s)
	if err != nil {
		return "", fmt.Errorf("report: marshal summary: %w", err)
	}

	path := filepath.Join(dir, fmt.Sprintf("run_%s.json.br", s.RunID))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("report: create %s: %w", path, err)
	}

	w := brotli.NewWriter(f)
	if _, err := w.Write(b); err != nil {
		_ = f.Close()
		return "", fmt.Errorf("report: compress %s: %w", path, err)
	}
	if err := w.Close(); err != nil {
		_ = f.Close()
		return "", fmt.Errorf("report: flush %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("report: close %s: %w", path, err)
	}
	return path, nil
}
