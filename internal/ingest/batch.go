// UALscope - Microsoft 365 Unified Audit Log Analysis
// Copyright 2026 UALscope contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ualscope/ualscope

package ingest

import (
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"

	"github.com/ualscope/ualscope/internal/logging"
	"github.com/ualscope/ualscope/internal/models"
)

// UploadFile is one file of an upload batch.
type UploadFile struct {
	Name   string
	Reader io.Reader
}

// ErrBatchRejected is returned when any uploaded file is not a CSV.
// The whole batch is refused before any file is parsed.
type ErrBatchRejected struct {
	FileName string
}

func (e *ErrBatchRejected) Error() string {
	return fmt.Sprintf("batch rejected: %q is not a .csv file", e.FileName)
}

// ProcessBatch parses an upload batch into normalized entries.
//
// Every file name must end in ".csv" (case-insensitive) or the batch is
// rejected outright. Files then parse sequentially; a file that fails to
// parse contributes zero rows and an error note in its summary, but the
// remaining files still load.
func ProcessBatch(files []UploadFile) ([]models.LogEntry, *models.UploadSummary, error) {
	for _, f := range files {
		if !strings.HasSuffix(strings.ToLower(f.Name), ".csv") {
			return nil, nil, &ErrBatchRejected{FileName: f.Name}
		}
	}

	summary := &models.UploadSummary{
		BatchID: uuid.NewString(),
		Files:   make([]models.FileSummary, 0, len(files)),
	}

	var entries []models.LogEntry
	for _, f := range files {
		fileSummary := models.FileSummary{Name: f.Name}

		rows, err := ParseCSV(f.Reader)
		if err != nil {
			logging.Error().
				Err(err).
				Str("file", f.Name).
				Str("batch_id", summary.BatchID).
				Msg("File failed to parse, continuing batch")
			fileSummary.Error = err.Error()
			summary.Files = append(summary.Files, fileSummary)
			continue
		}

		for _, row := range rows {
			entries = append(entries, Project(row, f.Name))
		}
		fileSummary.Rows = len(rows)
		summary.Files = append(summary.Files, fileSummary)
		summary.TotalRows += len(rows)
	}

	logging.Info().
		Str("batch_id", summary.BatchID).
		Int("files", len(files)).
		Int("rows", summary.TotalRows).
		Msg("Upload batch processed")

	return entries, summary, nil
}
