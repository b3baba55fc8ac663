// UALscope - Microsoft 365 Unified Audit Log Analysis
// Copyright 2026 UALscope contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ualscope/ualscope

// Package ingest turns uploaded UAL CSV exports into normalized log
// entries: CSV rows are parsed header-first, each row's embedded AuditData
// JSON is decoded, and the projected entry fields are computed once at
// ingest time.
//
// Degradation is per record: a row whose AuditData fails to decode is kept
// with an empty payload, a file that fails to parse contributes zero rows,
// and only a non-CSV filename rejects the whole batch.
package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

// RawRow is one CSV row keyed by its header names.
type RawRow map[string]string

// ParseCSV reads a whole UAL CSV export. The first record is the header;
// every following record becomes a RawRow. Short records are padded with
// empty strings so a truncated trailing field never drops a row.
func ParseCSV(r io.Reader) ([]RawRow, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("empty file")
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	var rows []RawRow
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", len(rows)+2, err)
		}

		empty := true
		for _, field := range record {
			if field != "" {
				empty = false
				break
			}
		}
		if empty {
			continue
		}

		row := make(RawRow, len(header))
		for i, name := range header {
			if i < len(record) {
				row[name] = record[i]
			} else {
				row[name] = ""
			}
		}
		rows = append(rows, row)
	}

	return rows, nil
}
