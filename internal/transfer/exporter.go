// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package transfer

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/olegiv/festivo-go/internal/model"
)

// Format is an export encoding.
type Format string

// Export formats.
const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
)

// ParseFormat defaults to JSON when s is empty.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case "", FormatJSON:
		return FormatJSON, nil
	case FormatCSV:
		return FormatCSV, nil
	}
	return "", model.Validation("format", "must be json or csv")
}

// ContentType returns the MIME type of the format.
func (f Format) ContentType() string {
	if f == FormatCSV {
		return "text/csv; charset=utf-8"
	}
	return "application/json"
}

// Exporter writes transactions in a shape the Validator accepts back.
type Exporter struct {
	format Format
}

// NewExporter creates an Exporter for format.
func NewExporter(format Format) *Exporter {
	return &Exporter{format: format}
}

// WriteCollections encodes cols to w.
func (e *Exporter) WriteCollections(w io.Writer, cols []model.Collection) error {
	rows := make([]CollectionRow, 0, len(cols))
	for _, c := range cols {
		rows = append(rows, CollectionRowFrom(c))
	}
	if e.format == FormatCSV {
		records := make([][]string, 0, len(rows))
		for _, r := range rows {
			records = append(records, []string{
				r.Name, formatFloat(r.Amount), r.GroupName, r.Mode, r.Note, r.Date,
				strconv.Itoa(r.TimeHour), strconv.Itoa(r.TimeMinute), formatID(r.CreatedByAdminID),
			})
		}
		return writeCSV(w, CollectionColumns, records)
	}
	return writeJSON(w, rows)
}

// WriteExpenses encodes exps to w.
func (e *Exporter) WriteExpenses(w io.Writer, exps []model.Expense) error {
	rows := make([]ExpenseRow, 0, len(exps))
	for _, x := range exps {
		rows = append(rows, ExpenseRowFrom(x))
	}
	if e.format == FormatCSV {
		records := make([][]string, 0, len(rows))
		for _, r := range rows {
			records = append(records, []string{
				r.Item, strconv.FormatInt(r.Pieces, 10), formatFloat(r.PricePerPiece), formatFloat(r.TotalAmount),
				r.Category, r.Mode, r.Note, r.Date,
				strconv.Itoa(r.TimeHour), strconv.Itoa(r.TimeMinute), formatID(r.CreatedByAdminID),
			})
		}
		return writeCSV(w, ExpenseColumns, records)
	}
	return writeJSON(w, rows)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encoding export: %w", err)
	}
	return nil
}

func writeCSV(w io.Writer, header []string, records [][]string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("writing csv header: %w", err)
	}
	if err := cw.WriteAll(records); err != nil {
		return fmt.Errorf("writing csv rows: %w", err)
	}
	return nil
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func formatID(id *int64) string {
	if id == nil {
		return ""
	}
	return strconv.FormatInt(*id, 10)
}
