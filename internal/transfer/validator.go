// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package transfer

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"slices"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/text/cases"

	"github.com/olegiv/festivo-go/internal/model"
	"github.com/olegiv/festivo-go/internal/session"
)

// ValidationContext is the festival state a batch is checked against.
type ValidationContext struct {
	// Window is the festival's collection/expense date window.
	Window model.DateWindow
	// Groups holds group names for collections or category names for expenses.
	Groups []string
	// Modes holds collection or expense mode names.
	Modes []string
	// AdminIDs lists the festival's active admins.
	AdminIDs []int64
	// Actor is the session running the import.
	Actor session.Session
}

// Validator checks raw import batches. The zero value is ready to use.
type Validator struct{}

// NewValidator creates a Validator.
func NewValidator() *Validator {
	return &Validator{}
}

// record is one decoded row before validation.
type record map[string]any

// ValidateBatch parses raw as a JSON array of rows of the given kind and
// validates every row, stopping at the first invalid one.
func (v *Validator) ValidateBatch(raw []byte, kind Kind, vc ValidationContext) (*Batch, error) {
	if kind != KindCollection && kind != KindExpense {
		return nil, model.Validation("kind", "must be collection or expense")
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var items []json.RawMessage
	if err := dec.Decode(&items); err != nil {
		return nil, model.Validation("batch", "must be a JSON array of rows")
	}
	if dec.More() {
		return nil, model.Validation("batch", "must contain a single JSON array")
	}
	if len(items) == 0 {
		return nil, model.Validation("batch", "must contain at least one row")
	}

	records := make([]record, 0, len(items))
	for i, item := range items {
		rd := json.NewDecoder(bytes.NewReader(item))
		rd.UseNumber()
		var rec record
		if err := rd.Decode(&rec); err != nil || rec == nil {
			return nil, &RowError{Row: i + 1, Err: model.Validation("row", "must be a JSON object")}
		}
		records = append(records, rec)
	}
	return v.validateRecords(records, kind, vc)
}

// ValidateCSV reads a header row followed by data rows and validates them as
// ValidateBatch does. Empty cells count as omitted fields.
func (v *Validator) ValidateCSV(r io.Reader, kind Kind, vc ValidationContext) (*Batch, error) {
	if kind != KindCollection && kind != KindExpense {
		return nil, model.Validation("kind", "must be collection or expense")
	}

	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, model.Validation("batch", "must contain at least one row")
	}
	if err != nil {
		return nil, model.Validation("batch", "must be valid CSV")
	}
	for i := range header {
		header[i] = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(header[i], "\ufeff")))
	}

	var records []record
	for {
		fields, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, &RowError{Row: len(records) + 1, Err: model.Validation("row", "is not valid CSV")}
		}
		rec := make(record, len(header))
		for i, name := range header {
			if i < len(fields) && strings.TrimSpace(fields[i]) != "" {
				rec[name] = fields[i]
			}
		}
		records = append(records, rec)
	}
	if len(records) == 0 {
		return nil, model.Validation("batch", "must contain at least one row")
	}
	return v.validateRecords(records, kind, vc)
}

func (v *Validator) validateRecords(records []record, kind Kind, vc ValidationContext) (*Batch, error) {
	m := newMatcher()
	batch := &Batch{Kind: kind}

	for i, rec := range records {
		switch kind {
		case KindCollection:
			c, err := validateCollection(rec, vc, m)
			if err != nil {
				return nil, &RowError{Row: i + 1, Err: err}
			}
			batch.Collections = append(batch.Collections, c)
		case KindExpense:
			e, err := validateExpense(rec, vc, m)
			if err != nil {
				return nil, &RowError{Row: i + 1, Err: err}
			}
			batch.Expenses = append(batch.Expenses, e)
		}
	}
	return batch, nil
}

func validateCollection(rec record, vc ValidationContext, m *matcher) (model.Collection, error) {
	var c model.Collection
	var err error

	// Required and bounded text.
	if c.Name, err = requiredString(rec, "name", MaxTitleLength); err != nil {
		return c, err
	}
	groupName, err := requiredString(rec, "group_name", 0)
	if err != nil {
		return c, err
	}
	mode, err := requiredString(rec, "mode", 0)
	if err != nil {
		return c, err
	}
	rawDate, err := requiredString(rec, "date", 0)
	if err != nil {
		return c, err
	}
	if c.Note, err = optionalString(rec, "note", MaxNoteLength); err != nil {
		return c, err
	}

	// Amounts.
	amount, present, err := number(rec, "amount")
	if err != nil {
		return c, err
	}
	if !present {
		return c, model.Validation("amount", "is required")
	}
	if amount <= 0 {
		return c, model.Validation("amount", "must be greater than 0")
	}
	c.Amount = amount

	// References.
	if c.GroupName, err = m.match("group", groupName, vc.Groups); err != nil {
		return c, err
	}
	if c.Mode, err = m.match("mode", mode, vc.Modes); err != nil {
		return c, err
	}

	if c.Date, err = dateInWindow(rawDate, vc.Window); err != nil {
		return c, err
	}
	if c.TimeHour, c.TimeMinute, err = timeOfDay(rec); err != nil {
		return c, err
	}
	if c.CreatedByAdminID, err = createdBy(rec, vc); err != nil {
		return c, err
	}
	return c, nil
}

func validateExpense(rec record, vc ValidationContext, m *matcher) (model.Expense, error) {
	var e model.Expense
	var err error

	if e.Item, err = requiredString(rec, "item", MaxTitleLength); err != nil {
		return e, err
	}
	category, err := requiredString(rec, "category", 0)
	if err != nil {
		return e, err
	}
	mode, err := requiredString(rec, "mode", 0)
	if err != nil {
		return e, err
	}
	rawDate, err := requiredString(rec, "date", 0)
	if err != nil {
		return e, err
	}
	if e.Note, err = optionalString(rec, "note", MaxNoteLength); err != nil {
		return e, err
	}

	pieces, present, err := number(rec, "pieces")
	if err != nil {
		return e, err
	}
	if !present {
		return e, model.Validation("pieces", "is required")
	}
	if pieces <= 0 || pieces != math.Trunc(pieces) || pieces > math.MaxInt32 {
		return e, model.Validation("pieces", "must be a positive integer")
	}
	e.Pieces = int64(pieces)

	price, present, err := number(rec, "price_per_piece")
	if err != nil {
		return e, err
	}
	if !present {
		return e, model.Validation("price_per_piece", "is required")
	}
	if price < 0 {
		return e, model.Validation("price_per_piece", "must not be negative")
	}
	e.PricePerPiece = price

	total, present, err := number(rec, "total_amount")
	if err != nil {
		return e, err
	}
	switch {
	case !present:
		total = float64(e.Pieces) * price
		if math.IsInf(total, 0) {
			return e, model.Validation("total_amount", "must be a finite number")
		}
	case total < 0:
		return e, model.Validation("total_amount", "must not be negative")
	}
	e.TotalAmount = total

	if e.Category, err = m.match("category", category, vc.Groups); err != nil {
		return e, err
	}
	if e.Mode, err = m.match("mode", mode, vc.Modes); err != nil {
		return e, err
	}

	if e.Date, err = dateInWindow(rawDate, vc.Window); err != nil {
		return e, err
	}
	if e.TimeHour, e.TimeMinute, err = timeOfDay(rec); err != nil {
		return e, err
	}
	if e.CreatedByAdminID, err = createdBy(rec, vc); err != nil {
		return e, err
	}
	return e, nil
}

// value returns rec[field], treating JSON null like an omitted field.
func (rec record) value(field string) (any, bool) {
	v, ok := rec[field]
	if !ok || v == nil {
		return nil, false
	}
	return v, true
}

func requiredString(rec record, field string, maxLen int) (string, error) {
	s, err := optionalString(rec, field, maxLen)
	if err != nil {
		return "", err
	}
	if s == "" {
		return "", model.Validation(field, "is required")
	}
	return s, nil
}

func optionalString(rec record, field string, maxLen int) (string, error) {
	v, ok := rec.value(field)
	if !ok {
		return "", nil
	}
	s, ok := v.(string)
	if !ok {
		return "", model.Validation(field, "must be a string")
	}
	s = strings.TrimSpace(s)
	if maxLen > 0 && utf8.RuneCountInString(s) > maxLen {
		return "", model.Validation(field, fmt.Sprintf("must be at most %d characters", maxLen))
	}
	return s, nil
}

// number reads a finite JSON number or numeric string.
func number(rec record, field string) (float64, bool, error) {
	v, ok := rec.value(field)
	if !ok {
		return 0, false, nil
	}

	var text string
	switch n := v.(type) {
	case json.Number:
		text = n.String()
	case string:
		text = strings.TrimSpace(n)
		if text == "" {
			return 0, false, nil
		}
	default:
		return 0, true, model.Validation(field, "must be a number")
	}

	f, err := strconv.ParseFloat(text, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return 0, true, model.Validation(field, "must be a number")
	}
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, true, model.Validation(field, "must be a finite number")
	}
	return f, true, nil
}

func integer(rec record, field string) (int64, bool, error) {
	f, present, err := number(rec, field)
	if err != nil || !present {
		return 0, present, err
	}
	if f != math.Trunc(f) || f < math.MinInt64 || f > math.MaxInt64 {
		return 0, true, model.Validation(field, "must be an integer")
	}
	return int64(f), true, nil
}

func dateInWindow(raw string, window model.DateWindow) (time.Time, error) {
	t, err := model.ParseDate(raw)
	if err != nil {
		return time.Time{}, model.Validation("date", "must be a date in YYYY-MM-DD format")
	}
	if !window.Contains(t) {
		return time.Time{}, model.Validation("date", "must be within the festival window "+window.String())
	}
	return t, nil
}

func timeOfDay(rec record) (hour, minute int, err error) {
	h, _, err := integer(rec, "time_hour")
	if err != nil {
		return 0, 0, err
	}
	if h < 0 || h > 23 {
		return 0, 0, model.Validation("time_hour", "must be between 0 and 23")
	}
	m, _, err := integer(rec, "time_minute")
	if err != nil {
		return 0, 0, err
	}
	if m < 0 || m > 59 {
		return 0, 0, model.Validation("time_minute", "must be between 0 and 59")
	}
	return int(h), int(m), nil
}

func createdBy(rec record, vc ValidationContext) (*int64, error) {
	id, present, err := integer(rec, "created_by_admin_id")
	if err != nil {
		return nil, err
	}
	if !present {
		return vc.Actor.ActorID(), nil
	}
	if !slices.Contains(vc.AdminIDs, id) {
		available := make([]string, 0, len(vc.AdminIDs))
		for _, a := range vc.AdminIDs {
			available = append(available, strconv.FormatInt(a, 10))
		}
		return nil, &model.ReferenceNotFoundError{Kind: "admin", Value: strconv.FormatInt(id, 10), Available: available}
	}
	return &id, nil
}

// matcher folds case for reference lookups. A cases.Caser keeps state, so
// each batch gets its own.
type matcher struct {
	fold cases.Caser
}

func newMatcher() *matcher {
	return &matcher{fold: cases.Fold()}
}

func (m *matcher) key(s string) string {
	return m.fold.String(strings.TrimSpace(s))
}

// match returns the canonical table value equal to input under case folding.
func (m *matcher) match(kind, input string, table []string) (string, error) {
	want := m.key(input)
	for _, candidate := range table {
		if m.key(candidate) == want {
			return candidate, nil
		}
	}
	return "", &model.ReferenceNotFoundError{Kind: kind, Value: input, Available: slices.Clone(table)}
}
