// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package model defines domain models and types used throughout the application
// including Festival, Admin, UserPassword, transactions and the activity log.
package model

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// DateLayout is the wire and storage format for calendar dates.
const DateLayout = "2006-01-02"

// Festival code constraints.
const (
	GeneratedCodeLength = 8
	MinCustomCodeLength = 6
	MaxCustomCodeLength = 12
)

var customCodePattern = regexp.MustCompile(`^[A-Z0-9-]{6,12}$`)

// Festival is a tenant: an isolated fundraising event.
type Festival struct {
	ID                 int64      `json:"id"`
	Code               string     `json:"code"`
	Name               string     `json:"name"`
	Organiser          string     `json:"organiser,omitempty"`
	RequiresPassword   bool       `json:"requires_password"`
	UserPassword       string     `json:"-"` // argon2id hash, empty when unset
	SuperAdminPassword string     `json:"-"` // argon2id hash
	CEStartDate        time.Time  `json:"-"`
	CEEndDate          time.Time  `json:"-"`
	EventStartDate     *time.Time `json:"-"`
	EventEndDate       *time.Time `json:"-"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

// Window returns the collection/expense validity window.
func (f *Festival) Window() DateWindow {
	return DateWindow{Start: f.CEStartDate, End: f.CEEndDate}
}

// TracksVisitors reports whether visitor names are attributed in access logs.
// Open festivals never challenge visitors, so there is nobody to attribute.
func (f *Festival) TracksVisitors() bool {
	return f.RequiresPassword
}

// DateWindow is an inclusive range of calendar dates.
type DateWindow struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether d falls inside the window, boundaries included.
func (w DateWindow) Contains(d time.Time) bool {
	d = TruncateDate(d)
	return !d.Before(TruncateDate(w.Start)) && !d.After(TruncateDate(w.End))
}

func (w DateWindow) String() string {
	return FormatDate(w.Start) + " to " + FormatDate(w.End)
}

// FestivalDates groups the mandatory CE window with the optional event window.
type FestivalDates struct {
	CEStart    time.Time
	CEEnd      time.Time
	EventStart *time.Time
	EventEnd   *time.Time
}

// ParseFestivalDates parses and validates raw date strings. Event dates are optional
// but must be supplied together.
func ParseFestivalDates(ceStart, ceEnd, eventStart, eventEnd string) (FestivalDates, error) {
	var dates FestivalDates
	var err error

	if dates.CEStart, err = parseRequiredDate("ce_start_date", ceStart); err != nil {
		return dates, err
	}
	if dates.CEEnd, err = parseRequiredDate("ce_end_date", ceEnd); err != nil {
		return dates, err
	}

	eventStart = strings.TrimSpace(eventStart)
	eventEnd = strings.TrimSpace(eventEnd)
	switch {
	case eventStart == "" && eventEnd == "":
	case eventStart == "" || eventEnd == "":
		return dates, &ValidationError{Field: "event_dates", Reason: "event start and end dates must be provided together"}
	default:
		start, err := parseRequiredDate("event_start_date", eventStart)
		if err != nil {
			return dates, err
		}
		end, err := parseRequiredDate("event_end_date", eventEnd)
		if err != nil {
			return dates, err
		}
		dates.EventStart = &start
		dates.EventEnd = &end
	}

	return dates, dates.Validate()
}

// Validate checks ce_start <= event_start <= event_end <= ce_end.
func (d FestivalDates) Validate() error {
	if d.CEStart.After(d.CEEnd) {
		return &ValidationError{Field: "ce_end_date", Reason: "must be on or after ce_start_date"}
	}
	if d.EventStart == nil && d.EventEnd == nil {
		return nil
	}
	if d.EventStart == nil || d.EventEnd == nil {
		return &ValidationError{Field: "event_dates", Reason: "event start and end dates must be provided together"}
	}
	if d.EventStart.Before(d.CEStart) {
		return &ValidationError{Field: "event_start_date", Reason: "must not be before ce_start_date"}
	}
	if d.EventStart.After(*d.EventEnd) {
		return &ValidationError{Field: "event_end_date", Reason: "must be on or after event_start_date"}
	}
	if d.EventEnd.After(d.CEEnd) {
		return &ValidationError{Field: "event_end_date", Reason: "must not be after ce_end_date"}
	}
	return nil
}

// NormalizeCustomCode uppercases a super-admin supplied festival code and checks
// it against the 6-12 character [A-Z0-9-] format.
func NormalizeCustomCode(code string) (string, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if !customCodePattern.MatchString(code) {
		return "", &ValidationError{
			Field:  "code",
			Reason: fmt.Sprintf("must be %d-%d characters of A-Z, 0-9 or hyphen", MinCustomCodeLength, MaxCustomCodeLength),
		}
	}
	return code, nil
}

// ParseDate parses a YYYY-MM-DD date in UTC.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, strings.TrimSpace(s), time.UTC)
}

// FormatDate formats t as YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// TruncateDate drops the time of day, keeping the calendar date in UTC.
func TruncateDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func parseRequiredDate(field, value string) (time.Time, error) {
	if strings.TrimSpace(value) == "" {
		return time.Time{}, &ValidationError{Field: field, Reason: "is required"}
	}
	t, err := ParseDate(value)
	if err != nil {
		return time.Time{}, &ValidationError{Field: field, Reason: "must be a date in YYYY-MM-DD format"}
	}
	return t, nil
}
