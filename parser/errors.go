package parser

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// SchemaError aborts an entire file: one or more required columns are
// absent from the sheet header. Nothing from the file is persisted.
type SchemaError struct {
	Missing []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("spreadsheet is missing required columns: %s", strings.Join(e.Missing, ", "))
}

// RowError is a per-row diagnostic: the row was dropped, parsing continued.
type RowError struct {
	Sheet  string
	Row    int
	Column string
	Reason string
}

func (e RowError) Error() string {
	if e.Sheet != "" {
		return fmt.Sprintf("sheet %q row %d column %q: %s", e.Sheet, e.Row, e.Column, e.Reason)
	}
	return fmt.Sprintf("row %d column %q: %s", e.Row, e.Column, e.Reason)
}

var ErrInvalidFilterMonth = errors.New("filter_month must be a yyyyMM string")

// FilterMonth restricts a production parse to rows whose document date falls
// in one (year, month).
type FilterMonth struct {
	Year  int
	Month int
}

// ParseFilterMonth validates a 6-digit yyyyMM string. An invalid value fails
// the whole parse call, not individual rows.
func ParseFilterMonth(s string) (*FilterMonth, error) {
	if len(s) != 6 {
		return nil, fmt.Errorf("%w: got %q", ErrInvalidFilterMonth, s)
	}
	year, err := strconv.Atoi(s[:4])
	if err != nil {
		return nil, fmt.Errorf("%w: got %q", ErrInvalidFilterMonth, s)
	}
	month, err := strconv.Atoi(s[4:])
	if err != nil {
		return nil, fmt.Errorf("%w: got %q", ErrInvalidFilterMonth, s)
	}
	if month < 1 || month > 12 {
		return nil, fmt.Errorf("%w: month %02d out of range", ErrInvalidFilterMonth, month)
	}
	return &FilterMonth{Year: year, Month: month}, nil
}

func (f *FilterMonth) matches(t time.Time) bool {
	return t.Year() == f.Year && int(t.Month()) == f.Month
}
