package parser

import (
	"strconv"
	"strings"
	"time"

	"bitbucket.org/mmdatafocus/factory_backend/models"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// toOrderNo normalizes an order number cell to a plain string. Numeric
// cells come through excelize as "2517281" or "2517281.0" depending on
// formatting, so integral floats are collapsed to their integer form.
func toOrderNo(cell string) string {
	s := strings.TrimSpace(cell)
	if s == "" {
		return ""
	}
	if d, err := decimal.NewFromString(s); err == nil {
		if d.IsInteger() {
			return strconv.FormatInt(d.IntPart(), 10)
		}
	}
	return s
}

func toInt(cell string) (int, bool) {
	s := strings.TrimSpace(cell)
	if s == "" {
		return 0, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, false
	}
	return int(d.IntPart()), true
}

func toDecimal(cell string) (decimal.Decimal, bool) {
	s := strings.TrimSpace(cell)
	if s == "" {
		return decimal.Decimal{}, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, false
	}
	return d, true
}

var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"2006.01.02",
	"2006-01-02 15:04:05",
	"2006/01/02 15:04:05",
	"2006-01-02 15:04",
	"2006/01/02 15:04",
	"2006-1-2",
	"2006/1/2",
	"1/2/06",
	"01-02-06",
}

// parseDateCell interprets a date cell in UTC+8. Excel date cells can
// surface either as a formatted string or as a raw serial number when
// the cell carries no date style, so both forms are handled.
func parseDateCell(cell string) (time.Time, bool) {
	s := strings.TrimSpace(cell)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, models.TZUTCPlus8); err == nil {
			return t, true
		}
	}
	if serial, err := strconv.ParseFloat(s, 64); err == nil && serial > 0 {
		if t, err := excelize.ExcelDateToTime(serial, false); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, models.TZUTCPlus8), true
		}
	}
	return time.Time{}, false
}

func isBlankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

func cellAt(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}
