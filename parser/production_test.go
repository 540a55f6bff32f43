package parser

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/xuri/excelize/v2"

	"bitbucket.org/mmdatafocus/factory_backend/models"
)

type sheetData struct {
	name string
	rows [][]interface{}
}

func buildWorkbook(t *testing.T, sheets []sheetData) io.Reader {
	t.Helper()
	f := excelize.NewFile()
	for i, sheet := range sheets {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", sheet.name); err != nil {
				t.Fatalf("SetSheetName: %v", err)
			}
		} else {
			if _, err := f.NewSheet(sheet.name); err != nil {
				t.Fatalf("NewSheet(%q): %v", sheet.name, err)
			}
		}
		for r, row := range sheet.rows {
			cell, err := excelize.CoordinatesToCellName(1, r+1)
			if err != nil {
				t.Fatalf("CoordinatesToCellName: %v", err)
			}
			if err := f.SetSheetRow(sheet.name, cell, &row); err != nil {
				t.Fatalf("SetSheetRow: %v", err)
			}
		}
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("WriteToBuffer: %v", err)
	}
	return bytes.NewReader(buf.Bytes())
}

var productionHeader = []interface{}{"生产订单号", "产品名称", "单据编号", "单据日期", "转出作业", "合格数量"}

func TestParseProductionWorkbook(t *testing.T) {
	r := buildWorkbook(t, []sheetData{{
		name: "Sheet1",
		rows: [][]interface{}{
			productionHeader,
			{"2517281.0", "毛刷A", "DOC-001", "2025/10/01", "转出", "100"},
			{"ORD-2", "毛刷B", "DOC-002", "2025-10-02", "转出", "80"},
		},
	}})

	records, rowErrors, err := ParseProductionWorkbook(r, "")
	if err != nil {
		t.Fatalf("ParseProductionWorkbook error: %v", err)
	}
	if len(rowErrors) != 0 {
		t.Fatalf("expected no row errors, got %v", rowErrors)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}

	first := records[0]
	if first.OrderNo != "2517281" {
		t.Fatalf("expected numeric order no normalized to 2517281, got %q", first.OrderNo)
	}
	if first.Quantity != 100 {
		t.Fatalf("expected quantity 100, got %d", first.Quantity)
	}
	if first.PerformanceFactor.String() != "1" {
		t.Fatalf("expected default performance factor 1.00, got %s", first.PerformanceFactor)
	}
	if first.CreatedAt.In(models.TZUTCPlus8).Format("2006-01-02") != "2025-10-01" {
		t.Fatalf("expected document date 2025-10-01, got %s", first.CreatedAt)
	}
	if !first.CreatedAt.Equal(first.UpdatedAt) {
		t.Fatalf("created_at and updated_at should both carry the document date")
	}
}

func TestParseProductionWorkbook_MissingColumn(t *testing.T) {
	r := buildWorkbook(t, []sheetData{{
		name: "Sheet1",
		rows: [][]interface{}{
			{"生产订单号", "产品名称", "单据编号", "单据日期", "转出作业"},
			{"ORD-1", "毛刷A", "DOC-001", "2025/10/01", "转出"},
		},
	}})

	_, _, err := ParseProductionWorkbook(r, "")
	var schemaErr *SchemaError
	if !errors.As(err, &schemaErr) {
		t.Fatalf("expected SchemaError, got %v", err)
	}
	if len(schemaErr.Missing) != 1 || schemaErr.Missing[0] != "合格数量" {
		t.Fatalf("expected missing 合格数量, got %v", schemaErr.Missing)
	}
}

func TestParseProductionWorkbook_BadQuantityRows(t *testing.T) {
	r := buildWorkbook(t, []sheetData{{
		name: "Sheet1",
		rows: [][]interface{}{
			productionHeader,
			{"ORD-1", "毛刷A", "DOC-001", "2025/10/01", "转出", "abc"},
			{"ORD-2", "毛刷B", "DOC-002", "2025/10/02", "转出", "-5"},
			{"ORD-3", "毛刷C", "DOC-003", "2025/10/03", "转出", "42"},
		},
	}})

	records, rowErrors, err := ParseProductionWorkbook(r, "")
	if err != nil {
		t.Fatalf("ParseProductionWorkbook error: %v", err)
	}
	if len(records) != 1 || records[0].OrderNo != "ORD-3" {
		t.Fatalf("expected only ORD-3 to survive, got %v", records)
	}
	if len(rowErrors) != 2 {
		t.Fatalf("expected 2 row errors, got %v", rowErrors)
	}
	if rowErrors[0].Row != 2 || rowErrors[0].Column != "合格数量" {
		t.Fatalf("unexpected first row error: %+v", rowErrors[0])
	}
	if rowErrors[1].Row != 3 {
		t.Fatalf("unexpected second row error: %+v", rowErrors[1])
	}
}

func TestParseProductionWorkbook_FilterMonth(t *testing.T) {
	r := buildWorkbook(t, []sheetData{{
		name: "Sheet1",
		rows: [][]interface{}{
			productionHeader,
			{"ORD-1", "毛刷A", "DOC-001", "2025/10/01", "转出", "10"},
			{"ORD-2", "毛刷B", "DOC-002", "2025/11/01", "转出", "20"},
			{"ORD-3", "毛刷C", "DOC-003", "not a date", "转出", "30"},
		},
	}})

	records, rowErrors, err := ParseProductionWorkbook(r, "202510")
	if err != nil {
		t.Fatalf("ParseProductionWorkbook error: %v", err)
	}
	if len(rowErrors) != 0 {
		t.Fatalf("expected no row errors, got %v", rowErrors)
	}
	// ORD-2 is in another month; ORD-3 has no parseable date to filter on.
	if len(records) != 1 || records[0].OrderNo != "ORD-1" {
		t.Fatalf("expected only ORD-1, got %v", records)
	}
}

func TestParseProductionWorkbook_InvalidFilterMonth(t *testing.T) {
	for _, bad := range []string{"2025", "2025-10", "202513", "2025ab"} {
		r := buildWorkbook(t, []sheetData{{
			name: "Sheet1",
			rows: [][]interface{}{productionHeader},
		}})
		_, _, err := ParseProductionWorkbook(r, bad)
		if !errors.Is(err, ErrInvalidFilterMonth) {
			t.Fatalf("ParseProductionWorkbook(%q) expected ErrInvalidFilterMonth, got %v", bad, err)
		}
	}
}

func TestParseFilterMonth(t *testing.T) {
	fm, err := ParseFilterMonth("202510")
	if err != nil {
		t.Fatalf("ParseFilterMonth error: %v", err)
	}
	if fm.Year != 2025 || fm.Month != 10 {
		t.Fatalf("expected 2025-10, got %d-%d", fm.Year, fm.Month)
	}
}
