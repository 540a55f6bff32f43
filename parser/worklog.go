package parser

import (
	"fmt"
	"io"
	"strings"
	"time"

	"bitbucket.org/mmdatafocus/factory_backend/models"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// Worklog sheets are hand-maintained ledgers, one sheet per employee, with
// the sheet name doubling as the employee id. The header row is found by
// scanning for the row whose first cell is the marker title; anything above
// it (titles, legends) is ignored.
const (
	colWorklogMarker     = "编号"    // header marker, first cell of the header row
	colWorklogDate       = "日期"    // work_date
	colWorklogOrderNo    = "生产订单号" // order_no
	colWorklogQuantity   = "数量"    // quantity
	colWorklogLaps       = "圈数"    // informational, not persisted
	colWorklogFaceFactor = "面系数"   // informational, not persisted
	colWorklogPerfFactor = "绩效系数"  // performance_factor
	colWorklogPerfAmount = "绩效数量"  // performance_amount
)

var worklogHeaderTitles = []string{
	colWorklogMarker,
	colWorklogDate,
	colWorklogOrderNo,
	colWorklogQuantity,
	colWorklogLaps,
	colWorklogFaceFactor,
	colWorklogPerfFactor,
	colWorklogPerfAmount,
}

// ParseWorklogWorkbook reads every sheet of a worklog workbook. Rows with no
// order number (totals, notes) are skipped silently; rows that name an order
// but lack a work date or a performance amount are dropped and reported.
func ParseWorklogWorkbook(r io.Reader) ([]models.EmployeeWorklog, []RowError, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, nil, fmt.Errorf("unable to open xlsx workbook: %v", err)
	}
	defer f.Close()

	uploadDate := time.Now().In(models.TZUTCPlus8)
	records := make([]models.EmployeeWorklog, 0)
	rowErrors := make([]RowError, 0)

	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, nil, fmt.Errorf("unable to read sheet %q: %v", sheet, err)
		}
		sheetRecords, sheetErrors := parseWorklogSheet(sheet, rows, uploadDate)
		records = append(records, sheetRecords...)
		rowErrors = append(rowErrors, sheetErrors...)
	}

	return records, rowErrors, nil
}

// headerCell reads the cell under a header title, or "" when the sheet's
// header row never declared that column.
func headerCell(row []string, colIndex map[string]int, title string) string {
	idx, ok := colIndex[title]
	if !ok {
		return ""
	}
	return cellAt(row, idx)
}

func parseWorklogSheet(sheet string, rows [][]string, uploadDate time.Time) ([]models.EmployeeWorklog, []RowError) {
	employeeId := strings.TrimSpace(sheet)
	records := make([]models.EmployeeWorklog, 0, len(rows))
	rowErrors := make([]RowError, 0)

	var colIndex map[string]int

	for i, row := range rows {
		rowNum := i + 1

		// Column order varies between ledgers, so positions are taken
		// from the header row rather than assumed.
		if strings.TrimSpace(cellAt(row, 0)) == colWorklogMarker {
			colIndex = make(map[string]int)
			for idx, cell := range row {
				title := strings.TrimSpace(cell)
				for _, known := range worklogHeaderTitles {
					if title == known {
						colIndex[title] = idx
						break
					}
				}
			}
			continue
		}
		if colIndex == nil {
			continue
		}
		if isBlankRow(row) {
			continue
		}

		orderIdx, ok := colIndex[colWorklogOrderNo]
		if !ok {
			continue
		}
		orderNo := toOrderNo(cellAt(row, orderIdx))
		if orderNo == "" {
			// Totals and note rows leave the order column empty.
			continue
		}

		workDate, ok := parseDateCell(headerCell(row, colIndex, colWorklogDate))
		if !ok {
			rowErrors = append(rowErrors, RowError{
				Sheet:  sheet,
				Row:    rowNum,
				Column: colWorklogDate,
				Reason: "work date is missing or unparseable",
			})
			continue
		}

		quantity, ok := toInt(headerCell(row, colIndex, colWorklogQuantity))
		if !ok || quantity <= 0 {
			quantity = 1
		}

		perfFactor, ok := toDecimal(headerCell(row, colIndex, colWorklogPerfFactor))
		if !ok || perfFactor.LessThanOrEqual(decimal.Zero) {
			perfFactor = decimal.NewFromFloat(1.0)
		}

		perfAmount, ok := toDecimal(headerCell(row, colIndex, colWorklogPerfAmount))
		if !ok || perfAmount.LessThanOrEqual(decimal.Zero) {
			rowErrors = append(rowErrors, RowError{
				Sheet:  sheet,
				Row:    rowNum,
				Column: colWorklogPerfAmount,
				Reason: "performance amount is missing or not positive",
			})
			continue
		}

		record := models.EmployeeWorklog{
			OrderNo:           orderNo,
			EmployeeId:        employeeId,
			JobType:           models.DefaultWorklogJobType,
			Quantity:          quantity,
			PerformanceFactor: perfFactor,
			PerformanceAmount: perfAmount,
			WorkDate:          workDate,
			UploadDate:        uploadDate,
			ValidationResult:  models.VldNotValidated,
		}
		record.Normalize()
		if err := record.Validate(); err != nil {
			rowErrors = append(rowErrors, RowError{
				Sheet:  sheet,
				Row:    rowNum,
				Column: colWorklogOrderNo,
				Reason: err.Error(),
			})
			continue
		}
		records = append(records, record)
	}

	return records, rowErrors
}
