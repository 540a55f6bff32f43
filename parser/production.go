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

// Source column titles for the production feed. The upstream ERP exports
// these headers verbatim; the mapping to model fields is fixed.
const (
	colProductionOrderNo  = "生产订单号" // order_no
	colProductionModel    = "产品名称"  // model
	colProductionBrandNo  = "单据编号"  // brand_no
	colProductionDocDate  = "单据日期"  // created_at / updated_at
	colProductionJobType  = "转出作业"  // job_type
	colProductionQuantity = "合格数量"  // quantity
)

var productionRequiredColumns = []string{
	colProductionOrderNo,
	colProductionModel,
	colProductionBrandNo,
	colProductionDocDate,
	colProductionJobType,
	colProductionQuantity,
}

// ParseProductionWorkbook reads the production feed from the first sheet of
// an xlsx workbook. The first row must be the header; a missing required
// column fails the whole file with a *SchemaError. Bad rows are dropped and
// reported as RowErrors, the rest of the file still parses.
//
// filterMonth, when non-empty, must be a yyyyMM string; only rows whose
// document date falls in that month are kept. With a filter active, rows
// whose date cannot be parsed are dropped rather than defaulted.
func ParseProductionWorkbook(r io.Reader, filterMonth string) ([]models.ProductionInfo, []RowError, error) {
	var filter *FilterMonth
	if filterMonth != "" {
		var err error
		filter, err = ParseFilterMonth(filterMonth)
		if err != nil {
			return nil, nil, err
		}
	}

	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, nil, fmt.Errorf("unable to open xlsx workbook: %v", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil, &SchemaError{Missing: productionRequiredColumns}
	}
	sheet := sheets[0]

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, nil, fmt.Errorf("unable to read sheet %q: %v", sheet, err)
	}
	if len(rows) == 0 {
		return nil, nil, &SchemaError{Missing: productionRequiredColumns}
	}

	colIndex := make(map[string]int)
	for idx, cell := range rows[0] {
		title := strings.TrimSpace(cell)
		if title != "" {
			colIndex[title] = idx
		}
	}
	var missing []string
	for _, col := range productionRequiredColumns {
		if _, ok := colIndex[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, nil, &SchemaError{Missing: missing}
	}

	uploadDate := time.Now().In(models.TZUTCPlus8)
	records := make([]models.ProductionInfo, 0, len(rows)-1)
	rowErrors := make([]RowError, 0)

	for i, row := range rows[1:] {
		rowNum := i + 2
		if isBlankRow(row) {
			continue
		}

		docDate, ok := parseDateCell(cellAt(row, colIndex[colProductionDocDate]))
		if !ok {
			if filter != nil {
				// Cannot tell what month the row belongs to.
				continue
			}
			docDate = time.Now().In(models.TZUTCPlus8)
		}
		if filter != nil && !filter.matches(docDate) {
			continue
		}

		qtyCell := cellAt(row, colIndex[colProductionQuantity])
		quantity, ok := toInt(qtyCell)
		if !ok {
			rowErrors = append(rowErrors, RowError{
				Sheet:  sheet,
				Row:    rowNum,
				Column: colProductionQuantity,
				Reason: fmt.Sprintf("quantity is not a number: %q", strings.TrimSpace(qtyCell)),
			})
			continue
		}
		if quantity <= 0 {
			rowErrors = append(rowErrors, RowError{
				Sheet:  sheet,
				Row:    rowNum,
				Column: colProductionQuantity,
				Reason: fmt.Sprintf("quantity must be positive, got %d", quantity),
			})
			continue
		}

		record := models.ProductionInfo{
			OrderNo:           toOrderNo(cellAt(row, colIndex[colProductionOrderNo])),
			Model:             strings.TrimSpace(cellAt(row, colIndex[colProductionModel])),
			BrandNo:           strings.TrimSpace(cellAt(row, colIndex[colProductionBrandNo])),
			Quantity:          quantity,
			JobType:           strings.TrimSpace(cellAt(row, colIndex[colProductionJobType])),
			PerformanceFactor: decimal.NewFromFloat(1.00),
			UploadDate:        uploadDate,
			CreatedAt:         docDate,
			UpdatedAt:         docDate,
		}
		record.Normalize()
		if err := record.Validate(); err != nil {
			rowErrors = append(rowErrors, RowError{
				Sheet:  sheet,
				Row:    rowNum,
				Column: colProductionOrderNo,
				Reason: err.Error(),
			})
			continue
		}
		records = append(records, record)
	}

	return records, rowErrors, nil
}
