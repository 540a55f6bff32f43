package workflow

import (
	"github.com/shopspring/decimal"

	"bitbucket.org/mmdatafocus/factory_backend/models"
)

// ExceptionKey identifies one group of exceptional worklogs: all records of
// one order that share one exception type.
type ExceptionKey struct {
	OrderNo string
	Type    models.ValidationResult
}

// ReconciliationResult groups classified worklog copies by order. Every
// input worklog appears exactly once, either under an exception key or
// under its order in Normal, with ValidationResult set on the copy.
type ReconciliationResult struct {
	TotalProduction int
	TotalWorklog    int
	Exceptions      map[ExceptionKey][]models.EmployeeWorklog
	Normal          map[string][]models.EmployeeWorklog
}

func (r *ReconciliationResult) ExceptionCount() int {
	return len(r.Exceptions)
}

func (r *ReconciliationResult) NormalCount() int {
	return len(r.Normal)
}

// ReconcileWorklogs checks each order's logged output against its declared
// production. Declared quantities and credited performance amounts are
// summed per order_no; a worklog order absent from production is flagged
// order_not_found, a credited sum strictly above the declared sum is flagged
// exceeds_quantity, everything else passes. Equality passes. The verdict is
// per order: every worklog of a flagged order carries the same result.
//
// Inputs are not mutated. The returned records are classified copies.
func ReconcileWorklogs(productions []models.ProductionInfo, worklogs []models.EmployeeWorklog) *ReconciliationResult {
	productionAgg := make(map[string]int)
	for _, prod := range productions {
		productionAgg[prod.OrderNo] += prod.Quantity
	}

	worklogAgg := make(map[string]decimal.Decimal)
	worklogByOrder := make(map[string][]models.EmployeeWorklog)
	for _, wl := range worklogs {
		worklogAgg[wl.OrderNo] = worklogAgg[wl.OrderNo].Add(wl.PerformanceAmount)
		worklogByOrder[wl.OrderNo] = append(worklogByOrder[wl.OrderNo], wl)
	}

	result := &ReconciliationResult{
		TotalProduction: len(productions),
		TotalWorklog:    len(worklogs),
		Exceptions:      make(map[ExceptionKey][]models.EmployeeWorklog),
		Normal:          make(map[string][]models.EmployeeWorklog),
	}

	for orderNo, creditedSum := range worklogAgg {
		verdict := models.VldPassed
		declaredSum, known := productionAgg[orderNo]
		if !known {
			verdict = models.VldOrderNoNotFound
		} else if creditedSum.GreaterThan(decimal.NewFromInt(int64(declaredSum))) {
			verdict = models.VldExceedsQuantity
		}

		classified := make([]models.EmployeeWorklog, len(worklogByOrder[orderNo]))
		for i, wl := range worklogByOrder[orderNo] {
			wl.ValidationResult = verdict
			classified[i] = wl
		}

		if verdict == models.VldPassed {
			result.Normal[orderNo] = classified
		} else {
			result.Exceptions[ExceptionKey{OrderNo: orderNo, Type: verdict}] = classified
		}
	}

	return result
}

// AllWorklogs flattens the classified groups back into one slice, for
// persisting the verdicts.
func (r *ReconciliationResult) AllWorklogs() []models.EmployeeWorklog {
	out := make([]models.EmployeeWorklog, 0, r.TotalWorklog)
	for _, group := range r.Exceptions {
		out = append(out, group...)
	}
	for _, group := range r.Normal {
		out = append(out, group...)
	}
	return out
}
