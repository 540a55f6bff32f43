package workflow

import (
	"testing"

	"github.com/shopspring/decimal"

	"bitbucket.org/mmdatafocus/factory_backend/models"
)

func production(orderNo string, qty int) models.ProductionInfo {
	return models.ProductionInfo{OrderNo: orderNo, Quantity: qty}
}

func worklog(orderNo, employeeId string, amount string) models.EmployeeWorklog {
	return models.EmployeeWorklog{
		OrderNo:           orderNo,
		EmployeeId:        employeeId,
		PerformanceAmount: decimal.RequireFromString(amount),
		ValidationResult:  models.VldNotValidated,
	}
}

func TestReconcileWorklogs_Passed(t *testing.T) {
	result := ReconcileWorklogs(
		[]models.ProductionInfo{production("ORD-1", 60), production("ORD-1", 40)},
		[]models.EmployeeWorklog{worklog("ORD-1", "EMP1", "50"), worklog("ORD-1", "EMP2", "30")},
	)

	if len(result.Exceptions) != 0 {
		t.Fatalf("expected no exceptions, got %d", len(result.Exceptions))
	}
	group, ok := result.Normal["ORD-1"]
	if !ok {
		t.Fatalf("expected ORD-1 in normal groups")
	}
	if len(group) != 2 {
		t.Fatalf("expected 2 worklogs under ORD-1, got %d", len(group))
	}
	for _, wl := range group {
		if wl.ValidationResult != models.VldPassed {
			t.Fatalf("expected passed, got %s", wl.ValidationResult)
		}
	}
}

func TestReconcileWorklogs_ExceedsQuantity(t *testing.T) {
	result := ReconcileWorklogs(
		[]models.ProductionInfo{production("ORD-2", 100)},
		[]models.EmployeeWorklog{worklog("ORD-2", "EMP1", "60.5"), worklog("ORD-2", "EMP2", "40")},
	)

	key := ExceptionKey{OrderNo: "ORD-2", Type: models.VldExceedsQuantity}
	group, ok := result.Exceptions[key]
	if !ok {
		t.Fatalf("expected exceeds_quantity exception for ORD-2, got %v", result.Exceptions)
	}
	if len(group) != 2 {
		t.Fatalf("expected both worklogs flagged, got %d", len(group))
	}
	for _, wl := range group {
		if wl.ValidationResult != models.VldExceedsQuantity {
			t.Fatalf("expected exceeds_quantity, got %s", wl.ValidationResult)
		}
	}
}

func TestReconcileWorklogs_OrderNoNotFound(t *testing.T) {
	result := ReconcileWorklogs(
		[]models.ProductionInfo{production("ORD-3", 10)},
		[]models.EmployeeWorklog{worklog("MISSING", "EMP1", "5")},
	)

	key := ExceptionKey{OrderNo: "MISSING", Type: models.VldOrderNoNotFound}
	if _, ok := result.Exceptions[key]; !ok {
		t.Fatalf("expected order_not_found exception, got %v", result.Exceptions)
	}
	if len(result.Normal) != 0 {
		t.Fatalf("expected no normal groups, got %d", len(result.Normal))
	}
}

func TestReconcileWorklogs_ExactMatchPasses(t *testing.T) {
	// Credited sum equal to the declared sum is not an exception.
	result := ReconcileWorklogs(
		[]models.ProductionInfo{production("ORD-4", 100)},
		[]models.EmployeeWorklog{worklog("ORD-4", "EMP1", "100")},
	)

	if len(result.Exceptions) != 0 {
		t.Fatalf("tie must pass, got exceptions %v", result.Exceptions)
	}
	if _, ok := result.Normal["ORD-4"]; !ok {
		t.Fatalf("expected ORD-4 under normal groups")
	}
}

func TestReconcileWorklogs_DoesNotMutateInput(t *testing.T) {
	input := []models.EmployeeWorklog{worklog("MISSING", "EMP1", "5")}
	_ = ReconcileWorklogs(nil, input)

	if input[0].ValidationResult != models.VldNotValidated {
		t.Fatalf("input worklog was mutated: %s", input[0].ValidationResult)
	}
}

func TestReconcileWorklogs_AllWorklogsCoversEveryInput(t *testing.T) {
	productions := []models.ProductionInfo{production("ORD-5", 10)}
	worklogs := []models.EmployeeWorklog{
		worklog("ORD-5", "EMP1", "4"),
		worklog("ORD-5", "EMP2", "20"),
		worklog("GHOST", "EMP3", "1"),
	}
	// ORD-5 credited 24 > 10 declared: exceeds. GHOST: not found.
	result := ReconcileWorklogs(productions, worklogs)

	all := result.AllWorklogs()
	if len(all) != len(worklogs) {
		t.Fatalf("expected %d classified worklogs, got %d", len(worklogs), len(all))
	}
	for _, wl := range all {
		if wl.ValidationResult == models.VldNotValidated {
			t.Fatalf("worklog %s/%s left unclassified", wl.OrderNo, wl.EmployeeId)
		}
	}
}

func TestReconcileWorklogs_Counts(t *testing.T) {
	result := ReconcileWorklogs(
		[]models.ProductionInfo{production("A", 10), production("B", 10)},
		[]models.EmployeeWorklog{
			worklog("A", "EMP1", "5"),
			worklog("B", "EMP1", "15"),
			worklog("C", "EMP1", "1"),
		},
	)

	if result.TotalProduction != 2 {
		t.Fatalf("expected TotalProduction 2, got %d", result.TotalProduction)
	}
	if result.TotalWorklog != 3 {
		t.Fatalf("expected TotalWorklog 3, got %d", result.TotalWorklog)
	}
	if result.NormalCount() != 1 {
		t.Fatalf("expected 1 normal group, got %d", result.NormalCount())
	}
	if result.ExceptionCount() != 2 {
		t.Fatalf("expected 2 exception groups, got %d", result.ExceptionCount())
	}
}
