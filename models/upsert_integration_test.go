package models

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"bitbucket.org/mmdatafocus/factory_backend/config"
)

func integrationDB(t *testing.T) *gorm.DB {
	t.Helper()
	if strings.TrimSpace(os.Getenv("INTEGRATION_TESTS")) == "" {
		t.Skip("set INTEGRATION_TESTS=1 to run integration tests (requires MySQL)")
	}
	config.ConnectDatabaseWithRetry()
	db := config.GetDB()
	if db == nil {
		t.Fatalf("database not initialized (set DB_* env vars)")
	}
	if err := db.AutoMigrate(&ProductionInfo{}, &EmployeeWorklog{}); err != nil {
		t.Fatalf("AutoMigrate: %v", err)
	}
	return db
}

func TestUpsertProductionInfos_Idempotent(t *testing.T) {
	db := integrationDB(t)
	ctx := context.Background()

	orderNo := "IT-ORD-" + time.Now().Format("20060102150405")
	uploadDate := time.Date(2025, 10, 1, 0, 0, 0, 0, TZUTCPlus8)
	record := ProductionInfo{
		OrderNo:           orderNo,
		Model:             "毛刷A",
		BrandNo:           "DOC-1",
		Quantity:          100,
		JobType:           "转出",
		PerformanceFactor: decimal.NewFromFloat(1.00),
		UploadDate:        uploadDate,
		CreatedAt:         uploadDate,
		UpdatedAt:         uploadDate,
	}

	n, err := UpsertProductionInfos(ctx, db, []ProductionInfo{record})
	if err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 processed, got %d", n)
	}

	// Same dedup key, new quantity: must update in place, not insert.
	record.Quantity = 120
	if _, err := UpsertProductionInfos(ctx, db, []ProductionInfo{record}); err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	var stored []ProductionInfo
	if err := db.Where("order_no = ?", orderNo).Find(&stored).Error; err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(stored) != 1 {
		t.Fatalf("expected single row for dedup key, got %d", len(stored))
	}
	if stored[0].Quantity != 120 {
		t.Fatalf("expected quantity updated to 120, got %d", stored[0].Quantity)
	}
}

func TestUpsertEmployeeWorklogs_Idempotent(t *testing.T) {
	db := integrationDB(t)
	ctx := context.Background()

	orderNo := "IT-WL-" + time.Now().Format("20060102150405")
	workDate := time.Date(2025, 10, 5, 0, 0, 0, 0, TZUTCPlus8)
	record := EmployeeWorklog{
		OrderNo:           orderNo,
		EmployeeId:        "EMP-IT",
		JobType:           DefaultWorklogJobType,
		Quantity:          1,
		PerformanceFactor: decimal.NewFromFloat(1.0),
		PerformanceAmount: decimal.RequireFromString("5"),
		WorkDate:          workDate,
		UploadDate:        workDate,
		ValidationResult:  VldNotValidated,
	}

	if _, err := UpsertEmployeeWorklogs(ctx, db, []EmployeeWorklog{record}); err != nil {
		t.Fatalf("first upsert: %v", err)
	}

	record.PerformanceAmount = decimal.RequireFromString("7.5")
	record.ValidationResult = VldPassed
	if _, err := UpsertEmployeeWorklogs(ctx, db, []EmployeeWorklog{record}); err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	var stored []EmployeeWorklog
	if err := db.Where("order_no = ?", orderNo).Find(&stored).Error; err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(stored) != 1 {
		t.Fatalf("expected single row for (order_no, employee_id), got %d", len(stored))
	}
	if !stored[0].PerformanceAmount.Equal(decimal.RequireFromString("7.5")) {
		t.Fatalf("expected amount updated to 7.5, got %s", stored[0].PerformanceAmount)
	}
	if stored[0].ValidationResult != VldPassed {
		t.Fatalf("expected validation_result updated, got %s", stored[0].ValidationResult)
	}
}
