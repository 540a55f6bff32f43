package models

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// EmployeeWorklog is one employee's logged output against a production
// order. The dedup key (order_no, employee_id) is deliberately coarse: a
// re-upload for the same order/employee pair overwrites the mutable fields
// rather than accumulating history.
type EmployeeWorklog struct {
	ID           int    `gorm:"primary_key" json:"id"`
	OrderNo      string `gorm:"size:100;not null;uniqueIndex:uniq_worklog_dedup,priority:1" json:"order_no" validate:"required"`
	Model        string `gorm:"size:100;not null;default:''" json:"model"`
	BrandNo      string `gorm:"size:100;not null;default:''" json:"brand_no"`
	EmployeeId   string `gorm:"size:100;not null;uniqueIndex:uniq_worklog_dedup,priority:2" json:"employee_id" validate:"required"`
	EmployeeName string `gorm:"size:100;not null;default:''" json:"employee_name"`
	JobType      string `gorm:"size:100;not null" json:"job_type"`
	Quantity     int    `gorm:"not null" json:"quantity" validate:"gt=0"`
	// PerformanceAmount is the credited quantity that reconciliation
	// compares against the order's declared production quantity.
	PerformanceFactor decimal.Decimal  `gorm:"type:decimal(20,4);not null" json:"performance_factor"`
	PerformanceAmount decimal.Decimal  `gorm:"type:decimal(20,4);not null" json:"performance_amount"`
	WorkDate          time.Time        `gorm:"not null;index" json:"work_date"`
	UploadDate        time.Time        `gorm:"not null" json:"upload_date"`
	ValidationResult  ValidationResult `gorm:"size:50;not null;default:not_validated" json:"validation_result"`
	CreatedAt         time.Time        `gorm:"not null" json:"created_at"`
	UpdatedAt         time.Time        `gorm:"not null" json:"updated_at"`
}

// DefaultWorklogJobType marks rows whose sheet carries no job type column.
const DefaultWorklogJobType = "未知"

func (w *EmployeeWorklog) Normalize() {
	w.OrderNo = strings.TrimSpace(w.OrderNo)
	w.Model = strings.TrimSpace(w.Model)
	w.BrandNo = strings.TrimSpace(w.BrandNo)
	w.EmployeeId = strings.TrimSpace(w.EmployeeId)
	w.EmployeeName = strings.TrimSpace(w.EmployeeName)
	w.JobType = strings.TrimSpace(w.JobType)
	if w.JobType == "" {
		w.JobType = DefaultWorklogJobType
	}
	if w.PerformanceFactor.IsZero() {
		w.PerformanceFactor = decimal.NewFromFloat(1.0)
	}
	if w.ValidationResult == "" {
		w.ValidationResult = VldNotValidated
	}
}

func (w *EmployeeWorklog) Validate() error {
	if err := validate.Struct(w); err != nil {
		return err
	}
	if w.PerformanceFactor.LessThanOrEqual(decimal.Zero) {
		return &PersistenceError{Op: "validate employee_worklog", Err: errNonPositiveFactor}
	}
	if w.PerformanceAmount.LessThanOrEqual(decimal.Zero) {
		return &PersistenceError{Op: "validate employee_worklog", Err: errNonPositiveAmount}
	}
	return nil
}

// worklogMutableColumns is the field set a re-upload (or a reconciliation
// run writing back validation_result) is allowed to overwrite.
var worklogMutableColumns = []string{
	"model", "brand_no", "employee_name", "job_type", "quantity",
	"performance_factor", "performance_amount", "work_date", "upload_date",
	"validation_result",
}

// UpsertEmployeeWorklogs writes the batch in a single transaction with
// ON DUPLICATE KEY UPDATE semantics on (order_no, employee_id). Returns the
// number of records processed (created + updated).
func UpsertEmployeeWorklogs(ctx context.Context, db *gorm.DB, records []EmployeeWorklog) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		sets := clause.AssignmentColumns(worklogMutableColumns)
		sets = append(sets, clause.Assignment{
			Column: clause.Column{Name: "updated_at"},
			Value:  time.Now(),
		})
		return tx.Clauses(clause.OnConflict{DoUpdates: sets}).
			CreateInBatches(&records, 200).Error
	})
	if err != nil {
		return 0, &PersistenceError{Op: "upsert employee_worklogs", Err: err}
	}
	return len(records), nil
}

// EmployeeWorklogsInWindow loads records whose work_date falls in the
// inclusive [start, end] window.
func EmployeeWorklogsInWindow(ctx context.Context, db *gorm.DB, start, end time.Time) ([]EmployeeWorklog, error) {
	var records []EmployeeWorklog
	err := db.WithContext(ctx).
		Where("work_date >= ? AND work_date <= ?", start, end).
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

// EmployeeWorklogsByOrderNo loads every stored worklog for one order.
func EmployeeWorklogsByOrderNo(ctx context.Context, db *gorm.DB, orderNo string) ([]EmployeeWorklog, error) {
	var records []EmployeeWorklog
	err := db.WithContext(ctx).
		Where("order_no = ?", orderNo).
		Order("work_date DESC").
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

type EmployeeWorklogQuery struct {
	OrderNo    string
	EmployeeId string
	StartDate  *time.Time
	EndDate    *time.Time
	Page       int
	PageSize   int
}

// ListEmployeeWorklogs pages through stored records, most recent work first.
func ListEmployeeWorklogs(ctx context.Context, db *gorm.DB, q EmployeeWorklogQuery) (int64, []EmployeeWorklog, error) {
	query := db.WithContext(ctx).Model(&EmployeeWorklog{})
	if q.OrderNo != "" {
		query = query.Where("order_no LIKE ?", "%"+q.OrderNo+"%")
	}
	if q.EmployeeId != "" {
		query = query.Where("employee_id = ?", q.EmployeeId)
	}
	if q.StartDate != nil {
		query = query.Where("work_date >= ?", *q.StartDate)
	}
	if q.EndDate != nil {
		query = query.Where("work_date <= ?", *q.EndDate)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return 0, nil, err
	}

	page := q.Page
	if page < 1 {
		page = 1
	}
	pageSize := q.PageSize
	if pageSize < 1 {
		pageSize = SearchLimitDefault
	}

	var records []EmployeeWorklog
	err := query.Order("work_date DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&records).Error
	if err != nil {
		return 0, nil, err
	}
	return total, records, nil
}
