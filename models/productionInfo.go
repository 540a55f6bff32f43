package models

import (
	"context"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TZUTCPlus8 is the plant's local timezone. Document dates in the source
// spreadsheets carry no zone information and are interpreted in this offset.
var TZUTCPlus8 = time.FixedZone("UTC+8", 8*60*60)

var validate = validator.New()

// ProductionInfo is one order's declared production, one row per source
// spreadsheet line. Rows are never deleted; re-uploads update in place via
// the dedup key (order_no, model, brand_no, job_type, upload_date).
type ProductionInfo struct {
	ID      int    `gorm:"primary_key" json:"id"`
	OrderNo string `gorm:"size:100;not null;uniqueIndex:uniq_production_dedup,priority:1" json:"order_no" validate:"required"`
	Model   string `gorm:"size:100;not null;uniqueIndex:uniq_production_dedup,priority:2" json:"model"`
	BrandNo string `gorm:"size:100;not null;uniqueIndex:uniq_production_dedup,priority:3" json:"brand_no"`
	// Quantity is the qualified quantity declared for the order.
	Quantity int    `gorm:"not null" json:"quantity" validate:"gt=0"`
	JobType  string `gorm:"size:100;not null;uniqueIndex:uniq_production_dedup,priority:4" json:"job_type"`
	// WorklogNo is carried for schema parity with upstream exports; it is
	// not the reconciliation join key (reconciliation joins on order_no).
	WorklogNo         string          `gorm:"size:100;not null;default:''" json:"worklog_no"`
	PerformanceFactor decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"performance_factor"`
	UploadDate        time.Time       `gorm:"not null;uniqueIndex:uniq_production_dedup,priority:5" json:"upload_date"`
	CreatedAt         time.Time       `gorm:"not null" json:"created_at"`
	UpdatedAt         time.Time       `gorm:"not null" json:"updated_at"`
}

// Normalize trims string fields and quantizes the performance factor to two
// decimal places. Absent strings become "", never NULL.
func (p *ProductionInfo) Normalize() {
	p.OrderNo = strings.TrimSpace(p.OrderNo)
	p.Model = strings.TrimSpace(p.Model)
	p.BrandNo = strings.TrimSpace(p.BrandNo)
	p.JobType = strings.TrimSpace(p.JobType)
	p.WorklogNo = strings.TrimSpace(p.WorklogNo)
	if p.PerformanceFactor.IsZero() {
		p.PerformanceFactor = decimal.NewFromFloat(1.00)
	}
	p.PerformanceFactor = p.PerformanceFactor.Round(2)
}

func (p *ProductionInfo) Validate() error {
	if err := validate.Struct(p); err != nil {
		return err
	}
	if p.PerformanceFactor.LessThanOrEqual(decimal.Zero) {
		return &PersistenceError{Op: "validate production_info", Err: errNonPositiveFactor}
	}
	return nil
}

// UpsertProductionInfos writes the batch in a single transaction.
// The dedup key is backed by a unique index, so concurrent uploads of the
// same key serialize at the database (ON DUPLICATE KEY UPDATE) instead of
// racing a read-then-write. On conflict only the mutable fields change and
// updated_at is refreshed to now; inserts keep the record's own timestamps.
// Returns the number of records processed (created + updated).
func UpsertProductionInfos(ctx context.Context, db *gorm.DB, records []ProductionInfo) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		sets := clause.AssignmentColumns([]string{"quantity", "performance_factor"})
		sets = append(sets, clause.Assignment{
			Column: clause.Column{Name: "updated_at"},
			Value:  time.Now(),
		})
		return tx.Clauses(clause.OnConflict{DoUpdates: sets}).
			CreateInBatches(&records, 200).Error
	})
	if err != nil {
		return 0, &PersistenceError{Op: "upsert production_infos", Err: err}
	}
	return len(records), nil
}

// ProductionInfosInWindow loads records whose created_at (the document date)
// falls in the inclusive [start, end] window.
func ProductionInfosInWindow(ctx context.Context, db *gorm.DB, start, end time.Time) ([]ProductionInfo, error) {
	var records []ProductionInfo
	err := db.WithContext(ctx).
		Where("created_at >= ? AND created_at <= ?", start, end).
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

type ProductionInfoQuery struct {
	OrderNo   string
	StartDate *time.Time
	EndDate   *time.Time
	Page      int
	PageSize  int
}

// ListProductionInfos pages through stored records, newest document first.
func ListProductionInfos(ctx context.Context, db *gorm.DB, q ProductionInfoQuery) (int64, []ProductionInfo, error) {
	query := db.WithContext(ctx).Model(&ProductionInfo{})
	if q.OrderNo != "" {
		query = query.Where("order_no LIKE ?", "%"+q.OrderNo+"%")
	}
	if q.StartDate != nil {
		query = query.Where("created_at >= ?", *q.StartDate)
	}
	if q.EndDate != nil {
		query = query.Where("created_at <= ?", *q.EndDate)
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

	var records []ProductionInfo
	err := query.Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&records).Error
	if err != nil {
		return 0, nil, err
	}
	return total, records, nil
}
