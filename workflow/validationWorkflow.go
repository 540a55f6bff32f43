package workflow

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"bitbucket.org/mmdatafocus/factory_backend/config"
	"bitbucket.org/mmdatafocus/factory_backend/models"
)

var ErrInvalidRange = errors.New("start date must not be after end date")

// ProcessValidationWorkflow reconciles the worklogs of a date window against
// the production declared in the same window, then writes each worklog's
// verdict back through the upsert path. Production records are selected on
// their document date (created_at), worklogs on work_date, both inclusive.
func ProcessValidationWorkflow(ctx context.Context, db *gorm.DB, logger *logrus.Logger, start, end time.Time) (*ReconciliationResult, error) {
	if start.After(end) {
		return nil, ErrInvalidRange
	}

	productions, err := models.ProductionInfosInWindow(ctx, db, start, end)
	if err != nil {
		config.LogError(logger, "validationWorkflow.go", "ProcessValidationWorkflow", "Querying production window", start, err)
		return nil, err
	}
	worklogs, err := models.EmployeeWorklogsInWindow(ctx, db, start, end)
	if err != nil {
		config.LogError(logger, "validationWorkflow.go", "ProcessValidationWorkflow", "Querying worklog window", start, err)
		return nil, err
	}

	result := ReconcileWorklogs(productions, worklogs)

	if classified := result.AllWorklogs(); len(classified) > 0 {
		if _, err := models.UpsertEmployeeWorklogs(ctx, db, classified); err != nil {
			config.LogError(logger, "validationWorkflow.go", "ProcessValidationWorkflow", "Persisting validation results", len(classified), err)
			return nil, err
		}
	}

	return result, nil
}
