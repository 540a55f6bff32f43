package workflow

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"bitbucket.org/mmdatafocus/factory_backend/config"
	"bitbucket.org/mmdatafocus/factory_backend/models"
	"bitbucket.org/mmdatafocus/factory_backend/parser"
	"bitbucket.org/mmdatafocus/factory_backend/utils"
)

const (
	FeedTypeProduction = "production"
	FeedTypeWorklog    = "worklog"
)

// ImportSummary is what an ingestion run reports back to the caller. Row
// errors are diagnostics for the uploader, not failures: the rest of the
// file was persisted.
type ImportSummary struct {
	FeedType         string            `json:"feed_type"`
	RecordsParsed    int               `json:"records_parsed"`
	RecordsPersisted int               `json:"records_processed"`
	RowErrors        []parser.RowError `json:"row_errors"`
	ObjectKey        string            `json:"object_key,omitempty"`
}

// ProcessProductionUploadWorkflow ingests one production feed file. The feed
// lock serializes concurrent uploads of the same feed so two files cannot
// interleave their batches.
func ProcessProductionUploadWorkflow(ctx context.Context, db *gorm.DB, logger *logrus.Logger, r io.Reader, filterMonth string) (*ImportSummary, error) {
	release, err := utils.FeedLock(ctx, FeedTypeProduction, "uploadWorkflow.go", "ProcessProductionUploadWorkflow")
	if err != nil {
		return nil, err
	}
	defer release()

	records, rowErrors, err := parser.ParseProductionWorkbook(r, filterMonth)
	if err != nil {
		config.LogError(logger, "uploadWorkflow.go", "ProcessProductionUploadWorkflow", "Parsing production workbook", filterMonth, err)
		return nil, err
	}

	persisted, err := models.UpsertProductionInfos(ctx, db, records)
	if err != nil {
		config.LogError(logger, "uploadWorkflow.go", "ProcessProductionUploadWorkflow", "Upserting production records", len(records), err)
		return nil, err
	}

	summary := &ImportSummary{
		FeedType:         FeedTypeProduction,
		RecordsParsed:    len(records) + len(rowErrors),
		RecordsPersisted: persisted,
		RowErrors:        rowErrors,
	}
	publishUploadEvent(ctx, logger, summary)
	return summary, nil
}

// ProcessWorklogUploadWorkflow ingests one worklog workbook, one sheet per
// employee.
func ProcessWorklogUploadWorkflow(ctx context.Context, db *gorm.DB, logger *logrus.Logger, r io.Reader) (*ImportSummary, error) {
	release, err := utils.FeedLock(ctx, FeedTypeWorklog, "uploadWorkflow.go", "ProcessWorklogUploadWorkflow")
	if err != nil {
		return nil, err
	}
	defer release()

	records, rowErrors, err := parser.ParseWorklogWorkbook(r)
	if err != nil {
		config.LogError(logger, "uploadWorkflow.go", "ProcessWorklogUploadWorkflow", "Parsing worklog workbook", nil, err)
		return nil, err
	}

	persisted, err := models.UpsertEmployeeWorklogs(ctx, db, records)
	if err != nil {
		config.LogError(logger, "uploadWorkflow.go", "ProcessWorklogUploadWorkflow", "Upserting worklog records", len(records), err)
		return nil, err
	}

	summary := &ImportSummary{
		FeedType:         FeedTypeWorklog,
		RecordsParsed:    len(records) + len(rowErrors),
		RecordsPersisted: persisted,
		RowErrors:        rowErrors,
	}
	publishUploadEvent(ctx, logger, summary)
	return summary, nil
}

// ProcessStorageUploadWorkflow ingests a feed file already sitting in object
// storage, for uploads that went through the presigned-URL path.
func ProcessStorageUploadWorkflow(ctx context.Context, db *gorm.DB, logger *logrus.Logger, feedType, objectKey, filterMonth string) (*ImportSummary, error) {
	if feedType != FeedTypeProduction && feedType != FeedTypeWorklog {
		return nil, fmt.Errorf("unknown feed type %q", feedType)
	}

	data, err := utils.DownloadFileFromStorage(ctx, objectKey)
	if err != nil {
		config.LogError(logger, "uploadWorkflow.go", "ProcessStorageUploadWorkflow", "Downloading object", objectKey, err)
		return nil, err
	}

	var summary *ImportSummary
	switch feedType {
	case FeedTypeWorklog:
		summary, err = ProcessWorklogUploadWorkflow(ctx, db, logger, bytes.NewReader(data))
	case FeedTypeProduction:
		summary, err = ProcessProductionUploadWorkflow(ctx, db, logger, bytes.NewReader(data), filterMonth)
	}
	if err != nil {
		return nil, err
	}
	summary.ObjectKey = objectKey
	return summary, nil
}

func publishUploadEvent(ctx context.Context, logger *logrus.Logger, summary *ImportSummary) {
	correlationId, _ := utils.GetCorrelationIdFromContext(ctx)
	event := config.UploadEvent{
		FeedType:         summary.FeedType,
		ObjectKey:        summary.ObjectKey,
		RecordsProcessed: summary.RecordsPersisted,
		ExceptionCount:   len(summary.RowErrors),
		CorrelationId:    correlationId,
		OccurredAt:       time.Now(),
	}
	if err := config.PublishUploadEvent(ctx, event); err != nil {
		// Event publication is best effort, ingestion already succeeded.
		config.LogError(logger, "uploadWorkflow.go", "publishUploadEvent", "Publishing upload event", event, err)
	}
}
