package workflow

import (
	"context"
	"testing"
)

func TestProcessStorageUploadWorkflow_RejectsUnknownFeedType(t *testing.T) {
	// The guard runs before any storage or database access, so nil
	// dependencies are fine here.
	_, err := ProcessStorageUploadWorkflow(context.Background(), nil, nil, "prodcution", "uploads/feed.xlsx", "")
	if err == nil {
		t.Fatal("expected an error for an unknown feed type")
	}
}
