package config

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"strings"
	"sync"
	"time"

	"cloud.google.com/go/pubsub"
	"github.com/joho/godotenv"
	"google.golang.org/api/option"
)

// UploadEvent is published after an ingest or validation run completes.
// Consumers (reporting, notification) are outside this service.
type UploadEvent struct {
	FeedType         string    `json:"feed_type"`
	ObjectKey        string    `json:"object_key,omitempty"`
	RecordsProcessed int       `json:"records_processed"`
	ExceptionCount   int       `json:"exception_count"`
	CorrelationId    string    `json:"correlation_id"`
	OccurredAt       time.Time `json:"occurred_at"`
}

var (
	pubsubClient   *pubsub.Client
	pubsubClientMu sync.Mutex
)

func init() {
	// Load env from .env
	godotenv.Load()
}

func getPubSubProjectID() string {
	if v := os.Getenv("PUBSUB_PROJECT_ID"); v != "" {
		return v
	}
	if v := os.Getenv("GOOGLE_CLOUD_PROJECT"); v != "" {
		return v
	}
	if v := os.Getenv("GCP_PROJECT"); v != "" {
		return v
	}
	return ""
}

func getPubSubClient(ctx context.Context) (*pubsub.Client, error) {
	pubsubClientMu.Lock()
	defer pubsubClientMu.Unlock()
	if pubsubClient != nil {
		return pubsubClient, nil
	}

	projectID := getPubSubProjectID()
	if projectID == "" {
		return nil, errors.New("PUBSUB_PROJECT_ID/GOOGLE_CLOUD_PROJECT not set")
	}

	var opts []option.ClientOption
	if credJSON := strings.TrimSpace(os.Getenv("PUBSUB_CREDENTIALS_JSON")); credJSON != "" {
		opts = append(opts, option.WithCredentialsJSON([]byte(credJSON)))
	}

	client, err := pubsub.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, err
	}
	pubsubClient = client
	return pubsubClient, nil
}

// PublishUploadEvent publishes an UploadEvent to PUBSUB_TOPIC_UPLOADS.
// Publishing is best-effort: when the topic is not configured the call is a
// no-op, and callers must not fail their request on a publish error.
func PublishUploadEvent(ctx context.Context, event UploadEvent) error {
	topicID := strings.TrimSpace(os.Getenv("PUBSUB_TOPIC_UPLOADS"))
	if topicID == "" {
		return nil
	}

	client, err := getPubSubClient(ctx)
	if err != nil {
		return err
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	topic := client.Topic(topicID)
	defer topic.Stop()
	result := topic.Publish(ctx, &pubsub.Message{Data: payload})
	_, err = result.Get(ctx)
	return err
}
