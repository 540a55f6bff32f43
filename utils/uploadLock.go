package utils

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bitbucket.org/mmdatafocus/factory_backend/config"
	"github.com/bsm/redislock"
)

// ErrFeedLocked reports that another upload of the same feed holds the lock.
var ErrFeedLocked = errors.New("another upload for this feed is in progress")

// FeedLock serializes ingestion of one feed type ("production"/"worklog").
// It is a best-effort optimization: correctness does not depend on it — the
// unique dedup indexes make concurrent same-key upserts safe — but holding
// the lock keeps two simultaneous uploads of the same feed from interleaving
// their batches. The lock releases when the returned function is called.
func FeedLock(ctx context.Context, feedType string, moduleName string, functionName string) (func(), error) {
	logger := config.GetLogger()
	locker := config.GetRedisLock()
	if locker == nil {
		config.LogError(logger, moduleName, functionName, "Redis lock not initialized", feedType, errors.New("redis lock is nil"))
		return nil, errors.New("service not ready (redis lock not initialized)")
	}

	lockKey := fmt.Sprintf("upload:%s", feedType)
	lock, err := locker.Obtain(ctx, lockKey, 60*time.Second, nil)
	if err == redislock.ErrNotObtained {
		config.LogError(logger, moduleName, functionName, "Could not obtain upload lock", feedType, err)
		return nil, ErrFeedLocked
	} else if err != nil {
		config.LogError(logger, moduleName, functionName, "Error obtaining upload lock", feedType, err)
		return nil, err
	}

	return func() { _ = lock.Release(ctx) }, nil
}
