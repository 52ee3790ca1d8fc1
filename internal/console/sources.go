package console

import (
	"context"
	"sync"
	"time"

	"github.com/agrilink/agrilink-backend/internal/feed"
	"github.com/agrilink/agrilink-backend/internal/poll"
	"github.com/agrilink/agrilink-backend/internal/reviewer"
	"github.com/agrilink/agrilink-backend/pkg/db/models"
)

const notificationFetchLimit = 100

// NotificationSource polls the durable notification stream and swaps it into
// the feed merger wholesale on each successful fetch.
func NotificationSource(client *Client, merger *feed.Merger, interval time.Duration) poll.Source {
	return poll.FuncSource{
		SourceName:    "notifications",
		FetchInterval: interval,
		FetchFunc: func(ctx context.Context) (poll.Apply, error) {
			notifications, err := client.ListNotifications(ctx, notificationFetchLimit)
			if err != nil {
				return nil, err
			}
			entries := make([]feed.Entry, 0, len(notifications))
			for i := range notifications {
				entries = append(entries, entryFromNotification(&notifications[i]))
			}
			return func() {
				merger.ReplaceDurable(entries)
			}, nil
		},
	}
}

func entryFromNotification(notification *models.Notification) feed.Entry {
	return feed.Entry{
		ID:        notification.ID.String(),
		Title:     notification.Title,
		Message:   notification.Message,
		Type:      notification.Type,
		Icon:      notification.Icon,
		CreatedAt: notification.CreatedAt,
		Read:      notification.Read(),
		Data:      notification.Data,
	}
}

// RequestCache holds the most recently fetched request listing for the
// dashboard, along with sync bookkeeping so the UI can flag stale data.
type RequestCache struct {
	mu           sync.Mutex
	result       *reviewer.ListResult
	lastSyncedAt time.Time
}

// Replace installs a fresh listing.
func (c *RequestCache) Replace(result *reviewer.ListResult) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.result = result
	c.lastSyncedAt = time.Now()
}

// Snapshot returns the cached listing and when it was last synced. The
// listing is nil until the first successful fetch.
func (c *RequestCache) Snapshot() (*reviewer.ListResult, time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.result, c.lastSyncedAt
}

// RequestListSource polls the reviewer listing into a cache.
func RequestListSource(client *Client, cache *RequestCache, query ListQuery, interval time.Duration) poll.Source {
	return poll.FuncSource{
		SourceName:    "order-requests",
		FetchInterval: interval,
		FetchFunc: func(ctx context.Context) (poll.Apply, error) {
			result, err := client.ListOrderRequests(ctx, query)
			if err != nil {
				return nil, err
			}
			return func() {
				cache.Replace(result)
			}, nil
		},
	}
}
