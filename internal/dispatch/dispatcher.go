package dispatch

import (
	"context"
	"time"
)

// Job types carried on the queues.
const (
	JobImageCapture   = "image_capture"
	JobProfileRefresh = "profile_refresh"
)

// Job is the wire shape of a queued background task. Jobs are keyed by user
// id; re-delivery is harmless because the consumers are idempotent.
type Job struct {
	Type       string    `json:"type"`
	UserID     string    `json:"userId"`
	ImageURL   string    `json:"imageUrl,omitempty"`
	EnqueuedAt time.Time `json:"enqueuedAt"`
}

// Dispatcher enqueues fire-and-forget background work. Both operations
// return immediately; job completion is never observable by the caller and
// enqueue failures must be treated as non-fatal by resolvers.
type Dispatcher interface {
	EnqueueImageCapture(ctx context.Context, userID, imageURL string) error
	EnqueueProfileRefresh(ctx context.Context, userID string) error
}
