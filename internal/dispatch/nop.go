package dispatch

import (
	"context"

	"github.com/liamneesonsarm/pickemup/pkg/logger"
)

// NopDispatcher is used when no Redis is configured: jobs are logged and
// dropped. Profile freshness degrades but logins keep working.
type NopDispatcher struct{}

func NewNopDispatcher() *NopDispatcher { return &NopDispatcher{} }

func (NopDispatcher) EnqueueImageCapture(ctx context.Context, userID, imageURL string) error {
	logger.Warnf("dispatch disabled, dropping image capture for user %s", userID)
	return nil
}

func (NopDispatcher) EnqueueProfileRefresh(ctx context.Context, userID string) error {
	logger.Warnf("dispatch disabled, dropping profile refresh for user %s", userID)
	return nil
}
