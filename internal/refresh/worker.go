package refresh

import (
	"context"
	"time"

	"github.com/liamneesonsarm/pickemup/internal/dispatch"
	"github.com/liamneesonsarm/pickemup/pkg/logger"
)

// Worker consumes queued jobs and runs them. Job failures are logged and the
// job is dropped; re-enqueueing is left to the producers, since every job is
// re-issued on the user's next authentication anyway.
type Worker struct {
	queue     *dispatch.RedisDispatcher
	refresher *Refresher
	capturer  *ImageCapturer
}

func NewWorker(queue *dispatch.RedisDispatcher, r *Refresher, c *ImageCapturer) *Worker {
	return &Worker{queue: queue, refresher: r, capturer: c}
}

// Run consumes jobs until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) {
	logger.Infof("refresh worker started")
	for {
		job, err := w.queue.Dequeue(ctx, 5*time.Second)
		if ctx.Err() != nil {
			logger.Infof("refresh worker stopping")
			return
		}
		if err != nil {
			logger.Errorf("dequeue: %v", err)
			time.Sleep(time.Second)
			continue
		}
		if job == nil {
			continue
		}
		w.handle(ctx, job)
	}
}

func (w *Worker) handle(ctx context.Context, job *dispatch.Job) {
	switch job.Type {
	case dispatch.JobImageCapture:
		if err := w.capturer.Capture(ctx, job.UserID, job.ImageURL); err != nil {
			logger.Errorf("image capture for user %s: %v", job.UserID, err)
		}
	case dispatch.JobProfileRefresh:
		if err := w.refresher.RefreshProfile(ctx, job.UserID); err != nil {
			logger.Errorf("profile refresh for user %s: %v", job.UserID, err)
		}
	default:
		logger.Warnf("unknown job type %q, dropping", job.Type)
	}
}
