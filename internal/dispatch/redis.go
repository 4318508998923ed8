package dispatch

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisDispatcher implements Dispatcher on Redis lists, one list per job
// type. Producers LPUSH JSON payloads; the worker BRPOPs so delivery is
// at-least-once in FIFO order per list.
type RedisDispatcher struct {
	client *redis.Client
	prefix string
}

// NewRedisDispatcher creates a Redis-backed dispatcher. Prefix may be empty.
func NewRedisDispatcher(client *redis.Client, prefix string) *RedisDispatcher {
	if prefix == "" {
		prefix = "jobs:"
	}
	return &RedisDispatcher{client: client, prefix: prefix}
}

func (d *RedisDispatcher) queue(jobType string) string {
	return d.prefix + jobType
}

func (d *RedisDispatcher) enqueue(ctx context.Context, j *Job) error {
	j.EnqueuedAt = time.Now().UTC()
	b, err := json.Marshal(j)
	if err != nil {
		return err
	}
	if err := d.client.LPush(ctx, d.queue(j.Type), b).Err(); err != nil {
		return fmt.Errorf("enqueue %s: %w", j.Type, err)
	}
	return nil
}

func (d *RedisDispatcher) EnqueueImageCapture(ctx context.Context, userID, imageURL string) error {
	return d.enqueue(ctx, &Job{Type: JobImageCapture, UserID: userID, ImageURL: imageURL})
}

func (d *RedisDispatcher) EnqueueProfileRefresh(ctx context.Context, userID string) error {
	return d.enqueue(ctx, &Job{Type: JobProfileRefresh, UserID: userID})
}

// Dequeue blocks up to timeout for the next job from either queue.
// Returns (nil, nil) when the wait times out.
func (d *RedisDispatcher) Dequeue(ctx context.Context, timeout time.Duration) (*Job, error) {
	res, err := d.client.BRPop(ctx, timeout, d.queue(JobImageCapture), d.queue(JobProfileRefresh)).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}
	// BRPOP returns [key, value]
	if len(res) != 2 {
		return nil, fmt.Errorf("dequeue: unexpected reply length %d", len(res))
	}
	var j Job
	if err := json.Unmarshal([]byte(res[1]), &j); err != nil {
		return nil, fmt.Errorf("dequeue: %w", err)
	}
	return &j, nil
}
