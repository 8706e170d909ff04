package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/edvin/crisisdesk/internal/model"
)

// ErrQueueEmpty is returned by Pop when no event arrived before the timeout.
var ErrQueueEmpty = errors.New("notification queue empty")

// QueueClient is the subset of *redis.Client used by RedisQueue.
type QueueClient interface {
	LPush(ctx context.Context, key string, values ...interface{}) *redis.IntCmd
	BRPop(ctx context.Context, timeout time.Duration, keys ...string) *redis.StringSliceCmd
}

// RedisQueue is a durable hand-off between the API and the worker: the API
// pushes events, the worker pops and forwards them.
type RedisQueue struct {
	client QueueClient
	key    string
}

func NewRedisQueue(client QueueClient, key string) *RedisQueue {
	return &RedisQueue{client: client, key: key}
}

func (q *RedisQueue) Name() string { return "redis" }

func (q *RedisQueue) Deliver(ctx context.Context, evt model.Event) error {
	b, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	if err := q.client.LPush(ctx, q.key, b).Err(); err != nil {
		return fmt.Errorf("push event: %w", err)
	}
	return nil
}

// Pop blocks up to timeout for the oldest queued event.
func (q *RedisQueue) Pop(ctx context.Context, timeout time.Duration) (model.Event, error) {
	var evt model.Event

	res, err := q.client.BRPop(ctx, timeout, q.key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return evt, ErrQueueEmpty
		}
		return evt, fmt.Errorf("pop event: %w", err)
	}
	if len(res) < 2 {
		return evt, ErrQueueEmpty
	}
	if err := json.Unmarshal([]byte(res[1]), &evt); err != nil {
		return evt, fmt.Errorf("decode event: %w", err)
	}
	return evt, nil
}

// Relay moves events from a RedisQueue to a sink until ctx is cancelled.
type Relay struct {
	queue  *RedisQueue
	sink   Sink
	logger zerolog.Logger
	// PollTimeout bounds each blocking pop.
	PollTimeout time.Duration
	// Backoff is the pause after a queue error.
	Backoff time.Duration
}

func NewRelay(queue *RedisQueue, sink Sink, logger zerolog.Logger) *Relay {
	return &Relay{
		queue:       queue,
		sink:        sink,
		logger:      logger.With().Str("component", "relay").Logger(),
		PollTimeout: 5 * time.Second,
		Backoff:     500 * time.Millisecond,
	}
}

func (r *Relay) Run(ctx context.Context) {
	r.logger.Info().Str("sink", r.sink.Name()).Msg("relay started")
	for {
		if ctx.Err() != nil {
			r.logger.Info().Msg("relay stopped")
			return
		}

		evt, err := r.queue.Pop(ctx, r.PollTimeout)
		if err != nil {
			if errors.Is(err, ErrQueueEmpty) || ctx.Err() != nil {
				continue
			}
			r.logger.Error().Err(err).Msg("queue pop failed")
			select {
			case <-time.After(r.Backoff):
			case <-ctx.Done():
			}
			continue
		}

		if err := r.sink.Deliver(ctx, evt); err != nil {
			r.logger.Warn().Err(err).
				Str("event", evt.Type).
				Str("event_id", evt.ID).
				Msg("relay delivery failed")
		}
	}
}
