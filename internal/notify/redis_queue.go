package notify

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RedisQueue is a Queue on a Redis list: producers LPUSH, the worker BRPOPs.
// Popped jobs are gone, so Delete is a no-op.
type RedisQueue struct {
	client redis.UniversalClient
	key    string
}

// NewRedisQueue wraps client, storing jobs under key.
func NewRedisQueue(client redis.UniversalClient, key string) *RedisQueue {
	if client == nil {
		panic("notify: redis client cannot be nil")
	}
	if key == "" {
		key = "doctors-portal:mail"
	}
	return &RedisQueue{client: client, key: key}
}

func (q *RedisQueue) Send(ctx context.Context, body string) error {
	if err := q.client.LPush(ctx, q.key, body).Err(); err != nil {
		return fmt.Errorf("notify: redis enqueue: %w", err)
	}
	return nil
}

func (q *RedisQueue) Receive(ctx context.Context, maxMessages int, waitSeconds int) ([]Message, error) {
	if maxMessages <= 0 {
		maxMessages = 1
	}
	if waitSeconds <= 0 {
		waitSeconds = 1
	}

	res, err := q.client.BRPop(ctx, time.Duration(waitSeconds)*time.Second, q.key).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("notify: redis receive: %w", err)
	}
	// BRPOP returns [key, value].
	messages := []Message{newRedisMessage(res[1])}

	for len(messages) < maxMessages {
		body, err := q.client.RPop(ctx, q.key).Result()
		if errors.Is(err, redis.Nil) {
			break
		}
		if err != nil {
			return messages, nil
		}
		messages = append(messages, newRedisMessage(body))
	}
	return messages, nil
}

func (q *RedisQueue) Delete(context.Context, string) error {
	return nil
}

func newRedisMessage(body string) Message {
	return Message{ID: uuid.NewString(), Body: body}
}

var _ Queue = (*RedisQueue)(nil)
