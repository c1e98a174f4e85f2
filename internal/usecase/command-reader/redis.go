package commandreader

import (
	"context"
	"time"

	commandv1 "github.com/muhammadchandra19/exchange-engine/internal/domain/command/v1"
	"github.com/muhammadchandra19/exchange-engine/pkg/errors"
	"github.com/muhammadchandra19/exchange-engine/pkg/logger"
	"github.com/muhammadchandra19/exchange-engine/pkg/redis"
)

const defaultPopTimeout = time.Second

// RedisReader pops command envelopes from a Redis list. Redis lists carry no
// position, so offsets are a local counter seeded by SetOffset. It must have
// a single consumer.
type RedisReader struct {
	client     redis.Client
	queue      string
	popTimeout time.Duration
	next       int64
	logger     *logger.Logger
}

// NewRedisReader creates a reader popping from queue.
func NewRedisReader(client redis.Client, queue string, log *logger.Logger) *RedisReader {
	return &RedisReader{
		client:     client,
		queue:      queue,
		popTimeout: defaultPopTimeout,
		logger:     log,
	}
}

// SetOffset sets the offset stamped on the next popped envelope.
func (r *RedisReader) SetOffset(offset int64) error {
	if offset < 0 {
		return errors.NewErrorDetails("offset must not be negative", string(errors.GeneralBadRequestError), "offset")
	}
	r.next = offset
	return nil
}

// ReadCommand blocks until an envelope is popped or ctx is done. Pop
// timeouts are retried so ctx cancellation is observed at least once per timeout.
func (r *RedisReader) ReadCommand(ctx context.Context) (commandv1.Envelope, error) {
	for {
		if err := ctx.Err(); err != nil {
			return commandv1.Envelope{}, err
		}

		raw, ok, err := r.client.BRPop(ctx, r.popTimeout, r.queue)
		if err != nil {
			if ctx.Err() != nil {
				return commandv1.Envelope{}, ctx.Err()
			}
			r.logger.Error(err,
				logger.Field{Key: "operation", Value: "BRPop"},
				logger.Field{Key: "queue", Value: r.queue},
			)
			return commandv1.Envelope{}, err
		}
		if !ok {
			continue
		}

		offset := r.next
		r.next++

		env, err := commandv1.DecodeEnvelope([]byte(raw), offset)
		if err != nil {
			r.logger.Error(err,
				logger.Field{Key: "operation", Value: "DecodeEnvelope"},
				logger.Field{Key: "offset", Value: offset},
			)
			return env, err
		}
		return env, nil
	}
}

// Commit is a no-op; a popped element is already gone from the list.
func (r *RedisReader) Commit(ctx context.Context, env commandv1.Envelope) error {
	return nil
}

// Close does not close the shared Redis client.
func (r *RedisReader) Close() error {
	return nil
}
