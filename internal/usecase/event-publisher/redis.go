package eventpublisher

import (
	"context"
	"encoding/json"

	"github.com/muhammadchandra19/exchange-engine/pkg/errors"
	"github.com/muhammadchandra19/exchange-engine/pkg/logger"
	"github.com/muhammadchandra19/exchange-engine/pkg/redis"
)

// Publisher sends replies and broadcasts over Redis pub/sub.
type Publisher struct {
	redisclient redis.Client
	logger      *logger.Logger
}

// NewPublisher creates a Publisher on the given Redis client.
func NewPublisher(redisclient redis.Client, logger *logger.Logger) *Publisher {
	return &Publisher{
		redisclient: redisclient,
		logger:      logger,
	}
}

// Publish encodes message as JSON and publishes it on channel. A channel
// without subscribers is not an error.
func (p *Publisher) Publish(ctx context.Context, channel string, message any) error {
	buf, err := json.Marshal(message)
	if err != nil {
		p.logger.ErrorContext(ctx, err,
			logger.Field{Key: "channel", Value: channel},
			logger.Field{Key: "action", Value: "marshal message"},
		)
		return errors.NewTracer("failed to encode message").Wrap(err)
	}

	receivers, err := p.redisclient.Publish(ctx, channel, buf)
	if err != nil {
		p.logger.ErrorContext(ctx, err,
			logger.Field{Key: "channel", Value: channel},
			logger.Field{Key: "action", Value: "publish message"},
		)
		return errors.NewTracer("failed to publish message").Wrap(err)
	}

	p.logger.DebugContext(ctx, "Published",
		logger.Field{Key: "channel", Value: channel},
		logger.Field{Key: "receivers", Value: receivers},
	)
	return nil
}
