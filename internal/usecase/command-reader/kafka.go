package commandreader

import (
	"context"

	commandv1 "github.com/muhammadchandra19/exchange-engine/internal/domain/command/v1"
	"github.com/muhammadchandra19/exchange-engine/internal/config"
	"github.com/muhammadchandra19/exchange-engine/pkg/logger"
	"github.com/segmentio/kafka-go"
)

type messageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	SetOffset(offset int64) error
	Close() error
}

// KafkaReader reads command envelopes from a single partition of the command topic.
type KafkaReader struct {
	kafkaReader messageReader
	logger      *logger.Logger
}

// NewKafkaReader creates a reader on the command topic. Without a SetOffset
// call it starts from the first retained message.
func NewKafkaReader(cfg config.KafkaConfig, log *logger.Logger) *KafkaReader {
	kafkaReader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     cfg.Brokers,
		Topic:       cfg.Topic,
		Partition:   cfg.Partition,
		MinBytes:    1,
		MaxBytes:    10e6,
		StartOffset: kafka.FirstOffset,
	})

	return &KafkaReader{
		kafkaReader: kafkaReader,
		logger:      log,
	}
}

func (r *KafkaReader) logError(err error, operation string) {
	r.logger.Error(err,
		logger.Field{Key: "error", Value: err.Error()},
		logger.Field{Key: "operation", Value: operation},
	)
}

// SetOffset positions the reader so the next message read has this offset.
func (r *KafkaReader) SetOffset(offset int64) error {
	if err := r.kafkaReader.SetOffset(offset); err != nil {
		r.logError(err, "SetOffset")
		return err
	}
	return nil
}

// ReadCommand blocks for the next message and decodes it. A message that
// does not decode still returns its offset inside a *commandv1.DecodeError.
func (r *KafkaReader) ReadCommand(ctx context.Context) (commandv1.Envelope, error) {
	msg, err := r.kafkaReader.ReadMessage(ctx)
	if err != nil {
		if ctx.Err() == nil {
			r.logError(err, "ReadMessage")
		}
		return commandv1.Envelope{}, err
	}

	env, err := commandv1.DecodeEnvelope(msg.Value, msg.Offset)
	if err != nil {
		r.logError(err, "DecodeEnvelope")
		return env, err
	}

	r.logger.Debug("ReadCommand",
		logger.Field{Key: "offset", Value: msg.Offset},
		logger.Field{Key: "type", Value: env.Command.Type},
		logger.Field{Key: "correlationId", Value: env.CorrelationID},
	)

	return env, nil
}

// Commit is a no-op. Progress is recorded in the snapshot command offset.
func (r *KafkaReader) Commit(ctx context.Context, env commandv1.Envelope) error {
	return nil
}

// Close closes the underlying Kafka reader.
func (r *KafkaReader) Close() error {
	if err := r.kafkaReader.Close(); err != nil {
		r.logError(err, "Close")
		return err
	}
	return nil
}
