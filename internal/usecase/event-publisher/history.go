package eventpublisher

import (
	"context"
	"encoding/json"

	eventpublisherv1 "github.com/muhammadchandra19/exchange-engine/internal/domain/event-publisher/v1"
	"github.com/muhammadchandra19/exchange-engine/internal/config"
	"github.com/muhammadchandra19/exchange-engine/pkg/errors"
	"github.com/muhammadchandra19/exchange-engine/pkg/logger"
	"github.com/segmentio/kafka-go"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// HistoryWriter publishes ORDER_UPDATE and TRADE_ADDED records to the history topic.
type HistoryWriter struct {
	kafkaWriter messageWriter
	logger      *logger.Logger
}

// NewHistoryWriter creates a HistoryWriter. Records are keyed by market so
// a market's records stay on one partition.
func NewHistoryWriter(cfg config.HistoryConfig, logger *logger.Logger) *HistoryWriter {
	kafkaWriter := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
	}

	return &HistoryWriter{
		kafkaWriter: kafkaWriter,
		logger:      logger,
	}
}

// PublishHistory writes one history record.
func (h *HistoryWriter) PublishHistory(ctx context.Context, event eventpublisherv1.HistoryEvent) error {
	buf, err := json.Marshal(event)
	if err != nil {
		return errors.NewTracer("failed to encode history event").Wrap(err)
	}

	msg := kafka.Message{
		Key:   []byte(marketOf(event)),
		Value: buf,
	}

	if err := h.kafkaWriter.WriteMessages(ctx, msg); err != nil {
		h.logger.ErrorContext(ctx, err,
			logger.Field{Key: "type", Value: event.Type},
			logger.Field{Key: "action", Value: "publish history event"},
		)
		return errors.NewTracer("failed to publish history event").Wrap(err)
	}
	return nil
}

// Close flushes pending writes and closes the writer.
func (h *HistoryWriter) Close() error {
	return h.kafkaWriter.Close()
}

func marketOf(event eventpublisherv1.HistoryEvent) string {
	switch data := event.Data.(type) {
	case eventpublisherv1.TradeAddedData:
		return data.Market
	case eventpublisherv1.OrderUpdateData:
		return data.Market
	}
	return ""
}

// NopHistory discards history records. It is used when the history topic is disabled.
type NopHistory struct{}

func (NopHistory) PublishHistory(context.Context, eventpublisherv1.HistoryEvent) error { return nil }

func (NopHistory) Close() error { return nil }
