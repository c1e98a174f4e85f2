package eventpublisherv1

import (
	"context"
)

// Publisher delivers replies and market broadcasts.
//
//go:generate mockgen -source interface.go -destination=mock/interface_mock.go -package=eventpublisherv1_mock
type Publisher interface {
	// Publish encodes message as JSON and sends it on channel.
	Publish(ctx context.Context, channel string, message any) error
}

// HistorySink receives order and trade records for the history writer.
type HistorySink interface {
	PublishHistory(ctx context.Context, event HistoryEvent) error
	Close() error
}
