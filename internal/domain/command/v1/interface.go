package commandv1

import "context"

// CommandReader defines the interface for reading commands from a sequencer.
//
//go:generate mockgen -source interface.go -destination=mock/interface_mock.go -package=commandv1_mock
type CommandReader interface {
	// ReadCommand blocks until the next envelope is available. A decoding
	// failure returns the envelope offset together with the error.
	ReadCommand(ctx context.Context) (Envelope, error)
	// SetOffset positions the reader so the next envelope read has this offset.
	SetOffset(offset int64) error
	// Commit acknowledges a processed envelope to the source.
	Commit(ctx context.Context, env Envelope) error
	Close() error
}
