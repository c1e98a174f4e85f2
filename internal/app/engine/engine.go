package engine

import (
	"context"
	stderrors "errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/muhammadchandra19/exchange-engine/internal/config"
	commandv1 "github.com/muhammadchandra19/exchange-engine/internal/domain/command/v1"
	eventpublisherv1 "github.com/muhammadchandra19/exchange-engine/internal/domain/event-publisher/v1"
	snapshotv1 "github.com/muhammadchandra19/exchange-engine/internal/domain/snapshot/v1"
	"github.com/muhammadchandra19/exchange-engine/internal/metrics"
	"github.com/muhammadchandra19/exchange-engine/internal/usecase/ledger"
	"github.com/muhammadchandra19/exchange-engine/internal/usecase/orderbook"
	"github.com/muhammadchandra19/exchange-engine/pkg/errors"
	"github.com/muhammadchandra19/exchange-engine/pkg/logger"
)

const readBackoff = 100 * time.Millisecond

// ErrNotRunning is reported by Healthy when the command processor is not running.
var ErrNotRunning = stderrors.New("engine is not running")

// Engine owns every order book and the balance ledger. Commands are applied
// one at a time by a single goroutine; mu is held for each command so the
// snapshot manager sees a consistent state.
type Engine struct {
	// Core components
	reader        commandv1.CommandReader
	snapshotStore snapshotv1.Store
	publisher     eventpublisherv1.Publisher
	history       eventpublisherv1.HistorySink
	metrics       *metrics.Metrics
	logger        *logger.Logger
	config        *config.Config

	// State, guarded by mu
	mu                 sync.Mutex
	books              map[string]*orderbook.Orderbook
	ledger             *ledger.Ledger
	commandOffset      int64
	lastSnapshotOffset int64
	totalFills         int64

	outbox chan eventpublisherv1.Event
	now    func() time.Time

	// Shutdown coordination
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	running atomic.Bool

	// Configuration
	snapshotInterval     time.Duration
	snapshotCommandDelta int64
	publishTimeout       time.Duration
}

// NewEngine creates an Engine with default options.
func NewEngine(
	reader commandv1.CommandReader,
	snapshotStore snapshotv1.Store,
	publisher eventpublisherv1.Publisher,
	history eventpublisherv1.HistorySink,
	metrics *metrics.Metrics,
	logger *logger.Logger,
	config *config.Config,
) (*Engine, error) {
	return NewEngineWithOptions(reader, snapshotStore, publisher, history, metrics, logger, config, DefaultEngineOptions())
}

// NewEngineWithOptions creates an Engine and restores its state from the
// snapshot store, or seeds the configured markets and users when there is
// no snapshot.
func NewEngineWithOptions(
	reader commandv1.CommandReader,
	snapshotStore snapshotv1.Store,
	publisher eventpublisherv1.Publisher,
	history eventpublisherv1.HistorySink,
	metrics *metrics.Metrics,
	logger *logger.Logger,
	config *config.Config,
	options *Options,
) (*Engine, error) {
	e := &Engine{
		reader:        reader,
		snapshotStore: snapshotStore,
		publisher:     publisher,
		history:       history,
		metrics:       metrics,
		logger:        logger,
		config:        config,

		books:              make(map[string]*orderbook.Orderbook),
		ledger:             ledger.NewLedger(),
		commandOffset:      -1,
		lastSnapshotOffset: -1,

		outbox: make(chan eventpublisherv1.Event, options.OutboxSize),
		now:    time.Now,

		snapshotInterval:     options.SnapshotInterval,
		snapshotCommandDelta: options.SnapshotCommandDelta,
		publishTimeout:       options.PublishTimeout,
	}

	if err := e.loadSnapshot(context.Background()); err != nil {
		return nil, errors.NewTracer("failed to load snapshot").Wrap(err)
	}

	return e, nil
}

// Start positions the reader after the last applied command and starts the
// command processor, the snapshot manager and the outbox.
func (e *Engine) Start(ctx context.Context) error {
	if offset := e.GetCommandOffset(); offset >= 0 {
		if err := e.reader.SetOffset(offset + 1); err != nil {
			return errors.NewTracer("failed to set command offset").Wrap(err)
		}
	}

	e.ctx, e.cancel = context.WithCancel(ctx)
	e.running.Store(true)

	e.wg.Add(3)
	go e.runCommandProcessor()
	go e.runSnapshotManager()
	go e.runOutbox()

	e.logger.Info("Engine started",
		logger.Field{Key: "markets", Value: e.Markets()},
		logger.Field{Key: "commandOffset", Value: e.GetCommandOffset()},
	)

	return nil
}

// Stop cancels processing, waits for the outbox to drain and stores a final
// snapshot when commands were applied since the last one.
func (e *Engine) Stop(ctx context.Context) error {
	if e.cancel != nil {
		e.cancel()
	}

	done := make(chan struct{})
	go func() {
		e.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		e.logger.Warn("Engine stop timeout exceeded")
		return ctx.Err()
	}

	if e.shouldCreateSnapshot() {
		e.createAndStoreSnapshot(ctx)
	}
	if err := e.history.Close(); err != nil {
		e.logger.Error(err, logger.Field{Key: "action", Value: "close_history_sink"})
	}

	e.logger.Info("Engine stopped gracefully", logger.Field{
		Key:   "commandOffset",
		Value: e.GetCommandOffset(),
	})
	return nil
}

// Healthy reports whether the command processor is running.
func (e *Engine) Healthy(ctx context.Context) error {
	if !e.running.Load() {
		return ErrNotRunning
	}
	return nil
}

// runCommandProcessor reads and applies commands in a single goroutine.
func (e *Engine) runCommandProcessor() {
	defer e.wg.Done()
	defer close(e.outbox)
	defer e.running.Store(false)

	e.logger.Info("Starting command processor")

	for {
		env, err := e.reader.ReadCommand(e.ctx)
		if err != nil {
			if e.ctx.Err() != nil {
				e.logger.Info("Command processor shutting down")
				if err := e.reader.Close(); err != nil {
					e.logger.Error(err, logger.Field{Key: "action", Value: "close_command_reader"})
				}
				return
			}

			var decodeErr *commandv1.DecodeError
			if stderrors.As(err, &decodeErr) {
				e.rejectUndecodable(e.ctx, decodeErr)
				continue
			}

			e.logger.ErrorContext(e.ctx, err, logger.Field{
				Key:   "action",
				Value: "read_command",
			})
			select {
			case <-e.ctx.Done():
			case <-time.After(readBackoff):
			}
			continue
		}

		e.Process(e.ctx, env)

		if err := e.reader.Commit(e.ctx, env); err != nil {
			e.logger.ErrorContext(e.ctx, err, logger.Field{
				Key:   "action",
				Value: "commit_command",
			})
		}
	}
}

// runSnapshotManager handles periodic snapshots.
func (e *Engine) runSnapshotManager() {
	defer e.wg.Done()

	ticker := time.NewTicker(e.snapshotInterval)
	defer ticker.Stop()

	e.logger.Info("Starting snapshot manager", logger.Field{
		Key:   "interval",
		Value: e.snapshotInterval.String(),
	})

	for {
		select {
		case <-e.ctx.Done():
			e.logger.Info("Snapshot manager shutting down")
			return
		case <-ticker.C:
			if e.shouldCreateSnapshot() {
				e.createAndStoreSnapshot(e.ctx)
			}
		}
	}
}

// rejectUndecodable consumes the offset of an envelope that could not be
// parsed and answers it when the correlation id was recoverable.
func (e *Engine) rejectUndecodable(ctx context.Context, decodeErr *commandv1.DecodeError) {
	e.mu.Lock()
	e.commandOffset = decodeErr.Offset
	e.mu.Unlock()

	e.metrics.ObserveCommand("UNDECODABLE", metrics.ResultRejected)
	e.metrics.SetCommandOffset(decodeErr.Offset)

	if decodeErr.CorrelationID != "" {
		e.reply(decodeErr.CorrelationID, commandv1.NewErrorReply(
			string(errors.InvalidCommand), decodeErr.Error()))
	}
}

// Markets returns the symbols of every book, sorted.
func (e *Engine) Markets() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.marketsLocked()
}

func (e *Engine) marketsLocked() []string {
	out := make([]string, 0, len(e.books))
	for ticker := range e.books {
		out = append(out, ticker)
	}
	sort.Strings(out)
	return out
}

// addBookLocked registers a book for baseAsset unless one exists.
func (e *Engine) addBookLocked(baseAsset string) *orderbook.Orderbook {
	baseAsset = strings.ToUpper(baseAsset)
	ticker := orderbook.Ticker(baseAsset, e.config.App.BaseCurrency)
	if book, ok := e.books[ticker]; ok {
		return book
	}
	book := orderbook.NewOrderbook(baseAsset, e.config.App.BaseCurrency)
	e.books[ticker] = book
	return book
}

// seedLocked creates the configured markets and funds the seed users with
// SeedAmount of the base currency and of every market's base asset.
func (e *Engine) seedLocked() error {
	for _, market := range e.config.App.Markets {
		e.addBookLocked(market)
	}

	amount := e.config.App.SeedAmount
	if !amount.IsPositive() {
		return nil
	}
	assets := []string{e.config.App.BaseCurrency}
	for _, market := range e.config.App.Markets {
		assets = append(assets, strings.ToUpper(market))
	}
	for _, user := range e.config.App.SeedUsers {
		for _, asset := range assets {
			if _, err := e.ledger.Credit(user, asset, amount); err != nil {
				return fmt.Errorf("seed %s for user %s: %w", asset, user, err)
			}
		}
	}
	return nil
}

// Thread-safe getters and setters
func (e *Engine) getLastSnapshotOffset() int64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastSnapshotOffset
}

func (e *Engine) setLastSnapshotOffset(offset int64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if offset > e.lastSnapshotOffset {
		e.lastSnapshotOffset = offset
	}
}

// GetCommandOffset returns the offset of the last applied command, -1 when none.
func (e *Engine) GetCommandOffset() int64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.commandOffset
}

// GetLastSnapshotOffset returns the command offset of the last stored snapshot.
func (e *Engine) GetLastSnapshotOffset() int64 {
	return e.getLastSnapshotOffset()
}

// GetTotalFills returns the number of fills produced since start.
func (e *Engine) GetTotalFills() int64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.totalFills
}
