package engine

import (
	"context"
	"fmt"
	"sort"

	ledgerv1 "github.com/muhammadchandra19/exchange-engine/internal/domain/ledger/v1"
	snapshotv1 "github.com/muhammadchandra19/exchange-engine/internal/domain/snapshot/v1"
	"github.com/muhammadchandra19/exchange-engine/internal/metrics"
	"github.com/muhammadchandra19/exchange-engine/internal/usecase/orderbook"
	"github.com/muhammadchandra19/exchange-engine/pkg/logger"
)

// loadSnapshot restores books, balances and the command offset from the
// store. Without a snapshot the configured markets and users are seeded.
func (e *Engine) loadSnapshot(ctx context.Context) error {
	var snapshot *snapshotv1.Snapshot
	if e.config.Snapshot.Restore {
		var err error
		snapshot, err = e.snapshotStore.LoadStore(ctx)
		if err != nil {
			return err
		}
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if snapshot == nil {
		if err := e.seedLocked(); err != nil {
			return err
		}
		e.logger.Info("No snapshot found, engine seeded",
			logger.Field{Key: "markets", Value: e.marketsLocked()},
			logger.Field{Key: "users", Value: e.config.App.SeedUsers},
		)
		return nil
	}

	if err := e.restoreLocked(snapshot); err != nil {
		return err
	}

	e.logger.Info("Engine restored from snapshot",
		logger.Field{Key: "commandOffset", Value: snapshot.CommandOffset},
		logger.Field{Key: "markets", Value: e.marketsLocked()},
	)
	return nil
}

func (e *Engine) restoreLocked(snapshot *snapshotv1.Snapshot) error {
	books := make(map[string]*orderbook.Orderbook, len(snapshot.OrderBooks))
	for _, snap := range snapshot.OrderBooks {
		book, err := orderbook.RestoreOrderbook(snap, e.config.App.BaseCurrency)
		if err != nil {
			return err
		}
		if _, dup := books[book.Ticker()]; dup {
			return fmt.Errorf("snapshot lists market %s twice", book.Ticker())
		}
		books[book.Ticker()] = book
	}

	balances := make(map[string]map[string]ledgerv1.Balance, len(snapshot.Balances))
	for _, entry := range snapshot.Balances {
		for asset, b := range entry.Assets {
			if b.Available.IsNegative() || b.Locked.IsNegative() {
				return fmt.Errorf("snapshot balance of user %s in %s is negative", entry.UserID, asset)
			}
		}
		balances[entry.UserID] = entry.Assets
	}

	e.books = books
	e.ledger.Restore(balances)
	e.commandOffset = snapshot.CommandOffset
	e.lastSnapshotOffset = snapshot.CommandOffset

	// markets added to the configuration after the snapshot was taken
	for _, market := range e.config.App.Markets {
		e.addBookLocked(market)
	}
	for ticker, book := range e.books {
		e.metrics.SetRestingOrders(ticker, book.OrderCount())
	}
	e.metrics.SetCommandOffset(e.commandOffset)
	return nil
}

// createSnapshot deep-copies the engine state. Markets and users are sorted
// so equal states encode identically. Caller holds e.mu.
func (e *Engine) createSnapshot() *snapshotv1.Snapshot {
	snapshot := &snapshotv1.Snapshot{
		CommandOffset: e.commandOffset,
		OrderBooks:    make([]snapshotv1.OrderBookSnapshot, 0, len(e.books)),
		Balances:      []snapshotv1.UserBalances{},
	}

	for _, ticker := range e.marketsLocked() {
		snapshot.OrderBooks = append(snapshot.OrderBooks, e.books[ticker].CreateSnapshot())
	}

	balances := e.ledger.Snapshot()
	users := make([]string, 0, len(balances))
	for user := range balances {
		users = append(users, user)
	}
	sort.Strings(users)
	for _, user := range users {
		snapshot.Balances = append(snapshot.Balances, snapshotv1.UserBalances{
			UserID: user,
			Assets: balances[user],
		})
	}

	return snapshot
}

// shouldCreateSnapshot checks if enough commands were applied since the last snapshot.
func (e *Engine) shouldCreateSnapshot() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.commandOffset < 0 {
		return false
	}
	return e.commandOffset-e.lastSnapshotOffset >= e.snapshotCommandDelta
}

// createAndStoreSnapshot copies the state under the lock and stores it
// outside of it. Failures are logged and counted; the engine keeps running.
func (e *Engine) createAndStoreSnapshot(ctx context.Context) {
	e.mu.Lock()
	snapshot := e.createSnapshot()
	e.mu.Unlock()

	if err := e.snapshotStore.Store(ctx, snapshot); err != nil {
		e.metrics.ObserveSnapshot(metrics.ResultError)
		e.logger.ErrorContext(ctx, err, logger.Field{
			Key:   "action",
			Value: "store_snapshot",
		}, logger.Field{
			Key:   "commandOffset",
			Value: snapshot.CommandOffset,
		})
		return
	}

	e.setLastSnapshotOffset(snapshot.CommandOffset)
	e.metrics.ObserveSnapshot(metrics.ResultOK)
	e.logger.Info("Snapshot stored successfully", logger.Field{
		Key:   "commandOffset",
		Value: snapshot.CommandOffset,
	}, logger.Field{
		Key:   "markets",
		Value: len(snapshot.OrderBooks),
	})
}
