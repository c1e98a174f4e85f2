package ledger

import (
	"fmt"

	ledgerv1 "github.com/muhammadchandra19/exchange-engine/internal/domain/ledger/v1"
	orderbookv1 "github.com/muhammadchandra19/exchange-engine/internal/domain/orderbook/v1"
	"github.com/muhammadchandra19/exchange-engine/pkg/errors"
	"github.com/shopspring/decimal"
)

var (
	// ErrInsufficientFunds is returned by Lock when available is below the amount.
	ErrInsufficientFunds = errors.New(errors.InsufficientFunds, "insufficient funds")
	// ErrInvariantViolation is returned when a mutation would make a balance negative.
	ErrInvariantViolation = errors.New(errors.LedgerInvariantViolation, "balance would become negative")
	// ErrInvalidAmount is returned for non-positive amounts.
	ErrInvalidAmount = errors.New(errors.InvalidCommand, "amount must be positive")
)

type balanceKey struct {
	user  string
	asset string
}

// Ledger is an in-memory user -> asset -> balance table. It is not safe for
// concurrent use; the engine serialises access.
type Ledger struct {
	balances map[string]map[string]*ledgerv1.Balance
}

// NewLedger creates an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{
		balances: make(map[string]map[string]*ledgerv1.Balance),
	}
}

// Get returns the balance of userID in asset. Missing records read as zero.
func (l *Ledger) Get(userID, asset string) ledgerv1.Balance {
	if b, ok := l.balances[userID][asset]; ok {
		return *b
	}
	return ledgerv1.Balance{Available: decimal.Zero, Locked: decimal.Zero}
}

// Credit adds amount to available, creating the record when needed.
func (l *Ledger) Credit(userID, asset string, amount decimal.Decimal) (ledgerv1.Balance, error) {
	if !amount.IsPositive() {
		return ledgerv1.Balance{}, ErrInvalidAmount
	}
	b := l.ensure(userID, asset)
	b.Available = b.Available.Add(amount)
	return *b, nil
}

// Lock moves amount from available to locked.
func (l *Ledger) Lock(userID, asset string, amount decimal.Decimal) error {
	if amount.IsNegative() {
		return ErrInvalidAmount
	}
	current := l.Get(userID, asset)
	if current.Available.LessThan(amount) {
		return errors.NewErrorDetails(
			fmt.Sprintf("insufficient %s balance: available %s, required %s", asset, current.Available, amount),
			string(errors.InsufficientFunds),
			asset,
		)
	}

	b := l.ensure(userID, asset)
	b.Available = b.Available.Sub(amount)
	b.Locked = b.Locked.Add(amount)
	return nil
}

// Unlock moves amount from locked back to available.
func (l *Ledger) Unlock(userID, asset string, amount decimal.Decimal) error {
	if amount.IsZero() {
		return nil
	}
	if amount.IsNegative() {
		return ErrInvalidAmount
	}
	current := l.Get(userID, asset)
	if current.Locked.LessThan(amount) {
		return invariantError(userID, asset, "locked", current.Locked, amount)
	}

	b := l.ensure(userID, asset)
	b.Locked = b.Locked.Sub(amount)
	b.Available = b.Available.Add(amount)
	return nil
}

// Settle applies one fill. For a buying taker the taker pays quote from locked
// and receives base in available while the maker pays base from locked and
// receives quote in available. A selling taker is the mirror image.
func (l *Ledger) Settle(s ledgerv1.Settlement) error {
	quoteQty := s.Price.Mul(s.Qty)

	buyer, seller := s.Taker, s.Maker
	if s.TakerSide == orderbookv1.SideSell {
		buyer, seller = s.Maker, s.Taker
	}

	tx := newStaging(l)
	tx.add(buyer, s.QuoteAsset, decimal.Zero, quoteQty.Neg())
	tx.add(seller, s.QuoteAsset, quoteQty, decimal.Zero)
	tx.add(seller, s.BaseAsset, decimal.Zero, s.Qty.Neg())
	tx.add(buyer, s.BaseAsset, s.Qty, decimal.Zero)

	if err := tx.validate(); err != nil {
		return err
	}
	tx.commit()
	return nil
}

// Snapshot returns a deep copy of every balance.
func (l *Ledger) Snapshot() map[string]map[string]ledgerv1.Balance {
	out := make(map[string]map[string]ledgerv1.Balance, len(l.balances))
	for user, assets := range l.balances {
		copied := make(map[string]ledgerv1.Balance, len(assets))
		for asset, b := range assets {
			copied[asset] = *b
		}
		out[user] = copied
	}
	return out
}

// Restore replaces the ledger contents.
func (l *Ledger) Restore(balances map[string]map[string]ledgerv1.Balance) {
	l.balances = make(map[string]map[string]*ledgerv1.Balance, len(balances))
	for user, assets := range balances {
		for asset, b := range assets {
			restored := b
			l.ensureMap(user)[asset] = &restored
		}
	}
}

// Totals sums available+locked per asset across all users.
func (l *Ledger) Totals() map[string]decimal.Decimal {
	totals := make(map[string]decimal.Decimal)
	for _, assets := range l.balances {
		for asset, b := range assets {
			totals[asset] = totals[asset].Add(b.Total())
		}
	}
	return totals
}

// HasUser reports whether any balance record exists for userID.
func (l *Ledger) HasUser(userID string) bool {
	_, ok := l.balances[userID]
	return ok
}

func (l *Ledger) ensureMap(userID string) map[string]*ledgerv1.Balance {
	assets, ok := l.balances[userID]
	if !ok {
		assets = make(map[string]*ledgerv1.Balance)
		l.balances[userID] = assets
	}
	return assets
}

func (l *Ledger) ensure(userID, asset string) *ledgerv1.Balance {
	assets := l.ensureMap(userID)
	b, ok := assets[asset]
	if !ok {
		b = &ledgerv1.Balance{Available: decimal.Zero, Locked: decimal.Zero}
		assets[asset] = b
	}
	return b
}

func invariantError(userID, asset, field string, have, need decimal.Decimal) error {
	return errors.NewTracer("ledger settlement rejected").Wrap(errors.NewErrorDetails(
		fmt.Sprintf("%s %s of user %s is %s, cannot remove %s", asset, field, userID, have, need),
		string(errors.LedgerInvariantViolation),
		field,
	))
}
