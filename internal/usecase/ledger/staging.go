package ledger

import (
	ledgerv1 "github.com/muhammadchandra19/exchange-engine/internal/domain/ledger/v1"
	"github.com/shopspring/decimal"
)

// staging accumulates balance deltas so a multi-leg mutation can be checked
// before anything is written.
type staging struct {
	ledger *Ledger
	order  []balanceKey
	next   map[balanceKey]ledgerv1.Balance
}

func newStaging(l *Ledger) *staging {
	return &staging{
		ledger: l,
		next:   make(map[balanceKey]ledgerv1.Balance),
	}
}

func (s *staging) add(userID, asset string, available, locked decimal.Decimal) {
	key := balanceKey{user: userID, asset: asset}
	b, ok := s.next[key]
	if !ok {
		b = s.ledger.Get(userID, asset)
		s.order = append(s.order, key)
	}
	b.Available = b.Available.Add(available)
	b.Locked = b.Locked.Add(locked)
	s.next[key] = b
}

func (s *staging) validate() error {
	for _, key := range s.order {
		b := s.next[key]
		if b.Available.IsNegative() {
			current := s.ledger.Get(key.user, key.asset)
			return invariantError(key.user, key.asset, "available", current.Available, current.Available.Sub(b.Available))
		}
		if b.Locked.IsNegative() {
			current := s.ledger.Get(key.user, key.asset)
			return invariantError(key.user, key.asset, "locked", current.Locked, current.Locked.Sub(b.Locked))
		}
	}
	return nil
}

func (s *staging) commit() {
	for _, key := range s.order {
		b := s.next[key]
		*s.ledger.ensure(key.user, key.asset) = b
	}
}
