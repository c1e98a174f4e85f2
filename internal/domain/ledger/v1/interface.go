package ledgerv1

import "github.com/shopspring/decimal"

// Ledger holds user balances per asset. Every mutation either fully applies
// or returns an error with no change.
type Ledger interface {
	Get(userID, asset string) Balance
	Credit(userID, asset string, amount decimal.Decimal) (Balance, error)
	Lock(userID, asset string, amount decimal.Decimal) error
	Unlock(userID, asset string, amount decimal.Decimal) error
	Settle(s Settlement) error

	Snapshot() map[string]map[string]Balance
	Restore(balances map[string]map[string]Balance)
	// Totals sums available+locked per asset across all users.
	Totals() map[string]decimal.Decimal
}
