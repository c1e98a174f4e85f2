package snapshotv1

import (
	"encoding/json"
	"fmt"

	ledgerv1 "github.com/muhammadchandra19/exchange-engine/internal/domain/ledger/v1"
	orderbookv1 "github.com/muhammadchandra19/exchange-engine/internal/domain/orderbook/v1"
	"github.com/shopspring/decimal"
)

// Snapshot is the full engine state at a command offset.
type Snapshot struct {
	// CommandOffset is the offset of the last command applied, -1 when none.
	CommandOffset int64               `json:"commandOffset"`
	OrderBooks    []OrderBookSnapshot `json:"orderBooks"`
	Balances      []UserBalances      `json:"balances"`
}

// OrderBookSnapshot represents the state of one market. Bids and asks are
// listed in matching priority so a restore keeps price-time priority.
type OrderBookSnapshot struct {
	BaseAsset    string              `json:"baseAsset"`
	Bids         []orderbookv1.Order `json:"bids"`
	Asks         []orderbookv1.Order `json:"asks"`
	LastTradeID  int64               `json:"lastTradeId"`
	CurrentPrice decimal.Decimal     `json:"currentPrice"`
}

// UserBalances is one user's balances. It encodes as [userId, {asset: balance}].
type UserBalances struct {
	UserID string
	Assets map[string]ledgerv1.Balance
}

// MarshalJSON implements json.Marshaler.
func (u UserBalances) MarshalJSON() ([]byte, error) {
	assets := u.Assets
	if assets == nil {
		assets = map[string]ledgerv1.Balance{}
	}
	return json.Marshal([2]any{u.UserID, assets})
}

// UnmarshalJSON implements json.Unmarshaler.
func (u *UserBalances) UnmarshalJSON(data []byte) error {
	var pair []json.RawMessage
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	}
	if len(pair) != 2 {
		return fmt.Errorf("balance entry: want 2 elements, got %d", len(pair))
	}
	if err := json.Unmarshal(pair[0], &u.UserID); err != nil {
		return fmt.Errorf("balance entry user: %w", err)
	}
	if err := json.Unmarshal(pair[1], &u.Assets); err != nil {
		return fmt.Errorf("balance entry assets: %w", err)
	}
	return nil
}
