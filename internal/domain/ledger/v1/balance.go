package ledgerv1

import (
	orderbookv1 "github.com/muhammadchandra19/exchange-engine/internal/domain/orderbook/v1"
	"github.com/shopspring/decimal"
)

// Balance is a user's holding of one asset.
type Balance struct {
	Available decimal.Decimal `json:"available"`
	Locked    decimal.Decimal `json:"locked"`
}

// Total is available plus locked.
func (b Balance) Total() decimal.Decimal {
	return b.Available.Add(b.Locked)
}

// Settlement describes one fill from the ledger's point of view.
type Settlement struct {
	Taker      string
	Maker      string
	TakerSide  orderbookv1.Side
	BaseAsset  string
	QuoteAsset string
	Price      decimal.Decimal
	Qty        decimal.Decimal
}
