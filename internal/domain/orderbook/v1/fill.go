package orderbookv1

import "github.com/shopspring/decimal"

// Fill is one execution between an incoming order and a resting maker.
// Price is always the maker's price.
type Fill struct {
	Price        decimal.Decimal `json:"price"`
	Qty          decimal.Decimal `json:"qty"`
	TradeID      int64           `json:"tradeId"`
	OtherUserID  string          `json:"otherUserId"`
	MakerOrderID string          `json:"makerOrderId"`
}

// QuoteQty is price times quantity.
func (f Fill) QuoteQty() decimal.Decimal {
	return f.Price.Mul(f.Qty)
}

// MatchResult is what the book reports back for an incoming order.
type MatchResult struct {
	ExecutedQty decimal.Decimal `json:"executedQty"`
	Fills       []Fill          `json:"fills"`
	// Makers holds the state of each touched maker after matching, in fill order.
	Makers []Order `json:"-"`
	// Rested is true when a remainder was added to the book.
	Rested bool `json:"-"`
}
