package orderbookv1

import "github.com/shopspring/decimal"

// Orderbook is a single market's book of resting limit orders.
type Orderbook interface {
	// Ticker returns the market symbol, BASE_QUOTE.
	Ticker() string
	BaseAsset() string
	QuoteAsset() string

	// AddOrder matches order against the opposite side and rests any remainder.
	AddOrder(order *Order) (MatchResult, error)
	// Cancel removes a resting order and returns its final state.
	Cancel(orderID string) (Order, error)
	// Get returns a copy of a resting order.
	Get(orderID string) (Order, bool)

	Depth() Depth
	DepthAt(side Side, price decimal.Decimal) decimal.Decimal
	OpenOrders(userID string) []Order

	LastTradeID() int64
	CurrentPrice() decimal.Decimal
}
