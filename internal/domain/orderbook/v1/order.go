package orderbookv1

import (
	"time"

	"github.com/shopspring/decimal"
)

// Side is the direction of an order.
type Side string

const (
	// SideBuy is a bid.
	SideBuy Side = "buy"
	// SideSell is an ask.
	SideSell Side = "sell"
)

// Valid reports whether s is buy or sell.
func (s Side) Valid() bool {
	return s == SideBuy || s == SideSell
}

// Opposite returns the side an order of side s matches against.
func (s Side) Opposite() Side {
	if s == SideBuy {
		return SideSell
	}
	return SideBuy
}

// Order represents a single order in the order book.
type Order struct {
	ID        string          `json:"orderId"`
	UserID    string          `json:"userId"`
	Side      Side            `json:"side"`
	Price     decimal.Decimal `json:"price"`
	Quantity  decimal.Decimal `json:"quantity"`
	Filled    decimal.Decimal `json:"filled"`
	Timestamp int64           `json:"timestamp"`
	Limit     *Limit          `json:"-"`
}

// NewOrder creates a new unfilled order stamped with the current time.
func NewOrder(id, userID string, side Side, price, quantity decimal.Decimal) *Order {
	return &Order{
		ID:        id,
		UserID:    userID,
		Side:      side,
		Price:     price,
		Quantity:  quantity,
		Filled:    decimal.Zero,
		Timestamp: time.Now().UnixNano(),
	}
}

// IsBid checks if the order is a bid (buy) order.
func (o *Order) IsBid() bool {
	return o.Side == SideBuy
}

// IsAsk checks if the order is an ask (sell) order.
func (o *Order) IsAsk() bool {
	return o.Side == SideSell
}

// Remaining is the unfilled quantity.
func (o *Order) Remaining() decimal.Decimal {
	return o.Quantity.Sub(o.Filled)
}

// IsFilled checks if nothing remains to be filled.
func (o *Order) IsFilled() bool {
	return !o.Remaining().IsPositive()
}

// Crosses reports whether a resting price on the opposite side is marketable for o.
func (o *Order) Crosses(restingPrice decimal.Decimal) bool {
	if o.IsBid() {
		return restingPrice.LessThanOrEqual(o.Price)
	}
	return restingPrice.GreaterThanOrEqual(o.Price)
}

// Copy returns a detached copy of the order without its level pointer.
func (o *Order) Copy() Order {
	c := *o
	c.Limit = nil
	return c
}
