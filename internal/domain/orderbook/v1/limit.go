package orderbookv1

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	ErrNilOrder      = errors.New("order cannot be nil")
	ErrInvalidPrice  = errors.New("price must be positive")
	ErrInvalidSize   = errors.New("size must be positive")
	ErrOrderNotFound = errors.New("order not found in limit")
	ErrPriceMismatch = errors.New("order price differs from limit price")
)

// Limit represents a price level in the order book. Orders are kept in
// arrival order and TotalVolume is the sum of their remaining quantities.
type Limit struct {
	Price       decimal.Decimal `json:"price"`
	Orders      []*Order        `json:"orders"`
	TotalVolume decimal.Decimal `json:"totalVolume"`
}

// NewLimit creates a new Limit with the specified price.
func NewLimit(price decimal.Decimal) *Limit {
	return &Limit{
		Price:       price,
		Orders:      make([]*Order, 0),
		TotalVolume: decimal.Zero,
	}
}

// AddOrder appends an order to the back of the queue and updates the total volume.
func (l *Limit) AddOrder(order *Order) error {
	if order == nil {
		return ErrNilOrder
	}
	if !order.Remaining().IsPositive() {
		return fmt.Errorf("%w: got %s", ErrInvalidSize, order.Remaining())
	}
	if !order.Price.Equal(l.Price) {
		return fmt.Errorf("%w: %s != %s", ErrPriceMismatch, order.Price, l.Price)
	}

	order.Limit = l
	l.Orders = append(l.Orders, order)
	l.TotalVolume = l.TotalVolume.Add(order.Remaining())

	return nil
}

// RemoveOrder removes an order from the limit and updates the total volume.
func (l *Limit) RemoveOrder(order *Order) error {
	if order == nil {
		return ErrNilOrder
	}

	for i, o := range l.Orders {
		if o == order {
			l.Orders = append(l.Orders[:i], l.Orders[i+1:]...)
			l.TotalVolume = l.TotalVolume.Sub(order.Remaining())
			order.Limit = nil
			return nil
		}
	}

	return ErrOrderNotFound
}

// Fill matches the incoming order against the queue front to back and
// returns one Fill per maker touched. nextTradeID is called once per fill.
// Fully filled makers are removed from the limit.
func (l *Limit) Fill(incoming *Order, nextTradeID func() int64) ([]Fill, []Order) {
	if incoming == nil {
		return nil, nil
	}

	var (
		fills  []Fill
		makers []Order
		filled int
	)

	for _, maker := range l.Orders {
		if incoming.IsFilled() {
			break
		}

		qty := decimal.Min(incoming.Remaining(), maker.Remaining())
		incoming.Filled = incoming.Filled.Add(qty)
		maker.Filled = maker.Filled.Add(qty)
		l.TotalVolume = l.TotalVolume.Sub(qty)

		fills = append(fills, Fill{
			Price:        l.Price,
			Qty:          qty,
			TradeID:      nextTradeID(),
			OtherUserID:  maker.UserID,
			MakerOrderID: maker.ID,
		})
		makers = append(makers, maker.Copy())

		if maker.IsFilled() {
			filled++
		}
	}

	// filled makers are always a prefix of the queue
	for _, maker := range l.Orders[:filled] {
		maker.Limit = nil
	}
	l.Orders = l.Orders[filled:]

	return fills, makers
}

// IsEmpty checks if the limit has no orders
func (l *Limit) IsEmpty() bool {
	return len(l.Orders) == 0
}

// OrderCount returns the number of orders at this limit
func (l *Limit) OrderCount() int {
	return len(l.Orders)
}

// Validate performs basic validation of the limit's state
func (l *Limit) Validate() error {
	if !l.Price.IsPositive() {
		return fmt.Errorf("%w: limit price %s", ErrInvalidPrice, l.Price)
	}

	calculated := decimal.Zero
	for _, order := range l.Orders {
		if order == nil {
			return ErrNilOrder
		}
		if !order.Remaining().IsPositive() {
			return fmt.Errorf("%w: order %s has remaining %s", ErrInvalidSize, order.ID, order.Remaining())
		}
		calculated = calculated.Add(order.Remaining())
	}

	if !calculated.Equal(l.TotalVolume) {
		return fmt.Errorf("volume mismatch: calculated %s, stored %s", calculated, l.TotalVolume)
	}

	return nil
}
