package orderbook

import (
	"fmt"

	orderbookv1 "github.com/muhammadchandra19/exchange-engine/internal/domain/orderbook/v1"
	snapshotv1 "github.com/muhammadchandra19/exchange-engine/internal/domain/snapshot/v1"
	"github.com/muhammadchandra19/exchange-engine/pkg/errors"
	"github.com/shopspring/decimal"
)

var (
	// ErrOrderNotFound is returned when cancelling an order that is not resting.
	ErrOrderNotFound = errors.New(errors.OrderNotFound, "order not found")
	// ErrInvalidOrder is returned for orders that cannot enter the book.
	ErrInvalidOrder = errors.New(errors.InvalidCommand, "invalid order")
)

// Orderbook is the book of one market. It never touches balances and is not
// safe for concurrent use.
type Orderbook struct {
	baseAsset    string
	quoteAsset   string
	bids         *bookSide
	asks         *bookSide
	orders       map[string]*orderbookv1.Order
	lastTradeID  int64
	currentPrice decimal.Decimal
}

// NewOrderbook creates an empty book for baseAsset quoted in quoteAsset.
func NewOrderbook(baseAsset, quoteAsset string) *Orderbook {
	return &Orderbook{
		baseAsset:    baseAsset,
		quoteAsset:   quoteAsset,
		bids:         newBookSide(orderbookv1.SideBuy),
		asks:         newBookSide(orderbookv1.SideSell),
		orders:       make(map[string]*orderbookv1.Order),
		currentPrice: decimal.Zero,
	}
}

// Ticker returns BASE_QUOTE.
func (ob *Orderbook) Ticker() string {
	return Ticker(ob.baseAsset, ob.quoteAsset)
}

// Ticker builds a market symbol.
func Ticker(baseAsset, quoteAsset string) string {
	return baseAsset + "_" + quoteAsset
}

// BaseAsset returns the traded asset.
func (ob *Orderbook) BaseAsset() string { return ob.baseAsset }

// QuoteAsset returns the pricing asset.
func (ob *Orderbook) QuoteAsset() string { return ob.quoteAsset }

// LastTradeID returns the id of the most recent fill, 0 before any trade.
func (ob *Orderbook) LastTradeID() int64 { return ob.lastTradeID }

// CurrentPrice returns the last fill price.
func (ob *Orderbook) CurrentPrice() decimal.Decimal { return ob.currentPrice }

func (ob *Orderbook) sideOf(side orderbookv1.Side) *bookSide {
	if side == orderbookv1.SideBuy {
		return ob.bids
	}
	return ob.asks
}

func (ob *Orderbook) nextTradeID() int64 {
	ob.lastTradeID++
	return ob.lastTradeID
}

// AddOrder walks the opposite side from the best price while it crosses,
// filling FIFO within each level. Any unfilled remainder rests at the order's
// limit price.
func (ob *Orderbook) AddOrder(order *orderbookv1.Order) (orderbookv1.MatchResult, error) {
	if err := validate(order); err != nil {
		return orderbookv1.MatchResult{}, err
	}
	if _, exists := ob.orders[order.ID]; exists {
		return orderbookv1.MatchResult{}, errors.NewErrorDetails(
			fmt.Sprintf("order with ID %s already exists", order.ID), string(errors.InvalidCommand), "orderId")
	}

	result := orderbookv1.MatchResult{ExecutedQty: decimal.Zero, Fills: []orderbookv1.Fill{}}
	start := order.Filled
	opposite := ob.sideOf(order.Side.Opposite())

	for !order.IsFilled() {
		level, ok := opposite.best()
		if !ok || !order.Crosses(level.Price) {
			break
		}

		fills, makers := level.Fill(order, ob.nextTradeID)
		result.Fills = append(result.Fills, fills...)
		result.Makers = append(result.Makers, makers...)
		for _, m := range makers {
			if m.IsFilled() {
				delete(ob.orders, m.ID)
			}
		}
		if level.IsEmpty() {
			opposite.remove(level)
		}
	}

	if n := len(result.Fills); n > 0 {
		ob.currentPrice = result.Fills[n-1].Price
	}
	result.ExecutedQty = order.Filled.Sub(start)

	if !order.IsFilled() {
		if err := ob.sideOf(order.Side).getOrCreate(order.Price).AddOrder(order); err != nil {
			return result, err
		}
		ob.orders[order.ID] = order
		result.Rested = true
	}

	return result, nil
}

// Cancel removes a resting order and returns its final state.
func (ob *Orderbook) Cancel(orderID string) (orderbookv1.Order, error) {
	order, ok := ob.orders[orderID]
	if !ok {
		return orderbookv1.Order{}, ErrOrderNotFound
	}

	side := ob.sideOf(order.Side)
	limit := order.Limit
	if limit != nil {
		if err := limit.RemoveOrder(order); err != nil {
			return orderbookv1.Order{}, err
		}
		if limit.IsEmpty() {
			side.remove(limit)
		}
	}
	delete(ob.orders, orderID)

	return order.Copy(), nil
}

// Get returns a copy of a resting order.
func (ob *Orderbook) Get(orderID string) (orderbookv1.Order, bool) {
	order, ok := ob.orders[orderID]
	if !ok {
		return orderbookv1.Order{}, false
	}
	return order.Copy(), true
}

// Depth returns aggregated remaining quantity per price level.
func (ob *Orderbook) Depth() orderbookv1.Depth {
	return orderbookv1.Depth{
		Bids: ob.bids.depth(),
		Asks: ob.asks.depth(),
	}
}

// DepthAt returns the remaining quantity resting at one level, zero when empty.
func (ob *Orderbook) DepthAt(side orderbookv1.Side, price decimal.Decimal) decimal.Decimal {
	if limit, ok := ob.sideOf(side).get(price); ok {
		return limit.TotalVolume
	}
	return decimal.Zero
}

// OpenOrders returns the user's resting orders, asks first then bids.
func (ob *Orderbook) OpenOrders(userID string) []orderbookv1.Order {
	out := []orderbookv1.Order{}
	for _, side := range []*bookSide{ob.asks, ob.bids} {
		side.each(func(l *orderbookv1.Limit) bool {
			for _, o := range l.Orders {
				if o.UserID == userID {
					out = append(out, o.Copy())
				}
			}
			return true
		})
	}
	return out
}

// OrderCount returns the number of resting orders.
func (ob *Orderbook) OrderCount() int {
	return len(ob.orders)
}

// CreateSnapshot captures the book with orders in matching priority.
func (ob *Orderbook) CreateSnapshot() snapshotv1.OrderBookSnapshot {
	bids := ob.bids.orders()
	asks := ob.asks.orders()
	if bids == nil {
		bids = []orderbookv1.Order{}
	}
	if asks == nil {
		asks = []orderbookv1.Order{}
	}
	return snapshotv1.OrderBookSnapshot{
		BaseAsset:    ob.baseAsset,
		Bids:         bids,
		Asks:         asks,
		LastTradeID:  ob.lastTradeID,
		CurrentPrice: ob.currentPrice,
	}
}

// RestoreOrderbook rebuilds a book from a snapshot. Orders are appended in
// the listed order, which preserves time priority within each level.
func RestoreOrderbook(snapshot snapshotv1.OrderBookSnapshot, quoteAsset string) (*Orderbook, error) {
	ob := NewOrderbook(snapshot.BaseAsset, quoteAsset)
	ob.lastTradeID = snapshot.LastTradeID
	ob.currentPrice = snapshot.CurrentPrice

	restore := func(orders []orderbookv1.Order, side orderbookv1.Side) error {
		for i := range orders {
			order := orders[i]
			if order.Side != side {
				return fmt.Errorf("failed to restore order %s: side %q listed under %s", order.ID, order.Side, side)
			}
			if err := validate(&order); err != nil {
				return fmt.Errorf("failed to restore order %s: %w", order.ID, err)
			}
			if _, exists := ob.orders[order.ID]; exists {
				return fmt.Errorf("failed to restore order %s: duplicate id", order.ID)
			}
			if err := ob.sideOf(side).getOrCreate(order.Price).AddOrder(&order); err != nil {
				return fmt.Errorf("failed to restore order %s: %w", order.ID, err)
			}
			ob.orders[order.ID] = &order
		}
		return nil
	}

	if err := restore(snapshot.Bids, orderbookv1.SideBuy); err != nil {
		return nil, err
	}
	if err := restore(snapshot.Asks, orderbookv1.SideSell); err != nil {
		return nil, err
	}
	return ob, nil
}

func validate(order *orderbookv1.Order) error {
	switch {
	case order == nil:
		return ErrInvalidOrder
	case order.ID == "":
		return errors.NewErrorDetails("order ID cannot be empty", string(errors.InvalidCommand), "orderId")
	case !order.Side.Valid():
		return errors.NewErrorDetails(fmt.Sprintf("invalid side %q", order.Side), string(errors.InvalidCommand), "side")
	case !order.Price.IsPositive():
		return errors.NewErrorDetails("price must be positive", string(errors.InvalidCommand), "price")
	case !order.Quantity.IsPositive():
		return errors.NewErrorDetails("quantity must be positive", string(errors.InvalidCommand), "quantity")
	case order.Filled.IsNegative() || order.Filled.GreaterThanOrEqual(order.Quantity):
		return errors.NewErrorDetails("filled must be below quantity", string(errors.InvalidCommand), "filled")
	}
	return nil
}

var _ orderbookv1.Orderbook = (*Orderbook)(nil)
