package orderbook

import (
	"github.com/google/btree"
	orderbookv1 "github.com/muhammadchandra19/exchange-engine/internal/domain/orderbook/v1"
	"github.com/shopspring/decimal"
)

const btreeDegree = 32

// bookSide is one side of a book: price levels sorted best first.
type bookSide struct {
	side   orderbookv1.Side
	levels *btree.BTreeG[*orderbookv1.Limit]
}

func newBookSide(side orderbookv1.Side) *bookSide {
	less := func(a, b *orderbookv1.Limit) bool { return a.Price.LessThan(b.Price) }
	if side == orderbookv1.SideBuy {
		less = func(a, b *orderbookv1.Limit) bool { return a.Price.GreaterThan(b.Price) }
	}
	return &bookSide{
		side:   side,
		levels: btree.NewG[*orderbookv1.Limit](btreeDegree, less),
	}
}

func (s *bookSide) get(price decimal.Decimal) (*orderbookv1.Limit, bool) {
	return s.levels.Get(&orderbookv1.Limit{Price: price})
}

func (s *bookSide) getOrCreate(price decimal.Decimal) *orderbookv1.Limit {
	if limit, ok := s.get(price); ok {
		return limit
	}
	limit := orderbookv1.NewLimit(price)
	s.levels.ReplaceOrInsert(limit)
	return limit
}

func (s *bookSide) remove(limit *orderbookv1.Limit) {
	s.levels.Delete(limit)
}

func (s *bookSide) best() (*orderbookv1.Limit, bool) {
	return s.levels.Min()
}

// each visits levels best price first until fn returns false.
func (s *bookSide) each(fn func(*orderbookv1.Limit) bool) {
	s.levels.Ascend(fn)
}

func (s *bookSide) depth() []orderbookv1.PriceLevel {
	levels := make([]orderbookv1.PriceLevel, 0, s.levels.Len())
	s.each(func(l *orderbookv1.Limit) bool {
		levels = append(levels, orderbookv1.PriceLevel{Price: l.Price, Quantity: l.TotalVolume})
		return true
	})
	return levels
}

// orders returns copies of every resting order in matching priority.
func (s *bookSide) orders() []orderbookv1.Order {
	var out []orderbookv1.Order
	s.each(func(l *orderbookv1.Limit) bool {
		for _, o := range l.Orders {
			out = append(out, o.Copy())
		}
		return true
	})
	return out
}
