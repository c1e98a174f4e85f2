package orderbookv1

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// PriceLevel is an aggregated [price, quantity] pair. It encodes as a
// two element JSON array of decimal strings.
type PriceLevel struct {
	Price    decimal.Decimal
	Quantity decimal.Decimal
}

// MarshalJSON implements json.Marshaler.
func (p PriceLevel) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]string{p.Price.String(), p.Quantity.String()})
}

// UnmarshalJSON implements json.Unmarshaler.
func (p *PriceLevel) UnmarshalJSON(data []byte) error {
	var pair [2]string
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	}
	price, err := decimal.NewFromString(pair[0])
	if err != nil {
		return fmt.Errorf("price level price: %w", err)
	}
	qty, err := decimal.NewFromString(pair[1])
	if err != nil {
		return fmt.Errorf("price level quantity: %w", err)
	}
	p.Price, p.Quantity = price, qty
	return nil
}

// Depth is the aggregated view of a book. Bids are ordered by price
// descending, asks ascending.
type Depth struct {
	Bids []PriceLevel `json:"bids"`
	Asks []PriceLevel `json:"asks"`
}

// EmptyDepth returns a depth with non-nil empty sides.
func EmptyDepth() Depth {
	return Depth{Bids: []PriceLevel{}, Asks: []PriceLevel{}}
}
