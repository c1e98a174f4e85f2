package eventpublisherv1

import (
	orderbookv1 "github.com/muhammadchandra19/exchange-engine/internal/domain/orderbook/v1"
	"github.com/shopspring/decimal"
)

// Kind selects the transport an event goes out on.
type Kind int

const (
	// KindReply is a response on the requester's correlation channel.
	KindReply Kind = iota
	// KindStream is a market broadcast such as trade@TATA_INR.
	KindStream
	// KindHistory is a record for the trade history writer.
	KindHistory
)

func (k Kind) String() string {
	switch k {
	case KindReply:
		return "reply"
	case KindStream:
		return "stream"
	case KindHistory:
		return "history"
	default:
		return "unknown"
	}
}

// Event is one outbound message queued by the engine.
type Event struct {
	Kind      Kind
	Channel   string
	Payload   any
	RequestID string
}

// TradeStream returns the broadcast channel for trades of market.
func TradeStream(market string) string {
	return "trade@" + market
}

// DepthStream returns the broadcast channel for depth updates of market.
func DepthStream(market string) string {
	return "depth@" + market
}

// StreamMessage wraps a broadcast payload with its stream name.
type StreamMessage struct {
	Stream string `json:"stream"`
	Data   any    `json:"data"`
}

// TradeData is a trade broadcast.
type TradeData struct {
	Event    string          `json:"e"`
	TradeID  int64           `json:"t"`
	SelfFill bool            `json:"m"`
	Price    decimal.Decimal `json:"p"`
	Quantity decimal.Decimal `json:"q"`
	Symbol   string          `json:"s"`
}

// DepthData is an incremental depth broadcast. A zero quantity means the level is gone.
type DepthData struct {
	Event string                   `json:"e"`
	Asks  []orderbookv1.PriceLevel `json:"a"`
	Bids  []orderbookv1.PriceLevel `json:"b"`
}

// HistoryType names a history record.
type HistoryType string

const (
	OrderUpdate HistoryType = "ORDER_UPDATE"
	TradeAdded  HistoryType = "TRADE_ADDED"
)

// HistoryEvent is the envelope written to the history sink.
type HistoryEvent struct {
	Type HistoryType `json:"type"`
	Data any         `json:"data"`
}

// OrderStatus is carried on ORDER_UPDATE records.
type OrderStatus string

const (
	StatusOpen            OrderStatus = "open"
	StatusPartiallyFilled OrderStatus = "partially_filled"
	StatusFilled          OrderStatus = "filled"
	StatusCancelled       OrderStatus = "cancelled"
)

// OrderUpdateData is the data of ORDER_UPDATE. Maker updates carry only the
// id and the quantity executed against them.
type OrderUpdateData struct {
	OrderID     string           `json:"orderId"`
	ExecutedQty decimal.Decimal  `json:"executedQty"`
	Market      string           `json:"market,omitempty"`
	Price       *decimal.Decimal `json:"price,omitempty"`
	Quantity    *decimal.Decimal `json:"quantity,omitempty"`
	Side        orderbookv1.Side `json:"side,omitempty"`
	Status      OrderStatus      `json:"status,omitempty"`
}

// TradeAddedData is the data of TRADE_ADDED.
type TradeAddedData struct {
	Market        string          `json:"market"`
	ID            string          `json:"id"`
	IsBuyerMaker  bool            `json:"isBuyerMaker"`
	Price         decimal.Decimal `json:"price"`
	Quantity      decimal.Decimal `json:"quantity"`
	QuoteQuantity decimal.Decimal `json:"quoteQuantity"`
	Timestamp     int64           `json:"timestamp"`
}
