package commandv1

import (
	orderbookv1 "github.com/muhammadchandra19/exchange-engine/internal/domain/orderbook/v1"
	"github.com/shopspring/decimal"
)

// ReplyType names a reply.
type ReplyType string

const (
	OrderPlaced    ReplyType = "ORDER_PLACED"
	OrderCancelled ReplyType = "ORDER_CANCELLED"
	OpenOrders     ReplyType = "OPEN_ORDERS"
	Depth          ReplyType = "DEPTH"
	OnRampDone     ReplyType = "ON_RAMP"
	Error          ReplyType = "ERROR"
)

// Reply is published on the requester's correlation channel.
type Reply struct {
	Type    ReplyType `json:"type"`
	Payload any       `json:"payload"`
}

// OrderPlacedPayload answers an accepted CREATE_ORDER.
type OrderPlacedPayload struct {
	OrderID     string             `json:"orderId"`
	ExecutedQty decimal.Decimal    `json:"executedQty"`
	Fills       []orderbookv1.Fill `json:"fills"`
}

// OrderCancelledPayload answers CANCEL_ORDER and a rejected CREATE_ORDER.
type OrderCancelledPayload struct {
	OrderID      string          `json:"orderId"`
	ExecutedQty  decimal.Decimal `json:"executedQty"`
	RemainingQty decimal.Decimal `json:"remainingQty"`
	Error        *ErrorPayload   `json:"error,omitempty"`
}

// OnRampReplyPayload answers ON_RAMP with the new available balance.
type OnRampReplyPayload struct {
	UserID    string          `json:"userId"`
	Asset     string          `json:"asset"`
	Available decimal.Decimal `json:"available"`
}

// ErrorPayload carries a machine readable code and a message.
type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// NewErrorReply builds an ERROR reply.
func NewErrorReply(code, message string) Reply {
	return Reply{Type: Error, Payload: ErrorPayload{Code: code, Message: message}}
}
