package commandv1

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// Type names a command.
type Type string

const (
	CreateOrder   Type = "CREATE_ORDER"
	CancelOrder   Type = "CANCEL_ORDER"
	GetOpenOrders Type = "GET_OPEN_ORDERS"
	OnRamp        Type = "ON_RAMP"
	GetDepth      Type = "GET_DEPTH"
)

// Envelope is the unit read from the command source.
type Envelope struct {
	// CorrelationID is the channel the reply is published on.
	CorrelationID string  `json:"correlationId"`
	Command       Command `json:"command"`

	// Offset is the position of the envelope in its source. It is not part of the wire format.
	Offset int64 `json:"-"`
}

// Command is a typed payload. Data is decoded once the type is known.
type Command struct {
	Type Type            `json:"type"`
	Data json.RawMessage `json:"data"`
}

// CreateOrderPayload is the data of CREATE_ORDER.
type CreateOrderPayload struct {
	Market   string          `json:"market"`
	Price    decimal.Decimal `json:"price"`
	Quantity decimal.Decimal `json:"quantity"`
	Side     string          `json:"side"`
	UserID   string          `json:"userId"`
}

// CancelOrderPayload is the data of CANCEL_ORDER.
type CancelOrderPayload struct {
	Market  string `json:"market"`
	OrderID string `json:"orderId"`
}

// GetOpenOrdersPayload is the data of GET_OPEN_ORDERS.
type GetOpenOrdersPayload struct {
	Market string `json:"market"`
	UserID string `json:"userId"`
}

// OnRampPayload is the data of ON_RAMP.
type OnRampPayload struct {
	UserID string          `json:"userId"`
	Amount decimal.Decimal `json:"amount"`
	TxnID  string          `json:"txnId,omitempty"`
}

// GetDepthPayload is the data of GET_DEPTH.
type GetDepthPayload struct {
	Market string `json:"market"`
}

// NewEnvelope builds an envelope around a typed payload.
func NewEnvelope(correlationID string, t Type, payload any) (Envelope, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, err
	}
	return Envelope{
		CorrelationID: correlationID,
		Command:       Command{Type: t, Data: data},
	}, nil
}

// DecodeError reports an envelope that could not be parsed. The offset is
// still consumed so the reader does not stall on it.
type DecodeError struct {
	Offset        int64
	CorrelationID string
	Err           error
}

func (e *DecodeError) Error() string {
	return "decode command envelope: " + e.Err.Error()
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// DecodeEnvelope parses raw bytes into an envelope stamped with offset.
func DecodeEnvelope(raw []byte, offset int64) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		// best effort so the requester can still be answered
		var partial struct {
			CorrelationID string `json:"correlationId"`
		}
		_ = json.Unmarshal(raw, &partial)
		return Envelope{Offset: offset, CorrelationID: partial.CorrelationID}, &DecodeError{
			Offset:        offset,
			CorrelationID: partial.CorrelationID,
			Err:           err,
		}
	}
	env.Offset = offset
	return env, nil
}
