package engine

import (
	"context"
	"fmt"
	"strconv"

	commandv1 "github.com/muhammadchandra19/exchange-engine/internal/domain/command/v1"
	eventpublisherv1 "github.com/muhammadchandra19/exchange-engine/internal/domain/event-publisher/v1"
	orderbookv1 "github.com/muhammadchandra19/exchange-engine/internal/domain/orderbook/v1"
	"github.com/muhammadchandra19/exchange-engine/internal/usecase/orderbook"
	"github.com/muhammadchandra19/exchange-engine/pkg/logger"
	"github.com/muhammadchandra19/exchange-engine/pkg/util"
	"github.com/shopspring/decimal"
)

// emitOrderEvents queues, in order: the taker ORDER_UPDATE, one ORDER_UPDATE
// per maker fill, one TRADE_ADDED per fill, one trade broadcast per fill and a
// single depth broadcast for the touched levels.
func (e *Engine) emitOrderEvents(ctx context.Context, book *orderbook.Orderbook, order *orderbookv1.Order, result orderbookv1.MatchResult) {
	market := book.Ticker()
	requestID := util.GetRequestID(ctx)
	price, quantity := order.Price, order.Quantity

	e.emitHistory(requestID, eventpublisherv1.OrderUpdate, eventpublisherv1.OrderUpdateData{
		OrderID:     order.ID,
		ExecutedQty: result.ExecutedQty,
		Market:      market,
		Price:       &price,
		Quantity:    &quantity,
		Side:        order.Side,
		Status:      takerStatus(order, result),
	})

	for _, fill := range result.Fills {
		e.emitHistory(requestID, eventpublisherv1.OrderUpdate, eventpublisherv1.OrderUpdateData{
			OrderID:     fill.MakerOrderID,
			ExecutedQty: fill.Qty,
		})
	}

	timestamp := e.now().UnixMilli()
	for _, fill := range result.Fills {
		e.emitHistory(requestID, eventpublisherv1.TradeAdded, eventpublisherv1.TradeAddedData{
			Market:        market,
			ID:            strconv.FormatInt(fill.TradeID, 10),
			IsBuyerMaker:  fill.OtherUserID == order.UserID,
			Price:         fill.Price,
			Quantity:      fill.Qty,
			QuoteQuantity: fill.QuoteQty(),
			Timestamp:     timestamp,
		})
	}

	for _, fill := range result.Fills {
		e.emitStream(requestID, eventpublisherv1.TradeStream(market), eventpublisherv1.TradeData{
			Event:    "trade",
			TradeID:  fill.TradeID,
			SelfFill: fill.OtherUserID == order.UserID,
			Price:    fill.Price,
			Quantity: fill.Qty,
			Symbol:   market,
		})
	}

	makerSide := order.Side.Opposite()
	makerLevels := make([]orderbookv1.PriceLevel, 0, len(result.Fills))
	seen := make(map[string]struct{}, len(result.Fills))
	for _, fill := range result.Fills {
		key := fill.Price.String()
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		makerLevels = append(makerLevels, orderbookv1.PriceLevel{
			Price:    fill.Price,
			Quantity: book.DepthAt(makerSide, fill.Price),
		})
	}

	takerLevels := []orderbookv1.PriceLevel{}
	if result.Rested {
		takerLevels = append(takerLevels, orderbookv1.PriceLevel{
			Price:    order.Price,
			Quantity: book.DepthAt(order.Side, order.Price),
		})
	}

	data := eventpublisherv1.DepthData{Event: "depth", Asks: makerLevels, Bids: takerLevels}
	if order.Side == orderbookv1.SideSell {
		data.Asks, data.Bids = takerLevels, makerLevels
	}
	e.emitStream(requestID, eventpublisherv1.DepthStream(market), data)
}

// emitCancelEvents queues the cancelled ORDER_UPDATE and the depth of the
// vacated price on both sides.
func (e *Engine) emitCancelEvents(ctx context.Context, book *orderbook.Orderbook, order orderbookv1.Order) {
	market := book.Ticker()
	requestID := util.GetRequestID(ctx)
	price, quantity := order.Price, order.Quantity

	e.emitHistory(requestID, eventpublisherv1.OrderUpdate, eventpublisherv1.OrderUpdateData{
		OrderID:     order.ID,
		ExecutedQty: order.Filled,
		Market:      market,
		Price:       &price,
		Quantity:    &quantity,
		Side:        order.Side,
		Status:      eventpublisherv1.StatusCancelled,
	})

	e.emitStream(requestID, eventpublisherv1.DepthStream(market), eventpublisherv1.DepthData{
		Event: "depth",
		Asks:  []orderbookv1.PriceLevel{{Price: price, Quantity: book.DepthAt(orderbookv1.SideSell, price)}},
		Bids:  []orderbookv1.PriceLevel{{Price: price, Quantity: book.DepthAt(orderbookv1.SideBuy, price)}},
	})
}

func takerStatus(order *orderbookv1.Order, result orderbookv1.MatchResult) eventpublisherv1.OrderStatus {
	switch {
	case order.IsFilled():
		return eventpublisherv1.StatusFilled
	case result.ExecutedQty.GreaterThan(decimal.Zero):
		return eventpublisherv1.StatusPartiallyFilled
	default:
		return eventpublisherv1.StatusOpen
	}
}

// reply queues the answer to a command. Commands without a correlation id
// have nobody to answer.
func (e *Engine) reply(correlationID string, reply commandv1.Reply) {
	if correlationID == "" {
		return
	}
	e.emit(eventpublisherv1.Event{
		Kind:      eventpublisherv1.KindReply,
		Channel:   correlationID,
		Payload:   reply,
		RequestID: correlationID,
	})
}

func (e *Engine) emitStream(requestID, stream string, data any) {
	e.emit(eventpublisherv1.Event{
		Kind:      eventpublisherv1.KindStream,
		Channel:   stream,
		Payload:   eventpublisherv1.StreamMessage{Stream: stream, Data: data},
		RequestID: requestID,
	})
}

func (e *Engine) emitHistory(requestID string, t eventpublisherv1.HistoryType, data any) {
	e.emit(eventpublisherv1.Event{
		Kind:      eventpublisherv1.KindHistory,
		Payload:   eventpublisherv1.HistoryEvent{Type: t, Data: data},
		RequestID: requestID,
	})
}

// emit never blocks the command loop; a full outbox drops the event.
func (e *Engine) emit(event eventpublisherv1.Event) {
	select {
	case e.outbox <- event:
	default:
		e.metrics.OutboxDropped()
		e.logger.Warn("Outbox full, event dropped",
			logger.Field{Key: "kind", Value: event.Kind.String()},
			logger.Field{Key: "channel", Value: event.Channel},
			logger.Field{Key: "request_id", Value: event.RequestID},
		)
	}
}

// runOutbox delivers queued events until the command processor closes the outbox.
func (e *Engine) runOutbox() {
	defer e.wg.Done()

	e.logger.Info("Starting outbox")
	for event := range e.outbox {
		e.deliver(event)
	}
	e.logger.Info("Outbox drained")
}

// deliver publishes one event. Failures are logged and counted, never retried.
func (e *Engine) deliver(event eventpublisherv1.Event) {
	ctx, cancel := context.WithTimeout(util.WithRequestID(context.Background(), event.RequestID), e.publishTimeout)
	defer cancel()

	var err error
	switch event.Kind {
	case eventpublisherv1.KindReply, eventpublisherv1.KindStream:
		err = e.publisher.Publish(ctx, event.Channel, event.Payload)
	case eventpublisherv1.KindHistory:
		history, ok := event.Payload.(eventpublisherv1.HistoryEvent)
		if !ok {
			err = fmt.Errorf("history event has payload %T", event.Payload)
			break
		}
		err = e.history.PublishHistory(ctx, history)
	default:
		err = fmt.Errorf("unknown event kind %d", event.Kind)
	}

	if err != nil {
		e.metrics.PublishFailed(event.Kind.String())
		e.logger.WarnContext(ctx, "Event delivery failed",
			logger.Field{Key: "kind", Value: event.Kind.String()},
			logger.Field{Key: "channel", Value: event.Channel},
			logger.Field{Key: "error", Value: err.Error()},
		)
	}
}
