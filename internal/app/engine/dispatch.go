package engine

import (
	"context"
	"encoding/json"
	"fmt"

	commandv1 "github.com/muhammadchandra19/exchange-engine/internal/domain/command/v1"
	ledgerv1 "github.com/muhammadchandra19/exchange-engine/internal/domain/ledger/v1"
	orderbookv1 "github.com/muhammadchandra19/exchange-engine/internal/domain/orderbook/v1"
	"github.com/muhammadchandra19/exchange-engine/internal/metrics"
	"github.com/muhammadchandra19/exchange-engine/pkg/errors"
	"github.com/muhammadchandra19/exchange-engine/pkg/logger"
	"github.com/muhammadchandra19/exchange-engine/pkg/util"
	"github.com/oklog/ulid/v2"
	"github.com/shopspring/decimal"
)

// Process applies one command, records its offset and queues the reply
// after every event the command produced. It never panics.
func (e *Engine) Process(ctx context.Context, env commandv1.Envelope) commandv1.Reply {
	ctx = util.WithRequestID(ctx, env.CorrelationID)

	e.mu.Lock()
	reply, result := e.dispatchSafely(ctx, env)
	e.commandOffset = env.Offset
	e.mu.Unlock()

	e.metrics.ObserveCommand(string(env.Command.Type), result)
	e.metrics.SetCommandOffset(env.Offset)

	e.logger.DebugContext(ctx, "Command processed",
		logger.Field{Key: "offset", Value: env.Offset},
		logger.Field{Key: "type", Value: env.Command.Type},
		logger.Field{Key: "result", Value: result},
	)

	e.reply(env.CorrelationID, reply)
	return reply
}

// dispatchSafely turns a panic in a single command into an ERROR reply.
// Caller holds e.mu.
func (e *Engine) dispatchSafely(ctx context.Context, env commandv1.Envelope) (reply commandv1.Reply, result string) {
	defer func() {
		if r := recover(); r != nil {
			err := errors.NewTracer("command panicked").Wrap(fmt.Errorf("%v", r))
			e.logger.ErrorContext(ctx, err,
				logger.Field{Key: "action", Value: "process_command"},
				logger.Field{Key: "type", Value: env.Command.Type},
				logger.Field{Key: "offset", Value: env.Offset},
			)
			reply = commandv1.NewErrorReply(string(errors.GeneralInternalServerError), "internal error")
			result = metrics.ResultError
		}
	}()

	return e.dispatch(ctx, env)
}

func (e *Engine) dispatch(ctx context.Context, env commandv1.Envelope) (commandv1.Reply, string) {
	switch env.Command.Type {
	case commandv1.CreateOrder:
		var p commandv1.CreateOrderPayload
		if err := decodePayload(env.Command.Data, &p); err != nil {
			return invalidReply(err)
		}
		return e.createOrder(util.WithMarket(ctx, p.Market), p)

	case commandv1.CancelOrder:
		var p commandv1.CancelOrderPayload
		if err := decodePayload(env.Command.Data, &p); err != nil {
			return invalidReply(err)
		}
		return e.cancelOrder(util.WithMarket(ctx, p.Market), p)

	case commandv1.GetOpenOrders:
		var p commandv1.GetOpenOrdersPayload
		if err := decodePayload(env.Command.Data, &p); err != nil {
			return invalidReply(err)
		}
		return e.openOrders(p)

	case commandv1.OnRamp:
		var p commandv1.OnRampPayload
		if err := decodePayload(env.Command.Data, &p); err != nil {
			return invalidReply(err)
		}
		return e.onRamp(ctx, p)

	case commandv1.GetDepth:
		var p commandv1.GetDepthPayload
		if err := decodePayload(env.Command.Data, &p); err != nil {
			return invalidReply(err)
		}
		return e.depth(p)

	default:
		e.logger.WarnContext(ctx, "Unknown command type", logger.Field{
			Key:   "type",
			Value: env.Command.Type,
		})
		return commandv1.NewErrorReply(
			string(errors.UnknownCommand),
			fmt.Sprintf("unknown command type %q", env.Command.Type),
		), metrics.ResultRejected
	}
}

// createOrder locks the order's full notional, matches it, settles every
// fill and emits the resulting events. Caller holds e.mu.
func (e *Engine) createOrder(ctx context.Context, p commandv1.CreateOrderPayload) (commandv1.Reply, string) {
	side := orderbookv1.Side(p.Side)
	if err := validateCreateOrder(p); err != nil {
		return rejectOrder(err), metrics.ResultRejected
	}

	book, ok := e.books[p.Market]
	if !ok {
		return rejectOrder(marketNotFound(p.Market)), metrics.ResultRejected
	}

	lockAsset, lockAmount := book.QuoteAsset(), p.Price.Mul(p.Quantity)
	if side == orderbookv1.SideSell {
		lockAsset, lockAmount = book.BaseAsset(), p.Quantity
	}
	if err := e.ledger.Lock(p.UserID, lockAsset, lockAmount); err != nil {
		e.logger.InfoContext(ctx, "Order rejected",
			logger.Field{Key: "userId", Value: p.UserID},
			logger.Field{Key: "market", Value: p.Market},
			logger.Field{Key: "reason", Value: err.Error()},
		)
		return rejectOrder(err), metrics.ResultRejected
	}

	order := orderbookv1.NewOrder(ulid.Make().String(), p.UserID, side, p.Price, p.Quantity)
	order.Timestamp = e.now().UnixNano()

	result, err := book.AddOrder(order)
	if err != nil {
		// AddOrder only fails before touching the book
		if unlockErr := e.ledger.Unlock(p.UserID, lockAsset, lockAmount); unlockErr != nil {
			e.logInvariant(ctx, unlockErr, "unlock_rejected_order")
		}
		return rejectOrder(err), metrics.ResultRejected
	}

	for _, fill := range result.Fills {
		err := e.ledger.Settle(ledgerv1.Settlement{
			Taker:      p.UserID,
			Maker:      fill.OtherUserID,
			TakerSide:  side,
			BaseAsset:  book.BaseAsset(),
			QuoteAsset: book.QuoteAsset(),
			Price:      fill.Price,
			Qty:        fill.Qty,
		})
		if err != nil {
			e.logInvariant(ctx, err, "settle_fill")
		}

		// a buyer filled below its limit gets the unused part of its lock back
		if side == orderbookv1.SideBuy && fill.Price.LessThan(order.Price) {
			refund := order.Price.Sub(fill.Price).Mul(fill.Qty)
			if err := e.ledger.Unlock(p.UserID, book.QuoteAsset(), refund); err != nil {
				e.logInvariant(ctx, err, "price_improvement_refund")
			}
		}
	}

	e.totalFills += int64(len(result.Fills))
	e.metrics.ObserveFills(book.Ticker(), len(result.Fills))
	e.metrics.SetRestingOrders(book.Ticker(), book.OrderCount())

	e.emitOrderEvents(ctx, book, order, result)

	if len(result.Fills) > 0 {
		e.logger.InfoContext(ctx, "Order matched",
			logger.Field{Key: "orderId", Value: order.ID},
			logger.Field{Key: "market", Value: book.Ticker()},
			logger.Field{Key: "fills", Value: len(result.Fills)},
			logger.Field{Key: "executedQty", Value: result.ExecutedQty.String()},
		)
	}

	return commandv1.Reply{
		Type: commandv1.OrderPlaced,
		Payload: commandv1.OrderPlacedPayload{
			OrderID:     order.ID,
			ExecutedQty: result.ExecutedQty,
			Fills:       result.Fills,
		},
	}, metrics.ResultOK
}

// cancelOrder removes a resting order and refunds its unfilled remainder.
// Caller holds e.mu.
func (e *Engine) cancelOrder(ctx context.Context, p commandv1.CancelOrderPayload) (commandv1.Reply, string) {
	book, ok := e.books[p.Market]
	if !ok {
		return errorReply(marketNotFound(p.Market)), metrics.ResultRejected
	}

	order, err := book.Cancel(p.OrderID)
	if err != nil {
		return errorReply(err), metrics.ResultRejected
	}

	remaining := order.Remaining()
	refundAsset, refund := book.QuoteAsset(), remaining.Mul(order.Price)
	if order.Side == orderbookv1.SideSell {
		refundAsset, refund = book.BaseAsset(), remaining
	}
	if err := e.ledger.Unlock(order.UserID, refundAsset, refund); err != nil {
		e.logInvariant(ctx, err, "cancel_refund")
	}

	e.metrics.SetRestingOrders(book.Ticker(), book.OrderCount())
	e.emitCancelEvents(ctx, book, order)

	return commandv1.Reply{
		Type: commandv1.OrderCancelled,
		Payload: commandv1.OrderCancelledPayload{
			OrderID:      order.ID,
			ExecutedQty:  order.Filled,
			RemainingQty: remaining,
		},
	}, metrics.ResultOK
}

// Caller holds e.mu.
func (e *Engine) openOrders(p commandv1.GetOpenOrdersPayload) (commandv1.Reply, string) {
	book, ok := e.books[p.Market]
	if !ok {
		return errorReply(marketNotFound(p.Market)), metrics.ResultRejected
	}
	return commandv1.Reply{
		Type:    commandv1.OpenOrders,
		Payload: book.OpenOrders(p.UserID),
	}, metrics.ResultOK
}

// onRamp credits the base currency. Caller holds e.mu.
func (e *Engine) onRamp(ctx context.Context, p commandv1.OnRampPayload) (commandv1.Reply, string) {
	if p.UserID == "" {
		return errorReply(errors.NewErrorDetails("userId is required", string(errors.InvalidCommand), "userId")), metrics.ResultRejected
	}

	asset := e.config.App.BaseCurrency
	balance, err := e.ledger.Credit(p.UserID, asset, p.Amount)
	if err != nil {
		return errorReply(err), metrics.ResultRejected
	}

	e.logger.InfoContext(ctx, "On-ramp credited",
		logger.Field{Key: "userId", Value: p.UserID},
		logger.Field{Key: "amount", Value: p.Amount.String()},
		logger.Field{Key: "txnId", Value: p.TxnID},
	)

	return commandv1.Reply{
		Type: commandv1.OnRampDone,
		Payload: commandv1.OnRampReplyPayload{
			UserID:    p.UserID,
			Asset:     asset,
			Available: balance.Available,
		},
	}, metrics.ResultOK
}

// depth answers an unknown market with an empty depth. Caller holds e.mu.
func (e *Engine) depth(p commandv1.GetDepthPayload) (commandv1.Reply, string) {
	depth := orderbookv1.EmptyDepth()
	if book, ok := e.books[p.Market]; ok {
		depth = book.Depth()
	}
	return commandv1.Reply{Type: commandv1.Depth, Payload: depth}, metrics.ResultOK
}

func (e *Engine) logInvariant(ctx context.Context, err error, action string) {
	e.logger.ErrorContext(ctx, err,
		logger.Field{Key: "action", Value: action},
		logger.Field{Key: "market", Value: util.GetMarket(ctx)},
		logger.Field{Key: "code", Value: errors.CodeOf(err)},
	)
}

func validateCreateOrder(p commandv1.CreateOrderPayload) error {
	switch {
	case p.UserID == "":
		return errors.NewErrorDetails("userId is required", string(errors.InvalidCommand), "userId")
	case !orderbookv1.Side(p.Side).Valid():
		return errors.NewErrorDetails(fmt.Sprintf("invalid side %q", p.Side), string(errors.InvalidCommand), "side")
	case !p.Price.IsPositive():
		return errors.NewErrorDetails("price must be positive", string(errors.InvalidCommand), "price")
	case !p.Quantity.IsPositive():
		return errors.NewErrorDetails("quantity must be positive", string(errors.InvalidCommand), "quantity")
	}
	return nil
}

func decodePayload(data json.RawMessage, v any) error {
	if err := json.Unmarshal(data, v); err != nil {
		return errors.NewErrorDetails("malformed command data: "+err.Error(), string(errors.InvalidCommand), "data")
	}
	return nil
}

func marketNotFound(market string) error {
	return errors.NewErrorDetails(fmt.Sprintf("market %q not found", market), string(errors.MarketNotFound), "market")
}

func invalidReply(err error) (commandv1.Reply, string) {
	return errorReply(err), metrics.ResultRejected
}

func errorReply(err error) commandv1.Reply {
	return commandv1.NewErrorReply(string(errors.CodeOf(err)), err.Error())
}

// rejectOrder builds the cancellation shaped answer to a refused CREATE_ORDER.
func rejectOrder(err error) commandv1.Reply {
	return commandv1.Reply{
		Type: commandv1.OrderCancelled,
		Payload: commandv1.OrderCancelledPayload{
			OrderID:      "",
			ExecutedQty:  decimal.Zero,
			RemainingQty: decimal.Zero,
			Error: &commandv1.ErrorPayload{
				Code:    string(errors.CodeOf(err)),
				Message: err.Error(),
			},
		},
	}
}
