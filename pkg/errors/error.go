package errors

import (
	"bytes"
	stderrors "errors"
	"strings"
)

// ErrorCode represents a specific error code in the system.
type ErrorCode string

const (
	// GeneralInternalServerError represents a generic internal server error.
	GeneralInternalServerError ErrorCode = "general_internal_server_error"
	// GeneralBadRequestError represents a generic bad request error.
	GeneralBadRequestError ErrorCode = "general_bad_request_error"

	// MarketNotFound is returned when a command references a market the engine does not own.
	MarketNotFound ErrorCode = "market_not_found"
	// InsufficientFunds is returned when a user cannot cover the lock required by an order.
	InsufficientFunds ErrorCode = "insufficient_funds"
	// OrderNotFound is returned when a cancel references an order that is not resting.
	OrderNotFound ErrorCode = "order_not_found"
	// InvalidCommand is returned when a command payload fails decoding or validation.
	InvalidCommand ErrorCode = "invalid_command"
	// UnknownCommand is returned for command types the engine does not recognise.
	UnknownCommand ErrorCode = "unknown_command"
	// LedgerInvariantViolation is returned when a balance mutation would drive a balance negative.
	LedgerInvariantViolation ErrorCode = "ledger_invariant_violation"

	// SnapshotIOError represents a failure reading or writing an engine snapshot.
	SnapshotIOError ErrorCode = "snapshot_io_error"

	// RedisConfigError represents an error when the Redis configuration is invalid or nil.
	RedisConfigError ErrorCode = "redis_config_error"
	// RedisConnectionError represents an error when connecting to Redis.
	RedisConnectionError ErrorCode = "redis_connection_error"
	// RedisDisconnectionError represents an error when disconnecting from Redis.
	RedisDisconnectionError ErrorCode = "redis_disconnection_error"
	// RedisPingError represents an error when pinging Redis.
	RedisPingError ErrorCode = "redis_pinging_error"
	// RedisGetError represents an error when getting a value from Redis.
	RedisGetError ErrorCode = "redis_get_error"
	// RedisSetError represents an error when setting a value in Redis.
	RedisSetError ErrorCode = "redis_set_error"
	// RedisPublishError represents an error when publishing messages to channels in Redis.
	RedisPublishError ErrorCode = "redis_publish_error"
	// RedisListPushError represents an error when pushing onto a Redis list.
	RedisListPushError ErrorCode = "redis_list_push_error"
	// RedisListPopError represents an error when popping from a Redis list.
	RedisListPopError ErrorCode = "redis_list_pop_error"
)

// BaseError is an `error` type containing an array of ErrorDetails.
type BaseError struct {
	details []*ErrorDetails
}

// NewBaseError create BaseError with ErrorDetails
func NewBaseError(details ...*ErrorDetails) *BaseError {
	return &BaseError{details: details}
}

// AddErrorDetails add more ErrorDetails to BaseError
func (b *BaseError) AddErrorDetails(errors ...*ErrorDetails) {
	b.details = append(b.details, errors...)
}

// GetDetails get array ErrorDetails on BaseError
func (b *BaseError) GetDetails() []*ErrorDetails {
	return b.details
}

// Error implement error interface
func (b *BaseError) Error() string {
	buff := bytes.NewBufferString("")

	for _, err := range b.details {
		buff.WriteString("code: ")
		buff.WriteString(err.Code)
		buff.WriteString("; error: ")
		buff.WriteString(err.Error())
		if err.Field != "" {
			buff.WriteString("; field: ")
			buff.WriteString(err.Field)
		}
		buff.WriteString("\n")
	}

	return strings.TrimSpace(buff.String())
}

// IsAnyCodeEqual check if any ErrorDetails code is equal with given code
func (b *BaseError) IsAnyCodeEqual(code string) bool {
	for _, d := range b.GetDetails() {
		if d.Code == code {
			return true
		}
	}
	return false
}

// CodeOf walks the wrap chain of err and returns the code of the first
// ErrorDetails found. GeneralInternalServerError is returned otherwise.
func CodeOf(err error) ErrorCode {
	var details *ErrorDetails
	if stderrors.As(err, &details) {
		return ErrorCode(details.Code)
	}
	return GeneralInternalServerError
}

// HasCode reports whether err, or anything it wraps, is an ErrorDetails with the given code.
func HasCode(err error, code ErrorCode) bool {
	var details *ErrorDetails
	if stderrors.As(err, &details) {
		return details.Code == string(code)
	}
	return false
}
