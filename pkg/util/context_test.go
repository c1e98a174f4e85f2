package util

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestWithRequestID(t *testing.T) {
	t.Run("keeps provided id", func(t *testing.T) {
		ctx := WithRequestID(context.Background(), "corr-1")
		assert.Equal(t, "corr-1", GetRequestID(ctx))
	})

	t.Run("generates uuid when empty", func(t *testing.T) {
		ctx := WithRequestID(context.Background(), "")
		_, err := uuid.Parse(GetRequestID(ctx))
		assert.NoError(t, err)
	})

	t.Run("missing id", func(t *testing.T) {
		assert.Empty(t, GetRequestID(context.Background()))
	})
}

func TestWithMarket(t *testing.T) {
	ctx := WithMarket(context.Background(), "TATA_INR")
	assert.Equal(t, "TATA_INR", GetMarket(ctx))
	assert.Empty(t, GetMarket(context.Background()))
}
