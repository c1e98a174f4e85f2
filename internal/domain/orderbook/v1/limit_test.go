package orderbookv1

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func createTestOrder(id, userID string, side Side, price, qty string) *Order {
	return NewOrder(id, userID, side, d(price), d(qty))
}

func sequence() func() int64 {
	var id int64
	return func() int64 {
		id++
		return id
	}
}

func TestNewLimit(t *testing.T) {
	limit := NewLimit(d("100"))

	assert.NotNil(t, limit)
	assert.Equal(t, "100", limit.Price.String())
	assert.True(t, limit.TotalVolume.IsZero())
	assert.Empty(t, limit.Orders)
	assert.True(t, limit.IsEmpty())
}

func TestLimit_AddOrder(t *testing.T) {
	limit := NewLimit(d("100"))

	t.Run("Add valid order", func(t *testing.T) {
		order := createTestOrder("o1", "user1", SideBuy, "100", "10")
		err := limit.AddOrder(order)

		require.NoError(t, err)
		assert.Equal(t, 1, limit.OrderCount())
		assert.Equal(t, "10", limit.TotalVolume.String())
		assert.Equal(t, limit, order.Limit)
		assert.False(t, limit.IsEmpty())
	})

	t.Run("Add nil order", func(t *testing.T) {
		assert.ErrorIs(t, limit.AddOrder(nil), ErrNilOrder)
	})

	t.Run("Add order with zero size", func(t *testing.T) {
		order := createTestOrder("o2", "user1", SideBuy, "100", "0")
		assert.ErrorIs(t, limit.AddOrder(order), ErrInvalidSize)
	})

	t.Run("Add order at another price", func(t *testing.T) {
		order := createTestOrder("o3", "user1", SideBuy, "101", "1")
		assert.ErrorIs(t, limit.AddOrder(order), ErrPriceMismatch)
	})

	t.Run("Partially filled order counts remaining only", func(t *testing.T) {
		limit := NewLimit(d("100"))
		order := createTestOrder("o4", "user1", SideSell, "100", "10")
		order.Filled = d("4")

		require.NoError(t, limit.AddOrder(order))
		assert.Equal(t, "6", limit.TotalVolume.String())
	})
}

func TestLimit_RemoveOrder(t *testing.T) {
	limit := NewLimit(d("100"))
	order := createTestOrder("o1", "user1", SideBuy, "100", "10")
	require.NoError(t, limit.AddOrder(order))

	t.Run("Remove existing order", func(t *testing.T) {
		require.NoError(t, limit.RemoveOrder(order))
		assert.True(t, limit.TotalVolume.IsZero())
		assert.Nil(t, order.Limit)
		assert.True(t, limit.IsEmpty())
	})

	t.Run("Remove twice", func(t *testing.T) {
		assert.ErrorIs(t, limit.RemoveOrder(order), ErrOrderNotFound)
	})

	t.Run("Remove nil order", func(t *testing.T) {
		assert.ErrorIs(t, limit.RemoveOrder(nil), ErrNilOrder)
	})
}

func TestLimit_Fill(t *testing.T) {
	t.Run("partial fill of maker", func(t *testing.T) {
		limit := NewLimit(d("100"))
		maker := createTestOrder("m1", "seller", SideSell, "100", "10")
		require.NoError(t, limit.AddOrder(maker))

		taker := createTestOrder("t1", "buyer", SideBuy, "100", "5")
		fills, makers := limit.Fill(taker, sequence())

		require.Len(t, fills, 1)
		assert.Equal(t, "5", fills[0].Qty.String())
		assert.Equal(t, "100", fills[0].Price.String())
		assert.Equal(t, int64(1), fills[0].TradeID)
		assert.Equal(t, "seller", fills[0].OtherUserID)
		assert.Equal(t, "m1", fills[0].MakerOrderID)
		require.Len(t, makers, 1)
		assert.Equal(t, "5", makers[0].Filled.String())

		assert.True(t, taker.IsFilled())
		assert.Equal(t, "5", maker.Remaining().String())
		assert.Equal(t, 1, limit.OrderCount())
		assert.Equal(t, "5", limit.TotalVolume.String())
	})

	t.Run("exact match empties limit", func(t *testing.T) {
		limit := NewLimit(d("100"))
		maker := createTestOrder("m1", "seller", SideSell, "100", "10")
		require.NoError(t, limit.AddOrder(maker))

		taker := createTestOrder("t1", "buyer", SideBuy, "100", "10")
		fills, _ := limit.Fill(taker, sequence())

		require.Len(t, fills, 1)
		assert.True(t, maker.IsFilled())
		assert.Nil(t, maker.Limit)
		assert.True(t, limit.IsEmpty())
		assert.True(t, limit.TotalVolume.IsZero())
	})

	t.Run("FIFO across makers", func(t *testing.T) {
		limit := NewLimit(d("100"))
		first := createTestOrder("m1", "u1", SideSell, "100", "10")
		second := createTestOrder("m2", "u2", SideSell, "100", "8")
		third := createTestOrder("m3", "u3", SideSell, "100", "15")
		require.NoError(t, limit.AddOrder(first))
		require.NoError(t, limit.AddOrder(second))
		require.NoError(t, limit.AddOrder(third))

		taker := createTestOrder("t1", "buyer", SideBuy, "100", "25")
		fills, _ := limit.Fill(taker, sequence())

		require.Len(t, fills, 3)
		assert.Equal(t, "m1", fills[0].MakerOrderID)
		assert.Equal(t, "10", fills[0].Qty.String())
		assert.Equal(t, "m2", fills[1].MakerOrderID)
		assert.Equal(t, "8", fills[1].Qty.String())
		assert.Equal(t, "m3", fills[2].MakerOrderID)
		assert.Equal(t, "7", fills[2].Qty.String())
		assert.Equal(t, []int64{1, 2, 3}, []int64{fills[0].TradeID, fills[1].TradeID, fills[2].TradeID})

		assert.Equal(t, 1, limit.OrderCount())
		assert.Equal(t, "8", limit.TotalVolume.String())
		assert.True(t, taker.IsFilled())
		require.NoError(t, limit.Validate())
	})

	t.Run("maker fill respects its own remaining", func(t *testing.T) {
		limit := NewLimit(d("100"))
		maker := createTestOrder("m1", "seller", SideSell, "100", "10")
		maker.Filled = d("7")
		require.NoError(t, limit.AddOrder(maker))

		taker := createTestOrder("t1", "buyer", SideBuy, "100", "5")
		fills, _ := limit.Fill(taker, sequence())

		require.Len(t, fills, 1)
		assert.Equal(t, "3", fills[0].Qty.String())
		assert.Equal(t, "2", taker.Remaining().String())
		assert.True(t, limit.IsEmpty())
	})
}

func TestLimit_Validate(t *testing.T) {
	limit := NewLimit(d("100"))
	require.NoError(t, limit.AddOrder(createTestOrder("m1", "u1", SideSell, "100", "3")))
	require.NoError(t, limit.Validate())

	limit.TotalVolume = d("4")
	assert.Error(t, limit.Validate())

	assert.ErrorIs(t, NewLimit(d("0")).Validate(), ErrInvalidPrice)
}

func TestPriceLevel_JSON(t *testing.T) {
	depth := Depth{
		Bids: []PriceLevel{{Price: d("99.5"), Quantity: d("2")}},
		Asks: []PriceLevel{},
	}
	buf, err := json.Marshal(depth)
	require.NoError(t, err)
	assert.JSONEq(t, `{"bids":[["99.5","2"]],"asks":[]}`, string(buf))

	var decoded Depth
	require.NoError(t, json.Unmarshal(buf, &decoded))
	require.Len(t, decoded.Bids, 1)
	assert.True(t, decoded.Bids[0].Price.Equal(d("99.5")))

	assert.Error(t, json.Unmarshal([]byte(`[["x","1"]]`), &decoded.Bids))
}

func TestSide(t *testing.T) {
	assert.True(t, SideBuy.Valid())
	assert.False(t, Side("hold").Valid())
	assert.Equal(t, SideSell, SideBuy.Opposite())
	assert.Equal(t, SideBuy, SideSell.Opposite())
}
