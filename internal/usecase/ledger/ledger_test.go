package ledger

import (
	"testing"

	ledgerv1 "github.com/muhammadchandra19/exchange-engine/internal/domain/ledger/v1"
	orderbookv1 "github.com/muhammadchandra19/exchange-engine/internal/domain/orderbook/v1"
	"github.com/muhammadchandra19/exchange-engine/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertBalance(t *testing.T, l *Ledger, user, asset, available, locked string) {
	t.Helper()
	b := l.Get(user, asset)
	assert.True(t, b.Available.Equal(d(available)), "%s/%s available: want %s got %s", user, asset, available, b.Available)
	assert.True(t, b.Locked.Equal(d(locked)), "%s/%s locked: want %s got %s", user, asset, locked, b.Locked)
}

func TestLedger_Credit(t *testing.T) {
	l := NewLedger()

	b, err := l.Credit("u1", "INR", d("100"))
	require.NoError(t, err)
	assert.Equal(t, "100", b.Available.String())

	_, err = l.Credit("u1", "INR", d("50.5"))
	require.NoError(t, err)
	assertBalance(t, l, "u1", "INR", "150.5", "0")

	_, err = l.Credit("u1", "INR", d("0"))
	assert.ErrorIs(t, err, ErrInvalidAmount)
	_, err = l.Credit("u1", "INR", d("-1"))
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestLedger_Lock(t *testing.T) {
	testCases := []struct {
		name          string
		credit        string
		lock          string
		wantErr       bool
		wantAvailable string
		wantLocked    string
	}{
		{name: "lock part", credit: "100", lock: "40", wantAvailable: "60", wantLocked: "40"},
		{name: "lock all", credit: "100", lock: "100", wantAvailable: "0", wantLocked: "100"},
		{name: "insufficient", credit: "100", lock: "100.01", wantErr: true, wantAvailable: "100", wantLocked: "0"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			l := NewLedger()
			_, err := l.Credit("u1", "INR", d(tc.credit))
			require.NoError(t, err)

			err = l.Lock("u1", "INR", d(tc.lock))
			if tc.wantErr {
				assert.ErrorIs(t, err, ErrInsufficientFunds)
				assert.True(t, errors.HasCode(err, errors.InsufficientFunds))
			} else {
				assert.NoError(t, err)
			}
			assertBalance(t, l, "u1", "INR", tc.wantAvailable, tc.wantLocked)
		})
	}

	t.Run("rejected lock creates no record", func(t *testing.T) {
		l := NewLedger()
		assert.ErrorIs(t, l.Lock("ghost", "TATA", d("1")), ErrInsufficientFunds)
		assert.False(t, l.HasUser("ghost"))
		assert.Empty(t, l.Snapshot())
	})
}

func TestLedger_Unlock(t *testing.T) {
	l := NewLedger()
	_, err := l.Credit("u1", "INR", d("100"))
	require.NoError(t, err)
	require.NoError(t, l.Lock("u1", "INR", d("60")))

	require.NoError(t, l.Unlock("u1", "INR", d("25")))
	assertBalance(t, l, "u1", "INR", "65", "35")

	require.NoError(t, l.Unlock("u1", "INR", decimal.Zero))

	err = l.Unlock("u1", "INR", d("36"))
	assert.ErrorIs(t, err, ErrInvariantViolation)
	assertBalance(t, l, "u1", "INR", "65", "35")
}

func TestLedger_Settle(t *testing.T) {
	setup := func(t *testing.T) *Ledger {
		l := NewLedger()
		for _, u := range []string{"buyer", "seller"} {
			_, err := l.Credit(u, "INR", d("1000"))
			require.NoError(t, err)
			_, err = l.Credit(u, "TATA", d("10"))
			require.NoError(t, err)
		}
		return l
	}

	t.Run("buy taker", func(t *testing.T) {
		l := setup(t)
		require.NoError(t, l.Lock("buyer", "INR", d("500")))
		require.NoError(t, l.Lock("seller", "TATA", d("5")))
		before := l.Totals()

		err := l.Settle(ledgerv1.Settlement{
			Taker: "buyer", Maker: "seller", TakerSide: orderbookv1.SideBuy,
			BaseAsset: "TATA", QuoteAsset: "INR", Price: d("100"), Qty: d("5"),
		})
		require.NoError(t, err)

		assertBalance(t, l, "buyer", "INR", "500", "0")
		assertBalance(t, l, "buyer", "TATA", "15", "0")
		assertBalance(t, l, "seller", "INR", "1500", "0")
		assertBalance(t, l, "seller", "TATA", "5", "0")
		assertTotalsEqual(t, before, l.Totals())
	})

	t.Run("sell taker", func(t *testing.T) {
		l := setup(t)
		require.NoError(t, l.Lock("buyer", "INR", d("300")))
		require.NoError(t, l.Lock("seller", "TATA", d("3")))

		err := l.Settle(ledgerv1.Settlement{
			Taker: "seller", Maker: "buyer", TakerSide: orderbookv1.SideSell,
			BaseAsset: "TATA", QuoteAsset: "INR", Price: d("100"), Qty: d("3"),
		})
		require.NoError(t, err)

		assertBalance(t, l, "buyer", "INR", "700", "0")
		assertBalance(t, l, "buyer", "TATA", "13", "0")
		assertBalance(t, l, "seller", "INR", "1300", "0")
		assertBalance(t, l, "seller", "TATA", "7", "0")
	})

	t.Run("self match nets out", func(t *testing.T) {
		l := setup(t)
		require.NoError(t, l.Lock("buyer", "INR", d("200")))
		require.NoError(t, l.Lock("buyer", "TATA", d("2")))

		err := l.Settle(ledgerv1.Settlement{
			Taker: "buyer", Maker: "buyer", TakerSide: orderbookv1.SideBuy,
			BaseAsset: "TATA", QuoteAsset: "INR", Price: d("100"), Qty: d("2"),
		})
		require.NoError(t, err)
		assertBalance(t, l, "buyer", "INR", "1000", "0")
		assertBalance(t, l, "buyer", "TATA", "10", "0")
	})

	t.Run("underflow is rejected atomically", func(t *testing.T) {
		l := setup(t)
		require.NoError(t, l.Lock("seller", "TATA", d("5")))
		snapshot := l.Snapshot()

		err := l.Settle(ledgerv1.Settlement{
			Taker: "buyer", Maker: "seller", TakerSide: orderbookv1.SideBuy,
			BaseAsset: "TATA", QuoteAsset: "INR", Price: d("100"), Qty: d("5"),
		})
		assert.ErrorIs(t, err, ErrInvariantViolation)
		assert.True(t, errors.HasCode(err, errors.LedgerInvariantViolation))
		assert.Equal(t, snapshot, l.Snapshot())
	})
}

func TestLedger_SnapshotRestore(t *testing.T) {
	l := NewLedger()
	_, err := l.Credit("1", "INR", d("10"))
	require.NoError(t, err)
	require.NoError(t, l.Lock("1", "INR", d("4")))

	snap := l.Snapshot()
	snap["1"]["INR"] = ledgerv1.Balance{Available: d("999"), Locked: d("0")}
	assertBalance(t, l, "1", "INR", "6", "4")

	restored := NewLedger()
	restored.Restore(l.Snapshot())
	assert.Equal(t, l.Snapshot(), restored.Snapshot())

	_, err = restored.Credit("1", "INR", d("1"))
	require.NoError(t, err)
	assertBalance(t, l, "1", "INR", "6", "4")
}

func assertTotalsEqual(t *testing.T, want, got map[string]decimal.Decimal) {
	t.Helper()
	require.Len(t, got, len(want))
	for asset, total := range want {
		assert.True(t, total.Equal(got[asset]), "asset %s: want %s got %s", asset, total, got[asset])
	}
}
