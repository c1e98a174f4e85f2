package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/golang/mock/gomock"
	ledgerv1 "github.com/muhammadchandra19/exchange-engine/internal/domain/ledger/v1"
	orderbookv1 "github.com/muhammadchandra19/exchange-engine/internal/domain/orderbook/v1"
	snapshotv1 "github.com/muhammadchandra19/exchange-engine/internal/domain/snapshot/v1"
	pkgerrors "github.com/muhammadchandra19/exchange-engine/pkg/errors"
	"github.com/muhammadchandra19/exchange-engine/pkg/logger"
	redismock "github.com/muhammadchandra19/exchange-engine/pkg/redis/mock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleSnapshot() *snapshotv1.Snapshot {
	bid := orderbookv1.Order{
		ID: "01J0BID", UserID: "1", Side: orderbookv1.SideBuy,
		Price: decimal.RequireFromString("99"), Quantity: decimal.RequireFromString("2"),
		Filled: decimal.RequireFromString("0.5"), Timestamp: 1700000000000000000,
	}
	return &snapshotv1.Snapshot{
		CommandOffset: 41,
		OrderBooks: []snapshotv1.OrderBookSnapshot{{
			BaseAsset:    "TATA",
			Bids:         []orderbookv1.Order{bid},
			Asks:         []orderbookv1.Order{},
			LastTradeID:  3,
			CurrentPrice: decimal.RequireFromString("99"),
		}},
		Balances: []snapshotv1.UserBalances{{
			UserID: "1",
			Assets: map[string]ledgerv1.Balance{
				"INR": {Available: decimal.RequireFromString("901.5"), Locked: decimal.RequireFromString("148.5")},
			},
		}},
	}
}

func TestSnapshot_JSONShape(t *testing.T) {
	buf, err := json.Marshal(sampleSnapshot())
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"commandOffset": 41,
		"orderBooks": [{
			"baseAsset": "TATA",
			"bids": [{"orderId":"01J0BID","userId":"1","side":"buy","price":"99","quantity":"2","filled":"0.5","timestamp":1700000000000000000}],
			"asks": [],
			"lastTradeId": 3,
			"currentPrice": "99"
		}],
		"balances": [["1", {"INR": {"available":"901.5","locked":"148.5"}}]]
	}`, string(buf))

	var decoded snapshotv1.Snapshot
	require.NoError(t, json.Unmarshal(buf, &decoded))
	again, err := json.Marshal(&decoded)
	require.NoError(t, err)
	assert.JSONEq(t, string(buf), string(again))
}

func TestSnapshot_BadBalanceEntry(t *testing.T) {
	var decoded snapshotv1.Snapshot
	err := json.Unmarshal([]byte(`{"commandOffset":1,"orderBooks":[],"balances":[["1"]]}`), &decoded)
	assert.Error(t, err)
}

func TestStore(t *testing.T) {
	ctx := context.Background()

	t.Run("store writes json under key", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		client := redismock.NewMockClient(ctrl)
		store := NewSnapshotStore(client, "engine:snapshot", logger.NewNop())

		client.EXPECT().
			Set(gomock.Any(), "engine:snapshot", gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, _ string, value any, _ any) error {
				var decoded snapshotv1.Snapshot
				require.NoError(t, json.Unmarshal(value.([]byte), &decoded))
				assert.Equal(t, int64(41), decoded.CommandOffset)
				return nil
			})

		require.NoError(t, store.Store(ctx, sampleSnapshot()))
	})

	t.Run("store failure is a snapshot io error", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		client := redismock.NewMockClient(ctrl)
		store := NewSnapshotStore(client, "engine:snapshot", logger.NewNop())

		client.EXPECT().Set(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("down"))

		err := store.Store(ctx, sampleSnapshot())
		assert.True(t, pkgerrors.HasCode(err, pkgerrors.SnapshotIOError))
	})

	t.Run("load missing key", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		client := redismock.NewMockClient(ctrl)
		store := NewSnapshotStore(client, "engine:snapshot", logger.NewNop())

		client.EXPECT().Get(gomock.Any(), "engine:snapshot").Return("", nil)

		snap, err := store.LoadStore(ctx)
		require.NoError(t, err)
		assert.Nil(t, snap)
	})

	t.Run("load round trip", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		client := redismock.NewMockClient(ctrl)
		store := NewSnapshotStore(client, "engine:snapshot", logger.NewNop())

		buf, err := json.Marshal(sampleSnapshot())
		require.NoError(t, err)
		client.EXPECT().Get(gomock.Any(), "engine:snapshot").Return(string(buf), nil)

		snap, err := store.LoadStore(ctx)
		require.NoError(t, err)
		require.NotNil(t, snap)
		assert.Equal(t, int64(41), snap.CommandOffset)
		require.Len(t, snap.OrderBooks, 1)
		assert.Equal(t, "01J0BID", snap.OrderBooks[0].Bids[0].ID)
		assert.Equal(t, "148.5", snap.Balances[0].Assets["INR"].Locked.String())
	})

	t.Run("load corrupt", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		client := redismock.NewMockClient(ctrl)
		store := NewSnapshotStore(client, "engine:snapshot", logger.NewNop())

		client.EXPECT().Get(gomock.Any(), gomock.Any()).Return("{", nil)

		_, err := store.LoadStore(ctx)
		assert.True(t, pkgerrors.HasCode(err, pkgerrors.SnapshotIOError))
	})

	t.Run("load failure", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		client := redismock.NewMockClient(ctrl)
		store := NewSnapshotStore(client, "engine:snapshot", logger.NewNop())

		client.EXPECT().Get(gomock.Any(), gomock.Any()).Return("", errors.New("timeout"))

		_, err := store.LoadStore(ctx)
		assert.True(t, pkgerrors.HasCode(err, pkgerrors.SnapshotIOError))
	})
}

func TestFileStore(t *testing.T) {
	ctx := context.Background()

	t.Run("missing file", func(t *testing.T) {
		store := NewFileStore(filepath.Join(t.TempDir(), "snapshot.json"), logger.NewNop())
		snap, err := store.LoadStore(ctx)
		require.NoError(t, err)
		assert.Nil(t, snap)
	})

	t.Run("round trip and overwrite", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "snapshot.json")
		store := NewFileStore(path, logger.NewNop())

		first := sampleSnapshot()
		require.NoError(t, store.Store(ctx, first))

		second := sampleSnapshot()
		second.CommandOffset = 99
		require.NoError(t, store.Store(ctx, second))

		snap, err := store.LoadStore(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(99), snap.CommandOffset)

		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		assert.Len(t, entries, 1)
	})

	t.Run("corrupt file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "snapshot.json")
		require.NoError(t, os.WriteFile(path, []byte("not json"), 0o600))

		_, err := NewFileStore(path, logger.NewNop()).LoadStore(ctx)
		assert.True(t, pkgerrors.HasCode(err, pkgerrors.SnapshotIOError))
	})

	t.Run("unwritable directory", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "missing", "snapshot.json")
		err := NewFileStore(path, logger.NewNop()).Store(ctx, sampleSnapshot())
		assert.True(t, pkgerrors.HasCode(err, pkgerrors.SnapshotIOError))
	})
}
