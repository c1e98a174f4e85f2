package snapshot

import (
	"context"
	"encoding/json"
	"fmt"

	snapshotv1 "github.com/muhammadchandra19/exchange-engine/internal/domain/snapshot/v1"
	"github.com/muhammadchandra19/exchange-engine/pkg/errors"
	logger "github.com/muhammadchandra19/exchange-engine/pkg/logger"
	"github.com/muhammadchandra19/exchange-engine/pkg/redis"
)

// Store keeps the engine snapshot under a single Redis key.
type Store struct {
	key         string
	logger      *logger.Logger
	redisclient redis.Client
}

// NewSnapshotStore creates a new Store with the given Redis client and key.
func NewSnapshotStore(redisclient redis.Client, key string, logger *logger.Logger) *Store {
	return &Store{
		key:         key,
		redisclient: redisclient,
		logger:      logger,
	}
}

// Store serializes the snapshot and writes it to Redis.
func (s *Store) Store(ctx context.Context, snapshot *snapshotv1.Snapshot) error {
	buf, err := json.Marshal(snapshot)
	if err != nil {
		s.logger.ErrorContext(ctx, err, logger.Field{
			Key:   "key",
			Value: s.key,
		}, logger.Field{
			Key:   "action",
			Value: "marshal snapshot",
		})
		return snapshotError("snapshot_marshal_error", err)
	}

	if err := s.redisclient.Set(ctx, s.key, buf, 0); err != nil {
		s.logger.ErrorContext(ctx, err, logger.Field{
			Key:   "key",
			Value: s.key,
		}, logger.Field{
			Key:   "action",
			Value: "store snapshot",
		})
		return snapshotError("snapshot_store_error", err)
	}

	s.logger.DebugContext(ctx, fmt.Sprintf("Snapshot stored under %s", s.key), logger.Field{
		Key:   "commandOffset",
		Value: snapshot.CommandOffset,
	}, logger.Field{
		Key:   "bytes",
		Value: len(buf),
	})
	return nil
}

// LoadStore loads the snapshot from Redis. A missing key yields nil, nil.
func (s *Store) LoadStore(ctx context.Context) (*snapshotv1.Snapshot, error) {
	s.logger.InfoContext(ctx, fmt.Sprintf("Loading snapshot from %s", s.key), logger.Field{
		Key:   "action",
		Value: "load snapshot",
	})

	data, err := s.redisclient.Get(ctx, s.key)
	if err != nil {
		s.logger.ErrorContext(ctx, err, logger.Field{
			Key:   "key",
			Value: s.key,
		}, logger.Field{
			Key:   "action",
			Value: "load snapshot",
		})
		return nil, snapshotError("snapshot_load_error", err)
	}

	if data == "" {
		s.logger.WarnContext(ctx, fmt.Sprintf("No snapshot found under %s", s.key), logger.Field{
			Key:   "action",
			Value: "load snapshot",
		})
		return nil, nil
	}

	return decode(ctx, s.logger, []byte(data))
}

func decode(ctx context.Context, log *logger.Logger, data []byte) (*snapshotv1.Snapshot, error) {
	var snapshot snapshotv1.Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		log.ErrorContext(ctx, err, logger.Field{
			Key:   "action",
			Value: "unmarshal snapshot",
		})
		return nil, snapshotError("snapshot_unmarshal_error", err)
	}
	return &snapshot, nil
}

func snapshotError(message string, err error) error {
	return errors.NewTracer(message).Wrap(
		errors.NewErrorDetails(err.Error(), string(errors.SnapshotIOError), "snapshot"),
	)
}

var _ snapshotv1.Store = (*Store)(nil)
