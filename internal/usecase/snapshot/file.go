package snapshot

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"io/fs"
	"os"
	"path/filepath"

	snapshotv1 "github.com/muhammadchandra19/exchange-engine/internal/domain/snapshot/v1"
	logger "github.com/muhammadchandra19/exchange-engine/pkg/logger"
)

// FileStore keeps the engine snapshot in a JSON file. Writes go to a
// temporary file in the same directory and are renamed into place.
type FileStore struct {
	path   string
	logger *logger.Logger
}

// NewFileStore creates a FileStore writing to path.
func NewFileStore(path string, logger *logger.Logger) *FileStore {
	return &FileStore{
		path:   path,
		logger: logger,
	}
}

// Store writes the snapshot atomically.
func (s *FileStore) Store(ctx context.Context, snapshot *snapshotv1.Snapshot) error {
	buf, err := json.Marshal(snapshot)
	if err != nil {
		return snapshotError("snapshot_marshal_error", err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		s.logger.ErrorContext(ctx, err, logger.Field{Key: "path", Value: s.path})
		return snapshotError("snapshot_store_error", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(buf); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return snapshotError("snapshot_store_error", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return snapshotError("snapshot_store_error", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return snapshotError("snapshot_store_error", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		s.logger.ErrorContext(ctx, err, logger.Field{Key: "path", Value: s.path})
		return snapshotError("snapshot_store_error", err)
	}

	s.logger.DebugContext(ctx, "Snapshot written", logger.Field{
		Key:   "path",
		Value: s.path,
	}, logger.Field{
		Key:   "commandOffset",
		Value: snapshot.CommandOffset,
	})
	return nil
}

// LoadStore reads the snapshot file. A missing file yields nil, nil.
func (s *FileStore) LoadStore(ctx context.Context) (*snapshotv1.Snapshot, error) {
	data, err := os.ReadFile(s.path)
	if stderrors.Is(err, fs.ErrNotExist) {
		s.logger.WarnContext(ctx, "No snapshot file found", logger.Field{
			Key:   "path",
			Value: s.path,
		})
		return nil, nil
	}
	if err != nil {
		s.logger.ErrorContext(ctx, err, logger.Field{Key: "path", Value: s.path})
		return nil, snapshotError("snapshot_load_error", err)
	}

	return decode(ctx, s.logger, data)
}

var _ snapshotv1.Store = (*FileStore)(nil)
