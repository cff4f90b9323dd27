package snapshot

import (
	"context"
	"os"
	"path/filepath"

	pkgerrors "github.com/pkg/errors"
)

// FileStore keeps one <collection>.json file per collection under dir.
// Writes go through a temp file and an atomic rename so a crash never leaves
// a half-written snapshot behind.
type FileStore struct {
	dir string
}

var _ Store = (*FileStore)(nil)

func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, pkgerrors.Wrap(err, "creating snapshot dir")
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) path(collection string) string {
	return filepath.Join(s.dir, collection+".json")
}

func (s *FileStore) Load(_ context.Context, collection string, dest interface{}) error {
	blob, err := os.ReadFile(s.path(collection))
	if err != nil {
		if os.IsNotExist(err) {
			return ErrNotFound
		}
		return pkgerrors.Wrap(err, "reading snapshot")
	}
	return decode(blob, dest)
}

func (s *FileStore) Save(_ context.Context, collection string, data interface{}) error {
	blob, err := encode(data)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(s.dir, collection+".*.tmp")
	if err != nil {
		return pkgerrors.Wrap(err, "creating temp snapshot")
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err = tmp.Write(blob); err != nil {
		_ = tmp.Close()
		return pkgerrors.Wrap(err, "writing snapshot")
	}
	if err = tmp.Close(); err != nil {
		return pkgerrors.Wrap(err, "closing snapshot")
	}
	if err = os.Rename(tmp.Name(), s.path(collection)); err != nil {
		return pkgerrors.Wrap(err, "replacing snapshot")
	}
	return nil
}
