package snapshot

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	pkgerrors "github.com/pkg/errors"
)

// PostgresStore keeps one row per collection in the snapshots table; the blob
// lands in a JSONB column. The upsert makes Save a single atomic statement.
type PostgresStore struct {
	db *sqlx.DB
}

var _ Store = (*PostgresStore)(nil)

func NewPostgresStore(db *sql.DB, driverName string) *PostgresStore {
	return &PostgresStore{db: sqlx.NewDb(db, driverName)}
}

func (s *PostgresStore) Load(ctx context.Context, collection string, dest interface{}) error {
	var blob []byte
	err := s.db.GetContext(ctx, &blob, "SELECT data FROM snapshots WHERE collection = $1", collection)
	if err != nil {
		if err == sql.ErrNoRows {
			return ErrNotFound
		}
		return pkgerrors.Wrap(err, "querying snapshot")
	}
	return decode(blob, dest)
}

func (s *PostgresStore) Save(ctx context.Context, collection string, data interface{}) error {
	blob, err := encode(data)
	if err != nil {
		return err
	}

	const q = `
INSERT INTO snapshots (collection, version, data, updated_at)
VALUES ($1, $2, $3, now())
ON CONFLICT (collection)
DO UPDATE SET version = EXCLUDED.version, data = EXCLUDED.data, updated_at = EXCLUDED.updated_at`
	if _, err = s.db.ExecContext(ctx, q, collection, Version, blob); err != nil {
		return pkgerrors.Wrap(err, "saving snapshot")
	}
	return nil
}
