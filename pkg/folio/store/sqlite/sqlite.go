package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/cognicore/folio/pkg/folio/internalerr"
	"github.com/cognicore/folio/pkg/folio/record"
	"github.com/cognicore/folio/pkg/folio/store"
)

// sqliteStore implements the Store interface using SQLite
type sqliteStore struct {
	db  *sql.DB
	ids *store.IDSource
}

// OpenSQLite opens a SQLite database with WAL mode enabled.
// Every pooled connection waits up to busyTimeout for the write lock.
func OpenSQLite(ctx context.Context, path string) (store.Store, error) {
	db, err := sql.Open("sqlite", withBusyTimeout(path))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", internalerr.ErrStoreUnavailable, err)
	}

	// Enable WAL mode for better concurrency
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: %w", internalerr.ErrStoreUnavailable, err)
	}

	// Enable foreign keys
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, err
	}

	// Initialize schema
	if err := initSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return &sqliteStore{
		db:  db,
		ids: store.NewIDSource(),
	}, nil
}

const busyTimeout = "5000"

func withBusyTimeout(path string) string {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "_pragma=busy_timeout(" + busyTimeout + ")"
}

// Close closes the database connection
func (s *sqliteStore) Close() error {
	return s.db.Close()
}

// initSchema creates tables if they don't exist
func initSchema(ctx context.Context, db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS objects (
	seq INTEGER PRIMARY KEY AUTOINCREMENT,
	id TEXT UNIQUE NOT NULL,
	model TEXT,
	attributes TEXT NOT NULL,
	created_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS index_fields (
	object_id TEXT NOT NULL,
	field TEXT NOT NULL,
	position INTEGER NOT NULL,
	value TEXT NOT NULL,
	PRIMARY KEY(object_id, field, position),
	FOREIGN KEY(object_id) REFERENCES objects(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS index_fields_value ON index_fields(field, value);
`

	_, err := db.ExecContext(ctx, schema)
	return err
}

// CreateObject inserts o, or replaces the object with the same ID
func (s *sqliteStore) CreateObject(ctx context.Context, o store.Object) (string, error) {
	if o.CreatedAt.IsZero() {
		o.CreatedAt = time.Now().UTC()
	}
	if o.ID == "" {
		o.ID = s.ids.New(o.CreatedAt)
	}

	attrs, err := json.Marshal(o.Attributes)
	if err != nil {
		return "", fmt.Errorf("encode attributes: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	const stmt = `
INSERT INTO objects (id, model, attributes, created_at)
VALUES (?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
	model=excluded.model,
	attributes=excluded.attributes;
`
	if _, err := tx.ExecContext(ctx, stmt, o.ID, o.Model, string(attrs), o.CreatedAt.UTC().Format(time.RFC3339Nano)); err != nil {
		return "", err
	}
	if err := replaceIndexFields(ctx, tx, o.ID, o.Index); err != nil {
		return "", err
	}
	if err := tx.Commit(); err != nil {
		return "", err
	}
	return o.ID, nil
}

func replaceIndexFields(ctx context.Context, tx *sql.Tx, id string, index map[string][]string) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM index_fields WHERE object_id=?`, id); err != nil {
		return err
	}
	if len(index) == 0 {
		return nil
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO index_fields (object_id, field, position, value) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for field, vals := range index {
		for pos, v := range vals {
			if _, err := stmt.ExecContext(ctx, id, field, pos, v); err != nil {
				return err
			}
		}
	}
	return nil
}

// GetObject retrieves an object by ID
func (s *sqliteStore) GetObject(ctx context.Context, id string) (store.Object, bool, error) {
	var (
		model     sql.NullString
		attrsJSON string
		created   string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT model, attributes, created_at FROM objects WHERE id = ?`, id,
	).Scan(&model, &attrsJSON, &created)
	if err == sql.ErrNoRows {
		return store.Object{}, false, nil
	}
	if err != nil {
		return store.Object{}, false, err
	}

	var attrs record.Attributes
	if err := json.Unmarshal([]byte(attrsJSON), &attrs); err != nil {
		return store.Object{}, false, fmt.Errorf("decode attributes of %s: %w", id, err)
	}
	createdAt, _ := time.Parse(time.RFC3339Nano, created)

	index, err := s.loadIndex(ctx, id)
	if err != nil {
		return store.Object{}, false, err
	}

	return store.Object{
		ID:         id,
		Model:      model.String,
		Attributes: attrs,
		Index:      index,
		CreatedAt:  createdAt,
	}, true, nil
}

// FindByAccession returns the earliest object indexed under accessionNumber
func (s *sqliteStore) FindByAccession(ctx context.Context, accessionNumber string) (string, bool, error) {
	var id string
	err := s.db.QueryRowContext(ctx, `
SELECT o.id
FROM index_fields f
JOIN objects o ON o.id = f.object_id
WHERE f.field = ? AND f.value = ?
ORDER BY o.seq
LIMIT 1;
`, store.AccessionField, accessionNumber).Scan(&id)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return id, true, nil
}

// ExportRecord returns the indexed fields of an object
func (s *sqliteStore) ExportRecord(ctx context.Context, id string) (record.Export, bool, error) {
	var exists int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM objects WHERE id = ?`, id).Scan(&exists)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	index, err := s.loadIndex(ctx, id)
	if err != nil {
		return nil, false, err
	}
	return store.ExportFromIndex(index), true, nil
}

func (s *sqliteStore) loadIndex(ctx context.Context, id string) (map[string][]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT field, value FROM index_fields WHERE object_id = ? ORDER BY field, position`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	index := make(map[string][]string)
	for rows.Next() {
		var field, value string
		if err := rows.Scan(&field, &value); err != nil {
			return nil, err
		}
		index[field] = append(index[field], value)
	}
	return index, rows.Err()
}
