package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"promodraft/internal"
)

type DB struct {
	conn *sql.DB
}

func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// One connection keeps the WAL pragma and foreign keys on the same handle.
	conn.SetMaxOpenConns(1)

	if _, err := conn.Exec(`PRAGMA journal_mode = WAL; PRAGMA foreign_keys = ON;`); err != nil {
		_ = conn.Close()
		return nil, err
	}

	db := &DB{conn: conn}
	if err := db.init(); err != nil {
		_ = conn.Close()
		return nil, err
	}

	return db, nil
}

func (d *DB) Close() error {
	return d.conn.Close()
}

func (d *DB) init() error {
	schema := `
CREATE TABLE IF NOT EXISTS catalog_loads (
  id TEXT PRIMARY KEY,
  source TEXT NOT NULL,
  itemCount INTEGER NOT NULL,
  seq INTEGER NOT NULL,
  createdAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS catalog_items (
  loadId TEXT NOT NULL,
  position INTEGER NOT NULL,
  name TEXT NOT NULL,
  price INTEGER NOT NULL,
  PRIMARY KEY(loadId, position),
  FOREIGN KEY(loadId) REFERENCES catalog_loads(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS drafts (
  id TEXT PRIMARY KEY,
  itemName TEXT NOT NULL,
  itemPrice INTEGER NOT NULL,
  promoPrice INTEGER NOT NULL,
  discountPct REAL NOT NULL,
  specs TEXT NOT NULL,
  message TEXT NOT NULL,
  model TEXT NOT NULL,
  createdAt TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_drafts_createdAt ON drafts(createdAt);

CREATE TABLE IF NOT EXISTS metadata (
  key TEXT PRIMARY KEY,
  value TEXT NOT NULL,
  updatedAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

	_, err := d.conn.Exec(schema)
	return err
}

// InsertLoad records a catalog load and its items. Older loads are kept so
// the history stays inspectable; LatestLoad always returns the newest.
func (d *DB) InsertLoad(source string, items []internal.CatalogItem) (internal.CatalogLoad, error) {
	tx, err := d.conn.Begin()
	if err != nil {
		return internal.CatalogLoad{}, err
	}
	defer func() { _ = tx.Rollback() }()

	var seq int64
	if err := tx.QueryRow(`SELECT COALESCE(MAX(seq), 0) + 1 FROM catalog_loads`).Scan(&seq); err != nil {
		return internal.CatalogLoad{}, err
	}

	load := internal.CatalogLoad{
		ID:        uuid.NewString(),
		Source:    source,
		ItemCount: len(items),
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
	}
	if _, err := tx.Exec(`INSERT INTO catalog_loads (id, source, itemCount, seq, createdAt) VALUES (?, ?, ?, ?, ?)`,
		load.ID, load.Source, load.ItemCount, seq, load.CreatedAt); err != nil {
		return internal.CatalogLoad{}, err
	}

	stmt, err := tx.Prepare(`INSERT INTO catalog_items (loadId, position, name, price) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return internal.CatalogLoad{}, err
	}
	defer stmt.Close()

	for i, item := range items {
		if _, err := stmt.Exec(load.ID, i, item.Name, item.Price); err != nil {
			return internal.CatalogLoad{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		return internal.CatalogLoad{}, err
	}
	return load, nil
}

func (d *DB) LatestLoad() (*internal.CatalogLoad, error) {
	var load internal.CatalogLoad
	err := d.conn.QueryRow(`
SELECT id, source, itemCount, createdAt
FROM catalog_loads ORDER BY seq DESC LIMIT 1
`).Scan(&load.ID, &load.Source, &load.ItemCount, &load.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &load, nil
}

func (d *DB) ListLoadItems(loadID string) ([]internal.CatalogItem, error) {
	rows, err := d.conn.Query(`SELECT name, price FROM catalog_items WHERE loadId = ? ORDER BY position ASC`, loadID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []internal.CatalogItem{}
	for rows.Next() {
		var item internal.CatalogItem
		if err := rows.Scan(&item.Name, &item.Price); err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

func (d *DB) InsertDraft(draft internal.Draft) error {
	if draft.ID == "" {
		return errors.New("draft id is required")
	}
	_, err := d.conn.Exec(`
INSERT INTO drafts (id, itemName, itemPrice, promoPrice, discountPct, specs, message, model, createdAt)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
`, draft.ID, draft.Item.Name, draft.Item.Price, draft.PromoPrice, draft.DiscountPct,
		draft.Specs, draft.Message, draft.Model, draft.CreatedAt.UTC().Format(timeLayout))
	return err
}

// Fixed width so createdAt sorts lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

const draftColumns = `id, itemName, itemPrice, promoPrice, discountPct, specs, message, model, createdAt`

type scanner interface {
	Scan(dest ...any) error
}

func scanDraft(s scanner) (internal.Draft, error) {
	var draft internal.Draft
	var createdAt string
	if err := s.Scan(&draft.ID, &draft.Item.Name, &draft.Item.Price, &draft.PromoPrice, &draft.DiscountPct,
		&draft.Specs, &draft.Message, &draft.Model, &createdAt); err != nil {
		return internal.Draft{}, err
	}
	parsed, err := time.Parse(timeLayout, createdAt)
	if err != nil {
		return internal.Draft{}, fmt.Errorf("draft %s: bad createdAt %q: %w", draft.ID, createdAt, err)
	}
	draft.CreatedAt = parsed
	return draft, nil
}

func (d *DB) GetDraft(id string) (*internal.Draft, error) {
	draft, err := scanDraft(d.conn.QueryRow(`SELECT `+draftColumns+` FROM drafts WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &draft, nil
}

// ListDrafts returns the newest drafts first. limit <= 0 means all.
func (d *DB) ListDrafts(limit int) ([]internal.Draft, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := d.conn.Query(`SELECT `+draftColumns+` FROM drafts ORDER BY createdAt DESC, id ASC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []internal.Draft
	for rows.Next() {
		draft, err := scanDraft(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, draft)
	}
	return out, rows.Err()
}

func (d *DB) MustDraft(id string) (internal.Draft, error) {
	draft, err := d.GetDraft(id)
	if err != nil {
		return internal.Draft{}, err
	}
	if draft == nil {
		return internal.Draft{}, fmt.Errorf("draft not found: id=%s", id)
	}
	return *draft, nil
}

func (d *DB) SetMetadata(key, value string) error {
	_, err := d.conn.Exec(`
INSERT INTO metadata (key, value) VALUES (?, ?)
ON CONFLICT(key) DO UPDATE SET value = excluded.value, updatedAt = CURRENT_TIMESTAMP
`, key, value)
	return err
}

func (d *DB) GetMetadata(key string) (*string, error) {
	var value string
	err := d.conn.QueryRow(`SELECT value FROM metadata WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &value, nil
}
