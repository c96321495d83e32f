package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
)

func openDB(dsn string) *sql.DB {
	// Parse DSN and force IPv4 to avoid IPv6-only routes on some hosts
	cfg, err := pgx.ParseConfig(dsn)
	if err != nil {
		log.Fatalf("[DB] parse DSN: %v", err)
	}
	cfg.DialFunc = func(ctx context.Context, network, addr string) (net.Conn, error) {
		d := &net.Dialer{Timeout: 5 * time.Second, KeepAlive: 30 * time.Second}
		return d.DialContext(ctx, "tcp4", addr)
	}

	db := stdlib.OpenDB(*cfg)

	// Small pool; the whole forum is one row
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	// Fast fail if unreachable
	ctx, cancel := context.WithTimeout(context.Background(), 8*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		log.Fatalf("[DB] connect failed: %v", err)
	}

	log.Println("[DB] connected")
	return db
}

const (
	createDocumentsSQL = `CREATE TABLE IF NOT EXISTS forum_documents (
	id integer PRIMARY KEY,
	data jsonb NOT NULL,
	updated_at timestamptz NOT NULL DEFAULT now()
)`
	selectDocumentSQL = `SELECT data FROM forum_documents WHERE id = $1`
	upsertDocumentSQL = `INSERT INTO forum_documents (id, data, updated_at) VALUES ($1, $2, now())
ON CONFLICT (id) DO UPDATE SET data = EXCLUDED.data, updated_at = now()`
)

// The whole document lives in a single row.
const documentRowID = 1

// sqlStore keeps the document as one JSONB row, preserving the file
// backend's whole-document load/save semantics (including
// last-writer-wins on concurrent saves).
type sqlStore struct {
	db *sql.DB
}

func newSQLStore(db *sql.DB) (*sqlStore, error) {
	if _, err := db.Exec(createDocumentsSQL); err != nil {
		return nil, fmt.Errorf("ensure documents table: %w", err)
	}
	return &sqlStore{db: db}, nil
}

func (s *sqlStore) Load() (*Document, error) {
	var raw []byte
	err := s.db.QueryRow(selectDocumentSQL, documentRowID).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		// Nothing persisted yet; same as a fresh data.json
		return emptyDocument(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("load document: %w", err)
	}
	doc := emptyDocument()
	if err := json.Unmarshal(raw, doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptStore, err)
	}
	return doc, nil
}

func (s *sqlStore) Save(doc *Document) error {
	b, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	if _, err := s.db.Exec(upsertDocumentSQL, documentRowID, b); err != nil {
		return fmt.Errorf("save document: %w", err)
	}
	return nil
}
