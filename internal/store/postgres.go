package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// querier is the subset of pgxpool.Pool used by PostgresStore.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore keeps every collection in the documents table as JSONB.
// Filters are evaluated with jsonb containment (body @> filter).
type PostgresStore struct {
	db   querier
	pool *pgxpool.Pool
}

// NewPostgresStore wraps a connection pool. The documents table is created
// by cmd/migrate.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	if pool == nil {
		panic("store: pgx pool required")
	}
	return &PostgresStore{db: pool, pool: pool}
}

func newPostgresStoreWithQuerier(db querier) *PostgresStore {
	if db == nil {
		panic("store: querier required")
	}
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Collection(name string) Collection {
	return &postgresCollection{db: s.db, name: name}
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	if s.pool == nil {
		return nil
	}
	return s.pool.Ping(ctx)
}

func (s *PostgresStore) Close(context.Context) error {
	if s.pool != nil {
		s.pool.Close()
	}
	return nil
}

type postgresCollection struct {
	db   querier
	name string
}

const (
	findDocumentsSQL = `
		SELECT body FROM documents
		WHERE collection = $1 AND body @> $2::jsonb
		ORDER BY seq`

	findOneDocumentSQL = `
		SELECT body FROM documents
		WHERE collection = $1 AND body @> $2::jsonb
		ORDER BY seq
		LIMIT 1`

	insertDocumentSQL = `
		INSERT INTO documents (id, collection, body)
		VALUES ($1, $2, $3::jsonb)`

	updateDocumentSQL = `
		WITH target AS (
			SELECT id, body FROM documents
			WHERE collection = $1 AND body @> $2::jsonb
			ORDER BY seq
			LIMIT 1
			FOR UPDATE
		)
		UPDATE documents d
		SET body = d.body || $3::jsonb, updated_at = now()
		FROM target
		WHERE d.id = target.id
		RETURNING target.body IS DISTINCT FROM d.body`

	deleteDocumentSQL = `
		DELETE FROM documents
		WHERE id = (
			SELECT id FROM documents
			WHERE collection = $1 AND body @> $2::jsonb
			ORDER BY seq
			LIMIT 1
		)`
)

func (c *postgresCollection) Find(ctx context.Context, filter Filter) ([]Document, error) {
	match, err := encodeJSON(filter)
	if err != nil {
		return nil, err
	}
	rows, err := c.db.Query(ctx, findDocumentsSQL, c.name, match)
	if err != nil {
		return nil, fmt.Errorf("store: find %s: %w", c.name, err)
	}
	defer rows.Close()

	out := make([]Document, 0)
	for rows.Next() {
		var body []byte
		if err := rows.Scan(&body); err != nil {
			return nil, fmt.Errorf("store: scan %s: %w", c.name, err)
		}
		doc, err := decodeJSON(body)
		if err != nil {
			return nil, err
		}
		out = append(out, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: iterate %s: %w", c.name, err)
	}
	return out, nil
}

func (c *postgresCollection) FindOne(ctx context.Context, filter Filter) (Document, error) {
	match, err := encodeJSON(filter)
	if err != nil {
		return nil, err
	}
	var body []byte
	if err := c.db.QueryRow(ctx, findOneDocumentSQL, c.name, match).Scan(&body); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("store: find one %s: %w", c.name, err)
	}
	return decodeJSON(body)
}

func (c *postgresCollection) InsertOne(ctx context.Context, doc Document) (*InsertResult, error) {
	stored := merge(doc)
	id, ok := stored[IDField].(string)
	if !ok || id == "" {
		id = uuid.NewString()
		stored[IDField] = id
	}
	body, err := encodeJSON(stored)
	if err != nil {
		return nil, err
	}
	if _, err := c.db.Exec(ctx, insertDocumentSQL, id, c.name, body); err != nil {
		return nil, fmt.Errorf("store: insert %s: %w", c.name, err)
	}
	return &InsertResult{Acknowledged: true, InsertedID: id}, nil
}

func (c *postgresCollection) UpdateOne(ctx context.Context, filter Filter, set Document, opts UpdateOptions) (*UpdateResult, error) {
	match, err := encodeJSON(filter)
	if err != nil {
		return nil, err
	}
	fields := withoutID(set)
	patch, err := encodeJSON(fields)
	if err != nil {
		return nil, err
	}

	var modified bool
	err = c.db.QueryRow(ctx, updateDocumentSQL, c.name, match, patch).Scan(&modified)
	switch {
	case err == nil:
		res := &UpdateResult{Acknowledged: true, MatchedCount: 1}
		if modified {
			res.ModifiedCount = 1
		}
		return res, nil
	case !errors.Is(err, pgx.ErrNoRows):
		return nil, fmt.Errorf("store: update %s: %w", c.name, err)
	}

	if !opts.Upsert {
		return &UpdateResult{Acknowledged: true}, nil
	}
	ins, err := c.InsertOne(ctx, merge(filter, fields))
	if err != nil {
		return nil, err
	}
	return &UpdateResult{Acknowledged: true, UpsertedCount: 1, UpsertedID: ins.InsertedID}, nil
}

func (c *postgresCollection) DeleteOne(ctx context.Context, filter Filter) (*DeleteResult, error) {
	match, err := encodeJSON(filter)
	if err != nil {
		return nil, err
	}
	ct, err := c.db.Exec(ctx, deleteDocumentSQL, c.name, match)
	if err != nil {
		return nil, fmt.Errorf("store: delete %s: %w", c.name, err)
	}
	return &DeleteResult{Acknowledged: true, DeletedCount: ct.RowsAffected()}, nil
}

func encodeJSON[M ~map[string]any](v M) (string, error) {
	if len(v) == 0 {
		return "{}", nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("store: encode json: %w", err)
	}
	return string(raw), nil
}

func decodeJSON(body []byte) (Document, error) {
	var doc Document
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("store: decode json: %w", err)
	}
	return doc, nil
}
