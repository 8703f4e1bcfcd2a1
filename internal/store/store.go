// Package store provides the persistent collection store shared by the
// portal services: named document collections queried by field equality.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// IDField is the document key every backend assigns on insert.
const IDField = "_id"

// ErrNotFound is returned by FindOne when no document matches.
var ErrNotFound = errors.New("store: document not found")

// Document is a schemaless record. Values are JSON-compatible.
type Document map[string]any

// Filter selects documents whose top-level fields equal the given values.
// An empty filter matches every document.
type Filter map[string]any

// UpdateOptions controls UpdateOne.
type UpdateOptions struct {
	Upsert bool
}

// InsertResult reports an insertion.
type InsertResult struct {
	Acknowledged bool `json:"acknowledged"`
	InsertedID   any  `json:"insertedId"`
}

// UpdateResult reports an update or upsert.
type UpdateResult struct {
	Acknowledged  bool  `json:"acknowledged"`
	MatchedCount  int64 `json:"matchedCount"`
	ModifiedCount int64 `json:"modifiedCount"`
	UpsertedCount int64 `json:"upsertedCount"`
	UpsertedID    any   `json:"upsertedId"`
}

// DeleteResult reports a deletion.
type DeleteResult struct {
	Acknowledged bool  `json:"acknowledged"`
	DeletedCount int64 `json:"deletedCount"`
}

// Collection is one named set of documents.
type Collection interface {
	// Find returns matching documents in insertion order.
	Find(ctx context.Context, filter Filter) ([]Document, error)
	// FindOne returns the first matching document or ErrNotFound.
	FindOne(ctx context.Context, filter Filter) (Document, error)
	// InsertOne stores doc, assigning an _id when absent.
	InsertOne(ctx context.Context, doc Document) (*InsertResult, error)
	// UpdateOne sets the given fields on the first match. With Upsert and no
	// match, a document built from filter and set is inserted.
	UpdateOne(ctx context.Context, filter Filter, set Document, opts UpdateOptions) (*UpdateResult, error)
	// DeleteOne removes the first match.
	DeleteOne(ctx context.Context, filter Filter) (*DeleteResult, error)
}

// Store hands out collections backed by one connection.
type Store interface {
	Collection(name string) Collection
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

// ToDocument converts a struct (or map) into a Document through its JSON form.
func ToDocument(v any) (Document, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("store: encode document: %w", err)
	}
	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("store: encode document: %w", err)
	}
	return doc, nil
}

// Decode copies a Document into out through its JSON form.
func Decode(doc Document, out any) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("store: decode document: %w", err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("store: decode document: %w", err)
	}
	return nil
}

// DecodeAll decodes every document into a slice of T.
func DecodeAll[T any](docs []Document) ([]T, error) {
	out := make([]T, 0, len(docs))
	for _, doc := range docs {
		var v T
		if err := Decode(doc, &v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// merge returns a new document with the fields of every part, later parts winning.
func merge(parts ...map[string]any) Document {
	out := Document{}
	for _, part := range parts {
		for k, v := range part {
			out[k] = v
		}
	}
	return out
}

// withoutID drops _id from a $set payload; ids are immutable.
func withoutID(set Document) Document {
	if _, ok := set[IDField]; !ok {
		return set
	}
	out := make(Document, len(set))
	for k, v := range set {
		if k != IDField {
			out[k] = v
		}
	}
	return out
}
