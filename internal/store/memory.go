package store

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"sync"

	"github.com/google/uuid"
)

// MemoryStore keeps collections in process memory. It is used for local
// development and tests.
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[string][]Document
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{collections: make(map[string][]Document)}
}

// Collection returns a handle on the named collection.
func (s *MemoryStore) Collection(name string) Collection {
	return &memoryCollection{store: s, name: name}
}

// Ping always succeeds.
func (s *MemoryStore) Ping(context.Context) error { return nil }

// Close is a no-op.
func (s *MemoryStore) Close(context.Context) error { return nil }

type memoryCollection struct {
	store *MemoryStore
	name  string
}

func (c *memoryCollection) Find(ctx context.Context, filter Filter) ([]Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	want, err := normalize(map[string]any(filter))
	if err != nil {
		return nil, err
	}
	c.store.mu.RLock()
	defer c.store.mu.RUnlock()

	out := make([]Document, 0)
	for _, doc := range c.store.collections[c.name] {
		if matches(doc, want) {
			out = append(out, clone(doc))
		}
	}
	return out, nil
}

func (c *memoryCollection) FindOne(ctx context.Context, filter Filter) (Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	want, err := normalize(map[string]any(filter))
	if err != nil {
		return nil, err
	}
	c.store.mu.RLock()
	defer c.store.mu.RUnlock()

	for _, doc := range c.store.collections[c.name] {
		if matches(doc, want) {
			return clone(doc), nil
		}
	}
	return nil, ErrNotFound
}

func (c *memoryCollection) InsertOne(ctx context.Context, doc Document) (*InsertResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	stored, err := normalize(doc)
	if err != nil {
		return nil, err
	}
	if _, ok := stored[IDField]; !ok {
		stored[IDField] = uuid.NewString()
	}
	c.store.mu.Lock()
	c.store.collections[c.name] = append(c.store.collections[c.name], stored)
	c.store.mu.Unlock()
	return &InsertResult{Acknowledged: true, InsertedID: stored[IDField]}, nil
}

func (c *memoryCollection) UpdateOne(ctx context.Context, filter Filter, set Document, opts UpdateOptions) (*UpdateResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	want, err := normalize(map[string]any(filter))
	if err != nil {
		return nil, err
	}
	fields, err := normalize(withoutID(set))
	if err != nil {
		return nil, err
	}

	c.store.mu.Lock()
	defer c.store.mu.Unlock()

	docs := c.store.collections[c.name]
	for i, doc := range docs {
		if !matches(doc, want) {
			continue
		}
		updated := merge(doc, fields)
		res := &UpdateResult{Acknowledged: true, MatchedCount: 1}
		if !reflect.DeepEqual(map[string]any(doc), map[string]any(updated)) {
			res.ModifiedCount = 1
		}
		docs[i] = updated
		return res, nil
	}

	if !opts.Upsert {
		return &UpdateResult{Acknowledged: true}, nil
	}
	created := merge(want, fields)
	if _, ok := created[IDField]; !ok {
		created[IDField] = uuid.NewString()
	}
	c.store.collections[c.name] = append(docs, created)
	return &UpdateResult{Acknowledged: true, UpsertedCount: 1, UpsertedID: created[IDField]}, nil
}

func (c *memoryCollection) DeleteOne(ctx context.Context, filter Filter) (*DeleteResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	want, err := normalize(map[string]any(filter))
	if err != nil {
		return nil, err
	}
	c.store.mu.Lock()
	defer c.store.mu.Unlock()

	docs := c.store.collections[c.name]
	for i, doc := range docs {
		if matches(doc, want) {
			c.store.collections[c.name] = append(docs[:i:i], docs[i+1:]...)
			return &DeleteResult{Acknowledged: true, DeletedCount: 1}, nil
		}
	}
	return &DeleteResult{Acknowledged: true}, nil
}

// normalize round-trips values through JSON so typed inputs (ints, slices of
// strings, structs) compare equal to what was stored.
func normalize(in map[string]any) (Document, error) {
	if len(in) == 0 {
		return Document{}, nil
	}
	raw, err := json.Marshal(in)
	if err != nil {
		return nil, fmt.Errorf("store: normalize: %w", err)
	}
	var out Document
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("store: normalize: %w", err)
	}
	return out, nil
}

func matches(doc, filter Document) bool {
	for k, want := range filter {
		got, ok := doc[k]
		if !ok || !reflect.DeepEqual(got, want) {
			return false
		}
	}
	return true
}

func clone(doc Document) Document {
	out, err := normalize(doc)
	if err != nil {
		// Stored documents were normalized on the way in.
		panic(err)
	}
	return out
}
