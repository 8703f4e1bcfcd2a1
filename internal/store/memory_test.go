package store

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryInsertAndFind(t *testing.T) {
	ctx := context.Background()
	coll := NewMemoryStore().Collection("bookings")

	res, err := coll.InsertOne(ctx, Document{"treatmentName": "Cleaning", "slot": "9am", "date": "Nov 23, 2022"})
	require.NoError(t, err)
	assert.True(t, res.Acknowledged)
	require.NotEmpty(t, res.InsertedID)

	_, err = coll.InsertOne(ctx, Document{"treatmentName": "Whitening", "slot": "9am", "date": "Nov 23, 2022"})
	require.NoError(t, err)

	all, err := coll.Find(ctx, nil)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Cleaning", all[0]["treatmentName"])
	assert.Equal(t, res.InsertedID, all[0][IDField])

	some, err := coll.Find(ctx, Filter{"treatmentName": "Whitening"})
	require.NoError(t, err)
	require.Len(t, some, 1)
	assert.Equal(t, "Whitening", some[0]["treatmentName"])

	none, err := coll.Find(ctx, Filter{"treatmentName": "Braces"})
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestMemoryFindOneNotFound(t *testing.T) {
	coll := NewMemoryStore().Collection("users")
	_, err := coll.FindOne(context.Background(), Filter{"email": "nobody@example.com"})
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestMemoryMatchesTypedValues(t *testing.T) {
	ctx := context.Background()
	coll := NewMemoryStore().Collection("appointments")
	_, err := coll.InsertOne(ctx, Document{"name": "Cleaning", "slots": []string{"9am", "10am"}, "price": 20})
	require.NoError(t, err)

	doc, err := coll.FindOne(ctx, Filter{"price": 20.0})
	require.NoError(t, err)
	assert.Equal(t, []any{"9am", "10am"}, doc["slots"])

	_, err = coll.FindOne(ctx, Filter{"slots": []string{"9am", "10am"}})
	require.NoError(t, err)
}

func TestMemoryReturnsCopies(t *testing.T) {
	ctx := context.Background()
	coll := NewMemoryStore().Collection("appointments")
	_, err := coll.InsertOne(ctx, Document{"name": "Cleaning", "slots": []string{"9am"}})
	require.NoError(t, err)

	doc, err := coll.FindOne(ctx, Filter{"name": "Cleaning"})
	require.NoError(t, err)
	doc["name"] = "mutated"
	doc["slots"].([]any)[0] = "mutated"

	again, err := coll.FindOne(ctx, Filter{})
	require.NoError(t, err)
	assert.Equal(t, "Cleaning", again["name"])
	assert.Equal(t, []any{"9am"}, again["slots"])
}

func TestMemoryUpdateOne(t *testing.T) {
	ctx := context.Background()
	coll := NewMemoryStore().Collection("users")
	_, err := coll.InsertOne(ctx, Document{"email": "a@example.com", "name": "A"})
	require.NoError(t, err)

	res, err := coll.UpdateOne(ctx, Filter{"email": "a@example.com"}, Document{"role": "admin"}, UpdateOptions{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.MatchedCount)
	assert.Equal(t, int64(1), res.ModifiedCount)

	res, err = coll.UpdateOne(ctx, Filter{"email": "a@example.com"}, Document{"role": "admin"}, UpdateOptions{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.MatchedCount)
	assert.Equal(t, int64(0), res.ModifiedCount, "setting the same value is not a modification")

	res, err = coll.UpdateOne(ctx, Filter{"email": "missing@example.com"}, Document{"role": "admin"}, UpdateOptions{})
	require.NoError(t, err)
	assert.Equal(t, int64(0), res.MatchedCount)
	assert.Equal(t, int64(0), res.UpsertedCount)

	all, err := coll.Find(ctx, nil)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "admin", all[0]["role"])
	assert.Equal(t, "A", all[0]["name"])
}

func TestMemoryUpsert(t *testing.T) {
	ctx := context.Background()
	coll := NewMemoryStore().Collection("users")

	res, err := coll.UpdateOne(ctx, Filter{"email": "b@example.com"}, Document{"email": "b@example.com", "_id": "ignored"}, UpdateOptions{Upsert: true})
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.UpsertedCount)
	require.NotNil(t, res.UpsertedID)
	assert.NotEqual(t, "ignored", res.UpsertedID)

	res, err = coll.UpdateOne(ctx, Filter{"email": "b@example.com"}, Document{"name": "B"}, UpdateOptions{Upsert: true})
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.MatchedCount)
	assert.Equal(t, int64(0), res.UpsertedCount)

	all, err := coll.Find(ctx, nil)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "B", all[0]["name"])
}

func TestMemoryDeleteOne(t *testing.T) {
	ctx := context.Background()
	coll := NewMemoryStore().Collection("doctors")
	for _, email := range []string{"x@example.com", "y@example.com", "x@example.com"} {
		_, err := coll.InsertOne(ctx, Document{"email": email})
		require.NoError(t, err)
	}

	res, err := coll.DeleteOne(ctx, Filter{"email": "x@example.com"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.DeletedCount)

	res, err = coll.DeleteOne(ctx, Filter{"email": "z@example.com"})
	require.NoError(t, err)
	assert.Equal(t, int64(0), res.DeletedCount)

	all, err := coll.Find(ctx, nil)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "y@example.com", all[0]["email"])
	assert.Equal(t, "x@example.com", all[1]["email"])
}

func TestMemoryCollectionsAreIsolated(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	_, err := s.Collection("a").InsertOne(ctx, Document{"k": "v"})
	require.NoError(t, err)

	docs, err := s.Collection("b").Find(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestMemoryHonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewMemoryStore().Collection("a").Find(ctx, nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMemoryConcurrentInserts(t *testing.T) {
	ctx := context.Background()
	coll := NewMemoryStore().Collection("bookings")
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, _ = coll.InsertOne(ctx, Document{"n": i})
		}(i)
	}
	wg.Wait()

	all, err := coll.Find(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, all, 50)
}
