// Package doctors manages the doctor roster. Every route is admin-only.
package doctors

import (
	"context"
	"errors"
	"fmt"

	"github.com/wolfman30/doctors-portal/internal/store"
)

// ErrMissingEmail is returned when a roster operation has no email.
var ErrMissingEmail = errors.New("doctors: email is required")

// Repository stores doctor profiles. Profiles are schemaless apart from the
// email used as the delete key.
type Repository interface {
	List(ctx context.Context) ([]store.Document, error)
	Add(ctx context.Context, profile store.Document) (*store.InsertResult, error)
	DeleteByEmail(ctx context.Context, email string) (*store.DeleteResult, error)
}

// StoreRepository implements Repository over the doctors collection.
type StoreRepository struct {
	coll store.Collection
}

func NewStoreRepository(coll store.Collection) *StoreRepository {
	if coll == nil {
		panic("doctors: collection required")
	}
	return &StoreRepository{coll: coll}
}

func (r *StoreRepository) List(ctx context.Context) ([]store.Document, error) {
	docs, err := r.coll.Find(ctx, store.Filter{})
	if err != nil {
		return nil, fmt.Errorf("doctors: list: %w", err)
	}
	return docs, nil
}

func (r *StoreRepository) Add(ctx context.Context, profile store.Document) (*store.InsertResult, error) {
	res, err := r.coll.InsertOne(ctx, profile)
	if err != nil {
		return nil, fmt.Errorf("doctors: add: %w", err)
	}
	return res, nil
}

func (r *StoreRepository) DeleteByEmail(ctx context.Context, email string) (*store.DeleteResult, error) {
	if email == "" {
		return nil, ErrMissingEmail
	}
	res, err := r.coll.DeleteOne(ctx, store.Filter{"email": email})
	if err != nil {
		return nil, fmt.Errorf("doctors: delete: %w", err)
	}
	return res, nil
}
