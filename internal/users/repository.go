// Package users stores portal accounts keyed by email and their admin role.
package users

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/wolfman30/doctors-portal/internal/store"
)

const (
	// RoleAdmin is the only role the portal recognises.
	RoleAdmin = "admin"

	// emailField is the user key; older clients called it currentEmail.
	emailField = "email"
	roleField  = "role"
)

// ErrMissingEmail is returned when an operation has no email key.
var ErrMissingEmail = errors.New("users: email is required")

// Repository manages user documents. Profile fields are schemaless; only
// email and role have meaning here.
type Repository interface {
	List(ctx context.Context) ([]store.Document, error)
	Upsert(ctx context.Context, email string, profile store.Document) (*store.UpdateResult, error)
	IsAdmin(ctx context.Context, email string) (bool, error)
	GrantAdmin(ctx context.Context, email string) (*store.UpdateResult, error)
}

// StoreRepository implements Repository over the users collection.
type StoreRepository struct {
	coll store.Collection
}

func NewStoreRepository(coll store.Collection) *StoreRepository {
	if coll == nil {
		panic("users: collection required")
	}
	return &StoreRepository{coll: coll}
}

func (r *StoreRepository) List(ctx context.Context) ([]store.Document, error) {
	docs, err := r.coll.Find(ctx, store.Filter{})
	if err != nil {
		return nil, fmt.Errorf("users: list: %w", err)
	}
	return docs, nil
}

// Upsert creates or updates the user keyed by email with the given profile
// fields. The key always wins over an email in the profile. A role in the
// profile is ignored; roles change only via GrantAdmin.
func (r *StoreRepository) Upsert(ctx context.Context, email string, profile store.Document) (*store.UpdateResult, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, ErrMissingEmail
	}
	set := store.Document{}
	for k, v := range profile {
		if k == roleField || k == store.IDField {
			continue
		}
		set[k] = v
	}
	set[emailField] = email
	res, err := r.coll.UpdateOne(ctx, store.Filter{emailField: email}, set, store.UpdateOptions{Upsert: true})
	if err != nil {
		return nil, fmt.Errorf("users: upsert: %w", err)
	}
	return res, nil
}

// IsAdmin reports whether the user with email holds the admin role. An
// unknown email is not an admin.
func (r *StoreRepository) IsAdmin(ctx context.Context, email string) (bool, error) {
	if email == "" {
		return false, nil
	}
	doc, err := r.coll.FindOne(ctx, store.Filter{emailField: email})
	if errors.Is(err, store.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("users: lookup role: %w", err)
	}
	role, _ := doc[roleField].(string)
	return role == RoleAdmin, nil
}

// GrantAdmin sets the admin role on an existing user. An unknown email
// matches nothing and the result reports zero matches.
func (r *StoreRepository) GrantAdmin(ctx context.Context, email string) (*store.UpdateResult, error) {
	if email == "" {
		return nil, ErrMissingEmail
	}
	res, err := r.coll.UpdateOne(ctx, store.Filter{emailField: email}, store.Document{roleField: RoleAdmin}, store.UpdateOptions{})
	if err != nil {
		return nil, fmt.Errorf("users: grant admin: %w", err)
	}
	return res, nil
}
