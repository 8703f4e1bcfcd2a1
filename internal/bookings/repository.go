package bookings

import (
	"context"
	"errors"
	"fmt"

	"github.com/wolfman30/doctors-portal/internal/store"
)

// Repository persists bookings.
type Repository interface {
	// FindDuplicate returns the booking with the same treatment, patient and
	// date, or nil when there is none.
	FindDuplicate(ctx context.Context, treatmentName, patientName, date string) (*Booking, error)
	Insert(ctx context.Context, b Booking) (*store.InsertResult, error)
	ListByPatientEmail(ctx context.Context, email string) ([]Booking, error)
}

// StoreRepository implements Repository over the bookings collection.
type StoreRepository struct {
	coll store.Collection
}

func NewStoreRepository(coll store.Collection) *StoreRepository {
	if coll == nil {
		panic("bookings: collection required")
	}
	return &StoreRepository{coll: coll}
}

func (r *StoreRepository) FindDuplicate(ctx context.Context, treatmentName, patientName, date string) (*Booking, error) {
	doc, err := r.coll.FindOne(ctx, store.Filter{
		"treatmentName": treatmentName,
		"patientName":   patientName,
		"date":          date,
	})
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("bookings: find duplicate: %w", err)
	}
	var b Booking
	if err := store.Decode(doc, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *StoreRepository) Insert(ctx context.Context, b Booking) (*store.InsertResult, error) {
	b.ID = ""
	doc, err := store.ToDocument(b)
	if err != nil {
		return nil, err
	}
	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("bookings: insert: %w", err)
	}
	return res, nil
}

func (r *StoreRepository) ListByPatientEmail(ctx context.Context, email string) ([]Booking, error) {
	docs, err := r.coll.Find(ctx, store.Filter{"patientEmail": email})
	if err != nil {
		return nil, fmt.Errorf("bookings: list for patient: %w", err)
	}
	return store.DecodeAll[Booking](docs)
}
