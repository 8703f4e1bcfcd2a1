package appointments

import (
	"context"
	"fmt"

	"github.com/wolfman30/doctors-portal/internal/store"
)

// Repository reads appointment types and the bookings that consume them.
type Repository interface {
	ListTypes(ctx context.Context) ([]AppointmentType, error)
	ListSummaries(ctx context.Context) ([]Summary, error)
	ListReservations(ctx context.Context, date string) ([]Reservation, error)
	InsertType(ctx context.Context, t AppointmentType) (*store.InsertResult, error)
}

// StoreRepository implements Repository over two store collections.
type StoreRepository struct {
	appointments store.Collection
	bookings     store.Collection
}

// NewStoreRepository builds a repository from the appointments and bookings collections.
func NewStoreRepository(appointments, bookings store.Collection) *StoreRepository {
	if appointments == nil || bookings == nil {
		panic("appointments: collections required")
	}
	return &StoreRepository{appointments: appointments, bookings: bookings}
}

func (r *StoreRepository) ListTypes(ctx context.Context) ([]AppointmentType, error) {
	docs, err := r.appointments.Find(ctx, store.Filter{})
	if err != nil {
		return nil, fmt.Errorf("appointments: list types: %w", err)
	}
	return store.DecodeAll[AppointmentType](docs)
}

func (r *StoreRepository) ListSummaries(ctx context.Context) ([]Summary, error) {
	docs, err := r.appointments.Find(ctx, store.Filter{})
	if err != nil {
		return nil, fmt.Errorf("appointments: list names: %w", err)
	}
	return store.DecodeAll[Summary](docs)
}

func (r *StoreRepository) ListReservations(ctx context.Context, date string) ([]Reservation, error) {
	docs, err := r.bookings.Find(ctx, store.Filter{"date": date})
	if err != nil {
		return nil, fmt.Errorf("appointments: list bookings for %q: %w", date, err)
	}
	return store.DecodeAll[Reservation](docs)
}

func (r *StoreRepository) InsertType(ctx context.Context, t AppointmentType) (*store.InsertResult, error) {
	if t.Name == "" {
		return nil, ErrMissingName
	}
	if t.Slots == nil {
		t.Slots = []string{}
	}
	doc, err := store.ToDocument(t)
	if err != nil {
		return nil, err
	}
	res, err := r.appointments.InsertOne(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("appointments: insert type: %w", err)
	}
	return res, nil
}
