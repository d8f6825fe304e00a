package store

import (
	"context"
	"time"

	"agendly/backend/internal/domain"
)

// Order is the sort direction for appointment queries, applied to the date
// field.
type Order string

const (
	OrderAsc  Order = "asc"
	OrderDesc Order = "desc"
)

// AppointmentFilter narrows list and watch queries. Every field is optional;
// the zero value matches everything in ascending date order. After and Before
// are inclusive bounds.
type AppointmentFilter struct {
	CategoryID string
	After      *time.Time
	Before     *time.Time
	Limit      int
	Order      Order
}

// Unsubscribe detaches a live query. Safe to call more than once.
type Unsubscribe func()

// CategoryRepository translates between the domain model and the document
// store for the categories collection. Get returns (nil, nil) when the
// document does not exist; missing is not an error.
type CategoryRepository interface {
	Create(ctx context.Context, in domain.CategoryInput) (domain.Category, error)
	Get(ctx context.Context, id string) (*domain.Category, error)
	// List returns all categories ordered by name ascending.
	List(ctx context.Context) ([]domain.Category, error)
	// Update applies a sparse patch. An empty patch performs no store call.
	Update(ctx context.Context, id string, patch domain.CategoryPatch) error
	Delete(ctx context.Context, id string) error
	// Watch delivers the full, name-ordered result set on registration and
	// after every change. Store failures arrive on onError when provided.
	Watch(ctx context.Context, onData func([]domain.Category), onError func(error)) Unsubscribe
}

// AppointmentRepository is the appointments counterpart of
// CategoryRepository, with date-range and category filtering.
type AppointmentRepository interface {
	Create(ctx context.Context, in domain.AppointmentInput) (domain.Appointment, error)
	Get(ctx context.Context, id string) (*domain.Appointment, error)
	List(ctx context.Context, filter AppointmentFilter) ([]domain.Appointment, error)
	Update(ctx context.Context, id string, patch domain.AppointmentPatch) error
	Delete(ctx context.Context, id string) error
	Watch(ctx context.Context, filter AppointmentFilter, onData func([]domain.Appointment), onError func(error)) Unsubscribe
}
