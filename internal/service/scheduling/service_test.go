package scheduling

import (
	"context"
	"errors"
	"testing"
	"time"

	"agendly/backend/internal/domain"
	"agendly/backend/internal/store"
)

type fakeCategoryRepo struct {
	listFn func(ctx context.Context) ([]domain.Category, error)
}

func (f *fakeCategoryRepo) Create(ctx context.Context, in domain.CategoryInput) (domain.Category, error) {
	panic("Create not configured")
}

func (f *fakeCategoryRepo) Get(ctx context.Context, id string) (*domain.Category, error) {
	panic("Get not configured")
}

func (f *fakeCategoryRepo) List(ctx context.Context) ([]domain.Category, error) {
	if f.listFn == nil {
		panic("List not configured")
	}
	return f.listFn(ctx)
}

func (f *fakeCategoryRepo) Update(ctx context.Context, id string, patch domain.CategoryPatch) error {
	panic("Update not configured")
}

func (f *fakeCategoryRepo) Delete(ctx context.Context, id string) error {
	panic("Delete not configured")
}

func (f *fakeCategoryRepo) Watch(ctx context.Context, onData func([]domain.Category), onError func(error)) store.Unsubscribe {
	panic("Watch not configured")
}

type fakeAppointmentRepo struct {
	listFn func(ctx context.Context, filter store.AppointmentFilter) ([]domain.Appointment, error)
}

func (f *fakeAppointmentRepo) Create(ctx context.Context, in domain.AppointmentInput) (domain.Appointment, error) {
	panic("Create not configured")
}

func (f *fakeAppointmentRepo) Get(ctx context.Context, id string) (*domain.Appointment, error) {
	panic("Get not configured")
}

func (f *fakeAppointmentRepo) List(ctx context.Context, filter store.AppointmentFilter) ([]domain.Appointment, error) {
	if f.listFn == nil {
		panic("List not configured")
	}
	return f.listFn(ctx, filter)
}

func (f *fakeAppointmentRepo) Update(ctx context.Context, id string, patch domain.AppointmentPatch) error {
	panic("Update not configured")
}

func (f *fakeAppointmentRepo) Delete(ctx context.Context, id string) error {
	panic("Delete not configured")
}

func (f *fakeAppointmentRepo) Watch(ctx context.Context, filter store.AppointmentFilter, onData func([]domain.Appointment), onError func(error)) store.Unsubscribe {
	panic("Watch not configured")
}

func strPtr(s string) *string { return &s }

func TestAgenda_ResolvesCategories(t *testing.T) {
	date := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	svc := NewService(
		&fakeCategoryRepo{
			listFn: func(ctx context.Context) ([]domain.Category, error) {
				return []domain.Category{{ID: "c1", Name: "Work"}}, nil
			},
		},
		&fakeAppointmentRepo{
			listFn: func(ctx context.Context, filter store.AppointmentFilter) ([]domain.Appointment, error) {
				return []domain.Appointment{
					{ID: "a1", Title: "standup", Date: date, CategoryID: strPtr("c1")},
					{ID: "a2", Title: "lunch", Date: date},
				}, nil
			},
		},
	)

	entries, err := svc.Agenda(context.Background(), store.AppointmentFilter{})
	if err != nil {
		t.Fatalf("Agenda: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("len(entries) = %d, want 2", len(entries))
	}
	if entries[0].Category == nil || entries[0].Category.Name != "Work" {
		t.Fatalf("entries[0].Category = %v, want Work", entries[0].Category)
	}
	if entries[1].Category != nil {
		t.Fatalf("entries[1].Category = %v, want nil", entries[1].Category)
	}
}

func TestAgenda_DanglingCategoryReferenceIsNil(t *testing.T) {
	svc := NewService(
		&fakeCategoryRepo{
			listFn: func(ctx context.Context) ([]domain.Category, error) {
				return nil, nil
			},
		},
		&fakeAppointmentRepo{
			listFn: func(ctx context.Context, filter store.AppointmentFilter) ([]domain.Appointment, error) {
				return []domain.Appointment{
					{ID: "a1", Title: "orphan", CategoryID: strPtr("deleted")},
				}, nil
			},
		},
	)

	entries, err := svc.Agenda(context.Background(), store.AppointmentFilter{})
	if err != nil {
		t.Fatalf("Agenda: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("len(entries) = %d, want 1", len(entries))
	}
	if entries[0].Category != nil {
		t.Fatalf("Category = %v, want nil for dangling reference", entries[0].Category)
	}
}

func TestAgenda_PassesFilterThrough(t *testing.T) {
	var gotFilter store.AppointmentFilter
	svc := NewService(
		&fakeCategoryRepo{
			listFn: func(ctx context.Context) ([]domain.Category, error) { return nil, nil },
		},
		&fakeAppointmentRepo{
			listFn: func(ctx context.Context, filter store.AppointmentFilter) ([]domain.Appointment, error) {
				gotFilter = filter
				return nil, nil
			},
		},
	)

	after := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)
	want := store.AppointmentFilter{CategoryID: "c1", After: &after, Limit: 5, Order: store.OrderDesc}
	if _, err := svc.Agenda(context.Background(), want); err != nil {
		t.Fatalf("Agenda: %v", err)
	}
	if gotFilter.CategoryID != "c1" || gotFilter.Limit != 5 || gotFilter.Order != store.OrderDesc {
		t.Fatalf("filter = %+v, want %+v", gotFilter, want)
	}
}

func TestAgenda_PropagatesStoreErrors(t *testing.T) {
	wantErr := errors.New("store down")
	svc := NewService(
		&fakeCategoryRepo{
			listFn: func(ctx context.Context) ([]domain.Category, error) { return nil, nil },
		},
		&fakeAppointmentRepo{
			listFn: func(ctx context.Context, filter store.AppointmentFilter) ([]domain.Appointment, error) {
				return nil, wantErr
			},
		},
	)

	_, err := svc.Agenda(context.Background(), store.AppointmentFilter{})
	if !errors.Is(err, wantErr) {
		t.Fatalf("err = %v, want %v", err, wantErr)
	}
}
