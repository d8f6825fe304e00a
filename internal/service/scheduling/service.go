// Package scheduling composes the two repositories into caller-facing
// operations, most notably the agenda view joining appointments with their
// category records.
package scheduling

import (
	"context"

	"agendly/backend/internal/domain"
	"agendly/backend/internal/store"
)

type Service struct {
	categories   store.CategoryRepository
	appointments store.AppointmentRepository
}

func NewService(categories store.CategoryRepository, appointments store.AppointmentRepository) *Service {
	return &Service{categories: categories, appointments: appointments}
}

// AgendaEntry pairs an appointment with its resolved category. Category is
// nil when the appointment has no categoryId or the reference dangles; a
// dangling reference is legal and means "no category".
type AgendaEntry struct {
	Appointment domain.Appointment
	Category    *domain.Category
}

// Agenda lists appointments matching the filter with their categories
// resolved best-effort.
func (s *Service) Agenda(ctx context.Context, filter store.AppointmentFilter) ([]AgendaEntry, error) {
	appts, err := s.appointments.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	cats, err := s.categories.List(ctx)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]domain.Category, len(cats))
	for _, c := range cats {
		byID[c.ID] = c
	}

	entries := make([]AgendaEntry, 0, len(appts))
	for _, a := range appts {
		entry := AgendaEntry{Appointment: a}
		if a.CategoryID != nil {
			if c, ok := byID[*a.CategoryID]; ok {
				entry.Category = &c
			}
		}
		entries = append(entries, entry)
	}
	return entries, nil
}
