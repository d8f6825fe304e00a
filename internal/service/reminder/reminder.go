// Package reminder periodically scans for appointments starting soon. The
// scan itself is side-effect free beyond logging; delivery channels hang off
// the log stream.
package reminder

import (
	"context"
	"log/slog"
	"time"

	"agendly/backend/internal/domain"
	"agendly/backend/internal/store"
)

type Scanner struct {
	appointments store.AppointmentRepository
	log          *slog.Logger
	lead         time.Duration
}

// NewScanner builds a scanner that reports appointments starting within the
// lead window.
func NewScanner(appointments store.AppointmentRepository, log *slog.Logger, lead time.Duration) *Scanner {
	if log == nil {
		log = slog.Default()
	}
	if lead <= 0 {
		lead = time.Hour
	}
	return &Scanner{
		appointments: appointments,
		log:          log.With(slog.String("component", "reminder")),
		lead:         lead,
	}
}

// Scan returns the appointments with a date in [now, now+lead], earliest
// first.
func (s *Scanner) Scan(ctx context.Context, now time.Time) ([]domain.Appointment, error) {
	after := now
	before := now.Add(s.lead)

	appts, err := s.appointments.List(ctx, store.AppointmentFilter{
		After:  &after,
		Before: &before,
		Order:  store.OrderAsc,
	})
	if err != nil {
		return nil, err
	}

	for _, a := range appts {
		s.log.Info(
			"appointment due soon",
			slog.String("appointment_id", a.ID),
			slog.String("title", a.Title),
			slog.Time("date", a.Date),
			slog.Duration("starts_in", a.Date.Sub(now)),
		)
	}
	return appts, nil
}

// Run is the cron entrypoint; scan failures are logged, not propagated.
func (s *Scanner) Run(ctx context.Context) {
	if _, err := s.Scan(ctx, time.Now().UTC()); err != nil {
		s.log.Error("reminder scan failed", slog.Any("err", err))
	}
}
