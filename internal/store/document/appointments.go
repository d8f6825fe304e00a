package document

import (
	"context"
	"errors"
	"strings"

	"agendly/backend/internal/docstore"
	"agendly/backend/internal/domain"
	"agendly/backend/internal/store"
)

const appointmentsCollection = "appointments"

type AppointmentRepo struct {
	col docstore.Collection
}

func NewAppointmentRepo(client docstore.Client) *AppointmentRepo {
	return &AppointmentRepo{col: client.Collection(appointmentsCollection)}
}

func mapAppointment(snap docstore.Snapshot) domain.Appointment {
	data := snap.Data()
	return domain.Appointment{
		ID:         snap.ID(),
		Title:      requiredString(data, "title"),
		Date:       dateField(data, "date"),
		Notes:      optionalString(data, "notes"),
		CategoryID: optionalString(data, "categoryId"),
	}
}

func mapAppointments(snaps []docstore.Snapshot) []domain.Appointment {
	out := make([]domain.Appointment, len(snaps))
	for i, s := range snaps {
		out[i] = mapAppointment(s)
	}
	return out
}

func sanitizeAppointmentCreate(in domain.AppointmentInput) (map[string]any, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, store.NewValidationError("title is required")
	}
	if in.Date.IsZero() {
		return nil, store.NewValidationError("date is required")
	}

	doc := map[string]any{
		"title": title,
		"date":  docstore.TimestampFromTime(in.Date),
	}
	if notes := strings.TrimSpace(in.Notes); notes != "" {
		doc["notes"] = notes
	}
	if categoryID := strings.TrimSpace(in.CategoryID); categoryID != "" {
		doc["categoryId"] = categoryID
	}
	return doc, nil
}

func sanitizeAppointmentPatch(p domain.AppointmentPatch) (map[string]any, error) {
	out := map[string]any{}

	if p.Title.IsClear() {
		return nil, store.NewValidationError("title cannot be empty")
	}
	if p.Title.IsSet() {
		title := strings.TrimSpace(p.Title.Value())
		if title == "" {
			return nil, store.NewValidationError("title cannot be empty")
		}
		out["title"] = title
	}

	if p.Date.IsClear() {
		return nil, store.NewValidationError("date cannot be cleared")
	}
	if p.Date.IsSet() {
		if p.Date.Value().IsZero() {
			return nil, store.NewValidationError("date is invalid")
		}
		out["date"] = docstore.TimestampFromTime(p.Date.Value())
	}

	switch {
	case p.Notes.IsClear():
		out["notes"] = docstore.Delete
	case p.Notes.IsSet():
		if notes := strings.TrimSpace(p.Notes.Value()); notes != "" {
			out["notes"] = notes
		} else {
			out["notes"] = docstore.Delete
		}
	}

	switch {
	case p.CategoryID.IsClear():
		out["categoryId"] = docstore.Delete
	case p.CategoryID.IsSet():
		if categoryID := strings.TrimSpace(p.CategoryID.Value()); categoryID != "" {
			out["categoryId"] = categoryID
		} else {
			out["categoryId"] = docstore.Delete
		}
	}

	return out, nil
}

func filterConstraints(f store.AppointmentFilter) []docstore.Constraint {
	var cs []docstore.Constraint

	if categoryID := strings.TrimSpace(f.CategoryID); categoryID != "" {
		cs = append(cs, docstore.Where("categoryId", docstore.OpEqual, categoryID))
	}
	if f.After != nil {
		cs = append(cs, docstore.Where("date", docstore.OpGreaterOrEqual, docstore.TimestampFromTime(*f.After)))
	}
	if f.Before != nil {
		cs = append(cs, docstore.Where("date", docstore.OpLessOrEqual, docstore.TimestampFromTime(*f.Before)))
	}

	dir := docstore.Asc
	if f.Order == store.OrderDesc {
		dir = docstore.Desc
	}
	cs = append(cs, docstore.OrderBy("date", dir))

	if f.Limit > 0 {
		cs = append(cs, docstore.Limit(f.Limit))
	}
	return cs
}

// Create validates the input, writes the document and re-reads it so the
// caller gets the authoritative stored record back.
func (r *AppointmentRepo) Create(ctx context.Context, in domain.AppointmentInput) (domain.Appointment, error) {
	doc, err := sanitizeAppointmentCreate(in)
	if err != nil {
		return domain.Appointment{}, err
	}

	ref, err := r.col.Add(ctx, doc)
	if err != nil {
		return domain.Appointment{}, err
	}
	snap, err := ref.Get(ctx)
	if err != nil {
		return domain.Appointment{}, err
	}
	return mapAppointment(snap), nil
}

func (r *AppointmentRepo) Get(ctx context.Context, id string) (*domain.Appointment, error) {
	snap, err := r.col.Doc(id).Get(ctx)
	if err != nil {
		return nil, err
	}
	if !snap.Exists() {
		return nil, nil
	}
	a := mapAppointment(snap)
	return &a, nil
}

func (r *AppointmentRepo) List(ctx context.Context, filter store.AppointmentFilter) ([]domain.Appointment, error) {
	snaps, err := r.col.Query(filterConstraints(filter)...).Docs(ctx)
	if err != nil {
		return nil, err
	}
	return mapAppointments(snaps), nil
}

func (r *AppointmentRepo) Update(ctx context.Context, id string, patch domain.AppointmentPatch) error {
	out, err := sanitizeAppointmentPatch(patch)
	if err != nil {
		return err
	}
	if len(out) == 0 {
		return nil
	}
	if err := r.col.Doc(id).Update(ctx, out); err != nil {
		if errors.Is(err, docstore.ErrNoDocument) {
			return store.ErrNotFound
		}
		return err
	}
	return nil
}

func (r *AppointmentRepo) Delete(ctx context.Context, id string) error {
	return r.col.Doc(id).Delete(ctx)
}

func (r *AppointmentRepo) Watch(ctx context.Context, filter store.AppointmentFilter, onData func([]domain.Appointment), onError func(error)) store.Unsubscribe {
	unsub := r.col.Query(filterConstraints(filter)...).Subscribe(ctx,
		func(snaps []docstore.Snapshot) {
			onData(mapAppointments(snaps))
		},
		func(err error) {
			if onError != nil {
				onError(err)
			}
		},
	)
	return store.Unsubscribe(unsub)
}
