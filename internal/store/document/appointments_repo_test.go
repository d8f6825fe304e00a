package document

import (
	"context"
	"errors"
	"testing"
	"time"

	"agendly/backend/internal/docstore"
	"agendly/backend/internal/docstore/memory"
	"agendly/backend/internal/domain"
	"agendly/backend/internal/store"
)

func testDate(hour int) time.Time {
	return time.Date(2026, 3, 14, hour, 0, 0, 0, time.UTC)
}

func mustCreateAppointment(t *testing.T, repo *AppointmentRepo, in domain.AppointmentInput) domain.Appointment {
	t.Helper()
	appt, err := repo.Create(context.Background(), in)
	if err != nil {
		t.Fatalf("Create %q: %v", in.Title, err)
	}
	return appt
}

func TestAppointmentCreate_RoundTrip(t *testing.T) {
	repo := NewAppointmentRepo(memory.New())

	date := time.Date(2026, 3, 14, 9, 30, 0, 0, time.FixedZone("CET", 3600))
	created := mustCreateAppointment(t, repo, domain.AppointmentInput{
		Title: "  Dentist  ",
		Date:  date,
		Notes: " bring insurance card ",
	})

	if created.Title != "Dentist" {
		t.Fatalf("Title = %q, want %q", created.Title, "Dentist")
	}
	if !created.Date.Equal(date) {
		t.Fatalf("Date = %v, want %v", created.Date, date)
	}
	if created.Date.Location() != time.UTC {
		t.Fatalf("Date location = %v, want UTC", created.Date.Location())
	}
	if created.Notes == nil || *created.Notes != "bring insurance card" {
		t.Fatalf("Notes = %v, want bring insurance card", created.Notes)
	}
	if created.CategoryID != nil {
		t.Fatalf("CategoryID = %q, want nil", *created.CategoryID)
	}

	got, err := repo.Get(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got == nil {
		t.Fatalf("Get returned nil for existing appointment")
	}
	if !got.Date.Equal(created.Date) {
		t.Fatalf("Get Date = %v, want %v", got.Date, created.Date)
	}
}

func TestAppointmentCreate_OptionalFieldsOmittedFromDocument(t *testing.T) {
	client := memory.New()
	repo := NewAppointmentRepo(client)

	created := mustCreateAppointment(t, repo, domain.AppointmentInput{
		Title:      "standup",
		Date:       testDate(9),
		Notes:      "   ",
		CategoryID: "",
	})

	snap, err := client.Collection("appointments").Doc(created.ID).Get(context.Background())
	if err != nil {
		t.Fatalf("raw Get: %v", err)
	}
	data := snap.Data()
	if _, ok := data["notes"]; ok {
		t.Fatalf("stored document carries empty notes: %v", data)
	}
	if _, ok := data["categoryId"]; ok {
		t.Fatalf("stored document carries empty categoryId: %v", data)
	}
	if _, ok := data["date"].(docstore.Timestamp); !ok {
		t.Fatalf("stored date type = %T, want docstore.Timestamp", data["date"])
	}
}

func TestAppointmentCreate_ValidationBeforeAnyWrite(t *testing.T) {
	tests := []struct {
		name    string
		in      domain.AppointmentInput
		wantErr string
	}{
		{"missing title", domain.AppointmentInput{Date: testDate(9)}, "title is required"},
		{"blank title", domain.AppointmentInput{Title: "   ", Date: testDate(9)}, "title is required"},
		{"missing date", domain.AppointmentInput{Title: "x"}, "date is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spy := &spyClient{inner: memory.New()}
			repo := NewAppointmentRepo(spy)

			_, err := repo.Create(context.Background(), tt.in)
			if !store.IsValidation(err) {
				t.Fatalf("err = %v, want validation error", err)
			}
			if err.Error() != tt.wantErr {
				t.Fatalf("err = %q, want %q", err.Error(), tt.wantErr)
			}
			if spy.adds != 0 {
				t.Fatalf("adds = %d, want 0", spy.adds)
			}
		})
	}
}

func TestAppointmentGet_MissingIsNilNotError(t *testing.T) {
	repo := NewAppointmentRepo(memory.New())

	got, err := repo.Get(context.Background(), "missing")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != nil {
		t.Fatalf("got = %+v, want nil", got)
	}
}

func TestAppointmentList_FilterComposition(t *testing.T) {
	repo := NewAppointmentRepo(memory.New())

	work := mustCreateAppointment(t, repo, domain.AppointmentInput{Title: "early", Date: testDate(8), CategoryID: "work"})
	mustCreateAppointment(t, repo, domain.AppointmentInput{Title: "other category", Date: testDate(9), CategoryID: "home"})
	mustCreateAppointment(t, repo, domain.AppointmentInput{Title: "too early", Date: testDate(6), CategoryID: "work"})
	late := mustCreateAppointment(t, repo, domain.AppointmentInput{Title: "late", Date: testDate(11), CategoryID: "work"})
	mustCreateAppointment(t, repo, domain.AppointmentInput{Title: "too late", Date: testDate(18), CategoryID: "work"})
	mustCreateAppointment(t, repo, domain.AppointmentInput{Title: "uncategorized", Date: testDate(10)})

	after := testDate(7)
	before := testDate(12)
	appts, err := repo.List(context.Background(), store.AppointmentFilter{
		CategoryID: "work",
		After:      &after,
		Before:     &before,
		Order:      store.OrderDesc,
	})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(appts) != 2 {
		t.Fatalf("len(appts) = %d, want 2", len(appts))
	}
	if appts[0].ID != late.ID || appts[1].ID != work.ID {
		t.Fatalf("order = [%s %s], want [%s %s]", appts[0].Title, appts[1].Title, "late", "early")
	}
}

func TestAppointmentList_InclusiveBoundsAndLimit(t *testing.T) {
	repo := NewAppointmentRepo(memory.New())
	for hour := 8; hour <= 12; hour++ {
		mustCreateAppointment(t, repo, domain.AppointmentInput{Title: "slot", Date: testDate(hour)})
	}

	after := testDate(9)
	before := testDate(11)
	appts, err := repo.List(context.Background(), store.AppointmentFilter{
		After:  &after,
		Before: &before,
	})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(appts) != 3 {
		t.Fatalf("len(appts) = %d, want 3 (bounds are inclusive)", len(appts))
	}
	if !appts[0].Date.Equal(testDate(9)) || !appts[2].Date.Equal(testDate(11)) {
		t.Fatalf("range = [%v, %v], want [%v, %v]", appts[0].Date, appts[2].Date, testDate(9), testDate(11))
	}

	limited, err := repo.List(context.Background(), store.AppointmentFilter{
		After:  &after,
		Before: &before,
		Limit:  2,
	})
	if err != nil {
		t.Fatalf("List with limit: %v", err)
	}
	if len(limited) != 2 {
		t.Fatalf("len(limited) = %d, want 2", len(limited))
	}
}

func TestAppointmentUpdate_EmptyPatchMakesNoStoreCall(t *testing.T) {
	spy := &spyClient{inner: memory.New()}
	repo := NewAppointmentRepo(spy)

	if err := repo.Update(context.Background(), "any-id", domain.AppointmentPatch{}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if spy.updates != 0 {
		t.Fatalf("updates = %d, want 0", spy.updates)
	}
}

func TestAppointmentUpdate_ClearNotesAndCategory(t *testing.T) {
	client := memory.New()
	repo := NewAppointmentRepo(client)

	created := mustCreateAppointment(t, repo, domain.AppointmentInput{
		Title:      "standup",
		Date:       testDate(9),
		Notes:      "daily",
		CategoryID: "work",
	})

	if err := repo.Update(context.Background(), created.ID, domain.AppointmentPatch{
		Notes:      domain.Clear[string](),
		CategoryID: domain.Set("   "),
	}); err != nil {
		t.Fatalf("Update: %v", err)
	}

	got, err := repo.Get(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Notes != nil {
		t.Fatalf("Notes = %q, want nil", *got.Notes)
	}
	if got.CategoryID != nil {
		t.Fatalf("CategoryID = %q, want nil", *got.CategoryID)
	}

	snap, err := client.Collection("appointments").Doc(created.ID).Get(context.Background())
	if err != nil {
		t.Fatalf("raw Get: %v", err)
	}
	if _, ok := snap.Data()["notes"]; ok {
		t.Fatalf("notes field still stored after clear: %v", snap.Data())
	}
	if _, ok := snap.Data()["categoryId"]; ok {
		t.Fatalf("categoryId field still stored after clear: %v", snap.Data())
	}
}

func TestAppointmentUpdate_RequiredFieldsCannotBeCleared(t *testing.T) {
	tests := []struct {
		name    string
		patch   domain.AppointmentPatch
		wantErr string
	}{
		{"clear title", domain.AppointmentPatch{Title: domain.Clear[string]()}, "title cannot be empty"},
		{"blank title", domain.AppointmentPatch{Title: domain.Set("  ")}, "title cannot be empty"},
		{"clear date", domain.AppointmentPatch{Date: domain.Clear[time.Time]()}, "date cannot be cleared"},
		{"zero date", domain.AppointmentPatch{Date: domain.Set(time.Time{})}, "date is invalid"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spy := &spyClient{inner: memory.New()}
			repo := NewAppointmentRepo(spy)

			err := repo.Update(context.Background(), "any-id", tt.patch)
			if !store.IsValidation(err) {
				t.Fatalf("err = %v, want validation error", err)
			}
			if err.Error() != tt.wantErr {
				t.Fatalf("err = %q, want %q", err.Error(), tt.wantErr)
			}
			if spy.updates != 0 {
				t.Fatalf("updates = %d, want 0", spy.updates)
			}
		})
	}
}

func TestAppointmentUpdate_MissingDocument(t *testing.T) {
	repo := NewAppointmentRepo(memory.New())

	err := repo.Update(context.Background(), "missing", domain.AppointmentPatch{
		Title: domain.Set("renamed"),
	})
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestAppointmentDefensiveDecode_MalformedDateFallsBackToEpoch(t *testing.T) {
	client := memory.New()
	repo := NewAppointmentRepo(client)

	ref, err := client.Collection("appointments").Add(context.Background(), map[string]any{
		"title": "legacy",
		"date":  "2026-03-14T09:00:00Z",
	})
	if err != nil {
		t.Fatalf("raw Add: %v", err)
	}

	got, err := repo.Get(context.Background(), ref.ID())
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !got.Date.Equal(time.Unix(0, 0)) {
		t.Fatalf("Date = %v, want epoch", got.Date)
	}
	if got.Title != "legacy" {
		t.Fatalf("Title = %q, want %q", got.Title, "legacy")
	}
}

func TestAppointmentDefensiveDecode_MissingFields(t *testing.T) {
	client := memory.New()
	repo := NewAppointmentRepo(client)

	ref, err := client.Collection("appointments").Add(context.Background(), map[string]any{})
	if err != nil {
		t.Fatalf("raw Add: %v", err)
	}

	got, err := repo.Get(context.Background(), ref.ID())
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Title != "" {
		t.Fatalf("Title = %q, want empty", got.Title)
	}
	if !got.Date.Equal(time.Unix(0, 0)) {
		t.Fatalf("Date = %v, want epoch", got.Date)
	}
	if got.Notes != nil || got.CategoryID != nil {
		t.Fatalf("optional fields = %v/%v, want nil/nil", got.Notes, got.CategoryID)
	}
}

func TestAppointmentWatch_FilteredLiveQuery(t *testing.T) {
	repo := NewAppointmentRepo(memory.New())

	var deliveries [][]domain.Appointment
	unsubscribe := repo.Watch(context.Background(),
		store.AppointmentFilter{CategoryID: "work"},
		func(appts []domain.Appointment) { deliveries = append(deliveries, appts) },
		nil,
	)

	if len(deliveries) != 1 || len(deliveries[0]) != 0 {
		t.Fatalf("initial delivery = %v, want one empty snapshot", deliveries)
	}

	mustCreateAppointment(t, repo, domain.AppointmentInput{Title: "match", Date: testDate(9), CategoryID: "work"})
	mustCreateAppointment(t, repo, domain.AppointmentInput{Title: "other", Date: testDate(10), CategoryID: "home"})

	last := deliveries[len(deliveries)-1]
	if len(last) != 1 {
		t.Fatalf("last snapshot size = %d, want 1", len(last))
	}
	if last[0].Title != "match" {
		t.Fatalf("last snapshot title = %q, want %q", last[0].Title, "match")
	}

	seen := len(deliveries)
	unsubscribe()
	unsubscribe()

	mustCreateAppointment(t, repo, domain.AppointmentInput{Title: "late", Date: testDate(11), CategoryID: "work"})
	if len(deliveries) != seen {
		t.Fatalf("deliveries after unsubscribe = %d, want %d", len(deliveries), seen)
	}
}
