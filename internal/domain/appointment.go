package domain

import "time"

// Appointment is the application-side record. Date is always a native
// time.Time; conversion to the store's wire timestamp happens at the
// repository boundary. Notes and CategoryID are nil when absent; an empty
// string is never stored or surfaced for either.
type Appointment struct {
	ID         string
	Title      string
	Date       time.Time
	Notes      *string
	CategoryID *string
}

// AppointmentInput is the payload accepted when creating an appointment.
// Notes and CategoryID are optional; empty or whitespace-only values are
// treated as absent.
type AppointmentInput struct {
	Title      string
	Date       time.Time
	Notes      string
	CategoryID string
}

// AppointmentPatch is a sparse update. Fields left at their zero value are
// not touched; Clear removes the stored field (invalid for Title and Date,
// which are required).
type AppointmentPatch struct {
	Title      PatchField[string]
	Date       PatchField[time.Time]
	Notes      PatchField[string]
	CategoryID PatchField[string]
}

// IsEmpty reports whether the patch changes nothing.
func (p AppointmentPatch) IsEmpty() bool {
	return p.Title.IsZero() && p.Date.IsZero() && p.Notes.IsZero() && p.CategoryID.IsZero()
}
