package httpapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"agendly/backend/internal/domain"
)

var jsonNull = []byte("null")

// stringPatchField maps a JSON value onto the three-way patch variant:
// a missing key was never passed here (leave unchanged), null clears the
// field, a string sets it. Whether an empty string clears or is rejected is
// decided downstream per field.
func stringPatchField(raw json.RawMessage) (domain.PatchField[string], error) {
	if bytes.Equal(bytes.TrimSpace(raw), jsonNull) {
		return domain.Clear[string](), nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return domain.PatchField[string]{}, fmt.Errorf("expected string or null")
	}
	return domain.Set(s), nil
}

func datePatchField(raw json.RawMessage) (domain.PatchField[time.Time], error) {
	if bytes.Equal(bytes.TrimSpace(raw), jsonNull) {
		return domain.Clear[time.Time](), nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return domain.PatchField[time.Time]{}, fmt.Errorf("expected RFC3339 string or null")
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return domain.PatchField[time.Time]{}, fmt.Errorf("invalid date %q", s)
	}
	return domain.Set(t), nil
}
