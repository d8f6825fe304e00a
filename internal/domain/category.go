package domain

// Category groups appointments under a name and an optional display color.
type Category struct {
	ID    string
	Name  string
	Color *string
}

// CategoryInput is the payload accepted when creating a category. Color is
// optional; an empty or whitespace-only value means "no color".
type CategoryInput struct {
	Name  string
	Color string
}

// CategoryPatch is a sparse update. Fields left at their zero value are not
// touched.
type CategoryPatch struct {
	Name  PatchField[string]
	Color PatchField[string]
}

// IsEmpty reports whether the patch changes nothing.
func (p CategoryPatch) IsEmpty() bool {
	return p.Name.IsZero() && p.Color.IsZero()
}
