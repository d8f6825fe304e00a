package domain

type patchOp uint8

const (
	patchUnchanged patchOp = iota
	patchSet
	patchClear
)

// PatchField is a three-state update instruction for one document field:
// leave it untouched, set it to a value, or remove it. The zero value means
// "unchanged", so sparse patch literals only name the fields they modify.
type PatchField[T any] struct {
	op    patchOp
	value T
}

// Set returns an instruction to write v.
func Set[T any](v T) PatchField[T] {
	return PatchField[T]{op: patchSet, value: v}
}

// Clear returns an instruction to remove the field from the document.
func Clear[T any]() PatchField[T] {
	return PatchField[T]{op: patchClear}
}

func (f PatchField[T]) IsZero() bool  { return f.op == patchUnchanged }
func (f PatchField[T]) IsSet() bool   { return f.op == patchSet }
func (f PatchField[T]) IsClear() bool { return f.op == patchClear }

// Value returns the value carried by a Set instruction. It is the zero value
// of T otherwise.
func (f PatchField[T]) Value() T { return f.value }
