package docstore

// Direction orders query results on a field.
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// Op is a field comparison operator.
type Op string

const (
	OpEqual          Op = "=="
	OpGreaterOrEqual Op = ">="
	OpLessOrEqual    Op = "<="
)

// ConstraintKind discriminates the Constraint variants.
type ConstraintKind uint8

const (
	KindWhere ConstraintKind = iota
	KindOrderBy
	KindLimit
)

// Constraint is one clause of a query: a field filter, an order clause, or a
// result-count limit. Build them with Where, OrderBy and Limit.
type Constraint struct {
	Kind  ConstraintKind
	Field string
	Op    Op
	Value any
	Dir   Direction
	N     int
}

// Where filters on field op value.
func Where(field string, op Op, value any) Constraint {
	return Constraint{Kind: KindWhere, Field: field, Op: op, Value: value}
}

// OrderBy sorts results by the given field and direction.
func OrderBy(field string, dir Direction) Constraint {
	return Constraint{Kind: KindOrderBy, Field: field, Dir: dir}
}

// Limit caps the result count after ordering. Non-positive values are ignored
// by drivers.
func Limit(n int) Constraint {
	return Constraint{Kind: KindLimit, N: n}
}
