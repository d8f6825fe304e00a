// Package memory is an in-process docstore driver. It backs the test suite
// and local development, and is the reference for query semantics: filters
// and order clauses only see documents that carry the referenced field,
// string ordering is case-insensitive (lowercased comparison with a
// byte-order tiebreak), and mixed-type values order by type rank.
//
// Subscription callbacks are invoked synchronously, both for the initial
// snapshot and after every mutation, so deliveries within one subscription
// are strictly ordered. Callbacks must not call back into the store.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"agendly/backend/internal/docstore"
)

type Store struct {
	mu          sync.Mutex
	collections map[string]*collection
}

func New() *Store {
	return &Store{collections: make(map[string]*collection)}
}

func (s *Store) Collection(name string) docstore.Collection {
	s.mu.Lock()
	defer s.mu.Unlock()
	col, ok := s.collections[name]
	if !ok {
		col = &collection{
			store: s,
			name:  name,
			docs:  make(map[string]map[string]any),
			subs:  make(map[int]*subscription),
		}
		s.collections[name] = col
	}
	return col
}

func (s *Store) Close() error { return nil }

type collection struct {
	store   *Store
	name    string
	docs    map[string]map[string]any
	subs    map[int]*subscription
	nextSub int
}

type subscription struct {
	q       *query
	onData  func([]docstore.Snapshot)
	onError func(error)
}

func (c *collection) Name() string { return c.name }

func (c *collection) Doc(id string) docstore.Doc {
	return &document{col: c, id: id}
}

func (c *collection) Add(ctx context.Context, data map[string]any) (docstore.Doc, error) {
	c.store.mu.Lock()
	defer c.store.mu.Unlock()

	id := uuid.NewString()
	c.docs[id] = cloneData(data)
	c.broadcastLocked()
	return &document{col: c, id: id}, nil
}

func (c *collection) Query(constraints ...docstore.Constraint) docstore.Query {
	return &query{col: c, cs: constraints}
}

// broadcastLocked re-evaluates every live query and delivers the new result
// sets. The store mutex must be held.
func (c *collection) broadcastLocked() {
	ids := make([]int, 0, len(c.subs))
	for id := range c.subs {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	for _, id := range ids {
		sub := c.subs[id]
		rows, err := sub.q.evalLocked()
		if err != nil {
			if sub.onError != nil {
				sub.onError(err)
			}
			continue
		}
		sub.onData(rows)
	}
}

type document struct {
	col *collection
	id  string
}

func (d *document) ID() string { return d.id }

func (d *document) Get(ctx context.Context) (docstore.Snapshot, error) {
	d.col.store.mu.Lock()
	defer d.col.store.mu.Unlock()

	data, ok := d.col.docs[d.id]
	if !ok {
		return snapshot{id: d.id}, nil
	}
	return snapshot{id: d.id, exists: true, data: cloneData(data)}, nil
}

func (d *document) Update(ctx context.Context, patch map[string]any) error {
	d.col.store.mu.Lock()
	defer d.col.store.mu.Unlock()

	data, ok := d.col.docs[d.id]
	if !ok {
		return fmt.Errorf("%w: %s/%s", docstore.ErrNoDocument, d.col.name, d.id)
	}
	for field, value := range patch {
		if docstore.IsDelete(value) {
			delete(data, field)
			continue
		}
		data[field] = value
	}
	d.col.broadcastLocked()
	return nil
}

func (d *document) Delete(ctx context.Context) error {
	d.col.store.mu.Lock()
	defer d.col.store.mu.Unlock()

	if _, ok := d.col.docs[d.id]; !ok {
		return nil
	}
	delete(d.col.docs, d.id)
	d.col.broadcastLocked()
	return nil
}

type snapshot struct {
	id     string
	exists bool
	data   map[string]any
}

func (s snapshot) ID() string           { return s.id }
func (s snapshot) Exists() bool         { return s.exists }
func (s snapshot) Data() map[string]any { return s.data }

type query struct {
	col *collection
	cs  []docstore.Constraint
}

func (q *query) Docs(ctx context.Context) ([]docstore.Snapshot, error) {
	q.col.store.mu.Lock()
	defer q.col.store.mu.Unlock()
	return q.evalLocked()
}

func (q *query) Subscribe(ctx context.Context, onData func([]docstore.Snapshot), onError func(error)) docstore.UnsubscribeFunc {
	c := q.col
	c.store.mu.Lock()

	id := c.nextSub
	c.nextSub++
	sub := &subscription{q: q, onData: onData, onError: onError}
	c.subs[id] = sub

	rows, err := q.evalLocked()
	if err != nil {
		c.store.mu.Unlock()
		if onError != nil {
			onError(err)
		}
	} else {
		c.store.mu.Unlock()
		onData(rows)
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			c.store.mu.Lock()
			delete(c.subs, id)
			c.store.mu.Unlock()
		})
	}
}

func (q *query) evalLocked() ([]docstore.Snapshot, error) {
	var wheres, orders []docstore.Constraint
	limit := 0
	for _, c := range q.cs {
		switch c.Kind {
		case docstore.KindWhere:
			wheres = append(wheres, c)
		case docstore.KindOrderBy:
			orders = append(orders, c)
		case docstore.KindLimit:
			if c.N > 0 {
				limit = c.N
			}
		}
	}

	rows := make([]snapshot, 0, len(q.col.docs))
nextDoc:
	for id, data := range q.col.docs {
		for _, w := range wheres {
			v, ok := data[w.Field]
			if !ok {
				continue nextDoc
			}
			match, err := matches(v, w.Op, w.Value)
			if err != nil {
				return nil, err
			}
			if !match {
				continue nextDoc
			}
		}
		for _, o := range orders {
			if _, ok := data[o.Field]; !ok {
				continue nextDoc
			}
		}
		rows = append(rows, snapshot{id: id, exists: true, data: cloneData(data)})
	}

	sort.SliceStable(rows, func(i, j int) bool {
		for _, o := range orders {
			cmp := compareValues(rows[i].data[o.Field], rows[j].data[o.Field])
			if cmp == 0 {
				continue
			}
			if o.Dir == docstore.Desc {
				return cmp > 0
			}
			return cmp < 0
		}
		return rows[i].id < rows[j].id
	})

	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}

	out := make([]docstore.Snapshot, len(rows))
	for i, r := range rows {
		out[i] = r
	}
	return out, nil
}

func matches(v any, op docstore.Op, want any) (bool, error) {
	cmp := compareValues(v, want)
	switch op {
	case docstore.OpEqual:
		return cmp == 0, nil
	case docstore.OpGreaterOrEqual:
		return cmp >= 0, nil
	case docstore.OpLessOrEqual:
		return cmp <= 0, nil
	default:
		return false, fmt.Errorf("memory: unsupported operator %q", op)
	}
}

// compareValues orders two stored values. Values of different types order by
// type rank so that mixed collections still sort deterministically.
func compareValues(a, b any) int {
	ra, rb := typeRank(a), typeRank(b)
	if ra != rb {
		return ra - rb
	}

	switch av := a.(type) {
	case nil:
		return 0
	case bool:
		bv := b.(bool)
		switch {
		case av == bv:
			return 0
		case !av:
			return -1
		default:
			return 1
		}
	case docstore.Timestamp:
		bv := b.(docstore.Timestamp)
		switch {
		case av.Equal(bv):
			return 0
		case av.Before(bv):
			return -1
		default:
			return 1
		}
	case string:
		bv := b.(string)
		la, lb := strings.ToLower(av), strings.ToLower(bv)
		if la != lb {
			return strings.Compare(la, lb)
		}
		return strings.Compare(av, bv)
	default:
		fa, fb := toFloat(a), toFloat(b)
		switch {
		case fa == fb:
			return 0
		case fa < fb:
			return -1
		default:
			return 1
		}
	}
}

func typeRank(v any) int {
	switch v.(type) {
	case nil:
		return 0
	case bool:
		return 1
	case int, int32, int64, float32, float64:
		return 2
	case docstore.Timestamp:
		return 3
	case string:
		return 4
	default:
		return 5
	}
}

func toFloat(v any) float64 {
	switch n := v.(type) {
	case int:
		return float64(n)
	case int32:
		return float64(n)
	case int64:
		return float64(n)
	case float32:
		return float64(n)
	case float64:
		return n
	default:
		return 0
	}
}

func cloneData(data map[string]any) map[string]any {
	out := make(map[string]any, len(data))
	for k, v := range data {
		out[k] = v
	}
	return out
}
