// Package postgres is a self-hosted docstore driver: documents live as jsonb
// rows in a single table keyed by (collection, id). Wire timestamps are
// stored as {"$ts": <fixed-width UTC RFC3339>} wrappers so that range filters
// and ordering can run on the lexicographic value. Live queries are served by
// polling; the poll interval bounds notification latency.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"reflect"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"

	"agendly/backend/internal/docstore"
)

// timeLayout is fixed-width so encoded timestamps order lexicographically.
const timeLayout = "2006-01-02T15:04:05.000000Z"

const defaultPollInterval = 500 * time.Millisecond

type PoolConfig struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

type Options struct {
	Pool PoolConfig
	// PollInterval is how often live queries re-read their result set.
	PollInterval time.Duration
}

type documentRow struct {
	bun.BaseModel `bun:"table:documents,alias:d"`

	Collection string         `bun:"collection,pk"`
	ID         string         `bun:"id,pk"`
	Data       map[string]any `bun:"data,type:jsonb"`
	UpdatedAt  time.Time      `bun:"updated_at,notnull"`
}

type Client struct {
	db   *bun.DB
	poll time.Duration
}

func Open(databaseURL string, opts Options) (*Client, error) {
	sqlDB, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, err
	}

	if opts.Pool.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(opts.Pool.MaxOpenConns)
	}
	if opts.Pool.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(opts.Pool.MaxIdleConns)
	}
	if opts.Pool.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(opts.Pool.ConnMaxLifetime)
	}
	if opts.Pool.ConnMaxIdleTime > 0 {
		sqlDB.SetConnMaxIdleTime(opts.Pool.ConnMaxIdleTime)
	}

	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}

	poll := opts.PollInterval
	if poll <= 0 {
		poll = defaultPollInterval
	}

	return &Client{db: bun.NewDB(sqlDB, pgdialect.New()), poll: poll}, nil
}

// EnsureSchema creates the documents table when it does not exist yet.
func (c *Client) EnsureSchema(ctx context.Context) error {
	_, err := c.db.NewCreateTable().
		Model((*documentRow)(nil)).
		IfNotExists().
		Exec(ctx)
	return err
}

func (c *Client) Collection(name string) docstore.Collection {
	return &collection{client: c, name: name}
}

func (c *Client) Close() error {
	if c.db == nil {
		return nil
	}
	return c.db.Close()
}

type collection struct {
	client *Client
	name   string
}

func (c *collection) Name() string { return c.name }

func (c *collection) Doc(id string) docstore.Doc {
	return &document{col: c, id: id}
}

func (c *collection) Add(ctx context.Context, data map[string]any) (docstore.Doc, error) {
	row := &documentRow{
		Collection: c.name,
		ID:         uuid.NewString(),
		Data:       encodeData(data),
		UpdatedAt:  time.Now().UTC(),
	}
	if _, err := c.client.db.NewInsert().Model(row).Exec(ctx); err != nil {
		return nil, err
	}
	return &document{col: c, id: row.ID}, nil
}

func (c *collection) Query(constraints ...docstore.Constraint) docstore.Query {
	return &query{col: c, cs: constraints}
}

type document struct {
	col *collection
	id  string
}

func (d *document) ID() string { return d.id }

func (d *document) Get(ctx context.Context) (docstore.Snapshot, error) {
	var row documentRow
	err := d.col.client.db.NewSelect().
		Model(&row).
		Where("collection = ?", d.col.name).
		Where("id = ?", d.id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return snapshot{id: d.id}, nil
		}
		return nil, err
	}
	return snapshot{id: row.ID, exists: true, data: decodeData(row.Data)}, nil
}

func (d *document) Update(ctx context.Context, patch map[string]any) error {
	return d.col.client.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		var row documentRow
		err := tx.NewSelect().
			Model(&row).
			Where("collection = ?", d.col.name).
			Where("id = ?", d.id).
			For("UPDATE").
			Scan(ctx)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return fmt.Errorf("%w: %s/%s", docstore.ErrNoDocument, d.col.name, d.id)
			}
			return err
		}

		if row.Data == nil {
			row.Data = make(map[string]any)
		}
		for field, value := range patch {
			if docstore.IsDelete(value) {
				delete(row.Data, field)
				continue
			}
			row.Data[field] = encodeValue(value)
		}
		row.UpdatedAt = time.Now().UTC()

		_, err = tx.NewUpdate().
			Model(&row).
			Column("data", "updated_at").
			WherePK().
			Exec(ctx)
		return err
	})
}

func (d *document) Delete(ctx context.Context) error {
	_, err := d.col.client.db.NewDelete().
		Model((*documentRow)(nil)).
		Where("collection = ?", d.col.name).
		Where("id = ?", d.id).
		Exec(ctx)
	return err
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
	var rows []documentRow
	sel := q.col.client.db.NewSelect().
		Model(&rows).
		Where("collection = ?", q.col.name)

	for _, c := range q.cs {
		switch c.Kind {
		case docstore.KindWhere:
			sel = sel.Where("jsonb_exists(data, ?)", c.Field)
			op, err := sqlOp(c.Op)
			if err != nil {
				return nil, err
			}
			if ts, ok := c.Value.(docstore.Timestamp); ok {
				sel = sel.Where(fmt.Sprintf("data->?->>'$ts' %s ?", op), c.Field, ts.Time().Format(timeLayout))
			} else {
				sel = sel.Where(fmt.Sprintf("data->>? %s ?", op), c.Field, fmt.Sprint(c.Value))
			}
		case docstore.KindOrderBy:
			dir := "ASC"
			if c.Dir == docstore.Desc {
				dir = "DESC"
			}
			sel = sel.Where("jsonb_exists(data, ?)", c.Field)
			sel = sel.OrderExpr(fmt.Sprintf("LOWER(COALESCE(data->?->>'$ts', data->>?)) %s", dir), c.Field, c.Field)
		case docstore.KindLimit:
			if c.N > 0 {
				sel = sel.Limit(c.N)
			}
		}
	}

	if err := sel.Scan(ctx); err != nil {
		return nil, err
	}

	out := make([]docstore.Snapshot, len(rows))
	for i, row := range rows {
		out[i] = snapshot{id: row.ID, exists: true, data: decodeData(row.Data)}
	}
	return out, nil
}

func (q *query) Subscribe(ctx context.Context, onData func([]docstore.Snapshot), onError func(error)) docstore.UnsubscribeFunc {
	ctx, cancel := context.WithCancel(ctx)

	go func() {
		ticker := time.NewTicker(q.col.client.poll)
		defer ticker.Stop()

		var last []docstore.Snapshot
		first := true
		for {
			rows, err := q.Docs(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				if onError != nil {
					onError(err)
				}
				return
			}
			if first || !sameResults(last, rows) {
				onData(rows)
				last = rows
				first = false
			}
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(cancel)
	}
}

func sqlOp(op docstore.Op) (string, error) {
	switch op {
	case docstore.OpEqual:
		return "=", nil
	case docstore.OpGreaterOrEqual:
		return ">=", nil
	case docstore.OpLessOrEqual:
		return "<=", nil
	default:
		return "", fmt.Errorf("postgres: unsupported operator %q", op)
	}
}

func sameResults(a, b []docstore.Snapshot) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].ID() != b[i].ID() || !reflect.DeepEqual(a[i].Data(), b[i].Data()) {
			return false
		}
	}
	return true
}

func encodeData(data map[string]any) map[string]any {
	out := make(map[string]any, len(data))
	for k, v := range data {
		out[k] = encodeValue(v)
	}
	return out
}

func encodeValue(v any) any {
	if ts, ok := v.(docstore.Timestamp); ok {
		return map[string]any{"$ts": ts.Time().Format(timeLayout)}
	}
	return v
}

func decodeData(data map[string]any) map[string]any {
	out := make(map[string]any, len(data))
	for k, v := range data {
		out[k] = decodeValue(v)
	}
	return out
}

func decodeValue(v any) any {
	m, ok := v.(map[string]any)
	if !ok || len(m) != 1 {
		return v
	}
	raw, ok := m["$ts"]
	if !ok {
		return v
	}
	s, ok := raw.(string)
	if !ok {
		return v
	}
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return v
	}
	return docstore.TimestampFromTime(t)
}
