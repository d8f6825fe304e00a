// Package firestore adapts Cloud Firestore to the docstore contract. The
// wire timestamp type maps to Firestore's native timestamp (surfaced by the
// SDK as time.Time) and the field-removal sentinel maps to firestore.Delete.
package firestore

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	cf "cloud.google.com/go/firestore"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"agendly/backend/internal/docstore"
)

type Client struct {
	c *cf.Client
}

// Open connects to the Firestore database of the given project.
func Open(ctx context.Context, projectID string, opts ...option.ClientOption) (*Client, error) {
	c, err := cf.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("firestore: connect: %w", err)
	}
	return &Client{c: c}, nil
}

func (c *Client) Collection(name string) docstore.Collection {
	return collection{ref: c.c.Collection(name)}
}

func (c *Client) Close() error { return c.c.Close() }

type collection struct {
	ref *cf.CollectionRef
}

func (c collection) Name() string { return c.ref.ID }

func (c collection) Doc(id string) docstore.Doc {
	return document{ref: c.ref.Doc(id)}
}

func (c collection) Add(ctx context.Context, data map[string]any) (docstore.Doc, error) {
	ref, _, err := c.ref.Add(ctx, encodeData(data))
	if err != nil {
		return nil, err
	}
	return document{ref: ref}, nil
}

func (c collection) Query(constraints ...docstore.Constraint) docstore.Query {
	q := c.ref.Query
	for _, con := range constraints {
		switch con.Kind {
		case docstore.KindWhere:
			q = q.Where(con.Field, string(con.Op), encodeValue(con.Value))
		case docstore.KindOrderBy:
			dir := cf.Asc
			if con.Dir == docstore.Desc {
				dir = cf.Desc
			}
			q = q.OrderBy(con.Field, dir)
		case docstore.KindLimit:
			if con.N > 0 {
				q = q.Limit(con.N)
			}
		}
	}
	return query{q: q}
}

type document struct {
	ref *cf.DocumentRef
}

func (d document) ID() string { return d.ref.ID }

func (d document) Get(ctx context.Context) (docstore.Snapshot, error) {
	snap, err := d.ref.Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return snapshot{id: d.ref.ID}, nil
		}
		return nil, err
	}
	return snapshot{id: snap.Ref.ID, exists: true, data: decodeData(snap.Data())}, nil
}

func (d document) Update(ctx context.Context, patch map[string]any) error {
	updates := make([]cf.Update, 0, len(patch))
	for field, value := range patch {
		updates = append(updates, cf.Update{Path: field, Value: encodeValue(value)})
	}
	if _, err := d.ref.Update(ctx, updates); err != nil {
		if status.Code(err) == codes.NotFound {
			return fmt.Errorf("%w: %s", docstore.ErrNoDocument, d.ref.Path)
		}
		return err
	}
	return nil
}

func (d document) Delete(ctx context.Context) error {
	_, err := d.ref.Delete(ctx)
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
	q cf.Query
}

func (q query) Docs(ctx context.Context) ([]docstore.Snapshot, error) {
	snaps, err := q.q.Documents(ctx).GetAll()
	if err != nil {
		return nil, err
	}
	return convertSnapshots(snaps), nil
}

func (q query) Subscribe(ctx context.Context, onData func([]docstore.Snapshot), onError func(error)) docstore.UnsubscribeFunc {
	ctx, cancel := context.WithCancel(ctx)
	it := q.q.Snapshots(ctx)

	go func() {
		for {
			qs, err := it.Next()
			if err != nil {
				if errors.Is(err, context.Canceled) || status.Code(err) == codes.Canceled {
					return
				}
				if onError != nil {
					onError(err)
				}
				return
			}
			snaps, err := qs.Documents.GetAll()
			if err != nil {
				if onError != nil {
					onError(err)
				}
				return
			}
			onData(convertSnapshots(snaps))
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			cancel()
			it.Stop()
		})
	}
}

func convertSnapshots(snaps []*cf.DocumentSnapshot) []docstore.Snapshot {
	out := make([]docstore.Snapshot, len(snaps))
	for i, s := range snaps {
		out[i] = snapshot{id: s.Ref.ID, exists: true, data: decodeData(s.Data())}
	}
	return out
}

func encodeData(data map[string]any) map[string]any {
	out := make(map[string]any, len(data))
	for k, v := range data {
		out[k] = encodeValue(v)
	}
	return out
}

func encodeValue(v any) any {
	if docstore.IsDelete(v) {
		return cf.Delete
	}
	if ts, ok := v.(docstore.Timestamp); ok {
		return ts.Time()
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
	if t, ok := v.(time.Time); ok {
		return docstore.TimestampFromTime(t)
	}
	return v
}
