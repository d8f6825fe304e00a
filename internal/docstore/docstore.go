// Package docstore defines the minimal document-database capability set the
// repositories are written against: schemaless documents grouped in named
// collections, queryable by field filters, ordering and limit, with live
// full-snapshot subscriptions. Drivers live in the subpackages.
package docstore

import (
	"context"
	"errors"
)

// ErrNoDocument is returned by Doc.Update when the target document does not
// exist. Reads never return it; a missing document is a non-existent Snapshot.
var ErrNoDocument = errors.New("docstore: no document to update")

// Client is a connection handle to a document store.
type Client interface {
	Collection(name string) Collection
	Close() error
}

// Collection is a named set of documents.
type Collection interface {
	Name() string
	// Doc returns a handle for the document with the given id. The document
	// need not exist.
	Doc(id string) Doc
	// Add writes a new document with a store-assigned id and returns its
	// handle.
	Add(ctx context.Context, data map[string]any) (Doc, error)
	// Query builds a read over the collection from the given constraints.
	Query(constraints ...Constraint) Query
}

// Doc is a handle to a single document.
type Doc interface {
	ID() string
	Get(ctx context.Context) (Snapshot, error)
	// Update applies a sparse patch. Values equal to Delete remove the field.
	Update(ctx context.Context, patch map[string]any) error
	Delete(ctx context.Context) error
}

// Snapshot is a point-in-time read of one document.
type Snapshot interface {
	Exists() bool
	ID() string
	Data() map[string]any
}

// UnsubscribeFunc detaches a live query. Implementations are idempotent.
type UnsubscribeFunc func()

// Query is a filtered, ordered read over a collection.
type Query interface {
	Docs(ctx context.Context) ([]Snapshot, error)
	// Subscribe registers a live query. onData receives the full current
	// result set at registration time and again after every change; onError,
	// if non-nil, receives store-level failures. Deliveries within one
	// subscription are ordered. The returned function stops delivery and is
	// safe to call more than once.
	Subscribe(ctx context.Context, onData func([]Snapshot), onError func(error)) UnsubscribeFunc
}

type deleteSentinel struct{}

// Delete marks a field for removal when used as a value in an update patch.
var Delete any = deleteSentinel{}

// IsDelete reports whether v is the field-removal sentinel.
func IsDelete(v any) bool {
	_, ok := v.(deleteSentinel)
	return ok
}
