// Package document implements the repositories over the docstore contract.
// It owns the sanitize/map boundary: inputs are validated and trimmed before
// any store call, wire documents never carry empty optional fields, and
// reads decode defensively instead of failing on malformed records.
package document

import (
	"context"
	"errors"
	"strings"

	"agendly/backend/internal/docstore"
	"agendly/backend/internal/domain"
	"agendly/backend/internal/store"
)

const categoriesCollection = "categories"

type CategoryRepo struct {
	col docstore.Collection
}

func NewCategoryRepo(client docstore.Client) *CategoryRepo {
	return &CategoryRepo{col: client.Collection(categoriesCollection)}
}

func mapCategory(snap docstore.Snapshot) domain.Category {
	data := snap.Data()
	return domain.Category{
		ID:    snap.ID(),
		Name:  requiredString(data, "name"),
		Color: optionalString(data, "color"),
	}
}

func mapCategories(snaps []docstore.Snapshot) []domain.Category {
	out := make([]domain.Category, len(snaps))
	for i, s := range snaps {
		out[i] = mapCategory(s)
	}
	return out
}

func sanitizeCategoryCreate(in domain.CategoryInput) (map[string]any, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, store.NewValidationError("name is required")
	}

	doc := map[string]any{"name": name}
	if color := strings.TrimSpace(in.Color); color != "" {
		doc["color"] = color
	}
	return doc, nil
}

func sanitizeCategoryPatch(p domain.CategoryPatch) (map[string]any, error) {
	out := map[string]any{}

	if p.Name.IsClear() {
		return nil, store.NewValidationError("name cannot be empty")
	}
	if p.Name.IsSet() {
		name := strings.TrimSpace(p.Name.Value())
		if name == "" {
			return nil, store.NewValidationError("name cannot be empty")
		}
		out["name"] = name
	}

	switch {
	case p.Color.IsClear():
		out["color"] = docstore.Delete
	case p.Color.IsSet():
		if color := strings.TrimSpace(p.Color.Value()); color != "" {
			out["color"] = color
		} else {
			out["color"] = docstore.Delete
		}
	}

	return out, nil
}

// Create validates the input, writes the document and re-reads it so the
// caller gets the authoritative stored record back.
func (r *CategoryRepo) Create(ctx context.Context, in domain.CategoryInput) (domain.Category, error) {
	doc, err := sanitizeCategoryCreate(in)
	if err != nil {
		return domain.Category{}, err
	}

	ref, err := r.col.Add(ctx, doc)
	if err != nil {
		return domain.Category{}, err
	}
	snap, err := ref.Get(ctx)
	if err != nil {
		return domain.Category{}, err
	}
	return mapCategory(snap), nil
}

func (r *CategoryRepo) Get(ctx context.Context, id string) (*domain.Category, error) {
	snap, err := r.col.Doc(id).Get(ctx)
	if err != nil {
		return nil, err
	}
	if !snap.Exists() {
		return nil, nil
	}
	c := mapCategory(snap)
	return &c, nil
}

func (r *CategoryRepo) List(ctx context.Context) ([]domain.Category, error) {
	snaps, err := r.nameOrdered().Docs(ctx)
	if err != nil {
		return nil, err
	}
	return mapCategories(snaps), nil
}

func (r *CategoryRepo) Update(ctx context.Context, id string, patch domain.CategoryPatch) error {
	out, err := sanitizeCategoryPatch(patch)
	if err != nil {
		return err
	}
	if len(out) == 0 {
		return nil
	}
	if err := r.col.Doc(id).Update(ctx, out); err != nil {
		if errors.Is(err, docstore.ErrNoDocument) {
			return store.ErrNotFound
		}
		return err
	}
	return nil
}

// Delete removes the category. Appointments referencing it keep their
// categoryId; dangling references are resolved by the caller.
func (r *CategoryRepo) Delete(ctx context.Context, id string) error {
	return r.col.Doc(id).Delete(ctx)
}

func (r *CategoryRepo) Watch(ctx context.Context, onData func([]domain.Category), onError func(error)) store.Unsubscribe {
	unsub := r.nameOrdered().Subscribe(ctx,
		func(snaps []docstore.Snapshot) {
			onData(mapCategories(snaps))
		},
		func(err error) {
			if onError != nil {
				onError(err)
			}
		},
	)
	return store.Unsubscribe(unsub)
}

func (r *CategoryRepo) nameOrdered() docstore.Query {
	return r.col.Query(docstore.OrderBy("name", docstore.Asc))
}
