package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/simp-lee/amcham/internal/domain"
)

// Endpoint describes one backend resource family.
type Endpoint struct {
	// Name labels metrics and logs, e.g. "companies".
	Name string
	// Path is the collection path, e.g. "/api/companies".
	Path string
	// SearchPath serves paginated search. Empty means Path.
	SearchPath string
	// TermParam carries the free-text term.
	TermParam string
	// Filters maps criteria filter keys to query parameter names.
	Filters  map[string]string
	Messages Messages
}

// Resource is a generic CRUD client for records of type T.
type Resource[T domain.Record] struct {
	client *Client
	ep     Endpoint
}

// NewResource binds ep to c.
func NewResource[T domain.Record](c *Client, ep Endpoint) *Resource[T] {
	if ep.Messages == nil {
		ep.Messages = DefaultMessages
	}
	return &Resource[T]{client: c, ep: ep}
}

// Name returns the resource name.
func (r *Resource[T]) Name() string { return r.ep.Name }

func (r *Resource[T]) call(method, path string) Call {
	return Call{Resource: r.ep.Name, Method: method, Path: path, Messages: r.ep.Messages}
}

func (r *Resource[T]) itemPath(id int64) string {
	return r.ep.Path + "/" + strconv.FormatInt(id, 10)
}

// List fetches one page matching c.
func (r *Resource[T]) List(ctx context.Context, c domain.Criteria) (*domain.Page[T], error) {
	path := r.ep.SearchPath
	if path == "" {
		path = r.ep.Path
	}
	call := r.call(http.MethodGet, path)
	call.Query = Query(c, r.ep.TermParam, r.ep.Filters)

	var raw json.RawMessage
	if err := r.client.Do(ctx, call, &raw); err != nil {
		return nil, err
	}
	page, err := decodePage[T](raw)
	if err != nil {
		return nil, domain.NewAPIError(http.StatusInternalServerError, r.ep.Messages.For(http.StatusInternalServerError), err)
	}
	return page, nil
}

// All fetches the whole collection.
func (r *Resource[T]) All(ctx context.Context) ([]T, error) {
	var raw json.RawMessage
	if err := r.client.Do(ctx, r.call(http.MethodGet, r.ep.Path), &raw); err != nil {
		return nil, err
	}
	page, err := decodePage[T](raw)
	if err != nil {
		return nil, domain.NewAPIError(http.StatusInternalServerError, r.ep.Messages.For(http.StatusInternalServerError), err)
	}
	return page.Content, nil
}

// Get fetches one record.
func (r *Resource[T]) Get(ctx context.Context, id int64) (T, error) {
	var out T
	err := r.client.Do(ctx, r.call(http.MethodGet, r.itemPath(id)), &out)
	return out, err
}

// Create posts rec, as multipart when files are attached.
func (r *Resource[T]) Create(ctx context.Context, rec T, files ...Upload) (T, error) {
	return r.write(ctx, http.MethodPost, r.ep.Path, rec, files)
}

// Update replaces the record id with rec.
func (r *Resource[T]) Update(ctx context.Context, id int64, rec T, files ...Upload) (T, error) {
	return r.write(ctx, http.MethodPut, r.itemPath(id), rec, files)
}

// Delete removes the record id.
func (r *Resource[T]) Delete(ctx context.Context, id int64) error {
	return r.client.Do(ctx, r.call(http.MethodDelete, r.itemPath(id)), nil)
}

func (r *Resource[T]) write(ctx context.Context, method, path string, rec T, files []Upload) (T, error) {
	var out T
	call := r.call(method, path)
	if len(files) > 0 {
		form, err := FormFromRecord(rec)
		if err != nil {
			return out, domain.NewAPIError(http.StatusBadRequest, r.ep.Messages.For(http.StatusBadRequest), err)
		}
		for _, f := range files {
			form.Attach(f)
		}
		call.Form = form
	} else {
		call.Body = rec
	}
	if err := r.client.Do(ctx, call, &out); err != nil {
		return out, err
	}
	if out.RecordID() == 0 {
		// Some endpoints answer with an empty body.
		out = rec
	}
	return out, nil
}

// decodePage accepts either a page envelope or a bare JSON array.
func decodePage[T any](raw json.RawMessage) (*domain.Page[T], error) {
	page := &domain.Page[T]{}
	trimmed := firstNonSpace(raw)
	switch trimmed {
	case 0:
		page.Content = []T{}
		return page, nil
	case '[':
		if err := json.Unmarshal(raw, &page.Content); err != nil {
			return nil, fmt.Errorf("decode list: %w", err)
		}
		page.TotalElements = int64(len(page.Content))
		page.PageSize = len(page.Content)
		if len(page.Content) > 0 {
			page.TotalPages = 1
		}
		return page, nil
	default:
		if err := json.Unmarshal(raw, page); err != nil {
			return nil, fmt.Errorf("decode page: %w", err)
		}
		if page.Content == nil {
			page.Content = []T{}
		}
		return page, nil
	}
}

func firstNonSpace(raw []byte) byte {
	for _, b := range raw {
		switch b {
		case ' ', '\t', '\n', '\r':
			continue
		default:
			return b
		}
	}
	return 0
}
