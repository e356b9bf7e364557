package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/nzaccagnino/folio/internal/model"
)

type listResponse[T any] struct {
	Rows []T `json:"rows"`
}

// Table is the remote gateway for one collection. Every call is a single
// round trip with no retry.
type Table[T model.Entity] struct {
	c    *Client
	name string
}

func NewTable[T model.Entity](c *Client, name string) *Table[T] {
	return &Table[T]{c: c, name: name}
}

func (t *Table[T]) Name() string {
	return t.name
}

func (t *Table[T]) path() string {
	return "/api/" + url.PathEscape(t.name)
}

// List returns every row, newest first.
func (t *Table[T]) List(ctx context.Context) ([]T, error) {
	var resp listResponse[T]
	if err := t.c.get(ctx, t.path()+"?order=created_at.desc", &resp); err != nil {
		return nil, &FetchError{Table: t.name, Err: err}
	}
	if resp.Rows == nil {
		return []T{}, nil
	}
	return resp.Rows, nil
}

func (t *Table[T]) Insert(ctx context.Context, fields T) (T, error) {
	var row T
	if err := t.c.do(ctx, http.MethodPost, t.path(), fields, &row); err != nil {
		var zero T
		return zero, &WriteError{Table: t.name, Op: OpInsert, Err: err}
	}
	return row, nil
}

func (t *Table[T]) Update(ctx context.Context, id string, fields T) (T, error) {
	var row T
	if err := t.c.do(ctx, http.MethodPatch, t.path()+"/"+url.PathEscape(id), fields, &row); err != nil {
		var zero T
		return zero, &WriteError{Table: t.name, Op: OpUpdate, ID: id, Err: err}
	}
	return row, nil
}

func (t *Table[T]) Delete(ctx context.Context, id string) error {
	if err := t.c.do(ctx, http.MethodDelete, t.path()+"/"+url.PathEscape(id), nil, nil); err != nil {
		return &WriteError{Table: t.name, Op: OpDelete, ID: id, Err: err}
	}
	return nil
}
