package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/nzaccagnino/folio/internal/model"
)

type scanner interface {
	Scan(dest ...any) error
}

// tableDef maps one entity kind onto its table. columns lists the writable
// columns in the order values returns them; id and created_at are implicit.
type tableDef[T model.Entity] struct {
	name    string
	columns []string
	values  func(T) []any
	scan    func(scanner) (T, error)
	stamp   func(T, string, time.Time) T
}

type Table[T model.Entity] struct {
	db  *ServerDB
	def tableDef[T]
}

func newTable[T model.Entity](db *ServerDB, def tableDef[T]) *Table[T] {
	return &Table[T]{db: db, def: def}
}

func (t *Table[T]) Name() string {
	return t.def.name
}

func (t *Table[T]) selectColumns() string {
	return "id, created_at, " + strings.Join(t.def.columns, ", ")
}

// List returns every row ordered by created_at, newest first unless ascending.
func (t *Table[T]) List(ctx context.Context, ascending bool) ([]T, error) {
	dir := "DESC"
	if ascending {
		dir = "ASC"
	}
	query := fmt.Sprintf(`SELECT %s FROM %s ORDER BY created_at %s`, t.selectColumns(), t.def.name, dir)

	rows, err := t.db.conn.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", t.def.name, err)
	}
	defer rows.Close()

	items := []T{}
	for rows.Next() {
		v, err := t.def.scan(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", t.def.name, err)
		}
		items = append(items, v)
	}
	return items, rows.Err()
}

func (t *Table[T]) Get(ctx context.Context, id string) (T, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = ?`, t.selectColumns(), t.def.name)

	v, err := t.def.scan(t.db.conn.QueryRowContext(ctx, t.db.rebind(query), id))
	if errors.Is(err, sql.ErrNoRows) {
		return v, ErrNotFound
	}
	if err != nil {
		return v, fmt.Errorf("failed to get %s: %w", t.def.name, err)
	}
	return v, nil
}

// Insert stores v under a fresh id and creation time and returns the stored row.
func (t *Table[T]) Insert(ctx context.Context, v T) (T, error) {
	v = t.def.stamp(v, t.db.newID(), t.db.now())

	cols := append([]string{"id", "created_at"}, t.def.columns...)
	args := append([]any{v.GetID(), v.GetCreatedAt()}, t.def.values(v)...)
	query := fmt.Sprintf(`INSERT INTO %s (%s) VALUES (%s)`,
		t.def.name, strings.Join(cols, ", "), placeholders(len(cols)))

	if _, err := t.db.conn.ExecContext(ctx, t.db.rebind(query), args...); err != nil {
		var zero T
		return zero, fmt.Errorf("failed to create %s: %w", t.def.name, err)
	}
	return v, nil
}

// Update overwrites the writable columns of row id and returns the stored row.
func (t *Table[T]) Update(ctx context.Context, id string, v T) (T, error) {
	sets := make([]string, len(t.def.columns))
	for i, c := range t.def.columns {
		sets[i] = c + " = ?"
	}
	query := fmt.Sprintf(`UPDATE %s SET %s WHERE id = ?`, t.def.name, strings.Join(sets, ", "))
	args := append(t.def.values(v), id)

	res, err := t.db.conn.ExecContext(ctx, t.db.rebind(query), args...)
	if err != nil {
		var zero T
		return zero, fmt.Errorf("failed to update %s: %w", t.def.name, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		var zero T
		return zero, ErrNotFound
	}

	return t.Get(ctx, id)
}

func (t *Table[T]) Delete(ctx context.Context, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = ?`, t.def.name)

	res, err := t.db.conn.ExecContext(ctx, t.db.rebind(query), id)
	if err != nil {
		return fmt.Errorf("failed to delete %s: %w", t.def.name, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

var notesDef = tableDef[model.Note]{
	name:    model.TableNotes,
	columns: []string{"title", "content", "tag"},
	values: func(n model.Note) []any {
		return []any{n.Title, n.Content, string(n.Tag)}
	},
	scan: func(s scanner) (model.Note, error) {
		var n model.Note
		err := s.Scan(&n.ID, &n.CreatedAt, &n.Title, &n.Content, &n.Tag)
		return n, err
	},
	stamp: func(n model.Note, id string, at time.Time) model.Note {
		n.ID, n.CreatedAt = id, at
		return n
	},
}

var projectsDef = tableDef[model.Project]{
	name:    model.TableProjects,
	columns: []string{"name", "description", "status", "tech", "url", "emoji"},
	values: func(p model.Project) []any {
		return []any{p.Name, p.Description, string(p.Status), p.Tech, p.URL, p.Emoji}
	},
	scan: func(s scanner) (model.Project, error) {
		var p model.Project
		err := s.Scan(&p.ID, &p.CreatedAt, &p.Name, &p.Description, &p.Status, &p.Tech, &p.URL, &p.Emoji)
		return p, err
	},
	stamp: func(p model.Project, id string, at time.Time) model.Project {
		p.ID, p.CreatedAt = id, at
		return p
	},
}

var servicesDef = tableDef[model.HomelabService]{
	name:    model.TableHomelabServices,
	columns: []string{"name", "url", "description", "category", "emoji"},
	values: func(s model.HomelabService) []any {
		return []any{s.Name, s.URL, s.Description, string(s.Category), s.Emoji}
	},
	scan: func(sc scanner) (model.HomelabService, error) {
		var s model.HomelabService
		err := sc.Scan(&s.ID, &s.CreatedAt, &s.Name, &s.URL, &s.Description, &s.Category, &s.Emoji)
		return s, err
	},
	stamp: func(s model.HomelabService, id string, at time.Time) model.HomelabService {
		s.ID, s.CreatedAt = id, at
		return s
	},
}

var gearDef = tableDef[model.GearItem]{
	name:    model.TableTrailGear,
	columns: []string{"name", "brand", "category", "status", "notes"},
	values: func(g model.GearItem) []any {
		return []any{g.Name, g.Brand, string(g.Category), string(g.Status), g.Notes}
	},
	scan: func(s scanner) (model.GearItem, error) {
		var g model.GearItem
		err := s.Scan(&g.ID, &g.CreatedAt, &g.Name, &g.Brand, &g.Category, &g.Status, &g.Notes)
		return g, err
	},
	stamp: func(g model.GearItem, id string, at time.Time) model.GearItem {
		g.ID, g.CreatedAt = id, at
		return g
	},
}
