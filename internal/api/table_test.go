package api

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nzaccagnino/folio/internal/auth"
	"github.com/nzaccagnino/folio/internal/db"
	"github.com/nzaccagnino/folio/internal/logging"
	"github.com/nzaccagnino/folio/internal/model"
	"github.com/nzaccagnino/folio/internal/server"
)

func newBackend(t *testing.T) *httptest.Server {
	t.Helper()
	ctx := context.Background()
	database, err := db.NewServerDB(ctx, db.DriverSQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })

	_, err = database.SetOwner(ctx, "owner@example.com", "correct horse")
	require.NoError(t, err)

	s := server.New(database, auth.NewJWTManager("secret", time.Hour), logging.Discard())
	t.Cleanup(s.Close)

	srv := httptest.NewServer(s)
	t.Cleanup(srv.Close)
	return srv
}

func TestTableAgainstServer(t *testing.T) {
	srv := newBackend(t)
	ctx := context.Background()
	c := NewClient(srv.URL, &memoryStore{}, logging.Discard())
	gear := NewTable[model.GearItem](c, model.TableTrailGear)

	_, err := gear.Insert(ctx, model.GearItem{Name: "Flasque", Category: model.GearHydration, Status: model.GearActive})
	var werr *WriteError
	require.True(t, errors.As(err, &werr))
	assert.Equal(t, OpInsert, werr.Op)
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = c.SignInWithPassword(ctx, "owner@example.com", "correct horse")
	require.NoError(t, err)

	first, err := gear.Insert(ctx, model.GearItem{Name: "Flasque", Category: model.GearHydration, Status: model.GearActive})
	require.NoError(t, err)
	assert.NotEmpty(t, first.ID)

	second, err := gear.Insert(ctx, model.GearItem{Name: "Veste", Brand: "Arc'teryx", Category: model.GearClothing, Status: model.GearBackup})
	require.NoError(t, err)

	rows, err := gear.List(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, second.ID, rows[0].ID)

	fields := model.GearPolicy.Fields(first)
	fields.Status = model.GearReplace
	updated, err := gear.Update(ctx, first.ID, fields)
	require.NoError(t, err)
	assert.Equal(t, model.GearReplace, updated.Status)
	assert.Equal(t, first.ID, updated.ID)

	require.NoError(t, gear.Delete(ctx, first.ID))
	err = gear.Delete(ctx, first.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = gear.Update(ctx, first.ID, fields)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListFailureIsFetchError(t *testing.T) {
	c := NewClient("http://127.0.0.1:1", nil, logging.Discard())
	_, err := NewTable[model.Project](c, model.TableProjects).List(context.Background())

	var ferr *FetchError
	require.True(t, errors.As(err, &ferr))
	assert.Equal(t, model.TableProjects, ferr.Table)
}

func TestUnknownTableIsNotFound(t *testing.T) {
	srv := newBackend(t)
	c := NewClient(srv.URL, nil, logging.Discard())

	_, err := NewTable[model.Note](c, "recipes").List(context.Background())
	assert.ErrorIs(t, err, ErrNotFound)
}
