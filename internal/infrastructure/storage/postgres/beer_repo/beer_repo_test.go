package beer_repo

import (
	"context"
	"encoding/json"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"beercatalog/internal/core/apperror"
	"beercatalog/internal/core/id"
	"beercatalog/internal/core/types"
	"beercatalog/internal/domain/beer"
	"beercatalog/internal/infrastructure/storage/postgres"
	"beercatalog/pkg/logger"
)

// quietContext carries a no-op logger so service logging stays out of test output.
func quietContext() context.Context {
	return logger.WithLogger(context.Background(), logger.Nop())
}

const testSchema = `
CREATE TABLE IF NOT EXISTS beer (
	id               uuid PRIMARY KEY,
	version          integer        NOT NULL,
	created_at       timestamptz    NOT NULL,
	updated_at       timestamptz    NOT NULL,
	beer_name        varchar(50)    NOT NULL,
	beer_style       varchar(20)    NOT NULL,
	upc              varchar(255)   NOT NULL,
	price            numeric(19, 2) NOT NULL,
	quantity_on_hand integer
)`

const testAuditSchema = `
CREATE TABLE IF NOT EXISTS sys_audit (
	id                 uuid PRIMARY KEY,
	entity_type        text        NOT NULL,
	entity_id          uuid        NOT NULL,
	action             text        NOT NULL,
	changes            jsonb,
	changes_compressed bytea,
	compression_algo   text        NOT NULL DEFAULT 'none',
	request_id         text        NOT NULL DEFAULT '',
	created_at         timestamptz NOT NULL
)`

// setup connects to DATABASE_URL and returns a service over an empty beer table.
func setup(t *testing.T) (*beer.Service, *Repo) {
	t.Helper()

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL not set")
	}

	ctx := quietContext()
	pool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(dsn))
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	for _, ddl := range []string{testSchema, testAuditSchema} {
		_, err = pool.Exec(ctx, ddl)
		require.NoError(t, err)
	}

	txm := postgres.NewTxManager(pool)
	repo := New(txm)
	require.NoError(t, repo.DeleteAll(ctx))

	return beer.NewService(repo, txm), repo
}

func TestRepo_CRUD(t *testing.T) {
	svc, _ := setup(t)
	ctx := quietContext()

	qty := 140
	created, err := svc.Create(ctx, &beer.Beer{
		Name:           "Ninja Porter",
		Style:          beer.StylePorter,
		UPC:            "123",
		Price:          types.MustMoney("12.00"),
		QuantityOnHand: &qty,
	})
	require.NoError(t, err)

	got, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.Name, got.Name)
	assert.Equal(t, created.Style, got.Style)
	assert.True(t, created.Price.Equal(got.Price))
	assert.Equal(t, 140, *got.QuantityOnHand)
	assert.True(t, created.CreatedAt.Equal(got.CreatedAt))

	patched, err := svc.Patch(ctx, created.ID, beer.Patch{Name: types.Some("Well")})
	require.NoError(t, err)
	assert.Equal(t, 2, patched.Version)

	shown, err := svc.List(ctx, beer.ListFilter{Name: "WELL"})
	require.NoError(t, err)
	require.Len(t, shown, 1)
	assert.Nil(t, shown[0].QuantityOnHand)

	deleted, err := svc.Delete(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Well", deleted.Name)

	_, err = svc.Delete(ctx, created.ID)
	assert.True(t, apperror.IsNotFound(err))
}

func TestRepo_NotFound(t *testing.T) {
	_, repo := setup(t)
	ctx := quietContext()

	_, err := repo.FindByID(ctx, id.New())
	assert.True(t, apperror.IsNotFound(err))

	err = repo.DeleteByID(ctx, id.New())
	assert.True(t, apperror.IsNotFound(err))
}

func TestRepo_NameMatchEscapesWildcards(t *testing.T) {
	svc, _ := setup(t)
	ctx := quietContext()

	for _, name := range []string{"100% Pils", "1000 Pils"} {
		_, err := svc.Create(ctx, &beer.Beer{Name: name, Style: beer.StylePilsner, UPC: "1", Price: types.MustMoney("1")})
		require.NoError(t, err)
	}

	got, err := svc.List(ctx, beer.ListFilter{Name: "100%"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "100% Pils", got[0].Name)
}

func TestRepo_AuditHistory(t *testing.T) {
	svc, repo := setup(t)
	ctx := quietContext()

	audit, err := postgres.NewAuditService(repo.txm)
	require.NoError(t, err)
	t.Cleanup(audit.Close)
	svc.Hooks().OnAll(audit.Hook())

	created, err := svc.Create(ctx, &beer.Beer{Name: "Galaxy Cat", Style: beer.StylePaleAle, UPC: "9", Price: types.MustMoney("9.99")})
	require.NoError(t, err)
	_, err = svc.Patch(ctx, created.ID, beer.Patch{UPC: types.Some("10")})
	require.NoError(t, err)
	_, err = svc.Delete(ctx, created.ID)
	require.NoError(t, err)

	entries, err := audit.History(ctx, created.ID, 10)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	assert.Equal(t, beer.ActionDelete, entries[0].Action)
	assert.Equal(t, beer.ActionPatch, entries[1].Action)
	assert.Equal(t, beer.ActionCreate, entries[2].Action)

	var changes map[string]map[string]any
	require.NoError(t, json.Unmarshal(entries[1].Changes, &changes))
	assert.Equal(t, map[string]any{"old": "9", "new": "10"}, changes["upc"])
	assert.Equal(t, map[string]any{"old": float64(1), "new": float64(2)}, changes["version"])
	assert.NotContains(t, changes, "beerName")
}
