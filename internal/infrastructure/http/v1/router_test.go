package v1_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"beercatalog/internal/core/apperror"
	"beercatalog/internal/core/id"
	"beercatalog/internal/domain/beer"
	v1 "beercatalog/internal/infrastructure/http/v1"
	"beercatalog/internal/infrastructure/storage/memory"
)

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

type stubHistory struct {
	entries []beer.HistoryEntry
	gotID   id.ID
}

func (s *stubHistory) History(_ context.Context, beerID id.ID, _ int) ([]beer.HistoryEntry, error) {
	s.gotID = beerID
	return s.entries, nil
}

type testAPI struct {
	t      *testing.T
	router http.Handler
}

func newAPI(t *testing.T, mutate ...func(cfg *v1.RouterConfig)) *testAPI {
	t.Helper()
	store := memory.MustOpen()
	t.Cleanup(store.Close)

	cfg := v1.RouterConfig{
		BeerService: beer.NewService(memory.NewBeerRepo(store), memory.NewTxManager(store)),
		Ready:       store,
		Driver:      "memory",
	}
	for _, m := range mutate {
		m(&cfg)
	}
	return &testAPI{t: t, router: v1.NewRouter(cfg)}
}

func (a *testAPI) do(method, path, body string) *httptest.ResponseRecorder {
	a.t.Helper()
	var reader *bytes.Reader
	if body != "" {
		reader = bytes.NewReader([]byte(body))
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

const ninjaPorterJSON = `{"beerName":"Ninja Porter","beerStyle":"PORTER","upc":"123","price":12.0,"quantityOnHand":140}`

func (a *testAPI) create(body string) map[string]any {
	a.t.Helper()
	w := a.do(http.MethodPost, v1.DefaultBeerPath, body)
	require.Equal(a.t, http.StatusCreated, w.Code, w.Body.String())
	return decode[map[string]any](a.t, w)
}

func beerURL(beerID any) string {
	return v1.DefaultBeerPath + "/" + beerID.(string)
}

func TestCreate(t *testing.T) {
	api := newAPI(t)

	w := api.do(http.MethodPost, v1.DefaultBeerPath, ninjaPorterJSON)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	body := decode[map[string]any](t, w)
	assert.NotEmpty(t, body["id"])
	assert.Equal(t, float64(1), body["version"])
	assert.Equal(t, "Ninja Porter", body["beerName"])
	assert.Equal(t, "PORTER", body["beerStyle"])
	assert.Equal(t, "123", body["upc"])
	assert.Equal(t, float64(12), body["price"])
	assert.Equal(t, float64(140), body["quantityOnHand"])
	assert.NotEmpty(t, body["createdDate"])
	assert.NotEmpty(t, body["updateDate"])
	assert.Equal(t, beerURL(body["id"]), w.Header().Get("Location"))
}

func TestCreate_StyleIsCaseInsensitive(t *testing.T) {
	api := newAPI(t)

	body := api.create(`{"beerName":"Pils","beerStyle":"pilsner","upc":"1","price":"3.50"}`)

	assert.Equal(t, "PILSNER", body["beerStyle"])
	assert.Equal(t, 3.5, body["price"])
	assert.NotContains(t, body, "quantityOnHand")
}

func TestCreate_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"empty name", `{"beerName":"","beerStyle":"ALE","upc":"1","price":1}`},
		{"long name", `{"beerName":"` + strings.Repeat("x", 51) + `","beerStyle":"ALE","upc":"1","price":1}`},
		{"unknown style", `{"beerName":"a","beerStyle":"CIDER","upc":"1","price":1}`},
		{"missing upc", `{"beerName":"a","beerStyle":"ALE","price":1}`},
		{"missing price", `{"beerName":"a","beerStyle":"ALE","upc":"1"}`},
		{"negative quantity", `{"beerName":"a","beerStyle":"ALE","upc":"1","price":1,"quantityOnHand":-1}`},
		{"price beyond cents", `{"beerName":"a","beerStyle":"ALE","upc":"1","price":12.345}`},
		{"price out of range", `{"beerName":"a","beerStyle":"ALE","upc":"1","price":1e20}`},
		{"quantity out of range", `{"beerName":"a","beerStyle":"ALE","upc":"1","price":1,"quantityOnHand":3000000000}`},
		{"malformed json", `{"beerName":`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := newAPI(t)

			w := api.do(http.MethodPost, v1.DefaultBeerPath, tt.body)

			assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
			assert.Equal(t, apperror.CodeValidation, decode[map[string]any](t, w)["code"])

			list := decode[[]map[string]any](t, api.do(http.MethodGet, v1.DefaultBeerPath, ""))
			assert.Empty(t, list)
		})
	}
}

func TestGet(t *testing.T) {
	api := newAPI(t)
	created := api.create(ninjaPorterJSON)

	w := api.do(http.MethodGet, beerURL(created["id"]), "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, created, decode[map[string]any](t, w))
}

func TestGet_Errors(t *testing.T) {
	api := newAPI(t)

	w := api.do(http.MethodGet, v1.DefaultBeerPath+"/"+id.New().String(), "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, apperror.CodeNotFound, decode[map[string]any](t, w)["code"])

	w = api.do(http.MethodGet, v1.DefaultBeerPath+"/not-a-uuid", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, apperror.CodeInvalidInput, decode[map[string]any](t, w)["code"])
}

func TestUpdate(t *testing.T) {
	api := newAPI(t)
	created := api.create(ninjaPorterJSON)

	w := api.do(http.MethodPut, beerURL(created["id"]),
		`{"beerName":"Ninja Stout","beerStyle":"STOUT","upc":"456","price":9.99}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	body := decode[map[string]any](t, w)
	assert.Equal(t, created["id"], body["id"])
	assert.Equal(t, float64(2), body["version"])
	assert.Equal(t, "Ninja Stout", body["beerName"])
	assert.Equal(t, "STOUT", body["beerStyle"])
	assert.Equal(t, 9.99, body["price"])
	assert.NotContains(t, body, "quantityOnHand")
	assert.Equal(t, created["createdDate"], body["createdDate"])
}

func TestUpdate_NotFoundWinsOverValidation(t *testing.T) {
	api := newAPI(t)
	missing := v1.DefaultBeerPath + "/" + id.New().String()

	w := api.do(http.MethodPut, missing, `{"beerName":"","beerStyle":"ALE","upc":"1","price":1}`)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = api.do(http.MethodPut, missing, `{"beerName":"a","beerStyle":"ALE","upc":"1"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUpdate_InvalidLeavesRecord(t *testing.T) {
	api := newAPI(t)
	created := api.create(ninjaPorterJSON)

	w := api.do(http.MethodPut, beerURL(created["id"]), `{"beerName":"a","beerStyle":"ALE","upc":"1"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = api.do(http.MethodGet, beerURL(created["id"]), "")
	assert.Equal(t, created, decode[map[string]any](t, w))
}

func TestPatch(t *testing.T) {
	api := newAPI(t)
	created := api.create(ninjaPorterJSON)

	w := api.do(http.MethodPatch, beerURL(created["id"]), `{"beerName":"Renamed","upc":null}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	body := decode[map[string]any](t, w)
	assert.Equal(t, "Renamed", body["beerName"])
	assert.Equal(t, "PORTER", body["beerStyle"])
	assert.Equal(t, "123", body["upc"])
	assert.Equal(t, float64(12), body["price"])
	assert.Equal(t, float64(140), body["quantityOnHand"])
	assert.Equal(t, float64(2), body["version"])
}

func TestPatch_Errors(t *testing.T) {
	api := newAPI(t)
	created := api.create(ninjaPorterJSON)

	w := api.do(http.MethodPatch, beerURL(created["id"]), `{"beerName":""}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = api.do(http.MethodPatch, beerURL(created["id"]), `{"beerStyle":"cider"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = api.do(http.MethodPatch, v1.DefaultBeerPath+"/"+id.New().String(), `{"beerName":""}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDelete(t *testing.T) {
	api := newAPI(t)
	created := api.create(ninjaPorterJSON)

	w := api.do(http.MethodDelete, beerURL(created["id"]), "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, created, decode[map[string]any](t, w))

	assert.Equal(t, http.StatusNotFound, api.do(http.MethodGet, beerURL(created["id"]), "").Code)
	assert.Equal(t, http.StatusNotFound, api.do(http.MethodDelete, beerURL(created["id"]), "").Code)
}

func TestList(t *testing.T) {
	api := newAPI(t)
	api.create(ninjaPorterJSON)
	api.create(`{"beerName":"Galaxy Cat","beerStyle":"PALE_ALE","upc":"2","price":9,"quantityOnHand":20}`)
	api.create(`{"beerName":"Mango Bobs","beerStyle":"ALE","upc":"3","price":10,"quantityOnHand":5}`)
	api.create(`{"beerName":"100%_Pure","beerStyle":"ALE","upc":"4","price":11}`)

	names := func(w *httptest.ResponseRecorder) []string {
		t.Helper()
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		var out []string
		for _, b := range decode[[]map[string]any](t, w) {
			out = append(out, b["beerName"].(string))
		}
		return out
	}

	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{"all", "", []string{"Ninja Porter", "Galaxy Cat", "Mango Bobs", "100%_Pure"}},
		{"blank name is absent", "?beerName=%20%20", []string{"Ninja Porter", "Galaxy Cat", "Mango Bobs", "100%_Pure"}},
		{"name substring any case", "?beerName=GALAXY", []string{"Galaxy Cat"}},
		{"style any case", "?beerStyle=ale", []string{"Mango Bobs", "100%_Pure"}},
		{"name and style", "?beerName=o&beerStyle=ALE", []string{"Mango Bobs"}},
		{"wildcards are literal", "?beerName=%25_", []string{"100%_Pure"}},
		{"no match", "?beerName=zzz", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ElementsMatch(t, tt.want, names(api.do(http.MethodGet, v1.DefaultBeerPath+tt.query, "")))
		})
	}
}

func TestList_InventoryVisibility(t *testing.T) {
	api := newAPI(t)
	api.create(ninjaPorterJSON)

	tests := []struct {
		query   string
		visible bool
	}{
		{"", false},
		{"?showInventory=false", false},
		{"?showInventory=FALSE", false},
		{"?showInventory=true", true},
		{"?showInventory=True", true},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			w := api.do(http.MethodGet, v1.DefaultBeerPath+tt.query, "")
			require.Equal(t, http.StatusOK, w.Code)

			list := decode[[]map[string]any](t, w)
			require.Len(t, list, 1)
			if tt.visible {
				assert.Equal(t, float64(140), list[0]["quantityOnHand"])
			} else {
				assert.NotContains(t, list[0], "quantityOnHand")
			}
		})
	}

	// Redaction applies to the list response only.
	list := decode[[]map[string]any](t, api.do(http.MethodGet, v1.DefaultBeerPath, ""))
	w := api.do(http.MethodGet, beerURL(list[0]["id"]), "")
	assert.Equal(t, float64(140), decode[map[string]any](t, w)["quantityOnHand"])
}

func TestList_BadQuery(t *testing.T) {
	api := newAPI(t)

	for _, q := range []string{"?showInventory=yes", "?showInventory=1", "?beerStyle=CIDER"} {
		w := api.do(http.MethodGet, v1.DefaultBeerPath+q, "")
		assert.Equal(t, http.StatusBadRequest, w.Code, q)
	}
}

func TestList_EmptyIsArray(t *testing.T) {
	api := newAPI(t)

	w := api.do(http.MethodGet, v1.DefaultBeerPath, "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestCustomBeerPath(t *testing.T) {
	api := newAPI(t, func(cfg *v1.RouterConfig) { cfg.BeerPath = "/beers/" })

	w := api.do(http.MethodPost, "/beers", ninjaPorterJSON)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.True(t, strings.HasPrefix(w.Header().Get("Location"), "/beers/"))
	assert.Equal(t, http.StatusNotFound, api.do(http.MethodGet, v1.DefaultBeerPath, "").Code)
}

func TestHistory(t *testing.T) {
	t.Run("disabled", func(t *testing.T) {
		api := newAPI(t)
		w := api.do(http.MethodGet, v1.DefaultBeerPath+"/"+id.New().String()+"/history", "")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("enabled", func(t *testing.T) {
		hist := &stubHistory{entries: []beer.HistoryEntry{{ID: id.New(), Action: beer.ActionCreate}}}
		api := newAPI(t, func(cfg *v1.RouterConfig) { cfg.History = hist })
		beerID := id.New()

		w := api.do(http.MethodGet, v1.DefaultBeerPath+"/"+beerID.String()+"/history", "")

		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Equal(t, beerID, hist.gotID)
		items := decode[map[string][]map[string]any](t, w)["items"]
		require.Len(t, items, 1)
		assert.Equal(t, "create", items[0]["action"])
	})
}

func TestHealth(t *testing.T) {
	api := newAPI(t)
	assert.Equal(t, http.StatusOK, api.do(http.MethodGet, "/health/live", "").Code)
	assert.Equal(t, http.StatusOK, api.do(http.MethodGet, "/health/ready", "").Code)

	down := newAPI(t, func(cfg *v1.RouterConfig) {
		cfg.Ready = pingFunc(func(context.Context) error { return errors.New("down") })
	})
	assert.Equal(t, http.StatusServiceUnavailable, down.do(http.MethodGet, "/health/ready", "").Code)
}
