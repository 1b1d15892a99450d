package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"

	"beercatalog/internal/core/apperror"
	"beercatalog/internal/domain/beer"
	"beercatalog/internal/infrastructure/http/v1/dto"
)

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 500
)

// BeerHandler serves the beer catalog resource.
type BeerHandler struct {
	*BaseHandler
	service  *beer.Service
	history  beer.HistoryReader
	basePath string
}

// NewBeerHandler creates a new beer handler. basePath is the mount point used
// to build Location headers; history may be nil.
func NewBeerHandler(base *BaseHandler, service *beer.Service, history beer.HistoryReader, basePath string) *BeerHandler {
	return &BeerHandler{
		BaseHandler: base,
		service:     service,
		history:     history,
		basePath:    strings.TrimRight(basePath, "/"),
	}
}

// HasHistory reports whether change history can be served.
func (h *BeerHandler) HasHistory() bool {
	return h.history != nil
}

// List handles GET /beers.
func (h *BeerHandler) List(c *gin.Context) {
	filter, err := parseListFilter(c)
	if err != nil {
		h.Error(c, err)
		return
	}

	beers, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromBeers(beers))
}

// parseListFilter reads beerName, beerStyle and showInventory. Blank values count as absent.
func parseListFilter(c *gin.Context) (beer.ListFilter, error) {
	var f beer.ListFilter

	f.Name = strings.TrimSpace(c.Query("beerName"))

	if raw := strings.TrimSpace(c.Query("beerStyle")); raw != "" {
		style, err := beer.ParseStyle(raw)
		if err != nil {
			return f, err
		}
		f.Style = &style
	}

	if raw := strings.TrimSpace(c.Query("showInventory")); raw != "" {
		switch strings.ToLower(raw) {
		case "true":
			v := true
			f.ShowInventory = &v
		case "false":
			v := false
			f.ShowInventory = &v
		default:
			return f, apperror.NewInvalidInput("showInventory", "must be true or false")
		}
	}

	return f, nil
}

// Get handles GET /beers/:id.
func (h *BeerHandler) Get(c *gin.Context) {
	beerID, ok := h.ParseID(c)
	if !ok {
		return
	}

	b, err := h.service.Get(c.Request.Context(), beerID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromBeer(b))
}

// Create handles POST /beers.
func (h *BeerHandler) Create(c *gin.Context) {
	var req dto.BeerRequest
	if !h.BindJSON(c, &req) {
		return
	}

	in, err := req.ToEntity()
	if err != nil {
		h.Error(c, err)
		return
	}

	created, err := h.service.Create(c.Request.Context(), in)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, h.basePath+"/"+created.ID.String(), dto.FromBeer(created))
}

// Update handles PUT /beers/:id.
func (h *BeerHandler) Update(c *gin.Context) {
	beerID, ok := h.ParseID(c)
	if !ok {
		return
	}

	var req dto.BeerRequest
	if !h.BindJSON(c, &req) {
		return
	}

	ctx := c.Request.Context()
	in, err := req.ToEntity()
	if err != nil {
		// An unknown id is reported ahead of a malformed body.
		if _, getErr := h.service.Get(ctx, beerID); getErr != nil {
			h.Error(c, getErr)
			return
		}
		h.Error(c, err)
		return
	}

	updated, err := h.service.Update(ctx, beerID, in)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromBeer(updated))
}

// Patch handles PATCH /beers/:id.
func (h *BeerHandler) Patch(c *gin.Context) {
	beerID, ok := h.ParseID(c)
	if !ok {
		return
	}

	var req dto.PatchBeerRequest
	if !h.BindJSON(c, &req) {
		return
	}

	patched, err := h.service.Patch(c.Request.Context(), beerID, req.ToPatch())
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromBeer(patched))
}

// Delete handles DELETE /beers/:id and returns the removed record.
func (h *BeerHandler) Delete(c *gin.Context) {
	beerID, ok := h.ParseID(c)
	if !ok {
		return
	}

	deleted, err := h.service.Delete(c.Request.Context(), beerID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromBeer(deleted))
}

// History handles GET /beers/:id/history.
func (h *BeerHandler) History(c *gin.Context) {
	beerID, ok := h.ParseID(c)
	if !ok {
		return
	}

	limit := h.ParseIntQuery(c, "limit", defaultHistoryLimit)
	if limit <= 0 || limit > maxHistoryLimit {
		limit = defaultHistoryLimit
	}

	// Deleted beers keep their history, so the id is not looked up first.
	entries, err := h.history.History(c.Request.Context(), beerID, limit)
	if err != nil {
		h.Error(c, err)
		return
	}
	if entries == nil {
		entries = []beer.HistoryEntry{}
	}

	h.OK(c, dto.HistoryResponse{Items: entries})
}
