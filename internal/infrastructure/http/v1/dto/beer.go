package dto

import (
	"encoding/json"
	"strings"
	"time"

	"beercatalog/internal/core/apperror"
	"beercatalog/internal/core/types"
	"beercatalog/internal/domain/beer"
)

// --- Request DTOs ---

// BeerRequest is the body of create and full-replace requests.
// Server-owned fields (id, version, timestamps) are accepted and ignored.
type BeerRequest struct {
	BeerName       string       `json:"beerName"`
	BeerStyle      string       `json:"beerStyle"`
	UPC            string       `json:"upc"`
	Price          *types.Money `json:"price"`
	QuantityOnHand *int         `json:"quantityOnHand"`
}

// ToEntity converts the request to a domain record. Field rules are checked by
// the service; only the missing price, which the record cannot represent, is reported here.
func (r *BeerRequest) ToEntity() (*beer.Beer, error) {
	if r.Price == nil {
		return nil, apperror.NewValidation("price is required").WithDetail("field", "price")
	}
	return &beer.Beer{
		Name:           r.BeerName,
		Style:          normalizeStyle(r.BeerStyle),
		UPC:            r.UPC,
		Price:          *r.Price,
		QuantityOnHand: r.QuantityOnHand,
	}, nil
}

// PatchBeerRequest is the body of a partial update. Absent and null fields are left unchanged.
type PatchBeerRequest struct {
	BeerName       types.Optional[string]      `json:"beerName"`
	BeerStyle      types.Optional[string]      `json:"beerStyle"`
	UPC            types.Optional[string]      `json:"upc"`
	Price          types.Optional[types.Money] `json:"price"`
	QuantityOnHand types.Optional[int]         `json:"quantityOnHand"`
}

// ToPatch converts the request to a domain patch.
func (r *PatchBeerRequest) ToPatch() beer.Patch {
	p := beer.Patch{
		Name:           r.BeerName,
		UPC:            r.UPC,
		Price:          r.Price,
		QuantityOnHand: r.QuantityOnHand,
	}
	if s, ok := r.BeerStyle.Get(); ok {
		p.Style = types.Some(normalizeStyle(s))
	}
	return p
}

// normalizeStyle upper-cases the style name; unknown names are left for validation to reject.
func normalizeStyle(s string) beer.Style {
	return beer.Style(strings.ToUpper(strings.TrimSpace(s)))
}

// --- Response DTOs ---

// BeerResponse is the transfer shape of a beer.
type BeerResponse struct {
	ID             string      `json:"id"`
	Version        int         `json:"version"`
	BeerName       string      `json:"beerName"`
	BeerStyle      beer.Style  `json:"beerStyle"`
	UPC            string      `json:"upc"`
	Price          json.Number `json:"price"`
	QuantityOnHand *int        `json:"quantityOnHand,omitempty"`
	CreatedDate    time.Time   `json:"createdDate"`
	UpdateDate     time.Time   `json:"updateDate"`
}

// FromBeer maps a domain record to its transfer shape.
func FromBeer(b *beer.Beer) BeerResponse {
	return BeerResponse{
		ID:             b.ID.String(),
		Version:        b.Version,
		BeerName:       b.Name,
		BeerStyle:      b.Style,
		UPC:            b.UPC,
		Price:          json.Number(b.Price.String()),
		QuantityOnHand: b.QuantityOnHand,
		CreatedDate:    b.CreatedAt,
		UpdateDate:     b.UpdatedAt,
	}
}

// FromBeers maps a list; the result is never nil so it renders as [].
func FromBeers(beers []*beer.Beer) []BeerResponse {
	out := make([]BeerResponse, 0, len(beers))
	for _, b := range beers {
		out = append(out, FromBeer(b))
	}
	return out
}
