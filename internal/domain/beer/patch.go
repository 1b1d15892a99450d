package beer

import (
	"beercatalog/internal/core/types"
)

// Patch is a partial update. Every field is independently optional;
// only present fields overwrite the stored record. A present empty
// string is a value, not an absence.
type Patch struct {
	Name           types.Optional[string]
	Style          types.Optional[Style]
	UPC            types.Optional[string]
	Price          types.Optional[types.Money]
	QuantityOnHand types.Optional[int]
}

// ApplyTo merges the present fields into b and returns the JSON names of
// the fields it overwrote. Server-owned fields are never touched.
func (p Patch) ApplyTo(b *Beer) []string {
	var applied []string

	if v, ok := p.Name.Get(); ok {
		b.Name = v
		applied = append(applied, "beerName")
	}
	if v, ok := p.Style.Get(); ok {
		b.Style = v
		applied = append(applied, "beerStyle")
	}
	if v, ok := p.UPC.Get(); ok {
		b.UPC = v
		applied = append(applied, "upc")
	}
	if v, ok := p.Price.Get(); ok {
		b.Price = v
		applied = append(applied, "price")
	}
	if v, ok := p.QuantityOnHand.Get(); ok {
		q := v
		b.QuantityOnHand = &q
		applied = append(applied, "quantityOnHand")
	}

	return applied
}

// Replace overwrites every mutable field of b with the value from in.
// ID, version and timestamps stay with b.
func Replace(b *Beer, in *Beer) {
	b.Name = in.Name
	b.Style = in.Style
	b.UPC = in.UPC
	b.Price = in.Price
	b.QuantityOnHand = nil
	if in.QuantityOnHand != nil {
		q := *in.QuantityOnHand
		b.QuantityOnHand = &q
	}
}
