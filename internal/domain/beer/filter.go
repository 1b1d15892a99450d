package beer

import (
	"fmt"
	"strings"
)

// ListFilter holds the optional list query parameters.
type ListFilter struct {
	// Name is a case-insensitive substring of the beer name. Blank means absent.
	Name string

	// Style restricts results to one style. Nil means absent.
	Style *Style

	// ShowInventory is tri-state: only an explicit true exposes QuantityOnHand.
	ShowInventory *bool
}

// PredicateKind is the shape of the lookup a ListFilter resolves to.
type PredicateKind int

const (
	MatchAll PredicateKind = iota
	MatchName
	MatchStyle
	MatchNameAndStyle
)

func (k PredicateKind) String() string {
	switch k {
	case MatchAll:
		return "all"
	case MatchName:
		return "name"
	case MatchStyle:
		return "style"
	case MatchNameAndStyle:
		return "name_and_style"
	}
	return fmt.Sprintf("PredicateKind(%d)", int(k))
}

// Predicate is the composed lookup condition handed to the repository.
// Storage drivers translate it; they never inspect ListFilter directly.
type Predicate struct {
	Kind  PredicateKind
	Name  string
	Style Style
}

// BuildPredicate selects the predicate shape for f.
//
//	name  style  predicate
//	no    no     MatchAll
//	yes   no     MatchName
//	no    yes    MatchStyle
//	yes   yes    MatchNameAndStyle
func BuildPredicate(f ListFilter) Predicate {
	name := strings.TrimSpace(f.Name)
	hasName := name != ""
	hasStyle := f.Style != nil

	switch {
	case hasName && hasStyle:
		return Predicate{Kind: MatchNameAndStyle, Name: name, Style: *f.Style}
	case hasName:
		return Predicate{Kind: MatchName, Name: name}
	case hasStyle:
		return Predicate{Kind: MatchStyle, Style: *f.Style}
	default:
		return Predicate{Kind: MatchAll}
	}
}

// HasName reports whether the predicate constrains the name.
func (p Predicate) HasName() bool {
	return p.Kind == MatchName || p.Kind == MatchNameAndStyle
}

// HasStyle reports whether the predicate constrains the style.
func (p Predicate) HasStyle() bool {
	return p.Kind == MatchStyle || p.Kind == MatchNameAndStyle
}

// Matches evaluates the predicate in memory with the same semantics the SQL
// drivers use: case-insensitive substring on name, exact style.
func (p Predicate) Matches(b *Beer) bool {
	if p.HasName() && !strings.Contains(strings.ToLower(b.Name), strings.ToLower(p.Name)) {
		return false
	}
	if p.HasStyle() && b.Style != p.Style {
		return false
	}
	return true
}

func (p Predicate) String() string {
	switch p.Kind {
	case MatchName:
		return fmt.Sprintf("name~%q", p.Name)
	case MatchStyle:
		return fmt.Sprintf("style=%s", p.Style)
	case MatchNameAndStyle:
		return fmt.Sprintf("name~%q AND style=%s", p.Name, p.Style)
	}
	return "all"
}

// InventoryVisible reports whether QuantityOnHand is returned for f.
// Absent and false both hide it.
func InventoryVisible(f ListFilter) bool {
	return f.ShowInventory != nil && *f.ShowInventory
}

// ApplyInventoryVisibility clears QuantityOnHand on every record unless visible.
// Records are modified in place and the same slice is returned.
func ApplyInventoryVisibility(beers []*Beer, visible bool) []*Beer {
	if visible {
		return beers
	}
	for _, b := range beers {
		b.QuantityOnHand = nil
	}
	return beers
}
