package beer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildPredicate(t *testing.T) {
	ipa := StyleIPA

	tests := []struct {
		name   string
		filter ListFilter
		want   Predicate
	}{
		{"no filter", ListFilter{}, Predicate{Kind: MatchAll}},
		{"name only", ListFilter{Name: "Galaxy"}, Predicate{Kind: MatchName, Name: "Galaxy"}},
		{"name trimmed", ListFilter{Name: "  Galaxy "}, Predicate{Kind: MatchName, Name: "Galaxy"}},
		{"blank name", ListFilter{Name: " \t"}, Predicate{Kind: MatchAll}},
		{"style only", ListFilter{Style: &ipa}, Predicate{Kind: MatchStyle, Style: StyleIPA}},
		{"name and style", ListFilter{Name: "City", Style: &ipa}, Predicate{Kind: MatchNameAndStyle, Name: "City", Style: StyleIPA}},
		{"inventory flag does not shape the predicate", ListFilter{ShowInventory: new(bool)}, Predicate{Kind: MatchAll}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, BuildPredicate(tt.filter))
		})
	}
}

func TestPredicate_Matches(t *testing.T) {
	b := &Beer{Name: "Sunshine City IPA", Style: StyleIPA}

	tests := []struct {
		name string
		pred Predicate
		want bool
	}{
		{"all", Predicate{Kind: MatchAll}, true},
		{"name substring", Predicate{Kind: MatchName, Name: "city"}, true},
		{"name prefix upper", Predicate{Kind: MatchName, Name: "SUNSHINE"}, true},
		{"name miss", Predicate{Kind: MatchName, Name: "porter"}, false},
		{"style hit", Predicate{Kind: MatchStyle, Style: StyleIPA}, true},
		{"style miss", Predicate{Kind: MatchStyle, Style: StyleAle}, false},
		{"both hit", Predicate{Kind: MatchNameAndStyle, Name: "ipa", Style: StyleIPA}, true},
		{"name hit style miss", Predicate{Kind: MatchNameAndStyle, Name: "ipa", Style: StyleAle}, false},
		{"name miss style hit", Predicate{Kind: MatchNameAndStyle, Name: "stout", Style: StyleIPA}, false},
		{"name ignored for MatchStyle", Predicate{Kind: MatchStyle, Name: "zzz", Style: StyleIPA}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.pred.Matches(b))
		})
	}
}

func TestPredicate_String(t *testing.T) {
	assert.Equal(t, "all", Predicate{Kind: MatchAll}.String())
	assert.Equal(t, `name~"cat"`, Predicate{Kind: MatchName, Name: "cat"}.String())
	assert.Equal(t, "style=IPA", Predicate{Kind: MatchStyle, Style: StyleIPA}.String())
	assert.Equal(t, `name~"cat" AND style=ALE`, Predicate{Kind: MatchNameAndStyle, Name: "cat", Style: StyleAle}.String())
	assert.Equal(t, "name_and_style", MatchNameAndStyle.String())
}

func TestInventoryVisible(t *testing.T) {
	yes, no := true, false

	assert.True(t, InventoryVisible(ListFilter{ShowInventory: &yes}))
	assert.False(t, InventoryVisible(ListFilter{ShowInventory: &no}))
	assert.False(t, InventoryVisible(ListFilter{}))
}

func TestApplyInventoryVisibility(t *testing.T) {
	newBeers := func() []*Beer {
		q := 10
		return []*Beer{{Name: "a", QuantityOnHand: &q}, {Name: "b"}}
	}

	t.Run("visible keeps stored values", func(t *testing.T) {
		got := ApplyInventoryVisibility(newBeers(), true)
		assert.Equal(t, 10, *got[0].QuantityOnHand)
		assert.Nil(t, got[1].QuantityOnHand)
	})

	t.Run("hidden clears every record", func(t *testing.T) {
		got := ApplyInventoryVisibility(newBeers(), false)
		for _, b := range got {
			assert.Nil(t, b.QuantityOnHand)
		}
	})

	t.Run("empty", func(t *testing.T) {
		assert.Empty(t, ApplyInventoryVisibility([]*Beer{}, false))
	})
}
