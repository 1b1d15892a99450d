// Package beer provides the beer catalog: the Beer record, list predicates,
// partial-update semantics and the service orchestrating them over a Repository.
package beer

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"beercatalog/internal/core/apperror"
	"beercatalog/internal/core/entity"
	"beercatalog/internal/core/types"
)

// EntityName is used in errors, logs and audit entries.
const EntityName = "beer"

// Style is the categorical beer style.
type Style string

const (
	StyleLager   Style = "LAGER"
	StylePilsner Style = "PILSNER"
	StyleStout   Style = "STOUT"
	StyleGose    Style = "GOSE"
	StylePorter  Style = "PORTER"
	StyleAle     Style = "ALE"
	StyleWheat   Style = "WHEAT"
	StyleIPA     Style = "IPA"
	StylePaleAle Style = "PALE_ALE"
	StyleSaison  Style = "SAISON"
)

var allStyles = []Style{
	StyleLager, StylePilsner, StyleStout, StyleGose, StylePorter,
	StyleAle, StyleWheat, StyleIPA, StylePaleAle, StyleSaison,
}

// Styles returns every known style.
func Styles() []Style {
	out := make([]Style, len(allStyles))
	copy(out, allStyles)
	return out
}

// IsValid reports whether s is one of the known styles.
func (s Style) IsValid() bool {
	for _, known := range allStyles {
		if s == known {
			return true
		}
	}
	return false
}

// ParseStyle accepts a style name in any letter case.
func ParseStyle(raw string) (Style, error) {
	s := Style(strings.ToUpper(strings.TrimSpace(raw)))
	if !s.IsValid() {
		return "", apperror.NewValidation("unknown beer style").
			WithDetail("field", "beerStyle").
			WithDetail("value", raw).
			WithDetail("allowed", Styles())
	}
	return s, nil
}

// Beer is the persisted catalog record.
type Beer struct {
	entity.BaseEntity

	Name  string      `db:"beer_name" json:"beerName" validate:"required,max=50"`
	Style Style       `db:"beer_style" json:"beerStyle" validate:"required,beerstyle"`
	UPC   string      `db:"upc" json:"upc" validate:"required,max=255"`
	Price types.Money `db:"price" json:"price"`

	// QuantityOnHand is nullable; when set it is never negative.
	QuantityOnHand *int `db:"quantity_on_hand" json:"quantityOnHand,omitempty" validate:"omitempty,gte=0,lte=2147483647"`
}

// Clone returns a deep copy.
func (b *Beer) Clone() *Beer {
	c := *b
	if b.QuantityOnHand != nil {
		q := *b.QuantityOnHand
		c.QuantityOnHand = &q
	}
	return &c
}

// Validate implements entity.Validatable.
func (b *Beer) Validate(ctx context.Context) error {
	if err := validate.StructCtx(ctx, b); err != nil {
		return validationError(err)
	}
	return validatePrice(b.Price)
}

// PriceScale is the number of decimal places a price may carry. Prices are
// stored as numeric(19,2), so they must also stay below 10^17.
const PriceScale = 2

var priceLimit = types.MustMoney("100000000000000000")

func validatePrice(p types.Money) error {
	switch {
	case !types.IsNonNegative(p):
		return priceError("price must not be negative", "gte")
	case !types.FitsScale(p, PriceScale):
		return priceError(fmt.Sprintf("price must have at most %d decimal places", PriceScale), "scale")
	case p.GreaterThanOrEqual(priceLimit):
		return priceError("price must be less than "+priceLimit.String(), "lt")
	}
	return nil
}

func priceError(msg, rule string) error {
	return apperror.NewValidation(msg).
		WithDetail("field", "price").
		WithDetail("rule", rule)
}

var _ entity.Validatable = (*Beer)(nil)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("beerstyle", func(fl validator.FieldLevel) bool {
		return Style(fl.Field().String()).IsValid()
	})
	return v
}

func validationError(err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return apperror.NewValidation(err.Error())
	}

	fe := fieldErrs[0]
	appErr := apperror.NewValidation(fmt.Sprintf("%s failed on %q", fe.Field(), fe.Tag())).
		WithDetail("field", fe.Field()).
		WithDetail("rule", fe.Tag())
	if len(fieldErrs) > 1 {
		fields := make([]string, 0, len(fieldErrs))
		for _, e := range fieldErrs {
			fields = append(fields, e.Field())
		}
		appErr.WithDetail("fields", fields)
	}
	return appErr
}
