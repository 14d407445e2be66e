package catalog

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Product is one purchasable (or priceless) catalog item as returned by the remote service.
type Product struct {
	ID          string              `json:"id"`
	Title       string              `json:"title"`
	Category    string              `json:"category"`
	Price       decimal.NullDecimal `json:"price"`
	Description string              `json:"description"`
	Image       string              `json:"image"`
}

// Priceless reports whether the product has no price and therefore cannot be bought.
func (p Product) Priceless() bool {
	return !p.Price.Valid
}

// PriceOrZero returns the price, treating a missing price as zero.
func (p Product) PriceOrZero() decimal.Decimal {
	if !p.Price.Valid {
		return decimal.Zero
	}
	return p.Price.Decimal
}

// Priced builds a NullDecimal for the given price.
func Priced(value int64) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.NewFromInt(value))
}

func joinImage(base, image string) string {
	if base == "" || image == "" {
		return image
	}
	lower := strings.ToLower(image)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") || strings.HasPrefix(image, "//") {
		return image
	}
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(image, "/")
}
