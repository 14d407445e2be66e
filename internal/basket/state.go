package basket

import (
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/storefront/internal/catalog"
)

// Entry is the part of a product the basket keeps for checkout display.
type Entry struct {
	ID    string              `json:"id"`
	Title string              `json:"title"`
	Price decimal.NullDecimal `json:"price"`
}

func entryFrom(p catalog.Product) Entry {
	return Entry{ID: p.ID, Title: p.Title, Price: p.Price}
}

func (e Entry) priceOrZero() decimal.Decimal {
	if !e.Price.Valid {
		return decimal.Zero
	}
	return e.Price.Decimal
}

func (e Entry) equal(other Entry) bool {
	if e.ID != other.ID || e.Title != other.Title || e.Price.Valid != other.Price.Valid {
		return false
	}
	return !e.Price.Valid || e.Price.Decimal.Equal(other.Price.Decimal)
}

// State is the derived, read-only view of the basket published with basket:changed.
type State struct {
	ItemIDs   []string        `json:"itemIds"`
	Items     []Entry         `json:"items"`
	Total     decimal.Decimal `json:"total"`
	ItemCount int             `json:"itemCount"`
	IsEmpty   bool            `json:"isEmpty"`
}

// Snapshot is the persisted form of the basket. Only ItemIDs is authoritative; the other
// fields are caches recomputed on restore.
type Snapshot struct {
	ItemIDs   []string        `json:"itemIds"`
	Total     decimal.Decimal `json:"total"`
	ItemCount int             `json:"itemCount"`
	IsEmpty   bool            `json:"isEmpty"`
}
