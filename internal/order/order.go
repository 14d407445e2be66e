package order

import (
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/storefront/pkg/enums"
)

// Draft holds the in-progress checkout form values.
type Draft struct {
	Payment enums.PaymentMethod `json:"payment"`
	Address string              `json:"address"`
	Email   string              `json:"email"`
	Phone   string              `json:"phone"`
}

// Order is the submission sent to the remote order service. Items is copied at build time.
type Order struct {
	Payment enums.PaymentMethod `json:"payment"`
	Address string              `json:"address"`
	Email   string              `json:"email"`
	Phone   string              `json:"phone"`
	Items   []string            `json:"items"`
	Total   decimal.Decimal     `json:"total"`
}

// Result is the remote confirmation of a submitted order.
type Result struct {
	ID    string          `json:"id"`
	Total decimal.Decimal `json:"total"`
}
