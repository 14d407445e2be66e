package storefront

import "github.com/shopspring/decimal"

// Intent payloads, published by the view.

type ProductIntent struct {
	ID string `json:"id" validate:"required,max=128"`
}

type PaymentIntent struct {
	Payment string `json:"payment" validate:"max=32"`
}

type AddressIntent struct {
	Address string `json:"address" validate:"max=512"`
}

type EmailIntent struct {
	Email string `json:"email" validate:"max=254"`
}

type PhoneIntent struct {
	Phone string `json:"phone" validate:"max=32"`
}

// State payloads, published by the controller.

type CatalogError struct {
	Error string `json:"error"`
}

type OrderSuccess struct {
	Total decimal.Decimal `json:"total"`
}

type OrderError struct {
	Error string `json:"error"`
}

type PageLocked struct {
	Locked bool `json:"locked"`
}
