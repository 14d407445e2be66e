package storefront

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/storefront/internal/basket"
	"github.com/angelmondragon/storefront/internal/catalog"
	"github.com/angelmondragon/storefront/internal/order"
	"github.com/angelmondragon/storefront/pkg/enums"
)

// Gateway is the remote store service.
type Gateway interface {
	FetchCatalog(ctx context.Context) ([]catalog.Product, error)
	SubmitOrder(ctx context.Context, o order.Order) (order.Result, error)
}

// Poster queues work onto the single event-loop executor. *events.Loop satisfies it.
type Poster interface {
	Post(fn func()) error
}

// Card is a product as shown in the catalog grid and the preview.
type Card struct {
	catalog.Product
	InBasket    bool `json:"inBasket"`
	Purchasable bool `json:"purchasable"`
}

// View renders what the controller asks for. Implementations never mutate stores; they report
// user actions back as intent events on the bus.
type View interface {
	SetStep(step enums.CheckoutStep)
	SetPageLocked(locked bool)
	RenderCatalog(cards []Card)
	ShowCatalogError(message string)
	RenderPreview(card Card)
	SetBasketCounter(count int)
	RenderBasket(state basket.State)
	RenderDelivery(draft order.Draft)
	RenderContacts(draft order.Draft)
	SetFormState(group order.Group, valid bool, message string)
	SetFormError(group order.Group, message string)
	SetSubmitting(submitting bool)
	RenderSuccess(total decimal.Decimal)
}
