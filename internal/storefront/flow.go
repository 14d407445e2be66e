package storefront

import (
	"context"

	"github.com/angelmondragon/storefront/internal/basket"
	"github.com/angelmondragon/storefront/internal/order"
	"github.com/angelmondragon/storefront/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront/pkg/errors"
)

// Store events.

func (c *Controller) onCatalogLoaded() {
	c.view.RenderCatalog(c.cards())
	if c.step != enums.CheckoutStepPreview {
		return
	}
	card, ok := c.card(c.previewID)
	if !ok {
		c.endFlow()
		return
	}
	c.view.RenderPreview(card)
}

func (c *Controller) onCatalogError(p CatalogError) {
	c.view.ShowCatalogError(p.Error)
}

func (c *Controller) onBasketChanged(state basket.State) {
	c.metrics.SetBasketItems(state.ItemCount)
	c.view.SetBasketCounter(state.ItemCount)
	c.view.RenderCatalog(c.cards())
	switch c.step {
	case enums.CheckoutStepBasket:
		c.view.RenderBasket(state)
	case enums.CheckoutStepPreview:
		if card, ok := c.card(c.previewID); ok {
			c.view.RenderPreview(card)
		}
	}
}

func (c *Controller) onFormValidity(group order.Group) func(order.Validation) {
	return func(v order.Validation) {
		c.view.SetFormState(group, v.IsValid, v.Message())
	}
}

func (c *Controller) onOrderSuccess(p OrderSuccess) {
	c.view.RenderSuccess(p.Total)
}

func (c *Controller) onOrderError(p OrderError) {
	c.view.SetFormError(order.GroupContacts, p.Error)
}

func (c *Controller) onPageLocked(p PageLocked) {
	c.view.SetPageLocked(p.Locked)
}

// Intents.

func (c *Controller) onProductSelect(p ProductIntent) {
	if c.step != enums.CheckoutStepBrowse && c.step != enums.CheckoutStepPreview {
		c.ignore(enums.EventProductSelect, "another modal is open")
		return
	}
	card, ok := c.card(p.ID)
	if !ok {
		c.ignore(enums.EventProductSelect, "unknown product")
		return
	}
	c.previewID = p.ID
	c.setStep(enums.CheckoutStepPreview)
	c.view.RenderPreview(card)
}

func (c *Controller) onBasketAdd(p ProductIntent) {
	product, ok := c.catalog.Get(p.ID)
	if !ok {
		c.ignore(enums.EventBasketAdd, "unknown product")
		return
	}
	if product.Priceless() {
		c.ignore(enums.EventBasketAdd, "product is not purchasable")
		return
	}
	c.basket.Add(p.ID)
}

func (c *Controller) onBasketRemove(p ProductIntent) {
	if !c.basket.Remove(p.ID) {
		c.ignore(enums.EventBasketRemove, "product not in basket")
	}
}

func (c *Controller) onBasketOpen() {
	c.session++
	c.setStep(enums.CheckoutStepBasket)
	c.view.RenderBasket(c.basket.State())
}

func (c *Controller) onOrderOpen() {
	if c.step != enums.CheckoutStepBasket {
		c.ignore(enums.EventOrderOpen, "basket is not open")
		return
	}
	if c.basket.IsEmpty() {
		c.ignore(enums.EventOrderOpen, "basket is empty")
		return
	}
	c.order.Clear()
	c.setStep(enums.CheckoutStepDelivery)
	c.view.RenderDelivery(c.order.Draft())
}

func (c *Controller) setField(event enums.EventName, step enums.CheckoutStep, field order.Field, value string) {
	if c.step != step {
		c.ignore(event, "field edited outside its step")
		return
	}
	if err := c.order.SetField(field, value); err != nil {
		c.logg.Warn(c.logg.WithField(c.ctx, "field", string(field)), "storefront.set_field_rejected")
	}
}

func (c *Controller) onOrderSubmit() {
	if c.step != enums.CheckoutStepDelivery {
		c.ignore(enums.EventOrderSubmit, "delivery form is not open")
		return
	}
	if !c.order.ValidateDelivery().IsValid {
		return
	}
	c.setStep(enums.CheckoutStepContacts)
	c.view.RenderContacts(c.order.Draft())
	if c.submitting {
		c.view.SetSubmitting(true)
	}
}

func (c *Controller) onContactsSubmit() {
	if c.step != enums.CheckoutStepContacts {
		c.ignore(enums.EventContactsSubmit, "contacts form is not open")
		return
	}
	if c.submitting {
		c.ignore(enums.EventContactsSubmit, "order submission in flight")
		return
	}
	if !c.order.ValidateContacts().IsValid {
		return
	}
	if err := c.order.Ready(); err != nil {
		c.fault(err)
		return
	}

	draft := c.order.BuildOrder(c.basket.ItemIDs(), c.basket.Total())
	session := c.session
	c.submitting = true
	c.view.SetSubmitting(true)

	dispatch(c, operationSubmitOrder,
		func() bool { return session == c.session && c.step == enums.CheckoutStepContacts },
		func() {
			c.submitting = false
			c.view.SetSubmitting(false)
		},
		func(ctx context.Context) (order.Result, error) { return c.gateway.SubmitOrder(ctx, draft) },
		func(result order.Result, err error) {
			if err != nil {
				c.logg.Error(c.logCtx(enums.EventOrderError), "storefront.order_submit_failed", err)
				c.bus.Emit(enums.EventOrderError, OrderError{Error: pkgerrors.PublicMessage(err, submitFailedMessage)})
				return
			}
			c.logg.Info(c.logg.WithField(c.logCtx(enums.EventOrderSuccess), "order_id", result.ID), "storefront.order_submitted")
			c.bus.Emit(enums.EventOrderSuccess, OrderSuccess{Total: result.Total})
			c.basket.Clear()
			c.order.Clear()
			c.setStep(enums.CheckoutStepSuccess)
		})
}

func (c *Controller) onSuccessClose() {
	if c.step != enums.CheckoutStepSuccess {
		c.ignore(enums.EventSuccessClose, "success view is not open")
		return
	}
	c.endFlow()
}

func (c *Controller) onModalClose() {
	if c.step == enums.CheckoutStepBrowse {
		return
	}
	c.endFlow()
}

// Flow helpers.

func (c *Controller) endFlow() {
	c.session++
	c.previewID = ""
	c.setStep(enums.CheckoutStepBrowse)
}

func (c *Controller) setStep(next enums.CheckoutStep) {
	prev := c.step
	c.step = next
	if next != enums.CheckoutStepPreview {
		c.previewID = ""
	}
	c.view.SetStep(next)
	switch {
	case !prev.IsModal() && next.IsModal():
		c.bus.Emit(enums.EventPageLocked, PageLocked{Locked: true})
	case prev.IsModal() && !next.IsModal():
		c.bus.Emit(enums.EventPageLocked, PageLocked{Locked: false})
	}
}

// fault handles a submission attempted while the draft is not ready.
func (c *Controller) fault(err error) {
	if c.strict {
		panic(err)
	}
	c.logg.Error(c.logCtx(enums.EventContactsSubmit), "storefront.order_not_ready", err)
	c.bus.Emit(enums.EventOrderError, OrderError{Error: pkgerrors.PublicMessage(err, submitFailedMessage)})
}

func (c *Controller) ignore(event enums.EventName, reason string) {
	ctx := c.logg.WithField(c.logCtx(event), "step", c.step.String())
	c.logg.Debug(c.logg.WithField(ctx, "reason", reason), "storefront.intent_ignored")
}

func (c *Controller) card(id string) (Card, bool) {
	product, ok := c.catalog.Get(id)
	if !ok {
		return Card{}, false
	}
	return Card{
		Product:     *product,
		InBasket:    c.basket.Has(id),
		Purchasable: !product.Priceless(),
	}, true
}

func (c *Controller) cards() []Card {
	products := c.catalog.Products()
	cards := make([]Card, 0, len(products))
	for _, product := range products {
		cards = append(cards, Card{
			Product:     product,
			InBasket:    c.basket.Has(product.ID),
			Purchasable: !product.Priceless(),
		})
	}
	return cards
}
