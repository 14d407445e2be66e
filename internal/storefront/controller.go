// Package storefront drives a shopper session: it turns intent events from the view into store
// mutations and remote calls, and turns store events back into render requests.
package storefront

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/angelmondragon/storefront/internal/basket"
	"github.com/angelmondragon/storefront/internal/catalog"
	"github.com/angelmondragon/storefront/internal/order"
	"github.com/angelmondragon/storefront/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront/pkg/errors"
	"github.com/angelmondragon/storefront/pkg/events"
	"github.com/angelmondragon/storefront/pkg/logger"
	"github.com/angelmondragon/storefront/pkg/metrics"
)

const (
	operationFetchCatalog = "fetch_catalog"
	operationSubmitOrder  = "submit_order"

	submitFailedMessage  = "failed to submit order"
	catalogFailedMessage = "failed to load catalog"
)

// ControllerParams wires the controller to its collaborators.
type ControllerParams struct {
	Bus     *events.Bus
	Loop    Poster
	Gateway Gateway
	View    View
	Catalog *catalog.Store
	Basket  *basket.Store
	Order   *order.Store
	Logger  *logger.Logger
	Metrics *metrics.StorefrontMetrics
	// Strict turns draft invariant violations into panics. Enabled in dev.
	Strict bool
}

// Controller owns the checkout flow. All of its state is touched only from the event loop.
type Controller struct {
	bus     *events.Bus
	loop    Poster
	gateway Gateway
	view    View
	catalog *catalog.Store
	basket  *basket.Store
	order   *order.Store
	logg    *logger.Logger
	metrics *metrics.StorefrontMetrics
	strict  bool

	ctx        context.Context
	step       enums.CheckoutStep
	previewID  string
	session    uint64
	catalogGen uint64
	submitting bool

	pending sync.WaitGroup
	subs    []events.Subscription
}

// NewController builds the controller and subscribes it to the bus.
func NewController(params ControllerParams) (*Controller, error) {
	switch {
	case params.Bus == nil:
		return nil, fmt.Errorf("bus required")
	case params.Loop == nil:
		return nil, fmt.Errorf("loop required")
	case params.Gateway == nil:
		return nil, fmt.Errorf("gateway required")
	case params.View == nil:
		return nil, fmt.Errorf("view required")
	case params.Catalog == nil || params.Basket == nil || params.Order == nil:
		return nil, fmt.Errorf("stores required")
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	c := &Controller{
		bus:     params.Bus,
		loop:    params.Loop,
		gateway: params.Gateway,
		view:    params.View,
		catalog: params.Catalog,
		basket:  params.Basket,
		order:   params.Order,
		logg:    logg,
		metrics: params.Metrics,
		strict:  params.Strict,
		ctx:     context.Background(),
		step:    enums.CheckoutStepBrowse,
	}
	c.bind()
	return c, nil
}

func (c *Controller) bind() {
	b := c.bus
	c.subs = append(c.subs,
		events.SubscribeSignal(b, enums.EventCatalogLoaded, c.onCatalogLoaded),
		events.Subscribe(b, enums.EventCatalogError, c.onCatalogError),
		events.Subscribe(b, enums.EventBasketChanged, c.onBasketChanged),
		events.Subscribe(b, enums.EventOrderValid, c.onFormValidity(order.GroupDelivery)),
		events.Subscribe(b, enums.EventContactsValid, c.onFormValidity(order.GroupContacts)),
		events.Subscribe(b, enums.EventOrderSuccess, c.onOrderSuccess),
		events.Subscribe(b, enums.EventOrderError, c.onOrderError),
		events.Subscribe(b, enums.EventPageLocked, c.onPageLocked),

		events.Subscribe(b, enums.EventProductSelect, c.onProductSelect),
		events.Subscribe(b, enums.EventBasketAdd, c.onBasketAdd),
		events.Subscribe(b, enums.EventBasketRemove, c.onBasketRemove),
		events.SubscribeSignal(b, enums.EventBasketOpen, c.onBasketOpen),
		events.SubscribeSignal(b, enums.EventOrderOpen, c.onOrderOpen),
		events.Subscribe(b, enums.EventOrderPayment, func(p PaymentIntent) {
			c.setField(enums.EventOrderPayment, enums.CheckoutStepDelivery, order.FieldPayment, p.Payment)
		}),
		events.Subscribe(b, enums.EventOrderAddress, func(p AddressIntent) {
			c.setField(enums.EventOrderAddress, enums.CheckoutStepDelivery, order.FieldAddress, p.Address)
		}),
		events.SubscribeSignal(b, enums.EventOrderSubmit, c.onOrderSubmit),
		events.Subscribe(b, enums.EventContactsEmail, func(p EmailIntent) {
			c.setField(enums.EventContactsEmail, enums.CheckoutStepContacts, order.FieldEmail, p.Email)
		}),
		events.Subscribe(b, enums.EventContactsPhone, func(p PhoneIntent) {
			c.setField(enums.EventContactsPhone, enums.CheckoutStepContacts, order.FieldPhone, p.Phone)
		}),
		events.SubscribeSignal(b, enums.EventContactsSubmit, c.onContactsSubmit),
		events.SubscribeSignal(b, enums.EventSuccessClose, c.onSuccessClose),
		events.SubscribeSignal(b, enums.EventModalClose, c.onModalClose),
	)
}

// Close unsubscribes the controller from the bus.
func (c *Controller) Close() {
	for _, sub := range c.subs {
		sub.Off()
	}
	c.subs = nil
}

// Start sets the context for remote calls and schedules the initial catalog load.
func (c *Controller) Start(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	return c.loop.Post(func() {
		c.ctx = ctx
		c.LoadCatalog()
	})
}

// LoadCatalog fetches the catalog. Only the latest load is applied. Must run on the loop.
func (c *Controller) LoadCatalog() {
	c.catalogGen++
	gen := c.catalogGen
	dispatch(c, operationFetchCatalog,
		func() bool { return gen == c.catalogGen },
		nil,
		c.gateway.FetchCatalog,
		func(products []catalog.Product, err error) {
			if err != nil {
				c.logg.Error(c.logCtx(enums.EventCatalogError), "storefront.catalog_fetch_failed", err)
				c.bus.Emit(enums.EventCatalogError, CatalogError{Error: pkgerrors.PublicMessage(err, catalogFailedMessage)})
				return
			}
			c.catalog.Replace(products)
			c.basket.UpdateTotals(c.catalog)
		})
}

// Step returns the current checkout step. Must run on the loop.
func (c *Controller) Step() enums.CheckoutStep {
	return c.step
}

// Wait blocks until every in-flight remote call has queued its completion on the loop.
func (c *Controller) Wait() {
	c.pending.Wait()
}

// dispatch runs work off the loop and re-enters the loop with the result. settle runs on the loop
// for every completion, stale or not; current is checked after it and stale completions are
// dropped before apply.
func dispatch[T any](c *Controller, operation string, current func() bool, settle func(), work func(context.Context) (T, error), apply func(T, error)) {
	ctx := c.ctx
	c.pending.Add(1)
	go func() {
		defer c.pending.Done()
		start := time.Now()
		result, err := work(ctx)
		elapsed := time.Since(start)
		postErr := c.loop.Post(func() {
			if settle != nil {
				settle()
			}
			outcome := metrics.OutcomeSuccess
			switch {
			case !current():
				outcome = metrics.OutcomeStale
			case err != nil:
				outcome = metrics.OutcomeFailure
			}
			c.metrics.ObserveRemote(operation, outcome, elapsed)
			if outcome == metrics.OutcomeStale {
				c.logg.Debug(c.logg.WithField(ctx, "operation", operation), "storefront.stale_completion_dropped")
				return
			}
			apply(result, err)
		})
		if postErr != nil {
			c.logg.Warn(c.logg.WithField(ctx, "operation", operation), "storefront.completion_not_delivered")
		}
	}()
}

func (c *Controller) logCtx(event enums.EventName) context.Context {
	return c.logg.WithEvent(c.ctx, string(event))
}
