package storefront

import (
	"context"
	"sync"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/storefront/internal/basket"
	"github.com/angelmondragon/storefront/internal/catalog"
	"github.com/angelmondragon/storefront/internal/order"
	"github.com/angelmondragon/storefront/pkg/enums"
	"github.com/angelmondragon/storefront/pkg/events"
)

type formState struct {
	group   order.Group
	valid   bool
	message string
}

type stubView struct {
	steps         []enums.CheckoutStep
	locks         []bool
	catalogs      [][]Card
	catalogErrors []string
	previews      []Card
	counters      []int
	baskets       []basket.State
	deliveries    []order.Draft
	contacts      []order.Draft
	formStates    []formState
	formErrors    []string
	submitting    []bool
	successes     []decimal.Decimal
}

func (v *stubView) SetStep(step enums.CheckoutStep) { v.steps = append(v.steps, step) }
func (v *stubView) SetPageLocked(locked bool) { v.locks = append(v.locks, locked) }
func (v *stubView) RenderCatalog(cards []Card) { v.catalogs = append(v.catalogs, cards) }
func (v *stubView) ShowCatalogError(message string) { v.catalogErrors = append(v.catalogErrors, message) }
func (v *stubView) RenderPreview(card Card) { v.previews = append(v.previews, card) }
func (v *stubView) SetBasketCounter(count int) { v.counters = append(v.counters, count) }
func (v *stubView) RenderBasket(state basket.State) { v.baskets = append(v.baskets, state) }
func (v *stubView) RenderDelivery(draft order.Draft) { v.deliveries = append(v.deliveries, draft) }
func (v *stubView) RenderContacts(draft order.Draft) { v.contacts = append(v.contacts, draft) }
func (v *stubView) SetSubmitting(submitting bool) { v.submitting = append(v.submitting, submitting) }
func (v *stubView) RenderSuccess(total decimal.Decimal) { v.successes = append(v.successes, total) }
func (v *stubView) SetFormError(group order.Group, message string) {
	v.formErrors = append(v.formErrors, message)
}
func (v *stubView) SetFormState(group order.Group, valid bool, message string) {
	v.formStates = append(v.formStates, formState{group: group, valid: valid, message: message})
}

func (v *stubView) lastFormState(group order.Group) (formState, bool) {
	for i := len(v.formStates) - 1; i >= 0; i-- {
		if v.formStates[i].group == group {
			return v.formStates[i], true
		}
	}
	return formState{}, false
}

type stubGateway struct {
	mu         sync.Mutex
	products   []catalog.Product
	catalogErr error
	result     order.Result
	submitErr  error
	release    chan struct{}
	submitted  []order.Order
	fetches    int
}

func (g *stubGateway) FetchCatalog(ctx context.Context) ([]catalog.Product, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.fetches++
	if g.catalogErr != nil {
		return nil, g.catalogErr
	}
	out := make([]catalog.Product, len(g.products))
	copy(out, g.products)
	return out, nil
}

func (g *stubGateway) SubmitOrder(ctx context.Context, o order.Order) (order.Result, error) {
	g.mu.Lock()
	g.submitted = append(g.submitted, o)
	release := g.release
	g.mu.Unlock()
	if release != nil {
		<-release
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.result, g.submitErr
}

func (g *stubGateway) submissions() []order.Order {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]order.Order, len(g.submitted))
	copy(out, g.submitted)
	return out
}

type harness struct {
	bus     *events.Bus
	loop    *events.Loop
	catalog *catalog.Store
	basket  *basket.Store
	order   *order.Store
	view    *stubView
	gateway *stubGateway
	ctrl    *Controller

	emitted  []enums.EventName
	payloads map[enums.EventName][]any
}

func newHarness(t *testing.T, strict bool, gateway *stubGateway) *harness {
	t.Helper()
	h := &harness{
		view:     &stubView{},
		gateway:  gateway,
		payloads: map[enums.EventName][]any{},
	}
	h.bus = events.NewBus(events.WithObserver(func(name enums.EventName, _ int) {
		h.emitted = append(h.emitted, name)
	}))
	for _, name := range []enums.EventName{enums.EventOrderSuccess, enums.EventOrderError, enums.EventCatalogError, enums.EventPageLocked} {
		name := name
		h.bus.On(name, func(payload any) {
			h.payloads[name] = append(h.payloads[name], payload)
		})
	}
	h.loop = events.NewLoop(nil)
	h.catalog = catalog.NewStore(h.bus)
	h.basket = basket.NewStore(h.bus, h.catalog)
	h.order = order.NewStore(h.bus)

	ctrl, err := NewController(ControllerParams{
		Bus:     h.bus,
		Loop:    h.loop,
		Gateway: gateway,
		View:    h.view,
		Catalog: h.catalog,
		Basket:  h.basket,
		Order:   h.order,
		Strict:  strict,
	})
	if err != nil {
		t.Fatalf("new controller: %v", err)
	}
	h.ctrl = ctrl
	t.Cleanup(ctrl.Close)
	return h
}

// started returns a harness whose catalog has been loaded.
func started(t *testing.T, gateway *stubGateway) *harness {
	t.Helper()
	h := newHarness(t, false, gateway)
	if err := h.ctrl.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	h.settle()
	return h
}

func (h *harness) settle() {
	h.loop.Flush()
	h.ctrl.Wait()
	h.loop.Flush()
}

func (h *harness) emit(name enums.EventName, payload any) {
	h.bus.Emit(name, payload)
}

func (h *harness) count(name enums.EventName) int {
	n := 0
	for _, emitted := range h.emitted {
		if emitted == name {
			n++
		}
	}
	return n
}

// toContacts drives the flow to a filled-in contacts step with the given items in the basket.
func (h *harness) toContacts(t *testing.T, ids ...string) {
	t.Helper()
	for _, id := range ids {
		h.emit(enums.EventBasketAdd, ProductIntent{ID: id})
	}
	h.emit(enums.EventBasketOpen, nil)
	h.emit(enums.EventOrderOpen, nil)
	h.emit(enums.EventOrderPayment, PaymentIntent{Payment: "card"})
	h.emit(enums.EventOrderAddress, AddressIntent{Address: "Main St 1"})
	h.emit(enums.EventOrderSubmit, nil)
	h.emit(enums.EventContactsEmail, EmailIntent{Email: "a@b.c"})
	h.emit(enums.EventContactsPhone, PhoneIntent{Phone: "+100"})
	if h.ctrl.Step() != enums.CheckoutStepContacts {
		t.Fatalf("expected contacts step, got %s", h.ctrl.Step())
	}
}

func defaultProducts() []catalog.Product {
	return []catalog.Product{
		{ID: "A", Title: "Alpha", Category: "soft", Price: catalog.Priced(100)},
		{ID: "B", Title: "Beta", Category: "other"},
		{ID: "C", Title: "Gamma", Category: "hard", Price: catalog.Priced(40)},
	}
}
