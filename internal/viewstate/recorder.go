// Package viewstate keeps a read-only projection of everything the controller asked the view to
// render, so a remote client can poll the session state.
package viewstate

import (
	"sync"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/storefront/internal/basket"
	"github.com/angelmondragon/storefront/internal/order"
	"github.com/angelmondragon/storefront/internal/storefront"
	"github.com/angelmondragon/storefront/pkg/enums"
)

// Form is the rendered state of one checkout form.
type Form struct {
	Valid   bool   `json:"valid"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Projection is a point-in-time copy of the rendered session.
type Projection struct {
	Version      uint64               `json:"version"`
	Step         enums.CheckoutStep   `json:"step"`
	PageLocked   bool                 `json:"pageLocked"`
	Catalog      []storefront.Card    `json:"catalog"`
	CatalogError string               `json:"catalogError,omitempty"`
	Preview      *storefront.Card     `json:"preview,omitempty"`
	BasketCount  int                  `json:"basketCount"`
	Basket       *basket.State        `json:"basket,omitempty"`
	Draft        *order.Draft         `json:"draft,omitempty"`
	Forms        map[order.Group]Form `json:"forms"`
	Submitting   bool                 `json:"submitting"`
	SuccessTotal *decimal.Decimal     `json:"successTotal,omitempty"`
}

// Recorder implements storefront.View.
type Recorder struct {
	mu    sync.RWMutex
	state Projection
}

var _ storefront.View = (*Recorder)(nil)

func NewRecorder() *Recorder {
	return &Recorder{state: Projection{
		Step:    enums.CheckoutStepBrowse,
		Catalog: []storefront.Card{},
		Forms:   map[order.Group]Form{},
	}}
}

// Snapshot returns a deep copy of the projection.
func (r *Recorder) Snapshot() Projection {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := r.state
	out.Catalog = append([]storefront.Card(nil), r.state.Catalog...)
	if out.Catalog == nil {
		out.Catalog = []storefront.Card{}
	}
	if r.state.Preview != nil {
		preview := *r.state.Preview
		out.Preview = &preview
	}
	if r.state.Basket != nil {
		state := *r.state.Basket
		state.ItemIDs = append([]string(nil), r.state.Basket.ItemIDs...)
		state.Items = append([]basket.Entry(nil), r.state.Basket.Items...)
		out.Basket = &state
	}
	if r.state.Draft != nil {
		draft := *r.state.Draft
		out.Draft = &draft
	}
	if r.state.SuccessTotal != nil {
		total := *r.state.SuccessTotal
		out.SuccessTotal = &total
	}
	out.Forms = make(map[order.Group]Form, len(r.state.Forms))
	for group, form := range r.state.Forms {
		out.Forms[group] = form
	}
	return out
}

func (r *Recorder) update(fn func(p *Projection)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fn(&r.state)
	r.state.Version++
}

func (r *Recorder) SetStep(step enums.CheckoutStep) {
	r.update(func(p *Projection) {
		p.Step = step
		if step != enums.CheckoutStepPreview {
			p.Preview = nil
		}
		if step != enums.CheckoutStepDelivery && step != enums.CheckoutStepContacts {
			p.Draft = nil
			p.Submitting = false
		}
		if step != enums.CheckoutStepSuccess {
			p.SuccessTotal = nil
		}
	})
}

func (r *Recorder) SetPageLocked(locked bool) {
	r.update(func(p *Projection) { p.PageLocked = locked })
}

func (r *Recorder) RenderCatalog(cards []storefront.Card) {
	r.update(func(p *Projection) {
		p.Catalog = append([]storefront.Card(nil), cards...)
		p.CatalogError = ""
	})
}

func (r *Recorder) ShowCatalogError(message string) {
	r.update(func(p *Projection) { p.CatalogError = message })
}

func (r *Recorder) RenderPreview(card storefront.Card) {
	r.update(func(p *Projection) { p.Preview = &card })
}

func (r *Recorder) SetBasketCounter(count int) {
	r.update(func(p *Projection) { p.BasketCount = count })
}

func (r *Recorder) RenderBasket(state basket.State) {
	r.update(func(p *Projection) { p.Basket = &state })
}

func (r *Recorder) RenderDelivery(draft order.Draft) {
	r.update(func(p *Projection) { p.Draft = &draft })
}

func (r *Recorder) RenderContacts(draft order.Draft) {
	r.update(func(p *Projection) { p.Draft = &draft })
}

func (r *Recorder) SetFormState(group order.Group, valid bool, message string) {
	r.update(func(p *Projection) {
		p.Forms[group] = Form{Valid: valid, Message: message}
	})
}

func (r *Recorder) SetFormError(group order.Group, message string) {
	r.update(func(p *Projection) {
		form := p.Forms[group]
		form.Error = message
		p.Forms[group] = form
	})
}

func (r *Recorder) SetSubmitting(submitting bool) {
	r.update(func(p *Projection) { p.Submitting = submitting })
}

func (r *Recorder) RenderSuccess(total decimal.Decimal) {
	r.update(func(p *Projection) { p.SuccessTotal = &total })
}
