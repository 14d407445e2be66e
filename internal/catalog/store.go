package catalog

import (
	"strings"

	"github.com/angelmondragon/storefront/pkg/enums"
)

// Emitter is the slice of the event bus the stores publish through.
type Emitter interface {
	Emit(name enums.EventName, payload any) int
}

// Store owns product identity for the session. The product list is only ever swapped as a whole.
type Store struct {
	events    Emitter
	imageBase string
	products  []Product
	index     map[string]int
}

// Option configures optional store behavior.
type Option func(*Store)

// WithImageBase prefixes relative product image paths with base (the CDN root).
func WithImageBase(base string) Option {
	return func(s *Store) {
		s.imageBase = strings.TrimSpace(base)
	}
}

func NewStore(events Emitter, opts ...Option) *Store {
	store := &Store{
		events: events,
		index:  map[string]int{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(store)
		}
	}
	return store
}

// Replace installs a freshly fetched product list and emits catalog:loaded.
// When the input repeats an id, the first position is kept and the last record wins.
func (s *Store) Replace(products []Product) {
	next := make([]Product, 0, len(products))
	index := make(map[string]int, len(products))
	for _, p := range products {
		p.Image = joinImage(s.imageBase, p.Image)
		if pos, ok := index[p.ID]; ok {
			next[pos] = p
			continue
		}
		index[p.ID] = len(next)
		next = append(next, p)
	}

	s.products = next
	s.index = index

	if s.events != nil {
		s.events.Emit(enums.EventCatalogLoaded, nil)
	}
}

// Get returns the product with id. A miss is not an error.
func (s *Store) Get(id string) (*Product, bool) {
	pos, ok := s.index[id]
	if !ok {
		return nil, false
	}
	product := s.products[pos]
	return &product, true
}

// Products returns the catalog in fetch order.
func (s *Store) Products() []Product {
	out := make([]Product, len(s.products))
	copy(out, s.products)
	return out
}

func (s *Store) Len() int {
	return len(s.products)
}
