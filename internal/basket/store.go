package basket

import (
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/storefront/internal/catalog"
	"github.com/angelmondragon/storefront/pkg/enums"
)

// ProductLookup resolves catalog products by id. *catalog.Store satisfies it.
type ProductLookup interface {
	Get(id string) (*catalog.Product, bool)
}

// Store holds the shopper's selection as an id-keyed ordered set. Every mutation recomputes the
// derived state and publishes it before returning.
type Store struct {
	events  catalog.Emitter
	catalog ProductLookup

	ids     []string
	entries map[string]Entry
	total   decimal.Decimal
}

func NewStore(events catalog.Emitter, lookup ProductLookup) *Store {
	return &Store{
		events:  events,
		catalog: lookup,
		entries: map[string]Entry{},
		total:   decimal.Zero,
	}
}

// Add inserts the product with id. It returns false when the id is already in the basket or
// unknown to the catalog.
func (s *Store) Add(id string) bool {
	if _, ok := s.entries[id]; ok {
		return false
	}
	product, ok := s.lookup(id)
	if !ok {
		return false
	}
	s.ids = append(s.ids, id)
	s.entries[id] = entryFrom(*product)
	s.recompute()
	s.publish()
	return true
}

// Remove deletes id from the basket; false when it was not there.
func (s *Store) Remove(id string) bool {
	if _, ok := s.entries[id]; !ok {
		return false
	}
	delete(s.entries, id)
	for i, existing := range s.ids {
		if existing == id {
			s.ids = append(s.ids[:i:i], s.ids[i+1:]...)
			break
		}
	}
	s.recompute()
	s.publish()
	return true
}

// Clear empties the basket and always publishes, even when it was already empty.
func (s *Store) Clear() {
	s.ids = nil
	s.entries = map[string]Entry{}
	s.recompute()
	s.publish()
}

func (s *Store) Has(id string) bool {
	_, ok := s.entries[id]
	return ok
}

func (s *Store) Total() decimal.Decimal {
	return s.total
}

// ItemIDs returns the ids in insertion order.
func (s *Store) ItemIDs() []string {
	out := make([]string, len(s.ids))
	copy(out, s.ids)
	return out
}

func (s *Store) IsEmpty() bool {
	return len(s.ids) == 0
}

func (s *Store) Len() int {
	return len(s.ids)
}

// Position returns the 1-based line number of id, or 0 when absent.
func (s *Store) Position(id string) int {
	for i, existing := range s.ids {
		if existing == id {
			return i + 1
		}
	}
	return 0
}

// State returns the derived basket state.
func (s *Store) State() State {
	items := make([]Entry, 0, len(s.ids))
	for _, id := range s.ids {
		items = append(items, s.entries[id])
	}
	return State{
		ItemIDs:   s.ItemIDs(),
		Items:     items,
		Total:     s.total,
		ItemCount: len(s.ids),
		IsEmpty:   len(s.ids) == 0,
	}
}

// UpdateTotals re-reads every entry from lookup after a catalog refresh. Entries whose product
// disappeared are dropped. basket:changed is published only when the derived state changed.
func (s *Store) UpdateTotals(lookup ProductLookup) {
	if lookup == nil {
		lookup = s.catalog
	}
	before := s.State()

	ids := make([]string, 0, len(s.ids))
	entries := make(map[string]Entry, len(s.ids))
	for _, id := range s.ids {
		product, ok := lookup.Get(id)
		if !ok || product == nil {
			continue
		}
		ids = append(ids, id)
		entries[id] = entryFrom(*product)
	}
	s.ids = ids
	s.entries = entries
	s.recompute()

	if !sameState(before, s.State()) {
		s.publish()
	}
}

// Serialize captures the basket for session persistence.
func (s *Store) Serialize() Snapshot {
	return Snapshot{
		ItemIDs:   s.ItemIDs(),
		Total:     s.total,
		ItemCount: len(s.ids),
		IsEmpty:   len(s.ids) == 0,
	}
}

// Restore replaces the basket with the ids in snap that still exist in the catalog and returns
// the ids that were skipped. The cached totals in snap are ignored.
func (s *Store) Restore(snap Snapshot) []string {
	var dropped []string
	ids := make([]string, 0, len(snap.ItemIDs))
	entries := make(map[string]Entry, len(snap.ItemIDs))
	for _, id := range snap.ItemIDs {
		if _, dup := entries[id]; dup {
			continue
		}
		product, ok := s.lookup(id)
		if !ok {
			dropped = append(dropped, id)
			continue
		}
		ids = append(ids, id)
		entries[id] = entryFrom(*product)
	}
	s.ids = ids
	s.entries = entries
	s.recompute()
	s.publish()
	return dropped
}

func (s *Store) lookup(id string) (*catalog.Product, bool) {
	if s.catalog == nil {
		return nil, false
	}
	product, ok := s.catalog.Get(id)
	if !ok || product == nil {
		return nil, false
	}
	return product, true
}

func (s *Store) recompute() {
	total := decimal.Zero
	for _, id := range s.ids {
		total = total.Add(s.entries[id].priceOrZero())
	}
	s.total = total
}

func (s *Store) publish() {
	if s.events == nil {
		return
	}
	s.events.Emit(enums.EventBasketChanged, s.State())
}

func sameState(a, b State) bool {
	if len(a.Items) != len(b.Items) || !a.Total.Equal(b.Total) {
		return false
	}
	for i := range a.Items {
		if !a.Items[i].equal(b.Items[i]) {
			return false
		}
	}
	return true
}
