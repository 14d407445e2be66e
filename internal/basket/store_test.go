package basket

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/storefront/internal/catalog"
	"github.com/angelmondragon/storefront/pkg/enums"
)

type capturedEvent struct {
	name    enums.EventName
	payload any
}

type recordingEmitter struct {
	events []capturedEvent
}

func (r *recordingEmitter) Emit(name enums.EventName, payload any) int {
	r.events = append(r.events, capturedEvent{name: name, payload: payload})
	return 1
}

func (r *recordingEmitter) last(t *testing.T) State {
	t.Helper()
	require.NotEmpty(t, r.events)
	state, ok := r.events[len(r.events)-1].payload.(State)
	require.True(t, ok, "payload should be basket.State")
	return state
}

func newCatalog(products ...catalog.Product) *catalog.Store {
	store := catalog.NewStore(nil)
	store.Replace(products)
	return store
}

func TestAddPricedAndPricelessProducts(t *testing.T) {
	t.Parallel()

	events := &recordingEmitter{}
	store := NewStore(events, newCatalog(
		catalog.Product{ID: "A", Title: "Alpha", Price: catalog.Priced(100)},
		catalog.Product{ID: "B", Title: "Beta"},
	))

	require.True(t, store.Add("A"))
	require.True(t, store.Add("B"))

	state := events.last(t)
	assert.Equal(t, []string{"A", "B"}, state.ItemIDs)
	assert.True(t, state.Total.Equal(store.Total()))
	assert.Equal(t, int64(100), state.Total.IntPart())
	assert.Equal(t, 2, state.ItemCount)
	assert.False(t, state.IsEmpty)
	assert.Len(t, events.events, 2)
	for _, ev := range events.events {
		assert.Equal(t, enums.EventBasketChanged, ev.name)
	}
}

func TestAddIsIdempotentAndRejectsUnknown(t *testing.T) {
	t.Parallel()

	events := &recordingEmitter{}
	store := NewStore(events, newCatalog(catalog.Product{ID: "A", Price: catalog.Priced(5)}))

	require.True(t, store.Add("A"))
	assert.False(t, store.Add("A"))
	assert.False(t, store.Add("ghost"))
	assert.Equal(t, 1, store.Len())
	assert.Len(t, events.events, 1)
}

func TestRemoveMissDoesNotEmit(t *testing.T) {
	t.Parallel()

	events := &recordingEmitter{}
	store := NewStore(events, newCatalog(
		catalog.Product{ID: "A", Price: catalog.Priced(10)},
		catalog.Product{ID: "B", Price: catalog.Priced(20)},
		catalog.Product{ID: "C", Price: catalog.Priced(30)},
	))
	store.Add("A")
	store.Add("B")
	store.Add("C")
	events.events = nil

	assert.False(t, store.Remove("Z"))
	assert.Empty(t, events.events)

	require.True(t, store.Remove("B"))
	state := events.last(t)
	assert.Equal(t, []string{"A", "C"}, state.ItemIDs)
	assert.Equal(t, int64(40), state.Total.IntPart())
	assert.Equal(t, 2, store.Position("C"))
	assert.Equal(t, 0, store.Position("B"))
}

func TestClearAlwaysEmits(t *testing.T) {
	t.Parallel()

	events := &recordingEmitter{}
	store := NewStore(events, newCatalog())

	store.Clear()
	store.Clear()

	require.Len(t, events.events, 2)
	state := events.last(t)
	assert.True(t, state.IsEmpty)
	assert.True(t, state.Total.IsZero())
	assert.Empty(t, state.ItemIDs)
}

func TestItemIDsReturnsCopy(t *testing.T) {
	t.Parallel()

	store := NewStore(nil, newCatalog(catalog.Product{ID: "A"}))
	store.Add("A")

	ids := store.ItemIDs()
	ids[0] = "mutated"
	assert.True(t, store.Has("A"))
	assert.Equal(t, []string{"A"}, store.ItemIDs())
}

func TestUpdateTotalsRepricesAndDropsVanished(t *testing.T) {
	t.Parallel()

	events := &recordingEmitter{}
	products := newCatalog(
		catalog.Product{ID: "A", Price: catalog.Priced(100)},
		catalog.Product{ID: "B", Price: catalog.Priced(50)},
	)
	store := NewStore(events, products)
	store.Add("A")
	store.Add("B")
	events.events = nil

	store.UpdateTotals(products)
	assert.Empty(t, events.events, "unchanged catalog should not publish")

	products.Replace([]catalog.Product{{ID: "A", Price: catalog.Priced(120)}})
	store.UpdateTotals(products)

	require.Len(t, events.events, 1)
	state := events.last(t)
	assert.Equal(t, []string{"A"}, state.ItemIDs)
	assert.Equal(t, int64(120), state.Total.IntPart())
}

func TestSerializeRestoreRoundTrip(t *testing.T) {
	t.Parallel()

	products := newCatalog(
		catalog.Product{ID: "A", Price: catalog.Priced(100)},
		catalog.Product{ID: "B"},
	)
	source := NewStore(nil, products)
	source.Add("B")
	source.Add("A")

	raw, err := json.Marshal(source.Serialize())
	require.NoError(t, err)
	assert.JSONEq(t, `{"itemIds":["B","A"],"total":"100","itemCount":2,"isEmpty":false}`, string(raw))

	var snap Snapshot
	require.NoError(t, json.Unmarshal(raw, &snap))

	events := &recordingEmitter{}
	target := NewStore(events, products)
	dropped := target.Restore(snap)

	assert.Empty(t, dropped)
	assert.Equal(t, source.ItemIDs(), target.ItemIDs())
	assert.True(t, source.Total().Equal(target.Total()))
	assert.Len(t, events.events, 1)
}

func TestRestoreDropsUnknownAndDuplicateIDs(t *testing.T) {
	t.Parallel()

	events := &recordingEmitter{}
	store := NewStore(events, newCatalog(catalog.Product{ID: "A", Price: catalog.Priced(7)}))

	dropped := store.Restore(Snapshot{ItemIDs: []string{"A", "gone", "A"}, ItemCount: 3})

	assert.Equal(t, []string{"gone"}, dropped)
	assert.Equal(t, []string{"A"}, store.ItemIDs())
	assert.Equal(t, int64(7), store.Total().IntPart())
	require.Len(t, events.events, 1)
	assert.Equal(t, 1, events.last(t).ItemCount)
}

func TestDerivedFieldsHoldAfterEveryMutation(t *testing.T) {
	t.Parallel()

	prices := map[string]decimal.Decimal{
		"A": decimal.NewFromInt(100),
		"B": decimal.Zero,
		"C": decimal.NewFromInt(40),
	}
	events := &recordingEmitter{}
	store := NewStore(events, newCatalog(
		catalog.Product{ID: "A", Title: "Alpha", Price: catalog.Priced(100)},
		catalog.Product{ID: "B", Title: "Beta"},
		catalog.Product{ID: "C", Title: "Gamma", Price: catalog.Priced(40)},
	))

	steps := []struct {
		add bool
		id  string
	}{
		{add: true, id: "A"},
		{add: true, id: "C"},
		{add: true, id: "B"},
		{add: false, id: "A"},
		{add: true, id: "A"},
		{add: false, id: "C"},
		{add: false, id: "B"},
		{add: false, id: "A"},
	}
	for i, step := range steps {
		if step.add {
			require.True(t, store.Add(step.id), "step %d", i)
		} else {
			require.True(t, store.Remove(step.id), "step %d", i)
		}

		state := events.last(t)
		sum := decimal.Zero
		for _, id := range state.ItemIDs {
			sum = sum.Add(prices[id])
		}
		assert.True(t, state.Total.Equal(sum), "step %d: total %s, want %s", i, state.Total, sum)
		assert.True(t, store.Total().Equal(sum), "step %d", i)
		assert.Equal(t, len(state.ItemIDs), state.ItemCount, "step %d", i)
		assert.Equal(t, state.ItemCount == 0, state.IsEmpty, "step %d", i)
		assert.Equal(t, store.ItemIDs(), state.ItemIDs, "step %d", i)
	}
	assert.True(t, store.IsEmpty())
	assert.Len(t, events.events, len(steps))
}
