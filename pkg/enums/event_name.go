package enums

import "fmt"

// EventName identifies a message on the storefront event bus.
type EventName string

// Published by the stores and the controller.
const (
	EventCatalogLoaded EventName = "catalog:loaded"
	EventCatalogError  EventName = "catalog:error"
	EventBasketChanged EventName = "basket:changed"
	EventOrderValid    EventName = "order:valid"
	EventContactsValid EventName = "contacts:valid"
	EventOrderSuccess  EventName = "order:success"
	EventOrderError    EventName = "order:error"
	EventPageLocked    EventName = "page:locked"
)

// Published by the view layer.
const (
	EventProductSelect  EventName = "product:select"
	EventBasketAdd      EventName = "basket:add"
	EventBasketRemove   EventName = "basket:remove"
	EventBasketOpen     EventName = "basket:open"
	EventOrderOpen      EventName = "order:open"
	EventOrderPayment   EventName = "order:payment"
	EventOrderAddress   EventName = "order:address"
	EventOrderSubmit    EventName = "order:submit"
	EventContactsEmail  EventName = "contacts:email"
	EventContactsPhone  EventName = "contacts:phone"
	EventContactsSubmit EventName = "contacts:submit"
	EventSuccessClose   EventName = "success:close"
	EventModalClose     EventName = "modal:close"
)

var stateEventNames = []EventName{
	EventCatalogLoaded,
	EventCatalogError,
	EventBasketChanged,
	EventOrderValid,
	EventContactsValid,
	EventOrderSuccess,
	EventOrderError,
	EventPageLocked,
}

var intentEventNames = []EventName{
	EventProductSelect,
	EventBasketAdd,
	EventBasketRemove,
	EventBasketOpen,
	EventOrderOpen,
	EventOrderPayment,
	EventOrderAddress,
	EventOrderSubmit,
	EventContactsEmail,
	EventContactsPhone,
	EventContactsSubmit,
	EventSuccessClose,
	EventModalClose,
}

// String implements fmt.Stringer.
func (e EventName) String() string {
	return string(e)
}

// IsValid reports whether the value is a known EventName.
func (e EventName) IsValid() bool {
	return e.IsIntent() || contains(stateEventNames, e)
}

// IsIntent reports whether the event originates from the shopper (view layer).
func (e EventName) IsIntent() bool {
	return contains(intentEventNames, e)
}

// IntentEventNames returns the events the view layer may publish.
func IntentEventNames() []EventName {
	out := make([]EventName, len(intentEventNames))
	copy(out, intentEventNames)
	return out
}

// ParseEventName converts raw input into an EventName.
func ParseEventName(value string) (EventName, error) {
	candidate := EventName(value)
	if candidate.IsValid() {
		return candidate, nil
	}
	return "", fmt.Errorf("invalid event name %q", value)
}

func contains(list []EventName, value EventName) bool {
	for _, candidate := range list {
		if candidate == value {
			return true
		}
	}
	return false
}
