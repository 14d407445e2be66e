package order

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/storefront/internal/catalog"
	"github.com/angelmondragon/storefront/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront/pkg/errors"
)

// Store keeps the order draft and the validation state of its two groups.
type Store struct {
	events catalog.Emitter

	draft   Draft
	states  map[Group]enums.ValidationState
	results map[Group]Validation
}

func NewStore(events catalog.Emitter) *Store {
	s := &Store{events: events}
	s.reset()
	return s
}

// SetField stores value and re-validates the field's group only.
func (s *Store) SetField(field Field, value string) error {
	switch field {
	case FieldPayment:
		s.draft.Payment = enums.PaymentMethod(strings.TrimSpace(value))
	case FieldAddress:
		s.draft.Address = value
	case FieldEmail:
		s.draft.Email = value
	case FieldPhone:
		s.draft.Phone = value
	default:
		return pkgerrors.New(pkgerrors.CodeValidation, "unknown order field").
			WithDetails(map[string]any{"field": string(field)})
	}
	s.validate(field.Group())
	return nil
}

// ValidateDelivery re-derives the delivery group from the current draft.
func (s *Store) ValidateDelivery() Validation {
	return s.validate(GroupDelivery)
}

// ValidateContacts re-derives the contacts group from the current draft.
func (s *Store) ValidateContacts() Validation {
	return s.validate(GroupContacts)
}

func (s *Store) State(group Group) enums.ValidationState {
	state, ok := s.states[group]
	if !ok {
		return enums.ValidationStatePristine
	}
	return state
}

// Result returns the last validation outcome of group.
func (s *Store) Result(group Group) Validation {
	result, ok := s.results[group]
	if !ok {
		return pristine(group)
	}
	return copyValidation(result)
}

func (s *Store) Draft() Draft {
	return s.draft
}

// Ready returns a state conflict unless both groups are valid.
func (s *Store) Ready() error {
	delivery := s.State(GroupDelivery)
	contacts := s.State(GroupContacts)
	if delivery.CanSubmit() && contacts.CanSubmit() {
		return nil
	}
	return pkgerrors.New(pkgerrors.CodeStateConflict, "order draft is not ready").
		WithDetails(map[string]any{
			"delivery": delivery.String(),
			"contacts": contacts.String(),
		})
}

// BuildOrder combines the draft with the basket snapshot. It does not validate.
func (s *Store) BuildOrder(itemIDs []string, total decimal.Decimal) Order {
	items := make([]string, len(itemIDs))
	copy(items, itemIDs)
	return Order{
		Payment: s.draft.Payment,
		Address: s.draft.Address,
		Email:   s.draft.Email,
		Phone:   s.draft.Phone,
		Items:   items,
		Total:   total,
	}
}

// Clear resets the draft and both groups to pristine, then publishes both groups as invalid
// with no errors.
func (s *Store) Clear() {
	s.reset()
	s.publish(GroupDelivery, pristine(GroupDelivery))
	s.publish(GroupContacts, pristine(GroupContacts))
}

func (s *Store) reset() {
	s.draft = Draft{}
	s.states = map[Group]enums.ValidationState{
		GroupDelivery: enums.ValidationStatePristine,
		GroupContacts: enums.ValidationStatePristine,
	}
	s.results = map[Group]Validation{
		GroupDelivery: pristine(GroupDelivery),
		GroupContacts: pristine(GroupContacts),
	}
}

func (s *Store) validate(group Group) Validation {
	var result Validation
	switch group {
	case GroupDelivery:
		result = validateDelivery(s.draft)
	case GroupContacts:
		result = validateContacts(s.draft)
	default:
		return pristine(group)
	}
	s.states[group] = result.State()
	s.results[group] = result
	s.publish(group, result)
	return copyValidation(result)
}

func (s *Store) publish(group Group, result Validation) {
	if s.events == nil {
		return
	}
	name := enums.EventOrderValid
	if group == GroupContacts {
		name = enums.EventContactsValid
	}
	s.events.Emit(name, copyValidation(result))
}

func copyValidation(v Validation) Validation {
	errs := make(map[Field]string, len(v.Errors))
	for k, msg := range v.Errors {
		errs[k] = msg
	}
	v.Errors = errs
	return v
}
