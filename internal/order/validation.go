package order

import (
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/angelmondragon/storefront/pkg/enums"
)

var validate = validator.New()

type deliveryRules struct {
	Payment string `validate:"required,oneof=card cash"`
	Address string `validate:"required"`
}

type contactRules struct {
	Email string `validate:"required"`
	Phone string `validate:"required"`
}

var ruleFields = map[string]Field{
	"Payment": FieldPayment,
	"Address": FieldAddress,
	"Email":   FieldEmail,
	"Phone":   FieldPhone,
}

var fieldMessages = map[Field]string{
	FieldPayment: "select a payment method",
	FieldAddress: "enter a delivery address",
	FieldEmail:   "enter an email",
	FieldPhone:   "enter a phone number",
}

// Validation is the outcome of validating one group. It is the payload of order:valid and
// contacts:valid.
type Validation struct {
	IsValid bool             `json:"isValid"`
	Errors  map[Field]string `json:"errors"`
	group   Group
}

// Message joins the error messages in field order.
func (v Validation) Message() string {
	if len(v.Errors) == 0 {
		return ""
	}
	fields := v.group.Fields()
	if len(fields) == 0 {
		fields = append(GroupDelivery.Fields(), GroupContacts.Fields()...)
	}
	parts := make([]string, 0, len(v.Errors))
	for _, field := range fields {
		if msg, ok := v.Errors[field]; ok {
			parts = append(parts, msg)
		}
	}
	return strings.Join(parts, "; ")
}

// State maps the outcome onto the group state machine.
func (v Validation) State() enums.ValidationState {
	if v.IsValid {
		return enums.ValidationStateValid
	}
	return enums.ValidationStateInvalid
}

func pristine(group Group) Validation {
	return Validation{IsValid: false, Errors: map[Field]string{}, group: group}
}

func validateDelivery(d Draft) Validation {
	return run(GroupDelivery, deliveryRules{
		Payment: strings.TrimSpace(string(d.Payment)),
		Address: strings.TrimSpace(d.Address),
	})
}

func validateContacts(d Draft) Validation {
	return run(GroupContacts, contactRules{
		Email: strings.TrimSpace(d.Email),
		Phone: strings.TrimSpace(d.Phone),
	})
}

func run(group Group, rules any) Validation {
	result := Validation{IsValid: true, Errors: map[Field]string{}, group: group}
	err := validate.Struct(rules)
	if err == nil {
		return result
	}
	result.IsValid = false
	errs, ok := err.(validator.ValidationErrors)
	if !ok {
		for _, field := range group.Fields() {
			result.Errors[field] = fieldMessages[field]
		}
		return result
	}
	for _, fieldErr := range errs {
		field, ok := ruleFields[fieldErr.StructField()]
		if !ok {
			continue
		}
		result.Errors[field] = fieldMessages[field]
	}
	return result
}
