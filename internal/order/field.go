package order

import "fmt"

// Field names one editable value of the draft.
type Field string

const (
	FieldPayment Field = "payment"
	FieldAddress Field = "address"
	FieldEmail   Field = "email"
	FieldPhone   Field = "phone"
)

// Group is a set of fields validated and submitted together.
type Group string

const (
	GroupDelivery Group = "delivery"
	GroupContacts Group = "contacts"
)

var groupFields = map[Group][]Field{
	GroupDelivery: {FieldPayment, FieldAddress},
	GroupContacts: {FieldEmail, FieldPhone},
}

// Group returns the validation group owning the field.
func (f Field) Group() Group {
	switch f {
	case FieldPayment, FieldAddress:
		return GroupDelivery
	case FieldEmail, FieldPhone:
		return GroupContacts
	}
	return ""
}

func (f Field) IsValid() bool {
	return f.Group() != ""
}

// Fields returns the group's fields in display order.
func (g Group) Fields() []Field {
	fields := groupFields[g]
	out := make([]Field, len(fields))
	copy(out, fields)
	return out
}

func ParseField(value string) (Field, error) {
	field := Field(value)
	if !field.IsValid() {
		return "", fmt.Errorf("invalid order field %q", value)
	}
	return field, nil
}
