package enums

import "fmt"

// CheckoutStep is the screen the shopper is currently on.
type CheckoutStep string

const (
	CheckoutStepBrowse   CheckoutStep = "browse"
	CheckoutStepPreview  CheckoutStep = "preview"
	CheckoutStepBasket   CheckoutStep = "basket"
	CheckoutStepDelivery CheckoutStep = "delivery"
	CheckoutStepContacts CheckoutStep = "contacts"
	CheckoutStepSuccess  CheckoutStep = "success"
)

var validCheckoutSteps = []CheckoutStep{
	CheckoutStepBrowse,
	CheckoutStepPreview,
	CheckoutStepBasket,
	CheckoutStepDelivery,
	CheckoutStepContacts,
	CheckoutStepSuccess,
}

// String implements fmt.Stringer.
func (s CheckoutStep) String() string {
	return string(s)
}

// IsValid reports whether the value is a known CheckoutStep.
func (s CheckoutStep) IsValid() bool {
	for _, candidate := range validCheckoutSteps {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsModal reports whether the step is shown over the catalog and locks page scrolling.
func (s CheckoutStep) IsModal() bool {
	return s.IsValid() && s != CheckoutStepBrowse
}

// ParseCheckoutStep converts raw input into a CheckoutStep.
func ParseCheckoutStep(value string) (CheckoutStep, error) {
	for _, candidate := range validCheckoutSteps {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid checkout step %q", value)
}
