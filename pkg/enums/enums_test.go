package enums

import "testing"

func TestParseEventName(t *testing.T) {
	got, err := ParseEventName("basket:add")
	if err != nil || got != EventBasketAdd {
		t.Fatalf("expected basket:add, got %q err=%v", got, err)
	}
	if !got.IsIntent() {
		t.Fatalf("basket:add should be a shopper intent")
	}
	if EventBasketChanged.IsIntent() {
		t.Fatalf("basket:changed is a state event")
	}
	if _, err := ParseEventName("basket:*"); err == nil {
		t.Fatalf("expected wildcard names to be rejected")
	}
}

func TestIntentEventNamesReturnsCopy(t *testing.T) {
	names := IntentEventNames()
	names[0] = "tampered"
	if IntentEventNames()[0] != EventProductSelect {
		t.Fatalf("intent list must not be mutable by callers")
	}
}

func TestParsePaymentMethod(t *testing.T) {
	if _, err := ParsePaymentMethod("card"); err != nil {
		t.Fatalf("card should be accepted: %v", err)
	}
	if _, err := ParsePaymentMethod("crypto"); err == nil {
		t.Fatalf("expected unknown payment method to fail")
	}
	if PaymentMethod("").IsValid() {
		t.Fatalf("unset payment is not a valid method")
	}
}

func TestCheckoutStepIsModal(t *testing.T) {
	if CheckoutStepBrowse.IsModal() {
		t.Fatalf("browse is not modal")
	}
	for _, step := range []CheckoutStep{CheckoutStepPreview, CheckoutStepBasket, CheckoutStepDelivery, CheckoutStepContacts, CheckoutStepSuccess} {
		if !step.IsModal() {
			t.Fatalf("%s should be modal", step)
		}
	}
	if _, err := ParseCheckoutStep("payment"); err == nil {
		t.Fatalf("expected unknown step to fail")
	}
}

func TestValidationStateCanSubmit(t *testing.T) {
	if ValidationStatePristine.CanSubmit() || ValidationStateInvalid.CanSubmit() {
		t.Fatalf("only valid groups may submit")
	}
	if !ValidationStateValid.CanSubmit() {
		t.Fatalf("valid group should submit")
	}
}
