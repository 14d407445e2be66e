package validators

import (
	"io"
	"net/http"

	"github.com/angelmondragon/storefront/internal/storefront"
	"github.com/angelmondragon/storefront/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront/pkg/errors"
)

// ParseIntent resolves the raw event name of an intent route.
func ParseIntent(raw string) (enums.EventName, error) {
	name, err := enums.ParseEventName(raw)
	if err != nil || !name.IsIntent() {
		return "", pkgerrors.New(pkgerrors.CodeNotFound, "unknown intent").WithDetails(map[string]any{"event": raw})
	}
	return name, nil
}

// DecodeIntent reads the payload for name from the request body. Intents without a payload
// ignore the body and return nil.
func DecodeIntent(r *http.Request, name enums.EventName) (any, error) {
	switch name {
	case enums.EventProductSelect, enums.EventBasketAdd, enums.EventBasketRemove:
		var p storefront.ProductIntent
		if err := DecodeJSONBody(r, &p); err != nil {
			return nil, err
		}
		p.ID = SanitizeString(p.ID, 0)
		return p, nil
	case enums.EventOrderPayment:
		var p storefront.PaymentIntent
		if err := DecodeJSONBody(r, &p); err != nil {
			return nil, err
		}
		return p, nil
	case enums.EventOrderAddress:
		var p storefront.AddressIntent
		if err := DecodeJSONBody(r, &p); err != nil {
			return nil, err
		}
		return p, nil
	case enums.EventContactsEmail:
		var p storefront.EmailIntent
		if err := DecodeJSONBody(r, &p); err != nil {
			return nil, err
		}
		return p, nil
	case enums.EventContactsPhone:
		var p storefront.PhoneIntent
		if err := DecodeJSONBody(r, &p); err != nil {
			return nil, err
		}
		return p, nil
	}
	if r.Body != nil {
		_, _ = io.Copy(io.Discard, io.LimitReader(r.Body, maxBodyBytes))
	}
	return nil, nil
}
