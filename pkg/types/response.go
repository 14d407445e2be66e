package types

type SuccessEnvelope struct {
	Data any `json:"data"`
}

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

// IntentAck acknowledges an intent that was dispatched on the event loop.
type IntentAck struct {
	Event    string `json:"event"`
	Handlers int    `json:"handlers"`
}
