package enums

// ValidationState tracks one validation group of the order draft.
// Pristine is only re-entered through a draft reset.
type ValidationState string

const (
	ValidationStatePristine ValidationState = "pristine"
	ValidationStateInvalid  ValidationState = "invalid"
	ValidationStateValid    ValidationState = "valid"
)

// String implements fmt.Stringer.
func (v ValidationState) String() string {
	return string(v)
}

// CanSubmit reports whether the step guarded by this group may be submitted.
func (v ValidationState) CanSubmit() bool {
	return v == ValidationStateValid
}
