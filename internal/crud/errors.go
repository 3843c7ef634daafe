package crud

import "errors"

// Reason identifies why a draft was rejected before reaching the gateway.
type Reason string

const (
	ReasonRequired  Reason = "required"
	ReasonDuplicate Reason = "duplicate"
)

// ValidationError is a local rejection of the draft.
type ValidationError struct {
	Reason Reason
	Field  string
}

func (e *ValidationError) Error() string {
	return "crud: " + e.Field + " " + string(e.Reason)
}

var (
	// ErrModalClosed is returned by Save when no draft is open.
	ErrModalClosed = errors.New("crud: no draft is open")
	// ErrDeclined is returned by Remove when the operator declines.
	ErrDeclined = errors.New("crud: delete declined")
)

// IsValidation reports whether err is a local ValidationError with reason.
func IsValidation(err error, reason Reason) bool {
	var verr *ValidationError
	return errors.As(err, &verr) && verr.Reason == reason
}
