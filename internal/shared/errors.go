package shared

import "errors"

var (
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrInvalidInput indicates a request that failed validation.
	ErrInvalidInput = errors.New("invalid input")
)

// UserSafeMessage returns a message suitable for end users. Store-level
// failures are collapsed to a generic notice so internals never leak.
func UserSafeMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNotFound):
		return "The requested record does not exist"
	case errors.Is(err, ErrInvalidInput):
		return "The submitted data is not valid"
	default:
		return "The operation could not be completed"
	}
}
