package ledger

import "errors"

// ValidationError marks input that is malformed or internally inconsistent.
// Such writes never reach the store.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

func validationErrorf(reason string) error {
	return &ValidationError{Reason: reason}
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// ErrNoCommonGroup is returned when a settlement is requested between two
// users who share no group.
var ErrNoCommonGroup = errors.New("no common group found between these users")
