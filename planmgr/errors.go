package planmgr

import "fmt"

// InvalidKeyError is returned when a plan key is not well formed.
type InvalidKeyError struct {
	Key string
}

func (e InvalidKeyError) Error() string {
	return fmt.Sprintf("invalid plan key %q", e.Key)
}

func (e InvalidKeyError) Is(target error) bool {
	_, ok := target.(InvalidKeyError)
	return ok
}

// InvalidPatternError is returned for malformed name patterns.
type InvalidPatternError struct {
	Pattern string
}

func (e InvalidPatternError) Error() string {
	return fmt.Sprintf("invalid name pattern %q", e.Pattern)
}

func (e InvalidPatternError) Is(target error) bool {
	_, ok := target.(InvalidPatternError)
	return ok
}

// CorruptObjectError is returned when a stored plan message no longer
// translates to the plan its key names.
type CorruptObjectError struct {
	Key    string
	Reason string
}

func (e CorruptObjectError) Error() string {
	return fmt.Sprintf("stored plan %s is corrupt: %s", e.Key, e.Reason)
}

func (e CorruptObjectError) Is(target error) bool {
	_, ok := target.(CorruptObjectError)
	return ok
}
