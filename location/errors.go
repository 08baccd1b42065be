package location

import "fmt"

// InvalidLocationError is returned when a service location cannot be parsed.
type InvalidLocationError struct {
	Location string
	Reason   string
}

func (e InvalidLocationError) Error() string {
	return fmt.Sprintf("invalid service location %q: %s", e.Location, e.Reason)
}

func (e InvalidLocationError) Is(target error) bool {
	_, ok := target.(InvalidLocationError)
	return ok
}

func newInvalidLocationError(location, format string, args ...any) InvalidLocationError {
	return InvalidLocationError{Location: location, Reason: fmt.Sprintf(format, args...)}
}
