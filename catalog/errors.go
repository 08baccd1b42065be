package catalog

import "fmt"

// PlanNotFoundError is returned when the catalog has no entry for a hash.
type PlanNotFoundError struct {
	Hash string
}

func (e PlanNotFoundError) Error() string {
	return fmt.Sprintf("plan %s not found", e.Hash)
}

func (e PlanNotFoundError) Is(target error) bool {
	_, ok := target.(PlanNotFoundError)
	return ok
}

// NewPlanNotFoundError constructs a PlanNotFoundError.
func NewPlanNotFoundError(hash string) PlanNotFoundError {
	return PlanNotFoundError{Hash: hash}
}
