package plan

import (
	"errors"
	"fmt"
)

// ErrInvalidPlan matches every error caused by the content of a submitted
// plan, as opposed to failures of the system translating it.
var ErrInvalidPlan = errors.New("invalid plan")

// MalformedPlanError is returned when a plan message cannot be decoded.
type MalformedPlanError struct {
	Err error
}

func (e MalformedPlanError) Error() string {
	return fmt.Sprintf("malformed plan: %v", e.Err)
}

func (e MalformedPlanError) Unwrap() error {
	return e.Err
}

func (e MalformedPlanError) Is(target error) bool {
	_, ok := target.(MalformedPlanError)
	return ok || target == ErrInvalidPlan
}

// MissingRootError is returned when a plan has no root relation.
type MissingRootError struct{}

func (e MissingRootError) Error() string {
	return "plan has no root relation"
}

func (e MissingRootError) Is(target error) bool {
	_, ok := target.(MissingRootError)
	return ok || target == ErrInvalidPlan
}

// MultipleRootsError is returned when a plan has more than one root relation.
type MultipleRootsError struct {
	Count int
}

func (e MultipleRootsError) Error() string {
	return fmt.Sprintf("plan has %d root relations; expected exactly one", e.Count)
}

func (e MultipleRootsError) Is(target error) bool {
	_, ok := target.(MultipleRootsError)
	return ok || target == ErrInvalidPlan
}

// UnsupportedRelationError is returned for relation types mohair cannot
// translate.
type UnsupportedRelationError struct {
	Kind string
}

func (e UnsupportedRelationError) Error() string {
	return fmt.Sprintf("no translation for relation: %s", e.Kind)
}

func (e UnsupportedRelationError) Is(target error) bool {
	_, ok := target.(UnsupportedRelationError)
	return ok || target == ErrInvalidPlan
}

// MissingInputError is returned when a relation lacks a required input.
type MissingInputError struct {
	Kind  string
	Field string
}

func (e MissingInputError) Error() string {
	return fmt.Sprintf("%s relation is missing %s", e.Kind, e.Field)
}

func (e MissingInputError) Is(target error) bool {
	_, ok := target.(MissingInputError)
	return ok || target == ErrInvalidPlan
}

// InvalidRelationError is returned when a relation is structurally invalid.
type InvalidRelationError struct {
	Kind   string
	Reason string
}

func (e InvalidRelationError) Error() string {
	return fmt.Sprintf("invalid %s relation: %s", e.Kind, e.Reason)
}

func (e InvalidRelationError) Is(target error) bool {
	_, ok := target.(InvalidRelationError)
	return ok || target == ErrInvalidPlan
}
