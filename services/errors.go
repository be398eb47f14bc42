package services

import (
	"fmt"
	"strings"
)

// NotFoundError reports a missing subject, criterion, rubric or reviewer.
type NotFoundError struct {
	Resource string
	ID       int
}

func (e *NotFoundError) Error() string {
	if e.ID == 0 {
		return fmt.Sprintf("%s not found", e.Resource)
	}
	return fmt.Sprintf("%s %d not found", e.Resource, e.ID)
}

// InvalidStateError reports a transition attempted from a disallowed source
// state, including the optimistic-concurrency conflict where the status
// changed between read and write.
type InvalidStateError struct {
	Subject   string
	Current   string
	Attempted string
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("%s cannot %s while %s", e.Subject, e.Attempted, e.Current)
}

// ForbiddenError reports an actor lacking the required role, review level or
// department scope.
type ForbiddenError struct {
	Reason string
}

func (e *ForbiddenError) Error() string {
	return e.Reason
}

// ValidationError carries the complete list of violations, not just the
// first.
type ValidationError struct {
	Violations []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Violations, "; ")
}

// UnprocessableError reports a structurally valid request that is missing a
// mandatory companion value, e.g. a revision decision without a deadline.
type UnprocessableError struct {
	Reason string
}

func (e *UnprocessableError) Error() string {
	return e.Reason
}

func notFound(resource string, id int) error {
	return &NotFoundError{Resource: resource, ID: id}
}

func invalidState(subject, current, attempted string) error {
	return &InvalidStateError{Subject: subject, Current: current, Attempted: attempted}
}

func forbidden(format string, args ...interface{}) error {
	return &ForbiddenError{Reason: fmt.Sprintf(format, args...)}
}

func unprocessable(format string, args ...interface{}) error {
	return &UnprocessableError{Reason: fmt.Sprintf(format, args...)}
}

// conflict marks the CAS failure case: the row was read in an allowed state
// but changed before the guarded update landed.
func conflict(subject, attempted string) error {
	return &InvalidStateError{Subject: subject, Current: "being modified concurrently", Attempted: attempted}
}
