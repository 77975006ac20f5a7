package upstream

import (
	"errors"
	"fmt"
)

// NotFoundError reports that an upstream service did not recognize an identifier
type NotFoundError struct {
	Service    string
	Identifier string
	StatusCode int
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Service, e.Identifier)
}

// UnavailableError reports a transport or decoding failure talking to an upstream service
type UnavailableError struct {
	Service string
	Err     error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("%s service unavailable: %v", e.Service, e.Err)
}

func (e *UnavailableError) Unwrap() error { return e.Err }

func outcomeOf(err error) string {
	if err == nil {
		return OutcomeSuccess
	}
	var notFound *NotFoundError
	if errors.As(err, &notFound) {
		return OutcomeNotFound
	}
	return OutcomeUnavailable
}
