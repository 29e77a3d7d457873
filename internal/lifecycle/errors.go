package lifecycle

import (
	"errors"
	"fmt"

	"github.com/spec-kit/complaint-service/internal/domain"
)

var (
	ErrInvalidTransition      = errors.New("invalid status transition")
	ErrMissingResolutionProof = errors.New("a photo is required to mark this complaint resolved")
	ErrUnauthorized           = errors.New("actor not permitted to perform this transition")
	ErrUnknownStatus          = errors.New("unknown status")
	ErrTerminalStatus         = errors.New("complaint is verified or closed")
)

// TransitionError carries the rejected request alongside the valid options.
type TransitionError struct {
	Current domain.Status
	Target  domain.Status
	Allowed []domain.Status
	Err     error
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("%v: %s -> %s", e.Err, e.Current, e.Target)
}

func (e *TransitionError) Unwrap() error {
	return e.Err
}
