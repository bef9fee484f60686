package gateway

import (
	"errors"
	"fmt"

	"github.com/muurk/klfgate/internal/klf"
)

// ErrRejected is matched by every *RejectedError.
var ErrRejected = errors.New("gateway rejected the request")

// RejectedError reports a confirmation whose status refused the request.
type RejectedError struct {
	Command klf.Command
	Status  byte
	Reason  string
}

func (e *RejectedError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("%s rejected: %s (status %d)", e.Command, e.Reason, e.Status)
	}
	return fmt.Sprintf("%s rejected (status %d)", e.Command, e.Status)
}

// Is makes errors.Is(err, ErrRejected) true.
func (e *RejectedError) Is(target error) bool {
	return target == ErrRejected
}

func rejected(cmd klf.Command, status byte, reason string) error {
	return &RejectedError{Command: cmd, Status: status, Reason: reason}
}

// IsRejected checks if the gateway refused a request
func IsRejected(err error) bool {
	return errors.Is(err, ErrRejected)
}
