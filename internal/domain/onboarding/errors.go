package onboarding

import (
	"errors"
	"fmt"
)

var (
	ErrIncompleteStep      = errors.New("incomplete step")
	ErrUnknownStep         = errors.New("unknown onboarding step")
	ErrUnknownField        = errors.New("unknown draft field")
	ErrPlatformNotSelected = errors.New("platform not selected")
	ErrInvalidTarget       = errors.New("monthly target must be a non-negative number")
	ErrInvalidTransition   = errors.New("action not allowed in current state")
	ErrInvalidSwipe        = errors.New("swipe needs a finite offset and a positive width")
)

// IncompleteStepError carries the validation result that blocked a step.
type IncompleteStepError struct {
	Result Result
}

func (e *IncompleteStepError) Error() string {
	return fmt.Sprintf("%s %s: %s", ErrIncompleteStep, e.Result.Step, e.Result.Reason)
}

func (e *IncompleteStepError) Is(target error) bool {
	return target == ErrIncompleteStep
}
