package pushdown

import (
	"errors"
	"fmt"
)

// Predefined error types.
var (
	// ErrMachineTerminated indicates a tick was attempted after the machine
	// reached its final state.
	ErrMachineTerminated = errors.New("machine already terminated")
	// ErrReentrantTick indicates Tick was called while a tick was in progress.
	ErrReentrantTick = errors.New("tick re-entered while a tick is in progress")
	// ErrEmptyStack indicates a pop that would leave the stack empty while
	// the machine is not terminating.
	ErrEmptyStack = errors.New("pop would empty the state stack")
	// ErrStateNotFound indicates a referenced state is not registered.
	ErrStateNotFound = errors.New("state not found")
	// ErrNoStates indicates the registry holds no states.
	ErrNoStates = errors.New("registry has no states")
	// ErrRegistrySealed indicates a descriptor mutation after machine construction.
	ErrRegistrySealed = errors.New("registry is sealed; descriptors are immutable after construction")

	// ErrNilConfig indicates that machine construction got no configuration.
	ErrNilConfig = errors.New("config is required")
	// ErrConfigNameRequired indicates that a configuration name is required.
	ErrConfigNameRequired = errors.New("config name is required")
	// ErrInitialStateRequired indicates that an initial state is required.
	ErrInitialStateRequired = errors.New("initial state is required")
	// ErrFinalStateRequired indicates that a final state is required.
	ErrFinalStateRequired = errors.New("final state is required")
	// ErrDefaultErrorStateRequired indicates that a default error state is required.
	ErrDefaultErrorStateRequired = errors.New("default error state is required")
	// ErrStateNameRequired indicates that a state name is required.
	ErrStateNameRequired = errors.New("state name is required")
	// ErrDuplicateStateName indicates that a duplicate state name was found.
	ErrDuplicateStateName = errors.New("duplicate state name")
	// ErrInvalidTimeout indicates that a timeout value could not be parsed.
	ErrInvalidTimeout = errors.New("invalid timeout duration")
	// ErrTimeoutTargetWithoutDuration indicates a timeout target with no budget.
	ErrTimeoutTargetWithoutDuration = errors.New("timeout target configured without a timeout duration")
	// ErrRetryTargetWithoutLimit indicates a retry target with no retry limit.
	ErrRetryTargetWithoutLimit = errors.New("retry target configured without a retry limit")
	// ErrNegativeRetryLimit indicates a retry limit below zero.
	ErrNegativeRetryLimit = errors.New("retry limit must not be negative")
	// ErrNilFaultClass indicates a fault route registered with a nil class.
	ErrNilFaultClass = errors.New("fault route requires a non-nil error class")
)

// StateError wraps an error with state context.
type StateError struct {
	State string
	Err   error
}

func (e *StateError) Error() string {
	return fmt.Sprintf("state %s: %v", e.State, e.Err)
}

func (e *StateError) Unwrap() error {
	return e.Err
}

// TransitionError wraps an error with transition context.
type TransitionError struct {
	From string
	To   string
	Err  error
}

func (e *TransitionError) Error() string {
	if e.To == "" {
		return fmt.Sprintf("transition from %s: %v", e.From, e.Err)
	}

	return fmt.Sprintf("transition %s -> %s: %v", e.From, e.To, e.Err)
}

func (e *TransitionError) Unwrap() error {
	return e.Err
}

// WrapStateError wraps an error with state context.
func WrapStateError(state string, err error) error {
	if err == nil {
		return nil
	}

	return &StateError{
		State: state,
		Err:   err,
	}
}

// WrapTransitionError wraps an error with transition context.
func WrapTransitionError(from, to string, err error) error {
	if err == nil {
		return nil
	}

	return &TransitionError{
		From: from,
		To:   to,
		Err:  err,
	}
}
