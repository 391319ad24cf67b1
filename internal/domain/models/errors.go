package models

import "fmt"

// InsufficientDataError indicates the available history is shorter than a
// component's minimum.
type InsufficientDataError struct {
	Symbol string
	Need   int
	Have   int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("insufficient data for %s: need %d bars, have %d", e.Symbol, e.Need, e.Have)
}

// UnknownTimeframeError indicates an unrecognized timeframe key.
type UnknownTimeframeError struct {
	Timeframe string
}

func (e *UnknownTimeframeError) Error() string {
	return fmt.Sprintf("unsupported timeframe: %s", e.Timeframe)
}

// UnknownRiskLevelError indicates an unrecognized risk-level name.
type UnknownRiskLevelError struct {
	Level string
}

func (e *UnknownRiskLevelError) Error() string {
	return fmt.Sprintf("invalid risk level: %s", e.Level)
}

// CollaboratorError wraps a failure from an external fetch/model/text
// capability. The fusion path degrades on these; all other error kinds
// propagate to the caller unmodified.
type CollaboratorError struct {
	Op  string
	Err error
}

func (e *CollaboratorError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *CollaboratorError) Unwrap() error { return e.Err }

// Collaborator wraps err as a CollaboratorError, or returns nil.
func Collaborator(op string, err error) error {
	if err == nil {
		return nil
	}
	return &CollaboratorError{Op: op, Err: err}
}
