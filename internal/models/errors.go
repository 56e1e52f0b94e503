package models

import "fmt"

// UnknownItemError reports a response or lookup that references a code the
// bank does not contain. Fatal for the single operation; never retried.
type UnknownItemError struct {
	Code string
}

func (e *UnknownItemError) Error() string {
	return fmt.Sprintf("unknown item code %q", e.Code)
}

// OutOfRangeError reports a raw value outside the item's own scale bounds.
type OutOfRangeError struct {
	Code  string
	Value int
	Min   int
	Max   int
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("value %d for item %q outside scale [%d,%d]", e.Value, e.Code, e.Min, e.Max)
}

// UnknownDimensionError reports a dimension tag outside the fixed set.
type UnknownDimensionError struct {
	Dimension Dimension
}

func (e *UnknownDimensionError) Error() string {
	return fmt.Sprintf("unknown dimension %q", e.Dimension)
}

// BadItemError reports a malformed item encountered while building the bank.
// Fatal for startup.
type BadItemError struct {
	Code   string
	Reason string
}

func (e *BadItemError) Error() string {
	return fmt.Sprintf("bad bank item %q: %s", e.Code, e.Reason)
}

// DuplicateAnswerError reports a second answer for an item already answered
// in the same session.
type DuplicateAnswerError struct {
	Code string
}

func (e *DuplicateAnswerError) Error() string {
	return fmt.Sprintf("item %q already answered in this session", e.Code)
}
