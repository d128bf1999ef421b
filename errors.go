// Package gusort structured error types for better error handling
package gusort

import (
	"errors"
	"fmt"
)

// ErrorType represents categories of errors
type ErrorType int

const (
	// Memory errors
	ErrTypeMemory ErrorType = iota
	// Invalid argument errors
	ErrTypeInvalidArg
	// Capacity errors: caller-provided buffers smaller than required
	ErrTypeCapacity
	// Execution errors
	ErrTypeExecution
	// Device errors
	ErrTypeDevice
)

// SortError represents a structured error with context
type SortError struct {
	Type    ErrorType
	Op      string // Operation that failed
	Message string // Human-readable message
	Err     error  // Underlying error if any
}

// Error implements the error interface
func (e *SortError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("gusort %s error in %s: %s (caused by: %v)",
			e.Type.String(), e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("gusort %s error in %s: %s",
		e.Type.String(), e.Op, e.Message)
}

// Unwrap allows error chain inspection
func (e *SortError) Unwrap() error {
	return e.Err
}

// String returns the error type as a string
func (t ErrorType) String() string {
	switch t {
	case ErrTypeMemory:
		return "Memory"
	case ErrTypeInvalidArg:
		return "InvalidArgument"
	case ErrTypeCapacity:
		return "Capacity"
	case ErrTypeExecution:
		return "Execution"
	case ErrTypeDevice:
		return "Device"
	default:
		return "Unknown"
	}
}

// Sentinel errors
var (
	// ErrInvalidDevice indicates an unknown device ID
	ErrInvalidDevice = errors.New("gusort: invalid device")

	// ErrDoubleFree indicates a DevicePtr was freed twice
	ErrDoubleFree = errors.New("gusort: double free of device pointer")
)

// Common error constructors

// NewMemoryError creates a memory-related error
func NewMemoryError(op string, message string, err error) error {
	return &SortError{
		Type:    ErrTypeMemory,
		Op:      op,
		Message: message,
		Err:     err,
	}
}

// NewInvalidArgError creates an invalid argument error
func NewInvalidArgError(op string, message string) error {
	return &SortError{
		Type:    ErrTypeInvalidArg,
		Op:      op,
		Message: message,
	}
}

// NewCapacityError creates a capacity violation error. Capacity violations
// are always detected before any kernel launch so a failed call never
// partially commits a pass.
func NewCapacityError(op string, message string) error {
	return &SortError{
		Type:    ErrTypeCapacity,
		Op:      op,
		Message: message,
	}
}

// NewExecutionError creates an execution error
func NewExecutionError(op string, message string, err error) error {
	return &SortError{
		Type:    ErrTypeExecution,
		Op:      op,
		Message: message,
		Err:     err,
	}
}
