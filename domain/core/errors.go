package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Data errors: surfaced immediately, never retried
	ErrColumnNotFound = errors.New("column not found")
	ErrTargetNotFound = errors.New("target column not found")
	ErrEmptyDataset   = errors.New("dataset is empty")
	ErrLengthMismatch = errors.New("features and labels length mismatch")

	// Split errors
	ErrDegenerateSplit = errors.New("stratified split requires at least 2 members per class")
	ErrInvalidTestSize = errors.New("test size must be between 0 and 1")

	// Training errors
	ErrVariantNotFound = errors.New("classifier variant not found")
	ErrModelNotFitted  = errors.New("model has not been fitted")

	// Report errors
	ErrReportFailed = errors.New("report generation failed")
)

// Error constructors with context
func NewColumnNotFoundError(name string) error {
	return fmt.Errorf("%w: %q", ErrColumnNotFound, name)
}

func NewTargetNotFoundError(name string) error {
	return fmt.Errorf("%w: %q", ErrTargetNotFound, name)
}

func NewDegenerateSplitError(class string, members int) error {
	return fmt.Errorf("%w: class %q has %d member(s)", ErrDegenerateSplit, class, members)
}

func NewVariantNotFoundError(name string, available []string) error {
	return fmt.Errorf("%w: %q (available: %v)", ErrVariantNotFound, name, available)
}

// Error checking helpers
func IsDataError(err error) bool {
	return errors.Is(err, ErrColumnNotFound) ||
		errors.Is(err, ErrTargetNotFound) ||
		errors.Is(err, ErrEmptyDataset) ||
		errors.Is(err, ErrLengthMismatch)
}

func IsDegenerateSplitError(err error) bool {
	return errors.Is(err, ErrDegenerateSplit)
}
