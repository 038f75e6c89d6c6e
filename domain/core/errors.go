package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Input errors
	ErrInputRead       = errors.New("failed to read dataset")
	ErrEmptyInput      = fmt.Errorf("%w: no columns to parse from file", ErrInputRead)
	ErrUnsupportedType = fmt.Errorf("%w: unsupported file type", ErrInputRead)

	// Column errors
	ErrColumnNotFound       = errors.New("column not found")
	ErrDuplicateColumn      = errors.New("column selected more than once")
	ErrNonNumericClassifier = errors.New("classifier column is not numeric")

	// Configuration errors
	ErrInvalidMode      = errors.New("invalid processing mode")
	ErrInvalidNaming    = errors.New("invalid found-terms naming rule")
	ErrInvalidPrecision = errors.New("invalid percentage precision")
)

// Error constructors with context
func NewColumnNotFoundError(role, column string) error {
	return fmt.Errorf("%w: %s column %q", ErrColumnNotFound, role, column)
}

func NewDuplicateColumnError(column string) error {
	return fmt.Errorf("%w: %q", ErrDuplicateColumn, column)
}

func NewNonNumericError(column string, row int, raw string) error {
	return fmt.Errorf("%w: %q has value %q at row %d", ErrNonNumericClassifier, column, raw, row)
}

func NewInputReadError(detail string, err error) error {
	if err == nil {
		return fmt.Errorf("%w: %s", ErrInputRead, detail)
	}
	return fmt.Errorf("%w: %s: %v", ErrInputRead, detail, err)
}

// Error checking helpers
func IsInputError(err error) bool {
	return errors.Is(err, ErrInputRead)
}

func IsColumnError(err error) bool {
	return errors.Is(err, ErrColumnNotFound) ||
		errors.Is(err, ErrDuplicateColumn) ||
		errors.Is(err, ErrNonNumericClassifier)
}

func IsConfigError(err error) bool {
	return errors.Is(err, ErrInvalidMode) ||
		errors.Is(err, ErrInvalidNaming) ||
		errors.Is(err, ErrInvalidPrecision)
}
