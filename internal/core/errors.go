package core

import (
	"errors"
	"fmt"
)

// Error taxonomy. Every specific error below wraps one of these two so
// callers at the boundary can classify with errors.Is.
var (
	ErrInvalidInput    = errors.New("invalid input")
	ErrMissingResource = errors.New("missing resource")
)

var (
	ErrInvalidDate         = fmt.Errorf("%w: invalid date", ErrInvalidInput)
	ErrInvalidDay          = fmt.Errorf("%w: invalid day", ErrInvalidInput)
	ErrInvalidMonth        = fmt.Errorf("%w: invalid month", ErrInvalidInput)
	ErrInvalidAmount       = fmt.Errorf("%w: invalid amount", ErrInvalidInput)
	ErrInvalidRate         = fmt.Errorf("%w: invalid rate", ErrInvalidInput)
	ErrInvalidInstallments = fmt.Errorf("%w: installment count must be between 1 and %d", ErrInvalidInput, MaxInstallments)
	ErrInvalidDueDay       = fmt.Errorf("%w: due day must be between 1 and 31", ErrInvalidInput)
	ErrEmptyDescription    = fmt.Errorf("%w: empty description", ErrInvalidInput)
	ErrDescriptionTooLong  = fmt.Errorf("%w: description too long (max 200 characters)", ErrInvalidInput)
	ErrEmptyCategory       = fmt.Errorf("%w: empty category", ErrInvalidInput)
	ErrEmptyPaymentMethod  = fmt.Errorf("%w: empty payment method", ErrInvalidInput)
	ErrEmptyInstrument     = fmt.Errorf("%w: empty instrument type", ErrInvalidInput)
	ErrEmptyGoal           = fmt.Errorf("%w: empty goal", ErrInvalidInput)
	ErrEmptyCardName       = fmt.Errorf("%w: empty card name", ErrInvalidInput)

	ErrUnknownCard  = fmt.Errorf("%w: card not defined", ErrMissingResource)
	ErrRowNotFound  = fmt.Errorf("%w: row not found", ErrMissingResource)
	ErrFileNotFound = fmt.Errorf("%w: file not found", ErrMissingResource)
)
