package application

import (
	"errors"
	"fmt"
)

var (
	ErrValidation = errors.New("validation error")
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("duplicate application")

	// ErrDuplicate is returned by a Store when the insert itself violates
	// the (user_id, company, role) unique index.
	ErrDuplicate = errors.New("unique violation")
)

// ConflictError is returned by Create when the caller already tracks the
// same company and role. Existing is the record that blocked the insert.
type ConflictError struct {
	Existing Application
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s: %s / %s (id=%d)", ErrConflict, e.Existing.Company, e.Existing.Role, e.Existing.ID)
}

func (e *ConflictError) Unwrap() error { return ErrConflict }
