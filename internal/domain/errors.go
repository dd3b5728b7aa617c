// Package domain provides shared domain-level sentinel errors.
package domain

import "errors"

// ErrNotFound indicates the requested entity does not exist.
var ErrNotFound = errors.New("not found")

// ErrValidation indicates the input was rejected before any state changed.
var ErrValidation = errors.New("validation failed")

// ErrConflict indicates the operation collides with existing state, such as
// a duplicate username or a registration request already decided.
var ErrConflict = errors.New("conflict")

// ErrWindowClosed indicates a meal-marking action outside the tenant's
// configured meal-time window.
var ErrWindowClosed = errors.New("meal window closed")
