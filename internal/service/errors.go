package service

import (
	"errors"
	"fmt"
)

var (
	ErrValidation = errors.New("validation") // 400
	ErrNotFound   = errors.New("not found")  // 404
	ErrConflict   = errors.New("conflict")   // 409

	ErrEmailTaken      = fmt.Errorf("email already registered: %w", ErrConflict)
	ErrNationalIDTaken = fmt.Errorf("national id already registered: %w", ErrConflict)

	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrSearchUnavailable  = errors.New("search unavailable") // 503
)
