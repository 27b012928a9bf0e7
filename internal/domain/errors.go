package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound           = errors.New("resource not found")
	ErrInvalidInput       = errors.New("invalid input")
	ErrConflict           = errors.New("conflict with current state")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("access denied")
	ErrInsufficientStock  = errors.New("insufficient stock")
	ErrAlreadyProcessed   = errors.New("deduction already performed for this order")
	ErrTransactionFailure = errors.New("stock transaction failed")
	ErrCentralSector      = errors.New("operation not allowed on the central warehouse sector")
)
