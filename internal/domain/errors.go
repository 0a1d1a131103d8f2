package domain

import "errors"

var (
	ErrRecordNotFound     = errors.New("payment record not found")
	ErrDuplicateOperation = errors.New("operation already in progress")
	ErrSubmitCooldown     = errors.New("submit cooldown active")
	ErrRatesNotFound      = errors.New("no rates stored for period")
	ErrInvalidRecord      = errors.New("invalid payment record")
	ErrBackendUnavailable = errors.New("backend unavailable")
)
