package engine

import "errors"

// Сентинели для маппинга в HTTP-статусы на уровне handlers.
// Конкретика добавляется через fmt.Errorf("%w: ...").
var (
	ErrValidation = errors.New("validation failed")
	ErrForbidden  = errors.New("forbidden")
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("conflict")
)
