package entity

import (
	"errors"
	"fmt"
)

var (
	// Таксономия ошибок ядра. Все слои возвращают их через %w,
	// обработчики сопоставляют через errors.Is
	ErrValidation       = errors.New("validation error")
	ErrConflict         = errors.New("conflict")
	ErrInvalidState     = errors.New("invalid state")
	ErrNotFound         = errors.New("not found")
	ErrIncompleteReview = errors.New("incomplete review")
)

// Validationf оборачивает ErrValidation с пояснением для пользователя
func Validationf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// InvalidStatef оборачивает ErrInvalidState с пояснением
func InvalidStatef(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidState, fmt.Sprintf(format, args...))
}
