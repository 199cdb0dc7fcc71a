package models

import "github.com/pkg/errors"

// Классы отказов пайплайна. Стадии оборачивают их через errors.Wrapf,
// вызывающий код классифицирует через errors.Is.
var (
	ErrInsufficientData    = errors.New("insufficient data")
	ErrNoPattern           = errors.New("no pattern")
	ErrInvalidLevels       = errors.New("invalid levels")
	ErrConfiguration       = errors.New("configuration error")
	ErrProviderUnavailable = errors.New("provider unavailable")
)
