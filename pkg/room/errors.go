package room

import (
	"errors"
	"fmt"
)

const (
	ErrorMissingSeparator     = "missing_separator"
	ErrorUUIDTooShort         = "uuid_too_short"
	ErrorMissingNameSeparator = "missing_name_separator"
	ErrorMalformedUUID        = "malformed_uuid"
)

// Error represents a stable, categorized identifier parse failure.
type Error struct {
	Category string
	Detail   string
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Detail == "" {
		return e.Category
	}

	return fmt.Sprintf("%s: %s", e.Category, e.Detail)
}

// NewError creates a categorized identifier error.
func NewError(category string, detail string) error {
	return &Error{Category: category, Detail: detail}
}

// CategoryFromError returns the stable category for an error when available.
func CategoryFromError(err error) string {
	if err == nil {
		return ""
	}

	var categorized *Error
	if errors.As(err, &categorized) {
		return categorized.Category
	}

	return ""
}
