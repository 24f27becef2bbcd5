package stratify

import (
	"errors"
	"fmt"
	"strings"
)

var ErrInvalidConfig = errors.New("invalid stratification config")

// ConfigurationError is returned when the cohort table lacks a column that
// stratification needs. It is raised before any selection work is done.
type ConfigurationError struct {
	// Missing names each unresolvable field, e.g. "age (or year_of_birth)".
	Missing []string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("Missing required columns: %s", strings.Join(e.Missing, ", "))
}

// MissingField reports whether field is among the missing ones. Only the
// canonical name before any parenthesized alias is compared.
func (e *ConfigurationError) MissingField(field string) bool {
	for _, m := range e.Missing {
		if i := strings.Index(m, " ("); i >= 0 {
			m = m[:i]
		}
		if m == field {
			return true
		}
	}

	return false
}
