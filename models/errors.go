package models

import (
	"fmt"
	"strings"
)

// ValidationError reports malformed input caught before any lookup runs.
// The caller can always recover by correcting the named field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// NotFoundError reports referenced entities that do not exist or are not
// placeable. IDs carries every offending identifier, not just the first.
type NotFoundError struct {
	Resource string
	IDs      []string
}

func (e *NotFoundError) Error() string {
	if len(e.IDs) == 0 {
		return fmt.Sprintf("%s not found", e.Resource)
	}
	return fmt.Sprintf("%s not found: %s", e.Resource, strings.Join(e.IDs, ", "))
}

// BusinessRuleError reports entities that exist but violate a domain rule,
// such as assigning an inactive user or an illegal status transition. The
// message carries the complete detail so the caller never needs a follow-up
// query to understand the rejection.
type BusinessRuleError struct {
	Message string
}

func (e *BusinessRuleError) Error() string {
	return e.Message
}
