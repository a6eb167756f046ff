package app

import (
	"fmt"
	"net/http"
)

// DomainError is a failure the API reports deliberately, with a stable code
// the frontend can branch on. Anything else surfaces as SERVER_ERROR.
type DomainError struct {
	Status  int
	Code    string
	Message string
	Details any
}

func (e *DomainError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func domainError(status int, code, message string, details any) *DomainError {
	return &DomainError{
		Status:  status,
		Code:    code,
		Message: message,
		Details: details,
	}
}

func errNotFound(message string) *DomainError {
	return domainError(http.StatusNotFound, "NOT_FOUND", message, nil)
}

func errForbidden() *DomainError {
	return domainError(http.StatusForbidden, "FORBIDDEN", "Forbidden", nil)
}

func errValidation(message string, details any) *DomainError {
	return domainError(http.StatusUnprocessableEntity, "VALIDATION_ERROR", message, details)
}

func errNothingToUpdate() *DomainError {
	return domainError(http.StatusBadRequest, "NOTHING_TO_UPDATE", "Nothing to update", nil)
}

func errSlugExhausted(base string) *DomainError {
	return domainError(http.StatusConflict, "SLUG_EXHAUSTED",
		fmt.Sprintf("Could not allocate a unique slug for %q", base), nil)
}

func errDocumentLocked() *DomainError {
	return domainError(http.StatusConflict, "DOCUMENT_LOCKED", "Document is locked and can no longer be edited", nil)
}

func errUpstreamUnavailable(message string) *DomainError {
	return domainError(http.StatusServiceUnavailable, "UPSTREAM_UNAVAILABLE", message, nil)
}
