package dto

import (
	"net/http"
	"strings"
)

// General error codes used by the HTTP layer itself
const (
	ErrCodeInternal   = "INTERNAL_ERROR"
	ErrCodeBadRequest = "BAD_REQUEST"
	ErrCodeNotFound   = "NOT_FOUND"
	ErrCodeValidation = "VALIDATION_ERROR"
)

// DomainErrorHTTPStatus maps domain error codes to HTTP status codes.
// Codes with an INVALID_ prefix default to 400 and need no entry here.
var DomainErrorHTTPStatus = map[string]int{
	// Missing resources
	"NOT_FOUND":          http.StatusNotFound,
	"PARTY_NOT_FOUND":    http.StatusNotFound,
	"LINE_NOT_FOUND":     http.StatusNotFound,
	"TAX_CODE_NOT_FOUND": http.StatusNotFound,

	// Conflicts
	"ALREADY_EXISTS":          http.StatusConflict,
	"ALREADY_INVOICED":        http.StatusConflict,
	"DUPLICATE_TAX_CODE":      http.StatusConflict,
	"CONCURRENCY_CONFLICT":    http.StatusConflict,
	"CONCURRENT_MODIFICATION": http.StatusConflict,
	"RUN_IN_PROGRESS":         http.StatusConflict,

	// Business rule violations
	"INVALID_STATE":              http.StatusUnprocessableEntity,
	"INVALID_START_DATE":         http.StatusUnprocessableEntity,
	"INACTIVE_PARTY":             http.StatusUnprocessableEntity,
	"EMPTY_INVOICE":              http.StatusUnprocessableEntity,
	"MISSING_REVENUE_ACCOUNT":    http.StatusUnprocessableEntity,
	"MISSING_RECEIVABLE_ACCOUNT": http.StatusUnprocessableEntity,

	// Input errors
	ErrCodeBadRequest: http.StatusBadRequest,
	ErrCodeValidation: http.StatusBadRequest,
}

// GetHTTPStatus returns the HTTP status code for a domain error code
func GetHTTPStatus(code string) int {
	if status, ok := DomainErrorHTTPStatus[code]; ok {
		return status
	}
	if strings.HasPrefix(code, "INVALID_") {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
