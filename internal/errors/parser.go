package errors

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// ErrorInfo is a classified error: a stable code and a safe message.
type ErrorInfo struct {
	Code    string
	Message string
}

// ParseError classifies an error from the persistence or service layer
// into a client-facing code and message. Driver details never leak to the
// response; the raw error stays in the server log.
func ParseError(err error, context string) ErrorInfo {
	if err == nil {
		return ErrorInfo{
			Code:    InternalServerError,
			Message: "an internal error occurred",
		}
	}

	errStr := err.Error()
	errStrLower := strings.ToLower(errStr)

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrorInfo{
			Code:    ResourceNotFound,
			Message: notFoundMessage(context),
		}
	}

	// Constraint violations reported by the database driver.
	if strings.Contains(errStrLower, "duplicate key") || strings.Contains(errStrLower, "unique constraint") {
		return ErrorInfo{
			Code:    ResourceAlreadyExists,
			Message: "a record with the same identity already exists",
		}
	}
	if strings.Contains(errStrLower, "foreign key constraint") {
		return ErrorInfo{
			Code:    ResourceConflict,
			Message: "the record is referenced by other data",
		}
	}
	if strings.Contains(errStrLower, "violates not-null constraint") {
		return ErrorInfo{
			Code:    ValidationRequired,
			Message: "a required field is missing",
		}
	}

	if strings.Contains(errStrLower, "connection refused") ||
		strings.Contains(errStrLower, "no such host") ||
		strings.Contains(errStrLower, "timeout") {
		return ErrorInfo{
			Code:    InternalExternalAPI,
			Message: "an external service is unavailable, please retry later",
		}
	}

	return ErrorInfo{
		Code:    InternalServerError,
		Message: defaultMessage(context),
	}
}

func notFoundMessage(context string) string {
	switch context {
	case "template":
		return "product template not found"
	case "session":
		return "configuration session not found"
	case "lead":
		return "lead not found"
	case "variant":
		return "product variant not found"
	case "profile":
		return "profile not found"
	case "user":
		return "user not found"
	default:
		return "the requested record was not found"
	}
}

// ParseAndRespond classifies err and writes it as a JSON error response.
func ParseAndRespond(c interface{ JSON(int, interface{}) }, statusCode int, err error, context string) {
	errorInfo := ParseError(err, context)
	c.JSON(statusCode, ErrorResponse{
		Error:   errorInfo.Code,
		Message: errorInfo.Message,
	})
}

func defaultMessage(context string) string {
	if context == "" {
		return "an internal error occurred"
	}
	return "failed to process " + context + " request"
}
