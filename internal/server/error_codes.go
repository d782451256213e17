package server

import "net/http"

const (
	// Validation (1xxx)
	ErrCodeInvalidArgument = 1000
	ErrCodeInvalidJSON     = 1001
	ErrCodeRequestTooLarge = 1002
	ErrCodeMissingRequired = 1009
	ErrCodeInvalidTime     = 1010
	ErrCodeInvalidBool     = 1011

	// Domain state (2xxx)
	ErrCodeTodoNotFound  = 2001
	ErrCodeMediaNotFound = 2003
	ErrCodeUploadFailed  = 2201

	// Internal/system (4xxx)
	ErrCodeInternal       = 4001
	ErrCodeStoreFailure   = 4002
	ErrCodeNotImplemented = 4005
)

// errorSlugs is the string form clients switch on. Codes that share an HTTP
// meaning share a slug.
var errorSlugs = map[int]string{
	ErrCodeInvalidArgument: "invalid_argument",
	ErrCodeInvalidJSON:     "invalid_argument",
	ErrCodeInvalidBool:     "invalid_argument",
	ErrCodeRequestTooLarge: "request_too_large",
	ErrCodeMissingRequired: "missing_required",
	ErrCodeInvalidTime:     "invalid_time",
	ErrCodeTodoNotFound:    "not_found",
	ErrCodeMediaNotFound:   "not_found",
	ErrCodeUploadFailed:    "upload_failed",
	ErrCodeInternal:        "internal",
	ErrCodeStoreFailure:    "internal",
	ErrCodeNotImplemented:  "not_implemented",
}

func defaultErrorCodeByStatus(status int) int {
	switch status {
	case http.StatusBadRequest:
		return ErrCodeInvalidArgument
	case http.StatusNotFound:
		return ErrCodeTodoNotFound
	case http.StatusNotImplemented:
		return ErrCodeNotImplemented
	case http.StatusInternalServerError:
		return ErrCodeInternal
	}
	return 0
}
