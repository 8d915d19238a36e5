// Package httperr writes the error envelope shared by every endpoint:
//
//	{ "error": { "code": "...", "message": "...", "details": ... } }
//
// Codes are stable and machine-readable; clients branch on them, so Used
// and Invalid reset tokens keep distinct codes.
package httperr

import (
	"encoding/json"
	"net/http"
)

// Stable machine-readable error codes.
const (
	CodeValidation        = "VALIDATION_ERROR"
	CodeUnauthorized      = "UNAUTHORIZED"
	CodeForbidden         = "FORBIDDEN"
	CodeConflict          = "CONFLICT"
	CodeNotFound          = "NOT_FOUND"
	CodeRateLimited       = "RATE_LIMITED"
	CodeResetTokenUsed    = "RESET_TOKEN_USED"
	CodeResetTokenInvalid = "RESET_TOKEN_INVALID"
	CodeInternal          = "INTERNAL"
)

// Detail is the inner error object.
type Detail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// Envelope is the outer error body.
type Envelope struct {
	Error Detail `json:"error"`
}

// Write emits the envelope with the given HTTP status.
func Write(w http.ResponseWriter, status int, code, message string, details any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(Envelope{Error: Detail{
		Code:    code,
		Message: message,
		Details: details,
	}})
}

// Internal emits the generic internal error. Implementation detail never
// leaks to the caller; the handler logs it server-side first.
func Internal(w http.ResponseWriter) {
	Write(w, http.StatusInternalServerError, CodeInternal, "internal error", nil)
}
