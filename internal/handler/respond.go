package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/modelodev/scrumbringer/internal/domain"
	"github.com/modelodev/scrumbringer/internal/httperr"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeDomainError maps domain errors onto the stable code taxonomy.
// Anything unmapped is an internal failure: logged in full, surfaced as a
// bare INTERNAL with no leaked detail.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrPasswordTooShort):
		httperr.Write(w, http.StatusBadRequest, httperr.CodeValidation,
			"password must be at least 12 characters", map[string]int{"min_length": domain.MinPasswordLen})
	case errors.Is(err, domain.ErrInvalidInput):
		httperr.Write(w, http.StatusBadRequest, httperr.CodeValidation, "invalid input", nil)
	case errors.Is(err, domain.ErrInvalidCredentials):
		httperr.Write(w, http.StatusUnauthorized, httperr.CodeUnauthorized, "invalid credentials", nil)
	case errors.Is(err, domain.ErrEmailExists):
		httperr.Write(w, http.StatusConflict, httperr.CodeConflict, "email already registered", nil)
	case errors.Is(err, domain.ErrUserNotFound):
		httperr.Write(w, http.StatusNotFound, httperr.CodeNotFound, "user not found", nil)
	case errors.Is(err, domain.ErrResetTokenUsed):
		httperr.Write(w, http.StatusForbidden, httperr.CodeResetTokenUsed, "reset token already used", nil)
	case errors.Is(err, domain.ErrResetTokenInvalid):
		httperr.Write(w, http.StatusForbidden, httperr.CodeResetTokenInvalid, "reset token is not valid", nil)
	default:
		slog.Error("internal error",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()),
		)
		httperr.Internal(w)
	}
}
