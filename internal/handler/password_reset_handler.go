package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/modelodev/scrumbringer/internal/domain"
	"github.com/modelodev/scrumbringer/internal/httperr"
	"github.com/modelodev/scrumbringer/internal/observability"
	"github.com/modelodev/scrumbringer/internal/service"
)

// PasswordResetHandler exposes the reset-token lifecycle over HTTP. All
// three endpoints sit behind the fixed-window rate limiter.
type PasswordResetHandler struct {
	resets *service.PasswordResetService
}

// NewPasswordResetHandler creates a new password reset handler.
func NewPasswordResetHandler(resets *service.PasswordResetService) *PasswordResetHandler {
	return &PasswordResetHandler{resets: resets}
}

// CreateResetRequest starts the reset flow.
type CreateResetRequest struct {
	Email string `json:"email"`
}

// CreateResetResponse always carries a token: the shape is identical
// whether or not the email is registered.
type CreateResetResponse struct {
	Token   string `json:"token"`
	URLPath string `json:"url_path"`
}

// ValidateResetResponse reports the owning email of an Active token.
type ValidateResetResponse struct {
	Email string `json:"email"`
}

// ConsumeResetRequest redeems a token for a new password.
type ConsumeResetRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

// Create handles POST /password-resets. The response is 2xx regardless of
// whether the email exists; anything else would let a caller enumerate
// registered addresses.
func (h *PasswordResetHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateResetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperr.Write(w, http.StatusBadRequest, httperr.CodeValidation, "invalid request body", nil)
		return
	}
	if req.Email == "" {
		httperr.Write(w, http.StatusBadRequest, httperr.CodeValidation, "email is required", nil)
		return
	}

	observability.ResetRequestsTotal.Inc()

	token, err := h.resets.RequestReset(r.Context(), req.Email)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, CreateResetResponse{
		Token:   token,
		URLPath: service.ResetURLPath(token),
	})
}

// Validate handles GET /password-resets/{token}, telling a client whether
// the token is still redeemable. Used and Invalid keep distinct codes.
func (h *PasswordResetHandler) Validate(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")

	email, err := h.resets.TokenStatus(r.Context(), token)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, ValidateResetResponse{Email: email})
}

// Consume handles POST /password-resets/consume. 204 on success; the
// password length check runs before any transactional work.
func (h *PasswordResetHandler) Consume(w http.ResponseWriter, r *http.Request) {
	var req ConsumeResetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperr.Write(w, http.StatusBadRequest, httperr.CodeValidation, "invalid request body", nil)
		return
	}

	if err := h.resets.Consume(r.Context(), req.Token, req.Password); err != nil {
		observability.ResetConsumeTotal.WithLabelValues(consumeOutcome(err)).Inc()
		writeDomainError(w, r, err)
		return
	}

	observability.ResetConsumeTotal.WithLabelValues("success").Inc()
	w.WriteHeader(http.StatusNoContent)
}

func consumeOutcome(err error) string {
	switch {
	case errors.Is(err, domain.ErrResetTokenUsed):
		return "used"
	case errors.Is(err, domain.ErrResetTokenInvalid):
		return "invalid"
	case errors.Is(err, domain.ErrPasswordTooShort):
		return "validation"
	default:
		return "error"
	}
}
