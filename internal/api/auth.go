package api

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/RichardoC/humaniza/internal/models"
	"github.com/RichardoC/humaniza/internal/remote"
)

// Auth is the identity provider. *remote.Client implements it.
type Auth interface {
	SignIn(ctx context.Context, email, password string) (*models.Session, error)
	SignUp(ctx context.Context, email, password, name string) (*models.Session, error)
	User(ctx context.Context, token string) (*models.User, error)
	AuthorizeURL(provider, redirectTo string) string
}

// OwnerHeader names the owner when no identity provider is configured.
const OwnerHeader = "X-Owner-ID"

var (
	errInvalidSession  = errors.New("invalid or expired session")
	errAuthUnavailable = errors.New("authentication service unavailable")
)

const msgInvalidSession = "Sessão inválida ou expirada. Faça login novamente."

type CredentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name,omitempty"`
}

type SessionResponse struct {
	User *models.User `json:"user"`
}

// ownerFromRequest resolves who is calling. With an identity provider the
// bearer token is verified and carried in the returned context for remote row
// calls; without one the owner header is trusted. An empty owner with a nil
// error means the caller is anonymous.
func (h *Handler) ownerFromRequest(r *http.Request) (string, context.Context, error) {
	ctx := r.Context()
	if h.auth != nil {
		token := bearerToken(r)
		if token == "" {
			return "", ctx, nil
		}
		user, err := h.auth.User(ctx, token)
		if err != nil {
			var apiErr *remote.APIError
			if errors.As(err, &apiErr) && apiErr.Status >= 400 && apiErr.Status < 500 {
				h.logger.Debug("Rejected bearer token", zap.Error(err))
				return "", ctx, errInvalidSession
			}
			h.logger.Error("Failed to verify bearer token", zap.Error(err))
			return "", ctx, errAuthUnavailable
		}
		return user.ID, remote.WithAccessToken(ctx, token), nil
	}
	return strings.TrimSpace(r.Header.Get(OwnerHeader)), ctx, nil
}

// ownerError reports a failed owner lookup: a rejected token is the caller's
// problem, an unreachable auth service is not.
func ownerError(w http.ResponseWriter, err error) {
	if errors.Is(err, errInvalidSession) {
		http.Error(w, msgInvalidSession, http.StatusUnauthorized)
		return
	}
	http.Error(w, "Authentication service unavailable", http.StatusBadGateway)
}

func bearerToken(r *http.Request) string {
	scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

func (h *Handler) authConfigured(w http.ResponseWriter) bool {
	if h.auth == nil {
		http.Error(w, "Authentication is not configured", http.StatusServiceUnavailable)
		return false
	}
	return true
}

func (h *Handler) SignIn(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if !h.authConfigured(w) {
		return
	}

	var req CredentialsRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}
	if req.Email == "" || req.Password == "" {
		http.Error(w, "email and password are required", http.StatusBadRequest)
		return
	}

	session, err := h.auth.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		h.authError(w, "Failed to sign in", err)
		return
	}
	h.writeJSON(w, http.StatusOK, session)
}

func (h *Handler) SignUp(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if !h.authConfigured(w) {
		return
	}

	var req CredentialsRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}
	if req.Email == "" || req.Password == "" {
		http.Error(w, "email and password are required", http.StatusBadRequest)
		return
	}

	session, err := h.auth.SignUp(r.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		h.authError(w, "Failed to sign up", err)
		return
	}
	h.writeJSON(w, http.StatusCreated, session)
}

func (h *Handler) Session(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if !h.authConfigured(w) {
		return
	}

	token := bearerToken(r)
	if token == "" {
		http.Error(w, msgLoginRequired, http.StatusUnauthorized)
		return
	}
	user, err := h.auth.User(r.Context(), token)
	if err != nil {
		h.authError(w, "Failed to resolve session", err)
		return
	}
	h.writeJSON(w, http.StatusOK, SessionResponse{User: user})
}

func (h *Handler) OAuth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if !h.authConfigured(w) {
		return
	}

	provider := r.URL.Query().Get("provider")
	if provider == "" {
		provider = "google"
	}
	http.Redirect(w, r, h.auth.AuthorizeURL(provider, r.URL.Query().Get("redirect_to")), http.StatusFound)
}

// authError passes 4xx provider answers through as 401 with the provider's
// message; anything else is a gateway failure.
func (h *Handler) authError(w http.ResponseWriter, logMsg string, err error) {
	var apiErr *remote.APIError
	if errors.As(err, &apiErr) && apiErr.Status >= 400 && apiErr.Status < 500 {
		h.logger.Debug(logMsg, zap.Error(err))
		http.Error(w, apiErr.Message, http.StatusUnauthorized)
		return
	}
	h.logger.Error(logMsg, zap.Error(err))
	http.Error(w, "Authentication service unavailable", http.StatusBadGateway)
}
