package auth

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/interviewhub/gateway/internal/authz"
	"github.com/interviewhub/gateway/internal/backend"
	"github.com/interviewhub/gateway/internal/platform/httpx"
	"github.com/interviewhub/gateway/internal/shared"
)

// Handler wires HTTP endpoints for authentication flows.
type Handler struct {
	logger         *slog.Logger
	service        *Service
	sessionManager *shared.SessionManager
	csrf           *shared.CSRFManager
	validator      *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, sessions *shared.SessionManager, csrf *shared.CSRFManager) *Handler {
	return &Handler{
		logger:         logger,
		service:        service,
		sessionManager: sessions,
		csrf:           csrf,
		validator:      validator.New(),
	}
}

// MountGuestRoutes registers the credential routes. The router wraps them in
// the guest gate so an active session is sent home instead of re-authenticating.
func (h *Handler) MountGuestRoutes(r chi.Router) {
	r.Post("/login", h.handleLogin)
	r.Post("/register", h.handleRegister)
}

// MountAuthenticatedRoutes registers the routes that require an active session.
func (h *Handler) MountAuthenticatedRoutes(r chi.Router) {
	r.Post("/logout", h.handleLogout)
}

// MountPublicRoutes registers the routes readable by any session.
func (h *Handler) MountPublicRoutes(r chi.Router) {
	r.Get("/session", h.handleSession)
	r.Get("/csrf", h.handleCSRF)
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type registerRequest struct {
	Username string `json:"username" validate:"required,min=3,max=32"`
	Password string `json:"password" validate:"required,min=8"`
	Email    string `json:"email" validate:"required,email"`
	Phone    string `json:"phone" validate:"omitempty,min=5,max=20"`
}

type sessionPayload struct {
	UserID          int64    `json:"userId,omitempty"`
	Username        string   `json:"username,omitempty"`
	Role            string   `json:"role,omitempty"`
	Permissions     []string `json:"permissions,omitempty"`
	IsAuthenticated bool     `json:"isAuthenticated"`
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "malformed request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "username and password are required")
		return
	}

	result, perms, err := h.service.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		if !errors.Is(err, shared.ErrInvalidCredentials) && !errors.Is(err, shared.ErrPendingActivation) {
			h.logger.Error("login upstream", slog.Any("error", err))
		}
		httpx.RespondError(w, err)
		return
	}

	role := authz.ParseRole(result.Role)
	sess := shared.SessionFromContext(r.Context())
	if sess == nil {
		h.logger.Error("session missing during login")
		httpx.Fail(w, httpx.CodeInternalError, "session unavailable")
		return
	}
	sess.SetAuth(result.Token, result.UserID, result.Username, role)
	sess.SetPermissions(perms)

	httpx.OK(w, sessionPayload{
		UserID:          result.UserID,
		Username:        result.Username,
		Role:            string(role),
		Permissions:     perms,
		IsAuthenticated: true,
	})
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "malformed request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		fields := make([]string, 0, 4)
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			for _, fieldErr := range verrs {
				fields = append(fields, fieldErr.Field())
			}
		}
		httpx.JSON(w, http.StatusBadRequest, httpx.Envelope{
			Code:    http.StatusBadRequest,
			Data:    map[string]any{"fields": fields},
			Message: "validation failed",
		})
		return
	}

	err := h.service.Register(r.Context(), backend.RegisterRequest{
		Username: req.Username,
		Password: req.Password,
		Email:    req.Email,
		Phone:    req.Phone,
	})
	if err != nil {
		var upstreamErr *backend.Error
		if errors.As(err, &upstreamErr) {
			httpx.Fail(w, upstreamErr.Code, upstreamErr.Message)
			return
		}
		h.logger.Error("register upstream", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, nil)
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	if sess != nil {
		sess.ClearAuth()
		h.sessionManager.Destroy(sess)
	}
	httpx.OK(w, nil)
}

// handleSession returns the current session snapshot so the SPA can
// rehydrate after a reload. The token never leaves the gateway.
func (h *Handler) handleSession(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	if sess == nil {
		httpx.OK(w, sessionPayload{})
		return
	}
	auth := sess.Auth()
	httpx.OK(w, sessionPayload{
		UserID:          auth.UserID,
		Username:        auth.Username,
		Role:            string(auth.Role),
		Permissions:     auth.Permissions,
		IsAuthenticated: auth.IsAuthenticated,
	})
}

// handleCSRF issues the token the client must echo in the X-CSRF-Token
// header on every mutating request.
func (h *Handler) handleCSRF(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	token, err := h.csrf.EnsureToken(r.Context(), sess)
	if err != nil {
		h.logger.Error("issue csrf token", slog.Any("error", err))
		httpx.Fail(w, httpx.CodeInternalError, "csrf token unavailable")
		return
	}
	httpx.OK(w, map[string]string{"csrfToken": token})
}

// HandleLoginForTest exposes the login handler for tests.
func (h *Handler) HandleLoginForTest(w http.ResponseWriter, r *http.Request) {
	h.handleLogin(w, r)
}

// HandleLogoutForTest exposes the logout handler for tests.
func (h *Handler) HandleLogoutForTest(w http.ResponseWriter, r *http.Request) {
	h.handleLogout(w, r)
}
