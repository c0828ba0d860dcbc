package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/sitehem/sitehem/internal/observability"
	"github.com/sitehem/sitehem/internal/platform/httpx"
	"github.com/sitehem/sitehem/internal/shared"
)

// EventRecorder receives security-relevant auth events. Implemented by the
// jobs client; recording is best-effort and never blocks the login path.
type EventRecorder interface {
	RecordAuthEvent(ctx context.Context, ev shared.AuthEvent)
}

// Handler wires HTTP endpoints for authentication flows.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	codec     *Codec
	limiter   *LoginLimiter
	events    EventRecorder
	metrics   *observability.Metrics
	authn     Middleware
	validator *validator.Validate
}

// NewHandler constructs a Handler instance. events and metrics may be nil.
func NewHandler(logger *slog.Logger, service *Service, codec *Codec, limiter *LoginLimiter, events EventRecorder, metrics *observability.Metrics, authn Middleware) *Handler {
	return &Handler{
		logger:    logger,
		service:   service,
		codec:     codec,
		limiter:   limiter,
		events:    events,
		metrics:   metrics,
		authn:     authn,
		validator: validator.New(),
	}
}

// MountRoutes registers auth routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/login", h.handleLogin)
	r.Group(func(r chi.Router) {
		r.Use(h.authn.Authenticate)
		r.Get("/me", h.handleMe)
	})
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type loginResponse struct {
	AccessToken string `json:"access_token"`
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, shared.ErrValidation)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.RespondError(w, shared.ErrValidation)
		return
	}

	ip := r.RemoteAddr
	if err := h.limiter.Allow(r.Context(), req.Email, ip); err != nil {
		h.metrics.CountLogin("throttled")
		h.record(r.Context(), shared.AuthEvent{Email: req.Email, Action: shared.AuditLoginThrottled, IP: ip})
		httpx.RespondError(w, err)
		return
	}

	user, err := h.service.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		if !errors.Is(err, shared.ErrInvalidCredentials) {
			h.logger.Error("authenticate", slog.Any("error", err))
		}
		h.metrics.CountLogin("failure")
		h.record(r.Context(), shared.AuthEvent{Email: req.Email, Action: shared.AuditLoginFailed, IP: ip})
		httpx.RespondError(w, shared.ErrInvalidCredentials)
		return
	}

	token, err := h.codec.Issue(user)
	if err != nil {
		h.logger.Error("issue token", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}

	h.limiter.Reset(r.Context(), req.Email, ip)
	h.metrics.CountLogin("success")
	h.record(r.Context(), shared.AuthEvent{UserID: user.ID, Email: user.Email, Action: shared.AuditLoginSucceeded, IP: ip})
	httpx.JSON(w, http.StatusOK, loginResponse{AccessToken: token})
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	identity := shared.IdentityFromContext(r.Context())
	if identity == nil {
		httpx.RespondError(w, shared.ErrUnauthenticated)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"id":    identity.UserID,
		"email": identity.Email,
		"name":  identity.Name,
		"roles": identity.Roles,
	})
}

func (h *Handler) record(ctx context.Context, ev shared.AuthEvent) {
	if h.events == nil {
		return
	}
	h.events.RecordAuthEvent(ctx, ev)
}
