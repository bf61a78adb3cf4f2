package authapi

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/RayenHanafi/Mosque-Noor/cmd/identity"
	"github.com/RayenHanafi/Mosque-Noor/cmd/internal/auth/session"
	"github.com/RayenHanafi/Mosque-Noor/cmd/internal/httpx"
	"github.com/RayenHanafi/Mosque-Noor/cmd/security/password"
)

// LoginObserver is notified of every login outcome.
type LoginObserver interface {
	ObserveLogin(result string)
}

// Login outcomes reported to the LoginObserver.
const (
	loginSuccess     = "success"
	loginInvalid     = "invalid_credentials"
	loginBadRequest  = "bad_request"
	loginRateLimited = "rate_limited"
	loginError       = "error"
)

// Handler wires the admin auth endpoints to the credential verifier and the
// session service.
type Handler struct {
	log *slog.Logger
	cfg Config
	msg Messages

	verifier *identity.Verifier
	sessions *session.Service
	limiter  *loginLimiter
	observer LoginObserver

	now func() time.Time
}

// HandlerOption configures optional handler dependencies.
type HandlerOption func(*Handler)

// WithLoginObserver reports login outcomes to o.
func WithLoginObserver(o LoginObserver) HandlerOption {
	return func(h *Handler) {
		if o != nil {
			h.observer = o
		}
	}
}

// WithClock overrides time.Now for session issuance and validation.
func WithClock(now func() time.Time) HandlerOption {
	return func(h *Handler) {
		if now != nil {
			h.now = now
		}
	}
}

// NewHandler constructs an auth Handler.
func NewHandler(log *slog.Logger, cfg Config, verifier *identity.Verifier, sessions *session.Service, opts ...HandlerOption) (*Handler, error) {
	if verifier == nil {
		return nil, errors.New("authapi: nil verifier")
	}
	if sessions == nil {
		return nil, errors.New("authapi: nil session service")
	}
	if log == nil {
		log = slog.Default()
	}
	if cfg.CookieName == "" {
		cfg.CookieName = DefaultCookieName
	}
	if cfg.CookiePath == "" {
		cfg.CookiePath = "/"
	}

	h := &Handler{
		log:      log,
		cfg:      cfg,
		msg:      MessagesFor(cfg.Locale),
		verifier: verifier,
		sessions: sessions,
		limiter:  newLoginLimiter(cfg.LoginIPMax, cfg.LoginIPWindow),
		now:      func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		if opt != nil {
			opt(h)
		}
	}
	return h, nil
}

// Register wires the admin auth routes onto r.
func (h *Handler) Register(r chi.Router) {
	if h == nil || r == nil {
		return
	}
	r.Post("/admin/login", h.handleLogin)
	r.Delete("/admin/logout", h.handleLogout)
	r.Get("/admin/me", h.handleMe)
	r.With(h.RequireSession).Post("/admin/change-password", h.handleChangePassword)
}

// SessionService returns the underlying session service.
func (h *Handler) SessionService() *session.Service {
	if h == nil {
		return nil
	}
	return h.sessions
}

func (h *Handler) observe(result string) {
	if h.observer != nil {
		h.observer.ObserveLogin(result)
	}
}

// ---- handlers ----

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	now := h.now()
	ip := httpx.ClientIP(r, h.cfg.TrustProxy)
	key := limiterKey(ip)

	if blocked, retryAfter := h.limiter.Blocked(key, now); blocked {
		h.log.Warn("auth.login.rate_limited", "ip", key)
		h.observe(loginRateLimited)
		writeRateLimited(w, retryAfter, h.msg.LoginRateLimited)
		return
	}

	var req loginRequest
	if err := httpx.DecodeJSON(w, r, h.cfg.MaxBodyBytes, &req); err != nil {
		h.observe(loginBadRequest)
		httpx.WriteMessage(w, http.StatusBadRequest, false, h.msg.LoginMissingFields)
		return
	}

	admin, err := h.verifier.VerifyCredentials(ctx, req.Username, req.Password)
	switch {
	case err == nil:
	case identity.IsInvalidInput(err):
		h.observe(loginBadRequest)
		httpx.WriteMessage(w, http.StatusBadRequest, false, h.msg.LoginMissingFields)
		return
	case identity.IsInvalidCredentials(err):
		h.limiter.Fail(key, now)
		h.log.Info("auth.login.fail", "ip", key)
		h.observe(loginInvalid)
		httpx.WriteMessage(w, http.StatusUnauthorized, false, h.msg.LoginInvalid)
		return
	default:
		h.log.Error("auth.login.verify.fail", "err", err)
		h.observe(loginError)
		httpx.WriteMessage(w, http.StatusInternalServerError, false, h.msg.LoginFailed)
		return
	}

	issued, err := h.sessions.CreateSession(ctx, now, admin.ID)
	if err != nil {
		h.log.Error("auth.login.issue_session.fail", "admin_id", admin.ID, "err", err)
		h.observe(loginError)
		httpx.WriteMessage(w, http.StatusInternalServerError, false, h.msg.LoginSessionFailed)
		return
	}

	h.log.Info("auth.login.success", "admin_id", admin.ID, "ip", key)
	h.observe(loginSuccess)
	h.setSessionCookie(w, issued.Token, issued.ExpiresAt)
	httpx.WriteJSON(w, http.StatusOK, loginResponse{
		Envelope: httpx.Envelope{Success: true, Message: h.msg.LoginSuccess},
		User:     userResponse{ID: admin.ID, Username: admin.Username},
	})
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	// The cookie is cleared on every path, including store failures.
	h.clearSessionCookie(w)

	tok, ok := h.sessionTokenFromCookie(r)
	if ok {
		if _, err := h.sessions.InvalidateSession(r.Context(), tok); err != nil {
			h.log.Error("auth.logout.fail", "err", err)
			httpx.WriteMessage(w, http.StatusInternalServerError, false, h.msg.LogoutFailed)
			return
		}
	}

	httpx.WriteMessage(w, http.StatusOK, true, h.msg.LogoutSuccess)
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	id, err := h.currentIdentity(r)
	if err != nil {
		if session.IsUnauthorized(err) {
			if _, hadCookie := h.sessionTokenFromCookie(r); hadCookie {
				h.clearSessionCookie(w)
			}
			httpx.WriteJSON(w, http.StatusUnauthorized, meResponse{
				Envelope: httpx.Envelope{Success: false, Message: h.msg.Unauthenticated},
			})
			return
		}
		h.log.Error("auth.me.fail", "err", err)
		httpx.WriteMessage(w, http.StatusInternalServerError, false, h.msg.SessionCheck)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, meResponse{
		Envelope:      httpx.Envelope{Success: true, Message: h.msg.Authenticated},
		Authenticated: true,
		User:          &userResponse{ID: id.AdminID, Username: id.Username},
	})
}

func (h *Handler) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	id, ok := IdentityFromContext(r.Context())
	if !ok {
		httpx.WriteMessage(w, http.StatusUnauthorized, false, h.msg.Unauthorized)
		return
	}

	var req changePasswordRequest
	if err := httpx.DecodeJSON(w, r, h.cfg.MaxBodyBytes, &req); err != nil {
		httpx.WriteMessage(w, http.StatusBadRequest, false, h.msg.PasswordFields)
		return
	}

	ctx := r.Context()
	err := h.verifier.ChangePassword(ctx, id.AdminID, req.CurrentPassword, req.NewPassword)
	switch {
	case err == nil:
	case identity.IsInvalidInput(err):
		httpx.WriteMessage(w, http.StatusBadRequest, false, h.policyMessage(err))
		return
	case identity.IsWrongPassword(err):
		h.log.Info("auth.password.change.wrong_current", "admin_id", id.AdminID)
		httpx.WriteMessage(w, http.StatusBadRequest, false, h.msg.PasswordWrong)
		return
	case identity.IsNotFound(err):
		h.log.Warn("auth.password.change.admin_missing", "admin_id", id.AdminID)
		httpx.WriteMessage(w, http.StatusNotFound, false, h.msg.PasswordAdminNotFound)
		return
	default:
		h.log.Error("auth.password.change.fail", "admin_id", id.AdminID, "err", err)
		httpx.WriteMessage(w, http.StatusInternalServerError, false, h.msg.PasswordUpdateFailed)
		return
	}

	h.log.Info("auth.password.changed", "admin_id", id.AdminID)

	// Issuing a fresh session revokes every other session of this admin.
	issued, err := h.sessions.CreateSession(ctx, h.now(), id.AdminID)
	if err != nil {
		h.log.Error("auth.password.rotate_session.fail", "admin_id", id.AdminID, "err", err)
		if _, rerr := h.sessions.RevokeAll(ctx, id.AdminID); rerr != nil {
			h.log.Error("auth.password.revoke.fail", "admin_id", id.AdminID, "err", rerr)
		}
		h.clearSessionCookie(w)
	} else {
		h.setSessionCookie(w, issued.Token, issued.ExpiresAt)
	}

	httpx.WriteMessage(w, http.StatusOK, true, h.msg.PasswordChanged)
}

func (h *Handler) policyMessage(err error) string {
	var pe identity.PolicyError
	if !errors.As(err, &pe) {
		return h.msg.PasswordFields
	}
	switch {
	case errors.Is(pe.Reason, password.ErrPasswordTooLong):
		return h.msg.PasswordTooLong
	case errors.Is(pe.Reason, password.ErrWeakPassword):
		return h.msg.PasswordWeak
	default:
		return h.msg.passwordTooShort(pe.MinLength)
	}
}
