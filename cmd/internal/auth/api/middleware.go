package authapi

import (
	"context"
	"net/http"

	"github.com/RayenHanafi/Mosque-Noor/cmd/internal/auth/session"
	"github.com/RayenHanafi/Mosque-Noor/cmd/internal/httpx"
)

type ctxKey struct{}

// IdentityFromContext returns the admin stored by RequireSession.
func IdentityFromContext(ctx context.Context) (session.Identity, bool) {
	id, ok := ctx.Value(ctxKey{}).(session.Identity)
	return id, ok
}

// RequireSession rejects requests without a valid admin session cookie with
// 401 and otherwise stores the admin identity in the request context.
func (h *Handler) RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := h.currentIdentity(r)
		if err != nil {
			if session.IsUnauthorized(err) {
				httpx.WriteMessage(w, http.StatusUnauthorized, false, h.msg.Unauthorized)
				return
			}
			h.log.Error("auth.session.validate.fail", "path", r.URL.Path, "err", err)
			httpx.WriteMessage(w, http.StatusInternalServerError, false, h.msg.SessionCheck)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, id)))
	})
}

func (h *Handler) currentIdentity(r *http.Request) (session.Identity, error) {
	tok, ok := h.sessionTokenFromCookie(r)
	if !ok {
		return session.Identity{}, session.ErrInvalidToken
	}
	return h.sessions.ValidateSession(r.Context(), h.now(), tok)
}
