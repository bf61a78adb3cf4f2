package authapi

import (
	"net/http"
	"strings"
	"time"
)

// sessionCookie builds the admin_session cookie. maxAge < 0 expires it.
func (h *Handler) sessionCookie(value string, expires time.Time, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     h.cfg.CookieName,
		Value:    value,
		Path:     h.cfg.CookiePath,
		Domain:   h.cfg.CookieDomain,
		Expires:  expires,
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   h.cfg.CookieSecure,
		SameSite: h.cfg.CookieSameSite,
	}
}

// setSessionCookie hands the session token to the browser. Max-Age mirrors
// the server-side TTL so both sides expire together.
func (h *Handler) setSessionCookie(w http.ResponseWriter, token string, exp time.Time) {
	if h == nil || w == nil {
		return
	}
	http.SetCookie(w, h.sessionCookie(token, exp, int(h.sessions.TTL()/time.Second)))
}

func (h *Handler) clearSessionCookie(w http.ResponseWriter) {
	if h == nil || w == nil {
		return
	}
	http.SetCookie(w, h.sessionCookie("", time.Unix(0, 0).UTC(), -1))
}

func (h *Handler) sessionTokenFromCookie(r *http.Request) (string, bool) {
	if h == nil || r == nil {
		return "", false
	}
	c, err := r.Cookie(h.cfg.CookieName)
	if err != nil {
		return "", false
	}
	tok := strings.TrimSpace(c.Value)
	return tok, tok != ""
}
