package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/gartstein/clubhire/internal/hiring/models"
)

const (
	// CookieName is the session cookie set on login.
	CookieName = "session"

	HeaderRole     = "X-User-Role"
	HeaderDomain   = "X-Panel-Domain"
	HeaderUsername = "X-User-Username"
)

type contextKey string

const (
	sessionContextKey contextKey = "session"
)

// WithSession returns a copy of ctx carrying session.
func WithSession(ctx context.Context, session models.Session) context.Context {
	return context.WithValue(ctx, sessionContextKey, session)
}

// SessionFromContext returns the session resolved for the current request.
func SessionFromContext(ctx context.Context) (models.Session, bool) {
	session, ok := ctx.Value(sessionContextKey).(models.Session)
	return session, ok
}

// rule gates every path under prefix to the listed roles.
type rule struct {
	prefix string
	roles  []models.Role
}

// Middleware resolves the session of every request and gates the protected
// route prefixes.
type Middleware struct {
	issuer    *Issuer
	loginPath string
	rules     []rule
}

// NewMiddleware creates the session middleware. Unauthenticated browser
// requests to protected routes are redirected to loginPath.
func NewMiddleware(issuer *Issuer, loginPath string) *Middleware {
	return &Middleware{
		issuer:    issuer,
		loginPath: loginPath,
		rules: []rule{
			{prefix: "/v1/admin/", roles: []models.Role{models.RoleAdmin}},
			{prefix: "/v1/review/", roles: []models.Role{models.RoleAdmin, models.RolePanel}},
		},
	}
}

func (m *Middleware) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Role headers are only ever set from a verified token.
		r.Header.Del(HeaderRole)
		r.Header.Del(HeaderDomain)
		r.Header.Del(HeaderUsername)

		session, authenticated := m.resolve(r)
		if authenticated {
			r = r.WithContext(WithSession(r.Context(), session))
			r.Header.Set(HeaderRole, string(session.Role))
			r.Header.Set(HeaderUsername, session.Username)
			if session.Domain != "" {
				r.Header.Set(HeaderDomain, string(session.Domain))
			}
		}

		allowed, protected := m.allowedRoles(r.URL.Path)
		if !protected {
			next.ServeHTTP(w, r)
			return
		}
		if !authenticated {
			m.unauthenticated(w, r)
			return
		}
		if !hasRole(allowed, session.Role) {
			writeError(w, http.StatusForbidden, "insufficient role")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// resolve reads the session from the cookie, falling back to a Bearer
// Authorization header.
func (m *Middleware) resolve(r *http.Request) (models.Session, bool) {
	tokenString := ""
	if cookie, err := r.Cookie(CookieName); err == nil {
		tokenString = cookie.Value
	}
	if tokenString == "" {
		var err error
		tokenString, err = extractTokenFromHeader(r)
		if err != nil {
			return models.Session{}, false
		}
	}
	session, err := m.issuer.Parse(tokenString)
	if err != nil {
		return models.Session{}, false
	}
	return session, true
}

func (m *Middleware) allowedRoles(path string) ([]models.Role, bool) {
	for _, rl := range m.rules {
		if strings.HasPrefix(path, rl.prefix) {
			return rl.roles, true
		}
	}
	return nil, false
}

func (m *Middleware) unauthenticated(w http.ResponseWriter, r *http.Request) {
	if m.loginPath != "" && strings.Contains(r.Header.Get("Accept"), "text/html") {
		http.Redirect(w, r, m.loginPath, http.StatusSeeOther)
		return
	}
	writeError(w, http.StatusUnauthorized, "authentication required")
}

// SetCookie writes the session cookie for token.
func (m *Middleware) SetCookie(w http.ResponseWriter, token string, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(m.issuer.TTL().Seconds()),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearCookie expires the session cookie.
func (m *Middleware) ClearCookie(w http.ResponseWriter, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func extractTokenFromHeader(r *http.Request) (string, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", fmt.Errorf("authorization header required")
	}
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return "", fmt.Errorf("invalid authorization format: missing Bearer prefix")
	}
	tokenString := strings.TrimPrefix(authHeader, "Bearer ")
	if tokenString == "" {
		return "", fmt.Errorf("invalid authorization format: empty token")
	}
	return tokenString, nil
}

func hasRole(allowed []models.Role, role models.Role) bool {
	for _, r := range allowed {
		if r == role {
			return true
		}
	}
	return false
}

func writeError(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
