// Package auth resolves reviewer sessions from signed tokens and gates HTTP
// routes by role.
package auth

import (
	"fmt"
	"time"

	"github.com/gartstein/clubhire/internal/hiring/models"
	"github.com/golang-jwt/jwt/v5"
)

const (
	issuer = "clubhire"
	// DefaultTTL is the lifetime of a session token and its cookie.
	DefaultTTL = 24 * time.Hour
)

// Claims is the JWT payload of a session token.
type Claims struct {
	Role   models.Role            `json:"role"`
	Domain models.TechnicalDomain `json:"domain,omitempty"`
	jwt.RegisteredClaims
}

// Issuer signs and verifies session tokens with a shared HMAC secret.
type Issuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewIssuer creates an Issuer. A non-positive ttl falls back to DefaultTTL.
func NewIssuer(secret string, ttl time.Duration) *Issuer {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Issuer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// TTL returns the token lifetime.
func (i *Issuer) TTL() time.Duration {
	return i.ttl
}

// Issue signs a token for session and returns it with its expiry.
func (i *Issuer) Issue(session models.Session) (string, time.Time, error) {
	if !session.Role.Valid() {
		return "", time.Time{}, fmt.Errorf("unknown role %q", session.Role)
	}
	if session.Role != models.RolePanel {
		session.Domain = ""
	}
	now := i.now()
	expiresAt := now.Add(i.ttl)
	claims := Claims{
		Role:   session.Role,
		Domain: session.Domain,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   session.Username,
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// Parse checks the token signature and expiry and returns the session it
// carries.
func (i *Issuer) Parse(tokenString string) (models.Session, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return i.secret, nil
	}, jwt.WithIssuer(issuer), jwt.WithExpirationRequired())
	if err != nil {
		return models.Session{}, fmt.Errorf("invalid token: %w", err)
	}
	if !token.Valid {
		return models.Session{}, fmt.Errorf("invalid token claims")
	}
	if !claims.Role.Valid() || claims.Subject == "" {
		return models.Session{}, fmt.Errorf("invalid token claims")
	}
	session := models.Session{Role: claims.Role, Username: claims.Subject}
	if claims.Role == models.RolePanel {
		if !claims.Domain.Valid() {
			return models.Session{}, fmt.Errorf("panel token without domain")
		}
		session.Domain = claims.Domain
	}
	return session, nil
}
