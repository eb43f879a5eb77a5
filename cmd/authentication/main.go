// This is a **development token service**: it mints session tokens for any
// role so the review API can be exercised without creating accounts.
// Never expose it outside a local environment.
package main

import (
	"encoding/json"
	"net/http"
	"os"
	"time"

	"github.com/gartstein/clubhire/internal/hiring/auth"
	"github.com/gartstein/clubhire/internal/hiring/models"
	"go.uber.org/zap"
)

const (
	defaultPort   = "8081"                 // Default port for the token service
	defaultSecret = "change-me-change-me" // Must match the portal's JWT_SECRET
)

// TokenResponse represents the response structure
type TokenResponse struct {
	Token     string         `json:"token"`
	ExpiresAt time.Time      `json:"expiresAt"`
	Session   models.Session `json:"session"`
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// tokenHandler issues a token for ?role=admin|panel&username=...&domain=...
func tokenHandler(issuer *auth.Issuer, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		session := models.Session{
			Role:     models.Role(getOr(q.Get("role"), string(models.RoleAdmin))),
			Username: getOr(q.Get("username"), "dev"),
			Domain:   models.TechnicalDomain(q.Get("domain")),
		}
		if session.IsPanel() && !session.Domain.Valid() {
			http.Error(w, "panel tokens need a valid domain", http.StatusBadRequest)
			return
		}

		token, expiresAt, err := issuer.Issue(session)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		logger.Info("Issued development token",
			zap.String("role", string(session.Role)),
			zap.String("username", session.Username),
		)

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(TokenResponse{Token: token, ExpiresAt: expiresAt, Session: session}); err != nil {
			logger.Error("Failed to encode token", zap.Error(err))
		}
	}
}

func getOr(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

func main() {
	logger, _ := zap.NewDevelopment()
	defer func() { _ = logger.Sync() }()

	port := getenv("AUTH_PORT", defaultPort)
	ttl, err := time.ParseDuration(getenv("SESSION_TTL", "24h"))
	if err != nil {
		logger.Fatal("invalid SESSION_TTL", zap.Error(err))
	}
	issuer := auth.NewIssuer(getenv("JWT_SECRET", defaultSecret), ttl)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /token", tokenHandler(issuer, logger))

	server := &http.Server{Addr: ":" + port, Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	logger.Info("Token service running", zap.String("port", port))
	if err := server.ListenAndServe(); err != nil {
		logger.Fatal("token service stopped", zap.Error(err))
	}
}
