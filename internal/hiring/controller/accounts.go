package controller

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gartstein/clubhire/internal/hiring/auth"
	e "github.com/gartstein/clubhire/internal/hiring/errors"
	"github.com/gartstein/clubhire/internal/hiring/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TokenIssuer signs session tokens.
type TokenIssuer interface {
	Issue(session models.Session) (string, time.Time, error)
}

// AccountService authenticates reviewers and manages their accounts.
type AccountService struct {
	repo   ReviewerRepository
	issuer TokenIssuer
	logger *zap.Logger
}

func NewAccountService(repo ReviewerRepository, issuer TokenIssuer, logger *zap.Logger) *AccountService {
	return &AccountService{
		repo:   repo,
		issuer: issuer,
		logger: logger.Named("account_service"),
	}
}

// Login checks the credentials and returns a signed session token with its
// expiry. Unknown users and wrong passwords are indistinguishable.
func (s *AccountService) Login(ctx context.Context, username, password string) (string, time.Time, models.Session, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return "", time.Time{}, models.Session{}, fmt.Errorf("%w: username and password are required", e.ErrUnauthenticated)
	}
	reviewer, err := s.repo.GetReviewerByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, e.ErrNotFound) {
			return "", time.Time{}, models.Session{}, fmt.Errorf("%w: invalid credentials", e.ErrUnauthenticated)
		}
		return "", time.Time{}, models.Session{}, fmt.Errorf("failed to get reviewer: %w", err)
	}
	if !auth.CheckPassword(reviewer.PasswordHash, password) {
		s.logger.Warn("Failed login attempt", zap.String("username", username))
		return "", time.Time{}, models.Session{}, fmt.Errorf("%w: invalid credentials", e.ErrUnauthenticated)
	}

	session := reviewer.Session()
	token, expiresAt, err := s.issuer.Issue(session)
	if err != nil {
		return "", time.Time{}, models.Session{}, fmt.Errorf("failed to issue session token: %w", err)
	}
	s.logger.Info("Reviewer logged in",
		zap.String("username", session.Username),
		zap.String("role", string(session.Role)),
	)
	return token, expiresAt, session, nil
}

// CreateReviewer adds an admin or panel account. Panel accounts must name
// their technical domain.
func (s *AccountService) CreateReviewer(ctx context.Context, in *models.NewReviewer) (*models.Reviewer, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Domain = strings.ToLower(strings.TrimSpace(in.Domain))
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	role := models.Role(in.Role)
	if role == models.RolePanel && in.Domain == "" {
		return nil, fieldError("domain", "is required for panel accounts")
	}
	if role == models.RoleAdmin {
		in.Domain = ""
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	reviewer := &models.Reviewer{
		ID:           uuid.New(),
		Username:     in.Username,
		PasswordHash: hash,
		Role:         role,
		Domain:       models.TechnicalDomain(in.Domain),
	}
	if err := s.repo.CreateReviewer(ctx, reviewer); err != nil {
		if errors.Is(err, e.ErrDuplicate) {
			return nil, fmt.Errorf("%w: username %q is taken", e.ErrDuplicate, in.Username)
		}
		return nil, fmt.Errorf("failed to create reviewer: %w", err)
	}
	return reviewer, nil
}

// EnsureAdmin creates the bootstrap admin account unless it already exists.
func (s *AccountService) EnsureAdmin(ctx context.Context, username, password string) error {
	_, err := s.repo.GetReviewerByUsername(ctx, username)
	if err == nil {
		return nil
	}
	if !errors.Is(err, e.ErrNotFound) {
		return fmt.Errorf("failed to look up bootstrap admin: %w", err)
	}
	_, err = s.CreateReviewer(ctx, &models.NewReviewer{
		Username: username,
		Password: password,
		Role:     string(models.RoleAdmin),
	})
	if err != nil && !errors.Is(err, e.ErrDuplicate) {
		return err
	}
	s.logger.Info("Bootstrap admin created", zap.String("username", username))
	return nil
}
