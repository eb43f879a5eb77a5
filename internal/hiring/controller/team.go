package controller

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	e "github.com/gartstein/clubhire/internal/hiring/errors"
	"github.com/gartstein/clubhire/internal/hiring/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// InviteTTL is how long an onboarding link stays valid.
const InviteTTL = 7 * 24 * time.Hour

// TeamService manages the public roster: categories, email invites,
// self-onboarding and admin activation.
type TeamService struct {
	repo      TeamRepository
	producer  EventProducer
	publicURL string
	now       func() time.Time
	logger    *zap.Logger
}

// NewTeamService constructs a TeamService. publicURL is the base the
// onboarding links in invite emails point at.
func NewTeamService(repo TeamRepository, producer EventProducer, publicURL string, logger *zap.Logger) *TeamService {
	return &TeamService{
		repo:      repo,
		producer:  producer,
		publicURL: strings.TrimRight(publicURL, "/"),
		now:       time.Now,
		logger:    logger.Named("team_service"),
	}
}

func (s *TeamService) CreateCategory(ctx context.Context, in *models.NewCategory) (*models.TeamCategory, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	category := &models.TeamCategory{ID: uuid.New(), Name: in.Name, Position: in.Position}
	if err := s.repo.CreateCategory(ctx, category); err != nil {
		if errors.Is(err, e.ErrDuplicate) {
			return nil, fmt.Errorf("%w: category %q", e.ErrDuplicate, in.Name)
		}
		return nil, fmt.Errorf("failed to create category: %w", err)
	}
	return category, nil
}

func (s *TeamService) ListCategories(ctx context.Context) ([]*models.TeamCategory, error) {
	categories, err := s.repo.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, nil
}

// DeleteCategory removes an empty category.
func (s *TeamService) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.DeleteCategory(ctx, id); err != nil {
		switch {
		case errors.Is(err, e.ErrNotFound):
			return err
		case errors.Is(err, e.ErrInvalidInput):
			return fmt.Errorf("%w: category still has members", e.ErrInvalidInput)
		}
		return fmt.Errorf("failed to delete category: %w", err)
	}
	return nil
}

// Invite creates a pending member and emails them an onboarding link.
func (s *TeamService) Invite(ctx context.Context, in *models.TeamInvite) (*models.TeamMember, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	category, err := s.repo.GetCategory(ctx, in.CategoryID)
	if err != nil {
		if errors.Is(err, e.ErrNotFound) {
			return nil, fieldError("categoryId", "unknown category")
		}
		return nil, fmt.Errorf("failed to get category: %w", err)
	}

	member := &models.TeamMember{
		ID:              uuid.New(),
		Email:           in.Email,
		CategoryID:      category.ID,
		Status:          models.MemberInvited,
		InviteToken:     newInviteToken(),
		InviteExpiresAt: s.now().Add(InviteTTL).UTC(),
	}
	if err := s.repo.CreateMember(ctx, member); err != nil {
		if errors.Is(err, e.ErrDuplicate) {
			return nil, fmt.Errorf("%w: %s is already on the team", e.ErrDuplicate, in.Email)
		}
		return nil, fmt.Errorf("failed to create member: %w", err)
	}

	invite := models.Notification{
		Kind:      models.NotifyTeamInvite,
		Recipient: member.Email,
		Data: map[string]string{
			"category":  category.Name,
			"link":      s.publicURL + "/team/onboard/" + member.InviteToken,
			"expiresAt": member.InviteExpiresAt.Format("02 Jan 2006"),
		},
	}
	go func() {
		s.producer.Produce(invite)
	}()
	s.logger.Info("Team member invited",
		zap.String("member_id", member.ID.String()),
		zap.String("category", category.Name),
	)
	return member, nil
}

// GetInvite returns the pending member behind an onboarding token.
func (s *TeamService) GetInvite(ctx context.Context, token string) (*models.TeamMember, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, fmt.Errorf("%w: invite", e.ErrNotFound)
	}
	member, err := s.repo.GetMemberByInviteToken(ctx, token)
	if err != nil {
		if errors.Is(err, e.ErrNotFound) {
			return nil, fmt.Errorf("%w: invite", e.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get invite: %w", err)
	}
	if member.Status != models.MemberInvited {
		return nil, fmt.Errorf("%w: invite", e.ErrNotFound)
	}
	if s.now().After(member.InviteExpiresAt) {
		return nil, fmt.Errorf("%w: invite expired", e.ErrClosed)
	}
	return member, nil
}

// Onboard stores the profile an invited member submits. The token is
// single-use.
func (s *TeamService) Onboard(ctx context.Context, token string, in *models.Onboarding) (*models.TeamMember, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Title = strings.TrimSpace(in.Title)
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	member, err := s.GetInvite(ctx, token)
	if err != nil {
		return nil, err
	}
	member.Name = in.Name
	member.Title = in.Title
	member.ImageURL = strings.TrimSpace(in.ImageURL)
	member.LinkedIn = strings.TrimSpace(in.LinkedIn)
	member.Status = models.MemberOnboarded
	member.InviteToken = ""
	if err := s.repo.SaveMember(ctx, member); err != nil {
		return nil, fmt.Errorf("failed to save member: %w", err)
	}
	return member, nil
}

// Activate publishes an onboarded member on the roster. Activating an
// active member is a no-op.
func (s *TeamService) Activate(ctx context.Context, id uuid.UUID) (*models.TeamMember, error) {
	member, err := s.repo.GetMember(ctx, id)
	if err != nil {
		if errors.Is(err, e.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get member: %w", err)
	}
	switch member.Status {
	case models.MemberActive:
		return member, nil
	case models.MemberInvited:
		return nil, fmt.Errorf("%w: member has not completed onboarding", e.ErrInvalidInput)
	}
	member.Status = models.MemberActive
	if err := s.repo.SaveMember(ctx, member); err != nil {
		return nil, fmt.Errorf("failed to save member: %w", err)
	}
	return member, nil
}

func (s *TeamService) DeleteMember(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.DeleteMember(ctx, id); err != nil {
		if errors.Is(err, e.ErrNotFound) {
			return err
		}
		return fmt.Errorf("failed to delete member: %w", err)
	}
	return nil
}

// ListMembers returns every member regardless of status.
func (s *TeamService) ListMembers(ctx context.Context) ([]*models.TeamMember, error) {
	members, err := s.repo.ListMembers(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	return members, nil
}

// Roster groups the active members by category, in category order. Empty
// categories are omitted.
func (s *TeamService) Roster(ctx context.Context) ([]*models.RosterSection, error) {
	categories, err := s.repo.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	members, err := s.repo.ListMembers(ctx, models.MemberActive)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}

	byCategory := make(map[uuid.UUID][]*models.TeamMember)
	for _, m := range members {
		byCategory[m.CategoryID] = append(byCategory[m.CategoryID], m)
	}
	sort.SliceStable(categories, func(i, j int) bool {
		return categories[i].Position < categories[j].Position
	})
	roster := make([]*models.RosterSection, 0, len(categories))
	for _, c := range categories {
		if len(byCategory[c.ID]) == 0 {
			continue
		}
		roster = append(roster, &models.RosterSection{Category: *c, Members: byCategory[c.ID]})
	}
	return roster, nil
}

func newInviteToken() string {
	return strings.ReplaceAll(uuid.NewString()+uuid.NewString(), "-", "")
}
