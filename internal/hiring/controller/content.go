package controller

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	e "github.com/gartstein/clubhire/internal/hiring/errors"
	"github.com/gartstein/clubhire/internal/hiring/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	maxVisitPath      = 300
	maxVisitUserAgent = 300
)

// ContentService manages the notice ticker and the visitor log.
type ContentService struct {
	repo   ContentRepository
	logger *zap.Logger
}

func NewContentService(repo ContentRepository, logger *zap.Logger) *ContentService {
	return &ContentService{repo: repo, logger: logger.Named("content_service")}
}

func (s *ContentService) CreateNotice(ctx context.Context, in *models.NoticeInput) (*models.Notice, error) {
	in.Text = strings.TrimSpace(in.Text)
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	notice := &models.Notice{ID: uuid.New(), Text: in.Text, Active: in.Active}
	if err := s.repo.CreateNotice(ctx, notice); err != nil {
		return nil, fmt.Errorf("failed to create notice: %w", err)
	}
	return notice, nil
}

func (s *ContentService) UpdateNotice(ctx context.Context, id uuid.UUID, in *models.NoticeInput) (*models.Notice, error) {
	in.Text = strings.TrimSpace(in.Text)
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	notice, err := s.repo.GetNotice(ctx, id)
	if err != nil {
		if errors.Is(err, e.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get notice: %w", err)
	}
	notice.Text = in.Text
	notice.Active = in.Active
	if err := s.repo.UpdateNotice(ctx, notice); err != nil {
		return nil, fmt.Errorf("failed to update notice: %w", err)
	}
	return notice, nil
}

func (s *ContentService) DeleteNotice(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.DeleteNotice(ctx, id); err != nil {
		if errors.Is(err, e.ErrNotFound) {
			return err
		}
		return fmt.Errorf("failed to delete notice: %w", err)
	}
	return nil
}

// ListNotices returns the ticker lines, newest first. The public ticker
// only sees active ones.
func (s *ContentService) ListNotices(ctx context.Context, activeOnly bool) ([]*models.Notice, error) {
	notices, err := s.repo.ListNotices(ctx, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("failed to list notices: %w", err)
	}
	return notices, nil
}

// RecordVisit appends one entry to the visitor log. Over-long fields are
// truncated rather than rejected.
func (s *ContentService) RecordVisit(ctx context.Context, path, ip, userAgent string) error {
	visit := &models.Visit{
		ID:        uuid.New(),
		Path:      clip(strings.TrimSpace(path), maxVisitPath),
		IP:        ip,
		UserAgent: clip(userAgent, maxVisitUserAgent),
	}
	if visit.Path == "" {
		visit.Path = "/"
	}
	if err := s.repo.CreateVisit(ctx, visit); err != nil {
		return fmt.Errorf("failed to record visit: %w", err)
	}
	return nil
}

// VisitPage is one page of the visitor log.
type VisitPage struct {
	Items      []*models.Visit `json:"items"`
	Total      int64           `json:"total"`
	NextCursor string          `json:"nextCursor,omitempty"`
}

// ListVisits pages through the visitor log, newest first.
func (s *ContentService) ListVisits(ctx context.Context, cursor string, pageSize int) (*VisitPage, error) {
	offset, err := decodeCursor(cursor)
	if err != nil {
		return nil, err
	}
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	} else if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	visits, total, err := s.repo.ListVisits(ctx, offset, pageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to list visits: %w", err)
	}
	if visits == nil {
		visits = []*models.Visit{}
	}
	page := &VisitPage{Items: visits, Total: total}
	if next := offset + len(visits); len(visits) > 0 && int64(next) < total {
		page.NextCursor = encodeCursor(next)
	}
	return page, nil
}

func clip(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

