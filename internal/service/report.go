package service

import (
	"context"
	"fmt"
	"strings"

	"docvault/internal/logger"
	"docvault/internal/model"
	"docvault/internal/repository"
)

// ReportInput is the payload for creating a report.
type ReportInput struct {
	Title       string  `json:"title"`
	Description *string `json:"description,omitempty"`
}

// ReportPatch holds the report fields a caller may change. Nil fields are
// left untouched; an empty description clears it.
type ReportPatch struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
}

// ReportService defines the use cases for reports.
type ReportService interface {
	Create(ctx context.Context, userID string, in ReportInput) (*model.Report, error)
	Get(ctx context.Context, userID, id string) (*model.Report, error)
	List(ctx context.Context, userID string, includeDeleted bool) ([]model.Report, error)
	Search(ctx context.Context, userID, query string) ([]model.Report, error)
	Update(ctx context.Context, userID, id string, patch ReportPatch) (*model.Report, error)
	Delete(ctx context.Context, userID, id string) error
}

type reportService struct {
	repo repository.ReportRepository
	deps
}

func NewReportService(repo repository.ReportRepository, opts ...Option) ReportService {
	return &reportService{repo: repo, deps: buildDeps(opts)}
}

func (s *reportService) Create(ctx context.Context, userID string, in ReportInput) (*model.Report, error) {
	if userID == "" {
		return nil, ErrUserRequired
	}
	now := s.now()
	r := &model.Report{
		ID:          s.newID(),
		UserID:      userID,
		Title:       strings.TrimSpace(in.Title),
		Description: blankToNil(in.Description),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := model.ValidateReport(r); err != nil {
		return nil, err
	}
	stored, err := s.repo.Save(ctx, r)
	if err != nil {
		return nil, fmt.Errorf("save report: %w", err)
	}
	logger.From(ctx).Info("report created", logger.ReportID(r.ID), logger.UserID(userID))
	return stored, nil
}

func (s *reportService) Get(ctx context.Context, userID, id string) (*model.Report, error) {
	return ownedReport(ctx, s.repo, userID, id)
}

func (s *reportService) List(ctx context.Context, userID string, includeDeleted bool) ([]model.Report, error) {
	if userID == "" {
		return nil, ErrUserRequired
	}
	return s.repo.FindByUser(ctx, userID, includeDeleted)
}

// Search falls back to the active list when the query is blank.
func (s *reportService) Search(ctx context.Context, userID, query string) ([]model.Report, error) {
	if userID == "" {
		return nil, ErrUserRequired
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return s.repo.FindByUser(ctx, userID, false)
	}
	return s.repo.Search(ctx, userID, query)
}

func (s *reportService) Update(ctx context.Context, userID, id string, patch ReportPatch) (*model.Report, error) {
	r, err := ownedReport(ctx, s.repo, userID, id)
	if err != nil {
		return nil, err
	}
	if patch.Title != nil {
		r.Title = strings.TrimSpace(*patch.Title)
	}
	if patch.Description != nil {
		r.Description = blankToNil(patch.Description)
	}
	r.UpdatedAt = s.now()
	if err := model.ValidateReport(r); err != nil {
		return nil, err
	}
	stored, err := s.repo.Save(ctx, r)
	if err != nil {
		return nil, fmt.Errorf("save report: %w", err)
	}
	return stored, nil
}

// Delete soft-deletes the report. Its documents stay untouched but become
// unreachable because every document use case requires an active report.
func (s *reportService) Delete(ctx context.Context, userID, id string) error {
	if _, err := ownedReport(ctx, s.repo, userID, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

func blankToNil(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
