package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"docvault/internal/model"
	"docvault/internal/service"
)

type MockReportService struct {
	mock.Mock
}

func (m *MockReportService) Create(ctx context.Context, userID string, in service.ReportInput) (*model.Report, error) {
	args := m.Called(ctx, userID, in)
	return reportOrNil(args.Get(0)), args.Error(1)
}

func (m *MockReportService) Get(ctx context.Context, userID, id string) (*model.Report, error) {
	args := m.Called(ctx, userID, id)
	return reportOrNil(args.Get(0)), args.Error(1)
}

func (m *MockReportService) List(ctx context.Context, userID string, includeDeleted bool) ([]model.Report, error) {
	args := m.Called(ctx, userID, includeDeleted)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Report), args.Error(1)
}

func (m *MockReportService) Search(ctx context.Context, userID, query string) ([]model.Report, error) {
	args := m.Called(ctx, userID, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Report), args.Error(1)
}

func (m *MockReportService) Update(ctx context.Context, userID, id string, patch service.ReportPatch) (*model.Report, error) {
	args := m.Called(ctx, userID, id, patch)
	return reportOrNil(args.Get(0)), args.Error(1)
}

func (m *MockReportService) Delete(ctx context.Context, userID, id string) error {
	args := m.Called(ctx, userID, id)
	return args.Error(0)
}

func reportOrNil(v any) *model.Report {
	if v == nil {
		return nil
	}
	return v.(*model.Report)
}
