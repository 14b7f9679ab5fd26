package mocks

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"

	"docvault/internal/model"
	"docvault/internal/service"
)

type MockDocumentService struct {
	mock.Mock
}

func (m *MockDocumentService) Upload(ctx context.Context, userID, reportID string, r io.Reader, filename, contentType string, size int64) (*model.Document, error) {
	args := m.Called(ctx, userID, reportID, r, filename, contentType, size)
	return docOrNil(args.Get(0)), args.Error(1)
}

func (m *MockDocumentService) Get(ctx context.Context, userID, id string) (*model.Document, error) {
	args := m.Called(ctx, userID, id)
	return docOrNil(args.Get(0)), args.Error(1)
}

func (m *MockDocumentService) List(ctx context.Context, userID, reportID string, includeDeleted bool) ([]model.Document, error) {
	args := m.Called(ctx, userID, reportID, includeDeleted)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Document), args.Error(1)
}

func (m *MockDocumentService) Search(ctx context.Context, userID, reportID, query string) ([]model.Document, error) {
	args := m.Called(ctx, userID, reportID, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Document), args.Error(1)
}

func (m *MockDocumentService) Update(ctx context.Context, userID, id string, patch service.DocumentPatch) (*model.Document, error) {
	args := m.Called(ctx, userID, id, patch)
	return docOrNil(args.Get(0)), args.Error(1)
}

func (m *MockDocumentService) Delete(ctx context.Context, userID, id string) error {
	args := m.Called(ctx, userID, id)
	return args.Error(0)
}

func (m *MockDocumentService) Parse(ctx context.Context, userID, id string) (*model.Document, error) {
	args := m.Called(ctx, userID, id)
	return docOrNil(args.Get(0)), args.Error(1)
}

func (m *MockDocumentService) DownloadURL(ctx context.Context, userID, id string) (string, error) {
	args := m.Called(ctx, userID, id)
	return args.String(0), args.Error(1)
}

func docOrNil(v any) *model.Document {
	if v == nil {
		return nil
	}
	return v.(*model.Document)
}
