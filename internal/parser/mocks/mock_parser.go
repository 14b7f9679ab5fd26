package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"docvault/internal/parser"
)

type MockParser struct {
	mock.Mock
}

func (m *MockParser) Parse(ctx context.Context, req parser.Request) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}
