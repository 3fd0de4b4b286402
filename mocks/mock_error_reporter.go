package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"taxdocs/internal/domain"
)

// MockErrorReporter is a mock implementation of port.ErrorReporter.
type MockErrorReporter struct {
	mock.Mock
}

func (m *MockErrorReporter) ReportInvalid(ctx context.Context, rec *domain.DocumentRecord, res *domain.ValidationResult) error {
	args := m.Called(ctx, rec, res)
	return args.Error(0)
}
