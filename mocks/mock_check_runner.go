package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"taxdocs/internal/domain"
)

// MockCheckRunner is a mock implementation of port.CheckRunner.
type MockCheckRunner struct {
	mock.Mock
}

func (m *MockCheckRunner) RunCheck(ctx context.Context, name string, rec *domain.DocumentRecord) (domain.CheckOutcome, error) {
	args := m.Called(ctx, name, rec)
	return args.Get(0).(domain.CheckOutcome), args.Error(1)
}
