package handler_test

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"taxdocs/internal/handler"
	"taxdocs/mocks"
)

func TestHealthHandler_Readiness(t *testing.T) {
	mockSvc := new(mocks.MockDocumentService)
	h := handler.NewHealthHandler(mockSvc, "redis")

	mockSvc.On("Ready", mock.Anything).Return(nil).Once()
	c, w := newTestContext(http.MethodGet, "/readyz", nil)
	h.Readiness(c)
	assert.Equal(t, http.StatusOK, w.Code)

	mockSvc.On("Ready", mock.Anything).Return(errors.New("dial tcp: refused")).Once()
	c, w = newTestContext(http.MethodGet, "/readyz", nil)
	h.Readiness(c)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "redis store not reachable")
}

func TestHealthHandler_Liveness(t *testing.T) {
	h := handler.NewHealthHandler(new(mocks.MockDocumentService), "memory")
	c, w := newTestContext(http.MethodGet, "/healthz", nil)
	h.Liveness(c)
	assert.Equal(t, http.StatusOK, w.Code)
}
