package handler_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"taxdocs/internal/domain"
	"taxdocs/internal/handler"
	"taxdocs/mocks"
)

func TestRequirementHandler_Resolve(t *testing.T) {
	mockSvc := new(mocks.MockDocumentService)
	h := handler.NewRequirementHandler(mockSvc)

	set := domain.NewRequirementSet(
		[]domain.DocumentRequirement{{Type: "W2", Priority: "high"}},
		[]domain.DocumentRequirement{{Type: "1098", Priority: "medium"}},
	)
	mockSvc.On("Requirements", mock.Anything, "1040", map[string]any{"has_investments": true}).Return(set, nil)

	c, w := newTestContext(http.MethodPost, "/api/v1/requirements/1040",
		map[string]any{"answers": map[string]any{"has_investments": true}},
		gin.Param{Key: "form_type", Value: "1040"})
	h.Resolve(c)

	assert.Equal(t, http.StatusOK, w.Code)
	data := decodeResponse(t, w).Data.(map[string]any)
	assert.Equal(t, float64(1), data["total_required"])
	assert.Equal(t, float64(1), data["total_optional"])
	mockSvc.AssertExpectations(t)
}

func TestRequirementHandler_Resolve_EmptyBody(t *testing.T) {
	mockSvc := new(mocks.MockDocumentService)
	h := handler.NewRequirementHandler(mockSvc)
	mockSvc.On("Requirements", mock.Anything, "1040", map[string]any{}).Return(domain.NewRequirementSet(nil, nil), nil)

	c, w := newTestContext(http.MethodPost, "/", nil, gin.Param{Key: "form_type", Value: "1040"})
	h.Resolve(c)

	assert.Equal(t, http.StatusOK, w.Code)
	mockSvc.AssertExpectations(t)
}

func TestRequirementHandler_Resolve_BadTrigger(t *testing.T) {
	mockSvc := new(mocks.MockDocumentService)
	h := handler.NewRequirementHandler(mockSvc)
	mockSvc.On("Requirements", mock.Anything, "1040", mock.Anything).
		Return(nil, fmt.Errorf("evaluating schedule C: %w", domain.ErrTypeConversion))

	c, w := newTestContext(http.MethodPost, "/", map[string]any{"answers": map[string]any{"business_income": "lots"}},
		gin.Param{Key: "form_type", Value: "1040"})
	h.Resolve(c)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "INVALID_ANSWER", decodeResponse(t, w).Error.Code)
}

func TestRequirementHandler_Issues(t *testing.T) {
	mockSvc := new(mocks.MockDocumentService)
	h := handler.NewRequirementHandler(mockSvc)
	mockSvc.On("ConditionIssues", mock.Anything, "1040").Return([]string{})

	c, w := newTestContext(http.MethodGet, "/", nil, gin.Param{Key: "form_type", Value: "1040"})
	h.Issues(c)

	assert.Equal(t, http.StatusOK, w.Code)
	data := decodeResponse(t, w).Data.(map[string]any)
	assert.Equal(t, "1040", data["form_type"])
	assert.Equal(t, []any{}, data["issues"])
}
