package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"taxdocs/internal/service"
)

// RequirementHandler resolves document requirements for tax forms.
type RequirementHandler struct {
	documentService service.DocumentService
}

// NewRequirementHandler creates a new RequirementHandler.
func NewRequirementHandler(documentService service.DocumentService) *RequirementHandler {
	return &RequirementHandler{documentService: documentService}
}

// Resolve handles POST /api/v1/requirements/:form_type
// @Summary Resolve required documents
// @Description Resolve the required and optional documents for a tax form from questionnaire answers
// @Tags requirements
// @Accept json
// @Produce json
// @Param form_type path string true "Tax form type" example(1040)
// @Param request body ResolveRequirementsRequest false "Questionnaire answers"
// @Success 200 {object} Response{data=domain.RequirementSet} "Requirement set"
// @Failure 400 {object} ErrorResponseBody "Invalid body"
// @Failure 422 {object} ErrorResponseBody "Answer cannot be compared or trigger is malformed"
// @Router /requirements/{form_type} [post]
func (h *RequirementHandler) Resolve(c *gin.Context) {
	var req ResolveRequirementsRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "answers must be a JSON object")
			return
		}
	}
	if req.Answers == nil {
		req.Answers = map[string]any{}
	}

	set, err := h.documentService.Requirements(c.Request.Context(), c.Param("form_type"), req.Answers)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, set)
}

// Issues handles GET /api/v1/requirements/:form_type/issues
// @Summary List malformed triggers
// @Description List the conditional triggers of a form that fail to parse
// @Tags requirements
// @Produce json
// @Param form_type path string true "Tax form type"
// @Success 200 {object} Response{data=ConditionIssuesResponse} "Trigger issues"
// @Router /requirements/{form_type}/issues [get]
func (h *RequirementHandler) Issues(c *gin.Context) {
	formType := c.Param("form_type")
	issues := h.documentService.ConditionIssues(c.Request.Context(), formType)
	RespondOK(c, ConditionIssuesResponse{FormType: formType, Issues: issues})
}
