package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"taxdocs/internal/domain"
	"taxdocs/internal/service"
)

// DocumentHandler handles document registration, validation and lifecycle endpoints.
type DocumentHandler struct {
	documentService service.DocumentService
}

// NewDocumentHandler creates a new DocumentHandler.
func NewDocumentHandler(documentService service.DocumentService) *DocumentHandler {
	return &DocumentHandler{documentService: documentService}
}

// Create handles POST /api/v1/documents
// @Summary Register a document
// @Description Register a submitted document with its extracted fields. The document starts in UPLOADED.
// @Tags documents
// @Accept json
// @Produce json
// @Param request body CreateDocumentRequest true "Document details"
// @Success 201 {object} Response{data=domain.DocumentRecord} "Document registered"
// @Failure 400 {object} ErrorResponseBody "Invalid request"
// @Failure 404 {object} ErrorResponseBody "Unknown category"
// @Failure 422 {object} ErrorResponseBody "Invalid document"
// @Router /documents [post]
func (h *DocumentHandler) Create(c *gin.Context) {
	var req CreateDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "category is required")
		return
	}

	rec, err := h.documentService.Create(c.Request.Context(), &service.CreateDocumentInput{
		Category:     req.Category,
		MimeType:     req.MimeType,
		Size:         req.Size,
		Fields:       req.Fields,
		ClarityScore: req.ClarityScore,
	})
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondCreated(c, rec)
}

// GetByID handles GET /api/v1/documents/:id
// @Summary Get document by ID
// @Description Get a document record including its status and check history
// @Tags documents
// @Produce json
// @Param id path string true "Document ID (UUID)"
// @Success 200 {object} Response{data=domain.DocumentRecord} "Document details"
// @Failure 400 {object} ErrorResponseBody "Invalid ID"
// @Failure 404 {object} ErrorResponseBody "Document not found"
// @Router /documents/{id} [get]
func (h *DocumentHandler) GetByID(c *gin.Context) {
	id, ok := parseDocumentID(c)
	if !ok {
		return
	}

	rec, err := h.documentService.Get(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, rec)
}

// List handles GET /api/v1/documents
// @Summary List documents
// @Description List registered documents, newest first
// @Tags documents
// @Produce json
// @Param offset query int false "Offset for pagination" default(0)
// @Param limit query int false "Limit for pagination (max 100)" default(20)
// @Success 200 {object} Response{data=[]domain.DocumentRecord,meta=PagMeta} "List of documents"
// @Router /documents [get]
func (h *DocumentHandler) List(c *gin.Context) {
	offset, limit := parsePagination(c)

	recs, total, err := h.documentService.List(c.Request.Context(), offset, limit)
	if err != nil {
		HandleError(c, err)
		return
	}
	if recs == nil {
		recs = []domain.DocumentRecord{}
	}

	RespondPaginated(c, recs, PagMeta{Total: total, Offset: offset, Limit: limit})
}

// Validate handles POST /api/v1/documents/:id/validate
//
// The body is optional; without category_id the document's own category is used.
// @Summary Validate a document
// @Description Validate a document against a category's effective rules and score its quality
// @Tags documents
// @Accept json
// @Produce json
// @Param id path string true "Document ID (UUID)"
// @Param request body ValidateDocumentRequest false "Category override"
// @Success 200 {object} Response{data=domain.ValidationResult} "Validation result"
// @Failure 400 {object} ErrorResponseBody "Invalid ID or body"
// @Failure 404 {object} ErrorResponseBody "Document not found"
// @Router /documents/{id}/validate [post]
func (h *DocumentHandler) Validate(c *gin.Context) {
	id, ok := parseDocumentID(c)
	if !ok {
		return
	}

	var req ValidateDocumentRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "invalid request body")
			return
		}
	}

	res, err := h.documentService.Validate(c.Request.Context(), id, req.CategoryID)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, res)
}

// Transition handles POST /api/v1/documents/:id/transitions
//
// A transition blocked by failed checks is not an error: the result is
// returned with success=false and the failing checks listed.
// @Summary Transition a document
// @Description Run the entry checks of the target state and move the document when they all pass
// @Tags documents
// @Accept json
// @Produce json
// @Param id path string true "Document ID (UUID)"
// @Param request body TransitionRequest true "Target state"
// @Success 200 {object} Response{data=domain.TransitionResult} "Transition result, success=false when checks failed"
// @Failure 400 {object} ErrorResponseBody "Invalid ID or body"
// @Failure 404 {object} ErrorResponseBody "Document not found"
// @Failure 409 {object} ErrorResponseBody "Status changed concurrently"
// @Failure 422 {object} ErrorResponseBody "Transition not allowed or unknown state"
// @Router /documents/{id}/transitions [post]
func (h *DocumentHandler) Transition(c *gin.Context) {
	id, ok := parseDocumentID(c)
	if !ok {
		return
	}

	var req TransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "target is required")
		return
	}
	target, err := domain.ParseLifecycleState(req.Target)
	if err != nil {
		HandleError(c, err)
		return
	}

	res, err := h.documentService.Transition(c.Request.Context(), id, target)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, res)
}

// Checklist handles GET /api/v1/documents/:id/checklist
// @Summary Get the lifecycle checklist
// @Description Report completed, failed and pending checks for the document's current state
// @Tags documents
// @Produce json
// @Param id path string true "Document ID (UUID)"
// @Success 200 {object} Response{data=domain.Checklist} "Checklist"
// @Failure 400 {object} ErrorResponseBody "Invalid ID"
// @Failure 404 {object} ErrorResponseBody "Document not found"
// @Router /documents/{id}/checklist [get]
func (h *DocumentHandler) Checklist(c *gin.Context) {
	id, ok := parseDocumentID(c)
	if !ok {
		return
	}

	cl, err := h.documentService.Checklist(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, cl)
}

func parseDocumentID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid document ID")
		return uuid.Nil, false
	}
	return id, true
}
