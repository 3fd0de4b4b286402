package handler

// Request and response bodies of the HTTP API. The example tags feed the
// OpenAPI description served under /swagger.

// --- Request Types ---

// CreateDocumentRequest represents the register document request body.
type CreateDocumentRequest struct {
	Category     string         `json:"category" binding:"required" example:"W2"`
	MimeType     string         `json:"mime_type" example:"application/pdf"`
	Size         int64          `json:"size" example:"2048"`
	Fields       map[string]any `json:"fields" swaggertype:"object"`
	ClarityScore *float64       `json:"clarity_score" example:"0.95"`
}

// ValidateDocumentRequest represents the optional validate request body.
type ValidateDocumentRequest struct {
	CategoryID string `json:"category_id" example:"W2"`
}

// TransitionRequest represents the lifecycle transition request body.
type TransitionRequest struct {
	Target string `json:"target" binding:"required" example:"PROCESSING" enums:"UPLOADED,PROCESSING,VALIDATED,VERIFIED,REJECTED,FAILED,ARCHIVED"`
}

// ResolveRequirementsRequest represents the optional questionnaire answers body.
type ResolveRequirementsRequest struct {
	Answers map[string]any `json:"answers" swaggertype:"object"`
}

// --- Response Types ---

// ConditionIssuesResponse lists the malformed triggers of a form.
type ConditionIssuesResponse struct {
	FormType string   `json:"form_type" example:"1040"`
	Issues   []string `json:"issues"`
}

// --- Generic Response Wrappers ---

// Response wraps a successful response with data.
type Response struct {
	Success bool        `json:"success" example:"true"`
	Data    interface{} `json:"data,omitempty"`
	Meta    *PagMeta    `json:"meta,omitempty"`
}

// ErrorResponseBody wraps an error response.
type ErrorResponseBody struct {
	Success bool      `json:"success" example:"false"`
	Error   *APIError `json:"error"`
}
