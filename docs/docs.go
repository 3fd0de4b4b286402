// Package docs holds the OpenAPI description of the HTTP API served under
// /swagger. Regenerate with: swag init -g cmd/server/main.go
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/documents": {
            "get": {
                "description": "List registered documents, newest first",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "documents"
                ],
                "summary": "List documents",
                "parameters": [
                    {
                        "type": "integer",
                        "default": 0,
                        "description": "Offset for pagination",
                        "name": "offset",
                        "in": "query"
                    },
                    {
                        "type": "integer",
                        "default": 20,
                        "description": "Limit for pagination (max 100)",
                        "name": "limit",
                        "in": "query"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "List of documents",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/handler.Response"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "type": "array",
                                            "items": {
                                                "$ref": "#/definitions/domain.DocumentRecord"
                                            }
                                        },
                                        "meta": {
                                            "$ref": "#/definitions/handler.PagMeta"
                                        }
                                    }
                                }
                            ]
                        }
                    }
                }
            },
            "post": {
                "description": "Register a submitted document with its extracted fields. The document starts in UPLOADED.",
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "documents"
                ],
                "summary": "Register a document",
                "parameters": [
                    {
                        "description": "Document details",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/handler.CreateDocumentRequest"
                        }
                    }
                ],
                "responses": {
                    "201": {
                        "description": "Document registered",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/handler.Response"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "$ref": "#/definitions/domain.DocumentRecord"
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "400": {
                        "description": "Invalid request",
                        "schema": {
                            "$ref": "#/definitions/handler.ErrorResponseBody"
                        }
                    },
                    "404": {
                        "description": "Unknown category",
                        "schema": {
                            "$ref": "#/definitions/handler.ErrorResponseBody"
                        }
                    },
                    "422": {
                        "description": "Invalid document",
                        "schema": {
                            "$ref": "#/definitions/handler.ErrorResponseBody"
                        }
                    }
                }
            }
        },
        "/documents/{id}": {
            "get": {
                "description": "Get a document record including its status and check history",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "documents"
                ],
                "summary": "Get document by ID",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Document ID (UUID)",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Document details",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/handler.Response"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "$ref": "#/definitions/domain.DocumentRecord"
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "400": {
                        "description": "Invalid ID",
                        "schema": {
                            "$ref": "#/definitions/handler.ErrorResponseBody"
                        }
                    },
                    "404": {
                        "description": "Document not found",
                        "schema": {
                            "$ref": "#/definitions/handler.ErrorResponseBody"
                        }
                    }
                }
            }
        },
        "/documents/{id}/checklist": {
            "get": {
                "description": "Report completed, failed and pending checks for the document's current state",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "documents"
                ],
                "summary": "Get the lifecycle checklist",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Document ID (UUID)",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Checklist",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/handler.Response"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "$ref": "#/definitions/domain.Checklist"
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "400": {
                        "description": "Invalid ID",
                        "schema": {
                            "$ref": "#/definitions/handler.ErrorResponseBody"
                        }
                    },
                    "404": {
                        "description": "Document not found",
                        "schema": {
                            "$ref": "#/definitions/handler.ErrorResponseBody"
                        }
                    }
                }
            }
        },
        "/documents/{id}/transitions": {
            "post": {
                "description": "Run the entry checks of the target state and move the document when they all pass",
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "documents"
                ],
                "summary": "Transition a document",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Document ID (UUID)",
                        "name": "id",
                        "in": "path",
                        "required": true
                    },
                    {
                        "description": "Target state",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/handler.TransitionRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Transition result, success=false when checks failed",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/handler.Response"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "$ref": "#/definitions/domain.TransitionResult"
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "400": {
                        "description": "Invalid ID or body",
                        "schema": {
                            "$ref": "#/definitions/handler.ErrorResponseBody"
                        }
                    },
                    "404": {
                        "description": "Document not found",
                        "schema": {
                            "$ref": "#/definitions/handler.ErrorResponseBody"
                        }
                    },
                    "409": {
                        "description": "Status changed concurrently",
                        "schema": {
                            "$ref": "#/definitions/handler.ErrorResponseBody"
                        }
                    },
                    "422": {
                        "description": "Transition not allowed or unknown state",
                        "schema": {
                            "$ref": "#/definitions/handler.ErrorResponseBody"
                        }
                    }
                }
            }
        },
        "/documents/{id}/validate": {
            "post": {
                "description": "Validate a document against a category's effective rules and score its quality",
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "documents"
                ],
                "summary": "Validate a document",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Document ID (UUID)",
                        "name": "id",
                        "in": "path",
                        "required": true
                    },
                    {
                        "description": "Category override",
                        "name": "request",
                        "in": "body",
                        "required": false,
                        "schema": {
                            "$ref": "#/definitions/handler.ValidateDocumentRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Validation result",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/handler.Response"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "$ref": "#/definitions/domain.ValidationResult"
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "400": {
                        "description": "Invalid ID or body",
                        "schema": {
                            "$ref": "#/definitions/handler.ErrorResponseBody"
                        }
                    },
                    "404": {
                        "description": "Document not found",
                        "schema": {
                            "$ref": "#/definitions/handler.ErrorResponseBody"
                        }
                    }
                }
            }
        },
        "/requirements/{form_type}": {
            "post": {
                "description": "Resolve the required and optional documents for a tax form from questionnaire answers",
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "requirements"
                ],
                "summary": "Resolve required documents",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Tax form type",
                        "name": "form_type",
                        "in": "path",
                        "required": true,
                        "example": "1040"
                    },
                    {
                        "description": "Questionnaire answers",
                        "name": "request",
                        "in": "body",
                        "required": false,
                        "schema": {
                            "$ref": "#/definitions/handler.ResolveRequirementsRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Requirement set",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/handler.Response"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "$ref": "#/definitions/domain.RequirementSet"
                                        }
                                    }
                                }
                            ]
                        }
                    },
                    "400": {
                        "description": "Invalid body",
                        "schema": {
                            "$ref": "#/definitions/handler.ErrorResponseBody"
                        }
                    },
                    "422": {
                        "description": "Answer cannot be compared or trigger is malformed",
                        "schema": {
                            "$ref": "#/definitions/handler.ErrorResponseBody"
                        }
                    }
                }
            }
        },
        "/requirements/{form_type}/issues": {
            "get": {
                "description": "List the conditional triggers of a form that fail to parse",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "requirements"
                ],
                "summary": "List malformed triggers",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Tax form type",
                        "name": "form_type",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Trigger issues",
                        "schema": {
                            "allOf": [
                                {
                                    "$ref": "#/definitions/handler.Response"
                                },
                                {
                                    "type": "object",
                                    "properties": {
                                        "data": {
                                            "$ref": "#/definitions/handler.ConditionIssuesResponse"
                                        }
                                    }
                                }
                            ]
                        }
                    }
                }
            }
        }
    },
    "definitions": {
        "domain.LifecycleState": {
            "type": "string",
            "enum": [
                "UPLOADED",
                "PROCESSING",
                "VALIDATED",
                "VERIFIED",
                "REJECTED",
                "FAILED",
                "ARCHIVED"
            ],
            "x-enum-varnames": [
                "StateUploaded",
                "StateProcessing",
                "StateValidated",
                "StateVerified",
                "StateRejected",
                "StateFailed",
                "StateArchived"
            ]
        },
        "domain.Priority": {
            "type": "string",
            "enum": [
                "high",
                "medium",
                "low"
            ],
            "x-enum-varnames": [
                "PriorityHigh",
                "PriorityMedium",
                "PriorityLow"
            ]
        },
        "domain.CheckEntry": {
            "type": "object",
            "properties": {
                "passed": {
                    "type": "boolean"
                },
                "timestamp": {
                    "type": "string"
                },
                "detail": {
                    "type": "string"
                }
            }
        },
        "domain.CheckOutcome": {
            "type": "object",
            "properties": {
                "name": {
                    "type": "string"
                },
                "passed": {
                    "type": "boolean"
                },
                "detail": {
                    "type": "string"
                }
            }
        },
        "domain.DocumentRecord": {
            "type": "object",
            "properties": {
                "id": {
                    "type": "string"
                },
                "category": {
                    "type": "string"
                },
                "mime_type": {
                    "type": "string"
                },
                "size": {
                    "type": "integer"
                },
                "fields": {
                    "type": "object",
                    "additionalProperties": true
                },
                "clarity_score": {
                    "type": "number"
                },
                "status": {
                    "$ref": "#/definitions/domain.LifecycleState"
                },
                "check_history": {
                    "type": "object",
                    "additionalProperties": {
                        "$ref": "#/definitions/domain.CheckEntry"
                    }
                },
                "created_at": {
                    "type": "string"
                },
                "updated_at": {
                    "type": "string"
                }
            }
        },
        "domain.DocumentRequirement": {
            "type": "object",
            "properties": {
                "type": {
                    "type": "string"
                },
                "priority": {
                    "$ref": "#/definitions/domain.Priority"
                },
                "metadata": {
                    "type": "object",
                    "additionalProperties": true
                }
            }
        },
        "domain.RequirementSet": {
            "type": "object",
            "properties": {
                "required": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/domain.DocumentRequirement"
                    }
                },
                "optional": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/domain.DocumentRequirement"
                    }
                },
                "total_required": {
                    "type": "integer"
                },
                "total_optional": {
                    "type": "integer"
                }
            }
        },
        "domain.Deadline": {
            "type": "object",
            "properties": {
                "name": {
                    "type": "string"
                },
                "date": {
                    "type": "string"
                },
                "days_remaining": {
                    "type": "integer"
                }
            }
        },
        "domain.DeadlineStatus": {
            "type": "object",
            "properties": {
                "has_deadlines": {
                    "type": "boolean"
                },
                "upcoming": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/domain.Deadline"
                    }
                },
                "overdue": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/domain.Deadline"
                    }
                }
            }
        },
        "domain.QualityBreakdown": {
            "type": "object",
            "properties": {
                "completeness": {
                    "type": "number"
                },
                "clarity": {
                    "type": "number"
                },
                "compliance": {
                    "type": "number"
                }
            }
        },
        "domain.ValidationResult": {
            "type": "object",
            "properties": {
                "document_id": {
                    "type": "string"
                },
                "category_id": {
                    "type": "string"
                },
                "is_valid": {
                    "type": "boolean"
                },
                "quality_score": {
                    "type": "number"
                },
                "breakdown": {
                    "$ref": "#/definitions/domain.QualityBreakdown"
                },
                "errors": {
                    "type": "array",
                    "items": {
                        "type": "string"
                    }
                },
                "warnings": {
                    "type": "array",
                    "items": {
                        "type": "string"
                    }
                },
                "deadline_status": {
                    "$ref": "#/definitions/domain.DeadlineStatus"
                }
            }
        },
        "domain.TransitionResult": {
            "type": "object",
            "properties": {
                "success": {
                    "type": "boolean"
                },
                "previous_status": {
                    "$ref": "#/definitions/domain.LifecycleState"
                },
                "new_status": {
                    "$ref": "#/definitions/domain.LifecycleState"
                },
                "timestamp": {
                    "type": "string"
                },
                "checks": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/domain.CheckOutcome"
                    }
                },
                "errors": {
                    "type": "array",
                    "items": {
                        "type": "string"
                    }
                }
            }
        },
        "domain.Checklist": {
            "type": "object",
            "properties": {
                "document_id": {
                    "type": "string"
                },
                "current_state": {
                    "$ref": "#/definitions/domain.LifecycleState"
                },
                "next_states": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/domain.LifecycleState"
                    }
                },
                "completed": {
                    "type": "array",
                    "items": {
                        "type": "string"
                    }
                },
                "failed": {
                    "type": "array",
                    "items": {
                        "type": "string"
                    }
                },
                "pending": {
                    "type": "array",
                    "items": {
                        "type": "string"
                    }
                }
            }
        },
        "handler.APIError": {
            "type": "object",
            "properties": {
                "code": {
                    "type": "string"
                },
                "message": {
                    "type": "string"
                }
            }
        },
        "handler.PagMeta": {
            "type": "object",
            "properties": {
                "total": {
                    "type": "integer"
                },
                "offset": {
                    "type": "integer"
                },
                "limit": {
                    "type": "integer"
                }
            }
        },
        "handler.Response": {
            "type": "object",
            "properties": {
                "success": {
                    "type": "boolean",
                    "example": true
                },
                "data": {},
                "meta": {
                    "$ref": "#/definitions/handler.PagMeta"
                }
            }
        },
        "handler.ErrorResponseBody": {
            "type": "object",
            "properties": {
                "success": {
                    "type": "boolean",
                    "example": false
                },
                "error": {
                    "$ref": "#/definitions/handler.APIError"
                }
            }
        },
        "handler.ConditionIssuesResponse": {
            "type": "object",
            "properties": {
                "form_type": {
                    "type": "string",
                    "example": "1040"
                },
                "issues": {
                    "type": "array",
                    "items": {
                        "type": "string"
                    }
                }
            }
        },
        "handler.CreateDocumentRequest": {
            "type": "object",
            "properties": {
                "category": {
                    "type": "string",
                    "example": "W2"
                },
                "mime_type": {
                    "type": "string",
                    "example": "application/pdf"
                },
                "size": {
                    "type": "integer",
                    "example": 2048
                },
                "fields": {
                    "type": "object"
                },
                "clarity_score": {
                    "type": "number",
                    "example": 0.95
                }
            },
            "required": [
                "category"
            ]
        },
        "handler.ValidateDocumentRequest": {
            "type": "object",
            "properties": {
                "category_id": {
                    "type": "string",
                    "example": "W2"
                }
            }
        },
        "handler.TransitionRequest": {
            "type": "object",
            "properties": {
                "target": {
                    "type": "string",
                    "enum": [
                        "UPLOADED",
                        "PROCESSING",
                        "VALIDATED",
                        "VERIFIED",
                        "REJECTED",
                        "FAILED",
                        "ARCHIVED"
                    ],
                    "example": "PROCESSING"
                }
            },
            "required": [
                "target"
            ]
        },
        "handler.ResolveRequirementsRequest": {
            "type": "object",
            "properties": {
                "answers": {
                    "type": "object"
                }
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "taxdocs API",
	Description:      "Tax document requirements, validation and lifecycle tracking.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
