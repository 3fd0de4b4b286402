package domain

import "strings"

// FormatTag is an accepted document format declared by a category.
type FormatTag string

const (
	FormatPDF   FormatTag = "pdf"
	FormatImage FormatTag = "image"
	FormatJPG   FormatTag = "jpg"
	FormatJPEG  FormatTag = "jpeg"
	FormatPNG   FormatTag = "png"
	FormatTIFF  FormatTag = "tiff"
)

// MIMEPDF is the only content type accepted by the pdf format check.
const MIMEPDF = "application/pdf"

// imageFormats are satisfied by any image/* content type.
var imageFormats = map[FormatTag]bool{
	FormatImage: true,
	FormatJPG:   true,
	FormatJPEG:  true,
	FormatPNG:   true,
	FormatTIFF:  true,
}

// Known reports whether f is one of the supported format tags.
func (f FormatTag) Known() bool {
	return f == FormatPDF || imageFormats[f]
}

// Accepts reports whether a document with the given MIME type satisfies the format tag.
func (f FormatTag) Accepts(mimeType string) bool {
	mimeType = strings.ToLower(strings.TrimSpace(mimeType))
	if f == FormatPDF {
		return mimeType == MIMEPDF
	}
	if imageFormats[f] {
		return strings.HasPrefix(mimeType, "image/")
	}
	return false
}

// Priority ranks how urgently a document is needed.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// ValidPriorities is the closed set of requirement priorities.
var ValidPriorities = map[Priority]bool{
	PriorityHigh:   true,
	PriorityMedium: true,
	PriorityLow:    true,
}

// LifecycleState represents where a submitted document is in its review lifecycle.
type LifecycleState string

const (
	StateUploaded   LifecycleState = "UPLOADED"
	StateProcessing LifecycleState = "PROCESSING"
	StateValidated  LifecycleState = "VALIDATED"
	StateVerified   LifecycleState = "VERIFIED"
	StateRejected   LifecycleState = "REJECTED"
	StateFailed     LifecycleState = "FAILED"
	StateArchived   LifecycleState = "ARCHIVED"
)

// AllLifecycleStates lists every state in declaration order.
var AllLifecycleStates = []LifecycleState{
	StateUploaded,
	StateProcessing,
	StateValidated,
	StateVerified,
	StateRejected,
	StateFailed,
	StateArchived,
}

// ParseLifecycleState converts a user-supplied string into a LifecycleState.
func ParseLifecycleState(s string) (LifecycleState, error) {
	candidate := LifecycleState(strings.ToUpper(strings.TrimSpace(s)))
	for _, st := range AllLifecycleStates {
		if st == candidate {
			return st, nil
		}
	}
	return "", ErrUnknownState
}

// Check names gating lifecycle transitions.
const (
	CheckVirusScan    = "virus_scan"
	CheckFormat       = "format_check"
	CheckCompleteness = "completeness"
	CheckCompliance   = "compliance"
	CheckFinalReview  = "final_review"
)
