package domain

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// RuleDescriptor describes one validation rule attached to a category.
// Rule-type specific parameters (pattern, min, max, values, layout ...) live in Params.
type RuleDescriptor struct {
	Type   string         `yaml:"type" json:"type"`
	Field  string         `yaml:"field" json:"field"`
	Params map[string]any `yaml:",inline" json:"params,omitempty"`
}

// DocumentCategory is a named document classification with its own validation rules.
type DocumentCategory struct {
	ID              string           `yaml:"id" json:"id"`
	Parent          string           `yaml:"parent" json:"parent,omitempty"`
	RequiredFields  []string         `yaml:"required_fields" json:"required_fields"`
	FormatChecks    []FormatTag      `yaml:"format_checks" json:"format_checks"`
	MaxSize         *int64           `yaml:"max_size" json:"max_size,omitempty"`
	ValidationRules []RuleDescriptor `yaml:"validation_rules" json:"validation_rules"`
	Metadata        map[string]any   `yaml:"metadata" json:"metadata"`
	Related         []string         `yaml:"related" json:"related,omitempty"`
}

// DocumentRequirement is a single document a taxpayer must (or may) supply.
type DocumentRequirement struct {
	Type     string         `yaml:"type" json:"type"`
	Priority Priority       `yaml:"priority" json:"priority"`
	Metadata map[string]any `yaml:"metadata" json:"metadata,omitempty"`
}

// UnmarshalYAML accepts either a bare type name or a full requirement mapping.
func (r *DocumentRequirement) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		*r = DocumentRequirement{Type: node.Value}
		return nil
	}
	type plain DocumentRequirement
	var p plain
	if err := node.Decode(&p); err != nil {
		return err
	}
	*r = DocumentRequirement(p)
	return nil
}

// RequirementSet is the resolved required/optional document list for a form and answer map.
type RequirementSet struct {
	Required      []DocumentRequirement `json:"required"`
	Optional      []DocumentRequirement `json:"optional"`
	TotalRequired int                   `json:"total_required"`
	TotalOptional int                   `json:"total_optional"`
}

// NewRequirementSet collapses both lists by type, keeping the first occurrence, and derives the counts.
func NewRequirementSet(required, optional []DocumentRequirement) *RequirementSet {
	req := DedupRequirements(required)
	opt := DedupRequirements(optional)
	return &RequirementSet{
		Required:      req,
		Optional:      opt,
		TotalRequired: len(req),
		TotalOptional: len(opt),
	}
}

// DedupRequirements returns reqs without repeated types. Order of first occurrence is preserved.
func DedupRequirements(reqs []DocumentRequirement) []DocumentRequirement {
	out := make([]DocumentRequirement, 0, len(reqs))
	seen := make(map[string]bool, len(reqs))
	for _, r := range reqs {
		if seen[r.Type] {
			continue
		}
		seen[r.Type] = true
		out = append(out, r)
	}
	return out
}

// Deadline is a named filing date taken from category metadata.
type Deadline struct {
	Name          string `json:"name"`
	Date          string `json:"date"`
	DaysRemaining int    `json:"days_remaining"`
}

// DeadlineStatus partitions a category's deadlines relative to the validation time.
type DeadlineStatus struct {
	HasDeadlines bool       `json:"has_deadlines"`
	Upcoming     []Deadline `json:"upcoming"`
	Overdue      []Deadline `json:"overdue"`
}

// QualityBreakdown holds the sub-scores the quality score is built from.
type QualityBreakdown struct {
	Completeness float64 `json:"completeness"`
	Clarity      float64 `json:"clarity"`
	Compliance   float64 `json:"compliance"`
}

// ValidationResult is the outcome of validating one submitted document.
type ValidationResult struct {
	DocumentID     uuid.UUID        `json:"document_id"`
	CategoryID     string           `json:"category_id"`
	IsValid        bool             `json:"is_valid"`
	QualityScore   float64          `json:"quality_score"`
	Breakdown      QualityBreakdown `json:"breakdown"`
	Errors         []string         `json:"errors"`
	Warnings       []string         `json:"warnings"`
	DeadlineStatus DeadlineStatus   `json:"deadline_status"`
}

// CheckEntry is one recorded check outcome in a document's check history.
type CheckEntry struct {
	Passed    bool      `json:"passed"`
	Timestamp time.Time `json:"timestamp"`
	Detail    string    `json:"detail,omitempty"`
}

// DocumentRecord is the caller-owned metadata of a submitted document.
// The engine only writes Status and CheckHistory.
type DocumentRecord struct {
	ID           uuid.UUID             `json:"id"`
	Category     string                `json:"category"`
	MimeType     string                `json:"mime_type"`
	Size         int64                 `json:"size"`
	Fields       map[string]any        `json:"fields"`
	ClarityScore *float64              `json:"clarity_score,omitempty"`
	Status       LifecycleState        `json:"status"`
	CheckHistory map[string]CheckEntry `json:"check_history"`
	CreatedAt    time.Time             `json:"created_at"`
	UpdatedAt    time.Time             `json:"updated_at"`
}

// Clone returns a deep copy of the record's maps so the copy can be handed to another goroutine.
func (r *DocumentRecord) Clone() *DocumentRecord {
	cp := *r
	if r.Fields != nil {
		cp.Fields = make(map[string]any, len(r.Fields))
		for k, v := range r.Fields {
			cp.Fields[k] = v
		}
	}
	if r.CheckHistory != nil {
		cp.CheckHistory = make(map[string]CheckEntry, len(r.CheckHistory))
		for k, v := range r.CheckHistory {
			cp.CheckHistory[k] = v
		}
	}
	if r.ClarityScore != nil {
		c := *r.ClarityScore
		cp.ClarityScore = &c
	}
	return &cp
}

// ApplyTransition sets the new status and records the check outcomes that admitted it.
func (r *DocumentRecord) ApplyTransition(next LifecycleState, entries map[string]CheckEntry, at time.Time) {
	r.Status = next
	if r.CheckHistory == nil {
		r.CheckHistory = make(map[string]CheckEntry, len(entries))
	}
	for name, e := range entries {
		r.CheckHistory[name] = e
	}
	r.UpdatedAt = at
}

// CheckOutcome is the result of running one named check.
type CheckOutcome struct {
	Name   string `json:"name"`
	Passed bool   `json:"passed"`
	Detail string `json:"detail,omitempty"`
}

// TransitionResult is the outcome of a lifecycle transition request.
type TransitionResult struct {
	Success        bool           `json:"success"`
	PreviousStatus LifecycleState `json:"previous_status,omitempty"`
	NewStatus      LifecycleState `json:"new_status,omitempty"`
	Timestamp      *time.Time     `json:"timestamp,omitempty"`
	Checks         []CheckOutcome `json:"checks,omitempty"`
	Errors         []string       `json:"errors,omitempty"`
}

// Checklist reports progress on the checks required for a document's current state.
type Checklist struct {
	DocumentID   uuid.UUID        `json:"document_id"`
	CurrentState LifecycleState   `json:"current_state"`
	NextStates   []LifecycleState `json:"next_states"`
	Completed    []string         `json:"completed"`
	Failed       []string         `json:"failed"`
	Pending      []string         `json:"pending"`
}

// SortedKeys returns the keys of m in ascending order.
func SortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Event types published by the document service.
const (
	EventDocumentCreated      = "document.created"
	EventDocumentTransitioned = "document.transitioned"
	EventValidationFailed     = "validation.failed"
)

// Event is a document lifecycle notification.
type Event struct {
	Type       string         `json:"type"`
	DocumentID uuid.UUID      `json:"document_id"`
	OccurredAt time.Time      `json:"occurred_at"`
	Data       map[string]any `json:"data,omitempty"`
}
