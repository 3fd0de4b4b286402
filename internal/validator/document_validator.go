// Package validator checks submitted document metadata against the effective
// rules of its category and scores its quality.
package validator

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"go.uber.org/zap"

	"taxdocs/internal/category"
	"taxdocs/internal/domain"
	"taxdocs/internal/port"
)

const reportTimeout = 10 * time.Second

// DocumentValidator validates document records. It keeps no per-call state and
// is safe for concurrent use once constructed.
type DocumentValidator struct {
	categories *category.Resolver
	rules      *Registry
	relations  *RelationRegistry
	reporter   port.ErrorReporter
	log        *zap.Logger
	now        func() time.Time
}

// NewDocumentValidator creates a DocumentValidator. relations and reporter may be nil.
func NewDocumentValidator(
	categories *category.Resolver,
	rules *Registry,
	relations *RelationRegistry,
	reporter port.ErrorReporter,
	log *zap.Logger,
) *DocumentValidator {
	if log == nil {
		log = zap.NewNop()
	}
	return &DocumentValidator{
		categories: categories,
		rules:      rules,
		relations:  relations,
		reporter:   reporter,
		log:        log,
		now:        time.Now,
	}
}

// WithClock returns a copy of v that reads the current time from now.
func (v *DocumentValidator) WithClock(now func() time.Time) *DocumentValidator {
	cp := *v
	cp.now = now
	return &cp
}

// EffectiveRules exposes the category resolver used by the validator.
func (v *DocumentValidator) EffectiveRules(categoryID string) (*domain.DocumentCategory, error) {
	return v.categories.EffectiveRules(categoryID)
}

// KnownCategory reports whether categoryID names a catalog category.
func (v *DocumentValidator) KnownCategory(categoryID string) bool {
	return v.categories.Known(categoryID)
}

// Validate checks rec against the effective rules of categoryID. It always
// returns a result; problems are reported in Errors and Warnings. Invalid
// results are handed to the error reporter without waiting for it.
func (v *DocumentValidator) Validate(ctx context.Context, rec *domain.DocumentRecord, categoryID string) *domain.ValidationResult {
	res := &domain.ValidationResult{
		DocumentID: rec.ID,
		CategoryID: categoryID,
		Errors:     []string{},
		Warnings:   []string{},
		DeadlineStatus: domain.DeadlineStatus{
			Upcoming: []domain.Deadline{},
			Overdue:  []domain.Deadline{},
		},
	}

	rules, err := v.categories.EffectiveRules(categoryID)
	if err != nil {
		res.Errors = append(res.Errors, err.Error())
		v.report(ctx, rec, res)
		return res
	}

	categoryErrs := CategoryErrors(rules, rec)
	res.Errors = append(res.Errors, categoryErrs...)

	completeness := Completeness(rules.RequiredFields, rec.Fields)
	compliance, ruleWarnings := v.Compliance(ctx, rules.ValidationRules, rec.Fields)
	clarity := Clarity(rec)
	res.Warnings = append(res.Warnings, ruleWarnings...)
	res.Breakdown = domain.QualityBreakdown{
		Completeness: round2(completeness),
		Clarity:      round2(clarity),
		Compliance:   round2(compliance),
	}
	res.QualityScore = QualityScore(completeness, clarity, compliance)

	relatedErrs, relatedWarnings := v.checkRelated(ctx, rec, categoryID, rules.Related)
	res.Errors = append(res.Errors, relatedErrs...)
	res.Warnings = append(res.Warnings, relatedWarnings...)

	deadlines, deadlineWarnings := DeadlineStatusAt(rules.Metadata, v.now())
	res.DeadlineStatus = deadlines
	res.Warnings = append(res.Warnings, deadlineWarnings...)

	res.IsValid = len(categoryErrs) == 0 && len(relatedErrs) == 0
	if !res.IsValid {
		v.report(ctx, rec, res)
	}
	return res
}

// CategoryErrors runs the required-field, format and size checks. Every check
// runs; the returned slice holds one message per failure.
func CategoryErrors(rules *domain.DocumentCategory, rec *domain.DocumentRecord) []string {
	var errs []string
	seen := make(map[string]bool, len(rules.RequiredFields))
	for _, f := range rules.RequiredFields {
		if seen[f] || hasField(rec.Fields, f) {
			continue
		}
		seen[f] = true
		errs = append(errs, fmt.Sprintf("missing required field: %s", f))
	}
	if msg := FormatError(rules, rec); msg != "" {
		errs = append(errs, msg)
	}
	if msg := SizeError(rules, rec); msg != "" {
		errs = append(errs, msg)
	}
	return errs
}

// FormatError describes a MIME type not accepted by the category, or returns "".
func FormatError(rules *domain.DocumentCategory, rec *domain.DocumentRecord) string {
	if FormatAccepted(rules.FormatChecks, rec.MimeType) {
		return ""
	}
	tags := make([]string, 0, len(rules.FormatChecks))
	for _, f := range rules.FormatChecks {
		if !slices.Contains(tags, string(f)) {
			tags = append(tags, string(f))
		}
	}
	return fmt.Sprintf("unsupported format %q: expected one of %s", rec.MimeType, strings.Join(tags, ", "))
}

// SizeError describes a document larger than the category's max_size, or returns "".
func SizeError(rules *domain.DocumentCategory, rec *domain.DocumentRecord) string {
	if rules.MaxSize == nil || rec.Size <= *rules.MaxSize {
		return ""
	}
	return fmt.Sprintf("document size %d bytes exceeds maximum %d bytes", rec.Size, *rules.MaxSize)
}

func (v *DocumentValidator) checkRelated(ctx context.Context, rec *domain.DocumentRecord, categoryID string, related []string) (errs, warnings []string) {
	ids := slices.Clone(related)
	slices.Sort(ids)
	for _, rel := range ids {
		e, w := v.relations.Get(categoryID, rel).CheckRelation(ctx, rec, categoryID, rel)
		errs = append(errs, e...)
		warnings = append(warnings, w...)
	}
	return errs, warnings
}

// report hands copies of rec and res to the error reporter on its own goroutine.
func (v *DocumentValidator) report(ctx context.Context, rec *domain.DocumentRecord, res *domain.ValidationResult) {
	if v.reporter == nil {
		return
	}
	recCopy := rec.Clone()
	resCopy := *res
	resCopy.Errors = slices.Clone(res.Errors)
	resCopy.Warnings = slices.Clone(res.Warnings)

	go func() {
		rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), reportTimeout)
		defer cancel()
		if err := v.reporter.ReportInvalid(rctx, recCopy, &resCopy); err != nil {
			v.log.Warn("reporting invalid document failed",
				zap.String("document_id", recCopy.ID.String()),
				zap.String("category", resCopy.CategoryID),
				zap.Error(err),
			)
		}
	}()
}
