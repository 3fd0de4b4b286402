// Package requirement computes the documents a taxpayer must supply for a form
// given their answers to the intake questionnaire.
package requirement

import (
	"fmt"
	"maps"
	"strconv"

	"taxdocs/internal/catalog"
	"taxdocs/internal/category"
	"taxdocs/internal/condition"
	"taxdocs/internal/domain"
)

// Resolver combines category, base, schedule and international requirements.
// It never mutates the catalog or the answer map and is safe for concurrent use.
type Resolver struct {
	catalog    *catalog.Catalog
	categories *category.Resolver
}

// NewResolver creates a Resolver over c.
func NewResolver(c *catalog.Catalog) *Resolver {
	return &Resolver{catalog: c, categories: category.NewResolver(c)}
}

// Known reports whether formType has a catalog category or base entries.
func (r *Resolver) Known(formType string) bool {
	return r.catalog.HasForm(formType) || r.categories.Known(formType)
}

// Resolve returns the deduplicated requirement set for formType. A form with
// neither a category nor base entries yields an empty set. Trigger evaluation
// errors are returned as-is.
func (r *Resolver) Resolve(formType string, answers map[string]any) (*domain.RequirementSet, error) {
	var acc accumulator

	_, hasCategory := r.catalog.Category(formType)
	if !hasCategory && !r.catalog.HasForm(formType) {
		return domain.NewRequirementSet(nil, nil), nil
	}

	if hasCategory {
		if err := r.addCategoryRequirements(&acc, formType); err != nil {
			return nil, err
		}
	}
	if err := r.addBaseRequirements(&acc, formType, answers); err != nil {
		return nil, err
	}
	r.addScheduleRequirements(&acc, formType, answers)
	if err := r.addInternationalRequirements(&acc, formType, answers); err != nil {
		return nil, err
	}

	return domain.NewRequirementSet(acc.required, acc.optional), nil
}

func (r *Resolver) addCategoryRequirements(acc *accumulator, formType string) error {
	md, err := r.categories.EffectiveMetadata(formType)
	if err != nil {
		return err
	}
	required, err := catalog.RequirementsFromValue(md["required"])
	if err != nil {
		return fmt.Errorf("%w: category %q metadata.required: %v", domain.ErrConfiguration, formType, err)
	}
	optional, err := catalog.RequirementsFromValue(md["optional"])
	if err != nil {
		return fmt.Errorf("%w: category %q metadata.optional: %v", domain.ErrConfiguration, formType, err)
	}
	acc.addRequired(required...)
	acc.addOptional(optional...)
	return nil
}

func (r *Resolver) addBaseRequirements(acc *accumulator, formType string, answers map[string]any) error {
	for _, entry := range r.catalog.BaseEntries(formType) {
		if !entry.HasConditions {
			acc.addRequired(*entry.Requirement)
			continue
		}
		for i := range entry.Conditions {
			block := &entry.Conditions[i]
			if !block.Applicable() {
				continue
			}
			ok, err := block.Expression.Evaluate(answers)
			if err != nil {
				return fmt.Errorf("form %s condition %q: %w", formType, block.Name, err)
			}
			if ok {
				acc.addRequired(block.RequiredDocs...)
			}
		}
	}
	return nil
}

func (r *Resolver) addScheduleRequirements(acc *accumulator, formType string, answers map[string]any) {
	for _, s := range r.catalog.Schedules() {
		if !s.AppliesTo(formType) || !anyFlag(answers, s.Flags) {
			continue
		}
		acc.addRequired(s.Required...)
		acc.addOptional(s.Optional...)
		for _, cr := range s.Conditional {
			if condition.Truthy(answers[cr.Flag]) {
				acc.addRequired(cr.Requirement)
			}
		}
	}
}

// addInternationalRequirements gates the whole section on the aggregate
// threshold, then adds each set on its own flag alone.
func (r *Resolver) addInternationalRequirements(acc *accumulator, formType string, answers map[string]any) error {
	intl := r.catalog.International()
	if len(intl.Sets) == 0 || !intl.AppliesTo(formType) {
		return nil
	}
	needed, err := exceedsThreshold(intl.Threshold, answers)
	if err != nil {
		return err
	}
	if !needed {
		return nil
	}
	for _, set := range intl.Sets {
		if condition.Truthy(answers[set.Flag]) {
			acc.addRequired(set.Required...)
			acc.addOptional(set.Optional...)
		}
	}
	return nil
}

func exceedsThreshold(th catalog.Threshold, answers map[string]any) (bool, error) {
	if anyFlag(answers, th.Flags) {
		return true, nil
	}
	if th.ValueField == "" {
		return false, nil
	}
	if v, ok := answers[th.ValueField]; !ok || v == nil {
		return false, nil
	}
	expr := condition.Expression{
		Field:    th.ValueField,
		Operator: condition.OpGreaterThan,
		Value:    strconv.FormatFloat(th.ValueThreshold, 'f', -1, 64),
	}
	ok, err := expr.Evaluate(answers)
	if err != nil {
		return false, fmt.Errorf("international threshold: %w", err)
	}
	return ok, nil
}

// ValidateConditions returns human-readable problems with the condition blocks
// of formType. Malformed blocks are skipped by Resolve.
func (r *Resolver) ValidateConditions(formType string) []string {
	return r.catalog.ConditionIssues(formType)
}

// ValidateAllConditions runs ValidateConditions over every form in the catalog.
func (r *Resolver) ValidateAllConditions() []string {
	var issues []string
	for _, form := range r.catalog.FormTypes() {
		issues = append(issues, r.catalog.ConditionIssues(form)...)
	}
	return issues
}

func anyFlag(answers map[string]any, flags []string) bool {
	for _, f := range flags {
		if condition.Truthy(answers[f]) {
			return true
		}
	}
	return false
}

type accumulator struct {
	required []domain.DocumentRequirement
	optional []domain.DocumentRequirement
}

func (a *accumulator) addRequired(reqs ...domain.DocumentRequirement) {
	for _, r := range reqs {
		a.required = append(a.required, copyRequirement(r))
	}
}

func (a *accumulator) addOptional(reqs ...domain.DocumentRequirement) {
	for _, r := range reqs {
		a.optional = append(a.optional, copyRequirement(r))
	}
}

func copyRequirement(r domain.DocumentRequirement) domain.DocumentRequirement {
	if r.Metadata != nil {
		r.Metadata = maps.Clone(r.Metadata)
	}
	return r
}
