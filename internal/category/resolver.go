// Package category resolves a category's effective rules by walking its parent chain.
package category

import (
	"errors"
	"fmt"
	"slices"

	"taxdocs/internal/domain"
)

// Source looks up categories as declared. *catalog.Catalog satisfies it.
type Source interface {
	Category(id string) (*domain.DocumentCategory, bool)
}

// Resolver merges categories with their ancestors. It holds no mutable state
// and is safe for concurrent use.
type Resolver struct {
	src Source
}

// NewResolver creates a Resolver over src.
func NewResolver(src Source) *Resolver {
	return &Resolver{src: src}
}

// EffectiveRules returns the category merged over its parent chain:
// list fields are concatenated parent first, metadata is merged by top-level
// key with child keys winning, and max_size is the child's when set. The
// result is a deep copy and shares nothing with the catalog.
func (r *Resolver) EffectiveRules(id string) (*domain.DocumentCategory, error) {
	return r.resolve(id, make(map[string]bool))
}

func (r *Resolver) resolve(id string, visited map[string]bool) (*domain.DocumentCategory, error) {
	if visited[id] {
		return nil, fmt.Errorf("%w: cyclic category inheritance at %q", domain.ErrConfiguration, id)
	}
	visited[id] = true

	cat, ok := r.src.Category(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrCategoryNotFound, id)
	}
	if cat.Parent == "" {
		return clone(cat), nil
	}

	parent, err := r.resolve(cat.Parent, visited)
	if err != nil {
		if errors.Is(err, domain.ErrCategoryNotFound) {
			return nil, fmt.Errorf("%w: category %q has unknown parent: %w", domain.ErrConfiguration, id, err)
		}
		return nil, err
	}

	merged := &domain.DocumentCategory{
		ID:              cat.ID,
		Parent:          cat.Parent,
		RequiredFields:  slices.Concat(parent.RequiredFields, cat.RequiredFields),
		FormatChecks:    slices.Concat(parent.FormatChecks, cat.FormatChecks),
		ValidationRules: slices.Concat(parent.ValidationRules, cloneRules(cat.ValidationRules)),
		Metadata:        parent.Metadata,
		MaxSize:         parent.MaxSize,
		Related:         slices.Clone(cat.Related),
	}
	for k, v := range cat.Metadata {
		merged.Metadata[k] = deepCopy(v)
	}
	if cat.MaxSize != nil {
		size := *cat.MaxSize
		merged.MaxSize = &size
	}
	return merged, nil
}

// EffectiveMetadata returns the merged metadata of the category.
func (r *Resolver) EffectiveMetadata(id string) (map[string]any, error) {
	rules, err := r.EffectiveRules(id)
	if err != nil {
		return nil, err
	}
	return rules.Metadata, nil
}

// Known reports whether id names a catalog category.
func (r *Resolver) Known(id string) bool {
	_, ok := r.src.Category(id)
	return ok
}

// Related returns the category's own related ids, sorted. Relations are not inherited.
func (r *Resolver) Related(id string) ([]string, error) {
	cat, ok := r.src.Category(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrCategoryNotFound, id)
	}
	out := slices.Clone(cat.Related)
	slices.Sort(out)
	return out, nil
}

func clone(cat *domain.DocumentCategory) *domain.DocumentCategory {
	cp := &domain.DocumentCategory{
		ID:              cat.ID,
		Parent:          cat.Parent,
		RequiredFields:  slices.Clone(cat.RequiredFields),
		FormatChecks:    slices.Clone(cat.FormatChecks),
		ValidationRules: cloneRules(cat.ValidationRules),
		Metadata:        deepCopyMap(cat.Metadata),
		Related:         slices.Clone(cat.Related),
	}
	if cat.MaxSize != nil {
		size := *cat.MaxSize
		cp.MaxSize = &size
	}
	return cp
}

func cloneRules(rules []domain.RuleDescriptor) []domain.RuleDescriptor {
	if rules == nil {
		return nil
	}
	out := make([]domain.RuleDescriptor, len(rules))
	for i, r := range rules {
		out[i] = domain.RuleDescriptor{Type: r.Type, Field: r.Field}
		if r.Params != nil {
			out[i].Params = deepCopyMap(r.Params)
		}
	}
	return out
}

func deepCopyMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = deepCopy(v)
	}
	return out
}

// deepCopy copies the map and slice shapes produced by YAML decoding.
func deepCopy(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return deepCopyMap(t)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = deepCopy(e)
		}
		return out
	case []string:
		return slices.Clone(t)
	default:
		return v
	}
}
