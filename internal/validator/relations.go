package validator

import (
	"context"

	"taxdocs/internal/domain"
)

// RelationCheck checks a document against one related category.
type RelationCheck interface {
	CheckRelation(ctx context.Context, rec *domain.DocumentRecord, categoryID, relatedID string) (errs, warnings []string)
}

// RelationCheckFunc adapts a function to RelationCheck.
type RelationCheckFunc func(ctx context.Context, rec *domain.DocumentRecord, categoryID, relatedID string) ([]string, []string)

func (f RelationCheckFunc) CheckRelation(ctx context.Context, rec *domain.DocumentRecord, categoryID, relatedID string) ([]string, []string) {
	return f(ctx, rec, categoryID, relatedID)
}

type relationKey struct {
	category string
	related  string
}

// RelationRegistry maps (category, related category) pairs to checks. Pairs
// without a registered check pass. Register everything before sharing the
// registry between goroutines.
type RelationRegistry struct {
	checks map[relationKey]RelationCheck
}

// NewRelationRegistry creates an empty RelationRegistry.
func NewRelationRegistry() *RelationRegistry {
	return &RelationRegistry{checks: make(map[relationKey]RelationCheck)}
}

// Register sets the check for the given pair.
func (r *RelationRegistry) Register(categoryID, relatedID string, check RelationCheck) {
	r.checks[relationKey{categoryID, relatedID}] = check
}

// Get returns the check for the pair, or a check that always passes.
func (r *RelationRegistry) Get(categoryID, relatedID string) RelationCheck {
	if r != nil {
		if c, ok := r.checks[relationKey{categoryID, relatedID}]; ok {
			return c
		}
	}
	return passRelation
}

var passRelation = RelationCheckFunc(func(context.Context, *domain.DocumentRecord, string, string) ([]string, []string) {
	return nil, nil
})
