package category_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taxdocs/internal/catalog"
	"taxdocs/internal/category"
	"taxdocs/internal/domain"
)

type mapSource map[string]*domain.DocumentCategory

func (m mapSource) Category(id string) (*domain.DocumentCategory, bool) {
	c, ok := m[id]
	return c, ok
}

func int64Ptr(v int64) *int64 { return &v }

func testSource() mapSource {
	return mapSource{
		"root": {
			ID:              "root",
			RequiredFields:  []string{"tax_year"},
			FormatChecks:    []domain.FormatTag{domain.FormatPDF},
			MaxSize:         int64Ptr(100),
			ValidationRules: []domain.RuleDescriptor{{Type: "required", Field: "tax_year"}},
			Metadata:        map[string]any{"retention_years": 3, "group": "base"},
		},
		"mid": {
			ID:             "mid",
			Parent:         "root",
			RequiredFields: []string{"payer_tin", "tax_year"},
			Metadata:       map[string]any{"group": "income"},
			Related:        []string{"zeta", "alpha"},
		},
		"leaf": {
			ID:              "leaf",
			Parent:          "mid",
			RequiredFields:  []string{"wages"},
			FormatChecks:    []domain.FormatTag{domain.FormatImage},
			MaxSize:         int64Ptr(50),
			ValidationRules: []domain.RuleDescriptor{{Type: "numeric_range", Field: "wages", Params: map[string]any{"min": 0}}},
			Metadata:        map[string]any{"description": "leaf"},
		},
	}
}

func TestEffectiveRules_Merge(t *testing.T) {
	r := category.NewResolver(testSource())

	leaf, err := r.EffectiveRules("leaf")
	require.NoError(t, err)

	assert.Equal(t, []string{"tax_year", "payer_tin", "tax_year", "wages"}, leaf.RequiredFields)
	assert.Equal(t, []domain.FormatTag{domain.FormatPDF, domain.FormatImage}, leaf.FormatChecks)
	require.Len(t, leaf.ValidationRules, 2)
	assert.Equal(t, "required", leaf.ValidationRules[0].Type)
	assert.Equal(t, "numeric_range", leaf.ValidationRules[1].Type)
	require.NotNil(t, leaf.MaxSize)
	assert.Equal(t, int64(50), *leaf.MaxSize)
	assert.Equal(t, map[string]any{"retention_years": 3, "group": "income", "description": "leaf"}, leaf.Metadata)

	mid, err := r.EffectiveRules("mid")
	require.NoError(t, err)
	require.NotNil(t, mid.MaxSize)
	assert.Equal(t, int64(100), *mid.MaxSize, "max_size falls back to the parent")
}

func TestEffectiveRules_DoesNotMutateSource(t *testing.T) {
	src := testSource()
	r := category.NewResolver(src)

	leaf, err := r.EffectiveRules("leaf")
	require.NoError(t, err)
	leaf.Metadata["description"] = "changed"
	leaf.RequiredFields[0] = "changed"
	*leaf.MaxSize = 1

	assert.Equal(t, "leaf", src["leaf"].Metadata["description"])
	assert.Equal(t, []string{"tax_year"}, src["root"].RequiredFields)
	assert.Equal(t, int64(50), *src["leaf"].MaxSize)
	assert.Equal(t, map[string]any{"group": "income"}, src["mid"].Metadata)
}

func TestEffectiveRules_NestedValuesAreCopied(t *testing.T) {
	src := testSource()
	src["root"].Metadata["deadlines"] = map[string]any{"file": "2026-04-15"}
	src["leaf"].Metadata["required"] = []any{"W2", map[string]any{"type": "1099_INT"}}
	r := category.NewResolver(src)

	leaf, err := r.EffectiveRules("leaf")
	require.NoError(t, err)
	leaf.Metadata["deadlines"].(map[string]any)["file"] = "changed"
	leaf.Metadata["required"].([]any)[0] = "changed"
	leaf.Metadata["required"].([]any)[1].(map[string]any)["type"] = "changed"
	leaf.ValidationRules[1].Params["min"] = 100

	assert.Equal(t, "2026-04-15", src["root"].Metadata["deadlines"].(map[string]any)["file"])
	assert.Equal(t, []any{"W2", map[string]any{"type": "1099_INT"}}, src["leaf"].Metadata["required"])
	assert.Equal(t, 0, src["leaf"].ValidationRules[0].Params["min"])

	again, err := r.EffectiveMetadata("leaf")
	require.NoError(t, err)
	assert.Equal(t, "2026-04-15", again["deadlines"].(map[string]any)["file"])
}

func TestEffectiveRules_Cycle(t *testing.T) {
	src := mapSource{
		"a": {ID: "a", Parent: "b"},
		"b": {ID: "b", Parent: "c"},
		"c": {ID: "c", Parent: "a"},
	}
	_, err := category.NewResolver(src).EffectiveRules("a")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrConfiguration)
	assert.Contains(t, err.Error(), "cyclic category inheritance")
}

func TestEffectiveRules_Unknown(t *testing.T) {
	r := category.NewResolver(testSource())

	_, err := r.EffectiveRules("ghost")
	assert.ErrorIs(t, err, domain.ErrCategoryNotFound)

	_, err = category.NewResolver(mapSource{"a": {ID: "a", Parent: "ghost"}}).EffectiveRules("a")
	assert.ErrorIs(t, err, domain.ErrConfiguration)
}

func TestRelated_NotInherited(t *testing.T) {
	r := category.NewResolver(testSource())

	rel, err := r.Related("mid")
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "zeta"}, rel)

	rel, err = r.Related("leaf")
	require.NoError(t, err)
	assert.Empty(t, rel)

	_, err = r.Related("ghost")
	assert.ErrorIs(t, err, domain.ErrCategoryNotFound)
}

func TestEffectiveRules_RequiredFieldsAreSupersetOfParent(t *testing.T) {
	c, err := catalog.Default()
	require.NoError(t, err)
	r := category.NewResolver(c)

	for _, cat := range c.Categories() {
		if cat.Parent == "" {
			continue
		}
		child, err := r.EffectiveRules(cat.ID)
		require.NoError(t, err, cat.ID)
		parent, err := r.EffectiveRules(cat.Parent)
		require.NoError(t, err, cat.Parent)

		counts := map[string]int{}
		for _, f := range child.RequiredFields {
			counts[f]++
		}
		for _, f := range parent.RequiredFields {
			counts[f]--
			assert.GreaterOrEqual(t, counts[f], 0, "%s lost parent field %s", cat.ID, f)
		}
	}
}

func TestEffectiveMetadata_DefaultCatalog(t *testing.T) {
	c, err := catalog.Default()
	require.NoError(t, err)

	md, err := category.NewResolver(c).EffectiveMetadata("W2")
	require.NoError(t, err)
	assert.Equal(t, "income", md["group"])
	assert.Equal(t, 3, md["retention_years"])
	assert.Contains(t, md, "deadlines")
}

func TestKnown(t *testing.T) {
	r := category.NewResolver(testSource())
	assert.True(t, r.Known("mid"))
	assert.False(t, r.Known("ghost"))
}
