// Package catalog holds the immutable, versioned rule catalog: document category
// definitions and the per-form base, schedule and international requirement tables.
// A Catalog is built once by Load and never mutated afterwards, so it can be shared
// freely between goroutines.
package catalog

import (
	_ "embed"
	"fmt"
	"sort"

	"taxdocs/internal/condition"
	"taxdocs/internal/domain"
)

//go:embed default_catalog.yaml
var defaultCatalogYAML []byte

// ConditionBlock is one named entry of a base requirement's conditions block.
// Blocks with Issues are kept so they can be reported, but never applied.
type ConditionBlock struct {
	Name         string
	Trigger      string
	Expression   condition.Expression
	RequiredDocs []domain.DocumentRequirement
	Issues       []string
}

// Applicable reports whether the block is well-formed enough to evaluate.
func (b *ConditionBlock) Applicable() bool {
	return len(b.Issues) == 0
}

// BaseEntry is one base requirement of a form. Either Requirement is set
// (unconditional) or Conditions holds the ordered condition blocks.
type BaseEntry struct {
	Requirement   *domain.DocumentRequirement
	HasConditions bool
	Conditions    []ConditionBlock
}

// ConditionalRequirement is a single requirement appended when Flag is set.
type ConditionalRequirement struct {
	Flag        string                     `yaml:"flag"`
	Requirement domain.DocumentRequirement `yaml:"requirement"`
}

// Schedule is a tax schedule whose documents are added when any of its flags is set.
type Schedule struct {
	Name        string                       `yaml:"name"`
	Forms       []string                     `yaml:"forms"`
	Flags       []string                     `yaml:"flags"`
	Required    []domain.DocumentRequirement `yaml:"required"`
	Optional    []domain.DocumentRequirement `yaml:"optional"`
	Conditional []ConditionalRequirement     `yaml:"conditional"`
}

// AppliesTo reports whether the schedule is attached to formType. No forms means every form.
func (s *Schedule) AppliesTo(formType string) bool {
	return appliesTo(s.Forms, formType)
}

// Threshold decides whether the international section is considered at all.
type Threshold struct {
	Flags          []string `yaml:"flags"`
	ValueField     string   `yaml:"value_field"`
	ValueThreshold float64  `yaml:"value_threshold"`
}

// InternationalSet is a foreign-reporting requirement set gated by its own flag.
type InternationalSet struct {
	Name     string                       `yaml:"name"`
	Flag     string                       `yaml:"flag"`
	Required []domain.DocumentRequirement `yaml:"required"`
	Optional []domain.DocumentRequirement `yaml:"optional"`
}

// International holds the foreign-reporting additions.
type International struct {
	Forms     []string           `yaml:"forms"`
	Threshold Threshold          `yaml:"threshold"`
	Sets      []InternationalSet `yaml:"sets"`
}

// AppliesTo reports whether the international section is attached to formType.
func (i *International) AppliesTo(formType string) bool {
	return appliesTo(i.Forms, formType)
}

func appliesTo(forms []string, formType string) bool {
	if len(forms) == 0 {
		return true
	}
	for _, f := range forms {
		if f == formType {
			return true
		}
	}
	return false
}

// Catalog is the loaded rule catalog.
type Catalog struct {
	version       string
	categories    map[string]*domain.DocumentCategory
	order         []string
	forms         map[string][]BaseEntry
	schedules     []Schedule
	international International
}

// Default returns the catalog compiled from the embedded default_catalog.yaml.
func Default() (*Catalog, error) {
	return Load(defaultCatalogYAML)
}

// DefaultYAML returns a copy of the embedded default catalog source.
func DefaultYAML() []byte {
	out := make([]byte, len(defaultCatalogYAML))
	copy(out, defaultCatalogYAML)
	return out
}

// Version returns the catalog version string.
func (c *Catalog) Version() string { return c.version }

// Category returns the category with the given id as declared (not inherited).
func (c *Catalog) Category(id string) (*domain.DocumentCategory, bool) {
	cat, ok := c.categories[id]
	return cat, ok
}

// CategoryIDs returns every category id in declaration order.
func (c *Catalog) CategoryIDs() []string {
	out := make([]string, len(c.order))
	copy(out, c.order)
	return out
}

// Categories returns every category in declaration order.
func (c *Catalog) Categories() []*domain.DocumentCategory {
	out := make([]*domain.DocumentCategory, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.categories[id])
	}
	return out
}

// HasForm reports whether the catalog has base requirements for formType.
func (c *Catalog) HasForm(formType string) bool {
	_, ok := c.forms[formType]
	return ok
}

// FormTypes returns every form with base requirements, sorted.
func (c *Catalog) FormTypes() []string {
	return domain.SortedKeys(c.forms)
}

// BaseEntries returns the base requirement entries for formType.
func (c *Catalog) BaseEntries(formType string) []BaseEntry {
	return c.forms[formType]
}

// Schedules returns the schedule tables in declaration order.
func (c *Catalog) Schedules() []Schedule {
	return c.schedules
}

// International returns the foreign-reporting tables.
func (c *Catalog) International() International {
	return c.international
}

// validateGraph checks parent and related references and rejects parent cycles.
func (c *Catalog) validateGraph() error {
	for _, id := range c.order {
		cat := c.categories[id]
		if cat.Parent != "" {
			if _, ok := c.categories[cat.Parent]; !ok {
				return fmt.Errorf("%w: category %q has unknown parent %q", domain.ErrConfiguration, id, cat.Parent)
			}
		}
		for _, rel := range cat.Related {
			if _, ok := c.categories[rel]; !ok {
				return fmt.Errorf("%w: category %q is related to unknown category %q", domain.ErrConfiguration, id, rel)
			}
		}
	}

	for _, id := range c.order {
		visited := map[string]bool{}
		for cur := id; cur != ""; cur = c.categories[cur].Parent {
			if visited[cur] {
				return fmt.Errorf("%w: cyclic category inheritance at %q", domain.ErrConfiguration, cur)
			}
			visited[cur] = true
		}
	}
	return nil
}

// ConditionIssues returns every malformed condition block for formType as
// human-readable strings, in entry order.
func (c *Catalog) ConditionIssues(formType string) []string {
	var issues []string
	for i, entry := range c.forms[formType] {
		for _, block := range entry.Conditions {
			for _, issue := range block.Issues {
				issues = append(issues, fmt.Sprintf("%s base entry %d, condition %q: %s", formType, i, block.Name, issue))
			}
		}
	}
	return issues
}

// sortedRelated returns a sorted copy of ids.
func sortedRelated(ids []string) []string {
	out := make([]string, len(ids))
	copy(out, ids)
	sort.Strings(out)
	return out
}
