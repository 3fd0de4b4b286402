package catalog

import (
	"fmt"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"taxdocs/internal/condition"
	"taxdocs/internal/domain"
)

type rawCatalog struct {
	Version       string                    `yaml:"version"`
	Categories    []domain.DocumentCategory `yaml:"categories"`
	Forms         map[string]rawForm        `yaml:"forms"`
	Schedules     []Schedule                `yaml:"schedules"`
	International International             `yaml:"international"`
}

type rawForm struct {
	Base []rawBaseEntry `yaml:"base"`
}

type rawBaseEntry struct {
	Type       string          `yaml:"type"`
	Priority   domain.Priority `yaml:"priority"`
	Metadata   map[string]any  `yaml:"metadata"`
	Conditions yaml.Node       `yaml:"conditions"`
}

// Default international threshold: any foreign flag, or account value above 10000.
var defaultThreshold = Threshold{
	Flags:          []string{"has_foreign_accounts", "has_foreign_income", "has_foreign_assets"},
	ValueField:     "foreign_account_value",
	ValueThreshold: 10000,
}

// Load parses a YAML catalog and validates it. Any structural problem is
// returned wrapped in domain.ErrConfiguration and should abort startup.
func Load(data []byte) (*Catalog, error) {
	var raw rawCatalog
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: decoding catalog: %v", domain.ErrConfiguration, err)
	}

	c := &Catalog{
		version:    raw.Version,
		categories: make(map[string]*domain.DocumentCategory, len(raw.Categories)),
		forms:      make(map[string][]BaseEntry, len(raw.Forms)),
	}

	for i := range raw.Categories {
		cat := raw.Categories[i]
		if err := normalizeCategory(&cat); err != nil {
			return nil, err
		}
		if _, dup := c.categories[cat.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate category %q", domain.ErrConfiguration, cat.ID)
		}
		c.categories[cat.ID] = &cat
		c.order = append(c.order, cat.ID)
	}
	if err := c.validateGraph(); err != nil {
		return nil, err
	}

	for formType, form := range raw.Forms {
		entries := make([]BaseEntry, 0, len(form.Base))
		for i := range form.Base {
			entry, err := buildBaseEntry(formType, i, &form.Base[i])
			if err != nil {
				return nil, err
			}
			entries = append(entries, entry)
		}
		c.forms[formType] = entries
	}

	for i := range raw.Schedules {
		s := &raw.Schedules[i]
		if s.Name == "" {
			return nil, fmt.Errorf("%w: schedule %d has no name", domain.ErrConfiguration, i)
		}
		if err := normalizeRequirements("schedule "+s.Name, s.Required); err != nil {
			return nil, err
		}
		if err := normalizeRequirements("schedule "+s.Name, s.Optional); err != nil {
			return nil, err
		}
		for j := range s.Conditional {
			cr := &s.Conditional[j]
			if cr.Flag == "" {
				return nil, fmt.Errorf("%w: schedule %s conditional %d has no flag", domain.ErrConfiguration, s.Name, j)
			}
			if err := normalizeRequirement("schedule "+s.Name, &cr.Requirement); err != nil {
				return nil, err
			}
		}
	}
	c.schedules = raw.Schedules

	intl := raw.International
	if len(intl.Threshold.Flags) == 0 && intl.Threshold.ValueField == "" {
		intl.Threshold = defaultThreshold
	}
	for i := range intl.Sets {
		set := &intl.Sets[i]
		if set.Flag == "" {
			return nil, fmt.Errorf("%w: international set %q has no flag", domain.ErrConfiguration, set.Name)
		}
		if err := normalizeRequirements("international "+set.Name, set.Required); err != nil {
			return nil, err
		}
		if err := normalizeRequirements("international "+set.Name, set.Optional); err != nil {
			return nil, err
		}
	}
	c.international = intl

	return c, nil
}

func normalizeCategory(cat *domain.DocumentCategory) error {
	cat.ID = strings.TrimSpace(cat.ID)
	if cat.ID == "" {
		return fmt.Errorf("%w: category without id", domain.ErrConfiguration)
	}
	if cat.MaxSize != nil && *cat.MaxSize < 0 {
		return fmt.Errorf("%w: category %q has negative max_size", domain.ErrConfiguration, cat.ID)
	}
	for _, f := range cat.FormatChecks {
		if !f.Known() {
			return fmt.Errorf("%w: category %q has unknown format check %q", domain.ErrConfiguration, cat.ID, f)
		}
	}
	for i, r := range cat.ValidationRules {
		if r.Type == "" {
			return fmt.Errorf("%w: category %q validation rule %d has no type", domain.ErrConfiguration, cat.ID, i)
		}
		if pattern, ok := r.Params["pattern"].(string); ok && r.Type == "pattern" {
			if _, err := regexp.Compile(pattern); err != nil {
				return fmt.Errorf("%w: category %q rule on %s has invalid pattern: %v", domain.ErrConfiguration, cat.ID, r.Field, err)
			}
		}
	}
	if cat.Metadata == nil {
		cat.Metadata = map[string]any{}
	}
	for _, key := range []string{"required", "optional"} {
		if v, ok := cat.Metadata[key]; ok {
			if _, err := RequirementsFromValue(v); err != nil {
				return fmt.Errorf("%w: category %q metadata.%s: %v", domain.ErrConfiguration, cat.ID, key, err)
			}
		}
	}
	cat.Related = sortedRelated(cat.Related)
	return nil
}

func normalizeRequirements(owner string, reqs []domain.DocumentRequirement) error {
	for i := range reqs {
		if err := normalizeRequirement(owner, &reqs[i]); err != nil {
			return err
		}
	}
	return nil
}

func normalizeRequirement(owner string, r *domain.DocumentRequirement) error {
	if r.Type == "" {
		return fmt.Errorf("%w: %s has a requirement without type", domain.ErrConfiguration, owner)
	}
	if r.Priority == "" {
		r.Priority = domain.PriorityMedium
	}
	if !domain.ValidPriorities[r.Priority] {
		return fmt.Errorf("%w: %s requirement %q has invalid priority %q", domain.ErrConfiguration, owner, r.Type, r.Priority)
	}
	return nil
}

func buildBaseEntry(formType string, idx int, raw *rawBaseEntry) (BaseEntry, error) {
	owner := fmt.Sprintf("form %s base entry %d", formType, idx)
	if raw.Conditions.Kind == 0 {
		if raw.Type == "" {
			return BaseEntry{}, fmt.Errorf("%w: %s has neither type nor conditions", domain.ErrConfiguration, owner)
		}
		req := domain.DocumentRequirement{Type: raw.Type, Priority: raw.Priority, Metadata: raw.Metadata}
		if err := normalizeRequirement(owner, &req); err != nil {
			return BaseEntry{}, err
		}
		return BaseEntry{Requirement: &req}, nil
	}

	if raw.Conditions.Kind != yaml.MappingNode {
		return BaseEntry{}, fmt.Errorf("%w: %s conditions must be a mapping", domain.ErrConfiguration, owner)
	}

	entry := BaseEntry{HasConditions: true}
	nodes := raw.Conditions.Content
	for i := 0; i+1 < len(nodes); i += 2 {
		block, err := buildConditionBlock(owner, nodes[i].Value, nodes[i+1])
		if err != nil {
			return BaseEntry{}, err
		}
		entry.Conditions = append(entry.Conditions, block)
	}
	return entry, nil
}

// buildConditionBlock decodes one condition. Shape problems become Issues;
// a trigger that is present but unparseable fails the whole load.
func buildConditionBlock(owner, name string, node *yaml.Node) (ConditionBlock, error) {
	block := ConditionBlock{Name: name}
	if node.Kind != yaml.MappingNode {
		block.Issues = append(block.Issues, "condition must be a mapping with trigger and required_docs")
		return block, nil
	}

	var triggerNode, docsNode *yaml.Node
	for i := 0; i+1 < len(node.Content); i += 2 {
		switch node.Content[i].Value {
		case "trigger":
			triggerNode = node.Content[i+1]
		case "required_docs":
			docsNode = node.Content[i+1]
		}
	}

	if triggerNode == nil || strings.TrimSpace(triggerNode.Value) == "" {
		block.Issues = append(block.Issues, "missing trigger")
	} else {
		block.Trigger = triggerNode.Value
		expr, err := condition.Parse(block.Trigger)
		if err != nil {
			return block, fmt.Errorf("%w: %s condition %q: %w", domain.ErrConfiguration, owner, name, err)
		}
		block.Expression = expr
	}

	switch {
	case docsNode == nil:
		block.Issues = append(block.Issues, "missing required_docs")
	case docsNode.Kind != yaml.SequenceNode:
		block.Issues = append(block.Issues, "required_docs must be a list")
	default:
		docs, err := decodeRequirementNodes(docsNode)
		if err != nil {
			block.Issues = append(block.Issues, err.Error())
			break
		}
		if err := normalizeRequirements(owner, docs); err != nil {
			return block, err
		}
		block.RequiredDocs = docs
	}
	return block, nil
}

// decodeRequirementNodes accepts list items that are either a bare type name or a requirement mapping.
func decodeRequirementNodes(seq *yaml.Node) ([]domain.DocumentRequirement, error) {
	out := make([]domain.DocumentRequirement, 0, len(seq.Content))
	for i, item := range seq.Content {
		if item.Kind != yaml.ScalarNode && item.Kind != yaml.MappingNode {
			return nil, fmt.Errorf("required_docs[%d] must be a type name or mapping", i)
		}
		var r domain.DocumentRequirement
		if err := item.Decode(&r); err != nil {
			return nil, fmt.Errorf("required_docs[%d]: %v", i, err)
		}
		out = append(out, r)
	}
	return out, nil
}

// RequirementsFromValue converts a generic metadata value (as decoded from YAML or
// JSON) into requirements. Accepted items are type-name strings or mappings with
// type, priority and metadata keys.
func RequirementsFromValue(v any) ([]domain.DocumentRequirement, error) {
	if v == nil {
		return nil, nil
	}
	items, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("expected a list, got %T", v)
	}
	out := make([]domain.DocumentRequirement, 0, len(items))
	for i, item := range items {
		switch t := item.(type) {
		case string:
			out = append(out, domain.DocumentRequirement{Type: t, Priority: domain.PriorityMedium})
		case map[string]any:
			r := domain.DocumentRequirement{Priority: domain.PriorityMedium}
			typ, _ := t["type"].(string)
			if typ == "" {
				return nil, fmt.Errorf("item %d has no type", i)
			}
			r.Type = typ
			if p, ok := t["priority"].(string); ok && p != "" {
				r.Priority = domain.Priority(p)
				if !domain.ValidPriorities[r.Priority] {
					return nil, fmt.Errorf("item %d has invalid priority %q", i, p)
				}
			}
			if md, ok := t["metadata"].(map[string]any); ok {
				r.Metadata = md
			}
			out = append(out, r)
		default:
			return nil, fmt.Errorf("item %d must be a type name or mapping, got %T", i, item)
		}
	}
	return out, nil
}
