package validator

import "sort"

// Registry maps rule types to Rule implementations.
type Registry struct {
	rules map[string]Rule
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{rules: make(map[string]Rule)}
}

// NewBuiltinRegistry creates a Registry holding every built-in rule type.
func NewBuiltinRegistry() *Registry {
	r := NewRegistry()
	for _, rule := range BuiltinRules() {
		r.Register(rule)
	}
	return r
}

// Register adds a rule to the registry, replacing any rule of the same type.
func (r *Registry) Register(rule Rule) {
	r.rules[rule.RuleType()] = rule
}

// Get returns the rule for a given type, or nil if not found.
func (r *Registry) Get(ruleType string) Rule {
	return r.rules[ruleType]
}

// Types returns every registered rule type, sorted.
func (r *Registry) Types() []string {
	out := make([]string, 0, len(r.rules))
	for t := range r.rules {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}
