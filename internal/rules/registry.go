package rules

import (
	"fmt"
	"slices"
	"strings"
	"sync"
)

// Registry is an immutable catalog of rules keyed by id. It is never
// modified after construction, so it is shared across goroutines
// without locking.
type Registry struct {
	byID    map[string]Rule
	ordered []Rule // sorted by id
}

// NewRegistry builds a registry from rules. Ids must be unique.
func NewRegistry(rules ...Rule) (*Registry, error) {
	r := &Registry{byID: make(map[string]Rule, len(rules))}
	for _, rule := range rules {
		if rule.ID == "" || rule.Check == nil {
			return nil, fmt.Errorf("rule %q: missing id or check", rule.ID)
		}
		if _, dup := r.byID[rule.ID]; dup {
			return nil, fmt.Errorf("rule %q registered twice", rule.ID)
		}
		r.byID[rule.ID] = rule
		r.ordered = append(r.ordered, rule)
	}
	slices.SortFunc(r.ordered, func(a, b Rule) int { return strings.Compare(a.ID, b.ID) })
	return r, nil
}

var defaultRegistry = sync.OnceValue(func() *Registry {
	r, err := NewRegistry(builtin()...)
	if err != nil {
		panic(err)
	}
	return r
})

// Default returns the process-wide registry of built-in rules. It is
// built on first use; concurrent first calls all observe the same value.
func Default() *Registry {
	return defaultRegistry()
}

// Lookup returns the rule with the given id.
func (r *Registry) Lookup(id string) (Rule, bool) {
	rule, ok := r.byID[id]
	return rule, ok
}

// Get returns the rule with the given id or an *UnknownRuleError.
func (r *Registry) Get(id string) (Rule, error) {
	if rule, ok := r.byID[id]; ok {
		return rule, nil
	}
	err := &UnknownRuleError{ID: id}
	if s, ok := closestMatch(id, r.IDs()); ok {
		err.Suggestion = s
	}
	return Rule{}, err
}

// Rules returns every rule sorted by id.
func (r *Registry) Rules() []Rule {
	return slices.Clone(r.ordered)
}

// IDs returns every rule id, sorted.
func (r *Registry) IDs() []string {
	ids := make([]string, len(r.ordered))
	for i, rule := range r.ordered {
		ids[i] = rule.ID
	}
	return ids
}

// List returns id and title of every rule, sorted by id.
func (r *Registry) List() []Info {
	infos := make([]Info, len(r.ordered))
	for i, rule := range r.ordered {
		infos[i] = rule.Info()
	}
	return infos
}

// Explain returns the long description of a rule.
func (r *Registry) Explain(id string) (string, error) {
	rule, err := r.Get(id)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s\n\n%s\n", rule.ID, rule.Title, rule.Explanation)
	if rule.BadExample != "" {
		fmt.Fprintf(&b, "\nInstead of:\n\n%s\n", indent(rule.BadExample))
	}
	if rule.GoodExample != "" {
		fmt.Fprintf(&b, "\nUse:\n\n%s\n", indent(rule.GoodExample))
	}
	return b.String(), nil
}

// List returns the built-in rules, sorted by id.
func List() []Info {
	return Default().List()
}

// Explain describes a built-in rule.
func Explain(id string) (string, error) {
	return Default().Explain(id)
}

func indent(s string) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	for i, l := range lines {
		lines[i] = "    " + l
	}
	return strings.Join(lines, "\n")
}

// builtin enumerates every rule shipped with squawk.
func builtin() []Rule {
	return []Rule{
		requireConcurrentIndexCreation,
		requireConcurrentIndexDeletion,
		banDropDatabase,
		banDropTable,
		banDropColumn,
		banTruncate,
		disallowRenameColumn,
		changingColumnType,
		addingFieldWithDefault,
		addingNotNullableField,
		requireNotValidForNewConstraint,
		disallowUniqueConstraint,
		banUnmatchedTransactionEnd,
		banNestedTransaction,
		banUnboundedDML,
	}
}
