package rules

import (
	"errors"
	"slices"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"squawk/internal/ast"
	"squawk/internal/model"
)

func TestDefault_ConcurrentFirstAccess(t *testing.T) {
	const n = 16
	got := make([]*Registry, n)

	var wg sync.WaitGroup
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got[i] = Default()
		}()
	}
	wg.Wait()

	for _, r := range got {
		assert.Same(t, got[0], r)
	}
}

func TestRegistry_ListSortedByID(t *testing.T) {
	infos := List()
	require.NotEmpty(t, infos)

	ids := make([]string, len(infos))
	for i, info := range infos {
		ids[i] = info.ID
	}
	assert.True(t, slices.IsSorted(ids))
	assert.Equal(t, Default().IDs(), ids)
	assert.Contains(t, ids, "require-concurrent-index-creation")
	assert.Contains(t, ids, "ban-drop-database")
	assert.Contains(t, ids, "disallow-rename-column")
	assert.Contains(t, ids, "require-not-valid-for-new-constraint")
	assert.Contains(t, ids, "adding-field-with-default")
}

func TestRegistry_Get(t *testing.T) {
	r := Default()

	rule, err := r.Get("ban-drop-database")
	require.NoError(t, err)
	assert.Equal(t, model.SeverityFatal, rule.Severity)

	_, err = r.Get("ban-drop-databse")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownRule))

	var unknown *UnknownRuleError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "ban-drop-databse", unknown.ID)
	assert.Equal(t, "ban-drop-database", unknown.Suggestion)
	assert.Contains(t, err.Error(), `did you mean "ban-drop-database"`)

	_, err = r.Get("not-a-real-rule")
	require.ErrorAs(t, err, &unknown)
	assert.Empty(t, unknown.Suggestion)
	assert.Equal(t, `unknown rule "not-a-real-rule"`, err.Error())
}

func TestRegistry_Explain(t *testing.T) {
	text, err := Explain("disallow-rename-column")
	require.NoError(t, err)
	assert.Contains(t, text, "disallow-rename-column: Do not rename columns")
	assert.Contains(t, text, "    ALTER TABLE users RENAME COLUMN name TO full_name;")

	_, err = Explain("nope")
	assert.ErrorIs(t, err, ErrUnknownRule)
}

func TestNewRegistry(t *testing.T) {
	noop := func([]ast.Statement, *Scan) []model.Violation { return nil }

	_, err := NewRegistry(Rule{ID: "a", Check: noop}, Rule{ID: "a", Check: noop})
	assert.Error(t, err)

	_, err = NewRegistry(Rule{ID: "a"})
	assert.Error(t, err)

	r, err := NewRegistry(Rule{ID: "b", Check: noop}, Rule{ID: "a", Check: noop})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, r.IDs())

	_, ok := r.Lookup("b")
	assert.True(t, ok)
}

func TestLevenshtein(t *testing.T) {
	assert.Equal(t, 0, levenshtein("abc", "abc"))
	assert.Equal(t, 3, levenshtein("", "abc"))
	assert.Equal(t, 1, levenshtein("abc", "abd"))
	assert.Equal(t, 3, levenshtein("kitten", "sitting"))
}
