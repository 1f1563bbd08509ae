package rules

import (
	"errors"
	"fmt"
)

// ErrUnknownRule is matched by every UnknownRuleError.
var ErrUnknownRule = errors.New("unknown rule")

// UnknownRuleError is returned when an excluded, included or explained
// rule id is not in the registry.
type UnknownRuleError struct {
	ID         string
	Suggestion string // closest registered id, if any is close enough
}

func (e *UnknownRuleError) Error() string {
	if e.Suggestion != "" {
		return fmt.Sprintf("unknown rule %q (did you mean %q?)", e.ID, e.Suggestion)
	}
	return fmt.Sprintf("unknown rule %q", e.ID)
}

func (e *UnknownRuleError) Unwrap() error {
	return ErrUnknownRule
}

// closestMatch returns the option within edit distance 3 of input.
func closestMatch(input string, options []string) (string, bool) {
	const maxDistance = 3

	best := ""
	bestDist := maxDistance + 1
	for _, opt := range options {
		if d := levenshtein(input, opt); d < bestDist {
			best, bestDist = opt, d
		}
	}
	return best, bestDist <= maxDistance
}

func levenshtein(s1, s2 string) int {
	if s1 == s2 {
		return 0
	}
	if len(s1) == 0 {
		return len(s2)
	}
	if len(s2) == 0 {
		return len(s1)
	}

	prev := make([]int, len(s2)+1)
	curr := make([]int, len(s2)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(s1); i++ {
		curr[0] = i
		for j := 1; j <= len(s2); j++ {
			cost := 1
			if s1[i-1] == s2[j-1] {
				cost = 0
			}
			curr[j] = min(curr[j-1]+1, prev[j]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(s2)]
}
