package harness

import (
	"fmt"
	"reflect"
	"slices"
	"strings"

	"github.com/shopspring/decimal"
)

// AssertionError is returned when an assertion fails.
// It includes the committed actions to help debug the failure.
type AssertionError struct {
	Type     string   // Assertion type for categorization
	Expected string   // Human-readable expected outcome
	Actual   string   // Human-readable actual outcome
	Commits  []Commit // Commits observed during the flow
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	fmt.Fprintf(&buf, "\nCommits:\n")
	for i, c := range e.Commits {
		fmt.Fprintf(&buf, "  [%d] %s v%d lines=%d orders=%d\n", i+1, c.Action, c.Version, c.CartLines, c.Orders)
	}
	return buf.String()
}

// assertTraceContains checks that the action kind was committed at least once.
func assertTraceContains(commits []Commit, assertion Assertion) error {
	for _, c := range commits {
		if c.Action == assertion.Action {
			return nil
		}
	}
	return &AssertionError{
		Type:     AssertTraceContains,
		Expected: fmt.Sprintf("commit of %s", assertion.Action),
		Actual:   "not found in trace",
		Commits:  commits,
	}
}

// assertTraceOrder checks that the actions were committed in the given
// relative order. Other commits may appear in between, and a kind may be
// listed more than once.
func assertTraceOrder(commits []Commit, assertion Assertion) error {
	next := 0
	for _, c := range commits {
		if next < len(assertion.Actions) && c.Action == assertion.Actions[next] {
			next++
		}
	}
	if next == len(assertion.Actions) {
		return nil
	}
	return &AssertionError{
		Type:     AssertTraceOrder,
		Expected: fmt.Sprintf("actions in order: %v", assertion.Actions),
		Actual:   fmt.Sprintf("matched %d of %d, stuck at %s", next, len(assertion.Actions), assertion.Actions[next]),
		Commits:  commits,
	}
}

// assertTraceCount checks that the action kind was committed exactly Count times.
func assertTraceCount(commits []Commit, assertion Assertion) error {
	count := 0
	for _, c := range commits {
		if c.Action == assertion.Action {
			count++
		}
	}
	if count != assertion.Count {
		return &AssertionError{
			Type:     AssertTraceCount,
			Expected: fmt.Sprintf("%d occurrences of %s", assertion.Count, assertion.Action),
			Actual:   fmt.Sprintf("%d occurrences", count),
			Commits:  commits,
		}
	}
	return nil
}

// assertFinalState checks the expected keys against the final state
// projection (subset match).
func assertFinalState(state map[string]any, commits []Commit, assertion Assertion) error {
	keys := make([]string, 0, len(assertion.Expect))
	for k := range assertion.Expect {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	var mismatches []string
	for _, k := range keys {
		actual, ok := state[k]
		if !ok {
			mismatches = append(mismatches, fmt.Sprintf("%s: unknown state key", k))
			continue
		}
		if !valuesEqual(actual, assertion.Expect[k]) {
			mismatches = append(mismatches, fmt.Sprintf("%s: want %v, got %v", k, assertion.Expect[k], actual))
		}
	}
	if len(mismatches) == 0 {
		return nil
	}
	return &AssertionError{
		Type:     AssertFinalState,
		Expected: fmt.Sprintf("%v", assertion.Expect),
		Actual:   strings.Join(mismatches, "; "),
		Commits:  commits,
	}
}

// valuesEqual compares a state value with a value decoded from YAML.
//
// YAML gives ints, floats, bools, strings and []any; the state holds ints,
// strings, bools and []string. Money is compared numerically so that an
// unquoted 108.00 in YAML matches "108.00".
func valuesEqual(actual, expected any) bool {
	if actual == nil || expected == nil {
		return actual == nil && expected == nil
	}
	if reflect.DeepEqual(actual, expected) {
		return true
	}

	if list, ok := expected.([]any); ok {
		got, ok := actual.([]string)
		if !ok || len(got) != len(list) {
			return false
		}
		for i := range list {
			if fmt.Sprint(list[i]) != got[i] {
				return false
			}
		}
		return true
	}

	a, e := fmt.Sprint(actual), fmt.Sprint(expected)
	if a == e {
		return true
	}
	ad, errA := decimal.NewFromString(a)
	ed, errE := decimal.NewFromString(e)
	return errA == nil && errE == nil && ad.Equal(ed)
}

// EvaluateAssertions evaluates all assertions against the result.
// Returns a slice of error messages for failed assertions.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var errors []string
	commits := result.Commits()

	for i, assertion := range assertions {
		var err error

		switch assertion.Type {
		case AssertTraceContains:
			err = assertTraceContains(commits, assertion)
		case AssertTraceOrder:
			err = assertTraceOrder(commits, assertion)
		case AssertTraceCount:
			err = assertTraceCount(commits, assertion)
		case AssertFinalState:
			err = assertFinalState(result.State, commits, assertion)
		default:
			err = fmt.Errorf("assertion[%d]: unknown assertion type %q", i, assertion.Type)
		}

		if err != nil {
			errors = append(errors, err.Error())
		}
	}
	return errors
}
