package framework

import (
	"bytes"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
)

func makeResults(kinds ...OutcomeKind) Results {
	var r Results
	for i, k := range kinds {
		r.Tests = append(r.Tests, TestResult{
			TestID:  TestID{Path: []string{"main", string(rune('a' + i))}},
			Outcome: Outcome{Kind: k},
		})
	}
	return r
}

func TestStrictPolicy(t *testing.T) {
	p := StrictPolicy()
	assert.False(t, p.IsQuorum())
	assert.True(t, p.Satisfied(makeResults(Pass, Pass, Skipped)))
	assert.False(t, p.Satisfied(makeResults(Pass, Fail)))
	assert.False(t, p.Satisfied(makeResults(Pass, Error)))
}

func TestStrictPolicyRequiresSomethingToHaveRun(t *testing.T) {
	assert.False(t, StrictPolicy().Satisfied(Results{}))
	assert.False(t, StrictPolicy().Satisfied(makeResults(Skipped, Skipped)))
}

func result(kind OutcomeKind, path ...string) TestResult {
	return TestResult{TestID: TestID{Path: path}, Outcome: Outcome{Kind: kind}}
}

func TestQuorumPolicyCountsGroups(t *testing.T) {
	r := Results{Tests: []TestResult{
		result(Pass, "setup", "admin login"),
		result(Pass, "main", "vacations", "list"),
		result(Skipped, "main", "vacations", "approve"),
		result(Pass, "main", "attendance", "list"),
		result(Pass, "security", "unauthenticated", "GET vacations with credential"),
		result(Pass, "security", "unauthenticated", "GET attendance with credential"),
		result(Fail, "security", "unauthenticated", "GET vacations without credential"),
		result(Skipped, "security", "non-admin", "GET vacations as non-admin"),
	}}

	passed, total := r.Groups()
	assert.Equal(t, 2, passed)
	assert.Equal(t, 3, total)
	assert.Equal(t, 5, r.Passed())

	assert.True(t, QuorumPolicy(2).Satisfied(r))
	assert.False(t, QuorumPolicy(3).Satisfied(r))
	assert.True(t, QuorumPolicy(3).IsQuorum())
	assert.Equal(t, "quorum (at least 3 test groups passed)", QuorumPolicy(3).String())
}

func TestAbortedRunIsNeverOK(t *testing.T) {
	r := makeResults(Pass, Pass)
	r.Aborted = true
	assert.False(t, r.OK(StrictPolicy()))
	assert.False(t, r.OK(QuorumPolicy(0)))
}

func TestPrintResults(t *testing.T) {
	color.NoColor = true
	r := makeResults(Pass, Fail, Skipped)
	r.Tests[1].Outcome.Message = "expected 403, got 401"

	var buf bytes.Buffer
	PrintResults(&buf, r, StrictPolicy())
	out := buf.String()

	assert.Contains(t, out, "main/a  PASS\n")
	assert.Contains(t, out, "main/b  FAIL\n  expected 403, got 401\n")
	assert.Contains(t, out, "main/c  SKIP\n")
	assert.Contains(t, out, "1/2 tests passed (1 skipped)")
	assert.Contains(t, out, "was not met")
	assert.NotContains(t, out, "test groups passed\n")
}

func TestPrintResultsShowsGroupsForQuorum(t *testing.T) {
	color.NoColor = true
	r := Results{Tests: []TestResult{
		result(Pass, "main", "attendance", "list"),
		result(Fail, "security", "error handling", "nonexistent team"),
	}}

	var buf bytes.Buffer
	PrintResults(&buf, r, QuorumPolicy(1))
	assert.Contains(t, buf.String(), "1/2 test groups passed\n")
	assert.Contains(t, buf.String(), "Success policy quorum (at least 1 test groups passed) was met")
}
