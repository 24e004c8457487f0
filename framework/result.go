package framework

import (
	"fmt"
	"strings"
)

// OutcomeKind is the tag of an Outcome.
type OutcomeKind int

const (
	Pass OutcomeKind = iota
	Fail
	Error
	Skipped
)

func (k OutcomeKind) String() string {
	switch k {
	case Pass:
		return "PASS"
	case Fail:
		return "FAIL"
	case Error:
		return "ERROR"
	case Skipped:
		return "SKIP"
	default:
		return fmt.Sprintf("OutcomeKind(%d)", int(k))
	}
}

// Outcome is the result of a single test case. Message is empty for Pass; for Fail and Error it
// describes what went wrong, and for Skipped it is the reason the test did not run.
type Outcome struct {
	Kind    OutcomeKind
	Message string
}

func PassOutcome() Outcome                 { return Outcome{Kind: Pass} }
func FailOutcome(message string) Outcome   { return Outcome{Kind: Fail, Message: message} }
func ErrorOutcome(message string) Outcome  { return Outcome{Kind: Error, Message: message} }
func SkippedOutcome(reason string) Outcome { return Outcome{Kind: Skipped, Message: reason} }
func (o Outcome) Passed() bool             { return o.Kind == Pass }
func (o Outcome) Counted() bool            { return o.Kind != Skipped }

func (o Outcome) String() string {
	if o.Message == "" {
		return o.Kind.String()
	}
	return fmt.Sprintf("%s (%s)", o.Kind, o.Message)
}

type Results struct {
	Tests []TestResult

	// Aborted is set when a test in the setup phase called Abort. Everything after it was skipped,
	// and the run fails regardless of policy.
	Aborted     bool
	AbortReason string
}

type TestResult struct {
	TestID  TestID
	Outcome Outcome
	Errors  []error
}

func (r Results) Failures() []TestResult {
	var ret []TestResult
	for _, t := range r.Tests {
		if t.Outcome.Kind == Fail || t.Outcome.Kind == Error {
			ret = append(ret, t)
		}
	}
	return ret
}

// Passed returns the number of tests that passed.
func (r Results) Passed() int {
	n := 0
	for _, t := range r.Tests {
		if t.Outcome.Passed() {
			n++
		}
	}
	return n
}

// Groups counts test groups. A group is the first two elements of the path of every test that is
// nested at least three levels deep, such as "main/vacations". A group passed if at least one of
// its tests ran and all of those passed. Groups in which nothing ran are not counted.
func (r Results) Groups() (passed, total int) {
	failed := make(map[string]bool)
	for _, t := range r.Tests {
		if len(t.TestID.Path) < 3 || !t.Outcome.Counted() {
			continue
		}
		group := t.TestID.Path[0] + "/" + t.TestID.Path[1]
		failed[group] = failed[group] || !t.Outcome.Passed()
	}
	for _, f := range failed {
		if !f {
			passed++
		}
	}
	return passed, len(failed)
}

// Total returns the number of tests that ran, which excludes skipped tests.
func (r Results) Total() int {
	n := 0
	for _, t := range r.Tests {
		if t.Outcome.Counted() {
			n++
		}
	}
	return n
}

// OK applies the policy to the results.
func (r Results) OK(policy Policy) bool {
	if r.Aborted {
		return false
	}
	return policy.Satisfied(r)
}

type TestID struct {
	Path []string
}

func (t TestID) String() string {
	return strings.Join(t.Path, "/")
}

// Phase returns the first element of the test path, which by convention is the phase name.
func (t TestID) Phase() string {
	if len(t.Path) == 0 {
		return ""
	}
	return t.Path[0]
}
