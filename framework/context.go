package framework

import (
	"errors"
	"fmt"
	"runtime/debug"
	"strings"
)

type environment struct {
	results    Results
	testLogger TestLogger
	filter     Filter
}

// Context is the framework-level state of a test or subtest. Domain-specific test APIs wrap it.
type Context struct {
	env         *environment
	id          TestID
	debugLogger CapturingLogger
	children    int
	failed      bool
	errored     bool
	skipped     bool
	skipReason  string
	errors      []error
	cleanups    []func()
}

// Run starts a test run. The action receives a root Context which is not itself a test; tests are
// created by calling Run on it.
func Run(
	filter Filter,
	testLogger TestLogger,
	action func(*Context),
) Results {
	if testLogger == nil {
		testLogger = nullTestLogger{}
	}
	env := &environment{
		filter:     filter,
		testLogger: testLogger,
	}
	c := &Context{env: env}
	c.run(action)
	return env.results
}

func (c *Context) run(action func(*Context)) {
	defer func() {
		if r := recover(); r != nil {
			if !c.skipped {
				var addError error
				if _, ok := r.(*Context); ok {
					if len(c.errors) == 0 {
						c.failed = true
						addError = errors.New("test failed with no failure message")
					}
				} else {
					c.errored = true
					addError = fmt.Errorf("unexpected panic in test: %+v\n%s", r, string(debug.Stack()))
				}
				if addError != nil {
					c.errors = append(c.errors, addError)
					c.env.testLogger.TestError(c.id, addError)
				}
			}
		}
		c.runCleanups()
		c.record()
	}()

	action(c)
}

// record adds this test to the results. Groups that only contained subtests and did not fail on
// their own are not recorded, so that every recorded result corresponds to one test case.
func (c *Context) record() {
	if len(c.id.Path) == 0 {
		return
	}
	if c.children > 0 && !c.failed && !c.errored {
		return
	}
	c.env.results.Tests = append(c.env.results.Tests, TestResult{
		TestID:  c.id,
		Outcome: c.Outcome(),
		Errors:  c.errors,
	})
}

func (c *Context) runCleanups() {
	for i := len(c.cleanups) - 1; i >= 0; i-- {
		func() {
			defer func() { _ = recover() }()
			c.cleanups[i]()
		}()
	}
	c.cleanups = nil
}

func (c *Context) ID() TestID {
	return c.id
}

// Outcome returns the outcome of the test so far.
func (c *Context) Outcome() Outcome {
	switch {
	case c.skipped:
		return SkippedOutcome(c.skipReason)
	case c.errored:
		return ErrorOutcome(joinErrors(c.errors))
	case c.failed:
		return FailOutcome(joinErrors(c.errors))
	default:
		return PassOutcome()
	}
}

// Run runs a subtest. Subtests run synchronously and in order.
//
// If an earlier test aborted the run, the subtest is recorded as skipped without running.
func (c *Context) Run(name string, action func(*Context)) {
	id := TestID{Path: append(append([]string(nil), c.id.Path...), name)}
	c.children++

	c.env.testLogger.TestStarted(id)
	if c.env.results.Aborted {
		c.skipWithoutRunning(id, "not run because setup failed")
		return
	}
	if c.env.filter != nil && !c.env.filter(id) {
		c.skipWithoutRunning(id, "excluded by filter parameters")
		return
	}
	c1 := &Context{
		id:  id,
		env: c.env,
	}
	c1.run(action)
	switch {
	case c1.skipped:
		c.env.testLogger.TestSkipped(id, c1.skipReason)
	case c1.children > 0 && c1.Outcome().Passed():
		// a group's passing subtests were already reported
	default:
		c.env.testLogger.TestFinished(id, c1.Outcome(), c1.debugLogger.Output())
	}
}

func (c *Context) skipWithoutRunning(id TestID, reason string) {
	c.env.testLogger.TestSkipped(id, reason)
	c.env.results.Tests = append(c.env.results.Tests, TestResult{TestID: id, Outcome: SkippedOutcome(reason)})
}

// Errorf records an assertion failure. It does not cause an immediate exit.
func (c *Context) Errorf(format string, args ...interface{}) {
	c.failed = true
	err := fmt.Errorf(format, args...)
	c.errors = append(c.errors, err)
	c.env.testLogger.TestError(c.id, reformatError(err))
}

// ErrorNow records an error that prevented the test from checking anything, such as a request
// that could not be sent, and exits the test. The outcome is Error rather than Fail.
func (c *Context) ErrorNow(err error) {
	c.errored = true
	c.errors = append(c.errors, err)
	c.env.testLogger.TestError(c.id, err)
	c.FailNow()
}

// Abort records a fatal error and marks the whole run as aborted: every test started after this
// one is skipped, and the run fails regardless of policy.
func (c *Context) Abort(err error) {
	c.env.results.Aborted = true
	c.env.results.AbortReason = fmt.Sprintf("[%s] %s", c.id, err)
	c.ErrorNow(err)
}

func (c *Context) FailNow() {
	panic(c)
}

func (c *Context) Skip() {
	c.skipped = true
	panic(c)
}

func (c *Context) SkipWithReason(reason string) {
	c.skipReason = reason
	c.Skip()
}

// Defer schedules a function to run when the test exits, however it exits. Deferred functions
// run in reverse order.
func (c *Context) Defer(fn func()) {
	c.cleanups = append(c.cleanups, fn)
}

func (c *Context) Debug(message string, args ...interface{}) {
	c.debugLogger.Printf(message, args...)
}

func (c *Context) DebugLogger() Logger {
	return &c.debugLogger
}

func joinErrors(errs []error) string {
	var ss []string
	for _, e := range errs {
		ss = append(ss, strings.TrimSpace(reformatError(e).Error()))
	}
	return strings.Join(ss, "; ")
}

// reformatError collapses the multi-line output of testify assertions into a single readable
// block by dropping the "Error Trace" section, which only points into harness code.
func reformatError(err error) error {
	lines := strings.Split(err.Error(), "\n")
	var kept []string
	skipping := false
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "Error Trace:") {
			skipping = true
			continue
		}
		if skipping && strings.HasPrefix(trimmed, "Error:") {
			skipping = false
		}
		if skipping || trimmed == "" {
			continue
		}
		kept = append(kept, trimmed)
	}
	if len(kept) == 0 {
		return err
	}
	return errors.New(strings.Join(kept, " "))
}
