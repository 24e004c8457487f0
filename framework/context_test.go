package framework

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingTestLogger struct {
	events []string
}

func (r *recordingTestLogger) TestStarted(id TestID) {
	r.events = append(r.events, "start "+id.String())
}

func (r *recordingTestLogger) TestError(id TestID, err error) {
	r.events = append(r.events, "error "+id.String())
}

func (r *recordingTestLogger) TestFinished(id TestID, outcome Outcome, debugOutput CapturedOutput) {
	r.events = append(r.events, "finish "+id.String()+" "+outcome.Kind.String())
}

func (r *recordingTestLogger) TestSkipped(id TestID, reason string) {
	r.events = append(r.events, "skip "+id.String())
}

func outcomes(results Results) map[string]OutcomeKind {
	ret := make(map[string]OutcomeKind)
	for _, t := range results.Tests {
		ret[t.TestID.String()] = t.Outcome.Kind
	}
	return ret
}

func TestOutcomesOfLeafTests(t *testing.T) {
	results := Run(nil, nil, func(c *Context) {
		c.Run("main", func(c *Context) {
			c.Run("passes", func(c *Context) {
				assert.Equal(c, 1, 1)
			})
			c.Run("fails", func(c *Context) {
				assert.Equal(c, 1, 2)
				assert.Equal(c, 3, 4)
			})
			c.Run("fails now", func(c *Context) {
				require.True(c, false)
				panic("not reached")
			})
			c.Run("errors", func(c *Context) {
				c.ErrorNow(errors.New("connection refused"))
			})
			c.Run("panics", func(c *Context) {
				panic("boom")
			})
			c.Run("skips", func(c *Context) {
				c.SkipWithReason("no fixture")
			})
		})
	})

	assert.Equal(t, map[string]OutcomeKind{
		"main/passes":    Pass,
		"main/fails":     Fail,
		"main/fails now": Fail,
		"main/errors":    Error,
		"main/panics":    Error,
		"main/skips":     Skipped,
	}, outcomes(results))
	assert.Equal(t, 1, results.Passed())
	assert.Equal(t, 5, results.Total())
	assert.Len(t, results.Failures(), 4)
}

func TestFailureMessageDropsErrorTrace(t *testing.T) {
	results := Run(nil, nil, func(c *Context) {
		c.Run("fails", func(c *Context) {
			assert.Equal(c, "approved", "pending")
		})
	})
	require.Len(t, results.Tests, 1)
	message := results.Tests[0].Outcome.Message
	assert.NotContains(t, message, "Error Trace")
	assert.Contains(t, message, "pending")
}

func TestAbortSkipsEverythingAfterIt(t *testing.T) {
	ran := false
	results := Run(nil, nil, func(c *Context) {
		c.Run("setup", func(c *Context) {
			c.Run("login", func(c *Context) {
				c.Abort(errors.New("login rejected"))
			})
			c.Run("provision", func(c *Context) {
				ran = true
			})
		})
		c.Run("main", func(c *Context) {
			ran = true
		})
	})

	assert.False(t, ran)
	assert.True(t, results.Aborted)
	assert.Equal(t, "[setup/login] login rejected", results.AbortReason)
	assert.Equal(t, map[string]OutcomeKind{
		"setup/login":     Error,
		"setup/provision": Skipped,
		"main":            Skipped,
	}, outcomes(results))
	assert.False(t, results.OK(QuorumPolicy(0)))
}

func TestFilteredTestsAreSkipped(t *testing.T) {
	var filters RegexFilters
	require.NoError(t, filters.MustMatch.Set("main/list"))
	results := Run(filters.AsFilter, nil, func(c *Context) {
		c.Run("main", func(c *Context) {
			c.Run("list", func(c *Context) {})
			c.Run("update", func(c *Context) {
				assert.Fail(c, "should not run")
			})
		})
		c.Run("security", func(c *Context) {
			assert.Fail(c, "should not run")
		})
	})

	assert.Equal(t, map[string]OutcomeKind{
		"main/list":   Pass,
		"main/update": Skipped,
		"security":    Skipped,
	}, outcomes(results))
}

func TestDeferredFunctionsRunAfterFailure(t *testing.T) {
	var order []string
	Run(nil, nil, func(c *Context) {
		c.Run("fails", func(c *Context) {
			c.Defer(func() { order = append(order, "first") })
			c.Defer(func() { order = append(order, "second") })
			c.FailNow()
		})
	})
	assert.Equal(t, []string{"second", "first"}, order)
}

func TestTestLoggerEvents(t *testing.T) {
	logger := &recordingTestLogger{}
	Run(nil, logger, func(c *Context) {
		c.Run("a", func(c *Context) {
			c.Errorf("bad")
		})
		c.Run("b", func(c *Context) {
			c.Skip()
		})
	})
	assert.Equal(t, []string{
		"start a", "error a", "finish a FAIL",
		"start b", "skip b",
	}, logger.events)
}

func TestPassingGroupsAreNotReportedAsFinished(t *testing.T) {
	logger := &recordingTestLogger{}
	Run(nil, logger, func(c *Context) {
		c.Run("main", func(c *Context) {
			c.Run("a", func(c *Context) {})
		})
		c.Run("security", func(c *Context) {
			c.Run("b", func(c *Context) {})
			panic("group failed after its subtests")
		})
	})
	assert.Equal(t, []string{
		"start main", "start main/a", "finish main/a PASS",
		"start security", "start security/b", "finish security/b PASS",
		"error security", "finish security ERROR",
	}, logger.events)
}

func TestDebugOutputIsCaptured(t *testing.T) {
	var captured CapturedOutput
	logger := &capturingTestLogger{onFinish: func(out CapturedOutput) { captured = out }}
	Run(nil, logger, func(c *Context) {
		c.Run("a", func(c *Context) {
			c.Debug("GET %s", "/admin/attendance")
			LoggerWithPrefix(c.DebugLogger(), ">> ").Printf("hello")
		})
	})
	require.Len(t, captured, 2)

	var buf bytes.Buffer
	captured.Dump(&buf, "DEBUG ")
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasSuffix(lines[0], "GET /admin/attendance"))
	assert.True(t, strings.HasSuffix(lines[1], ">> hello"))
}

type capturingTestLogger struct {
	nullTestLogger
	onFinish func(CapturedOutput)
}

func (c *capturingTestLogger) TestFinished(id TestID, outcome Outcome, debugOutput CapturedOutput) {
	c.onFinish(debugOutput)
}
