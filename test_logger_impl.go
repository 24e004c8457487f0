package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/stadtwache/admin-contract-tests/framework"
)

const consoleTimeFormat = "15:04:05"

type ConsoleTestLogger struct {
	DebugOutputOnFailure bool
	DebugOutputOnSuccess bool

	out io.Writer
	now func() time.Time
}

func (c *ConsoleTestLogger) writer() io.Writer {
	if c.out == nil {
		return os.Stdout
	}
	return c.out
}

func (c *ConsoleTestLogger) printf(format string, args ...interface{}) {
	now := time.Now
	if c.now != nil {
		now = c.now
	}
	fmt.Fprintf(c.writer(), "%s %s\n", now().Format(consoleTimeFormat), fmt.Sprintf(format, args...))
}

func (c *ConsoleTestLogger) TestStarted(id framework.TestID) {
	c.printf("[%s]", id)
}

func (c *ConsoleTestLogger) TestError(id framework.TestID, err error) {
	for _, line := range strings.Split(err.Error(), "\n") {
		c.printf("  %s", line)
	}
}

func (c *ConsoleTestLogger) TestFinished(id framework.TestID, outcome framework.Outcome, debugOutput framework.CapturedOutput) {
	passed := outcome.Passed()
	if passed {
		c.printf("  %s", color.GreenString("PASSED: %s", id))
	} else {
		c.printf("  %s", color.RedString("%s: %s", outcomeVerb(outcome.Kind), id))
	}
	if len(debugOutput) > 0 &&
		((!passed && c.DebugOutputOnFailure) || (passed && c.DebugOutputOnSuccess)) {
		debugOutput.Dump(c.writer(), "    DEBUG ")
	}
}

func (c *ConsoleTestLogger) TestSkipped(id framework.TestID, reason string) {
	if reason == "" {
		c.printf("  %s", color.YellowString("SKIPPED: %s", id))
	} else {
		c.printf("  %s", color.YellowString("SKIPPED: %s (%s)", id, reason))
	}
}

func outcomeVerb(kind framework.OutcomeKind) string {
	if kind == framework.Error {
		return "ERRORED"
	}
	return "FAILED"
}
