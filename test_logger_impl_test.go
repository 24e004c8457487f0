package main

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"

	"github.com/stadtwache/admin-contract-tests/framework"
)

func newConsoleLogger(onFailure, onSuccess bool) (*ConsoleTestLogger, *bytes.Buffer) {
	color.NoColor = true
	var buf bytes.Buffer
	return &ConsoleTestLogger{
		DebugOutputOnFailure: onFailure,
		DebugOutputOnSuccess: onSuccess,
		out:                  &buf,
		now:                  func() time.Time { return time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC) },
	}, &buf
}

func TestConsoleLoggerFailureWithDebugOutput(t *testing.T) {
	logger, buf := newConsoleLogger(true, false)
	id := framework.TestID{Path: []string{"main", "vacations", "approve pending request"}}
	debug := framework.CapturedOutput{{Message: ">> curl -X PUT"}}

	logger.TestStarted(id)
	logger.TestError(id, errors.New("expected 200\ngot 500"))
	logger.TestFinished(id, framework.FailOutcome("expected 200"), debug)

	assert.Equal(t, "09:30:00 [main/vacations/approve pending request]\n"+
		"09:30:00   expected 200\n"+
		"09:30:00   got 500\n"+
		"09:30:00   FAILED: main/vacations/approve pending request\n"+
		debugLines(debug), buf.String())
}

func TestConsoleLoggerPassOmitsDebugOutputByDefault(t *testing.T) {
	logger, buf := newConsoleLogger(true, false)
	id := framework.TestID{Path: []string{"main", "attendance"}}
	logger.TestFinished(id, framework.PassOutcome(), framework.CapturedOutput{{Message: "hidden"}})

	assert.Equal(t, "09:30:00   PASSED: main/attendance\n", buf.String())
}

func TestConsoleLoggerErrorAndSkip(t *testing.T) {
	logger, buf := newConsoleLogger(false, false)
	logger.TestFinished(framework.TestID{Path: []string{"a"}}, framework.ErrorOutcome("refused"), nil)
	logger.TestSkipped(framework.TestID{Path: []string{"b"}}, "")
	logger.TestSkipped(framework.TestID{Path: []string{"c"}}, "no fixture")

	assert.Equal(t, "09:30:00   ERRORED: a\n"+
		"09:30:00   SKIPPED: b\n"+
		"09:30:00   SKIPPED: c (no fixture)\n", buf.String())
}

func debugLines(output framework.CapturedOutput) string {
	var buf bytes.Buffer
	output.Dump(&buf, "    DEBUG ")
	return buf.String()
}
