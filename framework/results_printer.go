package framework

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

// PrintResults writes an itemized table of every recorded test, then the totals and whether the
// run met the policy.
func PrintResults(out io.Writer, results Results, policy Policy) {
	width := 0
	for _, t := range results.Tests {
		if n := len(t.TestID.String()); n > width {
			width = n
		}
	}

	for _, t := range results.Tests {
		fmt.Fprintf(out, "%-*s  %s\n", width, t.TestID, colorizedKind(t.Outcome.Kind))
		if t.Outcome.Message != "" && t.Outcome.Kind != Pass {
			fmt.Fprintf(out, "  %s\n", t.Outcome.Message)
		}
	}
	fmt.Fprintln(out)

	if results.Aborted {
		fmt.Fprintln(out, color.RedString("Run aborted: %s", results.AbortReason))
	}
	fmt.Fprintf(out, "%d/%d tests passed", results.Passed(), results.Total())
	if skipped := len(results.Tests) - results.Total(); skipped > 0 {
		fmt.Fprintf(out, " (%d skipped)", skipped)
	}
	fmt.Fprintln(out)
	if policy.IsQuorum() {
		passed, total := results.Groups()
		fmt.Fprintf(out, "%d/%d test groups passed\n", passed, total)
	}

	if results.OK(policy) {
		fmt.Fprintln(out, color.GreenString("Success policy %s was met", policy))
	} else {
		fmt.Fprintln(out, color.RedString("Success policy %s was not met", policy))
	}
}

func colorizedKind(kind OutcomeKind) string {
	switch kind {
	case Pass:
		return color.GreenString("%s", kind)
	case Skipped:
		return color.YellowString("%s", kind)
	default:
		return color.RedString("%s", kind)
	}
}
