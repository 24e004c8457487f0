package framework

import (
	"fmt"
	"io"
	"regexp"
	"strings"
)

// Filter is a function that can determine whether to run a specific test or not.
type Filter func(TestID) bool

// RegexFilters selects tests the way "go test -run" and "-skip" do: each pattern is split on
// slashes, and each piece is matched against the corresponding element of the test path.
type RegexFilters struct {
	MustMatch    RegexList
	MustNotMatch RegexList
}

func (r RegexFilters) AsFilter(id TestID) bool {
	return (!r.MustMatch.IsDefined() || r.MustMatch.anyAllowsPath(id.Path)) &&
		!r.MustNotMatch.anyExcludesPath(id.Path)
}

type RegexList struct {
	patterns []levelPattern
}

type levelPattern struct {
	source string
	levels []*regexp.Regexp
}

func (r RegexList) String() string {
	var ss []string
	for _, p := range r.patterns {
		ss = append(ss, `"`+p.source+`"`)
	}
	return strings.Join(ss, " or ")
}

// Set adds a pattern. It has the signature of flag.Value.Set so it can be used with a FlagSet.
func (r *RegexList) Set(value string) error {
	p := levelPattern{source: value}
	for _, piece := range strings.Split(value, "/") {
		rx, err := regexp.Compile(piece)
		if err != nil {
			return fmt.Errorf("invalid regex: %w", err)
		}
		p.levels = append(p.levels, rx)
	}
	r.patterns = append(r.patterns, p)
	return nil
}

func (r RegexList) IsDefined() bool {
	return len(r.patterns) != 0
}

// anyAllowsPath is true if some pattern matches every level the path and the pattern have in
// common. A parent group is allowed as long as its own name matches, so its children get a chance.
func (r RegexList) anyAllowsPath(path []string) bool {
	for _, p := range r.patterns {
		if p.matchLevels(path, false) {
			return true
		}
	}
	return false
}

// anyExcludesPath is true if some pattern matches the path at every level of the pattern.
func (r RegexList) anyExcludesPath(path []string) bool {
	for _, p := range r.patterns {
		if p.matchLevels(path, true) {
			return true
		}
	}
	return false
}

func (p levelPattern) matchLevels(path []string, requireAllLevels bool) bool {
	if requireAllLevels && len(path) < len(p.levels) {
		return false
	}
	for i, rx := range p.levels {
		if i >= len(path) {
			break
		}
		if !rx.MatchString(path[i]) {
			return false
		}
	}
	return true
}

func PrintFilterDescription(out io.Writer, filters RegexFilters) {
	if filters.MustMatch.IsDefined() || filters.MustNotMatch.IsDefined() {
		fmt.Fprintln(out, "Some tests will be skipped based on the filter criteria for this test run:")
		if filters.MustMatch.IsDefined() {
			fmt.Fprintf(out, "  skip any not matching %s\n", filters.MustMatch)
		}
		if filters.MustNotMatch.IsDefined() {
			fmt.Fprintf(out, "  skip any matching %s\n", filters.MustNotMatch)
		}
		fmt.Fprintln(out)
	}
}
