package framework

import (
	"fmt"

	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

// Policy decides whether a set of results counts as a successful run.
//
// A strict policy requires every test that ran to pass, and at least one test to have run. A
// quorum policy only requires a minimum number of passing test groups (see Results.Groups).
type Policy struct {
	quorum ldvalue.OptionalInt
}

func StrictPolicy() Policy { return Policy{} }

func QuorumPolicy(minimumPassedGroups int) Policy {
	return Policy{quorum: ldvalue.NewOptionalInt(minimumPassedGroups)}
}

func (p Policy) IsQuorum() bool { return p.quorum.IsDefined() }

func (p Policy) Satisfied(r Results) bool {
	if p.quorum.IsDefined() {
		passed, _ := r.Groups()
		return passed >= p.quorum.IntValue()
	}
	return r.Total() > 0 && r.Passed() == r.Total()
}

func (p Policy) String() string {
	if p.quorum.IsDefined() {
		return fmt.Sprintf("quorum (at least %d test groups passed)", p.quorum.IntValue())
	}
	return "strict (all passed)"
}
