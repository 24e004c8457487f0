package admintests

import (
	"context"

	"github.com/stadtwache/admin-contract-tests/client"
	"github.com/stadtwache/admin-contract-tests/fixtures"
	"github.com/stadtwache/admin-contract-tests/framework"
)

const (
	PhaseSetup    = "setup"
	PhaseMain     = "main"
	PhaseSecurity = "security"
)

// SuiteConfig is everything the suite needs to reach the backend.
type SuiteConfig struct {
	// Admin is an unauthenticated session; the setup phase logs it in.
	Admin    *client.Session
	Strategy fixtures.Strategy

	// ReuseCandidates are tried in order by the ReuseSession strategy. Defaults to
	// fixtures.ReuseCandidates.
	ReuseCandidates []client.Credentials
}

// RunTestSuite runs the setup, main and security phases in that order. If setup cannot log in or
// provision a fixture, the run is aborted and everything after it is recorded as skipped.
func RunTestSuite(
	ctx context.Context,
	config SuiteConfig,
	filter framework.Filter,
	testLogger framework.TestLogger,
) framework.Results {
	env := &environment{
		ctx:         ctx,
		admin:       config.Admin,
		provisioner: fixtures.NewProvisioner(config.Admin),
		strategy:    config.Strategy,
		rejections:  make(map[string]int),
	}
	candidates := config.ReuseCandidates
	if len(candidates) == 0 {
		candidates = fixtures.ReuseCandidates
	}
	return framework.Run(filter, testLogger, func(c *framework.Context) {
		t := &T{context: c, env: env}

		t.Run(PhaseSetup, func(t *T) {
			if env.strategy.Provisions() {
				DoBootstrapSetup(t)
			} else {
				DoReuseSessionSetup(t, candidates)
			}
		})
		t.Run(PhaseMain, func(t *T) {
			t.Run("vacations", DoVacationTests)
			t.Run("attendance", DoAttendanceTests)
			t.Run("team status", DoTeamStatusTests)
		})
		t.Run(PhaseSecurity, func(t *T) {
			t.Run("unauthenticated", DoUnauthenticatedTests)
			t.Run("non-admin", DoNonAdminTests)
			t.Run("error handling", DoErrorHandlingTests)
		})
	})
}
