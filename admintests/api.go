package admintests

import (
	"context"
	"fmt"
	"net/http"

	"github.com/stretchr/testify/require"
	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"

	"github.com/stadtwache/admin-contract-tests/client"
	"github.com/stadtwache/admin-contract-tests/fixtures"
	"github.com/stadtwache/admin-contract-tests/framework"
	"github.com/stadtwache/admin-contract-tests/schema"
)

// UnauthenticatedStatus is the status the backend returns for a request to an admin-scoped
// endpoint that carries no credential. The backend's bearer-token dependency rejects a missing
// Authorization header with 403, not 401.
const UnauthenticatedStatus = http.StatusForbidden

// ForbiddenStatus is the status for a credential whose identity is not an admin.
const ForbiddenStatus = http.StatusForbidden

// FixtureSet holds everything the setup phase provisioned. Fields stay nil when setup did not
// create them.
type FixtureSet struct {
	Officer          *fixtures.Fixture
	OfficerSession   *client.Session
	District         *fixtures.Fixture
	Team             *fixtures.Fixture
	ApprovalRequest  *fixtures.Fixture
	RejectionRequest *fixtures.Fixture
}

type environment struct {
	ctx         context.Context
	admin       *client.Session
	provisioner *fixtures.Provisioner
	strategy    fixtures.Strategy
	fixtures    FixtureSet

	// rejections collects the status of every unauthenticated request, by endpoint.
	rejections map[string]int
}

// T represents a test or subtest in the admin test suite.
//
// It implements the subset of testing.T that testify needs, so tests make assertions by passing
// the *T to the assert and require packages. Requests made through T are logged to the test's
// debug output.
type T struct {
	context *framework.Context
	env     *environment
}

// Errorf is called by assertions to log a test failure. It does not cause an immediate exit.
func (t *T) Errorf(format string, args ...interface{}) {
	t.context.Errorf(format, args...)
}

// FailNow is called by assertions when a test should fail and immediately exit. The methods in
// the require package call FailNow.
func (t *T) FailNow() {
	t.context.FailNow()
}

// Run runs a subtest. While it runs, both sessions log their requests to the subtest's debug
// output, the officer's marked with "[officer]".
func (t *T) Run(name string, action func(*T)) {
	t.context.Run(name, func(c *framework.Context) {
		t1 := &T{context: c, env: t.env}
		restore := t.env.useLogger(c.DebugLogger())
		c.Defer(restore)
		action(t1)
	})
}

func (env *environment) useLogger(logger framework.Logger) func() {
	previousAdmin := env.admin.SetLogger(logger)
	officer := env.fixtures.OfficerSession
	var previousOfficer framework.Logger
	if officer != nil {
		previousOfficer = officer.SetLogger(framework.LoggerWithPrefix(logger, "[officer] "))
	}
	return func() {
		env.admin.SetLogger(previousAdmin)
		if officer != nil {
			officer.SetLogger(previousOfficer)
		}
	}
}

// Debug adds a line to the test's debug output.
func (t *T) Debug(format string, args ...interface{}) {
	t.context.Debug(format, args...)
}

// Abort fails the test and stops the run. It is for setup steps without which nothing else can
// be checked.
func (t *T) Abort(err error) {
	t.context.Abort(err)
}

func (t *T) Admin() *client.Session {
	return t.env.admin
}

func (t *T) Fixtures() *FixtureSet {
	return &t.env.fixtures
}

// RequireAdmin skips the test if no admin session was established.
func (t *T) RequireAdmin() *client.Session {
	if !t.env.admin.IsAdmin() {
		t.context.SkipWithReason("no admin session")
	}
	return t.env.admin
}

// RequireFixture skips the test if the fixture was not provisioned.
func (t *T) RequireFixture(f *fixtures.Fixture, description string) *fixtures.Fixture {
	if !t.env.strategy.Provisions() {
		t.context.SkipWithReason(fmt.Sprintf("fixture strategy %q does not provision a %s", t.env.strategy, description))
	}
	if !f.Provisioned() {
		t.context.SkipWithReason(description + " was not provisioned")
	}
	return f
}

// RequireOfficer skips the test if there is no session for a non-admin identity.
func (t *T) RequireOfficer() *client.Session {
	t.RequireFixture(t.env.fixtures.Officer, "non-admin identity")
	s := t.env.fixtures.OfficerSession
	if s == nil || !s.Authenticated() {
		t.context.SkipWithReason("non-admin identity is not logged in")
	}
	return s
}

// Send makes a request and returns the response, whatever its status. If no response arrives,
// the test exits with an Error outcome.
func (t *T) Send(session *client.Session, config client.RequestConfig, method, path string, body interface{}) *client.Response {
	resp, err := session.Do(t.env.ctx, config, method, path, body)
	if err != nil {
		t.context.ErrorNow(err)
	}
	return resp
}

// AsAdmin makes a request with the admin credential.
func (t *T) AsAdmin(method, path string, body interface{}) *client.Response {
	admin := t.RequireAdmin()
	return t.Send(admin, admin.WithAuth(), method, path, body)
}

// Unauthenticated makes the same request an admin would, but with the credential detached.
func (t *T) Unauthenticated(method, path string, body interface{}) *client.Response {
	admin := t.RequireAdmin()
	var resp *client.Response
	admin.Detach(func() {
		config := admin.WithAuth()
		require.False(t, config.Authenticated(), "credential was still attached")
		resp = t.Send(admin, config, method, path, body)
	})
	return resp
}

// RequireStatus fails the test immediately unless the response has the expected status.
func (t *T) RequireStatus(resp *client.Response, expected int) {
	if resp.StatusCode != expected {
		require.Fail(t, "unexpected status", "expected %d, got %s", expected, resp)
	}
}

// RequireNotServerError fails the test immediately if the backend reported an internal error.
func (t *T) RequireNotServerError(resp *client.Response) {
	if resp.Class() == client.ClassServerError {
		require.Fail(t, "server error", "a client mistake must not produce %s", resp)
	}
}

// RequireClass fails the test immediately unless the response status is in the expected class.
func (t *T) RequireClass(resp *client.Response, expected client.StatusClass) {
	t.RequireNotServerError(resp)
	if resp.Class() != expected {
		require.Fail(t, "unexpected status class", "expected %s, got %s", expected, resp)
	}
}

// RequireSchema fails the test immediately unless the body matches the named schema.
func (t *T) RequireSchema(resp *client.Response, name schema.Name) {
	if err := schema.Validate(name, resp.Body); err != nil {
		require.Fail(t, "response does not match its contract", "%s\nbody: %s", err, resp.BodyString())
	}
}

// RequireList checks that a list endpoint returned 200 and an array whose every element has the
// endpoint's required fields, and returns the array.
func (t *T) RequireList(resp *client.Response, name schema.Name) ldvalue.Value {
	t.RequireStatus(resp, http.StatusOK)
	list := resp.JSON()
	if list.Type() != ldvalue.ArrayType {
		require.Fail(t, "expected a JSON array", "got %s", resp.BodyString())
	}
	t.RequireSchema(resp, name)
	t.Debug("%s returned %d record(s)", resp.Path, list.Count())
	return list
}

// findByID returns the element of a JSON array whose "id" is id.
func findByID(list ldvalue.Value, id string) (ldvalue.Value, bool) {
	for i := 0; i < list.Count(); i++ {
		item := list.GetByIndex(i)
		if item.GetByKey("id").StringValue() == id {
			return item, true
		}
	}
	return ldvalue.Null(), false
}
