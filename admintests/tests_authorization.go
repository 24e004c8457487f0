package admintests

import (
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stadtwache/admin-contract-tests/client"
	"github.com/stadtwache/admin-contract-tests/fixtures"
	"github.com/stadtwache/admin-contract-tests/schema"
	"github.com/stadtwache/admin-contract-tests/servicedef"
)

var listSchemas = map[string]schema.Name{
	servicedef.PathAdminVacations: schema.AdminVacations,
	servicedef.PathAttendance:     schema.Attendance,
	servicedef.PathTeamStatus:     schema.TeamStatus,
}

// DoUnauthenticatedTests sends admin requests with the credential detached. Each one must be
// rejected with the same status, and the same request with the credential must succeed.
func DoUnauthenticatedTests(t *T) {
	for _, path := range servicedef.AdminListPaths {
		path := path
		t.Run("GET "+endpointName(path)+" without credential is rejected", func(t *T) {
			requireUnauthenticatedRejection(t, "GET "+path, t.Unauthenticated(http.MethodGet, path, nil))
		})
		t.Run("GET "+endpointName(path)+" with credential returns an array", func(t *T) {
			t.RequireList(t.AsAdmin(http.MethodGet, path, nil), listSchemas[path])
		})
	}

	t.Run("PUT vacation approval without credential is rejected", func(t *T) {
		id := fixtureOrNonexistentID(t.Fixtures().RejectionRequest)
		params := servicedef.ApproveVacationParams{Action: servicedef.ActionApprove, Reason: approvalReason}
		requireUnauthenticatedRejection(t, "PUT approve",
			t.Unauthenticated(http.MethodPut, servicedef.PathApproveVacation(id), params))
	})

	t.Run("PUT team status without credential is rejected", func(t *T) {
		id := fixtureOrNonexistentID(t.Fixtures().Team)
		params := servicedef.UpdateTeamStatusParams{Status: servicedef.TeamStatusBreak}
		requireUnauthenticatedRejection(t, "PUT team status",
			t.Unauthenticated(http.MethodPut, servicedef.PathTeamStatusUpdate(id), params))
	})

	t.Run("rejection status is the same for every endpoint", func(t *T) {
		rejections := t.env.rejections
		if len(rejections) < 2 {
			t.context.SkipWithReason("fewer than two unauthenticated requests were made")
		}
		statuses := make(map[int][]string)
		for endpoint, status := range rejections {
			statuses[status] = append(statuses[status], endpoint)
		}
		if len(statuses) > 1 {
			var details []string
			for status, endpoints := range statuses {
				sort.Strings(endpoints)
				details = append(details, fmt.Sprintf("%d: %v", status, endpoints))
			}
			sort.Strings(details)
			assert.Fail(t, "unauthenticated requests were rejected inconsistently", "%v", details)
		}
	})
}

// DoNonAdminTests sends admin requests with the credential of an identity that is not an admin.
func DoNonAdminTests(t *T) {
	for _, path := range servicedef.AdminListPaths {
		path := path
		t.Run("GET "+endpointName(path)+" as non-admin is forbidden", func(t *T) {
			officer := t.RequireOfficer()
			resp := t.Send(officer, officer.WithAuth(), http.MethodGet, path, nil)
			t.RequireStatus(resp, ForbiddenStatus)
		})
	}
}

func requireUnauthenticatedRejection(t *T, endpoint string, resp *client.Response) {
	t.env.rejections[endpoint] = resp.StatusCode
	t.RequireNotServerError(resp)
	require.Equal(t, UnauthenticatedStatus, resp.StatusCode,
		"unauthenticated %s must be rejected with %d; got %s", endpoint, UnauthenticatedStatus, resp)
}

// fixtureOrNonexistentID is used where the request must be rejected before the backend looks at
// the id, so it does not matter whether the id exists.
func fixtureOrNonexistentID(f *fixtures.Fixture) string {
	if f.Provisioned() {
		return f.ID
	}
	return fixtures.NonexistentID()
}

// endpointName turns "/admin/team-status" into "team-status", since test names cannot contain "/".
func endpointName(path string) string {
	return strings.ReplaceAll(strings.TrimPrefix(path, "/admin/"), "/", " ")
}
