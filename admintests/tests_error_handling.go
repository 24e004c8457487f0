package admintests

import (
	"net/http"

	"github.com/stretchr/testify/assert"

	"github.com/stadtwache/admin-contract-tests/client"
	"github.com/stadtwache/admin-contract-tests/fixtures"
	"github.com/stadtwache/admin-contract-tests/servicedef"
)

const invalidTeamStatus = "InvalidStatus"

// DoErrorHandlingTests checks that mistakes in admin requests are reported as client errors of
// the right kind, never as server errors.
func DoErrorHandlingTests(t *T) {
	t.Run("approving a nonexistent request is not found", func(t *T) {
		params := servicedef.ApproveVacationParams{Action: servicedef.ActionApprove, Reason: approvalReason}
		resp := t.AsAdmin(http.MethodPut, servicedef.PathApproveVacation(fixtures.NonexistentID()), params)
		t.RequireClass(resp, client.ClassNotFound)
	})

	t.Run("updating a nonexistent team is not found", func(t *T) {
		params := servicedef.UpdateTeamStatusParams{Status: servicedef.TeamStatusOnDuty}
		resp := t.AsAdmin(http.MethodPut, servicedef.PathTeamStatusUpdate(fixtures.NonexistentID()), params)
		t.RequireClass(resp, client.ClassNotFound)
	})

	t.Run("invalid team status is rejected and not stored", func(t *T) {
		team := t.RequireFixture(t.Fixtures().Team, "team")
		before := requireTeamStatus(t, team)

		params := servicedef.UpdateTeamStatusParams{Status: invalidTeamStatus}
		resp := t.AsAdmin(http.MethodPut, servicedef.PathTeamStatusUpdate(team.ID), params)
		t.RequireClass(resp, client.ClassBadRequest)

		assert.Equal(t, before, requireTeamStatus(t, team), "a rejected update changed the stored status")
	})
}
