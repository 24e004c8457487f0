package admintests

import (
	"net/http"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"

	"github.com/stadtwache/admin-contract-tests/client"
	"github.com/stadtwache/admin-contract-tests/fixtures"
	"github.com/stadtwache/admin-contract-tests/schema"
	"github.com/stadtwache/admin-contract-tests/servicedef"
)

const approvalReason = "Sufficient staffing"

func DoVacationTests(t *T) {
	t.Run("list is an array of complete records", func(t *T) {
		t.RequireList(t.AsAdmin(http.MethodGet, servicedef.PathAdminVacations, nil), schema.AdminVacations)
	})

	t.Run("approve pending request", func(t *T) {
		v := t.RequireFixture(t.Fixtures().ApprovalRequest, "vacation request")
		requireDecision(t, v, servicedef.ActionApprove)
	})

	t.Run("reject pending request", func(t *T) {
		v := t.RequireFixture(t.Fixtures().RejectionRequest, "vacation request")
		requireDecision(t, v, servicedef.ActionReject)
	})

	t.Run("approving an approved request leaves it approved", func(t *T) {
		v := t.RequireFixture(t.Fixtures().ApprovalRequest, "vacation request")
		if v.Status != servicedef.VacationApproved {
			t.context.SkipWithReason("the request was not approved by an earlier test")
		}
		params := servicedef.ApproveVacationParams{Action: servicedef.ActionApprove, Reason: approvalReason}
		resp := t.AsAdmin(http.MethodPut, servicedef.PathApproveVacation(v.ID), params)
		t.RequireNotServerError(resp)
		switch resp.Class() {
		case client.ClassSuccess:
			t.RequireSchema(resp, schema.Vacation)
			assert.Equal(t, string(servicedef.VacationApproved), resp.JSON().GetByKey("status").StringValue())
		case client.ClassConflict:
			t.Debug("repeated approval was refused as a conflict")
		default:
			require.Fail(t, "repeated approval must succeed unchanged or be refused as a conflict", "got %s", resp)
		}
		requireListedStatus(t, v, servicedef.VacationApproved)
	})

	t.Run("approved request is listed as approved", func(t *T) {
		v := t.RequireFixture(t.Fixtures().ApprovalRequest, "vacation request")
		if v.Status != servicedef.VacationApproved {
			t.context.SkipWithReason("the request was not approved by an earlier test")
		}
		record := requireListedStatus(t, v, servicedef.VacationApproved)
		assert.Equal(t, v.StartDate, record.GetByKey("start_date").StringValue())
		assert.Equal(t, v.EndDate, record.GetByKey("end_date").StringValue())
		assert.Equal(t, v.Reason, record.GetByKey("reason").StringValue())
	})
}

// requireDecision applies an approval action to a pending request and checks that the response
// shows the action's target status and otherwise the same request.
func requireDecision(t *T, v *fixtures.Fixture, action servicedef.ApprovalAction) {
	if v.Status != servicedef.VacationPending {
		t.context.SkipWithReason("the request is no longer pending")
	}
	params := servicedef.ApproveVacationParams{Action: action, Reason: approvalReason}
	resp := t.AsAdmin(http.MethodPut, servicedef.PathApproveVacation(v.ID), params)
	t.RequireStatus(resp, http.StatusOK)
	t.RequireSchema(resp, schema.Vacation)

	var updated servicedef.Vacation
	require.NoError(t, resp.Decode(&updated))
	require.Equal(t, action.TargetStatus(), updated.Status)
	v.Status = updated.Status

	assert.Equal(t, v.ID, updated.ID)
	assert.Equal(t, v.StartDate, updated.StartDate)
	assert.Equal(t, v.EndDate, updated.EndDate)
	assert.Equal(t, v.Reason, updated.Reason)
}

func requireListedStatus(t *T, v *fixtures.Fixture, status servicedef.VacationStatus) ldvalue.Value {
	list := t.RequireList(t.AsAdmin(http.MethodGet, servicedef.PathAdminVacations, nil), schema.AdminVacations)
	record, ok := findByID(list, v.ID)
	if !ok {
		require.Fail(t, "vacation request is missing from the admin list", "id %s", v.ID)
	}
	require.Equal(t, string(status), record.GetByKey("status").StringValue())
	return record
}
