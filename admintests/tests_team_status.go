package admintests

import (
	"net/http"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stadtwache/admin-contract-tests/fixtures"
	"github.com/stadtwache/admin-contract-tests/schema"
	"github.com/stadtwache/admin-contract-tests/servicedef"
)

func DoTeamStatusTests(t *T) {
	t.Run("list is an array of complete records", func(t *T) {
		t.RequireList(t.AsAdmin(http.MethodGet, servicedef.PathTeamStatus, nil), schema.TeamStatus)
	})

	t.Run("update to an allowed status", func(t *T) {
		team := t.RequireFixture(t.Fixtures().Team, "team")
		params := servicedef.UpdateTeamStatusParams{Status: servicedef.TeamStatusOnDuty}
		resp := t.AsAdmin(http.MethodPut, servicedef.PathTeamStatusUpdate(team.ID), params)
		t.RequireStatus(resp, http.StatusOK)
		t.RequireSchema(resp, schema.GenericSuccess)

		assert.Equal(t, servicedef.TeamStatusOnDuty, requireTeamStatus(t, team))
	})
}

// requireTeamStatus reads the team's current status from the team status list.
func requireTeamStatus(t *T, team *fixtures.Fixture) string {
	resp := t.AsAdmin(http.MethodGet, servicedef.PathTeamStatus, nil)
	t.RequireList(resp, schema.TeamStatus)
	var records []servicedef.TeamStatusRecord
	require.NoError(t, resp.Decode(&records))
	for _, r := range records {
		if r.ID == team.ID {
			return r.Status
		}
	}
	require.Fail(t, "team is missing from the team status list", "id %s", team.ID)
	return ""
}
