package admintests

import (
	"fmt"

	"github.com/stadtwache/admin-contract-tests/client"
	"github.com/stadtwache/admin-contract-tests/fixtures"
)

// DoBootstrapSetup creates the first admin if necessary, logs in as it, and provisions every
// fixture. Any failure aborts the run.
func DoBootstrapSetup(t *T) {
	p := t.env.provisioner
	f := &t.env.fixtures

	t.Run("create first admin", func(t *T) {
		if err := p.EnsureAdmin(t.env.ctx, fixtures.BootstrapAdmin); err != nil {
			t.Abort(err)
		}
	})

	t.Run("admin login", func(t *T) {
		creds := client.Credentials{Email: fixtures.BootstrapAdmin.Email, Password: fixtures.BootstrapAdmin.Password}
		if err := t.env.admin.Authenticate(t.env.ctx, creds); err != nil {
			t.Abort(err)
		}
		requireAdminRole(t)
	})

	t.Run("register non-admin identity", func(t *T) {
		officer, err := p.EnsureIdentity(t.env.ctx, fixtures.NewPatrolOfficer())
		if err != nil {
			t.Abort(err)
		}
		session, err := p.Login(t.env.ctx, officer)
		if err != nil {
			t.Abort(err)
		}
		f.Officer = officer
		f.OfficerSession = session
	})

	t.Run("create district", func(t *T) {
		district, err := p.EnsureDistrict(t.env.ctx, fixtures.DefaultDistrict)
		if err != nil {
			t.Abort(err)
		}
		f.District = district
	})

	t.Run("create team", func(t *T) {
		team, err := p.EnsureTeam(t.env.ctx, fixtures.TeamSpec{Name: fixtures.DefaultTeamName, District: f.District})
		if err != nil {
			t.Abort(err)
		}
		f.Team = team
	})

	t.Run("create vacation requests", func(t *T) {
		for _, target := range []struct {
			spec fixtures.VacationSpec
			into **fixtures.Fixture
		}{
			{fixtures.AnnualLeave, &f.ApprovalRequest},
			{fixtures.ShortLeave, &f.RejectionRequest},
		} {
			v, err := p.EnsureVacation(t.env.ctx, f.OfficerSession, target.spec)
			if err != nil {
				t.Abort(err)
			}
			*target.into = v
		}
	})
}

// DoReuseSessionSetup logs in with the first candidate account that has the admin role. Nothing
// is provisioned.
func DoReuseSessionSetup(t *T, candidates []client.Credentials) {
	t.Run("admin login", func(t *T) {
		creds, err := fixtures.AuthenticateFirstAdmin(t.env.ctx, t.env.admin, candidates)
		if err != nil {
			t.Abort(err)
		}
		t.Debug("using existing admin %s", creds.Email)
		requireAdminRole(t)
	})
}

func requireAdminRole(t *T) {
	if !t.env.admin.IsAdmin() {
		t.Abort(fmt.Errorf("logged in, but the identity has role %q", t.env.admin.Identity().Role))
	}
}
