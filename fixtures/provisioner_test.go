package fixtures

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/launchdarkly/go-test-helpers/v2/httphelpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stadtwache/admin-contract-tests/client"
	"github.com/stadtwache/admin-contract-tests/internal/fakebackend"
	"github.com/stadtwache/admin-contract-tests/servicedef"
)

var fixedNow = time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)

func withProvisioner(t *testing.T, opts fakebackend.Options, action func(*Provisioner, *fakebackend.Backend)) {
	backend := fakebackend.New(opts)
	httphelpers.WithServer(backend.Handler(), func(server *httptest.Server) {
		admin := client.NewSession(client.Config{BaseURL: server.URL + "/api", RetryBase: time.Millisecond})
		p := NewProvisioner(admin)
		p.now = func() time.Time { return fixedNow }
		ctx := context.Background()
		require.NoError(t, p.EnsureAdmin(ctx, BootstrapAdmin))
		require.NoError(t, admin.Authenticate(ctx, client.Credentials{Email: BootstrapAdmin.Email, Password: BootstrapAdmin.Password}))
		action(p, backend)
	})
}

func TestEnsureAdminTreatsExistingAdminAsSuccess(t *testing.T) {
	withProvisioner(t, fakebackend.Options{}, func(p *Provisioner, _ *fakebackend.Backend) {
		assert.NoError(t, p.EnsureAdmin(context.Background(), BootstrapAdmin))
	})
}

func TestEnsureAdminFailsOnOtherError(t *testing.T) {
	httphelpers.WithServer(httphelpers.HandlerWithStatus(500), func(server *httptest.Server) {
		p := NewProvisioner(client.NewSession(client.Config{BaseURL: server.URL}))
		err := p.EnsureAdmin(context.Background(), BootstrapAdmin)

		var setupErr *SetupError
		require.True(t, errors.As(err, &setupErr))
		assert.Equal(t, KindIdentity, setupErr.Fixture)
		assert.Equal(t, 500, setupErr.Status)
	})
}

func TestEnsureDistrictIsIdempotent(t *testing.T) {
	withProvisioner(t, fakebackend.Options{}, func(p *Provisioner, _ *fakebackend.Backend) {
		ctx := context.Background()
		d1, err := p.EnsureDistrict(ctx, DefaultDistrict)
		require.NoError(t, err)
		assert.True(t, d1.Provisioned())

		d2, err := p.EnsureDistrict(ctx, DefaultDistrict)
		require.NoError(t, err)
		assert.Same(t, d1, d2)
	})
}

func TestEnsureDistrictResolvesConflictByName(t *testing.T) {
	withProvisioner(t, fakebackend.Options{}, func(p *Provisioner, _ *fakebackend.Backend) {
		ctx := context.Background()
		d1, err := p.EnsureDistrict(ctx, DefaultDistrict)
		require.NoError(t, err)

		// a second provisioner has an empty cache, so it gets a conflict from the backend
		other := NewProvisioner(p.admin)
		d2, err := other.EnsureDistrict(ctx, DefaultDistrict)
		require.NoError(t, err)
		assert.Equal(t, d1.ID, d2.ID)
	})
}

func TestEnsureTeamResolvesConflictByName(t *testing.T) {
	withProvisioner(t, fakebackend.Options{}, func(p *Provisioner, _ *fakebackend.Backend) {
		ctx := context.Background()
		d, err := p.EnsureDistrict(ctx, DefaultDistrict)
		require.NoError(t, err)
		t1, err := p.EnsureTeam(ctx, TeamSpec{Name: DefaultTeamName, District: d})
		require.NoError(t, err)
		assert.Equal(t, d.ID, t1.DistrictID)

		other := NewProvisioner(p.admin)
		t2, err := other.EnsureTeam(ctx, TeamSpec{Name: DefaultTeamName, District: d})
		require.NoError(t, err)
		assert.Equal(t, t1.ID, t2.ID)
	})
}

func TestEnsureTeamDoesNotResolveConflictToAnotherDistrict(t *testing.T) {
	withProvisioner(t, fakebackend.Options{}, func(p *Provisioner, _ *fakebackend.Backend) {
		ctx := context.Background()
		south, err := p.EnsureDistrict(ctx, DistrictSpec{Name: "Test Bezirk Süd", AreaDescription: "Südlicher Stadtbereich"})
		require.NoError(t, err)
		_, err = p.EnsureTeam(ctx, TeamSpec{Name: DefaultTeamName, District: south})
		require.NoError(t, err)

		north, err := p.EnsureDistrict(ctx, DefaultDistrict)
		require.NoError(t, err)
		f, err := p.EnsureTeam(ctx, TeamSpec{Name: DefaultTeamName, District: north})

		var setupErr *SetupError
		require.True(t, errors.As(err, &setupErr), "got fixture %s", f)
		assert.Equal(t, KindTeam, setupErr.Fixture)
		assert.Contains(t, setupErr.Reason, DefaultDistrict.Name)
		assert.Nil(t, f)
	})
}

func TestEnsureTeamRequiresProvisionedDistrict(t *testing.T) {
	withProvisioner(t, fakebackend.Options{}, func(p *Provisioner, _ *fakebackend.Backend) {
		_, err := p.EnsureTeam(context.Background(), TeamSpec{Name: DefaultTeamName, District: &Fixture{Kind: KindDistrict}})
		assert.ErrorIs(t, err, ErrNotProvisioned)

		_, err = p.EnsureTeam(context.Background(), TeamSpec{Name: DefaultTeamName})
		assert.ErrorIs(t, err, ErrNotProvisioned)
	})
}

func TestEnsureTeamFailsOnUnexpectedStatus(t *testing.T) {
	opts := fakebackend.Options{ForceStatus: map[string]int{"POST /admin/teams": 500}}
	withProvisioner(t, opts, func(p *Provisioner, _ *fakebackend.Backend) {
		d, err := p.EnsureDistrict(context.Background(), DefaultDistrict)
		require.NoError(t, err)
		_, err = p.EnsureTeam(context.Background(), TeamSpec{Name: DefaultTeamName, District: d})

		var setupErr *SetupError
		require.True(t, errors.As(err, &setupErr))
		assert.Equal(t, KindTeam, setupErr.Fixture)
	})
}

func TestEnsureVacationAsRegisteredUser(t *testing.T) {
	withProvisioner(t, fakebackend.Options{}, func(p *Provisioner, _ *fakebackend.Backend) {
		ctx := context.Background()
		identity, err := p.EnsureIdentity(ctx, NewPatrolOfficer())
		require.NoError(t, err)
		assert.True(t, identity.Provisioned())
		assert.Equal(t, servicedef.RolePolice, identity.Role)

		owner, err := p.Login(ctx, identity)
		require.NoError(t, err)
		assert.False(t, owner.IsAdmin())

		v, err := p.EnsureVacation(ctx, owner, AnnualLeave)
		require.NoError(t, err)
		assert.True(t, v.Provisioned())
		assert.Equal(t, servicedef.VacationPending, v.Status)
		assert.Equal(t, identity.ID, v.OwnerID)
		assert.Equal(t, "2026-03-31", v.StartDate)
		assert.Equal(t, "2026-04-05", v.EndDate)
		assert.Equal(t, "Annual leave", v.Reason)

		again, err := p.EnsureVacation(ctx, owner, AnnualLeave)
		require.NoError(t, err)
		assert.Same(t, v, again)
	})
}

func TestEnsureVacationRequiresAuthenticatedOwner(t *testing.T) {
	withProvisioner(t, fakebackend.Options{}, func(p *Provisioner, _ *fakebackend.Backend) {
		_, err := p.EnsureVacation(context.Background(), p.admin.NewSibling(), AnnualLeave)
		assert.ErrorIs(t, err, ErrNotProvisioned)
	})
}

func TestEnsureVacationRejectsNonPendingCreation(t *testing.T) {
	login := httphelpers.HandlerWithJSONResponse(map[string]interface{}{
		"access_token": "t", "user": map[string]interface{}{"id": "u1", "role": "police"},
	}, nil)
	created := httphelpers.HandlerWithJSONResponse(map[string]interface{}{
		"id": "v1", "start_date": "2026-03-31", "end_date": "2026-04-05", "reason": "x", "status": "approved",
	}, nil)
	handler := httphelpers.HandlerForPath(servicedef.PathLogin, login, created)
	httphelpers.WithServer(handler, func(server *httptest.Server) {
		owner := client.NewSession(client.Config{BaseURL: server.URL})
		require.NoError(t, owner.Authenticate(context.Background(), client.Credentials{Email: "u@example.com"}))
		p := NewProvisioner(owner)

		_, err := p.EnsureVacation(context.Background(), owner, AnnualLeave)
		var setupErr *SetupError
		require.True(t, errors.As(err, &setupErr))
		assert.Equal(t, KindVacationRequest, setupErr.Fixture)
		assert.Contains(t, setupErr.Reason, "expected pending")
	})
}

func TestAuthenticateFirstAdminSkipsNonAdminCandidates(t *testing.T) {
	backend := fakebackend.New(fakebackend.Options{})
	backend.AddUser("admin@example.com", "AdminTest123!", servicedef.RolePolice)
	backend.AddUser("admin@stadtwache.com", "admin123", servicedef.RoleAdmin)
	httphelpers.WithServer(backend.Handler(), func(server *httptest.Server) {
		s := client.NewSession(client.Config{BaseURL: server.URL + "/api"})
		creds, err := AuthenticateFirstAdmin(context.Background(), s, ReuseCandidates)
		require.NoError(t, err)
		assert.Equal(t, "admin@stadtwache.com", creds.Email)
		assert.True(t, s.IsAdmin())
	})
}

func TestAuthenticateFirstAdminFailsWithoutAdmin(t *testing.T) {
	backend := fakebackend.New(fakebackend.Options{})
	backend.AddUser("admin@test.com", "password", servicedef.RolePolice)
	httphelpers.WithServer(backend.Handler(), func(server *httptest.Server) {
		s := client.NewSession(client.Config{BaseURL: server.URL + "/api"})
		_, err := AuthenticateFirstAdmin(context.Background(), s, ReuseCandidates)
		assert.ErrorIs(t, err, ErrNoAdminCandidate)
		assert.False(t, s.Authenticated())
	})
}

func TestParseStrategy(t *testing.T) {
	s, err := ParseStrategy("")
	require.NoError(t, err)
	assert.Equal(t, Bootstrap, s)

	s, err = ParseStrategy("Reuse")
	require.NoError(t, err)
	assert.Equal(t, ReuseSession, s)
	assert.False(t, s.Provisions())

	_, err = ParseStrategy("other")
	assert.Error(t, err)
}

func TestIsAlreadyExists(t *testing.T) {
	assert.True(t, isAlreadyExists(&client.Response{StatusCode: http.StatusConflict}))
	assert.True(t, isAlreadyExists(&client.Response{StatusCode: 400, Body: []byte(`{"detail":"Users already exist"}`)}))
	assert.False(t, isAlreadyExists(&client.Response{StatusCode: 400, Body: []byte(`{"detail":"bad"}`)}))
	assert.False(t, isAlreadyExists(&client.Response{StatusCode: 500, Body: []byte(`already exists`)}))
}
