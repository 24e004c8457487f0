package fixtures

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/stadtwache/admin-contract-tests/client"
	"github.com/stadtwache/admin-contract-tests/servicedef"
)

// Strategy says how the admin session and the fixtures come into existence.
type Strategy int

const (
	// Bootstrap creates the first admin if needed, logs in as it, and provisions every fixture.
	Bootstrap Strategy = iota

	// ReuseSession logs in with an admin account that already exists and provisions nothing.
	// Tests that need fixtures are skipped.
	ReuseSession
)

func (s Strategy) String() string {
	if s == ReuseSession {
		return "reuse"
	}
	return "bootstrap"
}

// Provisions is true if the strategy creates fixtures.
func (s Strategy) Provisions() bool {
	return s == Bootstrap
}

func ParseStrategy(value string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "bootstrap":
		return Bootstrap, nil
	case "reuse", "reuse-session":
		return ReuseSession, nil
	default:
		return Bootstrap, fmt.Errorf("unknown fixture strategy %q (expected bootstrap or reuse)", value)
	}
}

// BootstrapAdmin is the account that Bootstrap creates with POST /admin/create-first-user.
var BootstrapAdmin = servicedef.CreateFirstUserParams{
	Email:    "admin@example.com",
	Username: "TestAdmin",
	Password: "AdminTest123!",
	Role:     servicedef.RoleAdmin,
}

// ReuseCandidates are the admin accounts that ReuseSession tries, in order.
var ReuseCandidates = []client.Credentials{
	{Email: "admin@example.com", Password: "AdminTest123!"},
	{Email: "admin@stadtwache.com", Password: "admin123"},
	{Email: "admin@test.com", Password: "password"},
}

// ErrNoAdminCandidate means none of the candidate accounts could log in with the admin role.
var ErrNoAdminCandidate = errors.New("no candidate account logged in with the admin role")

// AuthenticateFirstAdmin tries each candidate in order and keeps the first login whose identity has
// the admin role. A candidate that logs in without that role is logged out again.
func AuthenticateFirstAdmin(ctx context.Context, session *client.Session, candidates []client.Credentials) (client.Credentials, error) {
	var errs []string
	for _, c := range candidates {
		err := session.Authenticate(ctx, c)
		if err != nil {
			if client.IsTransportError(err) {
				return client.Credentials{}, err
			}
			errs = append(errs, fmt.Sprintf("%s: %s", c.Email, err))
			continue
		}
		if session.IsAdmin() {
			return c, nil
		}
		errs = append(errs, fmt.Sprintf("%s: role is %q", c.Email, session.Identity().Role))
		session.Logout()
	}
	return client.Credentials{}, fmt.Errorf("%w (%s)", ErrNoAdminCandidate, strings.Join(errs, "; "))
}
