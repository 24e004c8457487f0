// Package fixtures creates the entities that the admin tests need to exist before they run:
// accounts, districts, teams and vacation requests.
package fixtures

import (
	"errors"
	"fmt"

	"github.com/stadtwache/admin-contract-tests/client"
	"github.com/stadtwache/admin-contract-tests/servicedef"
)

type Kind int

const (
	KindIdentity Kind = iota
	KindDistrict
	KindTeam
	KindVacationRequest
)

func (k Kind) String() string {
	switch k {
	case KindIdentity:
		return "identity"
	case KindDistrict:
		return "district"
	case KindTeam:
		return "team"
	case KindVacationRequest:
		return "vacation request"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Fixture is an entity created on the backend. Which attributes are set depends on Kind.
//
// ID is assigned by the backend and never changes. A Fixture whose ID is empty has not been
// provisioned and must not be referenced.
type Fixture struct {
	Kind Kind
	ID   string

	// Name is the identity's email, or the district or team name.
	Name string

	// Identity
	Credentials client.Credentials
	Role        servicedef.Role

	// Team
	DistrictID string

	// VacationRequest
	OwnerID   string
	StartDate string
	EndDate   string
	Reason    string
	Status    servicedef.VacationStatus
}

func (f *Fixture) Provisioned() bool {
	return f != nil && f.ID != ""
}

func (f *Fixture) String() string {
	if f == nil {
		return "<nil fixture>"
	}
	if f.ID == "" {
		return fmt.Sprintf("%s %q (not provisioned)", f.Kind, f.Name)
	}
	return fmt.Sprintf("%s %q (%s)", f.Kind, f.Name, f.ID)
}

// SetupError means the backend refused to create a fixture. It is fatal for the run.
type SetupError struct {
	Fixture Kind
	Status  int
	Body    string

	// Reason is set when the backend accepted the request but the result was unusable.
	Reason string
}

func (e *SetupError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("could not provision %s: %s", e.Fixture, e.Reason)
	}
	return fmt.Sprintf("could not provision %s: status %d: %s", e.Fixture, e.Status, e.Body)
}

// ErrNotProvisioned is returned when a fixture depends on another one that has no ID yet.
var ErrNotProvisioned = errors.New("prerequisite fixture is not provisioned")
