package fixtures

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/stadtwache/admin-contract-tests/client"
	"github.com/stadtwache/admin-contract-tests/servicedef"
)

// IdentitySpec describes an account to register.
type IdentitySpec struct {
	Email       string
	Username    string
	Password    string
	Role        servicedef.Role
	BadgeNumber string
	Department  string
}

// NewPatrolOfficer returns a police account with a unique email and username.
func NewPatrolOfficer() IdentitySpec {
	suffix := uuid.NewString()[:8]
	return IdentitySpec{
		Email:       "testuser-" + suffix + "@example.com",
		Username:    "TestUser-" + suffix,
		Password:    "TestUser123!",
		Role:        servicedef.RolePolice,
		BadgeNumber: "T001",
		Department:  "Patrol",
	}
}

type DistrictSpec struct {
	Name            string
	AreaDescription string
}

var DefaultDistrict = DistrictSpec{
	Name:            "Test Bezirk Nord",
	AreaDescription: "Nördlicher Stadtbereich für Tests",
}

type TeamSpec struct {
	Name     string
	District *Fixture
}

const DefaultTeamName = "Test Team Alpha"

// VacationSpec describes a vacation request relative to the day it is created.
type VacationSpec struct {
	StartInDays int
	EndInDays   int
	Reason      string
}

var (
	AnnualLeave = VacationSpec{StartInDays: 30, EndInDays: 35, Reason: "Annual leave"}
	ShortLeave  = VacationSpec{StartInDays: 40, EndInDays: 42, Reason: "Jahresurlaub"}
)

type teamKey struct {
	name       string
	districtID string
}

type vacationKey struct {
	ownerID string
	spec    VacationSpec
}

// Provisioner creates fixtures through an admin session. Each Ensure method is idempotent within
// one Provisioner: asking again for an identical spec returns the fixture from the first call.
type Provisioner struct {
	admin      *client.Session
	now        func() time.Time
	identities map[string]*Fixture
	districts  map[DistrictSpec]*Fixture
	teams      map[teamKey]*Fixture
	vacations  map[vacationKey]*Fixture
}

// NewProvisioner returns a Provisioner that creates fixtures through admin. Progress is logged to
// the admin session's Logger.
func NewProvisioner(admin *client.Session) *Provisioner {
	return &Provisioner{
		admin:      admin,
		now:        time.Now,
		identities: make(map[string]*Fixture),
		districts:  make(map[DistrictSpec]*Fixture),
		teams:      make(map[teamKey]*Fixture),
		vacations:  make(map[vacationKey]*Fixture),
	}
}

// EnsureAdmin creates the first admin account. If the backend says it already exists, that is not
// an error; the caller logs in with the same credentials either way.
func (p *Provisioner) EnsureAdmin(ctx context.Context, params servicedef.CreateFirstUserParams) error {
	resp, err := p.admin.Do(ctx, p.admin.WithoutAuth(), http.MethodPost, servicedef.PathCreateFirstUser, params)
	if err != nil {
		return err
	}
	switch {
	case resp.IsSuccess():
		p.admin.Logger().Printf("Created admin %s", params.Email)
		return nil
	case isAlreadyExists(resp):
		p.admin.Logger().Printf("Admin already exists (status %d), continuing with login", resp.StatusCode)
		return nil
	default:
		return &SetupError{Fixture: KindIdentity, Status: resp.StatusCode, Body: resp.BodyString()}
	}
}

// EnsureIdentity registers an account. The returned fixture has an ID only if the backend echoed
// the created user; Login fills it in otherwise.
func (p *Provisioner) EnsureIdentity(ctx context.Context, spec IdentitySpec) (*Fixture, error) {
	if f, ok := p.identities[spec.Email]; ok {
		return f, nil
	}
	params := servicedef.RegisterParams{
		Email:       spec.Email,
		Username:    spec.Username,
		Password:    spec.Password,
		Role:        spec.Role,
		BadgeNumber: spec.BadgeNumber,
		Department:  spec.Department,
	}
	resp, err := p.admin.Post(ctx, servicedef.PathRegister, params)
	if err != nil {
		return nil, err
	}
	if !resp.IsSuccess() && !isAlreadyExists(resp) {
		return nil, &SetupError{Fixture: KindIdentity, Status: resp.StatusCode, Body: resp.BodyString()}
	}
	f := &Fixture{
		Kind:        KindIdentity,
		Name:        spec.Email,
		Credentials: client.Credentials{Email: spec.Email, Password: spec.Password},
		Role:        spec.Role,
	}
	if resp.IsSuccess() {
		var user servicedef.User
		if resp.Decode(&user) == nil {
			f.ID = user.ID
		}
	}
	p.identities[spec.Email] = f
	p.admin.Logger().Printf("Registered %s", f)
	return f, nil
}

// Login returns a new session authenticated as the identity, sharing the admin session's transport
// settings. If the identity's ID was not known yet, it is taken from the login response.
func (p *Provisioner) Login(ctx context.Context, identity *Fixture) (*client.Session, error) {
	s := p.admin.NewSibling()
	if err := s.Authenticate(ctx, identity.Credentials); err != nil {
		return nil, err
	}
	if identity.ID == "" {
		identity.ID = s.Identity().ID
	}
	return s, nil
}

// EnsureDistrict creates a district, or finds the existing one with the same name if the backend
// reports a conflict.
func (p *Provisioner) EnsureDistrict(ctx context.Context, spec DistrictSpec) (*Fixture, error) {
	if f, ok := p.districts[spec]; ok {
		return f, nil
	}
	params := servicedef.CreateDistrictParams{Name: spec.Name, AreaDescription: spec.AreaDescription}
	resp, err := p.admin.Post(ctx, servicedef.PathDistricts, params)
	if err != nil {
		return nil, err
	}
	f := &Fixture{Kind: KindDistrict, Name: spec.Name}
	switch {
	case resp.IsSuccess():
		f.ID = resp.JSON().GetByKey("id").StringValue()
	case isAlreadyExists(resp):
		id, err := p.findDistrict(ctx, spec.Name)
		if err != nil {
			return nil, err
		}
		f.ID = id
	default:
		return nil, &SetupError{Fixture: KindDistrict, Status: resp.StatusCode, Body: resp.BodyString()}
	}
	if f.ID == "" {
		return nil, &SetupError{Fixture: KindDistrict, Status: resp.StatusCode, Body: resp.BodyString(),
			Reason: "no id for district " + spec.Name}
	}
	p.districts[spec] = f
	p.admin.Logger().Printf("Provisioned %s", f)
	return f, nil
}

// EnsureTeam creates a team in a district that has already been provisioned.
func (p *Provisioner) EnsureTeam(ctx context.Context, spec TeamSpec) (*Fixture, error) {
	if !spec.District.Provisioned() {
		return nil, ErrNotProvisioned
	}
	key := teamKey{name: spec.Name, districtID: spec.District.ID}
	if f, ok := p.teams[key]; ok {
		return f, nil
	}
	params := servicedef.CreateTeamParams{Name: spec.Name, DistrictID: spec.District.ID}
	resp, err := p.admin.Post(ctx, servicedef.PathTeams, params)
	if err != nil {
		return nil, err
	}
	f := &Fixture{Kind: KindTeam, Name: spec.Name, DistrictID: spec.District.ID}
	switch {
	case resp.IsSuccess():
		f.ID = resp.JSON().GetByKey("id").StringValue()
	case isAlreadyExists(resp):
		id, err := p.findTeam(ctx, spec.Name, spec.District.Name)
		if err != nil {
			return nil, err
		}
		f.ID = id
	default:
		return nil, &SetupError{Fixture: KindTeam, Status: resp.StatusCode, Body: resp.BodyString()}
	}
	if f.ID == "" {
		return nil, &SetupError{Fixture: KindTeam, Status: resp.StatusCode, Body: resp.BodyString(),
			Reason: "no id for team " + spec.Name}
	}
	p.teams[key] = f
	p.admin.Logger().Printf("Provisioned %s", f)
	return f, nil
}

// EnsureVacation submits a vacation request as owner. The backend must create it as pending.
func (p *Provisioner) EnsureVacation(ctx context.Context, owner *client.Session, spec VacationSpec) (*Fixture, error) {
	if owner == nil || !owner.Authenticated() {
		return nil, ErrNotProvisioned
	}
	key := vacationKey{ownerID: owner.Identity().ID, spec: spec}
	if f, ok := p.vacations[key]; ok {
		return f, nil
	}
	params := servicedef.NewVacationParams(p.now(), spec.StartInDays, spec.EndInDays, spec.Reason)
	resp, err := owner.Post(ctx, servicedef.PathVacations, params)
	if err != nil {
		return nil, err
	}
	if !resp.IsSuccess() {
		return nil, &SetupError{Fixture: KindVacationRequest, Status: resp.StatusCode, Body: resp.BodyString()}
	}
	var v servicedef.Vacation
	if err := resp.Decode(&v); err != nil {
		return nil, &SetupError{Fixture: KindVacationRequest, Status: resp.StatusCode, Body: resp.BodyString(), Reason: err.Error()}
	}
	if v.ID == "" {
		return nil, &SetupError{Fixture: KindVacationRequest, Status: resp.StatusCode, Body: resp.BodyString(),
			Reason: "created vacation request has no id"}
	}
	if v.Status != servicedef.VacationPending {
		return nil, &SetupError{Fixture: KindVacationRequest, Status: resp.StatusCode, Body: resp.BodyString(),
			Reason: "new vacation request has status " + string(v.Status) + ", expected pending"}
	}
	f := &Fixture{
		Kind:      KindVacationRequest,
		ID:        v.ID,
		Name:      spec.Reason,
		OwnerID:   owner.Identity().ID,
		StartDate: params.StartDate,
		EndDate:   params.EndDate,
		Reason:    params.Reason,
		Status:    v.Status,
	}
	p.vacations[key] = f
	p.admin.Logger().Printf("Provisioned %s", f)
	return f, nil
}

// findDistrict looks up the id of the district whose "name" matches.
func (p *Provisioner) findDistrict(ctx context.Context, name string) (string, error) {
	resp, err := p.admin.Get(ctx, servicedef.PathDistricts)
	if err != nil {
		return "", err
	}
	if !resp.IsSuccess() {
		return "", &SetupError{Fixture: KindDistrict, Status: resp.StatusCode, Body: resp.BodyString()}
	}
	list := resp.JSON()
	for i := 0; i < list.Count(); i++ {
		item := list.GetByIndex(i)
		if item.GetByKey("name").StringValue() == name {
			return item.GetByKey("id").StringValue(), nil
		}
	}
	return "", &SetupError{Fixture: KindDistrict, Status: resp.StatusCode, Body: resp.BodyString(),
		Reason: "backend reported a conflict but no district named " + name + " is listed"}
}

// findTeam looks up an existing team in the team status list. Team names are only unique within
// a district, so the district has to match too.
func (p *Provisioner) findTeam(ctx context.Context, name, districtName string) (string, error) {
	resp, err := p.admin.Get(ctx, servicedef.PathTeamStatus)
	if err != nil {
		return "", err
	}
	if !resp.IsSuccess() {
		return "", &SetupError{Fixture: KindTeam, Status: resp.StatusCode, Body: resp.BodyString()}
	}
	var records []servicedef.TeamStatusRecord
	if err := resp.Decode(&records); err != nil {
		return "", &SetupError{Fixture: KindTeam, Status: resp.StatusCode, Body: resp.BodyString(), Reason: err.Error()}
	}
	for _, r := range records {
		if r.Name == name && r.District == districtName {
			return r.ID, nil
		}
	}
	return "", &SetupError{Fixture: KindTeam, Status: resp.StatusCode, Body: resp.BodyString(),
		Reason: "backend reported a conflict but no team " + name + " is listed in district " + districtName}
}

// isAlreadyExists is true for a conflict response, and for a 400 whose body says the entity
// already exists, which is how the backend reports an existing first admin.
func isAlreadyExists(resp *client.Response) bool {
	if resp.StatusCode == http.StatusConflict {
		return true
	}
	return resp.StatusCode == http.StatusBadRequest &&
		strings.Contains(strings.ToLower(resp.BodyString()), "already exist")
}

// NonexistentID returns an id in the backend's format that no fixture has.
func NonexistentID() string {
	return uuid.NewString()
}
