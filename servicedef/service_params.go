// Package servicedef describes the HTTP/JSON contract of the backend's admin API: paths, request
// bodies, response records and enumerated values.
package servicedef

const (
	PathCreateFirstUser = "/admin/create-first-user"
	PathLogin           = "/auth/login"
	PathRegister        = "/auth/register"
	PathVacations       = "/vacations"
	PathDistricts       = "/admin/districts"
	PathTeams           = "/admin/teams"
	PathAdminVacations  = "/admin/vacations"
	PathAttendance      = "/admin/attendance"
	PathTeamStatus      = "/admin/team-status"
)

// PathApproveVacation is PUT /admin/vacations/{id}/approve.
func PathApproveVacation(vacationID string) string {
	return PathAdminVacations + "/" + vacationID + "/approve"
}

// PathTeamStatusUpdate is PUT /admin/teams/{id}/status.
func PathTeamStatusUpdate(teamID string) string {
	return PathTeams + "/" + teamID + "/status"
}

// AdminListPaths are the admin-scoped GET endpoints that return sequences.
var AdminListPaths = []string{
	PathAdminVacations,
	PathAttendance,
	PathTeamStatus,
}

type Role string

const (
	RoleAdmin  Role = "admin"
	RolePolice Role = "police"
)

type CreateFirstUserParams struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
	Role     Role   `json:"role"`
}

type LoginParams struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	AccessToken string `json:"access_token"`
	User        User   `json:"user"`
}

type RegisterParams struct {
	Email       string `json:"email"`
	Username    string `json:"username"`
	Password    string `json:"password"`
	Role        Role   `json:"role"`
	BadgeNumber string `json:"badge_number"`
	Department  string `json:"department"`
}

type User struct {
	ID       string `json:"id"`
	Email    string `json:"email,omitempty"`
	Username string `json:"username,omitempty"`
	Role     Role   `json:"role"`
}

type CreateDistrictParams struct {
	Name            string `json:"name"`
	AreaDescription string `json:"area_description"`
}

type District struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	AreaDescription string `json:"area_description,omitempty"`
}

type CreateTeamParams struct {
	Name       string `json:"name"`
	DistrictID string `json:"district_id"`
}

type Team struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	DistrictID string `json:"district_id,omitempty"`
	Status     string `json:"status,omitempty"`
}

// TeamStatusRecord is one element of GET /admin/team-status. Only the fields the harness reads
// back are decoded; the rest of the record is checked against the schema.
type TeamStatusRecord struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Status   string `json:"status"`
	District string `json:"district"`
}

type UpdateTeamStatusParams struct {
	Status string `json:"status"`
}

// GenericSuccess is the body of a successful team status update. It says nothing about the team.
type GenericSuccess struct {
	Status string `json:"status"`
}

const GenericSuccessStatus = "success"

const (
	TeamStatusReady       = "Einsatzbereit"
	TeamStatusOnDuty      = "Im Einsatz"
	TeamStatusBreak       = "Pause"
	TeamStatusUnavailable = "Nicht verfügbar"
)

// AllowedTeamStatuses is the enumeration accepted by PUT /admin/teams/{id}/status.
var AllowedTeamStatuses = []string{
	TeamStatusReady,
	TeamStatusOnDuty,
	TeamStatusBreak,
	TeamStatusUnavailable,
}
