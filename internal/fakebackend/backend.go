// Package fakebackend is an in-memory imitation of the backend's admin API, for testing the harness
// itself. It implements the happy path of every endpoint the admin tests use, and Options can make
// it misbehave in specific ways.
package fakebackend

import (
	"encoding/json"
	"net/http"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/stadtwache/admin-contract-tests/servicedef"
)

// Options change how the fake behaves. The zero value is a well-behaved backend.
type Options struct {
	// UnauthenticatedStatus is returned to requests without a bearer token. Default 403.
	UnauthenticatedStatus int

	// ConflictOnReapproval makes approving a terminal vacation request return 409 instead of
	// echoing the unchanged request.
	ConflictOnReapproval bool

	// ApproveIgnoresAction makes every approval set the status to approved.
	ApproveIgnoresAction bool

	// ApproveRewritesRequest makes every decision overwrite the request's end date with its start
	// date and its reason with the admin's comment.
	ApproveRewritesRequest bool

	// OmitAttendanceField is a field left out of every attendance record.
	OmitAttendanceField string

	// AcceptInvalidTeamStatus makes the status update store any value.
	AcceptInvalidTeamStatus bool

	// ForceStatus makes requests to the given "METHOD /path" (path relative to /api, with ids
	// replaced by {id}) return the given status and no body.
	ForceStatus map[string]int

	// NoAttendance makes the attendance list empty.
	NoAttendance bool
}

type user struct {
	servicedef.User
	Password string
	TeamID   string
}

type team struct {
	ID         string
	Name       string
	DistrictID string
	Status     string
}

// Backend holds the fake's state.
type Backend struct {
	opts      Options
	lock      sync.Mutex
	users     map[string]*user
	tokens    map[string]*user
	districts map[string]servicedef.District
	teams     map[string]*team
	vacations map[string]*servicedef.Vacation
	order     []string
}

func New(opts Options) *Backend {
	if opts.UnauthenticatedStatus == 0 {
		opts.UnauthenticatedStatus = http.StatusForbidden
	}
	return &Backend{
		opts:      opts,
		users:     make(map[string]*user),
		tokens:    make(map[string]*user),
		districts: make(map[string]servicedef.District),
		teams:     make(map[string]*team),
		vacations: make(map[string]*servicedef.Vacation),
	}
}

// AddUser creates an account directly, bypassing the API.
func (b *Backend) AddUser(email, password string, role servicedef.Role) {
	b.lock.Lock()
	defer b.lock.Unlock()
	b.users[email] = &user{
		User:     servicedef.User{ID: uuid.NewString(), Email: email, Username: email, Role: role},
		Password: password,
	}
}

// TeamStatus returns the stored status of the named team.
func (b *Backend) TeamStatus(name string) string {
	b.lock.Lock()
	defer b.lock.Unlock()
	for _, t := range b.teams {
		if t.Name == name {
			return t.Status
		}
	}
	return ""
}

// Handler returns the API, mounted under /api.
func (b *Backend) Handler() http.Handler {
	r := chi.NewRouter()
	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"message": "fake backend"})
	})
	r.Route("/api", func(r chi.Router) {
		r.Use(b.forcedStatus)
		r.Post(servicedef.PathCreateFirstUser, b.createFirstUser)
		r.Post(servicedef.PathLogin, b.login)
		r.Post(servicedef.PathRegister, b.register)
		r.With(b.authenticated).Post(servicedef.PathVacations, b.createVacation)
		r.Group(func(r chi.Router) {
			r.Use(b.authenticated, b.adminOnly)
			r.Get(servicedef.PathDistricts, b.listDistricts)
			r.Post(servicedef.PathDistricts, b.createDistrict)
			r.Post(servicedef.PathTeams, b.createTeam)
			r.Put(servicedef.PathTeams+"/{id}/status", b.updateTeamStatus)
			r.Get(servicedef.PathAdminVacations, b.listVacations)
			r.Put(servicedef.PathAdminVacations+"/{id}/approve", b.approveVacation)
			r.Get(servicedef.PathAttendance, b.listAttendance)
			r.Get(servicedef.PathTeamStatus, b.listTeamStatus)
		})
	})
	return r
}

func (b *Backend) forcedStatus(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Method + " " + routeOf(strings.TrimPrefix(r.URL.Path, "/api"))
		if status, ok := b.opts.ForceStatus[key]; ok {
			w.WriteHeader(status)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func routeOf(path string) string {
	segments := strings.Split(path, "/")
	for i, s := range segments {
		if i > 0 && (segments[i-1] == "teams" || segments[i-1] == "vacations") && s != "" && i < len(segments)-1 {
			segments[i] = "{id}"
		}
	}
	return strings.Join(segments, "/")
}

func (b *Backend) authenticated(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			writeDetail(w, b.opts.UnauthenticatedStatus, "Not authenticated")
			return
		}
		b.lock.Lock()
		u := b.tokens[strings.TrimPrefix(header, "Bearer ")]
		b.lock.Unlock()
		if u == nil {
			writeDetail(w, http.StatusUnauthorized, "Could not validate credentials")
			return
		}
		next.ServeHTTP(w, r.WithContext(withUser(r.Context(), u)))
	})
}

func (b *Backend) adminOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if userFrom(r.Context()).Role != servicedef.RoleAdmin {
			writeDetail(w, http.StatusForbidden, "Admin access required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (b *Backend) createFirstUser(w http.ResponseWriter, r *http.Request) {
	var params servicedef.CreateFirstUserParams
	if !readJSON(w, r, &params) {
		return
	}
	b.lock.Lock()
	defer b.lock.Unlock()
	if len(b.users) > 0 {
		writeDetail(w, http.StatusBadRequest, "Users already exist. Use regular registration.")
		return
	}
	u := &user{
		User:     servicedef.User{ID: uuid.NewString(), Email: params.Email, Username: params.Username, Role: params.Role},
		Password: params.Password,
	}
	b.users[params.Email] = u
	writeJSON(w, http.StatusOK, u.User)
}

func (b *Backend) login(w http.ResponseWriter, r *http.Request) {
	var params servicedef.LoginParams
	if !readJSON(w, r, &params) {
		return
	}
	b.lock.Lock()
	defer b.lock.Unlock()
	u := b.users[params.Email]
	if u == nil || u.Password != params.Password {
		writeDetail(w, http.StatusUnauthorized, "Incorrect email or password")
		return
	}
	token := uuid.NewString()
	b.tokens[token] = u
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"access_token": token,
		"token_type":   "bearer",
		"user":         u.User,
	})
}

func (b *Backend) register(w http.ResponseWriter, r *http.Request) {
	var params servicedef.RegisterParams
	if !readJSON(w, r, &params) {
		return
	}
	b.lock.Lock()
	defer b.lock.Unlock()
	if _, exists := b.users[params.Email]; exists {
		writeDetail(w, http.StatusBadRequest, "User already exists")
		return
	}
	u := &user{
		User:     servicedef.User{ID: uuid.NewString(), Email: params.Email, Username: params.Username, Role: params.Role},
		Password: params.Password,
	}
	b.users[params.Email] = u
	writeJSON(w, http.StatusOK, u.User)
}

func (b *Backend) createVacation(w http.ResponseWriter, r *http.Request) {
	var params servicedef.CreateVacationParams
	if !readJSON(w, r, &params) {
		return
	}
	u := userFrom(r.Context())
	b.lock.Lock()
	defer b.lock.Unlock()
	v := &servicedef.Vacation{
		ID:        uuid.NewString(),
		UserID:    u.ID,
		UserName:  u.Username,
		StartDate: params.StartDate,
		EndDate:   params.EndDate,
		Reason:    params.Reason,
		Status:    servicedef.VacationPending,
	}
	b.vacations[v.ID] = v
	b.order = append(b.order, v.ID)
	writeJSON(w, http.StatusOK, v)
}

func (b *Backend) listVacations(w http.ResponseWriter, _ *http.Request) {
	b.lock.Lock()
	defer b.lock.Unlock()
	list := make([]servicedef.Vacation, 0, len(b.order))
	for _, id := range b.order {
		list = append(list, *b.vacations[id])
	}
	writeJSON(w, http.StatusOK, list)
}

func (b *Backend) approveVacation(w http.ResponseWriter, r *http.Request) {
	var params servicedef.ApproveVacationParams
	if !readJSON(w, r, &params) {
		return
	}
	if params.Action != servicedef.ActionApprove && params.Action != servicedef.ActionReject {
		writeDetail(w, http.StatusBadRequest, "Invalid action")
		return
	}
	b.lock.Lock()
	defer b.lock.Unlock()
	v := b.vacations[chi.URLParam(r, "id")]
	if v == nil {
		writeDetail(w, http.StatusNotFound, "Vacation request not found")
		return
	}
	if v.Status.IsTerminal() {
		if b.opts.ConflictOnReapproval {
			writeDetail(w, http.StatusConflict, "Vacation request already processed")
			return
		}
		writeJSON(w, http.StatusOK, v)
		return
	}
	if b.opts.ApproveIgnoresAction {
		v.Status = servicedef.VacationApproved
	} else {
		v.Status = params.Action.TargetStatus()
	}
	if b.opts.ApproveRewritesRequest {
		v.EndDate = v.StartDate
		v.Reason = params.Reason
	}
	writeJSON(w, http.StatusOK, v)
}

func (b *Backend) listDistricts(w http.ResponseWriter, _ *http.Request) {
	b.lock.Lock()
	defer b.lock.Unlock()
	list := make([]servicedef.District, 0, len(b.districts))
	for _, d := range b.districts {
		list = append(list, d)
	}
	writeJSON(w, http.StatusOK, list)
}

func (b *Backend) createDistrict(w http.ResponseWriter, r *http.Request) {
	var params servicedef.CreateDistrictParams
	if !readJSON(w, r, &params) {
		return
	}
	b.lock.Lock()
	defer b.lock.Unlock()
	for _, d := range b.districts {
		if d.Name == params.Name {
			writeDetail(w, http.StatusConflict, "District already exists")
			return
		}
	}
	d := servicedef.District{ID: uuid.NewString(), Name: params.Name, AreaDescription: params.AreaDescription}
	b.districts[d.ID] = d
	writeJSON(w, http.StatusOK, d)
}

func (b *Backend) createTeam(w http.ResponseWriter, r *http.Request) {
	var params servicedef.CreateTeamParams
	if !readJSON(w, r, &params) {
		return
	}
	b.lock.Lock()
	defer b.lock.Unlock()
	if _, ok := b.districts[params.DistrictID]; !ok {
		writeDetail(w, http.StatusNotFound, "District not found")
		return
	}
	for _, t := range b.teams {
		if t.Name == params.Name {
			writeDetail(w, http.StatusConflict, "Team already exists")
			return
		}
	}
	t := &team{ID: uuid.NewString(), Name: params.Name, DistrictID: params.DistrictID, Status: servicedef.TeamStatusReady}
	b.teams[t.ID] = t
	writeJSON(w, http.StatusOK, servicedef.Team{ID: t.ID, Name: t.Name, DistrictID: t.DistrictID, Status: t.Status})
}

func (b *Backend) updateTeamStatus(w http.ResponseWriter, r *http.Request) {
	var params servicedef.UpdateTeamStatusParams
	if !readJSON(w, r, &params) {
		return
	}
	b.lock.Lock()
	defer b.lock.Unlock()
	t := b.teams[chi.URLParam(r, "id")]
	if t == nil {
		writeDetail(w, http.StatusNotFound, "Team not found")
		return
	}
	if !b.opts.AcceptInvalidTeamStatus && !isAllowedTeamStatus(params.Status) {
		writeDetail(w, http.StatusBadRequest, "Invalid status")
		return
	}
	t.Status = params.Status
	writeJSON(w, http.StatusOK, servicedef.GenericSuccess{Status: servicedef.GenericSuccessStatus})
}

func (b *Backend) listTeamStatus(w http.ResponseWriter, _ *http.Request) {
	b.lock.Lock()
	defer b.lock.Unlock()
	list := make([]map[string]interface{}, 0, len(b.teams))
	for _, t := range b.teams {
		members := []map[string]interface{}{}
		for _, u := range b.users {
			if u.TeamID == t.ID {
				members = append(members, map[string]interface{}{"id": u.ID, "username": u.Username})
			}
		}
		list = append(list, map[string]interface{}{
			"id":           t.ID,
			"name":         t.Name,
			"status":       t.Status,
			"district":     b.districts[t.DistrictID].Name,
			"members":      members,
			"member_count": len(members),
		})
	}
	writeJSON(w, http.StatusOK, list)
}

func (b *Backend) listAttendance(w http.ResponseWriter, _ *http.Request) {
	b.lock.Lock()
	defer b.lock.Unlock()
	list := make([]map[string]interface{}, 0, len(b.users))
	if !b.opts.NoAttendance {
		for _, u := range b.users {
			record := map[string]interface{}{
				"id":       u.ID,
				"username": u.Username,
				"status":   "Anwesend",
				"team":     "Nicht zugewiesen",
				"district": "Nicht zugewiesen",
			}
			delete(record, b.opts.OmitAttendanceField)
			list = append(list, record)
		}
	}
	writeJSON(w, http.StatusOK, list)
}

func isAllowedTeamStatus(status string) bool {
	for _, s := range servicedef.AllowedTeamStatuses {
		if s == status {
			return true
		}
	}
	return false
}

func readJSON(w http.ResponseWriter, r *http.Request, target interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(target); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, err.Error())
		return false
	}
	return true
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	data, _ := json.Marshal(body)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}
