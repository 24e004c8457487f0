package servicedef

import "time"

// DateFormat is the layout of start_date and end_date.
const DateFormat = "2006-01-02"

type VacationStatus string

const (
	VacationPending  VacationStatus = "pending"
	VacationApproved VacationStatus = "approved"
	VacationRejected VacationStatus = "rejected"
)

// IsTerminal is true for statuses beyond which no transition is defined.
func (s VacationStatus) IsTerminal() bool {
	return s == VacationApproved || s == VacationRejected
}

type ApprovalAction string

const (
	ActionApprove ApprovalAction = "approve"
	ActionReject  ApprovalAction = "reject"
)

// TargetStatus is the status a pending request should have after the action.
func (a ApprovalAction) TargetStatus() VacationStatus {
	if a == ActionReject {
		return VacationRejected
	}
	return VacationApproved
}

type CreateVacationParams struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Reason    string `json:"reason"`
}

// NewVacationParams builds a request starting startInDays days from now and lasting until
// endInDays days from now.
func NewVacationParams(now time.Time, startInDays, endInDays int, reason string) CreateVacationParams {
	return CreateVacationParams{
		StartDate: now.AddDate(0, 0, startInDays).Format(DateFormat),
		EndDate:   now.AddDate(0, 0, endInDays).Format(DateFormat),
		Reason:    reason,
	}
}

type ApproveVacationParams struct {
	Action ApprovalAction `json:"action"`
	Reason string         `json:"reason,omitempty"`
}

type Vacation struct {
	ID        string         `json:"id"`
	UserID    string         `json:"user_id,omitempty"`
	UserName  string         `json:"user_name,omitempty"`
	StartDate string         `json:"start_date"`
	EndDate   string         `json:"end_date"`
	Reason    string         `json:"reason"`
	Status    VacationStatus `json:"status"`
}
