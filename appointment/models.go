package appointment

import "time"

// Status is the lifecycle state of an appointment request.
type Status string

const (
	StatusPending   Status = "Pending"
	StatusApproved  Status = "Approved"
	StatusRejected  Status = "Rejected"
	StatusWithdrawn Status = "Withdrawn"
)

// Request mirrors the appointments table. Student and coordinator names are
// snapshots taken at creation time; they are not re-synced if the profile
// changes later.
type Request struct {
	ID              string
	StudentID       string
	StudentNumber   string
	StudentName     string
	CoordinatorID   string
	CoordinatorName string
	Purpose         string
	Date            string
	Time            string
	Status          Status
	SuggestedDate   string
	SuggestedTime   string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// CreateParams contains the student-supplied fields of a new request. The
// denormalized party snapshots are filled in by the service.
type CreateParams struct {
	CoordinatorID string `json:"coordinator_id"`
	Purpose       string `json:"purpose"`
	Date          string `json:"date"`
	Time          string `json:"time"`
}

// PartySnapshot is the slice of a profile copied onto a request at creation.
type PartySnapshot struct {
	ID            string
	Role          string
	Name          string
	StudentNumber string
}
