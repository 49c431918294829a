package appointment

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	// ErrValidation signals missing or invalid user input. Wrapped errors
	// carry the specific cause.
	ErrValidation = errors.New("appointment: invalid input")
	// ErrForbidden signals the actor is not a party to the request.
	ErrForbidden = errors.New("appointment: forbidden")
)

const dateLayout = "2006-01-02"

// Service applies the appointment lifecycle: students create, withdraw and
// delete their own requests; the assigned coordinator approves or rejects.
type Service struct {
	repo Repository
	now  func() time.Time
}

// NewService creates an appointment service.
func NewService(repo Repository) *Service {
	return &Service{
		repo: repo,
		now:  time.Now,
	}
}

// WithClock overrides the clock, for tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Create validates and stores a new Pending request on behalf of the student.
// The student's name and number and the coordinator's name are snapshotted
// onto the request as they are at this moment.
func (s *Service) Create(ctx context.Context, studentID string, params CreateParams) (Request, error) {
	if studentID == "" {
		return Request{}, fmt.Errorf("%w: missing student id", ErrValidation)
	}
	if strings.TrimSpace(params.Purpose) == "" {
		return Request{}, fmt.Errorf("%w: purpose required", ErrValidation)
	}
	if params.CoordinatorID == "" {
		return Request{}, fmt.Errorf("%w: coordinator required", ErrValidation)
	}
	if params.Date == "" || params.Time == "" {
		return Request{}, fmt.Errorf("%w: date and time required", ErrValidation)
	}

	requested, err := time.Parse(dateLayout, params.Date)
	if err != nil {
		return Request{}, fmt.Errorf("%w: invalid date %q", ErrValidation, params.Date)
	}
	today, _ := time.Parse(dateLayout, s.now().Format(dateLayout))
	if requested.Before(today) {
		return Request{}, fmt.Errorf("%w: date is in the past", ErrValidation)
	}

	student, err := s.repo.GetPartySnapshot(ctx, studentID)
	if err != nil {
		return Request{}, err
	}
	coordinator, err := s.repo.GetPartySnapshot(ctx, params.CoordinatorID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Request{}, fmt.Errorf("%w: unknown coordinator", ErrValidation)
		}
		return Request{}, err
	}
	if coordinator.Role != "coordinator" {
		return Request{}, fmt.Errorf("%w: target is not a coordinator", ErrValidation)
	}

	req := Request{
		StudentID:       student.ID,
		StudentNumber:   student.StudentNumber,
		StudentName:     student.Name,
		CoordinatorID:   coordinator.ID,
		CoordinatorName: coordinator.Name,
		Purpose:         strings.TrimSpace(params.Purpose),
		Date:            params.Date,
		Time:            params.Time,
		Status:          StatusPending,
	}

	return s.repo.Create(ctx, req)
}

// Approve moves a Pending request to Approved. Only the assigned coordinator
// may approve.
func (s *Service) Approve(ctx context.Context, id, actorID string) (Request, error) {
	req, err := s.repo.Get(ctx, id)
	if err != nil {
		return Request{}, err
	}
	if req.CoordinatorID != actorID {
		return Request{}, ErrForbidden
	}

	return s.repo.UpdateStatus(ctx, id, StatusApproved, "", "")
}

// Reject moves a Pending request to Rejected and stores the coordinator's
// alternate date and time suggestion. Both suggestion fields are required.
func (s *Service) Reject(ctx context.Context, id, actorID, suggestedDate, suggestedTime string) (Request, error) {
	if strings.TrimSpace(suggestedDate) == "" || strings.TrimSpace(suggestedTime) == "" {
		return Request{}, fmt.Errorf("%w: suggested date and time required", ErrValidation)
	}

	req, err := s.repo.Get(ctx, id)
	if err != nil {
		return Request{}, err
	}
	if req.CoordinatorID != actorID {
		return Request{}, ErrForbidden
	}

	return s.repo.UpdateStatus(ctx, id, StatusRejected, suggestedDate, suggestedTime)
}

// Withdraw moves a Pending request to Withdrawn. Only the owning student may
// withdraw, and only while the request is still Pending.
func (s *Service) Withdraw(ctx context.Context, id, actorID string) (Request, error) {
	req, err := s.repo.Get(ctx, id)
	if err != nil {
		return Request{}, err
	}
	if req.StudentID != actorID {
		return Request{}, ErrForbidden
	}

	return s.repo.UpdateStatus(ctx, id, StatusWithdrawn, "", "")
}

// Delete permanently removes a request. Only the owning student may delete;
// deletion is allowed from any status.
func (s *Service) Delete(ctx context.Context, id, actorID string) error {
	req, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if req.StudentID != actorID {
		return ErrForbidden
	}

	return s.repo.Delete(ctx, id)
}

// Get returns a single request visible to the given actor. Non-parties get
// ErrNotFound rather than ErrForbidden so reads do not leak existence.
func (s *Service) Get(ctx context.Context, id, actorID string) (Request, error) {
	req, err := s.repo.Get(ctx, id)
	if err != nil {
		return Request{}, err
	}
	if req.StudentID != actorID && req.CoordinatorID != actorID {
		return Request{}, ErrNotFound
	}
	return req, nil
}

// ListForStudent returns the student's own requests.
func (s *Service) ListForStudent(ctx context.Context, studentID string) ([]Request, error) {
	return s.repo.ListForStudent(ctx, studentID)
}

// ListForCoordinator returns the full assigned list for a coordinator.
func (s *Service) ListForCoordinator(ctx context.Context, coordinatorID string) ([]Request, error) {
	return s.repo.ListForCoordinator(ctx, coordinatorID)
}
