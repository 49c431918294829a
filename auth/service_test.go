package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"
)

func TestService_RegisterAndLogin(t *testing.T) {
	repo := newFakeRepository()
	svc := NewService(repo, "test-secret")

	req := RegisterRequest{
		Email:         "jane@example.com",
		Password:      "supersafe",
		Role:          RoleStudent,
		Name:          "Jane Doe",
		Department:    "CSE",
		Branch:        "AI",
		Year:          "3",
		StudentNumber: "1MS21CS042",
	}

	ctx := context.Background()
	profile, err := svc.Register(ctx, req)
	if err != nil {
		t.Fatalf("register: unexpected error: %v", err)
	}

	if profile.Email != req.Email {
		t.Fatalf("expected email %q got %q", req.Email, profile.Email)
	}
	if profile.Role != RoleStudent {
		t.Fatalf("register: expected role %s got %s", RoleStudent, profile.Role)
	}
	if profile.StudentNumber != req.StudentNumber {
		t.Fatalf("register: expected student number %q got %q", req.StudentNumber, profile.StudentNumber)
	}

	resp, err := svc.Login(ctx, LoginRequest{Email: req.Email, Password: req.Password})
	if err != nil {
		t.Fatalf("login: unexpected error: %v", err)
	}
	if resp.Token == "" {
		t.Fatal("login: expected token, got empty string")
	}
	if resp.Profile.ID != profile.ID {
		t.Fatalf("login: expected profile id %q got %q", profile.ID, resp.Profile.ID)
	}

	tokenUserID, tokenRole, err := svc.VerifyToken(resp.Token)
	if err != nil {
		t.Fatalf("verify token: %v", err)
	}
	if tokenUserID != profile.ID {
		t.Fatalf("verify token: expected %q got %q", profile.ID, tokenUserID)
	}
	if tokenRole != RoleStudent {
		t.Fatalf("verify token: expected role %s got %s", RoleStudent, tokenRole)
	}
}

func TestService_RegisterValidation(t *testing.T) {
	repo := newFakeRepository()
	svc := NewService(repo, "test-secret")

	_, err := svc.Register(context.Background(), RegisterRequest{
		Email:    "jane@example.com",
		Password: "short",
		Name:     "Jane Doe",
	})
	if !errors.Is(err, ErrWeakPassword) {
		t.Fatalf("expected ErrWeakPassword, got %v", err)
	}

	if _, err := svc.Register(context.Background(), RegisterRequest{
		Email:    "",
		Password: "strongpassword",
		Name:     "",
	}); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for missing fields, got %v", err)
	}

	// students must carry a student number
	if _, err := svc.Register(context.Background(), RegisterRequest{
		Email:    "jane@example.com",
		Password: "strongpassword",
		Role:     RoleStudent,
		Name:     "Jane Doe",
	}); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for missing student number, got %v", err)
	}

	if _, err := svc.Register(context.Background(), RegisterRequest{
		Email:    "dean@example.com",
		Password: "strongpassword",
		Role:     Role("dean"),
		Name:     "Dean",
	}); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for unknown role, got %v", err)
	}
}

func TestService_CoordinatorRegisterIgnoresStudentFields(t *testing.T) {
	repo := newFakeRepository()
	svc := NewService(repo, "test-secret")

	profile, err := svc.Register(context.Background(), RegisterRequest{
		Email:         "prof@example.com",
		Password:      "strongpassword",
		Role:          RoleCoordinator,
		Name:          "Prof. Rao",
		Department:    "ECE",
		Branch:        "should-be-dropped",
		StudentNumber: "should-be-dropped",
	})
	if err != nil {
		t.Fatalf("register coordinator: %v", err)
	}
	if profile.Branch != "" || profile.StudentNumber != "" {
		t.Fatalf("expected student-only fields to be empty, got branch=%q number=%q", profile.Branch, profile.StudentNumber)
	}
}

func TestService_DuplicateEmail(t *testing.T) {
	repo := newFakeRepository()
	svc := NewService(repo, "test-secret")

	req := RegisterRequest{
		Email:         "jane@example.com",
		Password:      "strongpassword",
		Role:          RoleStudent,
		Name:          "Jane Doe",
		StudentNumber: "1MS21CS042",
	}
	if _, err := svc.Register(context.Background(), req); err != nil {
		t.Fatalf("first register failed: %v", err)
	}

	if _, err := svc.Register(context.Background(), req); !errors.Is(err, ErrDuplicateEmail) {
		t.Fatalf("expected ErrDuplicateEmail, got %v", err)
	}
}

func TestService_LoginInvalidCredentials(t *testing.T) {
	repo := newFakeRepository()
	svc := NewService(repo, "test-secret")

	_, err := svc.Login(context.Background(), LoginRequest{
		Email:    "unknown@example.com",
		Password: "irrelevant",
	})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestService_ListCoordinators(t *testing.T) {
	repo := newFakeRepository()
	svc := NewService(repo, "test-secret")

	for _, name := range []string{"Prof. Rao", "Prof. Iyer"} {
		if _, err := svc.Register(context.Background(), RegisterRequest{
			Email:    strings.ToLower(strings.ReplaceAll(name, " ", "")) + "@example.com",
			Password: "strongpassword",
			Role:     RoleCoordinator,
			Name:     name,
		}); err != nil {
			t.Fatalf("register %s: %v", name, err)
		}
	}
	if _, err := svc.Register(context.Background(), RegisterRequest{
		Email:         "jane@example.com",
		Password:      "strongpassword",
		Role:          RoleStudent,
		Name:          "Jane Doe",
		StudentNumber: "1MS21CS042",
	}); err != nil {
		t.Fatalf("register student: %v", err)
	}

	coordinators, err := svc.ListCoordinators(context.Background())
	if err != nil {
		t.Fatalf("list coordinators: %v", err)
	}
	if len(coordinators) != 2 {
		t.Fatalf("expected 2 coordinators, got %d", len(coordinators))
	}
	for _, c := range coordinators {
		if c.Role != RoleCoordinator {
			t.Fatalf("roster contains non-coordinator %q", c.Email)
		}
	}
}

type fakeRepository struct {
	profilesByEmail map[string]Profile
	profilesByID    map[string]Profile
	nextID          int
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{
		profilesByEmail: make(map[string]Profile),
		profilesByID:    make(map[string]Profile),
		nextID:          1,
	}
}

func (f *fakeRepository) CreateProfile(ctx context.Context, params CreateProfileParams) (Profile, error) {
	if _, exists := f.profilesByEmail[strings.ToLower(params.Email)]; exists {
		return Profile{}, ErrDuplicateEmail
	}

	id := fmt.Sprintf("user-%d", f.nextID)
	f.nextID++

	profile := Profile{
		ID:            id,
		Email:         params.Email,
		PasswordHash:  params.PasswordHash,
		Role:          params.Role,
		Name:          params.Name,
		Department:    params.Department,
		Branch:        params.Branch,
		Year:          params.Year,
		StudentNumber: params.StudentNumber,
		CreatedAt:     time.Now().UTC(),
		UpdatedAt:     time.Now().UTC(),
	}

	f.profilesByEmail[strings.ToLower(profile.Email)] = profile
	f.profilesByID[profile.ID] = profile

	return profile, nil
}

func (f *fakeRepository) GetProfileByEmail(ctx context.Context, email string) (Profile, error) {
	profile, ok := f.profilesByEmail[strings.ToLower(email)]
	if !ok {
		return Profile{}, ErrProfileNotFound
	}
	return profile, nil
}

func (f *fakeRepository) GetProfileByID(ctx context.Context, id string) (Profile, error) {
	profile, ok := f.profilesByID[id]
	if !ok {
		return Profile{}, ErrProfileNotFound
	}
	return profile, nil
}

func (f *fakeRepository) ListCoordinators(ctx context.Context) ([]Profile, error) {
	out := []Profile{}
	for _, p := range f.profilesByID {
		if p.Role == RoleCoordinator {
			out = append(out, p)
		}
	}
	return out, nil
}
