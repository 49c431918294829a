package auth

import "time"

type Role string

const (
	RoleStudent     Role = "student"
	RoleCoordinator Role = "coordinator"
)

// Profile is the domain representation of a registered user. It mirrors the
// users table and carries no JSON annotations so it can be reused by different
// presentation layers. Identity and role are immutable after creation.
type Profile struct {
	ID            string
	Email         string
	PasswordHash  string
	Role          Role
	Name          string
	Department    string
	Branch        string
	Year          string
	StudentNumber string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// RegisterRequest contains registration data supplied by callers. Branch,
// Year and StudentNumber are only meaningful for the student role.
type RegisterRequest struct {
	Email         string `json:"email"`
	Password      string `json:"password"`
	Role          Role   `json:"role"`
	Name          string `json:"name"`
	Department    string `json:"department"`
	Branch        string `json:"branch"`
	Year          string `json:"year"`
	StudentNumber string `json:"student_number"`
}

// LoginRequest contains login credentials.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
