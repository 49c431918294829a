package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrInvalidCredentials signals wrong email or password.
	ErrInvalidCredentials = errors.New("auth: invalid credentials")
	// ErrWeakPassword signals password doesn't meet requirements.
	ErrWeakPassword = errors.New("auth: password must be at least 8 characters")
	// ErrValidation signals a malformed registration; wrapped errors carry the
	// specific cause.
	ErrValidation = errors.New("auth: validation failed")
)

// Service handles authentication business logic.
type Service struct {
	repo      Repository
	jwtSecret []byte
	tokenTTL  time.Duration
}

// LoginResult bundles the token and profile returned after a successful login.
type LoginResult struct {
	Token   string
	Profile Profile
}

// NewService creates a new authentication service.
func NewService(repo Repository, jwtSecret string) *Service {
	return &Service{
		repo:      repo,
		jwtSecret: []byte(jwtSecret),
		tokenTTL:  24 * time.Hour,
	}
}

// Register creates a new profile. Role defaults to student when omitted and a
// student registration must carry a student number.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*Profile, error) {
	if len(req.Password) < 8 {
		return nil, ErrWeakPassword
	}

	if req.Email == "" || req.Name == "" {
		return nil, fmt.Errorf("%w: email and name are required", ErrValidation)
	}

	role := Role(strings.TrimSpace(string(req.Role)))
	if role == "" {
		role = RoleStudent
	}
	if !isValidRole(role) {
		return nil, fmt.Errorf("%w: invalid role %q", ErrValidation, role)
	}
	if role == RoleStudent && strings.TrimSpace(req.StudentNumber) == "" {
		return nil, fmt.Errorf("%w: student number is required for students", ErrValidation)
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("auth: hash password: %w", err)
	}

	params := CreateProfileParams{
		Email:        strings.TrimSpace(req.Email),
		PasswordHash: string(passwordHash),
		Role:         role,
		Name:         strings.TrimSpace(req.Name),
		Department:   strings.TrimSpace(req.Department),
	}
	if role == RoleStudent {
		params.Branch = strings.TrimSpace(req.Branch)
		params.Year = strings.TrimSpace(req.Year)
		params.StudentNumber = strings.TrimSpace(req.StudentNumber)
	}

	profile, err := s.repo.CreateProfile(ctx, params)
	if err != nil {
		return nil, err
	}

	return &profile, nil
}

// Login authenticates a user and returns a signed JWT.
func (s *Service) Login(ctx context.Context, req LoginRequest) (LoginResult, error) {
	profile, err := s.repo.GetProfileByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, ErrProfileNotFound) {
			return LoginResult{}, ErrInvalidCredentials
		}
		return LoginResult{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(profile.PasswordHash), []byte(req.Password)); err != nil {
		return LoginResult{}, ErrInvalidCredentials
	}

	token, err := s.generateToken(profile.ID, profile.Role)
	if err != nil {
		return LoginResult{}, fmt.Errorf("auth: generate token: %w", err)
	}

	return LoginResult{Token: token, Profile: profile}, nil
}

// GetProfile retrieves profile information by ID.
func (s *Service) GetProfile(ctx context.Context, id string) (*Profile, error) {
	profile, err := s.repo.GetProfileByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

// ListCoordinators returns the coordinator roster.
func (s *Service) ListCoordinators(ctx context.Context) ([]Profile, error) {
	return s.repo.ListCoordinators(ctx)
}

// VerifyToken validates a JWT and returns the identity and role it carries.
func (s *Service) VerifyToken(tokenString string) (string, Role, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return "", "", fmt.Errorf("auth: parse token: %w", err)
	}

	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		userID, ok := claims["user_id"].(string)
		if !ok {
			return "", "", fmt.Errorf("auth: invalid user_id in token")
		}
		roleStr, ok := claims["role"].(string)
		if !ok {
			return "", "", fmt.Errorf("auth: invalid role in token")
		}
		role := Role(roleStr)
		if !isValidRole(role) {
			return "", "", fmt.Errorf("auth: invalid role %q in token", roleStr)
		}
		return userID, role, nil
	}

	return "", "", fmt.Errorf("auth: invalid token")
}

func (s *Service) generateToken(userID string, role Role) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"user_id": userID,
		"role":    role,
		"exp":     now.Add(s.tokenTTL).Unix(),
		"iat":     now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}

func isValidRole(role Role) bool {
	switch role {
	case RoleStudent, RoleCoordinator:
		return true
	default:
		return false
	}
}
