// Package httpapi exposes the appointment system over HTTP: JSON endpoints
// for registration, login and the appointment lifecycle, plus a server-sent
// events stream that pushes the coordinator dashboard view on every change.
package httpapi

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nithinshettyy/appointment-system/appointment"
	"github.com/nithinshettyy/appointment-system/auth"
	"github.com/nithinshettyy/appointment-system/dashboard"
)

// AuthService is the authentication surface consumed by the handlers.
type AuthService interface {
	Register(ctx context.Context, req auth.RegisterRequest) (*auth.Profile, error)
	Login(ctx context.Context, req auth.LoginRequest) (auth.LoginResult, error)
	VerifyToken(token string) (string, auth.Role, error)
	GetProfile(ctx context.Context, id string) (*auth.Profile, error)
	ListCoordinators(ctx context.Context) ([]auth.Profile, error)
}

// AppointmentService is the lifecycle surface consumed by the handlers.
type AppointmentService interface {
	Create(ctx context.Context, studentID string, params appointment.CreateParams) (appointment.Request, error)
	Approve(ctx context.Context, id, actorID string) (appointment.Request, error)
	Reject(ctx context.Context, id, actorID, suggestedDate, suggestedTime string) (appointment.Request, error)
	Withdraw(ctx context.Context, id, actorID string) (appointment.Request, error)
	Delete(ctx context.Context, id, actorID string) error
	Get(ctx context.Context, id, actorID string) (appointment.Request, error)
	ListForStudent(ctx context.Context, studentID string) ([]appointment.Request, error)
	ListForCoordinator(ctx context.Context, coordinatorID string) ([]appointment.Request, error)
}

// Server wires the services into a gin router.
type Server struct {
	auth         AuthService
	appointments AppointmentService
	events       dashboard.EventSource
	logger       *log.Logger
	authLimiter  *ipLimiter
}

// NewServer creates a Server. events may be nil, in which case the dashboard
// stream serves one-shot data without live refresh.
func NewServer(authSvc AuthService, appointments AppointmentService, events dashboard.EventSource, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	return &Server{
		auth:         authSvc,
		appointments: appointments,
		events:       events,
		logger:       logger,
		authLimiter:  newIPLimiter(5, 10),
	}
}

// Router builds the route tree.
func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	api := router.Group("/api")
	{
		authGroup := api.Group("/auth")
		authGroup.Use(s.rateLimit())
		{
			authGroup.POST("/register", s.handleRegister)
			authGroup.POST("/login", s.handleLogin)
		}

		authed := api.Group("")
		authed.Use(s.requireAuth())
		{
			authed.GET("/me", s.handleMe)
			authed.GET("/coordinators", s.handleListCoordinators)

			student := authed.Group("")
			student.Use(s.requireRole(auth.RoleStudent))
			{
				student.POST("/appointments", s.handleCreateAppointment)
				student.GET("/appointments", s.handleListOwnAppointments)
				student.POST("/appointments/:id/withdraw", s.handleWithdraw)
				student.DELETE("/appointments/:id", s.handleDeleteAppointment)
			}

			coordinator := authed.Group("/coordinator")
			coordinator.Use(s.requireRole(auth.RoleCoordinator))
			{
				coordinator.GET("/requests", s.handleDashboard)
				coordinator.GET("/requests/:id", s.handleRequestDetails)
				coordinator.POST("/requests/:id/approve", s.handleApprove)
				coordinator.POST("/requests/:id/reject", s.handleReject)
				coordinator.GET("/stream", s.handleStream)
			}
		}
	}

	return router
}

// respondError maps domain errors onto HTTP statuses. Unknown errors are
// logged and surfaced as opaque 500s.
func (s *Server) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, appointment.ErrValidation), errors.Is(err, auth.ErrValidation), errors.Is(err, auth.ErrWeakPassword):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, auth.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
	case errors.Is(err, appointment.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
	case errors.Is(err, appointment.ErrNotFound), errors.Is(err, auth.ErrProfileNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, auth.ErrDuplicateEmail), errors.Is(err, appointment.ErrInvalidTransition):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		s.logger.Printf("httpapi: internal error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
