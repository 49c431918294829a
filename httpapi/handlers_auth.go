package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nithinshettyy/appointment-system/auth"
)

type profileResponse struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	Role          string `json:"role"`
	Name          string `json:"name"`
	Department    string `json:"department,omitempty"`
	Branch        string `json:"branch,omitempty"`
	Year          string `json:"year,omitempty"`
	StudentNumber string `json:"student_number,omitempty"`
	CreatedAt     string `json:"created_at"`
}

func toProfileResponse(p auth.Profile) profileResponse {
	return profileResponse{
		ID:            p.ID,
		Email:         p.Email,
		Role:          string(p.Role),
		Name:          p.Name,
		Department:    p.Department,
		Branch:        p.Branch,
		Year:          p.Year,
		StudentNumber: p.StudentNumber,
		CreatedAt:     p.CreatedAt.Format(time.RFC3339),
	}
}

// POST /api/auth/register
func (s *Server) handleRegister(c *gin.Context) {
	var req auth.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	profile, err := s.auth.Register(c.Request.Context(), req)
	if err != nil {
		s.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toProfileResponse(*profile))
}

// POST /api/auth/login
func (s *Server) handleLogin(c *gin.Context) {
	var req auth.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := s.auth.Login(c.Request.Context(), req)
	if err != nil {
		s.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token":   result.Token,
		"profile": toProfileResponse(result.Profile),
	})
}

// GET /api/me
func (s *Server) handleMe(c *gin.Context) {
	profile, err := s.auth.GetProfile(c.Request.Context(), c.GetString(ctxUserID))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toProfileResponse(*profile))
}

// GET /api/coordinators — the roster students pick a target from.
func (s *Server) handleListCoordinators(c *gin.Context) {
	coordinators, err := s.auth.ListCoordinators(c.Request.Context())
	if err != nil {
		s.respondError(c, err)
		return
	}

	out := make([]profileResponse, len(coordinators))
	for i, p := range coordinators {
		out[i] = toProfileResponse(p)
	}
	c.JSON(http.StatusOK, out)
}
