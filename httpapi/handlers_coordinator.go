package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nithinshettyy/appointment-system/auth"
	"github.com/nithinshettyy/appointment-system/dashboard"
)

type viewResponse struct {
	Items     []requestResponse `json:"items"`
	Counts    dashboard.Counts  `json:"counts"`
	NoMatches bool              `json:"no_matches"`
}

func toViewResponse(v dashboard.View) viewResponse {
	return viewResponse{
		Items:     toRequestResponses(v.Items),
		Counts:    v.Counts,
		NoMatches: v.NoMatches,
	}
}

func queryFromRequest(c *gin.Context) dashboard.Query {
	q := dashboard.Query{
		Search: c.Query("q"),
		Status: c.Query("status"),
	}
	if q.Status == "" {
		q.Status = dashboard.FilterAll
	}
	return q
}

// GET /api/coordinator/requests?q=&status= — the filtered, ordered dashboard
// view plus the full-cache status counts.
func (s *Server) handleDashboard(c *gin.Context) {
	coordinatorID := c.GetString(ctxUserID)

	records, err := s.appointments.ListForCoordinator(c.Request.Context(), coordinatorID)
	if err != nil {
		s.respondError(c, err)
		return
	}

	view := dashboard.BuildView(records, queryFromRequest(c))
	c.JSON(http.StatusOK, toViewResponse(view))
}

// GET /api/coordinator/requests/:id — a single request with the live student
// profile for the details view. The stored snapshot fields are the fallback
// when the profile no longer resolves.
func (s *Server) handleRequestDetails(c *gin.Context) {
	coordinatorID := c.GetString(ctxUserID)

	req, err := s.appointments.Get(c.Request.Context(), c.Param("id"), coordinatorID)
	if err != nil {
		s.respondError(c, err)
		return
	}

	body := gin.H{"request": toRequestResponse(req)}
	student, err := s.auth.GetProfile(c.Request.Context(), req.StudentID)
	if err == nil {
		body["student"] = toProfileResponse(*student)
	} else if !errors.Is(err, auth.ErrProfileNotFound) {
		s.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, body)
}

// POST /api/coordinator/requests/:id/approve
func (s *Server) handleApprove(c *gin.Context) {
	req, err := s.appointments.Approve(c.Request.Context(), c.Param("id"), c.GetString(ctxUserID))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toRequestResponse(req))
}

type rejectRequest struct {
	SuggestedDate string `json:"suggested_date"`
	SuggestedTime string `json:"suggested_time"`
}

// POST /api/coordinator/requests/:id/reject
func (s *Server) handleReject(c *gin.Context) {
	var body rejectRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	req, err := s.appointments.Reject(c.Request.Context(), c.Param("id"), c.GetString(ctxUserID), body.SuggestedDate, body.SuggestedTime)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toRequestResponse(req))
}
