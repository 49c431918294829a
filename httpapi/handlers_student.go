package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nithinshettyy/appointment-system/appointment"
)

type requestResponse struct {
	ID              string `json:"id"`
	StudentID       string `json:"student_id"`
	StudentNumber   string `json:"student_number"`
	StudentName     string `json:"student_name"`
	CoordinatorID   string `json:"coordinator_id"`
	CoordinatorName string `json:"coordinator_name"`
	Purpose         string `json:"purpose"`
	Date            string `json:"date"`
	Time            string `json:"time"`
	Status          string `json:"status"`
	SuggestedDate   string `json:"suggested_date,omitempty"`
	SuggestedTime   string `json:"suggested_time,omitempty"`
	CreatedAt       string `json:"created_at"`
}

func toRequestResponse(r appointment.Request) requestResponse {
	return requestResponse{
		ID:              r.ID,
		StudentID:       r.StudentID,
		StudentNumber:   r.StudentNumber,
		StudentName:     r.StudentName,
		CoordinatorID:   r.CoordinatorID,
		CoordinatorName: r.CoordinatorName,
		Purpose:         r.Purpose,
		Date:            r.Date,
		Time:            r.Time,
		Status:          string(r.Status),
		SuggestedDate:   r.SuggestedDate,
		SuggestedTime:   r.SuggestedTime,
		CreatedAt:       r.CreatedAt.Format(time.RFC3339),
	}
}

func toRequestResponses(records []appointment.Request) []requestResponse {
	out := make([]requestResponse, len(records))
	for i, r := range records {
		out[i] = toRequestResponse(r)
	}
	return out
}

// POST /api/appointments
func (s *Server) handleCreateAppointment(c *gin.Context) {
	var params appointment.CreateParams
	if err := c.ShouldBindJSON(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	req, err := s.appointments.Create(c.Request.Context(), c.GetString(ctxUserID), params)
	if err != nil {
		s.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toRequestResponse(req))
}

// GET /api/appointments — the student's own requests, newest first.
func (s *Server) handleListOwnAppointments(c *gin.Context) {
	records, err := s.appointments.ListForStudent(c.Request.Context(), c.GetString(ctxUserID))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toRequestResponses(records))
}

// POST /api/appointments/:id/withdraw
func (s *Server) handleWithdraw(c *gin.Context) {
	req, err := s.appointments.Withdraw(c.Request.Context(), c.Param("id"), c.GetString(ctxUserID))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toRequestResponse(req))
}

// DELETE /api/appointments/:id
func (s *Server) handleDeleteAppointment(c *gin.Context) {
	if err := s.appointments.Delete(c.Request.Context(), c.Param("id"), c.GetString(ctxUserID)); err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
