package httpapi

import (
	"io"

	"github.com/gin-gonic/gin"

	"github.com/nithinshettyy/appointment-system/dashboard"
)

// GET /api/coordinator/stream?q=&status= — server-sent events pushing the
// recomputed dashboard view on every cache replacement. One Session per
// stream; disconnecting cancels the change subscription.
func (s *Server) handleStream(c *gin.Context) {
	coordinatorID := c.GetString(ctxUserID)
	ctx := c.Request.Context()

	// Buffered so a slow client cannot block the subscription callback; a
	// dropped frame is superseded by the next full view anyway.
	views := make(chan dashboard.View, 4)
	session := dashboard.NewSession(coordinatorID, s.appointments, s.events, s.logger, func(v dashboard.View) {
		if !v.Loaded {
			return
		}
		select {
		case views <- v:
		default:
		}
	})
	session.SetQuery(queryFromRequest(c))

	if err := session.Start(ctx); err != nil {
		s.respondError(c, err)
		return
	}
	defer session.Close()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")

	c.Stream(func(w io.Writer) bool {
		select {
		case v := <-views:
			c.SSEvent("view", toViewResponse(v))
			return true
		case <-ctx.Done():
			return false
		}
	})
}
