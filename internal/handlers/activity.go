package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/cjmartens/homestead/internal/services"
	"github.com/cjmartens/homestead/pkg/response"
)

// ActivityHandler exposes the per-home activity feed.
type ActivityHandler struct {
	homes    *services.HomeService
	activity *services.ActivityService
}

func NewActivityHandler(homes *services.HomeService, activity *services.ActivityService) *ActivityHandler {
	return &ActivityHandler{homes: homes, activity: activity}
}

// GET /api/homes/:homeID/activity
func (h *ActivityHandler) List(c *gin.Context) {
	ctx := requestContext(c)
	homeID := c.Param("homeID")

	// Visibility check first; the feed itself is not access-scoped.
	if _, err := h.homes.Get(ctx, currentUserID(c), homeID); err != nil {
		response.Error(c, err)
		return
	}

	limit, _ := strconv.Atoi(c.Query("limit"))
	logs, err := h.activity.ListRecent(ctx, "home", homeID, limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, logs)
}
