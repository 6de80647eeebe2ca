package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"fleetview/internal/usecase/dashboard"
	"fleetview/pkg/utils"
)

type DashboardHandler struct {
	service *dashboard.Service
}

func NewDashboardHandler(service *dashboard.Service) *DashboardHandler {
	return &DashboardHandler{service: service}
}

func (h *DashboardHandler) RegisterRoutes(router *gin.RouterGroup) {
	fleet := router.Group("/fleet")
	{
		fleet.GET("/summary", h.FleetSummary)
	}
}

// FleetSummary aggregates the user's battery fleet into the dashboard
// overview. The stale flag tells the client the numbers come from the last
// good fetch because the platform is currently unreachable.
func (h *DashboardHandler) FleetSummary(c *gin.Context) {
	sess, ok := sessionFromContext(c)
	if !ok {
		return
	}

	summary, stale, err := h.service.FleetSummary(c.Request.Context(), sess, isRefresh(c))
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Fleet summary retrieved", gin.H{
		"summary": summary,
		"stale":   stale,
	})
}
