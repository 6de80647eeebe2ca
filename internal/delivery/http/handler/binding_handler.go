package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"fleetview/internal/usecase/binding"
	"fleetview/pkg/utils"
)

type BindingHandler struct {
	service *binding.Service
}

func NewBindingHandler(service *binding.Service) *BindingHandler {
	return &BindingHandler{service: service}
}

func (h *BindingHandler) RegisterRoutes(router *gin.RouterGroup) {
	bindings := router.Group("/bindings")
	{
		bindings.POST("/bind", h.Bind)
		bindings.POST("/unbind", h.Unbind)
	}
}

// Bind claims a scanned package for the authenticated user.
func (h *BindingHandler) Bind(c *gin.Context) {
	sess, ok := sessionFromContext(c)
	if !ok {
		return
	}

	var req binding.BindRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.service.Bind(c.Request.Context(), sess, &req); err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Device bound successfully", nil)
}

// Unbind releases a package from the authenticated user.
func (h *BindingHandler) Unbind(c *gin.Context) {
	sess, ok := sessionFromContext(c)
	if !ok {
		return
	}

	var req binding.BindRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.service.Unbind(c.Request.Context(), sess, &req); err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Device unbound successfully", nil)
}
