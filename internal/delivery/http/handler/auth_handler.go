package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"fleetview/internal/config"
	"fleetview/internal/usecase/session"
	"fleetview/pkg/utils"
)

type AuthHandler struct {
	service *session.Service
	config  *config.Config
}

func NewAuthHandler(service *session.Service, cfg *config.Config) *AuthHandler {
	return &AuthHandler{service: service, config: cfg}
}

func (h *AuthHandler) RegisterRoutes(router *gin.RouterGroup) {
	auth := router.Group("/auth")
	{
		auth.POST("/login", h.Login)
	}
}

func (h *AuthHandler) RegisterSessionRoutes(router *gin.RouterGroup) {
	auth := router.Group("/auth")
	{
		auth.POST("/logout", h.Logout)
		auth.GET("/me", h.Me)
	}
}

// Login authenticates against the telemetry platform and starts a session.
// The session id travels in an HttpOnly cookie; the platform's bearer token
// never leaves the server.
func (h *AuthHandler) Login(c *gin.Context) {
	var req session.LoginRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	resp, err := h.service.Login(c.Request.Context(), &req)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.setSessionCookie(c, resp.Token, int(h.config.Session.TTL.Seconds()))
	utils.SuccessResponse(c, http.StatusOK, "Login successful", resp)
}

func (h *AuthHandler) Logout(c *gin.Context) {
	if token, err := c.Cookie(h.config.Session.CookieName); err == nil && token != "" {
		if err := h.service.Logout(c.Request.Context(), token); err != nil {
			respondWithError(c, err)
			return
		}
	}

	h.setSessionCookie(c, "", -1)
	utils.SuccessResponse(c, http.StatusOK, "Logged out", nil)
}

// Me returns the profile of the authenticated user.
func (h *AuthHandler) Me(c *gin.Context) {
	sess, ok := sessionFromContext(c)
	if !ok {
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Session active", session.ToUserResponse(sess))
}

func (h *AuthHandler) setSessionCookie(c *gin.Context, value string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.config.Session.CookieName, value, maxAge, "/", "", h.config.Session.Secure, true)
}
