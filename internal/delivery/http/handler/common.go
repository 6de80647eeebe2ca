package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	domainSession "fleetview/internal/domain/session"
	"fleetview/internal/logger"
	"fleetview/internal/middleware"
	"fleetview/internal/upstream"
	appErrors "fleetview/pkg/errors"
	"fleetview/pkg/utils"
)

const dateLayout = "2006-01-02"

func respondWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}

	switch {
	case errors.Is(err, appErrors.ErrInvalidCredentials),
		errors.Is(err, appErrors.ErrInvalidToken),
		errors.Is(err, appErrors.ErrUnauthorized),
		errors.Is(err, appErrors.ErrNoUpstreamToken),
		errors.Is(err, domainSession.ErrSessionNotFound),
		errors.Is(err, domainSession.ErrSessionExpired),
		errors.Is(err, domainSession.ErrSessionRevoked):
		utils.ErrorResponse(c, http.StatusUnauthorized, err.Error())
	case errors.Is(err, appErrors.ErrPackageNotFound):
		utils.ErrorResponse(c, http.StatusNotFound, err.Error())
	case errors.Is(err, appErrors.ErrInvalidInput),
		errors.Is(err, appErrors.ErrInvalidDateRange):
		utils.ErrorResponse(c, http.StatusBadRequest, err.Error())
	default:
		var upstreamErr *appErrors.UpstreamError
		if errors.As(err, &upstreamErr) {
			utils.ErrorResponse(c, http.StatusBadGateway, appErrors.ErrUpstreamUnavailable.Error())
			return
		}

		var appErr *appErrors.AppError
		if errors.As(err, &appErr) {
			utils.ErrorResponse(c, http.StatusBadRequest, appErr.Message)
			return
		}

		requestID := middleware.GetRequestID(c)
		logger.Error("Internal server error",
			zap.String("request_id", requestID),
			zap.String("path", c.Request.URL.Path),
			zap.String("method", c.Request.Method),
			zap.Error(err),
		)
		utils.ErrorResponse(c, http.StatusInternalServerError, "Internal server error")
	}
}

// sessionFromContext returns the guard-resolved session; a missing session
// means the route was registered outside the guard by mistake.
func sessionFromContext(c *gin.Context) (*domainSession.Session, bool) {
	sess := middleware.GetSession(c)
	if sess == nil {
		utils.ErrorResponse(c, http.StatusUnauthorized, "Authentication required")
		return nil, false
	}
	return sess, true
}

func isRefresh(c *gin.Context) bool {
	return c.Query("refresh") == "true" || c.Query("refresh") == "1"
}

type filterQuery struct {
	PackageName string `form:"package_name"`
	StartDate   string `form:"start_date" validate:"omitempty,platform_date"`
	EndDate     string `form:"end_date" validate:"omitempty,platform_date"`
}

// parseFilter binds and validates the optional package/date-range query
// parameters shared by the alarm and history endpoints.
func parseFilter(c *gin.Context) (upstream.Filter, bool) {
	var query filterQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid query parameters")
		return upstream.Filter{}, false
	}

	if err := utils.ValidateStruct(&query); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Dates must use the yyyy-MM-dd format")
		return upstream.Filter{}, false
	}

	if query.StartDate != "" && query.EndDate != "" {
		start, _ := time.Parse(dateLayout, query.StartDate)
		end, _ := time.Parse(dateLayout, query.EndDate)
		if end.Before(start) {
			utils.ErrorResponse(c, http.StatusBadRequest, appErrors.ErrInvalidDateRange.Error())
			return upstream.Filter{}, false
		}
	}

	return upstream.Filter{
		PackageName: utils.SanitizePackageName(query.PackageName),
		StartDate:   query.StartDate,
		EndDate:     query.EndDate,
	}, true
}
