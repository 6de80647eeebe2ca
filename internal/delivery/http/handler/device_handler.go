package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"fleetview/internal/usecase/dashboard"
	"fleetview/pkg/utils"
)

type DeviceHandler struct {
	service *dashboard.Service
}

func NewDeviceHandler(service *dashboard.Service) *DeviceHandler {
	return &DeviceHandler{service: service}
}

func (h *DeviceHandler) RegisterRoutes(router *gin.RouterGroup) {
	batteries := router.Group("/batteries")
	{
		batteries.GET("", h.ListBatteries)
		batteries.GET("/:package_name", h.GetBattery)
		batteries.GET("/:package_name/cells", h.GetCellParameters)
		batteries.GET("/:package_name/history", h.GetHistory)
	}

	gensets := router.Group("/gensets")
	{
		gensets.GET("", h.ListGensets)
		gensets.GET("/:package_name", h.GetGenset)
	}

	powerMeters := router.Group("/power-meters")
	{
		powerMeters.GET("", h.ListPowerMeters)
		powerMeters.GET("/:package_name", h.GetPowerMeter)
	}

	router.GET("/alarms", h.ListAlarms)
}

func (h *DeviceHandler) ListBatteries(c *gin.Context) {
	sess, ok := sessionFromContext(c)
	if !ok {
		return
	}

	records, stale, err := h.service.Batteries(c.Request.Context(), sess, isRefresh(c))
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Batteries retrieved", gin.H{
		"records": records,
		"stale":   stale,
	})
}

func (h *DeviceHandler) GetBattery(c *gin.Context) {
	sess, ok := sessionFromContext(c)
	if !ok {
		return
	}

	packageName := utils.SanitizePackageName(c.Param("package_name"))
	if packageName == "" {
		utils.ErrorResponse(c, http.StatusBadRequest, "Package name required")
		return
	}

	record, err := h.service.BatteryDetail(c.Request.Context(), sess, packageName)
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Battery retrieved", record)
}

// GetCellParameters returns per-cell voltage and temperature readings for
// one battery package.
func (h *DeviceHandler) GetCellParameters(c *gin.Context) {
	sess, ok := sessionFromContext(c)
	if !ok {
		return
	}

	packageName := utils.SanitizePackageName(c.Param("package_name"))
	if packageName == "" {
		utils.ErrorResponse(c, http.StatusBadRequest, "Package name required")
		return
	}

	cells, err := h.service.CellParameters(c.Request.Context(), sess, packageName)
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Cell parameters retrieved", cells)
}

// GetHistory returns the charge/discharge series for one battery package
// over an optional date range.
func (h *DeviceHandler) GetHistory(c *gin.Context) {
	sess, ok := sessionFromContext(c)
	if !ok {
		return
	}

	filter, ok := parseFilter(c)
	if !ok {
		return
	}
	filter.PackageName = utils.SanitizePackageName(c.Param("package_name"))
	if filter.PackageName == "" {
		utils.ErrorResponse(c, http.StatusBadRequest, "Package name required")
		return
	}

	points, stale, err := h.service.History(c.Request.Context(), sess, filter, isRefresh(c))
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "History retrieved", gin.H{
		"points": points,
		"stale":  stale,
	})
}

func (h *DeviceHandler) ListGensets(c *gin.Context) {
	sess, ok := sessionFromContext(c)
	if !ok {
		return
	}

	records, stale, err := h.service.Gensets(c.Request.Context(), sess, isRefresh(c))
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Gensets retrieved", gin.H{
		"records": records,
		"stale":   stale,
	})
}

func (h *DeviceHandler) GetGenset(c *gin.Context) {
	sess, ok := sessionFromContext(c)
	if !ok {
		return
	}

	packageName := utils.SanitizePackageName(c.Param("package_name"))
	if packageName == "" {
		utils.ErrorResponse(c, http.StatusBadRequest, "Package name required")
		return
	}

	record, err := h.service.GensetDetail(c.Request.Context(), sess, packageName)
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Genset retrieved", record)
}

func (h *DeviceHandler) ListPowerMeters(c *gin.Context) {
	sess, ok := sessionFromContext(c)
	if !ok {
		return
	}

	records, stale, err := h.service.PowerMeters(c.Request.Context(), sess, isRefresh(c))
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Power meters retrieved", gin.H{
		"records": records,
		"stale":   stale,
	})
}

func (h *DeviceHandler) GetPowerMeter(c *gin.Context) {
	sess, ok := sessionFromContext(c)
	if !ok {
		return
	}

	packageName := utils.SanitizePackageName(c.Param("package_name"))
	if packageName == "" {
		utils.ErrorResponse(c, http.StatusBadRequest, "Package name required")
		return
	}

	record, err := h.service.PowerMeterDetail(c.Request.Context(), sess, packageName)
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Power meter retrieved", record)
}

// ListAlarms returns alarm events, optionally filtered by package and a
// yyyy-MM-dd date range.
func (h *DeviceHandler) ListAlarms(c *gin.Context) {
	sess, ok := sessionFromContext(c)
	if !ok {
		return
	}

	filter, ok := parseFilter(c)
	if !ok {
		return
	}

	records, stale, err := h.service.Alarms(c.Request.Context(), sess, filter, isRefresh(c))
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Alarms retrieved", gin.H{
		"records": records,
		"stale":   stale,
	})
}
