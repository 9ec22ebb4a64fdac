package handlers

import (
	"errors"
	"net/http"

	"meross_emulator/internal/emulator"
	"meross_emulator/internal/service"

	"github.com/gin-gonic/gin"
)

const (
	statusOK = "ok"

	errDeviceNotFound   = "device not found"
	errNotSupported     = "namespace not supported by device"
	errDeviceFailed     = "device request failed"
	errInvalidBodyPref  = "invalid body: "
	errNoDefaultDevice  = "no device registered"
	errMalformedMessage = "malformed message"
)

// Centralized error logging and response.
func (h *Handler) logAndJSONError(c *gin.Context, httpCode int, userMsg, logKey string, err error, kv ...interface{}) {
	if h.log != nil && err != nil {
		fields := append([]interface{}{"err", err}, kv...)
		h.log.Errorw(logKey, fields...)
	}
	c.JSON(httpCode, gin.H{"error": userMsg})
}

// deviceError maps service errors to a status and a client message.
func deviceError(err error) (int, string) {
	switch {
	case errors.Is(err, service.ErrDeviceNotFound):
		return http.StatusNotFound, errDeviceNotFound
	case errors.Is(err, emulator.ErrNamespaceNotSupported):
		return http.StatusNotFound, errNotSupported
	default:
		return http.StatusInternalServerError, errDeviceFailed
	}
}

func (h *Handler) respondDeviceError(c *gin.Context, logKey string, err error) {
	code, msg := deviceError(err)
	if code == http.StatusInternalServerError {
		h.logAndJSONError(c, code, msg, logKey, err, "device", c.Param("uuid"))
		return
	}
	c.JSON(code, gin.H{"error": msg})
}

// @Summary      Health check
// @Tags         system
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /health [get]
func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": statusOK,
	})
}

// @Summary      List devices
// @Tags         devices
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "count, devices"
// @Failure      401  {object}  map[string]string
// @Router       /api/v1/devices [get]
// @Security     BearerAuth
func (h *Handler) listDevices(c *gin.Context) {
	devices := h.services.ListDevices(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{
		"count":   len(devices),
		"devices": devices,
	})
}

// @Summary      Device descriptor snapshot
// @Tags         devices
// @Produce      json
// @Param        uuid  path      string  true  "Device uuid"
// @Success      200   {object}  models.Descriptor
// @Failure      401   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /api/v1/devices/{uuid} [get]
// @Security     BearerAuth
func (h *Handler) getDevice(c *gin.Context) {
	d, err := h.services.Snapshot(c.Request.Context(), c.Param("uuid"))
	if err != nil {
		h.respondDeviceError(c, "device_snapshot_failed", err)
		return
	}
	c.JSON(http.StatusOK, d)
}

// @Summary      Sample electricity
// @Description  Advances the power random walk and returns the new reading.
// @Tags         devices
// @Produce      json
// @Param        uuid  path      string  true  "Device uuid"
// @Success      200   {object}  models.ElectricityPayload
// @Failure      401   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /api/v1/devices/{uuid}/electricity [get]
// @Security     BearerAuth
func (h *Handler) getElectricity(c *gin.Context) {
	p, err := h.services.Electricity(c.Request.Context(), c.Param("uuid"))
	if err != nil {
		h.respondDeviceError(c, "device_electricity_failed", err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// @Summary      Sample consumption
// @Description  Integrates energy up to now and returns the daily ledger.
// @Tags         devices
// @Produce      json
// @Param        uuid  path      string  true  "Device uuid"
// @Success      200   {object}  models.ConsumptionXPayload
// @Failure      401   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /api/v1/devices/{uuid}/consumptionx [get]
// @Security     BearerAuth
func (h *Handler) getConsumptionX(c *gin.Context) {
	p, err := h.services.ConsumptionX(c.Request.Context(), c.Param("uuid"))
	if err != nil {
		h.respondDeviceError(c, "device_consumption_failed", err)
		return
	}
	c.JSON(http.StatusOK, p)
}
