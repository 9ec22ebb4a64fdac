package handlers

import (
	"net/http"

	mer "meross_emulator"

	"github.com/gin-gonic/gin"
)

// @Summary      Device protocol endpoint
// @Description  Accepts a signed meross envelope and answers like the plug would. Without a uuid the first registered device answers.
// @Tags         protocol
// @Accept       json
// @Produce      json
// @Param        uuid  path      string       false  "Device uuid"
// @Param        body  body      mer.Message  true   "Request envelope"
// @Success      200   {object}  mer.Message
// @Failure      400   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /config/{uuid} [post]
func (h *Handler) postConfig(c *gin.Context) {
	var req mer.Message
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + err.Error()})
		return
	}
	if req.Header.Namespace == "" || req.Header.Method == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": errMalformedMessage})
		return
	}

	uuid := c.Param("uuid")
	if uuid == "" {
		uuid = h.services.DefaultDevice()
		if uuid == "" {
			c.JSON(http.StatusNotFound, gin.H{"error": errNoDefaultDevice})
			return
		}
	}

	reply, err := h.services.Dispatch(c.Request.Context(), uuid, req)
	if err != nil {
		h.respondDeviceError(c, "config_dispatch_failed", err)
		return
	}
	c.JSON(http.StatusOK, reply)
}
