package handler

import (
	"net/http"

	"github.com/ArapCheruiyot/superkeeper/internal/apierror"
	"github.com/ArapCheruiyot/superkeeper/internal/dto"
	"github.com/ArapCheruiyot/superkeeper/internal/service"
	"github.com/ArapCheruiyot/superkeeper/internal/session"

	"github.com/gin-gonic/gin"
)

type CaptureHandler struct {
	svc      service.CaptureService
	registry *session.Registry
}

func NewCaptureHandler(svc service.CaptureService, registry *session.Registry) *CaptureHandler {
	return &CaptureHandler{svc: svc, registry: registry}
}

func (h *CaptureHandler) sess(c *gin.Context) *session.Session {
	return h.registry.Get(shopID(c), deviceID(c))
}

// Begin godoc
// @Summary      Start the capture for the next photo slot
// @Tags         capture
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.CaptureBeginRequest true "Slot (0 or 1)"
// @Success      200 {object} dto.SessionStateResponse
// @Failure      409 {object} apierror.APIError
// @Router       /v1/capture/begin [post]
func (h *CaptureHandler) Begin(c *gin.Context) {
	var req dto.CaptureBeginRequest
	if !bindAndValidate(c, &req) {
		return
	}
	sess := h.sess(c)
	if err := h.svc.Begin(sess, req.Slot); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, sessionState(sess))
}

// Retake godoc
// @Summary      Re-capture an already-filled slot (edit mode only)
// @Tags         capture
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.CaptureBeginRequest true "Slot (0 or 1)"
// @Success      200 {object} dto.SessionStateResponse
// @Failure      409 {object} apierror.APIError
// @Router       /v1/capture/retake [post]
func (h *CaptureHandler) Retake(c *gin.Context) {
	var req dto.CaptureBeginRequest
	if !bindAndValidate(c, &req) {
		return
	}
	sess := h.sess(c)
	if err := h.svc.Retake(sess, req.Slot); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, sessionState(sess))
}

// Complete godoc
// @Summary      Upload the captured photo and persist it
// @Description  Uploads to the image host, persists the slot, then notifies the recognizer asynchronously. The first photo also initializes stock and an empty ledger.
// @Tags         capture
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        image formData file true "Captured photo"
// @Success      200 {object} dto.ItemResponse
// @Failure      409 {object} apierror.APIError
// @Router       /v1/capture/complete [post]
func (h *CaptureHandler) Complete(c *gin.Context) {
	fileHeader, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("missing image file"))
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("unreadable image file"))
		return
	}
	defer file.Close()

	resp, err := h.svc.Complete(c.Request.Context(), h.sess(c), fileHeader.Filename, file)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Cancel godoc
// @Summary      Abandon the in-flight capture
// @Description  Prior persisted state is untouched; the phase settles back to its stable value.
// @Tags         capture
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} dto.SessionStateResponse
// @Failure      409 {object} apierror.APIError
// @Router       /v1/capture/cancel [post]
func (h *CaptureHandler) Cancel(c *gin.Context) {
	sess := h.sess(c)
	if err := h.svc.Cancel(sess); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, sessionState(sess))
}

// SetPrices godoc
// @Summary      Record both prices after the second photo
// @Tags         capture
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.SetPricesRequest true "Buy and sell price"
// @Success      200 {object} dto.ItemResponse
// @Failure      409 {object} apierror.APIError
// @Router       /v1/capture/prices [post]
func (h *CaptureHandler) SetPrices(c *gin.Context) {
	var req dto.SetPricesRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.SetPrices(c.Request.Context(), h.sess(c), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
