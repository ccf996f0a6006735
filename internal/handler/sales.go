package handler

import (
	"net/http"

	"github.com/ArapCheruiyot/superkeeper/internal/dto"
	"github.com/ArapCheruiyot/superkeeper/internal/middleware"
	"github.com/ArapCheruiyot/superkeeper/internal/service"
	"github.com/ArapCheruiyot/superkeeper/internal/session"

	"github.com/gin-gonic/gin"
)

type SalesHandler struct {
	svc      service.SalesService
	registry *session.Registry
}

func NewSalesHandler(svc service.SalesService, registry *session.Registry) *SalesHandler {
	return &SalesHandler{svc: svc, registry: registry}
}

func (h *SalesHandler) sess(c *gin.Context) *session.Session {
	return h.registry.Get(shopID(c), deviceID(c))
}

// OpenCamera godoc
// @Summary      Open the scan camera
// @Tags         sales
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} dto.SessionStateResponse
// @Router       /v1/sales/camera/open [post]
func (h *SalesHandler) OpenCamera(c *gin.Context) {
	sess := h.sess(c)
	h.svc.OpenCamera(sess)
	c.JSON(http.StatusOK, sessionState(sess))
}

// CloseCamera godoc
// @Summary      Close the scan camera, discarding any uncommitted cart
// @Tags         sales
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} dto.SessionStateResponse
// @Router       /v1/sales/camera/close [post]
func (h *SalesHandler) CloseCamera(c *gin.Context) {
	sess := h.sess(c)
	h.svc.CloseCamera(sess)
	c.JSON(http.StatusOK, sessionState(sess))
}

// Scan godoc
// @Summary      Match one camera frame against the shop's items
// @Description  Returns match=null when nothing clears the recognizer's confidence threshold. A scan while one is already in flight is a 409.
// @Tags         sales
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.ScanRequest true "Encoded frame"
// @Success      200 {object} dto.ScanResponse
// @Failure      409 {object} apierror.APIError
// @Router       /v1/sales/scan [post]
func (h *SalesHandler) Scan(c *gin.Context) {
	var req dto.ScanRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Scan(c.Request.Context(), h.sess(c), req.Frame)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Accept godoc
// @Summary      Accept a presented match into the cart
// @Description  Merges by item id; the price is frozen as presented.
// @Tags         sales
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.AcceptMatchRequest true "Accepted match"
// @Success      200 {object} dto.CartResponse
// @Failure      422 {object} apierror.ValidationError
// @Router       /v1/sales/cart/accept [post]
func (h *SalesHandler) Accept(c *gin.Context) {
	var req dto.AcceptMatchRequest
	if !bindAndValidate(c, &req) {
		return
	}
	c.JSON(http.StatusOK, h.svc.Accept(h.sess(c), req))
}

// RemoveLine godoc
// @Summary      Drop one line from the cart
// @Tags         sales
// @Produce      json
// @Security     BearerAuth
// @Param        itemId path string true "Item id of the line"
// @Success      200 {object} dto.CartResponse
// @Router       /v1/sales/cart/{itemId} [delete]
func (h *SalesHandler) RemoveLine(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.RemoveLine(h.sess(c), c.Param("itemId")))
}

// Cart godoc
// @Summary      Current cart
// @Tags         sales
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} dto.CartResponse
// @Router       /v1/sales/cart [get]
func (h *SalesHandler) Cart(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.Cart(h.sess(c)))
}

// Checkout godoc
// @Summary      Complete the sale
// @Description  Writes one sale ledger entry per cart line under a shared receipt id. Lines commit independently; on partial failure the committed lines leave the cart and a 409 reports what remains.
// @Tags         sales
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.CompleteSaleRequest true "Payment method"
// @Success      200 {object} dto.ReceiptResponse
// @Failure      409 {object} apierror.APIError
// @Router       /v1/sales/checkout [post]
func (h *SalesHandler) Checkout(c *gin.Context) {
	var req dto.CompleteSaleRequest
	if !bindAndValidate(c, &req) {
		return
	}
	claims := middleware.GetClaims(c)
	resp, err := h.svc.CompleteSale(c.Request.Context(), h.sess(c), claims.Operator, req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
