package handler

import (
	"net/http"

	"github.com/ArapCheruiyot/superkeeper/internal/dto"
	"github.com/ArapCheruiyot/superkeeper/internal/middleware"
	"github.com/ArapCheruiyot/superkeeper/internal/service"

	"github.com/gin-gonic/gin"
)

type ShopHandler struct{ svc service.ShopService }

func NewShopHandler(svc service.ShopService) *ShopHandler { return &ShopHandler{svc: svc} }

// Bootstrap godoc
// @Summary      Bootstrap shop on sign-in
// @Description  Ensures the shop record exists. Returns needs_name=true when the shop was never named; the client must prompt before anything else.
// @Tags         shop
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} dto.ShopResponse
// @Failure      400 {object} apierror.APIError
// @Router       /v1/shop/bootstrap [post]
func (h *ShopHandler) Bootstrap(c *gin.Context) {
	claims := middleware.GetClaims(c)
	resp, err := h.svc.Bootstrap(c.Request.Context(), shopID(c), claims.ShopName)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// SetName godoc
// @Summary      Name the shop
// @Tags         shop
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.SetShopNameRequest true "Shop name"
// @Success      200 {object} dto.ShopResponse
// @Failure      422 {object} apierror.ValidationError
// @Router       /v1/shop/name [put]
func (h *ShopHandler) SetName(c *gin.Context) {
	var req dto.SetShopNameRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.SetName(c.Request.Context(), shopID(c), req.Name)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
