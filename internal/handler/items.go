package handler

import (
	"net/http"

	"github.com/ArapCheruiyot/superkeeper/internal/apierror"
	"github.com/ArapCheruiyot/superkeeper/internal/dto"
	"github.com/ArapCheruiyot/superkeeper/internal/service"
	"github.com/ArapCheruiyot/superkeeper/internal/session"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ItemsHandler struct {
	svc      service.ItemService
	registry *session.Registry
}

func NewItemsHandler(svc service.ItemService, registry *session.Registry) *ItemsHandler {
	return &ItemsHandler{svc: svc, registry: registry}
}

// Create godoc
// @Summary      Create an item under a leaf category
// @Description  Registers the name only; photos, prices and stock arrive through the capture flow.
// @Tags         items
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path string true "Category UUID"
// @Param        body body dto.CreateItemRequest true "Item name"
// @Success      201 {object} dto.ItemResponse
// @Failure      409 {object} apierror.APIError
// @Router       /v1/categories/{id}/items [post]
func (h *ItemsHandler) Create(c *gin.Context) {
	categoryID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid category id"))
		return
	}
	var req dto.CreateItemRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Create(c.Request.Context(), shopID(c), categoryID, req.Name)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// ListByCategory godoc
// @Summary      List the items of one category
// @Tags         items
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Category UUID"
// @Success      200 {array} dto.ItemSummary
// @Router       /v1/categories/{id}/items [get]
func (h *ItemsHandler) ListByCategory(c *gin.Context) {
	categoryID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid category id"))
		return
	}
	resp, err := h.svc.ListByCategory(c.Request.Context(), shopID(c), categoryID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Get godoc
// @Summary      Item detail
// @Tags         items
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Item UUID"
// @Success      200 {object} dto.ItemResponse
// @Failure      404 {object} apierror.APIError
// @Router       /v1/items/{id} [get]
func (h *ItemsHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid item id"))
		return
	}
	resp, err := h.svc.Get(c.Request.Context(), shopID(c), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Save godoc
// @Summary      Save the edit overlay
// @Description  Leaving edit mode always saves; there is no discard. Missing prices coerce to zero.
// @Tags         items
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path string true "Item UUID"
// @Param        body body dto.SaveItemRequest true "Editable fields"
// @Success      200 {object} dto.ItemResponse
// @Failure      409 {object} apierror.APIError
// @Router       /v1/items/{id} [put]
func (h *ItemsHandler) Save(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid item id"))
		return
	}
	var req dto.SaveItemRequest
	if !bindAndValidate(c, &req) {
		return
	}
	sess := h.registry.Get(shopID(c), deviceID(c))
	if current := sess.Item(); current == nil || current.ID != id {
		writeError(c, session.ErrNoItemOpen)
		return
	}
	resp, err := h.svc.SaveEdits(c.Request.Context(), sess, req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
