package handler

import (
	"net/http"

	"github.com/ArapCheruiyot/superkeeper/internal/apierror"
	"github.com/ArapCheruiyot/superkeeper/internal/service"
	"github.com/ArapCheruiyot/superkeeper/internal/session"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// SessionHandler drives the overlay state machine. Every transition returns
// the resulting snapshot so the client renders from server truth.
type SessionHandler struct {
	registry *session.Registry
	items    service.ItemService
}

func NewSessionHandler(registry *session.Registry, items service.ItemService) *SessionHandler {
	return &SessionHandler{registry: registry, items: items}
}

func (h *SessionHandler) sess(c *gin.Context) *session.Session {
	return h.registry.Get(shopID(c), deviceID(c))
}

// State godoc
// @Summary      Current session snapshot
// @Tags         session
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} dto.SessionStateResponse
// @Router       /v1/session [get]
func (h *SessionHandler) State(c *gin.Context) {
	c.JSON(http.StatusOK, sessionState(h.sess(c)))
}

// OpenCategories godoc
// @Summary      Open the category browser overlay
// @Tags         session
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} dto.SessionStateResponse
// @Failure      409 {object} apierror.APIError "Capture in flight"
// @Router       /v1/session/overlay/categories [post]
func (h *SessionHandler) OpenCategories(c *gin.Context) {
	sess := h.sess(c)
	if err := sess.OpenCategories(); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, sessionState(sess))
}

// OpenItem godoc
// @Summary      Open an item's detail overlay
// @Description  Only reachable from the category browser. The capture phase resumes from the item's persisted images.
// @Tags         session
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Item UUID"
// @Success      200 {object} dto.SessionStateResponse
// @Failure      409 {object} apierror.APIError
// @Router       /v1/session/items/{id}/open [post]
func (h *SessionHandler) OpenItem(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid item id"))
		return
	}
	sess := h.sess(c)
	item, err := h.items.GetModel(c.Request.Context(), sess.ShopID, id)
	if err != nil {
		writeError(c, err)
		return
	}
	if err := sess.OpenItem(item); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, sessionState(sess))
}

// CloseItem godoc
// @Summary      Close the item detail, back to the category browser
// @Description  Refused while a capture is processing — the in-flight upload must finish or be cancelled first.
// @Tags         session
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} dto.SessionStateResponse
// @Failure      409 {object} apierror.APIError
// @Router       /v1/session/item/close [post]
func (h *SessionHandler) CloseItem(c *gin.Context) {
	sess := h.sess(c)
	if err := sess.CloseItem(); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, sessionState(sess))
}

// CloseAll godoc
// @Summary      Backdrop close — tear down all overlays
// @Tags         session
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} dto.SessionStateResponse
// @Failure      409 {object} apierror.APIError
// @Router       /v1/session/overlay/close [post]
func (h *SessionHandler) CloseAll(c *gin.Context) {
	sess := h.sess(c)
	if err := sess.CloseAll(); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, sessionState(sess))
}

// EnterEdit godoc
// @Summary      Put the open item detail into edit mode
// @Tags         session
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} dto.SessionStateResponse
// @Failure      409 {object} apierror.APIError
// @Router       /v1/session/item/edit [post]
func (h *SessionHandler) EnterEdit(c *gin.Context) {
	sess := h.sess(c)
	if err := sess.EnterEdit(); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, sessionState(sess))
}
