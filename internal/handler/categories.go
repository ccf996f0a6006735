package handler

import (
	"net/http"

	"github.com/ArapCheruiyot/superkeeper/internal/apierror"
	"github.com/ArapCheruiyot/superkeeper/internal/dto"
	"github.com/ArapCheruiyot/superkeeper/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type CategoriesHandler struct{ svc service.CategoryService }

func NewCategoriesHandler(svc service.CategoryService) *CategoriesHandler {
	return &CategoriesHandler{svc: svc}
}

// CreateRoot godoc
// @Summary      Create a top-level category
// @Tags         categories
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.CreateCategoryRequest true "Category name"
// @Success      201 {object} dto.CategoryResponse
// @Failure      409 {object} apierror.APIError "Duplicate name"
// @Router       /v1/categories [post]
func (h *CategoriesHandler) CreateRoot(c *gin.Context) {
	var req dto.CreateCategoryRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.CreateRoot(c.Request.Context(), shopID(c), req.Name)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// CreateSub godoc
// @Summary      Nest a category under a parent
// @Description  Refused when the parent already holds items — items only hang off leaves.
// @Tags         categories
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path string true "Parent category UUID"
// @Param        body body dto.CreateCategoryRequest true "Category name"
// @Success      201 {object} dto.CategoryResponse
// @Failure      409 {object} apierror.APIError
// @Router       /v1/categories/{id}/subcategories [post]
func (h *CategoriesHandler) CreateSub(c *gin.Context) {
	parentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid category id"))
		return
	}
	var req dto.CreateCategoryRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.CreateSub(c.Request.Context(), shopID(c), parentID, req.Name)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Rename godoc
// @Summary      Rename a category
// @Description  Rebuilds the denormalized path of every descendant category and item.
// @Tags         categories
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path string true "Category UUID"
// @Param        body body dto.RenameRequest true "New name"
// @Success      200 {object} dto.CategoryResponse
// @Failure      409 {object} apierror.APIError
// @Router       /v1/categories/{id} [patch]
func (h *CategoriesHandler) Rename(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid category id"))
		return
	}
	var req dto.RenameRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Rename(c.Request.Context(), shopID(c), id, req.Name)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Delete godoc
// @Summary      Delete a category
// @Description  Never cascades; the response reports how many children were left parentless.
// @Tags         categories
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Category UUID"
// @Success      200 {object} dto.DeleteCategoryResponse
// @Failure      404 {object} apierror.APIError
// @Router       /v1/categories/{id} [delete]
func (h *CategoriesHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid category id"))
		return
	}
	resp, err := h.svc.Delete(c.Request.Context(), shopID(c), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Tree godoc
// @Summary      Full category tree with items
// @Tags         categories
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} dto.TreeResponse
// @Router       /v1/categories/tree [get]
func (h *CategoriesHandler) Tree(c *gin.Context) {
	resp, err := h.svc.Tree(c.Request.Context(), shopID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
