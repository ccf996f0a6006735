package handler

import (
	"net/http"

	"github.com/ArapCheruiyot/superkeeper/internal/apierror"
	"github.com/ArapCheruiyot/superkeeper/internal/dto"
	"github.com/ArapCheruiyot/superkeeper/internal/middleware"
	"github.com/ArapCheruiyot/superkeeper/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type StockHandler struct{ ledger service.LedgerService }

func NewStockHandler(ledger service.LedgerService) *StockHandler {
	return &StockHandler{ledger: ledger}
}

// Restock godoc
// @Summary      Add stock
// @Description  Appends a positive ledger entry; the cached stock moves with it in one write.
// @Tags         stock
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path string true "Item UUID"
// @Param        body body dto.RestockRequest true "Units to add"
// @Success      200 {object} dto.RestockResponse
// @Failure      400 {object} apierror.APIError
// @Router       /v1/items/{id}/restock [post]
func (h *StockHandler) Restock(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid item id"))
		return
	}
	var req dto.RestockRequest
	if !bindAndValidate(c, &req) {
		return
	}
	claims := middleware.GetClaims(c)
	item, txn, err := h.ledger.RecordStockIn(c.Request.Context(), shopID(c), id, req.Quantity, claims.Operator)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.RestockResponse{NewStock: item.Stock, Transaction: *txn})
}

// Transactions godoc
// @Summary      Full stock ledger, newest first
// @Tags         stock
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Item UUID"
// @Success      200 {object} dto.TransactionListResponse
// @Failure      404 {object} apierror.APIError
// @Router       /v1/items/{id}/transactions [get]
func (h *StockHandler) Transactions(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid item id"))
		return
	}
	resp, err := h.ledger.ListTransactions(c.Request.Context(), shopID(c), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
