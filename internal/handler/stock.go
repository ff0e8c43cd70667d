package handler

import (
	"net/http"

	"github.com/Nicolaspz/FullRestourant-sub000/internal/apierror"
	"github.com/Nicolaspz/FullRestourant-sub000/internal/dto"
	"github.com/Nicolaspz/FullRestourant-sub000/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type StockHandler struct {
	svc service.StockService
}

func NewStockHandler(svc service.StockService) *StockHandler {
	return &StockHandler{svc: svc}
}

// Replenish godoc
// @Summary      Register a purchase entry
// @Description  Creates a new cost lot and credits the general warehouse. The only way new lots enter the system.
// @Tags         stock
// @Accept       json
// @Produce      json
// @Param        body body dto.ReplenishStockRequest true "Purchase detail"
// @Success      201  {object} dto.ReplenishStockResponse
// @Failure      404  {object} apierror.APIError
// @Router       /v1/stock/replenish [post]
func (h *StockHandler) Replenish(c *gin.Context) {
	var req dto.ReplenishStockRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Replenish(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// TransferToArea godoc
// @Summary      Refill an area from general stock
// @Description  Deducts from the general warehouse (oldest lots first) and credits the area reserve, writing a paired transfer trail.
// @Tags         stock
// @Accept       json
// @Produce      json
// @Param        id   path string                  true "Area UUID"
// @Param        body body dto.AreaTransferRequest true "Product and quantity"
// @Success      204
// @Failure      409  {object} apierror.APIError
// @Router       /v1/areas/{id}/replenish [post]
func (h *StockHandler) TransferToArea(c *gin.Context) {
	areaID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid area id"))
		return
	}
	var req dto.AreaTransferRequest
	if !bindAndValidate(c, &req) {
		return
	}
	if err := h.svc.TransferToArea(c.Request.Context(), areaID, req); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Availability godoc
// @Summary      Product availability snapshot
// @Description  Returns the general balance, every area reserve holding the product, and the combined total.
// @Tags         stock
// @Produce      json
// @Param        productId       path  string true "Product UUID"
// @Param        organization_id query string true "Organization UUID"
// @Success      200  {object} dto.AvailabilityResponse
// @Failure      404  {object} apierror.APIError
// @Router       /v1/stock/{productId} [get]
func (h *StockHandler) Availability(c *gin.Context) {
	productID, err := uuid.Parse(c.Param("productId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid product id"))
		return
	}
	orgID, err := uuid.Parse(c.Query("organization_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid organization_id"))
		return
	}
	resp, err := h.svc.Availability(c.Request.Context(), productID, orgID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// History godoc
// @Summary      Product movement history
// @Description  Paginated stock trail for a product, newest entries first.
// @Tags         stock
// @Produce      json
// @Param        productId       path  string true  "Product UUID"
// @Param        organization_id query string true  "Organization UUID"
// @Param        page            query int    false "Page (default 1)"
// @Param        limit           query int    false "Entries per page (default 50)"
// @Success      200  {object} dto.HistoryResponse
// @Failure      400  {object} apierror.APIError
// @Router       /v1/stock/{productId}/history [get]
func (h *StockHandler) History(c *gin.Context) {
	productID, err := uuid.Parse(c.Param("productId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid product id"))
		return
	}
	var filter dto.HistoryFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	orgID, err := uuid.Parse(filter.OrganizationID)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid organization_id"))
		return
	}
	resp, err := h.svc.History(c.Request.Context(), productID, orgID, filter.Page, filter.Limit)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
