package handler

import (
	"net/http"

	"github.com/Nicolaspz/FullRestourant-sub000/internal/apierror"
	"github.com/Nicolaspz/FullRestourant-sub000/internal/dto"
	"github.com/Nicolaspz/FullRestourant-sub000/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type OrdersHandler struct {
	coordinator service.OrderCoordinator
	reversals   service.ReversalEngine
}

func NewOrdersHandler(coordinator service.OrderCoordinator, reversals service.ReversalEngine) *OrdersHandler {
	return &OrdersHandler{coordinator: coordinator, reversals: reversals}
}

// PlaceOrder godoc
// @Summary      Place an order on a table
// @Description  Claims the table session for the client token, resolves recipes, allocates stock across areas and the general warehouse, and commits the order atomically.
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        body body dto.PlaceOrderRequest true "Order detail"
// @Success      201  {object} dto.PlaceOrderResponse
// @Failure      404  {object} apierror.APIError
// @Failure      409  {object} apierror.APIError
// @Router       /v1/orders [post]
func (h *OrdersHandler) PlaceOrder(c *gin.Context) {
	var req dto.PlaceOrderRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.coordinator.PlaceOrder(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// CancelOrder godoc
// @Summary      Cancel a whole order
// @Description  Returns all stock for the order and cancels it. Rejected if any item has already been prepared.
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        id   path string                 true "Order UUID"
// @Param        body body dto.CancelOrderRequest true "Cancellation reason"
// @Success      200  {object} dto.CancelOrderResponse
// @Failure      422  {object} apierror.APIError
// @Router       /v1/orders/{id} [delete]
func (h *OrdersHandler) CancelOrder(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid order id"))
		return
	}
	var req dto.CancelOrderRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.reversals.ReturnOrder(c.Request.Context(), id, req.Reason)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// CancelItem godoc
// @Summary      Cancel a single order item
// @Description  Returns the item's ingredients to where they were taken from and marks the item canceled. Idempotent per item; prepared items are rejected.
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        id   path string                true "Item UUID"
// @Param        body body dto.CancelItemRequest true "Cancellation reason"
// @Success      200  {object} dto.CancelItemResponse
// @Failure      422  {object} apierror.APIError
// @Router       /v1/items/{id} [delete]
func (h *OrdersHandler) CancelItem(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid item id"))
		return
	}
	var req dto.CancelItemRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.reversals.ReturnItem(c.Request.Context(), id, req.Reason)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// AdjustItemQuantity godoc
// @Summary      Adjust an item's quantity
// @Description  Moves stock for the delta only: decreases return ingredients, increases allocate them. The item keeps its identity.
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        id   path string                    true "Item UUID"
// @Param        body body dto.AdjustQuantityRequest true "New quantity and reason"
// @Success      200  {object} dto.AdjustQuantityResponse
// @Failure      409  {object} apierror.APIError
// @Router       /v1/items/{id}/quantity [patch]
func (h *OrdersHandler) AdjustItemQuantity(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid item id"))
		return
	}
	var req dto.AdjustQuantityRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.reversals.AdjustQuantity(c.Request.Context(), id, req.NewQuantity, req.Reason)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
