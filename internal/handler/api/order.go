package api

import (
	"errors"
	"net/http"

	"bookmarket/internal/domain/order"
	"bookmarket/internal/handler/dto/request"
	"bookmarket/internal/handler/dto/response"
	"bookmarket/internal/handler/httperr"
	"bookmarket/internal/handler/middleware"
	"bookmarket/internal/usecase/commands"
	"bookmarket/internal/usecase/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type OrderHandler struct {
	orderCommands commands.OrderCommands
	orderQueries  queries.OrderQueries
}

func NewOrderHandler(orderCommands commands.OrderCommands, orderQueries queries.OrderQueries) *OrderHandler {
	return &OrderHandler{
		orderCommands: orderCommands,
		orderQueries:  orderQueries,
	}
}

// @Summary Create order
// @Description Create an empty draft order
// @Tags orders
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body request.CreateOrderRequest true "Order request"
// @Success 201 {object} response.OrderResponse
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Router /orders [post]
func (h *OrderHandler) Create(c *gin.Context) {
	customerID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	var req request.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return
	}

	input, err := req.ToInput(customerID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": err.Error(),
		})
		return
	}

	o, err := h.orderCommands.Create(c.Request.Context(), input)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": err.Error(),
		})
		return
	}

	h.respondOrder(c, http.StatusCreated, o)
}

// @Summary Get order
// @Description Get one of the customer's own orders
// @Tags orders
// @Produce json
// @Security BearerAuth
// @Param id path string true "Order ID"
// @Success 200 {object} response.OrderResponse
// @Failure 404 {object} map[string]string
// @Router /orders/{id} [get]
func (h *OrderHandler) Get(c *gin.Context) {
	customerID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	o, err := h.orderQueries.GetByID(c.Request.Context(), customerID, id)
	if err != nil {
		if errors.Is(err, queries.ErrOrderNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Order not found",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	h.respondOrder(c, http.StatusOK, o)
}

// @Summary List my orders
// @Description List all orders for the current customer
// @Tags orders
// @Produce json
// @Security BearerAuth
// @Success 200 {array} response.OrderResponse
// @Router /orders [get]
func (h *OrderHandler) ListMine(c *gin.Context) {
	customerID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	os, err := h.orderQueries.ListByCustomer(c.Request.Context(), customerID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	resp, err := response.FromOrders(os)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}
	c.JSON(http.StatusOK, resp)
}

// @Summary Add line item
// @Description Add an available listing to a draft order
// @Tags orders
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Order ID"
// @Param request body request.AddLineItemRequest true "Line item request"
// @Success 200 {object} response.OrderResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /orders/{id}/items [post]
func (h *OrderHandler) AddLineItem(c *gin.Context) {
	customerID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req request.AddLineItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return
	}

	o, err := h.orderCommands.AddLineItem(c.Request.Context(), id, customerID, req.ListingID)
	if err != nil {
		h.abortOrderError(c, err)
		return
	}

	h.respondOrder(c, http.StatusOK, o)
}

// @Summary Remove line item
// @Description Remove a listing from a draft order
// @Tags orders
// @Produce json
// @Security BearerAuth
// @Param id path string true "Order ID"
// @Param listingId path string true "Listing ID"
// @Success 200 {object} response.OrderResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /orders/{id}/items/{listingId} [delete]
func (h *OrderHandler) RemoveLineItem(c *gin.Context) {
	customerID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	listingID, err := uuid.Parse(c.Param("listingId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid ID format",
		})
		return
	}

	o, err := h.orderCommands.RemoveLineItem(c.Request.Context(), id, customerID, listingID)
	if err != nil {
		h.abortOrderError(c, err)
		return
	}

	h.respondOrder(c, http.StatusOK, o)
}

// @Summary Checkout order
// @Description Hold every listing in the order and move it to payment
// @Tags orders
// @Produce json
// @Security BearerAuth
// @Param id path string true "Order ID"
// @Success 200 {object} response.OrderResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} httperr.Response
// @Router /orders/{id}/checkout [post]
func (h *OrderHandler) Checkout(c *gin.Context) {
	customerID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	o, err := h.orderCommands.Checkout(c.Request.Context(), id, customerID)
	if err != nil {
		h.abortCheckoutError(c, err)
		return
	}

	h.respondOrder(c, http.StatusOK, o)
}

// @Summary Pay for order
// @Description Record payment and convert every hold into a sale
// @Tags orders
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Order ID"
// @Param request body request.PaymentRequest true "Payment request"
// @Success 200 {object} response.OrderResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /orders/{id}/payment [post]
func (h *OrderHandler) ProcessPayment(c *gin.Context) {
	customerID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req request.PaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return
	}

	o, err := h.orderCommands.ProcessPayment(c.Request.Context(), id, customerID, commands.PaymentInput{
		Method:        req.Method,
		TransactionID: req.TransactionID,
	})
	if err != nil {
		h.abortOrderError(c, err)
		return
	}

	h.respondOrder(c, http.StatusOK, o)
}

// @Summary Cancel order
// @Description Cancel an order and release any held listings
// @Tags orders
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Order ID"
// @Param request body request.CancelOrderRequest true "Cancel request"
// @Success 200 {object} response.OrderResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /orders/{id}/cancel [post]
func (h *OrderHandler) Cancel(c *gin.Context) {
	customerID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req request.CancelOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return
	}

	o, err := h.orderCommands.Cancel(c.Request.Context(), id, customerID, req.Reason)
	if err != nil {
		h.abortOrderError(c, err)
		return
	}

	h.respondOrder(c, http.StatusOK, o)
}

// @Summary Ship order
// @Description Record shipment tracking for a confirmed order
// @Tags orders
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Order ID"
// @Param request body request.ShipmentRequest true "Shipment request"
// @Success 200 {object} response.OrderResponse
// @Failure 400 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /orders/{id}/ship [post]
func (h *OrderHandler) Ship(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req request.ShipmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return
	}

	o, err := h.orderCommands.Ship(c.Request.Context(), id, commands.ShipmentInput{
		Carrier:        req.Carrier,
		TrackingNumber: req.TrackingNumber,
	})
	if err != nil {
		h.abortOrderError(c, err)
		return
	}

	h.respondOrder(c, http.StatusOK, o)
}

// @Summary Mark order delivered
// @Description Complete a shipped order
// @Tags orders
// @Produce json
// @Security BearerAuth
// @Param id path string true "Order ID"
// @Success 200 {object} response.OrderResponse
// @Failure 400 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /orders/{id}/delivered [post]
func (h *OrderHandler) MarkDelivered(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	o, err := h.orderCommands.MarkDelivered(c.Request.Context(), id)
	if err != nil {
		h.abortOrderError(c, err)
		return
	}

	h.respondOrder(c, http.StatusOK, o)
}

func (h *OrderHandler) respondOrder(c *gin.Context, status int, o *order.Order) {
	resp, err := response.FromOrder(o)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}
	c.JSON(status, resp)
}

// abortCheckoutError reports a failed checkout. Conflict responses carry the
// order's post-failure status so clients know the order is still in
// checking_out and can be retried or cancelled.
func (h *OrderHandler) abortCheckoutError(c *gin.Context, err error) {
	detail := gin.H{"order_status": string(order.StatusCheckingOut)}
	switch {
	case errors.Is(err, commands.ErrListingAlreadyHeld):
		httperr.AbortWithError(c, http.StatusConflict, err, "A listing in the order is already held", detail)
	case errors.Is(err, commands.ErrListingAlreadySold):
		httperr.AbortWithError(c, http.StatusConflict, err, "A listing in the order is already sold", detail)
	case errors.Is(err, commands.ErrListingNotFound):
		httperr.AbortWithError(c, http.StatusConflict, err, "A listing in the order no longer exists", detail)
	default:
		h.abortOrderError(c, err)
	}
}

func (h *OrderHandler) abortOrderError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, commands.ErrOrderNotFound):
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Order not found",
		})
	case errors.Is(err, commands.ErrListingNotFound):
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Listing not found",
		})
	case errors.Is(err, commands.ErrListingUnavailable),
		errors.Is(err, commands.ErrListingAlreadyHeld),
		errors.Is(err, commands.ErrListingAlreadySold),
		errors.Is(err, commands.ErrListingNotHeld):
		c.JSON(http.StatusConflict, gin.H{
			"error": err.Error(),
		})
	case errors.Is(err, order.ErrInvalidTransition),
		errors.Is(err, order.ErrDuplicateLineItem),
		errors.Is(err, order.ErrLineItemNotFound),
		errors.Is(err, order.ErrEmptyOrder),
		errors.Is(err, order.ErrCurrencyMixed),
		errors.Is(err, order.ErrEmptyPaymentField),
		errors.Is(err, order.ErrEmptyTracking):
		c.JSON(http.StatusBadRequest, gin.H{
			"error": err.Error(),
		})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
	}
}
