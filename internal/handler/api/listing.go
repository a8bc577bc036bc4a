package api

import (
	"errors"
	"net/http"

	"bookmarket/internal/domain/listing"
	"bookmarket/internal/handler/dto/request"
	"bookmarket/internal/handler/dto/response"
	"bookmarket/internal/handler/httperr"
	"bookmarket/internal/usecase/commands"
	"bookmarket/internal/usecase/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Conflict body codes. Remote order services resolve these back into their
// client-side sentinels, so they are part of the listing service's contract.
const (
	codeAlreadyHeld = "listing_already_held"
	codeAlreadySold = "listing_already_sold"
	codeNotHeld     = "listing_not_held"
)

type ListingHandler struct {
	listingCommands commands.ListingCommands
	listingQueries  queries.ListingQueries
}

func NewListingHandler(listingCommands commands.ListingCommands, listingQueries queries.ListingQueries) *ListingHandler {
	return &ListingHandler{
		listingCommands: listingCommands,
		listingQueries:  listingQueries,
	}
}

// @Summary Publish listing
// @Description Publish an appraised book copy for sale
// @Tags listings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body request.PublishListingRequest true "Listing request"
// @Success 201 {object} response.ListingResponse
// @Failure 400 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Router /listings [post]
func (h *ListingHandler) Publish(c *gin.Context) {
	var req request.PublishListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return
	}

	input, err := req.ToInput()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": err.Error(),
		})
		return
	}

	l, err := h.listingCommands.Publish(c.Request.Context(), input)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": err.Error(),
		})
		return
	}

	c.JSON(http.StatusCreated, response.FromListing(l))
}

// @Summary List available listings
// @Description Browse listings currently available for sale
// @Tags listings
// @Produce json
// @Success 200 {array} response.ListingResponse
// @Router /listings [get]
func (h *ListingHandler) ListAvailable(c *gin.Context) {
	ls, err := h.listingQueries.ListAvailable(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}
	c.JSON(http.StatusOK, response.FromListings(ls))
}

// @Summary Get listing
// @Description Get listing by ID
// @Tags listings
// @Produce json
// @Param id path string true "Listing ID"
// @Success 200 {object} response.ListingResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /listings/{id} [get]
func (h *ListingHandler) Get(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	l, err := h.listingQueries.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, queries.ErrListingNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Listing not found",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	c.JSON(http.StatusOK, response.FromListing(l))
}

// @Summary Hold listing
// @Description Reserve a listing for an order during checkout
// @Tags listings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Listing ID"
// @Param request body request.HoldListingRequest true "Hold request"
// @Success 200 {object} response.ListingResponse
// @Failure 404 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Router /listings/{id}/hold [post]
func (h *ListingHandler) Hold(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req request.HoldListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return
	}

	l, err := h.listingCommands.Hold(c.Request.Context(), id, req.OrderID)
	if err != nil {
		h.abortListingError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.FromListing(l))
}

// @Summary Release hold
// @Description Put a listing held by the given order back on sale
// @Tags listings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Listing ID"
// @Param request body request.ReleaseListingRequest true "Release request"
// @Success 200 {object} response.ListingResponse
// @Failure 404 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Router /listings/{id}/release [post]
func (h *ListingHandler) Release(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req request.ReleaseListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return
	}

	l, err := h.listingCommands.Release(c.Request.Context(), id, req.OrderID)
	if err != nil {
		h.abortListingError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.FromListing(l))
}

// @Summary Mark listing sold
// @Description Convert the given order's hold into a completed sale
// @Tags listings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Listing ID"
// @Param request body request.MarkSoldRequest true "Sale request"
// @Success 200 {object} response.ListingResponse
// @Failure 404 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Router /listings/{id}/sold [post]
func (h *ListingHandler) MarkSold(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req request.MarkSoldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return
	}

	l, err := h.listingCommands.MarkSold(c.Request.Context(), id, req.OrderID)
	if err != nil {
		h.abortListingError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.FromListing(l))
}

// @Summary Withdraw listing
// @Description Pull a listing off the marketplace
// @Tags listings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Listing ID"
// @Param request body request.WithdrawListingRequest true "Withdraw request"
// @Success 200 {object} response.ListingResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} httperr.Response
// @Router /listings/{id}/withdraw [post]
func (h *ListingHandler) Withdraw(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req request.WithdrawListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return
	}

	l, err := h.listingCommands.Withdraw(c.Request.Context(), id, req.Reason)
	if err != nil {
		switch {
		case errors.Is(err, commands.ErrListingNotFound):
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Listing not found",
			})
		case errors.Is(err, listing.ErrCannotWithdrawSold), errors.Is(err, listing.ErrAlreadyWithdrawn):
			c.JSON(http.StatusBadRequest, gin.H{
				"error": err.Error(),
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Internal server error",
			})
		}
		return
	}

	c.JSON(http.StatusOK, response.FromListing(l))
}

func (h *ListingHandler) abortListingError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, commands.ErrListingNotFound):
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Listing not found",
		})
	case errors.Is(err, commands.ErrListingAlreadyHeld):
		httperr.AbortWithCode(c, http.StatusConflict, codeAlreadyHeld, err, "Listing is already held")
	case errors.Is(err, commands.ErrListingAlreadySold):
		httperr.AbortWithCode(c, http.StatusConflict, codeAlreadySold, err, "Listing is already sold")
	case errors.Is(err, commands.ErrListingNotHeld):
		httperr.AbortWithCode(c, http.StatusConflict, codeNotHeld, err, "Listing is not held")
	default:
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
	}
}

func parseIDParam(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid ID format",
		})
		return uuid.Nil, false
	}
	return id, true
}
