//go:build unit

package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"bookmarket/internal/domain/order"
	"bookmarket/internal/handler/api"
	"bookmarket/internal/handler/dto/response"
	"bookmarket/internal/usecase/commands"
	"bookmarket/internal/usecase/queries"
	"bookmarket/tests/common/builder"
	"bookmarket/tests/common/httptest"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
)

type OrderHandlerTestSuite struct {
	suite.Suite
	router     *gin.Engine
	commands   *fakeOrderCommands
	queries    *fakeOrderQueries
	customerID uuid.UUID
}

func (s *OrderHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	s.router = gin.New()
	s.commands = &fakeOrderCommands{}
	s.queries = &fakeOrderQueries{}
	s.customerID = uuid.New()

	// Stand-in for the auth middleware: a bearer header authenticates the
	// suite's customer.
	s.router.Use(func(c *gin.Context) {
		if c.GetHeader("Authorization") != "" {
			c.Set("user_id", s.customerID)
		}
	})

	handler := api.NewOrderHandler(s.commands, s.queries)
	s.router.POST("/orders", handler.Create)
	s.router.GET("/orders", handler.ListMine)
	s.router.GET("/orders/:id", handler.Get)
	s.router.POST("/orders/:id/items", handler.AddLineItem)
	s.router.DELETE("/orders/:id/items/:listingId", handler.RemoveLineItem)
	s.router.POST("/orders/:id/checkout", handler.Checkout)
	s.router.POST("/orders/:id/payment", handler.ProcessPayment)
	s.router.POST("/orders/:id/cancel", handler.Cancel)
	s.router.POST("/orders/:id/ship", handler.Ship)
	s.router.POST("/orders/:id/delivered", handler.MarkDelivered)
}

func TestOrderHandlerSuite(t *testing.T) {
	suite.Run(t, new(OrderHandlerTestSuite))
}

func (s *OrderHandlerTestSuite) buildOrder() *order.Order {
	o, err := builder.NewOrderBuilder().
		With(func(b *builder.OrderBuilder) { b.CustomerID = s.customerID }).
		BuildDomain()
	s.Require().NoError(err)
	return o
}

// conflictBody is the shape checkout failures come back in: the message for
// humans plus the order's post-failure status for clients.
type conflictBody struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
	Detail struct {
		OrderStatus string `json:"order_status"`
	} `json:"detail"`
}

func (s *OrderHandlerTestSuite) TestCreate() {
	url := "/orders"
	reqBody := gin.H{
		"shipping_address": gin.H{
			"line1":       "123 Elm Street",
			"city":        "Portland",
			"postal_code": "97201",
			"country":     "US",
		},
		"tax":      gin.H{"amount": 160, "currency": "USD"},
		"shipping": gin.H{"amount": 500, "currency": "USD"},
	}

	s.Run("success: returns 201 with the draft order", func() {
		o := s.buildOrder()
		s.commands.createFn = func(_ context.Context, input commands.CreateOrderInput) (*order.Order, error) {
			s.Equal(s.customerID, input.CustomerID)
			return o, nil
		}

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, reqBody, "token")

		var resp response.OrderResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusCreated, &resp)
		s.Equal(o.ID(), resp.ID)
		s.Equal(string(order.StatusDraft), resp.Status)
	})

	s.Run("error: 400 Bad Request when shipping address is missing", func() {
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url,
			gin.H{"tax": gin.H{"amount": 160, "currency": "USD"}}, "token")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "Invalid request format")
	})

	s.Run("error: 500 when the auth context is missing", func() {
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, reqBody, "")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusInternalServerError, "Internal server error")
	})
}

func (s *OrderHandlerTestSuite) TestGet() {
	o := s.buildOrder()
	url := "/orders/" + o.ID().String()

	s.Run("success: returns 200 with the customer's order", func() {
		s.queries.getByIDFn = func(_ context.Context, actor uuid.UUID, id uuid.UUID) (*order.Order, error) {
			s.Equal(s.customerID, actor)
			s.Equal(o.ID(), id)
			return o, nil
		}

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, url, nil, "token")

		var resp response.OrderResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &resp)
		s.Equal(o.ID(), resp.ID)
		s.Equal(s.customerID, resp.CustomerID)
	})

	s.Run("error: 404 when the order does not exist", func() {
		s.queries.getByIDFn = func(_ context.Context, _ uuid.UUID, _ uuid.UUID) (*order.Order, error) {
			return nil, queries.ErrOrderNotFound
		}

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, url, nil, "token")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusNotFound, "Order not found")
	})

	s.Run("error: 400 on a malformed id", func() {
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/orders/not-a-uuid", nil, "token")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "Invalid ID format")
	})

	s.Run("error: 500 on store failures", func() {
		s.queries.getByIDFn = func(_ context.Context, _ uuid.UUID, _ uuid.UUID) (*order.Order, error) {
			return nil, errors.New("connection reset")
		}

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, url, nil, "token")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusInternalServerError, "Internal server error")
	})
}

func (s *OrderHandlerTestSuite) TestAddLineItem() {
	o := s.buildOrder()
	url := "/orders/" + o.ID().String() + "/items"
	listingID := uuid.New()
	reqBody := gin.H{"listing_id": listingID}

	s.Run("success: returns 200 with the updated order", func() {
		s.commands.addLineItemFn = func(_ context.Context, orderID, customerID, lID uuid.UUID) (*order.Order, error) {
			s.Equal(o.ID(), orderID)
			s.Equal(s.customerID, customerID)
			s.Equal(listingID, lID)
			return o, nil
		}

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, reqBody, "token")
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, nil)
	})

	s.Run("error: 400 when listing_id is missing", func() {
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, gin.H{}, "token")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "Invalid request format")
	})

	s.Run("error: maps usecase errors to proper statuses", func() {
		testCases := []struct {
			name           string
			commandsError  error
			expectedStatus int
			expectedMsg    string
		}{
			{
				name:           "order not found",
				commandsError:  commands.ErrOrderNotFound,
				expectedStatus: http.StatusNotFound,
				expectedMsg:    "Order not found",
			},
			{
				name:           "listing not found",
				commandsError:  commands.ErrListingNotFound,
				expectedStatus: http.StatusNotFound,
				expectedMsg:    "Listing not found",
			},
			{
				name:           "listing unavailable",
				commandsError:  commands.ErrListingUnavailable,
				expectedStatus: http.StatusConflict,
			},
			{
				name:           "duplicate line item",
				commandsError:  order.ErrDuplicateLineItem,
				expectedStatus: http.StatusBadRequest,
			},
			{
				name:           "internal error",
				commandsError:  errors.New("connection reset"),
				expectedStatus: http.StatusInternalServerError,
				expectedMsg:    "Internal server error",
			},
		}

		for _, tc := range testCases {
			s.Run(tc.name, func() {
				s.commands.addLineItemFn = func(_ context.Context, _, _, _ uuid.UUID) (*order.Order, error) {
					return nil, tc.commandsError
				}

				rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, reqBody, "token")
				httptest.AssertErrorResponse(s.T(), rec, tc.expectedStatus, tc.expectedMsg)
			})
		}
	})
}

func (s *OrderHandlerTestSuite) TestCheckout() {
	o := s.buildOrder()
	url := "/orders/" + o.ID().String() + "/checkout"

	s.Run("success: returns 200 with the order in payment", func() {
		s.commands.checkoutFn = func(_ context.Context, orderID, customerID uuid.UUID) (*order.Order, error) {
			s.Equal(o.ID(), orderID)
			s.Equal(s.customerID, customerID)
			return o, nil
		}

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, nil, "token")
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, nil)
	})

	s.Run("error: 409 conflicts carry the checking_out status detail", func() {
		testCases := []struct {
			name          string
			commandsError error
			expectedMsg   string
		}{
			{
				name:          "a listing is already held",
				commandsError: commands.ErrListingAlreadyHeld,
				expectedMsg:   "already held",
			},
			{
				name:          "a listing is already sold",
				commandsError: commands.ErrListingAlreadySold,
				expectedMsg:   "already sold",
			},
			{
				name:          "a listing no longer exists",
				commandsError: commands.ErrListingNotFound,
				expectedMsg:   "no longer exists",
			},
		}

		for _, tc := range testCases {
			s.Run(tc.name, func() {
				s.commands.checkoutFn = func(_ context.Context, _, _ uuid.UUID) (*order.Order, error) {
					return nil, tc.commandsError
				}

				rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, nil, "token")
				s.Equal(http.StatusConflict, rec.Code, rec.Body.String())

				var body conflictBody
				s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &body))
				s.Contains(body.Error.Message, tc.expectedMsg)
				s.Equal(string(order.StatusCheckingOut), body.Detail.OrderStatus)
			})
		}
	})

	s.Run("error: 404 when the order does not exist", func() {
		s.commands.checkoutFn = func(_ context.Context, _, _ uuid.UUID) (*order.Order, error) {
			return nil, commands.ErrOrderNotFound
		}

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, nil, "token")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusNotFound, "Order not found")
	})

	s.Run("error: 400 when the order cannot be checked out", func() {
		for _, domainErr := range []error{order.ErrEmptyOrder, order.ErrInvalidTransition} {
			s.commands.checkoutFn = func(_ context.Context, _, _ uuid.UUID) (*order.Order, error) {
				return nil, domainErr
			}

			rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, nil, "token")
			httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "")
		}
	})
}

func (s *OrderHandlerTestSuite) TestProcessPayment() {
	o := s.buildOrder()
	url := "/orders/" + o.ID().String() + "/payment"
	reqBody := gin.H{"method": "credit_card", "transaction_id": "txn-123"}

	s.Run("success: returns 200 and forwards the payment details", func() {
		s.commands.processPaymentFn = func(_ context.Context, orderID, customerID uuid.UUID, input commands.PaymentInput) (*order.Order, error) {
			s.Equal(o.ID(), orderID)
			s.Equal("credit_card", input.Method)
			s.Equal("txn-123", input.TransactionID)
			return o, nil
		}

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, reqBody, "token")
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, nil)
	})

	s.Run("error: 400 when payment fields are missing", func() {
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url,
			gin.H{"method": "credit_card"}, "token")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "Invalid request format")
	})

	s.Run("error: 409 when a hold has moved to another order", func() {
		s.commands.processPaymentFn = func(_ context.Context, _, _ uuid.UUID, _ commands.PaymentInput) (*order.Order, error) {
			return nil, commands.ErrListingNotHeld
		}

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, reqBody, "token")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusConflict, "")
	})
}

func (s *OrderHandlerTestSuite) TestCancel() {
	o := s.buildOrder()
	url := "/orders/" + o.ID().String() + "/cancel"

	s.Run("success: returns 200 and forwards the reason", func() {
		s.commands.cancelFn = func(_ context.Context, orderID, customerID uuid.UUID, reason string) (*order.Order, error) {
			s.Equal(o.ID(), orderID)
			s.Equal("changed my mind", reason)
			return o, nil
		}

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url,
			gin.H{"reason": "changed my mind"}, "token")
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, nil)
	})

	s.Run("error: 400 when the order is past cancelling", func() {
		s.commands.cancelFn = func(_ context.Context, _, _ uuid.UUID, _ string) (*order.Order, error) {
			return nil, order.ErrInvalidTransition
		}

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, gin.H{}, "token")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "")
	})
}

func (s *OrderHandlerTestSuite) TestShip() {
	o := s.buildOrder()
	url := "/orders/" + o.ID().String() + "/ship"

	s.Run("success: returns 200 and forwards the tracking details", func() {
		s.commands.shipFn = func(_ context.Context, orderID uuid.UUID, input commands.ShipmentInput) (*order.Order, error) {
			s.Equal(o.ID(), orderID)
			s.Equal("UPS", input.Carrier)
			s.Equal("1Z999", input.TrackingNumber)
			return o, nil
		}

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url,
			gin.H{"carrier": "UPS", "tracking_number": "1Z999"}, "token")
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, nil)
	})

	s.Run("error: 400 when tracking fields are missing", func() {
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url,
			gin.H{"carrier": "UPS"}, "token")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "Invalid request format")
	})
}

func (s *OrderHandlerTestSuite) TestListMine() {
	s.Run("success: returns 200 with the customer's orders", func() {
		o := s.buildOrder()
		s.queries.listByCustomerFn = func(_ context.Context, customerID uuid.UUID) ([]*order.Order, error) {
			s.Equal(s.customerID, customerID)
			return []*order.Order{o}, nil
		}

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/orders", nil, "token")

		var resp []response.OrderResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &resp)
		s.Len(resp, 1)
		s.Equal(o.ID(), resp[0].ID)
	})
}
