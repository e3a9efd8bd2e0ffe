package payment

import (
	"errors"
	"net/http"

	"coinpay-backend/internal/middleware"
	gateway "coinpay-backend/internal/payment"
	"coinpay-backend/internal/services"
	"coinpay-backend/internal/utils"
	"coinpay-backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// maxNotifyBody caps notification bodies read from the public endpoint.
const maxNotifyBody = 64 << 10

type Handler struct {
	svc *services.PaymentService
}

func NewHandler(svc *services.PaymentService) *Handler {
	return &Handler{svc: svc}
}

// GetPaymentMethods returns the enabled payment methods
func (h *Handler) GetPaymentMethods(c *gin.Context) {
	methods, err := h.svc.Methods(c.Request.Context())
	if err != nil {
		logger.Log.Error("failed to list payment methods", zap.Error(err))
		utils.AbortWithError(c, http.StatusInternalServerError, "Failed to load payment methods")
		return
	}

	response := make([]PaymentMethodResponse, 0, len(methods))
	for _, m := range methods {
		response = append(response, PaymentMethodResponse{Provider: m.Provider, Name: m.Name})
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("success", response))
}

// Purchase creates an order and returns the gateway payment page
func (h *Handler) Purchase(c *gin.Context) {
	var req PurchaseRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	user, ok := middleware.CurrentUser(c)
	if !ok {
		utils.AbortWithError(c, http.StatusUnauthorized, "Unauthorized")
		return
	}

	res, err := h.svc.Purchase(c.Request.Context(), services.PurchaseRequest{
		Provider: c.Param("provider"),
		UserID:   user.ID,
		Amount:   req.Price,
	})
	if err != nil {
		var gwErr *gateway.GatewayError
		switch {
		case errors.Is(err, gateway.ErrInvalidAmount):
			utils.AbortWithError(c, http.StatusBadRequest, "Invalid amount")
		case errors.Is(err, services.ErrProviderNotFound):
			utils.AbortWithError(c, http.StatusNotFound, "Payment method not found")
		case errors.Is(err, services.ErrProviderDisabled):
			utils.AbortWithError(c, http.StatusBadRequest, "Payment method is disabled")
		case errors.As(err, &gwErr):
			// gateway details stay in the logs
			utils.AbortWithError(c, http.StatusBadGateway, "Payment gateway is unavailable, please try again later")
		default:
			logger.Log.Error("purchase failed", zap.Uint("user_id", user.ID), zap.Error(err))
			utils.AbortWithError(c, http.StatusInternalServerError, "Failed to create payment")
		}
		return
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("success", PurchaseResponse{
		OrderID: res.OrderID,
		URL:     res.URL,
	}))
}

// GetOrder reports the caller's order status
func (h *Handler) GetOrder(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		utils.AbortWithError(c, http.StatusUnauthorized, "Unauthorized")
		return
	}

	order, err := h.svc.OrderStatus(c.Request.Context(), user.ID, c.Param("id"))
	if err != nil {
		if errors.Is(err, services.ErrOrderNotFound) {
			utils.AbortWithError(c, http.StatusNotFound, "Order not found")
			return
		}
		logger.Log.Error("failed to load order", zap.Error(err))
		utils.AbortWithError(c, http.StatusInternalServerError, "Failed to load order")
		return
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("success", OrderResponse{
		ID:        order.ID,
		Amount:    order.Amount.StringFixed(2),
		Currency:  order.Currency,
		Provider:  order.Provider,
		Status:    string(order.Status),
		CreatedAt: order.CreatedAt,
		PaidAt:    order.PaidAt,
		ClosedAt:  order.ClosedAt,
	}))
}

// Notify receives gateway callbacks. The gateway only looks at the body:
// "success" stops its retries, anything else schedules another delivery.
func (h *Handler) Notify(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxNotifyBody)
	body, err := c.GetRawData()
	if err != nil {
		logger.Log.Warn("failed to read notification body", zap.String("ip", c.ClientIP()), zap.Error(err))
		c.String(http.StatusOK, services.AckFail)
		return
	}

	res := h.svc.HandleNotification(c.Request.Context(), services.NotificationRequest{
		Provider: c.Param("provider"),
		Body:     body,
		RemoteIP: c.ClientIP(),
	})
	c.String(http.StatusOK, res.Outcome.Ack())
}
