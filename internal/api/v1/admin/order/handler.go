package order

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"coinpay-backend/internal/models"
	"coinpay-backend/internal/services"
	"coinpay-backend/internal/utils"
	"coinpay-backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type Handler struct {
	orders *services.GormOrderStore
}

func NewHandler(orders *services.GormOrderStore) *Handler {
	return &Handler{orders: orders}
}

func toListItem(o models.PaymentOrder) OrderListItem {
	return OrderListItem{
		ID:         o.ID,
		UserID:     o.UserID,
		Subject:    o.Subject,
		Amount:     o.Amount.StringFixed(2),
		Currency:   o.Currency,
		Provider:   o.Provider,
		Status:     string(o.Status),
		OrderType:  o.OrderType,
		ExternalID: o.ExternalID,
		Remark:     o.Remark,
		PaidAt:     o.PaidAt,
		ClosedAt:   o.ClosedAt,
		CreatedAt:  o.CreatedAt,
		UpdatedAt:  o.UpdatedAt,
	}
}

// ListOrders 获取订单列表
func (h *Handler) ListOrders(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	filter := services.OrderFilter{
		Page:  page,
		Limit: limit,
	}

	// 解析筛选参数
	if userIDStr, exists := c.GetQuery("user_id"); exists {
		if userID, err := strconv.ParseUint(userIDStr, 10, 32); err == nil {
			uid := uint(userID)
			filter.UserID = &uid
		}
	}
	if status, exists := c.GetQuery("status"); exists {
		s := models.OrderStatus(status)
		filter.Status = &s
	}
	if provider, exists := c.GetQuery("provider"); exists {
		filter.Provider = &provider
	}
	if startTimeStr, exists := c.GetQuery("start_time"); exists {
		if startTime, err := time.Parse(time.RFC3339, startTimeStr); err == nil {
			filter.StartTime = &startTime
		}
	}
	if endTimeStr, exists := c.GetQuery("end_time"); exists {
		if endTime, err := time.Parse(time.RFC3339, endTimeStr); err == nil {
			filter.EndTime = &endTime
		}
	}
	if minAmountStr, exists := c.GetQuery("min_amount"); exists {
		if minAmount, err := decimal.NewFromString(minAmountStr); err == nil {
			filter.MinAmount = &minAmount
		}
	}
	if maxAmountStr, exists := c.GetQuery("max_amount"); exists {
		if maxAmount, err := decimal.NewFromString(maxAmountStr); err == nil {
			filter.MaxAmount = &maxAmount
		}
	}

	orders, total, err := h.orders.Find(c.Request.Context(), filter)
	if err != nil {
		logger.Log.Error("failed to list orders", zap.Error(err))
		utils.AbortWithError(c, http.StatusInternalServerError, "Failed to load orders")
		return
	}

	items := make([]OrderListItem, 0, len(orders))
	for _, o := range orders {
		items = append(items, toListItem(o))
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("success", OrderListResponse{
		Orders: items,
		Total:  total,
		Page:   page,
		Limit:  limit,
	}))
}

// GetOrder 获取订单详情
func (h *Handler) GetOrder(c *gin.Context) {
	order, err := h.orders.Lookup(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}

	response := OrderDetailResponse{OrderListItem: toListItem(*order)}
	if user, err := services.FindUserByID(order.UserID); err == nil {
		response.User = &UserBrief{
			ID:       user.ID,
			Username: user.Username,
			Balance:  user.Balance.StringFixed(2),
		}
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("success", response))
}

// CloseOrder 关闭订单
func (h *Handler) CloseOrder(c *gin.Context) {
	orderID := c.Param("id")

	closed, err := h.orders.CloseIfCreated(c.Request.Context(), orderID)
	if err != nil {
		h.writeError(c, err)
		return
	}

	message := "Order closed successfully"
	if !closed {
		message = "Order was already closed"
	}
	c.JSON(http.StatusOK, utils.NewSuccessResponse(message, nil))
}

func (h *Handler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrOrderNotFound):
		utils.AbortWithError(c, http.StatusNotFound, "Order not found")
	case errors.Is(err, services.ErrOrderTerminal):
		utils.AbortWithError(c, http.StatusConflict, "Order is already paid or closed")
	default:
		logger.Log.Error("order operation failed", zap.String("out_trade_no", c.Param("id")), zap.Error(err))
		utils.AbortWithError(c, http.StatusInternalServerError, "Internal server error")
	}
}
