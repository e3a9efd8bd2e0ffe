package notification

import (
	"errors"
	"net/http"
	"strconv"
	"time"
	"unicode/utf8"

	"coinpay-backend/internal/models"
	"coinpay-backend/internal/services"
	"coinpay-backend/internal/utils"
	"coinpay-backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handler struct {
	logs     *services.GormAuditLog
	payments *services.PaymentService
}

func NewHandler(logs *services.GormAuditLog, payments *services.PaymentService) *Handler {
	return &Handler{logs: logs, payments: payments}
}

func toItem(e models.NotificationLog) NotificationItem {
	return NotificationItem{
		ID:         e.ID,
		Provider:   e.Provider,
		TradeNo:    e.TradeNo,
		Stage:      e.Stage,
		Outcome:    e.Outcome,
		Reason:     e.Reason,
		RemoteIP:   e.RemoteIP,
		ReceivedID: e.ReceivedID,
		CreatedAt:  e.CreatedAt,
	}
}

// ListNotifications 获取回调日志
func (h *Handler) ListNotifications(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	filter := services.NotificationFilter{Page: page, Limit: limit}
	if provider, exists := c.GetQuery("provider"); exists {
		filter.Provider = &provider
	}
	if tradeNo, exists := c.GetQuery("trade_no"); exists {
		filter.TradeNo = &tradeNo
	}
	if stage, exists := c.GetQuery("stage"); exists {
		filter.Stage = &stage
	}
	if outcome, exists := c.GetQuery("outcome"); exists {
		filter.Outcome = &outcome
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

	entries, total, err := h.logs.Find(c.Request.Context(), filter)
	if err != nil {
		logger.Log.Error("failed to list notifications", zap.Error(err))
		utils.AbortWithError(c, http.StatusInternalServerError, "Failed to load notifications")
		return
	}

	items := make([]NotificationItem, 0, len(entries))
	for _, e := range entries {
		items = append(items, toItem(e))
	}
	c.JSON(http.StatusOK, utils.NewSuccessResponse("success", NotificationListResponse{
		Notifications: items,
		Total:         total,
		Page:          page,
		Limit:         limit,
	}))
}

// GetNotification 获取回调详情（含原始报文）
func (h *Handler) GetNotification(c *gin.Context) {
	entry, ok := h.load(c)
	if !ok {
		return
	}

	response := NotificationDetailResponse{NotificationItem: toItem(*entry)}
	if utf8.Valid(entry.Body) {
		response.Body = string(entry.Body)
	} else {
		response.BodyBase64 = entry.Body
	}
	c.JSON(http.StatusOK, utils.NewSuccessResponse("success", response))
}

// ReplayNotification feeds a stored raw body back through notification
// handling. The signature is checked again and the ledger stays idempotent,
// so a replay can only credit an order the gateway actually reported as paid.
func (h *Handler) ReplayNotification(c *gin.Context) {
	entry, ok := h.load(c)
	if !ok {
		return
	}
	if entry.Stage != services.AuditStageReceived || len(entry.Body) == 0 {
		utils.AbortWithError(c, http.StatusBadRequest, "Only received notifications can be replayed")
		return
	}

	res := h.payments.HandleNotification(c.Request.Context(), services.NotificationRequest{
		Provider: entry.Provider,
		Body:     entry.Body,
		RemoteIP: "replay:" + c.ClientIP(),
	})

	logger.Log.Info("notification replayed",
		zap.Uint("received_id", entry.ID),
		zap.String("out_trade_no", res.TradeNo),
		zap.String("outcome", string(res.Outcome)))

	c.JSON(http.StatusOK, utils.NewSuccessResponse("success", ReplayResponse{
		ReceivedID: entry.ID,
		TradeNo:    res.TradeNo,
		Outcome:    string(res.Outcome),
		Reason:     res.Reason,
		Ack:        res.Outcome.Ack(),
	}))
}

func (h *Handler) load(c *gin.Context) (*models.NotificationLog, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		utils.AbortWithError(c, http.StatusBadRequest, "Invalid ID")
		return nil, false
	}

	entry, err := h.logs.Get(c.Request.Context(), uint(id))
	if errors.Is(err, services.ErrNotificationNotFound) {
		utils.AbortWithError(c, http.StatusNotFound, "Notification not found")
		return nil, false
	}
	if err != nil {
		logger.Log.Error("failed to load notification", zap.Uint64("id", id), zap.Error(err))
		utils.AbortWithError(c, http.StatusInternalServerError, "Internal server error")
		return nil, false
	}
	return entry, true
}
