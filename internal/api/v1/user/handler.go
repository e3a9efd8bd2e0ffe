package user

import (
	"net/http"
	"strconv"

	"coinpay-backend/internal/middleware"
	"coinpay-backend/internal/services"
	"coinpay-backend/internal/utils"
	"coinpay-backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handler struct {
	ledger *services.GormLedger
}

func NewHandler(ledger *services.GormLedger) *Handler {
	return &Handler{ledger: ledger}
}

// Wallet returns the caller's balance and top-up history
func (h *Handler) Wallet(c *gin.Context) {
	u, ok := middleware.CurrentUser(c)
	if !ok {
		utils.AbortWithError(c, http.StatusUnauthorized, "Unauthorized")
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	ctx := c.Request.Context()
	// The middleware copy may come from cache; balances are read fresh.
	account, err := h.ledger.Balance(ctx, u.ID)
	if err != nil {
		logger.Log.Error("failed to load balance", zap.Uint("user_id", u.ID), zap.Error(err))
		utils.AbortWithError(c, http.StatusInternalServerError, "Failed to load wallet")
		return
	}

	entries, total, err := h.ledger.History(ctx, services.TransactionFilter{
		UserID: &u.ID,
		Page:   page,
		Limit:  limit,
	})
	if err != nil {
		logger.Log.Error("failed to load transactions", zap.Uint("user_id", u.ID), zap.Error(err))
		utils.AbortWithError(c, http.StatusInternalServerError, "Failed to load wallet")
		return
	}

	items := make([]TransactionItem, 0, len(entries))
	for _, e := range entries {
		items = append(items, TransactionItem{
			OrderID:       e.OrderID,
			Type:          string(e.Type),
			Amount:        e.Amount.StringFixed(2),
			BalanceBefore: e.BalanceBefore.StringFixed(2),
			BalanceAfter:  e.BalanceAfter.StringFixed(2),
			Reason:        e.Reason,
			CreatedAt:     e.CreatedAt,
		})
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("success", WalletResponse{
		ID:           account.ID,
		Username:     account.Username,
		Balance:      account.Balance.StringFixed(2),
		Transactions: items,
		Total:        total,
		Page:         page,
		Limit:        limit,
	}))
}
