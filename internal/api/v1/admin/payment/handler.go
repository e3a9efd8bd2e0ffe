package payment

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"coinpay-backend/internal/models"
	gateway "coinpay-backend/internal/payment"
	"coinpay-backend/internal/services"
	"coinpay-backend/internal/utils"
	"coinpay-backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// maskedSecret replaces the shared secret in responses. Sending it back
// unchanged on update keeps the stored secret.
const maskedSecret = "******"

type Handler struct {
	store    *services.GormConfigStore
	registry *gateway.Registry
}

func NewHandler(store *services.GormConfigStore, registry *gateway.Registry) *Handler {
	return &Handler{store: store, registry: registry}
}

func toResponse(cfg models.PaymentConfig) PaymentConfigResponse {
	configMap, _ := cfg.SettingsMap()
	if _, ok := configMap["secret"]; ok {
		configMap["secret"] = maskedSecret
	}

	return PaymentConfigResponse{
		ID:        cfg.ID,
		UUID:      cfg.UUID,
		Name:      cfg.Name,
		Provider:  cfg.Provider,
		Config:    configMap,
		Enable:    cfg.Enable,
		CreatedAt: cfg.CreatedAt.Format(time.RFC3339),
		UpdatedAt: cfg.UpdatedAt.Format(time.RFC3339),
	}
}

func parseID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		utils.AbortWithError(c, http.StatusBadRequest, "Invalid ID")
		return 0, false
	}
	return uint(id), true
}

// ListPaymentConfigs returns all payment configurations
func (h *Handler) ListPaymentConfigs(c *gin.Context) {
	configs, err := h.store.List(c.Request.Context())
	if err != nil {
		logger.Log.Error("failed to list payment configs", zap.Error(err))
		utils.AbortWithError(c, http.StatusInternalServerError, "Failed to load payment configs")
		return
	}

	response := make([]PaymentConfigResponse, 0, len(configs))
	for _, cfg := range configs {
		response = append(response, toResponse(cfg))
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("success", response))
}

// CreatePaymentConfig creates a new payment configuration
func (h *Handler) CreatePaymentConfig(c *gin.Context) {
	var req CreatePaymentConfigRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	if _, ok := h.registry.Get(req.Provider); !ok {
		utils.AbortWithError(c, http.StatusBadRequest, "Unknown payment provider")
		return
	}

	cfg, err := h.store.Create(c.Request.Context(), req.Provider, req.Name, req.Config, req.Enable)
	if err != nil {
		if errors.Is(err, services.ErrDuplicateProvider) {
			utils.AbortWithError(c, http.StatusConflict, "Payment provider already configured")
			return
		}
		logger.Log.Error("failed to create payment config", zap.Error(err))
		utils.AbortWithError(c, http.StatusInternalServerError, "Failed to create payment config")
		return
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("success", gin.H{"id": cfg.ID, "uuid": cfg.UUID}))
}

// UpdatePaymentConfig updates an existing payment configuration
func (h *Handler) UpdatePaymentConfig(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req UpdatePaymentConfigRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	ctx := c.Request.Context()
	if secret, ok := req.Config["secret"]; ok && secret == maskedSecret {
		existing, err := h.store.GetByID(ctx, id)
		if err != nil {
			h.writeStoreError(c, err)
			return
		}
		stored, _ := existing.SettingsMap()
		req.Config["secret"] = stored["secret"]
	}

	cfg, err := h.store.Update(ctx, id, req.Name, req.Config, req.Enable)
	if err != nil {
		h.writeStoreError(c, err)
		return
	}

	logger.Log.Info("payment config updated", zap.Uint("id", id), zap.String("provider", cfg.Provider), zap.Bool("enable", cfg.Enable))
	c.JSON(http.StatusOK, utils.NewSuccessResponse("success", toResponse(*cfg)))
}

// DeletePaymentConfig deletes a payment configuration
func (h *Handler) DeletePaymentConfig(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.store.Delete(c.Request.Context(), id); err != nil {
		h.writeStoreError(c, err)
		return
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("success", nil))
}

func (h *Handler) writeStoreError(c *gin.Context, err error) {
	if errors.Is(err, services.ErrConfigNotFound) {
		utils.AbortWithError(c, http.StatusNotFound, "Payment config not found")
		return
	}
	logger.Log.Error("payment config store failed", zap.Error(err))
	utils.AbortWithError(c, http.StatusInternalServerError, "Failed to update payment config")
}
