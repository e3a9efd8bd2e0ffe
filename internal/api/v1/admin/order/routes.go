package order

import "github.com/gin-gonic/gin"

func RegisterRoutes(r *gin.RouterGroup, h *Handler) {
	orderGroup := r.Group("/orders")
	{
		orderGroup.GET("", h.ListOrders)
		orderGroup.GET("/:id", h.GetOrder)
		orderGroup.POST("/:id/close", h.CloseOrder)
	}
}
