package payment

import "github.com/gin-gonic/gin"

// RegisterRoutes mounts the payment endpoints under r. auth guards every
// route except the gateway callback.
func RegisterRoutes(r *gin.RouterGroup, h *Handler, auth gin.HandlerFunc) {
	// /api/v1/payment/notify/:provider
	r.POST("/payment/notify/:provider", h.Notify)

	authorized := r.Group("/payment")
	authorized.Use(auth)
	{
		authorized.GET("/methods", h.GetPaymentMethods)
		authorized.POST("/purchase/:provider", h.Purchase)
		authorized.GET("/orders/:id", h.GetOrder)
	}
}
