package auth

import "github.com/gin-gonic/gin"

func RegisterRoutes(router *gin.RouterGroup, auth gin.HandlerFunc) {
	group := router.Group("/auth")
	group.POST("/logout", auth, Logout)
}
