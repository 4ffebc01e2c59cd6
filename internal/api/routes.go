package api

import "github.com/gin-gonic/gin"

func RegisterRoutes(r *gin.Engine, h *Handlers) {
	api := r.Group("/api")
	{
		api.GET("/health", health)
		api.GET("/templates", h.listTemplates)
		api.GET("/previews", h.previews)
		api.POST("/templates/:index/render", h.renderTemplate)
		api.POST("/chat/:peer", h.chat)
		api.GET("/postcards/:id", h.getPostcard)
		api.GET("/postcards/:id/text", h.postcardText)
		api.GET("/postcards/:id/qr", h.postcardQR)
	}
}
