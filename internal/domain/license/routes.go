package license

import "github.com/gin-gonic/gin"

// RegisterWebhookRoutes mounts the public gateway callback. Extra handlers
// (rate limiting) run before the webhook.
func (h *Handler) RegisterWebhookRoutes(r *gin.RouterGroup, middleware ...gin.HandlerFunc) {
	handlers := append(append([]gin.HandlerFunc{}, middleware...), h.PaymentWebhook)
	r.POST("/payment/webhook", handlers...)
}
