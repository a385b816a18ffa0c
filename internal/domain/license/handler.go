package license

import (
	"context"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"hotelfolio/internal/pkg/response"
)

const (
	SignatureHeader = "verif-hash"
	maxWebhookBody  = 1 << 20
)

type webhookProcessor interface {
	Handle(ctx context.Context, signature string, body []byte) Result
}

type Handler struct {
	reconciler webhookProcessor
	log        *zap.Logger
}

func NewHandler(reconciler webhookProcessor, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{reconciler: reconciler, log: log}
}

// PaymentWebhook godoc
// @Summary      Flutterwave payment webhook
// @Description  Activates a pending licence once the gateway confirms a successful charge (idempotent)
// @Tags         Payments
// @Accept       json
// @Produce      json
// @Param        verif-hash header string false "Webhook secret hash"
// @Success      200 {object} response.Envelope
// @Failure      400 {object} response.Envelope
// @Failure      401 {object} response.Envelope
// @Failure      404 {object} response.Envelope
// @Failure      500 {object} response.Envelope
// @Router       /payment/webhook [post]
func (h *Handler) PaymentWebhook(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		h.log.Warn("read webhook body", zap.Error(err))
		response.Webhook(c, http.StatusBadRequest, response.Envelope{
			Status:      statusError,
			Message:     "Invalid payload",
			Description: "Could not read request body",
		})
		return
	}

	res := h.reconciler.Handle(c.Request.Context(), c.GetHeader(SignatureHeader), body)
	response.Webhook(c, res.HTTPStatus, response.Envelope{
		Status:      res.Status,
		Message:     res.Message,
		Description: res.Description,
		Data:        res.Data,
	})
}
