package exchange

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"hotelfolio/internal/pkg/logger"
	"hotelfolio/internal/pkg/response"
	"hotelfolio/internal/pkg/validator"
)

type rateService interface {
	Rate(ctx context.Context, currency string) (Quote, error)
}

type RateQuery struct {
	Currency string `form:"currency" validate:"required,currency"`
}

type Handler struct {
	service rateService
	log     *zap.Logger
}

func NewHandler(service rateService, log *zap.Logger) *Handler {
	return &Handler{service: service, log: logger.OrNop(log)}
}

// GetRate godoc
// @Summary      USD exchange rate
// @Description  Returns how many units of the given currency one US dollar buys
// @Tags         Exchange
// @Produce      json
// @Param        currency query string true "ISO 4217 code, e.g. NGN"
// @Success      200 {object} Quote
// @Router       /exchange-rate [get]
func (h *Handler) GetRate(c *gin.Context) {
	var q RateQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}
	if errs := validator.Validate(q); errs != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid currency code", errs)
		return
	}

	quote, err := h.service.Rate(c.Request.Context(), q.Currency)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, quote)
	case errors.Is(err, ErrInvalidCurrency):
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
	case errors.Is(err, ErrUpstreamTimeout):
		response.Error(c, http.StatusGatewayTimeout, "UPSTREAM_TIMEOUT", "Exchange rate provider timed out")
	default:
		h.log.Error("exchange rate", zap.String("currency", q.Currency), zap.Error(err))
		response.Error(c, http.StatusBadGateway, "UPSTREAM_ERROR", "Exchange rate provider unavailable")
	}
}
