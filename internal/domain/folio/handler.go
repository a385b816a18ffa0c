package folio

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"hotelfolio/internal/pkg/logger"
	"hotelfolio/internal/pkg/response"
	"hotelfolio/internal/pkg/validator"
)

type viewBuilder interface {
	Build(ctx context.Context, hotelID int64, q Query) (*View, error)
}

type Handler struct {
	service viewBuilder
	loc     *time.Location
	now     func() time.Time
	log     *zap.Logger
}

func NewHandler(service viewBuilder, loc *time.Location, log *zap.Logger) *Handler {
	if loc == nil {
		loc = time.UTC
	}
	return &Handler{service: service, loc: loc, now: time.Now, log: logger.OrNop(log)}
}

// ListFolios godoc
// @Summary      List folios for a hotel
// @Tags         Folios
// @Security     BearerAuth
// @Produce      json
// @Param        hotelId path int true "Hotel ID"
// @Param        search query string false "Free-text filter on guest, location or id"
// @Param        date query string false "Reference day (YYYY-MM-DD), defaults to today"
// @Router       /hotels/{hotelId}/folios [get]
func (h *Handler) ListFolios(c *gin.Context) {
	view, ok := h.build(c)
	if !ok {
		return
	}
	response.Success(c, http.StatusOK, view)
}

// GetRevenue godoc
// @Summary      Revenue recognized for a reference day
// @Tags         Folios
// @Security     BearerAuth
// @Produce      json
// @Param        hotelId path int true "Hotel ID"
// @Param        date query string false "Reference day (YYYY-MM-DD), defaults to today"
// @Router       /hotels/{hotelId}/revenue [get]
func (h *Handler) GetRevenue(c *gin.Context) {
	view, ok := h.build(c)
	if !ok {
		return
	}
	response.Success(c, http.StatusOK, view.Revenue)
}

func (h *Handler) build(c *gin.Context) (*View, bool) {
	hotelID, err := strconv.ParseInt(c.Param("hotelId"), 10, 64)
	if err != nil || hotelID <= 0 {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid hotel ID")
		return nil, false
	}

	var q ListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return nil, false
	}
	if errs := validator.Validate(q); errs != nil {
		if _, bad := errs["Date"]; bad {
			response.Error(c, http.StatusBadRequest, "INVALID_DATE", "date must be YYYY-MM-DD")
			return nil, false
		}
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid query", errs)
		return nil, false
	}

	day, err := ParseDate(q.Date, h.now(), h.loc)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_DATE", "date must be YYYY-MM-DD")
		return nil, false
	}

	view, err := h.service.Build(c.Request.Context(), hotelID, Query{Search: q.Search, Date: day})
	if err != nil {
		h.log.Error("folio build failed", zap.Int64("hotel_id", hotelID), zap.Error(err))
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load folios")
		return nil, false
	}
	return view, true
}
