package folio

import "github.com/gin-gonic/gin"

// RegisterRoutes expects r to already enforce authentication and hotel access.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	hotel := r.Group("/hotels/:hotelId")
	{
		hotel.GET("/folios", h.ListFolios)
		hotel.GET("/revenue", h.GetRevenue)
	}
}
