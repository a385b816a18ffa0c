package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"hotelfolio/internal/pkg/jwt"
	"hotelfolio/internal/pkg/response"
)

const (
	ContextUserID  = "user_id"
	ContextRole    = "role"
	ContextHotelID = "hotel_id"
)

// JWTAuth validates the bearer token and stores the caller's identity and
// hotel on the context.
func JWTAuth(jwtService *jwt.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Abort(c, http.StatusUnauthorized, "AUTH_HEADER_MISSING", "Authorization header is required")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			response.Abort(c, http.StatusUnauthorized, "INVALID_AUTH_FORMAT", "Authorization header must be 'Bearer <token>'")
			return
		}

		claims, err := jwtService.ValidateToken(strings.TrimSpace(parts[1]))
		if err != nil {
			response.Abort(c, http.StatusUnauthorized, "INVALID_TOKEN", "Invalid or expired token")
			return
		}

		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextRole, claims.Role)
		c.Set(ContextHotelID, claims.HotelID)
		c.Next()
	}
}
