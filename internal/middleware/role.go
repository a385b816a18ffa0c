package middleware

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"hotelfolio/internal/pkg/response"
)

const RoleAdmin = "admin"

// RequireRole ensures that the authenticated user has one of the given roles
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString(ContextRole)
		if role == "" {
			response.Abort(c, http.StatusUnauthorized, "UNAUTHORIZED", "Role not found in token")
			return
		}
		for _, r := range roles {
			if r == role {
				c.Next()
				return
			}
		}
		response.Abort(c, http.StatusForbidden, "FORBIDDEN", "Access denied: insufficient permissions")
	}
}

// AdminOnly middleware requires admin role
func AdminOnly() gin.HandlerFunc {
	return RequireRole(RoleAdmin)
}

// RequireHotelAccess lets staff through only for the hotel their token was
// issued for. Admins may read any hotel.
func RequireHotelAccess(param string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString(ContextRole) == RoleAdmin {
			c.Next()
			return
		}
		hotelID, err := strconv.ParseInt(c.Param(param), 10, 64)
		if err != nil {
			response.Abort(c, http.StatusBadRequest, "INVALID_ID", "Invalid hotel ID")
			return
		}
		if claimed := c.GetInt64(ContextHotelID); claimed == 0 || claimed != hotelID {
			response.Abort(c, http.StatusForbidden, "FORBIDDEN", "You don't have access to this hotel")
			return
		}
		c.Next()
	}
}
