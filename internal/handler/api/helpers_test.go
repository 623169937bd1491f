//go:build unit

package api_test

import (
	"cinema-booking/internal/domain/user"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// asActor stands in for RequireAuth with a fixed identity.
func asActor(id uuid.UUID, role user.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("user_id", id)
		c.Set("user_role", role)
		c.Next()
	}
}
