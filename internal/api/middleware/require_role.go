package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yoockh/careercoach/internal/models"
	"github.com/yoockh/careercoach/internal/utils"
)

// RequireRole lets the request through when the role set by JWTAuth is one of allowed.
func RequireRole(allowed ...models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := strings.TrimSpace(c.GetString("role"))
		for _, r := range allowed {
			if role != "" && strings.EqualFold(role, string(r)) {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
			"code":    utils.CodeForbidden,
			"message": "insufficient role",
		})
	}
}

func RequireAdmin() gin.HandlerFunc { return RequireRole(models.RoleAdmin) }
