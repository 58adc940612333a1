package middleware

import (
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

// RequireActor пускает дальше только запросы с резолвнутым актором в сессии
func RequireActor() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := sessions.Default(c)
		actorID := sess.Get("actor_id")
		if actorID == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}
		c.Next()
	}
}
