package middleware

import (
	"mealhub/internal/database"
	"mealhub/internal/models"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

// InjectActor достаёт актора по id из сессии и кладёт его в контекст запроса
func InjectActor() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := sessions.Default(c)

		if idRaw := sess.Get("actor_id"); idRaw != nil {
			if id, ok := idRaw.(uint); ok && id > 0 {
				var actor models.Actor
				if err := database.DB.First(&actor, id).Error; err == nil {
					c.Set("CurrentActor", actor)
				}
			}
		}

		c.Next()
	}
}
