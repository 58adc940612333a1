package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"mealhub/internal/engine"
	"mealhub/internal/models"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

// fail — маппинг ошибок движка в HTTP-статусы;
// всё незнакомое — 500 с общим текстом, подробность только в лог
func fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, engine.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, engine.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, engine.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, engine.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		log.Printf("unexpected error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func currentActorID(c *gin.Context) uint {
	if v, ok := c.Get("CurrentActor"); ok {
		if actor, ok := v.(models.Actor); ok {
			return actor.ID
		}
	}
	sess := sessions.Default(c)
	if id, ok := sess.Get("actor_id").(uint); ok {
		return id
	}
	return 0
}

// paramID парсит числовой path-параметр; при мусоре сам отвечает 400
func paramID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return uint(id), true
}
