package handlers

import (
	"net/http"

	"mealhub/internal/database"
	"mealhub/internal/engine"
	"mealhub/internal/models"

	"github.com/gin-gonic/gin"
)

// ListAuditLogs — журнал действий домохозяйства, только для админа
func ListAuditLogs(c *gin.Context) {
	entityID, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := engine.RequireAdmin(database.DB, entityID, currentActorID(c)); err != nil {
		fail(c, err)
		return
	}

	var logs []models.AuditLog
	database.DB.
		Where("entity_id = ?", entityID).
		Order("created_at desc").
		Limit(200).
		Find(&logs)

	c.JSON(http.StatusOK, logs)
}
