package database

import (
	"log"

	"mealhub/internal/models"

	"gorm.io/gorm"
)

// CreateAuditLog пишет запись в журнал аудита. Запись best-effort:
// ошибка логируется, но наружу не отдаётся и основную операцию не валит.
func CreateAuditLog(db *gorm.DB, entityID uint, actorID *uint, subject models.SubjectRef, action string, payload models.JSONMap) {
	if db == nil {
		return
	}
	record := models.AuditLog{
		EntityID:    entityID,
		ActorID:     actorID,
		SubjectType: subject.Type,
		SubjectID:   subject.ID,
		Action:      action,
		Payload:     payload,
	}
	if err := db.Create(&record).Error; err != nil {
		log.Printf("failed to write audit log (%s %s/%d): %v", action, subject.Type, subject.ID, err)
	}
}
