package models

import "time"

// AuditLog — только добавление, никогда не обновляется и не удаляется
type AuditLog struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"createdAt"`

	EntityID uint  `gorm:"index" json:"entityId"`
	ActorID  *uint `json:"actorId"`

	SubjectType SubjectType `gorm:"type:varchar(20);not null" json:"subjectType"`
	SubjectID   uint        `json:"subjectId"`
	Action      string      `gorm:"size:64;not null" json:"action"`
	Payload     JSONMap     `gorm:"type:text" json:"payload"`
}
