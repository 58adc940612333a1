package models

import "gorm.io/gorm"

type EntityRole string

const (
	RoleAdmin  EntityRole = "ADMIN"
	RoleMember EntityRole = "MEMBER"
)

type Actor struct {
	gorm.Model
	Email        string `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Name         string `gorm:"size:255" json:"name"`
	PasswordHash string `gorm:"not null" json:"-"`
}

// членство актора в домохозяйстве; не больше одной строки на пару (entity, actor)
type EntityActor struct {
	gorm.Model
	EntityID uint       `gorm:"uniqueIndex:idx_entity_actor;not null" json:"entityId"`
	ActorID  uint       `gorm:"uniqueIndex:idx_entity_actor;not null" json:"actorId"`
	Role     EntityRole `gorm:"type:varchar(20);not null" json:"role"`

	Actor Actor `json:"-"`
}
