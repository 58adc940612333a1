package engine

import (
	"errors"
	"fmt"

	"mealhub/internal/models"

	"gorm.io/gorm"
)

// RoleOf возвращает роль актора в домохозяйстве, пустую строку — если не состоит
func RoleOf(db *gorm.DB, entityID, actorID uint) (models.EntityRole, error) {
	var ea models.EntityActor
	err := db.Where("entity_id = ? AND actor_id = ?", entityID, actorID).First(&ea).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return ea.Role, nil
}

func RequireMember(db *gorm.DB, entityID, actorID uint) error {
	role, err := RoleOf(db, entityID, actorID)
	if err != nil {
		return err
	}
	if role == "" {
		return fmt.Errorf("%w: actor %d is not a member of entity %d", ErrForbidden, actorID, entityID)
	}
	return nil
}

func RequireAdmin(db *gorm.DB, entityID, actorID uint) error {
	role, err := RoleOf(db, entityID, actorID)
	if err != nil {
		return err
	}
	if role != models.RoleAdmin {
		return fmt.Errorf("%w: actor %d is not an admin of entity %d", ErrForbidden, actorID, entityID)
	}
	return nil
}
