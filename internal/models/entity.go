package models

import (
	"time"

	"gorm.io/gorm"
)

// Entity — домохозяйство; граница видимости почти для всех данных
type Entity struct {
	gorm.Model
	Name string `gorm:"size:255;not null" json:"name"`
}

// Location — узел дерева мест хранения внутри одного домохозяйства
// (кухня → холодильник → верхняя полка и т.п.)
type Location struct {
	gorm.Model
	EntityID uint   `gorm:"index;not null" json:"entityId"`
	ParentID *uint  `gorm:"index" json:"parentId"`
	Name     string `gorm:"size:255;not null" json:"name"`
}

type Resource struct {
	gorm.Model
	EntityID uint   `gorm:"index;not null" json:"entityId"`
	Name     string `gorm:"size:255;not null" json:"name"`
	Unit     string `gorm:"size:50" json:"unit"`
}

// InventoryItem — количество ресурса в конкретном месте;
// не больше одной строки на тройку (resource, entity, location)
type InventoryItem struct {
	gorm.Model
	ResourceID uint       `gorm:"uniqueIndex:idx_inventory_key;not null" json:"resourceId"`
	EntityID   uint       `gorm:"uniqueIndex:idx_inventory_key;not null" json:"entityId"`
	LocationID uint       `gorm:"uniqueIndex:idx_inventory_key;not null" json:"locationId"`
	Quantity   float64    `gorm:"not null" json:"quantity"`
	ExpiresAt  *time.Time `json:"expiresAt"`
}

type GoalType string
type GoalStatus string

const (
	GoalWeeklyMealPlan GoalType = "WEEKLY_MEAL_PLAN"

	GoalPending GoalStatus = "PENDING"
	GoalActive  GoalStatus = "ACTIVE"
	GoalDone    GoalStatus = "DONE"
)

// Goal — повторяющаяся цель на период [PeriodStart, PeriodEnd);
// одна на (entity, type, periodStart), проверяется перед созданием
type Goal struct {
	gorm.Model
	EntityID    uint       `gorm:"index;not null" json:"entityId"`
	Type        GoalType   `gorm:"type:varchar(50);not null" json:"type"`
	Status      GoalStatus `gorm:"type:varchar(20);not null" json:"status"`
	PeriodStart time.Time  `gorm:"not null" json:"periodStart"`
	PeriodEnd   time.Time  `gorm:"not null" json:"periodEnd"`
}
