package models

import "gorm.io/gorm"

type SensorType string
type LensType string
type LensRunStatus string

const (
	SensorMobileCamera SensorType = "MOBILE_CAMERA"
	SensorWebUpload    SensorType = "WEB_UPLOAD"

	LensInventory LensType = "INVENTORY_LENS"
	LensMealPlan  LensType = "MEAL_PLAN_LENS"

	LensRunPending    LensRunStatus = "PENDING"
	LensRunProcessing LensRunStatus = "PROCESSING"
	LensRunCompleted  LensRunStatus = "COMPLETED"
	LensRunFailed     LensRunStatus = "FAILED"
)

// Sensor — устройство захвата; заводится автоматически на домохозяйство
type Sensor struct {
	gorm.Model
	EntityID uint       `gorm:"uniqueIndex:idx_sensor_entity_type;not null" json:"entityId"`
	Type     SensorType `gorm:"uniqueIndex:idx_sensor_entity_type;type:varchar(30);not null" json:"type"`
}

// Track — одно событие захвата (например, фото кладовки)
type Track struct {
	gorm.Model
	EntityID   uint    `gorm:"index;not null" json:"entityId"`
	ActorID    uint    `gorm:"not null" json:"actorId"`
	SensorID   uint    `gorm:"not null" json:"sensorId"`
	LocationID *uint   `json:"locationId"`
	MediaURL   string  `gorm:"size:1024" json:"mediaUrl"`
	Telemetry  JSONMap `gorm:"type:text" json:"telemetry"`
}

// Lens — глобальный (не привязанный к домохозяйству) тип анализа,
// синглтоны по типу, заводятся при старте
type Lens struct {
	gorm.Model
	Type   LensType `gorm:"uniqueIndex;type:varchar(30);not null" json:"type"`
	Name   string   `gorm:"size:255;not null" json:"name"`
	Config JSONMap  `gorm:"type:text" json:"config"`
}

// LensRun — одно применение линзы к захвату; COMPLETED ровно один раз,
// повторная обработка отбивается по статусу
type LensRun struct {
	gorm.Model
	LensID    uint          `gorm:"index;not null" json:"lensId"`
	TrackID   uint          `gorm:"index;not null" json:"trackId"`
	Status    LensRunStatus `gorm:"type:varchar(20);not null" json:"status"`
	RawOutput JSONMap       `gorm:"type:text" json:"rawOutput"`

	Lens  Lens  `json:"-"`
	Track Track `json:"-"`
}
