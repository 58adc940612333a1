package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"gorm.io/gorm"
)

type ChangeSetType string
type ChangeSetStatus string
type SubjectType string

const (
	ChangeSetInventoryDiff  ChangeSetType = "INVENTORY_DIFF"
	ChangeSetWeeklyMealPlan ChangeSetType = "WEEKLY_MEAL_PLAN"

	// единственный легальный путь: PENDING → APPROVED → APPLIED
	ChangeSetPending  ChangeSetStatus = "PENDING"
	ChangeSetApproved ChangeSetStatus = "APPROVED"
	ChangeSetApplied  ChangeSetStatus = "APPLIED"

	SubjectTask      SubjectType = "TASK"
	SubjectChangeSet SubjectType = "CHANGESET"
	SubjectInventory SubjectType = "INVENTORY"
	SubjectEntity    SubjectType = "ENTITY"
	SubjectTrack     SubjectType = "TRACK"
)

// SubjectRef — типизированная ссылка на запись, которой касается изменение
type SubjectRef struct {
	Type SubjectType `gorm:"column:subject_type;type:varchar(20)" json:"subjectType"`
	ID   uint        `gorm:"column:subject_id" json:"subjectId"`
}

// действия над одной позицией инвентаря в INVENTORY_DIFF
const (
	DiffActionToBuy  = "TO_BUY"
	DiffActionDelete = "DELETE"
)

type InventoryDiffItem struct {
	ResourceID      uint       `json:"resourceId"`
	LocationID      uint       `json:"locationId"`
	Quantity        float64    `json:"quantity"`
	Action          string     `json:"action,omitempty"`
	ExpiresAt       *time.Time `json:"expiresAt,omitempty"`
	InventoryItemID *uint      `json:"inventoryItemId,omitempty"`
}

type PlannedTaskSpec struct {
	Type       string     `json:"type"`
	Status     TaskStatus `json:"status,omitempty"`
	GoalID     *uint      `json:"goalId,omitempty"`
	SolutionID *uint      `json:"solutionId,omitempty"`
	StepID     *uint      `json:"stepId,omitempty"`
	DueAt      *time.Time `json:"dueAt,omitempty"`
	StartsAt   *time.Time `json:"startsAt,omitempty"`
}

// ChangeSetPayload — вариант по типу набора: Items для INVENTORY_DIFF,
// Tasks для WEEKLY_MEAL_PLAN; хранится как JSON в текстовой колонке
type ChangeSetPayload struct {
	Items []InventoryDiffItem `json:"items,omitempty"`
	Tasks []PlannedTaskSpec   `json:"tasks,omitempty"`
}

func (p ChangeSetPayload) Value() (driver.Value, error) {
	b, err := json.Marshal(p)
	return string(b), err
}

func (p *ChangeSetPayload) Scan(src interface{}) error {
	return scanJSON(src, p)
}

// ChangeSet — предложенная пачка изменений, ждущая ревью
type ChangeSet struct {
	gorm.Model
	EntityID uint  `gorm:"index;not null" json:"entityId"`
	TaskID   *uint `json:"taskId"`
	TrackID  *uint `json:"trackId"`

	Subject SubjectRef       `gorm:"embedded" json:"subject"`
	Type    ChangeSetType    `gorm:"type:varchar(50);not null" json:"type"`
	Payload ChangeSetPayload `gorm:"type:text" json:"payload"`
	Status  ChangeSetStatus  `gorm:"type:varchar(20);not null;index" json:"status"`

	ApprovedAt *time.Time `json:"approvedAt"`
	AppliedAt  *time.Time `json:"appliedAt"`
}

// Question — человеческий гейт над ChangeSet; BatchID группирует
// вопросы одного ревью в UI
type Question struct {
	gorm.Model
	EntityID    uint   `gorm:"index;not null" json:"entityId"`
	ChangeSetID *uint  `gorm:"index" json:"changeSetId"`
	TaskID      *uint  `json:"taskId"`
	GoalID      *uint  `json:"goalId"`
	BatchID     string `gorm:"size:64;index" json:"batchId"`
	Kind        string `gorm:"size:30;not null" json:"kind"`
	Prompt      string `gorm:"type:text;not null" json:"prompt"`
}

// Answer — ответ на вопрос; сейчас чисто учётный, approve/apply его не читают
type Answer struct {
	gorm.Model
	QuestionID uint    `gorm:"index;not null" json:"questionId"`
	TaskID     *uint   `json:"taskId"`
	ActorID    uint    `gorm:"not null" json:"actorId"`
	Value      JSONMap `gorm:"type:text" json:"value"`
}
