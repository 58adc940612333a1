package models

import (
	"time"

	"gorm.io/gorm"
)

type TaskStatus string
type TaskRole string

const (
	TaskPending    TaskStatus = "PENDING"
	TaskInProgress TaskStatus = "IN_PROGRESS"
	TaskDone       TaskStatus = "DONE"
	TaskBlocked    TaskStatus = "BLOCKED"

	TaskResponsible TaskRole = "RESPONSIBLE"
	TaskAccountable TaskRole = "ACCOUNTABLE"
)

// известные типы задач; Type — открытая строка, свои типы тоже допустимы
const (
	TaskPlanWeeklyMeals = "PLAN_WEEKLY_MEALS"
	TaskBuyResource     = "BUY_RESOURCE"
	TaskCookRecipeStep  = "COOK_RECIPE_STEP"
	TaskApplyChangeSet  = "APPLY_CHANGESET"
	TaskInventoryReview = "INVENTORY_REVIEW"
)

type Task struct {
	gorm.Model
	EntityID uint       `gorm:"index;not null" json:"entityId"`
	Type     string     `gorm:"size:100;not null" json:"type"`
	Status   TaskStatus `gorm:"type:varchar(20);not null" json:"status"`

	GoalID     *uint `json:"goalId"`
	SolutionID *uint `json:"solutionId"`
	StepID     *uint `json:"stepId"`
	LocationID *uint `json:"locationId"`

	Tags     StringList `gorm:"type:text" json:"tags"`
	Metadata JSONMap    `gorm:"type:text" json:"metadata"`

	DueAt    *time.Time `json:"dueAt"`
	StartsAt *time.Time `json:"startsAt"`

	// бухгалтерская связь с применёнными ChangeSet'ами
	ChangeSets []ChangeSet `gorm:"many2many:task_change_sets" json:"-"`
}

// назначение актора на задачу; уникально по (task, actor, role),
// повторный assign — no-op
type TaskActor struct {
	gorm.Model
	TaskID  uint     `gorm:"uniqueIndex:idx_task_actor_role;not null" json:"taskId"`
	ActorID uint     `gorm:"uniqueIndex:idx_task_actor_role;not null" json:"actorId"`
	Role    TaskRole `gorm:"uniqueIndex:idx_task_actor_role;type:varchar(20);not null" json:"role"`
}

// Planning — связь 1:1 задачи недельного плана с её целью
type Planning struct {
	gorm.Model
	TaskID uint    `gorm:"uniqueIndex;not null" json:"taskId"`
	GoalID uint    `gorm:"index;not null" json:"goalId"`
	Config JSONMap `gorm:"type:text" json:"config"`
}
