package engine

import (
	"errors"
	"time"

	"mealhub/internal/database"
	"mealhub/internal/models"

	"gorm.io/gorm"
)

// CreateWeeklyGoal заводит цель недельного плана на текущую неделю.
// Цель одна на (entity, type, periodStart) — ищем перед созданием; у цели
// ровно одна задача планирования, связанная через Planning.
func CreateWeeklyGoal(db *gorm.DB, entityID, actorID uint, dinners int) (*models.Goal, *models.Task, error) {
	if err := RequireAdmin(db, entityID, actorID); err != nil {
		return nil, nil, err
	}
	if dinners <= 0 {
		dinners = 5
	}

	start := weekStart(time.Now().UTC())
	end := start.AddDate(0, 0, 7)

	var goal models.Goal
	err := db.Where("entity_id = ? AND type = ? AND period_start = ?",
		entityID, models.GoalWeeklyMealPlan, start).First(&goal).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		goal = models.Goal{
			EntityID:    entityID,
			Type:        models.GoalWeeklyMealPlan,
			Status:      models.GoalPending,
			PeriodStart: start,
			PeriodEnd:   end,
		}
		if err := db.Create(&goal).Error; err != nil {
			return nil, nil, err
		}
		database.CreateAuditLog(db, entityID, &actorID,
			models.SubjectRef{Type: models.SubjectEntity, ID: entityID},
			"CREATE_GOAL", models.JSONMap{"goalId": goal.ID, "periodStart": start})
	} else if err != nil {
		return nil, nil, err
	}

	var planning models.Planning
	err = db.Where("goal_id = ?", goal.ID).First(&planning).Error
	if err == nil {
		task, err := getTask(db, planning.TaskID)
		if err != nil {
			return nil, nil, err
		}
		return &goal, task, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, err
	}

	task := models.Task{
		EntityID: entityID,
		Type:     models.TaskPlanWeeklyMeals,
		Status:   models.TaskPending,
		GoalID:   &goal.ID,
		DueAt:    &end,
	}
	if err := db.Create(&task).Error; err != nil {
		return nil, nil, err
	}
	planning = models.Planning{
		TaskID: task.ID,
		GoalID: goal.ID,
		Config: models.JSONMap{"dinners": dinners},
	}
	if err := db.Create(&planning).Error; err != nil {
		return nil, nil, err
	}

	database.CreateAuditLog(db, entityID, &actorID,
		models.SubjectRef{Type: models.SubjectTask, ID: task.ID},
		"CREATE_TASK", models.JSONMap{"taskType": task.Type})
	return &goal, &task, nil
}

// неделя начинается с понедельника, 00:00 UTC
func weekStart(t time.Time) time.Time {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}
