package engine

import (
	"testing"

	"mealhub/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateWeeklyGoalOncePerWeek(t *testing.T) {
	f := newFixture(t)

	goal1, task1, err := CreateWeeklyGoal(f.db, f.entity.ID, f.admin.ID, 4)
	require.NoError(t, err)
	assert.Equal(t, models.GoalWeeklyMealPlan, goal1.Type)
	assert.Equal(t, models.TaskPlanWeeklyMeals, task1.Type)
	assert.True(t, goal1.PeriodEnd.After(goal1.PeriodStart))

	// повторный вызов на той же неделе возвращает ту же цель и задачу
	goal2, task2, err := CreateWeeklyGoal(f.db, f.entity.ID, f.admin.ID, 4)
	require.NoError(t, err)
	assert.Equal(t, goal1.ID, goal2.ID)
	assert.Equal(t, task1.ID, task2.ID)

	var goals int64
	f.db.Model(&models.Goal{}).Where("entity_id = ?", f.entity.ID).Count(&goals)
	assert.EqualValues(t, 1, goals)

	var planning models.Planning
	require.NoError(t, f.db.Where("goal_id = ?", goal1.ID).First(&planning).Error)
	assert.Equal(t, task1.ID, planning.TaskID)
	dinners, ok := planning.Config.FloatField("dinners")
	require.True(t, ok)
	assert.Equal(t, 4.0, dinners)
}

func TestCreateWeeklyGoalRequiresAdmin(t *testing.T) {
	f := newFixture(t)

	_, _, err := CreateWeeklyGoal(f.db, f.entity.ID, f.member.ID, 0)
	require.ErrorIs(t, err, ErrForbidden)
}
