package engine

import (
	"testing"

	"mealhub/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (f *fixture) createTask(t *testing.T, task models.Task) *models.Task {
	t.Helper()
	task.EntityID = f.entity.ID
	if task.Status == "" {
		task.Status = models.TaskPending
	}
	require.NoError(t, f.db.Create(&task).Error)
	return &task
}

func TestAssignTaskIsIdempotent(t *testing.T) {
	f := newFixture(t)
	task := f.createTask(t, models.Task{Type: models.TaskInventoryReview})

	first, err := AssignTask(f.db, task.ID, f.admin.ID, f.member.ID, models.TaskResponsible)
	require.NoError(t, err)
	second, err := AssignTask(f.db, task.ID, f.admin.ID, f.member.ID, models.TaskResponsible)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	var count int64
	f.db.Model(&models.TaskActor{}).Where("task_id = ?", task.ID).Count(&count)
	assert.EqualValues(t, 1, count)
}

func TestAssignRejectsNonMember(t *testing.T) {
	f := newFixture(t)
	task := f.createTask(t, models.Task{Type: models.TaskInventoryReview})

	outsider := models.Actor{Email: "stranger@test.local", PasswordHash: "x"}
	require.NoError(t, f.db.Create(&outsider).Error)

	_, err := AssignTask(f.db, task.ID, f.admin.ID, outsider.ID, models.TaskResponsible)
	require.ErrorIs(t, err, ErrValidation)
}

func TestUnassignTaskIsIdempotent(t *testing.T) {
	f := newFixture(t)
	task := f.createTask(t, models.Task{Type: models.TaskInventoryReview})

	// снятие несуществующего назначения — не ошибка
	require.NoError(t, UnassignTask(f.db, task.ID, f.admin.ID, f.member.ID, models.TaskResponsible))

	_, err := AssignTask(f.db, task.ID, f.admin.ID, f.member.ID, models.TaskResponsible)
	require.NoError(t, err)
	require.NoError(t, UnassignTask(f.db, task.ID, f.admin.ID, f.member.ID, models.TaskResponsible))

	var count int64
	f.db.Model(&models.TaskActor{}).Where("task_id = ?", task.ID).Count(&count)
	assert.Zero(t, count)

	// после снятия можно назначить заново
	_, err = AssignTask(f.db, task.ID, f.admin.ID, f.member.ID, models.TaskResponsible)
	require.NoError(t, err)
}

func TestBuyTaskCompletionIncrementsInventoryOnce(t *testing.T) {
	f := newFixture(t)

	item := models.InventoryItem{
		ResourceID: f.resource.ID, EntityID: f.entity.ID, LocationID: f.location.ID, Quantity: 2,
	}
	require.NoError(t, f.db.Create(&item).Error)

	task := f.createTask(t, models.Task{
		Type: models.TaskBuyResource,
		Metadata: models.JSONMap{
			"inventoryItemId": item.ID,
			"resourceId":      f.resource.ID,
			"locationId":      f.location.ID,
			"quantity":        3,
		},
	})

	_, err := SetTaskStatus(f.db, task.ID, f.member.ID, models.TaskDone)
	require.NoError(t, err)

	var reloaded models.InventoryItem
	require.NoError(t, f.db.First(&reloaded, item.ID).Error)
	assert.Equal(t, 5.0, reloaded.Quantity)

	// повторный DONE → DONE не инкрементит
	_, err = SetTaskStatus(f.db, task.ID, f.member.ID, models.TaskDone)
	require.NoError(t, err)
	require.NoError(t, f.db.First(&reloaded, item.ID).Error)
	assert.Equal(t, 5.0, reloaded.Quantity)
}

func TestBuyTaskCompletionRecreatesDeletedRow(t *testing.T) {
	f := newFixture(t)

	task := f.createTask(t, models.Task{
		Type: models.TaskBuyResource,
		Metadata: models.JSONMap{
			"inventoryItemId": 9999, // исходная строка уже удалена
			"resourceId":      f.resource.ID,
			"locationId":      f.location.ID,
			"quantity":        3,
		},
	})

	_, err := SetTaskStatus(f.db, task.ID, f.member.ID, models.TaskDone)
	require.NoError(t, err)

	var item models.InventoryItem
	require.NoError(t, f.db.
		Where("resource_id = ? AND entity_id = ? AND location_id = ?",
			f.resource.ID, f.entity.ID, f.location.ID).
		First(&item).Error)
	assert.Equal(t, 3.0, item.Quantity)
}

func TestBuyTaskCompletionDefaultsQuantityToOne(t *testing.T) {
	f := newFixture(t)

	item := models.InventoryItem{
		ResourceID: f.resource.ID, EntityID: f.entity.ID, LocationID: f.location.ID, Quantity: 2,
	}
	require.NoError(t, f.db.Create(&item).Error)

	task := f.createTask(t, models.Task{
		Type:     models.TaskBuyResource,
		Metadata: models.JSONMap{"inventoryItemId": item.ID},
	})

	_, err := SetTaskStatus(f.db, task.ID, f.member.ID, models.TaskDone)
	require.NoError(t, err)

	var reloaded models.InventoryItem
	require.NoError(t, f.db.First(&reloaded, item.ID).Error)
	assert.Equal(t, 3.0, reloaded.Quantity)
}

func TestNonBuyTaskCompletionDoesNotTouchInventory(t *testing.T) {
	f := newFixture(t)

	item := models.InventoryItem{
		ResourceID: f.resource.ID, EntityID: f.entity.ID, LocationID: f.location.ID, Quantity: 2,
	}
	require.NoError(t, f.db.Create(&item).Error)

	task := f.createTask(t, models.Task{
		Type:     models.TaskCookRecipeStep,
		Metadata: models.JSONMap{"inventoryItemId": item.ID, "quantity": 3},
	})

	_, err := SetTaskStatus(f.db, task.ID, f.member.ID, models.TaskDone)
	require.NoError(t, err)

	var reloaded models.InventoryItem
	require.NoError(t, f.db.First(&reloaded, item.ID).Error)
	assert.Equal(t, 2.0, reloaded.Quantity)
}

func TestSetTaskStatusRejectsUnknownStatus(t *testing.T) {
	f := newFixture(t)
	task := f.createTask(t, models.Task{Type: models.TaskInventoryReview})

	_, err := SetTaskStatus(f.db, task.ID, f.member.ID, models.TaskStatus("NOPE"))
	require.ErrorIs(t, err, ErrValidation)
}

func TestListTasksFilters(t *testing.T) {
	f := newFixture(t)

	buy := f.createTask(t, models.Task{
		Type: models.TaskBuyResource,
		Tags: models.StringList{"to-buy"},
	})
	review := f.createTask(t, models.Task{
		Type:   models.TaskInventoryReview,
		Status: models.TaskDone,
	})
	_, err := AssignTask(f.db, review.ID, f.admin.ID, f.member.ID, models.TaskResponsible)
	require.NoError(t, err)

	byTag, err := ListTasks(f.db, f.entity.ID, f.member.ID, TaskFilter{Tag: "to-buy"})
	require.NoError(t, err)
	require.Len(t, byTag, 1)
	assert.Equal(t, buy.ID, byTag[0].ID)

	byStatus, err := ListTasks(f.db, f.entity.ID, f.member.ID, TaskFilter{Status: models.TaskDone})
	require.NoError(t, err)
	require.Len(t, byStatus, 1)
	assert.Equal(t, review.ID, byStatus[0].ID)

	byAssignee, err := ListTasks(f.db, f.entity.ID, f.member.ID, TaskFilter{
		ActorID: f.member.ID, Role: models.TaskResponsible,
	})
	require.NoError(t, err)
	require.Len(t, byAssignee, 1)
	assert.Equal(t, review.ID, byAssignee[0].ID)

	all, err := ListTasks(f.db, f.entity.ID, f.member.ID, TaskFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestListTasksRequiresMembership(t *testing.T) {
	f := newFixture(t)

	outsider := models.Actor{Email: "stranger@test.local", PasswordHash: "x"}
	require.NoError(t, f.db.Create(&outsider).Error)

	_, err := ListTasks(f.db, f.entity.ID, outsider.ID, TaskFilter{})
	require.ErrorIs(t, err, ErrForbidden)
}
