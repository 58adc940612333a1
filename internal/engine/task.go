package engine

import (
	"errors"
	"fmt"

	"mealhub/internal/database"
	"mealhub/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func validTaskStatus(s models.TaskStatus) bool {
	switch s {
	case models.TaskPending, models.TaskInProgress, models.TaskDone, models.TaskBlocked:
		return true
	default:
		return false
	}
}

func validTaskRole(r models.TaskRole) bool {
	return r == models.TaskResponsible || r == models.TaskAccountable
}

// SetTaskStatus меняет статус задачи. Побочный эффект: выполненная закупка
// (BUY_RESOURCE → DONE с inventoryItemId в метаданных) пополняет инвентарь.
// Сторож — предыдущий статус, так что повторный DONE → DONE не инкрементит.
func SetTaskStatus(db *gorm.DB, taskID, actorID uint, newStatus models.TaskStatus) (*models.Task, error) {
	if !validTaskStatus(newStatus) {
		return nil, fmt.Errorf("%w: unknown task status %q", ErrValidation, newStatus)
	}

	task, err := getTask(db, taskID)
	if err != nil {
		return nil, err
	}
	if err := RequireMember(db, task.EntityID, actorID); err != nil {
		return nil, err
	}

	prev := task.Status
	if err := db.Model(task).Update("status", newStatus).Error; err != nil {
		return nil, err
	}
	task.Status = newStatus

	if prev != models.TaskDone && newStatus == models.TaskDone && task.Type == models.TaskBuyResource {
		if err := completeBuyTask(db, task); err != nil {
			return nil, err
		}
	}

	database.CreateAuditLog(db, task.EntityID, &actorID,
		models.SubjectRef{Type: models.SubjectTask, ID: task.ID},
		"SET_TASK_STATUS", models.JSONMap{"from": string(prev), "to": string(newStatus)})
	return task, nil
}

// пополнение инвентаря по метаданным закупочной задачи: инкремент количества,
// строка создаётся из resourceId/locationId, если исходная уже удалена
func completeBuyTask(db *gorm.DB, task *models.Task) error {
	itemID, ok := task.Metadata.UintField("inventoryItemId")
	if !ok {
		return nil
	}
	qty, ok := task.Metadata.FloatField("quantity")
	if !ok || qty <= 0 {
		qty = 1
	}

	var item models.InventoryItem
	err := db.First(&item, itemID).Error
	switch {
	case err == nil:
		return db.Model(&item).
			Update("quantity", gorm.Expr("quantity + ?", qty)).Error

	case errors.Is(err, gorm.ErrRecordNotFound):
		resourceID, okR := task.Metadata.UintField("resourceId")
		locationID, okL := task.Metadata.UintField("locationId")
		if !okR || !okL {
			// восстановить строку не из чего; неполные метаданные пропускаем
			return nil
		}
		row := models.InventoryItem{
			ResourceID: resourceID,
			EntityID:   task.EntityID,
			LocationID: locationID,
			Quantity:   qty,
		}
		return db.Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "resource_id"}, {Name: "entity_id"}, {Name: "location_id"},
			},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"quantity": gorm.Expr("quantity + ?", qty),
			}),
		}).Create(&row).Error

	default:
		return err
	}
}

// AssignTask — идемпотентный upsert по (task, actor, role)
func AssignTask(db *gorm.DB, taskID, actorID, assigneeID uint, role models.TaskRole) (*models.TaskActor, error) {
	if !validTaskRole(role) {
		return nil, fmt.Errorf("%w: unknown task role %q", ErrValidation, role)
	}

	task, err := getTask(db, taskID)
	if err != nil {
		return nil, err
	}
	if err := RequireMember(db, task.EntityID, actorID); err != nil {
		return nil, err
	}
	assigneeRole, err := RoleOf(db, task.EntityID, assigneeID)
	if err != nil {
		return nil, err
	}
	if assigneeRole == "" {
		return nil, fmt.Errorf("%w: actor %d is not a member of entity %d", ErrValidation, assigneeID, task.EntityID)
	}

	ta := models.TaskActor{TaskID: task.ID, ActorID: assigneeID, Role: role}
	err = db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "task_id"}, {Name: "actor_id"}, {Name: "role"}},
		DoNothing: true,
	}).Create(&ta).Error
	if err != nil {
		return nil, err
	}
	// при конфликте Create не заполняет ID — перечитываем строку
	err = db.Where("task_id = ? AND actor_id = ? AND role = ?", task.ID, assigneeID, role).
		First(&ta).Error
	if err != nil {
		return nil, err
	}

	database.CreateAuditLog(db, task.EntityID, &actorID,
		models.SubjectRef{Type: models.SubjectTask, ID: task.ID},
		"ASSIGN_TASK", models.JSONMap{"assigneeId": assigneeID, "role": string(role)})
	return &ta, nil
}

// UnassignTask удаляет назначение; отсутствие строки — не ошибка
func UnassignTask(db *gorm.DB, taskID, actorID, assigneeID uint, role models.TaskRole) error {
	if !validTaskRole(role) {
		return fmt.Errorf("%w: unknown task role %q", ErrValidation, role)
	}

	task, err := getTask(db, taskID)
	if err != nil {
		return err
	}
	if err := RequireMember(db, task.EntityID, actorID); err != nil {
		return err
	}

	// жёсткое удаление, иначе уникальный индекс не даст назначить заново
	err = db.Unscoped().
		Where("task_id = ? AND actor_id = ? AND role = ?", task.ID, assigneeID, role).
		Delete(&models.TaskActor{}).Error
	if err != nil {
		return err
	}

	database.CreateAuditLog(db, task.EntityID, &actorID,
		models.SubjectRef{Type: models.SubjectTask, ID: task.ID},
		"UNASSIGN_TASK", models.JSONMap{"assigneeId": assigneeID, "role": string(role)})
	return nil
}

type TaskFilter struct {
	Type    string
	Status  models.TaskStatus
	Tag     string
	ActorID uint
	Role    models.TaskRole
}

// ListTasks — задачи домохозяйства с фильтрами; сортировка по сроку,
// затем по порядку создания
func ListTasks(db *gorm.DB, entityID, actorID uint, f TaskFilter) ([]models.Task, error) {
	if err := RequireMember(db, entityID, actorID); err != nil {
		return nil, err
	}

	q := db.Model(&models.Task{}).Where("tasks.entity_id = ?", entityID)
	if f.Type != "" {
		q = q.Where("tasks.type = ?", f.Type)
	}
	if f.Status != "" {
		q = q.Where("tasks.status = ?", f.Status)
	}
	if f.Tag != "" {
		// теги лежат JSON-массивом в текстовой колонке
		q = q.Where("tasks.tags LIKE ?", "%\""+f.Tag+"\"%")
	}
	if f.ActorID != 0 {
		q = q.Joins("JOIN task_actors ON task_actors.task_id = tasks.id").
			Where("task_actors.actor_id = ?", f.ActorID)
		if f.Role != "" {
			q = q.Where("task_actors.role = ?", f.Role)
		}
		q = q.Distinct("tasks.*")
	}

	var tasks []models.Task
	if err := q.Order("tasks.due_at asc, tasks.id asc").Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

func getTask(db *gorm.DB, id uint) (*models.Task, error) {
	var task models.Task
	if err := db.First(&task, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: task %d", ErrNotFound, id)
		}
		return nil, err
	}
	return &task, nil
}
