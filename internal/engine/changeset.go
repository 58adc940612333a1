package engine

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"mealhub/internal/database"
	"mealhub/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProposeInput struct {
	Subject models.SubjectRef
	Type    models.ChangeSetType
	Payload models.ChangeSetPayload
	TaskID  *uint
	TrackID *uint

	// CREATE_CHANGESET по умолчанию, CREATE_CHANGESET_FROM_LENS_RUN из пайплайна
	AuditAction string
}

// Propose создаёт ChangeSet в статусе PENDING и ровно один Question к нему.
// BatchID вопроса — id нового набора, чтобы UI мог сгруппировать ревью.
func Propose(db *gorm.DB, entityID, actorID uint, in ProposeInput) (*models.ChangeSet, *models.Question, error) {
	if err := RequireAdmin(db, entityID, actorID); err != nil {
		return nil, nil, err
	}
	if in.Type == "" {
		return nil, nil, fmt.Errorf("%w: changeset type is required", ErrValidation)
	}

	cs := models.ChangeSet{
		EntityID: entityID,
		TaskID:   in.TaskID,
		TrackID:  in.TrackID,
		Subject:  in.Subject,
		Type:     in.Type,
		Payload:  in.Payload,
		Status:   models.ChangeSetPending,
	}
	if cs.Subject.Type == "" {
		cs.Subject = models.SubjectRef{Type: models.SubjectEntity, ID: entityID}
	}
	if err := db.Create(&cs).Error; err != nil {
		return nil, nil, err
	}

	question := models.Question{
		EntityID:    entityID,
		ChangeSetID: &cs.ID,
		TaskID:      in.TaskID,
		BatchID:     strconv.FormatUint(uint64(cs.ID), 10),
		Kind:        "YES_NO",
		Prompt:      questionPrompt(in.Type),
	}
	if err := db.Create(&question).Error; err != nil {
		return nil, nil, err
	}

	action := in.AuditAction
	if action == "" {
		action = "CREATE_CHANGESET"
	}
	database.CreateAuditLog(db, entityID, &actorID,
		models.SubjectRef{Type: models.SubjectChangeSet, ID: cs.ID},
		action, models.JSONMap{"changeSetType": string(in.Type)})

	return &cs, &question, nil
}

// текст не пользовательский ввод, а детерминированная подсказка по типу
func questionPrompt(t models.ChangeSetType) string {
	switch t {
	case models.ChangeSetInventoryDiff:
		return "Apply the detected pantry inventory changes?"
	case models.ChangeSetWeeklyMealPlan:
		return "Approve the proposed weekly meal plan?"
	default:
		return "Approve the proposed changes?"
	}
}

// Approve переводит набор в APPROVED. Повторный approve допустим и просто
// перештамповывает время; approve уже применённого набора — Conflict.
func Approve(db *gorm.DB, changeSetID, actorID uint) (*models.ChangeSet, error) {
	cs, err := getChangeSet(db, changeSetID)
	if err != nil {
		return nil, err
	}
	if err := RequireAdmin(db, cs.EntityID, actorID); err != nil {
		return nil, err
	}

	// условный UPDATE вместо read-then-write: APPLIED терминален,
	// гонка двух approve безвредна
	res := db.Model(&models.ChangeSet{}).
		Where("id = ? AND status <> ?", cs.ID, models.ChangeSetApplied).
		Updates(map[string]interface{}{
			"status":      models.ChangeSetApproved,
			"approved_at": time.Now(),
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, fmt.Errorf("%w: changeset %d is already applied", ErrConflict, cs.ID)
	}

	if err := db.First(cs, cs.ID).Error; err != nil {
		return nil, err
	}
	database.CreateAuditLog(db, cs.EntityID, &actorID,
		models.SubjectRef{Type: models.SubjectChangeSet, ID: cs.ID},
		"APPROVE_CHANGESET", nil)
	return cs, nil
}

// ApplyResult — сводка того, что сделал применитель; уходит в аудит и в ответ.
type ApplyResult struct {
	Kind         string `json:"kind"`
	Upserted     int    `json:"upserted"`
	Deleted      int    `json:"deleted"`
	Skipped      int    `json:"skipped"`
	TasksCreated int    `json:"tasksCreated"`
	Note         string `json:"note,omitempty"`
}

// Apply применяет APPROVED-набор ровно один раз. Переход статуса — условный
// UPDATE внутри транзакции, так что из двух конкурентных apply применитель
// отработает максимум у одного; второй получит Conflict.
func Apply(db *gorm.DB, changeSetID, actorID uint) (*ApplyResult, *models.ChangeSet, error) {
	cs, err := getChangeSet(db, changeSetID)
	if err != nil {
		return nil, nil, err
	}
	if err := RequireAdmin(db, cs.EntityID, actorID); err != nil {
		return nil, nil, err
	}

	var result ApplyResult
	err = db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.ChangeSet{}).
			Where("id = ? AND status = ?", cs.ID, models.ChangeSetApproved).
			Updates(map[string]interface{}{
				"status":     models.ChangeSetApplied,
				"applied_at": time.Now(),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%w: changeset %d is not in approved status", ErrConflict, cs.ID)
		}

		r, err := applyPayload(tx, cs)
		if err != nil {
			return err
		}
		result = r

		// бухгалтерская задача-след применения
		book := models.Task{
			EntityID: cs.EntityID,
			Type:     models.TaskApplyChangeSet,
			Status:   models.TaskDone,
			Metadata: models.JSONMap{"changeSetId": cs.ID},
		}
		if err := tx.Create(&book).Error; err != nil {
			return err
		}
		return tx.Exec("INSERT INTO task_change_sets (task_id, change_set_id) VALUES (?, ?)",
			book.ID, cs.ID).Error
	})
	if err != nil {
		return nil, nil, err
	}

	if err := db.First(cs, cs.ID).Error; err != nil {
		return nil, nil, err
	}
	database.CreateAuditLog(db, cs.EntityID, &actorID,
		models.SubjectRef{Type: models.SubjectChangeSet, ID: cs.ID},
		"APPLY_CHANGESET", models.JSONMap{"result": result})
	return &result, cs, nil
}

// диспетчеризация по типу набора; неизвестный тип — подтверждённый no-op
func applyPayload(tx *gorm.DB, cs *models.ChangeSet) (ApplyResult, error) {
	switch cs.Type {
	case models.ChangeSetInventoryDiff:
		return applyInventoryDiff(tx, cs)
	case models.ChangeSetWeeklyMealPlan:
		return applyWeeklyMealPlan(tx, cs)
	default:
		return ApplyResult{
			Kind: string(cs.Type),
			Note: "no applier registered for this changeset type, acknowledged without action",
		}, nil
	}
}

func applyInventoryDiff(tx *gorm.DB, cs *models.ChangeSet) (ApplyResult, error) {
	result := ApplyResult{Kind: string(models.ChangeSetInventoryDiff)}

	for _, item := range cs.Payload.Items {
		// неполные позиции пропускаем, это не ошибка
		if item.ResourceID == 0 || item.LocationID == 0 {
			result.Skipped++
			continue
		}

		switch {
		case item.Action == models.DiffActionToBuy:
			// закупка откладывается до выполнения задачи, инвентарь не трогаем
			meta := models.JSONMap{
				"resourceId": item.ResourceID,
				"locationId": item.LocationID,
				"quantity":   item.Quantity,
			}
			if item.InventoryItemID != nil {
				meta["inventoryItemId"] = *item.InventoryItemID
			}
			task := models.Task{
				EntityID:   cs.EntityID,
				Type:       models.TaskBuyResource,
				Status:     models.TaskPending,
				LocationID: &item.LocationID,
				Tags:       models.StringList{"to-buy"},
				Metadata:   meta,
			}
			if err := tx.Create(&task).Error; err != nil {
				return result, err
			}
			result.TasksCreated++

		case item.Action == models.DiffActionDelete || item.Quantity <= 0:
			// Unscoped: мягко удалённая строка держала бы уникальный индекс тройки
			res := tx.Unscoped().
				Where("entity_id = ? AND resource_id = ? AND location_id = ?",
					cs.EntityID, item.ResourceID, item.LocationID).
				Delete(&models.InventoryItem{})
			if res.Error != nil {
				return result, res.Error
			}
			result.Deleted += int(res.RowsAffected)

		default:
			// полная замена количества по ключу тройки, не инкремент
			row := models.InventoryItem{
				ResourceID: item.ResourceID,
				EntityID:   cs.EntityID,
				LocationID: item.LocationID,
				Quantity:   item.Quantity,
				ExpiresAt:  item.ExpiresAt,
			}
			err := tx.Clauses(clause.OnConflict{
				Columns: []clause.Column{
					{Name: "resource_id"}, {Name: "entity_id"}, {Name: "location_id"},
				},
				DoUpdates: clause.AssignmentColumns([]string{"quantity", "expires_at", "updated_at"}),
			}).Create(&row).Error
			if err != nil {
				return result, err
			}
			result.Upserted++
		}
	}

	return result, nil
}

func applyWeeklyMealPlan(tx *gorm.DB, cs *models.ChangeSet) (ApplyResult, error) {
	result := ApplyResult{Kind: string(models.ChangeSetWeeklyMealPlan)}

	for _, spec := range cs.Payload.Tasks {
		if spec.Type == "" {
			result.Skipped++
			continue
		}
		status := spec.Status
		if status == "" {
			status = models.TaskPending
		}
		task := models.Task{
			EntityID:   cs.EntityID,
			Type:       spec.Type,
			Status:     status,
			GoalID:     spec.GoalID,
			SolutionID: spec.SolutionID,
			StepID:     spec.StepID,
			DueAt:      spec.DueAt,
			StartsAt:   spec.StartsAt,
		}
		if err := tx.Create(&task).Error; err != nil {
			return result, err
		}
		result.TasksCreated++
	}

	return result, nil
}

// AnswerQuestion записывает ответ. Ответы учётные: approve/apply их не читают.
func AnswerQuestion(db *gorm.DB, questionID, actorID uint, taskID *uint, value models.JSONMap) (*models.Answer, error) {
	var question models.Question
	if err := db.First(&question, questionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: question %d", ErrNotFound, questionID)
		}
		return nil, err
	}
	if err := RequireMember(db, question.EntityID, actorID); err != nil {
		return nil, err
	}

	answer := models.Answer{
		QuestionID: question.ID,
		TaskID:     taskID,
		ActorID:    actorID,
		Value:      value,
	}
	if err := db.Create(&answer).Error; err != nil {
		return nil, err
	}

	subject := models.SubjectRef{Type: models.SubjectEntity, ID: question.EntityID}
	if question.ChangeSetID != nil {
		subject = models.SubjectRef{Type: models.SubjectChangeSet, ID: *question.ChangeSetID}
	}
	database.CreateAuditLog(db, question.EntityID, &actorID, subject,
		"ANSWER_QUESTION", models.JSONMap{"questionId": question.ID})
	return &answer, nil
}

func getChangeSet(db *gorm.DB, id uint) (*models.ChangeSet, error) {
	var cs models.ChangeSet
	if err := db.First(&cs, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: changeset %d", ErrNotFound, id)
		}
		return nil, err
	}
	return &cs, nil
}
