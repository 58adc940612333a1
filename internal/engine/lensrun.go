package engine

import (
	"errors"
	"fmt"

	"mealhub/internal/database"
	"mealhub/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type TrackInput struct {
	MediaURL   string
	SensorType models.SensorType
	LensType   models.LensType
	LocationID *uint
	Telemetry  models.JSONMap
}

// CreateTrack регистрирует событие захвата. Сенсоры и линзы по умолчанию
// заводятся на лету; ран линзы создаётся отложенным (PENDING), обработка —
// отдельным вызовом ProcessLensRun.
func CreateTrack(db *gorm.DB, entityID, actorID uint, in TrackInput) (*models.Track, *models.LensRun, error) {
	if err := RequireMember(db, entityID, actorID); err != nil {
		return nil, nil, err
	}
	if in.MediaURL == "" {
		return nil, nil, fmt.Errorf("%w: mediaUrl is required", ErrValidation)
	}

	ensureCaptureDefaults(db, entityID)

	var sensor models.Sensor
	err := db.Where("entity_id = ? AND type = ?", entityID, in.SensorType).First(&sensor).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, fmt.Errorf("%w: no sensor of type %q for entity %d", ErrNotFound, in.SensorType, entityID)
		}
		return nil, nil, err
	}

	if in.LocationID != nil {
		var loc models.Location
		err := db.Where("id = ? AND entity_id = ?", *in.LocationID, entityID).First(&loc).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, nil, fmt.Errorf("%w: location %d", ErrNotFound, *in.LocationID)
			}
			return nil, nil, err
		}
	}

	track := models.Track{
		EntityID:   entityID,
		ActorID:    actorID,
		SensorID:   sensor.ID,
		LocationID: in.LocationID,
		MediaURL:   in.MediaURL,
		Telemetry:  in.Telemetry,
	}
	if err := db.Create(&track).Error; err != nil {
		return nil, nil, err
	}
	database.CreateAuditLog(db, entityID, &actorID,
		models.SubjectRef{Type: models.SubjectTrack, ID: track.ID},
		"CREATE_TRACK", models.JSONMap{"sensorType": string(in.SensorType)})

	// линза не зарегистрирована — трек остаётся без рана, это не ошибка
	var lens models.Lens
	if err := db.Where("type = ?", in.LensType).First(&lens).Error; err != nil {
		return &track, nil, nil
	}
	run := models.LensRun{
		LensID:  lens.ID,
		TrackID: track.ID,
		Status:  models.LensRunPending,
	}
	if err := db.Create(&run).Error; err != nil {
		return nil, nil, err
	}
	return &track, &run, nil
}

// дефолтные сенсоры домохозяйства и глобальные линзы; upsert по натуральному
// ключу, конкурентные вызовы не плодят дублей
func ensureCaptureDefaults(db *gorm.DB, entityID uint) {
	for _, st := range []models.SensorType{models.SensorMobileCamera, models.SensorWebUpload} {
		s := models.Sensor{EntityID: entityID, Type: st}
		_ = db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "entity_id"}, {Name: "type"}},
			DoNothing: true,
		}).Create(&s).Error
	}
	database.SeedLenses(db)
}

type ProcessResult struct {
	LensRun   *models.LensRun   `json:"lensRun"`
	ChangeSet *models.ChangeSet `json:"changeSet"`
	Question  *models.Question  `json:"question"`
}

// ProcessLensRun прогоняет ран через аналитика и через Propose создаёт
// ChangeSet + Question. Ран захватывается условным апдейтом PENDING →
// PROCESSING: повторный вызов по тому же id получает Conflict, а не второй
// ChangeSet.
func ProcessLensRun(db *gorm.DB, lensRunID, actorID uint) (*ProcessResult, error) {
	var run models.LensRun
	err := db.Preload("Lens").Preload("Track").First(&run, lensRunID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: lens run %d", ErrNotFound, lensRunID)
		}
		return nil, err
	}
	entityID := run.Track.EntityID
	if err := RequireAdmin(db, entityID, actorID); err != nil {
		return nil, err
	}

	res := db.Model(&models.LensRun{}).
		Where("id = ? AND status = ?", run.ID, models.LensRunPending).
		Update("status", models.LensRunProcessing)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, fmt.Errorf("%w: lens run %d is already processed", ErrConflict, run.ID)
	}

	csType, payload := analyzeTrack(db, entityID, run.Lens.Type)

	cs, question, err := Propose(db, entityID, actorID, ProposeInput{
		Subject:     models.SubjectRef{Type: models.SubjectTrack, ID: run.TrackID},
		Type:        csType,
		Payload:     payload,
		TrackID:     &run.TrackID,
		AuditAction: "CREATE_CHANGESET_FROM_LENS_RUN",
	})
	if err != nil {
		// освобождаем ран в FAILED, чтобы зависший PROCESSING не остался навсегда
		db.Model(&models.LensRun{}).Where("id = ?", run.ID).
			Update("status", models.LensRunFailed)
		return nil, err
	}

	raw := models.JSONMap{"changeSetType": string(csType)}
	if len(payload.Items) > 0 {
		raw["items"] = payload.Items
	}
	if len(payload.Tasks) > 0 {
		raw["tasks"] = payload.Tasks
	}
	err = db.Model(&models.LensRun{}).Where("id = ?", run.ID).
		Updates(map[string]interface{}{
			"status":     models.LensRunCompleted,
			"raw_output": raw,
		}).Error
	if err != nil {
		return nil, err
	}
	if err := db.First(&run, run.ID).Error; err != nil {
		return nil, err
	}

	return &ProcessResult{LensRun: &run, ChangeSet: cs, Question: question}, nil
}

// analyzeTrack — заглушка аналитика. Сюда подключается настоящий вызов
// модели; пока payload синтезируется детерминированно по типу линзы.
func analyzeTrack(db *gorm.DB, entityID uint, lensType models.LensType) (models.ChangeSetType, models.ChangeSetPayload) {
	if lensType == models.LensMealPlan {
		return models.ChangeSetWeeklyMealPlan, models.ChangeSetPayload{
			Tasks: []models.PlannedTaskSpec{
				{Type: models.TaskBuyResource},
				{Type: models.TaskCookRecipeStep},
			},
		}
	}

	// дифф по первой паре ресурс/место домохозяйства; если их ещё нет,
	// отдаём пустой дифф
	payload := models.ChangeSetPayload{Items: []models.InventoryDiffItem{}}
	var resource models.Resource
	if err := db.Where("entity_id = ?", entityID).Order("id asc").First(&resource).Error; err == nil {
		var location models.Location
		if err := db.Where("entity_id = ?", entityID).Order("id asc").First(&location).Error; err == nil {
			payload.Items = append(payload.Items, models.InventoryDiffItem{
				ResourceID: resource.ID,
				LocationID: location.ID,
				Quantity:   1,
			})
		}
	}
	return models.ChangeSetInventoryDiff, payload
}

// CaptureAndProcess — синхронный демо-путь: заглушечный трек + ран и сразу
// обработка, результат отдаётся инлайн.
func CaptureAndProcess(db *gorm.DB, entityID, actorID uint, lensType models.LensType) (*ProcessResult, error) {
	if err := RequireAdmin(db, entityID, actorID); err != nil {
		return nil, err
	}

	_, run, err := CreateTrack(db, entityID, actorID, TrackInput{
		MediaURL:   "capture://" + uuid.NewString(),
		SensorType: models.SensorWebUpload,
		LensType:   lensType,
	})
	if err != nil {
		return nil, err
	}
	if run == nil {
		return nil, fmt.Errorf("%w: lens type %q is not registered", ErrNotFound, lensType)
	}

	return ProcessLensRun(db, run.ID, actorID)
}
