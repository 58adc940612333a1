package engine

import (
	"testing"

	"mealhub/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateTrackProvisionsDefaultsAndPendingRun(t *testing.T) {
	f := newFixture(t)

	track, run, err := CreateTrack(f.db, f.entity.ID, f.member.ID, TrackInput{
		MediaURL:   "https://media.test/pantry.jpg",
		SensorType: models.SensorMobileCamera,
		LensType:   models.LensInventory,
	})
	require.NoError(t, err)
	assert.Equal(t, f.member.ID, track.ActorID)

	// сенсоры завелись автоматически
	var sensors int64
	f.db.Model(&models.Sensor{}).Where("entity_id = ?", f.entity.ID).Count(&sensors)
	assert.EqualValues(t, 2, sensors)

	require.NotNil(t, run)
	assert.Equal(t, models.LensRunPending, run.Status)
	assert.Equal(t, track.ID, run.TrackID)
}

func TestCreateTrackUnknownSensorType(t *testing.T) {
	f := newFixture(t)

	_, _, err := CreateTrack(f.db, f.entity.ID, f.member.ID, TrackInput{
		MediaURL:   "https://media.test/pantry.jpg",
		SensorType: models.SensorType("CARRIER_PIGEON"),
		LensType:   models.LensInventory,
	})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestCreateTrackUnknownLensLeavesNoRun(t *testing.T) {
	f := newFixture(t)

	track, run, err := CreateTrack(f.db, f.entity.ID, f.member.ID, TrackInput{
		MediaURL:   "https://media.test/pantry.jpg",
		SensorType: models.SensorWebUpload,
		LensType:   models.LensType("X_RAY_LENS"),
	})
	require.NoError(t, err)
	assert.NotZero(t, track.ID)
	assert.Nil(t, run)
}

func TestProcessLensRunProducesInventoryDiff(t *testing.T) {
	f := newFixture(t)

	_, run, err := CreateTrack(f.db, f.entity.ID, f.admin.ID, TrackInput{
		MediaURL:   "https://media.test/pantry.jpg",
		SensorType: models.SensorMobileCamera,
		LensType:   models.LensInventory,
	})
	require.NoError(t, err)

	result, err := ProcessLensRun(f.db, run.ID, f.admin.ID)
	require.NoError(t, err)

	assert.Equal(t, models.LensRunCompleted, result.LensRun.Status)
	assert.NotEmpty(t, result.LensRun.RawOutput)

	cs := result.ChangeSet
	assert.Equal(t, models.ChangeSetInventoryDiff, cs.Type)
	assert.Equal(t, models.ChangeSetPending, cs.Status)
	assert.Equal(t, models.SubjectTrack, cs.Subject.Type)
	require.Len(t, cs.Payload.Items, 1)
	assert.Equal(t, f.resource.ID, cs.Payload.Items[0].ResourceID)
	assert.Equal(t, f.location.ID, cs.Payload.Items[0].LocationID)

	require.NotNil(t, result.Question.ChangeSetID)
	assert.Equal(t, cs.ID, *result.Question.ChangeSetID)

	assert.EqualValues(t, 1, f.countAudit(t, "CREATE_CHANGESET_FROM_LENS_RUN"))
}

func TestProcessLensRunRepeatIsConflict(t *testing.T) {
	f := newFixture(t)

	_, run, err := CreateTrack(f.db, f.entity.ID, f.admin.ID, TrackInput{
		MediaURL:   "https://media.test/pantry.jpg",
		SensorType: models.SensorMobileCamera,
		LensType:   models.LensInventory,
	})
	require.NoError(t, err)

	_, err = ProcessLensRun(f.db, run.ID, f.admin.ID)
	require.NoError(t, err)

	// повторная обработка не плодит второй ChangeSet
	_, err = ProcessLensRun(f.db, run.ID, f.admin.ID)
	require.ErrorIs(t, err, ErrConflict)

	var count int64
	f.db.Model(&models.ChangeSet{}).Where("entity_id = ?", f.entity.ID).Count(&count)
	assert.EqualValues(t, 1, count)
}

func TestProcessLensRunRequiresAdmin(t *testing.T) {
	f := newFixture(t)

	_, run, err := CreateTrack(f.db, f.entity.ID, f.member.ID, TrackInput{
		MediaURL:   "https://media.test/pantry.jpg",
		SensorType: models.SensorMobileCamera,
		LensType:   models.LensInventory,
	})
	require.NoError(t, err)

	_, err = ProcessLensRun(f.db, run.ID, f.member.ID)
	require.ErrorIs(t, err, ErrForbidden)

	// ран остался необработанным
	var reloaded models.LensRun
	require.NoError(t, f.db.First(&reloaded, run.ID).Error)
	assert.Equal(t, models.LensRunPending, reloaded.Status)
}

func TestCaptureAndProcessMealPlan(t *testing.T) {
	f := newFixture(t)

	result, err := CaptureAndProcess(f.db, f.entity.ID, f.admin.ID, models.LensMealPlan)
	require.NoError(t, err)

	cs := result.ChangeSet
	assert.Equal(t, models.ChangeSetWeeklyMealPlan, cs.Type)
	require.Len(t, cs.Payload.Tasks, 2)
	assert.Equal(t, models.TaskBuyResource, cs.Payload.Tasks[0].Type)
	assert.Equal(t, models.TaskCookRecipeStep, cs.Payload.Tasks[1].Type)

	// полный цикл: approve → apply → веер задач плюс бухгалтерская задача
	_, err = Approve(f.db, cs.ID, f.admin.ID)
	require.NoError(t, err)
	applyResult, _, err := Apply(f.db, cs.ID, f.admin.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, applyResult.TasksCreated)

	var total int64
	f.db.Model(&models.Task{}).Where("entity_id = ?", f.entity.ID).Count(&total)
	assert.EqualValues(t, 3, total)
}

func TestCaptureAndProcessUnknownLens(t *testing.T) {
	f := newFixture(t)

	_, err := CaptureAndProcess(f.db, f.entity.ID, f.admin.ID, models.LensType("X_RAY_LENS"))
	require.ErrorIs(t, err, ErrNotFound)
}
