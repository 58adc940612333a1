package handlers

import (
	"net/http"

	"mealhub/internal/database"
	"mealhub/internal/engine"
	"mealhub/internal/models"

	"github.com/gin-gonic/gin"
)

func CreateTrack(c *gin.Context) {
	entityID, ok := paramID(c, "id")
	if !ok {
		return
	}

	var form struct {
		MediaURL   string         `json:"mediaUrl"`
		SensorType string         `json:"sensorType"`
		LensType   string         `json:"lensType"`
		LocationID *uint          `json:"locationId"`
		Telemetry  models.JSONMap `json:"telemetry"`
	}
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	track, run, err := engine.CreateTrack(database.DB, entityID, currentActorID(c), engine.TrackInput{
		MediaURL:   form.MediaURL,
		SensorType: models.SensorType(form.SensorType),
		LensType:   models.LensType(form.LensType),
		LocationID: form.LocationID,
		Telemetry:  form.Telemetry,
	})
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"track": track, "lensRun": run})
}

// Capture — синхронный демо-путь: заглушечный трек сразу прогоняется
// через линзу, ChangeSet и Question возвращаются инлайн
func Capture(c *gin.Context) {
	entityID, ok := paramID(c, "id")
	if !ok {
		return
	}
	lensType := models.LensType(c.Param("lensType"))

	result, err := engine.CaptureAndProcess(database.DB, entityID, currentActorID(c), lensType)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func ProcessLensRun(c *gin.Context) {
	runID, ok := paramID(c, "id")
	if !ok {
		return
	}

	result, err := engine.ProcessLensRun(database.DB, runID, currentActorID(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
