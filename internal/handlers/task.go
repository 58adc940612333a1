package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"mealhub/internal/database"
	"mealhub/internal/engine"
	"mealhub/internal/models"

	"github.com/gin-gonic/gin"
)

func CreateTask(c *gin.Context) {
	entityID, ok := paramID(c, "id")
	if !ok {
		return
	}
	actorID := currentActorID(c)

	var form struct {
		Type       string         `json:"type"`
		Status     string         `json:"status"`
		GoalID     *uint          `json:"goalId"`
		SolutionID *uint          `json:"solutionId"`
		StepID     *uint          `json:"stepId"`
		LocationID *uint          `json:"locationId"`
		Tags       []string       `json:"tags"`
		Metadata   models.JSONMap `json:"metadata"`
		DueAt      *time.Time     `json:"dueAt"`
		StartsAt   *time.Time     `json:"startsAt"`
	}
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	form.Type = strings.TrimSpace(form.Type)
	if form.Type == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "task type is required"})
		return
	}

	status := models.TaskStatus(form.Status)
	if status == "" {
		status = models.TaskPending
	}
	switch status {
	case models.TaskPending, models.TaskInProgress, models.TaskDone, models.TaskBlocked:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown task status"})
		return
	}

	if err := engine.RequireMember(database.DB, entityID, actorID); err != nil {
		fail(c, err)
		return
	}

	task := models.Task{
		EntityID:   entityID,
		Type:       form.Type,
		Status:     status,
		GoalID:     form.GoalID,
		SolutionID: form.SolutionID,
		StepID:     form.StepID,
		LocationID: form.LocationID,
		Tags:       models.StringList(form.Tags),
		Metadata:   form.Metadata,
		DueAt:      form.DueAt,
		StartsAt:   form.StartsAt,
	}
	if err := database.DB.Create(&task).Error; err != nil {
		fail(c, err)
		return
	}

	database.CreateAuditLog(database.DB, entityID, &actorID,
		models.SubjectRef{Type: models.SubjectTask, ID: task.ID},
		"CREATE_TASK", models.JSONMap{"taskType": task.Type})

	c.JSON(http.StatusOK, task)
}

func ListTasks(c *gin.Context) {
	entityID, ok := paramID(c, "id")
	if !ok {
		return
	}

	filter := engine.TaskFilter{
		Type:   c.Query("type"),
		Status: models.TaskStatus(c.Query("status")),
		Tag:    c.Query("tag"),
		Role:   models.TaskRole(c.Query("role")),
	}
	if raw := c.Query("actorId"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid actorId"})
			return
		}
		filter.ActorID = uint(id)
	}

	tasks, err := engine.ListTasks(database.DB, entityID, currentActorID(c), filter)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, tasks)
}

func SetTaskStatus(c *gin.Context) {
	taskID, ok := paramID(c, "id")
	if !ok {
		return
	}

	var form struct {
		Status string `json:"status"`
	}
	if err := c.ShouldBindJSON(&form); err != nil || form.Status == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "status is required"})
		return
	}

	task, err := engine.SetTaskStatus(database.DB, taskID, currentActorID(c), models.TaskStatus(form.Status))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

type assignForm struct {
	ActorID uint   `json:"actorId"`
	Role    string `json:"role"`
}

func AssignTask(c *gin.Context) {
	taskID, ok := paramID(c, "id")
	if !ok {
		return
	}

	var form assignForm
	if err := c.ShouldBindJSON(&form); err != nil || form.ActorID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "actorId is required"})
		return
	}

	ta, err := engine.AssignTask(database.DB, taskID, currentActorID(c), form.ActorID, models.TaskRole(form.Role))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, ta)
}

func UnassignTask(c *gin.Context) {
	taskID, ok := paramID(c, "id")
	if !ok {
		return
	}

	var form assignForm
	if err := c.ShouldBindJSON(&form); err != nil || form.ActorID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "actorId is required"})
		return
	}

	err := engine.UnassignTask(database.DB, taskID, currentActorID(c), form.ActorID, models.TaskRole(form.Role))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func CreateWeeklyGoal(c *gin.Context) {
	entityID, ok := paramID(c, "id")
	if !ok {
		return
	}

	var form struct {
		Dinners int `json:"dinners"`
	}
	// тело опционально
	_ = c.ShouldBindJSON(&form)

	goal, task, err := engine.CreateWeeklyGoal(database.DB, entityID, currentActorID(c), form.Dinners)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"goal": goal, "task": task})
}
