package handlers

import (
	"net/http"

	"mealhub/internal/database"
	"mealhub/internal/engine"
	"mealhub/internal/models"

	"github.com/gin-gonic/gin"
)

func ProposeChangeSet(c *gin.Context) {
	entityID, ok := paramID(c, "id")
	if !ok {
		return
	}

	var form struct {
		SubjectType string                  `json:"subjectType"`
		SubjectID   uint                    `json:"subjectId"`
		Type        string                  `json:"type"`
		Payload     models.ChangeSetPayload `json:"payload"`
		TaskID      *uint                   `json:"taskId"`
		TrackID     *uint                   `json:"trackId"`
	}
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	cs, question, err := engine.Propose(database.DB, entityID, currentActorID(c), engine.ProposeInput{
		Subject: models.SubjectRef{Type: models.SubjectType(form.SubjectType), ID: form.SubjectID},
		Type:    models.ChangeSetType(form.Type),
		Payload: form.Payload,
		TaskID:  form.TaskID,
		TrackID: form.TrackID,
	})
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"changeSet": cs, "question": question})
}

func ApproveChangeSet(c *gin.Context) {
	changeSetID, ok := paramID(c, "id")
	if !ok {
		return
	}

	cs, err := engine.Approve(database.DB, changeSetID, currentActorID(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, cs)
}

func ApplyChangeSet(c *gin.Context) {
	changeSetID, ok := paramID(c, "id")
	if !ok {
		return
	}

	result, cs, err := engine.Apply(database.DB, changeSetID, currentActorID(c))
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"changeSetId": cs.ID,
		"applied":     true,
		"result":      result,
		"changeSet":   cs,
	})
}

func ListChangeSets(c *gin.Context) {
	entityID, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := engine.RequireMember(database.DB, entityID, currentActorID(c)); err != nil {
		fail(c, err)
		return
	}

	q := database.DB.Where("entity_id = ?", entityID)
	if t := c.Query("type"); t != "" {
		q = q.Where("type = ?", t)
	}
	if s := c.Query("status"); s != "" {
		q = q.Where("status = ?", s)
	}

	var sets []models.ChangeSet
	q.Order("created_at desc").Find(&sets)
	c.JSON(http.StatusOK, sets)
}

func ListQuestions(c *gin.Context) {
	entityID, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := engine.RequireMember(database.DB, entityID, currentActorID(c)); err != nil {
		fail(c, err)
		return
	}

	q := database.DB.Where("entity_id = ?", entityID)
	if batch := c.Query("batchId"); batch != "" {
		q = q.Where("batch_id = ?", batch)
	}

	var questions []models.Question
	q.Order("created_at desc").Find(&questions)
	c.JSON(http.StatusOK, questions)
}

func AnswerQuestion(c *gin.Context) {
	questionID, ok := paramID(c, "id")
	if !ok {
		return
	}

	var form struct {
		TaskID *uint          `json:"taskId"`
		Value  models.JSONMap `json:"value"`
	}
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	answer, err := engine.AnswerQuestion(database.DB, questionID, currentActorID(c), form.TaskID, form.Value)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, answer)
}
