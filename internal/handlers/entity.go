package handlers

import (
	"net/http"
	"strings"
	"time"

	"mealhub/internal/database"
	"mealhub/internal/engine"
	"mealhub/internal/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm/clause"
)

//
// ДОМОХОЗЯЙСТВА И ЧЛЕНСТВО
//

func CreateEntity(c *gin.Context) {
	actorID := currentActorID(c)

	var form struct {
		Name string `json:"name"`
	}
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	form.Name = strings.TrimSpace(form.Name)
	if len(form.Name) < 3 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "entity name must be at least 3 characters"})
		return
	}

	entity := models.Entity{Name: form.Name}
	if err := database.DB.Create(&entity).Error; err != nil {
		fail(c, err)
		return
	}

	// создатель автоматически становится админом
	membership := models.EntityActor{
		EntityID: entity.ID,
		ActorID:  actorID,
		Role:     models.RoleAdmin,
	}
	if err := database.DB.Create(&membership).Error; err != nil {
		fail(c, err)
		return
	}

	database.CreateAuditLog(database.DB, entity.ID, &actorID,
		models.SubjectRef{Type: models.SubjectEntity, ID: entity.ID},
		"CREATE_ENTITY", models.JSONMap{"name": entity.Name})

	c.JSON(http.StatusOK, entity)
}

func ShowEntity(c *gin.Context) {
	entityID, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := engine.RequireMember(database.DB, entityID, currentActorID(c)); err != nil {
		fail(c, err)
		return
	}

	var entity models.Entity
	if err := database.DB.First(&entity, entityID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "entity not found"})
		return
	}

	var members []models.EntityActor
	database.DB.Where("entity_id = ?", entityID).Preload("Actor").Find(&members)

	c.JSON(http.StatusOK, gin.H{"entity": entity, "members": members})
}

func AddMember(c *gin.Context) {
	entityID, ok := paramID(c, "id")
	if !ok {
		return
	}
	actorID := currentActorID(c)

	var form struct {
		ActorID uint   `json:"actorId"`
		Role    string `json:"role"`
	}
	if err := c.ShouldBindJSON(&form); err != nil || form.ActorID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	role := models.EntityRole(form.Role)
	if role != models.RoleAdmin && role != models.RoleMember {
		c.JSON(http.StatusBadRequest, gin.H{"error": "role must be ADMIN or MEMBER"})
		return
	}

	if err := engine.RequireAdmin(database.DB, entityID, actorID); err != nil {
		fail(c, err)
		return
	}

	var member models.Actor
	if err := database.DB.First(&member, form.ActorID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "actor not found"})
		return
	}

	// не больше одной строки членства на пару (entity, actor);
	// повторный вызов просто обновляет роль
	membership := models.EntityActor{
		EntityID: entityID,
		ActorID:  member.ID,
		Role:     role,
	}
	err := database.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "entity_id"}, {Name: "actor_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"role"}),
	}).Create(&membership).Error
	if err != nil {
		fail(c, err)
		return
	}
	if err := database.DB.Where("entity_id = ? AND actor_id = ?", entityID, member.ID).
		First(&membership).Error; err != nil {
		fail(c, err)
		return
	}

	database.CreateAuditLog(database.DB, entityID, &actorID,
		models.SubjectRef{Type: models.SubjectEntity, ID: entityID},
		"ADD_MEMBER", models.JSONMap{"memberId": member.ID, "role": string(role)})

	c.JSON(http.StatusOK, membership)
}

//
// МЕСТА ХРАНЕНИЯ
//

func CreateLocation(c *gin.Context) {
	entityID, ok := paramID(c, "id")
	if !ok {
		return
	}
	actorID := currentActorID(c)

	var form struct {
		Name     string `json:"name"`
		ParentID *uint  `json:"parentId"`
	}
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	form.Name = strings.TrimSpace(form.Name)
	if form.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "location name is required"})
		return
	}

	if err := engine.RequireAdmin(database.DB, entityID, actorID); err != nil {
		fail(c, err)
		return
	}

	// родитель обязан существовать в том же домохозяйстве — так дерево
	// не может ни зациклиться, ни пересечь границу entity
	if form.ParentID != nil {
		var parent models.Location
		err := database.DB.Where("id = ? AND entity_id = ?", *form.ParentID, entityID).
			First(&parent).Error
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "parent location not found"})
			return
		}
	}

	location := models.Location{
		EntityID: entityID,
		ParentID: form.ParentID,
		Name:     form.Name,
	}
	if err := database.DB.Create(&location).Error; err != nil {
		fail(c, err)
		return
	}

	database.CreateAuditLog(database.DB, entityID, &actorID,
		models.SubjectRef{Type: models.SubjectEntity, ID: entityID},
		"CREATE_LOCATION", models.JSONMap{"locationId": location.ID, "name": location.Name})

	c.JSON(http.StatusOK, location)
}

func ListLocations(c *gin.Context) {
	entityID, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := engine.RequireMember(database.DB, entityID, currentActorID(c)); err != nil {
		fail(c, err)
		return
	}

	var locations []models.Location
	database.DB.Where("entity_id = ?", entityID).Order("id asc").Find(&locations)
	c.JSON(http.StatusOK, locations)
}

//
// РЕСУРСЫ И ИНВЕНТАРЬ
//

func CreateResource(c *gin.Context) {
	entityID, ok := paramID(c, "id")
	if !ok {
		return
	}
	actorID := currentActorID(c)

	var form struct {
		Name string `json:"name"`
		Unit string `json:"unit"`
	}
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	form.Name = strings.TrimSpace(form.Name)
	if form.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "resource name is required"})
		return
	}

	if err := engine.RequireAdmin(database.DB, entityID, actorID); err != nil {
		fail(c, err)
		return
	}

	resource := models.Resource{
		EntityID: entityID,
		Name:     form.Name,
		Unit:     strings.TrimSpace(form.Unit),
	}
	if err := database.DB.Create(&resource).Error; err != nil {
		fail(c, err)
		return
	}

	database.CreateAuditLog(database.DB, entityID, &actorID,
		models.SubjectRef{Type: models.SubjectEntity, ID: entityID},
		"CREATE_RESOURCE", models.JSONMap{"resourceId": resource.ID, "name": resource.Name})

	c.JSON(http.StatusOK, resource)
}

func ListResources(c *gin.Context) {
	entityID, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := engine.RequireMember(database.DB, entityID, currentActorID(c)); err != nil {
		fail(c, err)
		return
	}

	var resources []models.Resource
	database.DB.Where("entity_id = ?", entityID).Order("name asc").Find(&resources)
	c.JSON(http.StatusOK, resources)
}

func ListInventory(c *gin.Context) {
	entityID, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := engine.RequireMember(database.DB, entityID, currentActorID(c)); err != nil {
		fail(c, err)
		return
	}

	var items []models.InventoryItem
	database.DB.Where("entity_id = ?", entityID).
		Order("location_id asc, resource_id asc").Find(&items)
	c.JSON(http.StatusOK, items)
}

// UpsertInventoryItem — прямое редактирование инвентаря мимо ревью;
// полная замена количества по ключу (resource, entity, location)
func UpsertInventoryItem(c *gin.Context) {
	entityID, ok := paramID(c, "id")
	if !ok {
		return
	}
	actorID := currentActorID(c)

	var form struct {
		ResourceID uint       `json:"resourceId"`
		LocationID uint       `json:"locationId"`
		Quantity   float64    `json:"quantity"`
		ExpiresAt  *time.Time `json:"expiresAt"`
	}
	if err := c.ShouldBindJSON(&form); err != nil || form.ResourceID == 0 || form.LocationID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "resourceId and locationId are required"})
		return
	}

	if err := engine.RequireAdmin(database.DB, entityID, actorID); err != nil {
		fail(c, err)
		return
	}

	item := models.InventoryItem{
		ResourceID: form.ResourceID,
		EntityID:   entityID,
		LocationID: form.LocationID,
		Quantity:   form.Quantity,
		ExpiresAt:  form.ExpiresAt,
	}
	err := database.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "resource_id"}, {Name: "entity_id"}, {Name: "location_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"quantity", "expires_at", "updated_at"}),
	}).Create(&item).Error
	if err != nil {
		fail(c, err)
		return
	}
	if err := database.DB.
		Where("resource_id = ? AND entity_id = ? AND location_id = ?",
			form.ResourceID, entityID, form.LocationID).
		First(&item).Error; err != nil {
		fail(c, err)
		return
	}

	database.CreateAuditLog(database.DB, entityID, &actorID,
		models.SubjectRef{Type: models.SubjectInventory, ID: item.ID},
		"UPSERT_INVENTORY_ITEM", models.JSONMap{"quantity": item.Quantity})

	c.JSON(http.StatusOK, item)
}
