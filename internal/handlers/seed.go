package handlers

import (
	"log"
	"net/http"

	"mealhub/internal/database"
	"mealhub/internal/models"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm/clause"
)

const demoPassword = "Demo123!"

// SeedDemo разворачивает фиксированное демо-домохозяйство: двух акторов
// (админ + участник), дерево мест, ресурсы и стартовый инвентарь.
// Повторный вызов ничего не дублирует.
func SeedDemo(c *gin.Context) {
	db := database.DB

	alice := seedActor("alice@mealhub.local", "Alice")
	bob := seedActor("bob@mealhub.local", "Bob")
	if alice == nil || bob == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to seed demo actors"})
		return
	}

	var entity models.Entity
	if err := db.Where("name = ?", "Demo Household").First(&entity).Error; err != nil {
		entity = models.Entity{Name: "Demo Household"}
		if err := db.Create(&entity).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to seed demo entity"})
			return
		}
	}

	seedMembership(entity.ID, alice.ID, models.RoleAdmin)
	seedMembership(entity.ID, bob.ID, models.RoleMember)

	kitchen := seedLocation(entity.ID, "Kitchen", nil)
	fridge := seedLocation(entity.ID, "Fridge", &kitchen.ID)
	pantry := seedLocation(entity.ID, "Pantry", &kitchen.ID)

	beef := seedResource(entity.ID, "Ground beef", "g")
	milk := seedResource(entity.ID, "Milk", "l")
	pasta := seedResource(entity.ID, "Pasta", "g")

	seedInventory(entity.ID, beef.ID, fridge.ID, 500)
	seedInventory(entity.ID, milk.ID, fridge.ID, 2)
	seedInventory(entity.ID, pasta.ID, pantry.ID, 1000)

	c.JSON(http.StatusOK, gin.H{
		"entity": entity,
		"actors": gin.H{
			"admin":  gin.H{"email": alice.Email, "password": demoPassword},
			"member": gin.H{"email": bob.Email, "password": demoPassword},
		},
	})
}

func seedActor(email, name string) *models.Actor {
	var actor models.Actor
	if err := database.DB.Where("email = ?", email).First(&actor).Error; err == nil {
		return &actor
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(demoPassword), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("failed to hash demo password: %v", err)
		return nil
	}
	actor = models.Actor{Email: email, Name: name, PasswordHash: string(hash)}
	if err := database.DB.Create(&actor).Error; err != nil {
		log.Printf("failed to seed actor %s: %v", email, err)
		return nil
	}
	log.Printf("created demo actor: %s (password=%s)", email, demoPassword)
	return &actor
}

func seedMembership(entityID, actorID uint, role models.EntityRole) {
	ea := models.EntityActor{EntityID: entityID, ActorID: actorID, Role: role}
	err := database.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "entity_id"}, {Name: "actor_id"}},
		DoNothing: true,
	}).Create(&ea).Error
	if err != nil {
		log.Printf("failed to seed membership (%d, %d): %v", entityID, actorID, err)
	}
}

func seedLocation(entityID uint, name string, parentID *uint) *models.Location {
	var loc models.Location
	if err := database.DB.Where("entity_id = ? AND name = ?", entityID, name).First(&loc).Error; err == nil {
		return &loc
	}
	loc = models.Location{EntityID: entityID, ParentID: parentID, Name: name}
	if err := database.DB.Create(&loc).Error; err != nil {
		log.Printf("failed to seed location %s: %v", name, err)
	}
	return &loc
}

func seedResource(entityID uint, name, unit string) *models.Resource {
	var res models.Resource
	if err := database.DB.Where("entity_id = ? AND name = ?", entityID, name).First(&res).Error; err == nil {
		return &res
	}
	res = models.Resource{EntityID: entityID, Name: name, Unit: unit}
	if err := database.DB.Create(&res).Error; err != nil {
		log.Printf("failed to seed resource %s: %v", name, err)
	}
	return &res
}

func seedInventory(entityID, resourceID, locationID uint, quantity float64) {
	item := models.InventoryItem{
		ResourceID: resourceID,
		EntityID:   entityID,
		LocationID: locationID,
		Quantity:   quantity,
	}
	err := database.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "resource_id"}, {Name: "entity_id"}, {Name: "location_id"}},
		DoNothing: true,
	}).Create(&item).Error
	if err != nil {
		log.Printf("failed to seed inventory item (%d @ %d): %v", resourceID, locationID, err)
	}
}
