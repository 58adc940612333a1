package database

import (
	"log"
	"time"

	"mealhub/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var DB *gorm.DB

func Init(dsn string) {
	var err error

	const maxAttempts = 10
	for i := 1; i <= maxAttempts; i++ {
		log.Printf("trying to connect to DB (attempt %d/%d)...", i, maxAttempts)

		DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
		if err == nil {
			log.Println("connected to DB successfully")
			break
		}

		log.Printf("failed to connect to DB: %v", err)
		time.Sleep(2 * time.Second)
	}

	if err != nil {
		log.Fatalf("failed to connect to db after %d attempts: %v", maxAttempts, err)
	}

	if err := Migrate(DB); err != nil {
		log.Fatalf("failed to migrate: %v", err)
	}

	// глобальные линзы-синглтоны
	SeedLenses(DB)
}

// Migrate вынесен отдельно, чтобы тесты гоняли ту же схему на sqlite
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Actor{},
		&models.Entity{},
		&models.EntityActor{},
		&models.Location{},
		&models.Resource{},
		&models.InventoryItem{},
		&models.Goal{},
		&models.Task{},
		&models.TaskActor{},
		&models.Planning{},
		&models.Sensor{},
		&models.Track{},
		&models.Lens{},
		&models.LensRun{},
		&models.ChangeSet{},
		&models.Question{},
		&models.Answer{},
		&models.AuditLog{},
	)
}

// SeedLenses заводит дефолтные линзы; вставка по типу, повторный вызов — no-op
func SeedLenses(db *gorm.DB) {
	lenses := []models.Lens{
		{Type: models.LensInventory, Name: "Pantry inventory extraction"},
		{Type: models.LensMealPlan, Name: "Weekly meal plan"},
	}

	for _, l := range lenses {
		err := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "type"}},
			DoNothing: true,
		}).Create(&l).Error
		if err != nil {
			log.Printf("failed to seed lens %s: %v", l.Type, err)
		}
	}
}
