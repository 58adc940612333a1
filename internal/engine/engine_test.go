package engine

import (
	"testing"

	"mealhub/internal/database"
	"mealhub/internal/models"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	database.SeedLenses(db)
	return db
}

// fixture — домохозяйство с админом, участником и первой парой ресурс/место
type fixture struct {
	db       *gorm.DB
	entity   models.Entity
	admin    models.Actor
	member   models.Actor
	resource models.Resource
	location models.Location
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := setupTestDB(t)

	f := &fixture{db: db}

	f.entity = models.Entity{Name: "Test Household"}
	require.NoError(t, db.Create(&f.entity).Error)

	f.admin = models.Actor{Email: "admin@test.local", Name: "Admin", PasswordHash: "x"}
	require.NoError(t, db.Create(&f.admin).Error)
	f.member = models.Actor{Email: "member@test.local", Name: "Member", PasswordHash: "x"}
	require.NoError(t, db.Create(&f.member).Error)

	require.NoError(t, db.Create(&models.EntityActor{
		EntityID: f.entity.ID, ActorID: f.admin.ID, Role: models.RoleAdmin,
	}).Error)
	require.NoError(t, db.Create(&models.EntityActor{
		EntityID: f.entity.ID, ActorID: f.member.ID, Role: models.RoleMember,
	}).Error)

	f.location = models.Location{EntityID: f.entity.ID, Name: "Fridge"}
	require.NoError(t, db.Create(&f.location).Error)
	f.resource = models.Resource{EntityID: f.entity.ID, Name: "Ground beef", Unit: "g"}
	require.NoError(t, db.Create(&f.resource).Error)

	return f
}

func (f *fixture) proposeDiff(t *testing.T, items ...models.InventoryDiffItem) *models.ChangeSet {
	t.Helper()
	cs, _, err := Propose(f.db, f.entity.ID, f.admin.ID, ProposeInput{
		Type:    models.ChangeSetInventoryDiff,
		Payload: models.ChangeSetPayload{Items: items},
	})
	require.NoError(t, err)
	return cs
}

func (f *fixture) countTasks(t *testing.T, taskType string) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(&models.Task{}).
		Where("entity_id = ? AND type = ?", f.entity.ID, taskType).
		Count(&n).Error)
	return n
}

func (f *fixture) countAudit(t *testing.T, action string) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(&models.AuditLog{}).
		Where("entity_id = ? AND action = ?", f.entity.ID, action).
		Count(&n).Error)
	return n
}
