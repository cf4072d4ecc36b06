package migration_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/shashiranjanraj/marketplace/pkg/database"
	"github.com/shashiranjanraj/marketplace/pkg/migration"
)

type widget struct {
	ID   uint `gorm:"primaryKey"`
	Name string
}

type createWidgets struct{}

func (createWidgets) Up(db *gorm.DB) error   { return db.AutoMigrate(&widget{}) }
func (createWidgets) Down(db *gorm.DB) error { return db.Migrator().DropTable(&widget{}) }

func init() {
	migration.Register("19990101000000_create_widgets_table", createWidgets{})
}

func TestRunRollbackStatus(t *testing.T) {
	db, err := database.Open("sqlite", "file:migration_runner_test?mode=memory&cache=shared")
	require.NoError(t, err)
	defer database.Close(db)

	var out bytes.Buffer
	r := migration.New(db)
	r.Out = &out

	require.NoError(t, r.Run())
	assert.True(t, db.Migrator().HasTable(&widget{}))
	assert.Contains(t, out.String(), "Migrated:  19990101000000_create_widgets_table")

	out.Reset()
	require.NoError(t, r.Run())
	assert.Contains(t, out.String(), "Nothing to migrate.")

	out.Reset()
	require.NoError(t, r.Status())
	assert.Contains(t, out.String(), "Ran")

	require.NoError(t, r.Rollback())
	assert.False(t, db.Migrator().HasTable(&widget{}))

	out.Reset()
	require.NoError(t, r.Rollback())
	assert.Contains(t, out.String(), "Nothing to roll back.")
}

func TestNamesAreSorted(t *testing.T) {
	names := migration.Names()
	require.NotEmpty(t, names)
	for i := 1; i < len(names); i++ {
		assert.Less(t, names[i-1], names[i])
	}
}
