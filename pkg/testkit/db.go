// Package testkit holds the helpers shared by the HTTP and service tests:
// an isolated in-memory database per test, request builders and JSON
// assertions backed by testify.
package testkit

import (
	"fmt"
	"io"
	"regexp"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/shashiranjanraj/marketplace/pkg/database"
	"github.com/shashiranjanraj/marketplace/pkg/migration"
)

var unsafeName = regexp.MustCompile(`[^A-Za-z0-9_]+`)

// OpenDB opens a private in-memory SQLite database named after the test and
// applies every registered migration. Import the migrations package for its
// side effects in the calling test file. The handle is closed on cleanup.
func OpenDB(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", unsafeName.ReplaceAllString(t.Name(), "_"))
	db, err := database.Open("sqlite", dsn)
	require.NoError(t, err, "testkit: open database")

	runner := migration.New(db)
	runner.Out = io.Discard
	require.NoError(t, runner.Run(), "testkit: migrate")

	t.Cleanup(func() { _ = database.Close(db) })
	return db
}
