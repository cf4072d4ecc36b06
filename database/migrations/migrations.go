// Package migrations contains all database migration files.
// Each migration file uses init() to call migration.Register().
// The CLI and the test helpers import this package for its side effects.
package migrations
