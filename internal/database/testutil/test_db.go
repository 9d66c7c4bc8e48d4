// Package testutil opens throwaway databases for package tests.
package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/charlesng35/fleetcn/internal/database"
)

type schemaLevel int

const (
	emptySchema schemaLevel = iota
	migratedSchema
	seededSchema
)

// TestDBOption selects how much schema and data MustOpenTestDB prepares.
type TestDBOption func(*schemaLevel)

// WithAutoMigrate creates every table but inserts nothing.
func WithAutoMigrate() TestDBOption {
	return func(level *schemaLevel) { *level = max(*level, migratedSchema) }
}

// WithSeedData also seeds the menu registry and the Administrator and Operator roles.
func WithSeedData() TestDBOption {
	return func(level *schemaLevel) { *level = seededSchema }
}

// MustOpenTestDB opens a private in-memory SQLite database that is closed when the test ends.
func MustOpenTestDB(t *testing.T, opts ...TestDBOption) *gorm.DB {
	t.Helper()

	level := emptySchema
	for _, opt := range opts {
		opt(&level)
	}

	db, err := database.Open(database.Config{Driver: "sqlite"})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	switch level {
	case seededSchema:
		require.NoError(t, database.AutoMigrateAndSeed(db))
	case migratedSchema:
		require.NoError(t, database.AutoMigrate(db))
	}
	return db
}
