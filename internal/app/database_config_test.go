package app

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/charlesng35/fleetcn/internal/models"
)

func TestDatabaseConnectionNormalisesDriver(t *testing.T) {
	cfg := DatabaseConfig{
		Driver: " PostgreSQL ",
		Postgres: DBAuthConfig{
			Host:     " db.internal ",
			Port:     5433,
			Database: "fleet",
			Username: "fleet",
			Password: "secret",
		},
	}

	conn := cfg.Connection()
	require.Equal(t, "postgres", conn.Driver)
	require.Equal(t, "db.internal", conn.Host)
	require.Equal(t, 5433, conn.Port)
	require.Equal(t, "fleet", conn.Name)

	require.Equal(t, "sqlite", DatabaseConfig{}.Connection().Driver)
	require.Equal(t, "oracle", DatabaseConfig{Driver: "Oracle"}.Connection().Driver)
}

func TestOpenDatabaseMigrates(t *testing.T) {
	cfg := &Config{Database: DatabaseConfig{Driver: "sqlite"}}

	db, err := OpenDatabase(cfg, true)
	require.NoError(t, err)
	t.Cleanup(func() { CloseDatabase(db) })

	var roles int64
	require.NoError(t, db.Model(&models.Role{}).Count(&roles).Error)
	require.EqualValues(t, 2, roles)
}

func TestOpenDatabaseRejectsUnknownDriver(t *testing.T) {
	_, err := OpenDatabase(&Config{Database: DatabaseConfig{Driver: "oracle"}}, false)
	require.Error(t, err)
}
