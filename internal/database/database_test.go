package database

import (
	"path/filepath"
	"testing"

	"electricity-price/internal/config"
	"electricity-price/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestBuildDSN(t *testing.T) {
	cfg := &config.Config{
		MySQLHost:     "db.local",
		MySQLPort:     3307,
		MySQLUser:     "reader",
		MySQLPassword: "secret",
		MySQLDatabase: "electricity",
	}
	dsn := BuildDSN(cfg)
	assert.Contains(t, dsn, "reader:secret@tcp(db.local:3307)/electricity")
	assert.Contains(t, dsn, "parseTime=true")
	assert.Contains(t, dsn, "charset=utf8mb4")

	cfg.DatabaseURL = "u:p@tcp(h:1)/d"
	assert.Equal(t, "u:p@tcp(h:1)/d", BuildDSN(cfg))
}

func TestMigrateAndClose(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "prices.db")), &gorm.Config{Logger: NewGormLogger(zap.NewNop())})
	require.NoError(t, err)

	require.NoError(t, Migrate(db))
	assert.True(t, db.Migrator().HasTable(&models.ElectricityPrice{}))
	assert.True(t, db.Migrator().HasColumn(&models.ElectricityPrice{}, "deep_valley_price"))
	assert.True(t, db.Migrator().HasIndex(&models.ElectricityPrice{}, "idx_region_date"))

	require.NoError(t, Close(db))
}

func TestInitializeUnreachable(t *testing.T) {
	cfg := &config.Config{DatabaseURL: "root:@tcp(127.0.0.1:1)/electricity?timeout=200ms"}
	_, err := Initialize(cfg, zap.NewNop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to connect to MySQL database")
}
