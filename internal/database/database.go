package database

import (
	"fmt"
	"net"
	"strconv"
	"time"

	"electricity-price/internal/config"
	"electricity-price/internal/models"

	mysqldriver "github.com/go-sql-driver/mysql"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// BuildDSN returns DATABASE_URL when set, otherwise a DSN assembled from
// the MYSQL_* settings.
func BuildDSN(cfg *config.Config) string {
	if cfg.DatabaseURL != "" {
		return cfg.DatabaseURL
	}

	dc := mysqldriver.NewConfig()
	dc.Net = "tcp"
	dc.Addr = net.JoinHostPort(cfg.MySQLHost, strconv.Itoa(cfg.MySQLPort))
	dc.User = cfg.MySQLUser
	dc.Passwd = cfg.MySQLPassword
	dc.DBName = cfg.MySQLDatabase
	dc.ParseTime = true
	dc.Loc = time.Local
	dc.Params = map[string]string{"charset": "utf8mb4"}
	return dc.FormatDSN()
}

// Initialize opens the MySQL connection pool. gorm pings on open, so an
// unreachable server fails here.
func Initialize(cfg *config.Config, logger *zap.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(mysql.Open(BuildDSN(cfg)), &gorm.Config{
		Logger: NewGormLogger(logger),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MySQL database: %w", err)
	}

	if err := configurePool(db, cfg); err != nil {
		return nil, err
	}

	logger.Info("Database initialized successfully",
		zap.String("host", cfg.MySQLHost),
		zap.String("database", cfg.MySQLDatabase),
	)

	if cfg.AutoMigrate {
		if err := Migrate(db); err != nil {
			return nil, err
		}
		logger.Info("Migrated electricity_prices table")
	}
	return db, nil
}

func configurePool(db *gorm.DB, cfg *config.Config) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	return nil
}

// Migrate creates or upgrades the electricity_prices table.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.ElectricityPrice{}); err != nil {
		return fmt.Errorf("failed to migrate electricity_prices: %w", err)
	}
	return nil
}

// Close releases the pool behind db.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// NewGormLogger routes gorm's own logging through zap (and so to stderr).
func NewGormLogger(logger *zap.Logger) gormlogger.Interface {
	return gormlogger.New(
		zap.NewStdLog(logger.Named("gorm")),
		gormlogger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
}
