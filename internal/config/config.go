package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	// 完整DSN，设置后忽略下面的 MySQL* 字段
	DatabaseURL string

	MySQLHost     string
	MySQLPort     int
	MySQLUser     string
	MySQLPassword string
	MySQLDatabase string

	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
	AutoMigrate     bool

	// 地区别名表（YAML），为空时使用内置表
	AliasFile string

	Port        string
	Environment string
	LogLevel    string

	RateLimitRPS   float64
	RateLimitBurst int

	// 数值型环境变量解析失败时记录，由调用方输出告警
	Warnings []string
}

func Load() *Config {
	cfg := &Config{
		DatabaseURL:   getEnv("DATABASE_URL", ""),
		MySQLHost:     getEnv("MYSQL_HOST", "localhost"),
		MySQLUser:     getEnv("MYSQL_USER", "root"),
		MySQLPassword: getEnv("MYSQL_PASSWORD", ""),
		MySQLDatabase: getEnv("MYSQL_DATABASE", "electricity"),
		AutoMigrate:   getEnv("DB_AUTO_MIGRATE", "false") == "true",
		AliasFile:     getEnv("ALIAS_FILE", ""),
		Port:          getEnv("PORT", "8080"),
		Environment:   getEnv("ENVIRONMENT", "development"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
	}

	cfg.MySQLPort = cfg.getInt("MYSQL_PORT", 3306)
	cfg.MaxIdleConns = cfg.getInt("DB_MAX_IDLE_CONNS", 10)
	cfg.MaxOpenConns = cfg.getInt("DB_MAX_OPEN_CONNS", 100)
	cfg.ConnMaxLifetime = cfg.getDuration("DB_CONN_MAX_LIFETIME", time.Hour)
	cfg.RateLimitRPS = cfg.getFloat("RATE_LIMIT_RPS", 20)
	cfg.RateLimitBurst = cfg.getInt("RATE_LIMIT_BURST", 40)

	return cfg
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func (c *Config) getInt(key string, defaultValue int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		c.Warnings = append(c.Warnings, key+"="+raw+" is not a valid non-negative integer, using default")
		return defaultValue
	}
	return v
}

func (c *Config) getFloat(key string, defaultValue float64) float64 {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v <= 0 {
		c.Warnings = append(c.Warnings, key+"="+raw+" is not a valid positive number, using default")
		return defaultValue
	}
	return v
}

func (c *Config) getDuration(key string, defaultValue time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	v, err := time.ParseDuration(raw)
	if err != nil || v <= 0 {
		c.Warnings = append(c.Warnings, key+"="+raw+" is not a valid duration, using default")
		return defaultValue
	}
	return v
}
