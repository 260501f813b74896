package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Storage backends
const (
	StorageGorm   = "gorm"
	StorageMemory = "memory"
)

// Database drivers
const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
)

// Config holds all configuration for the application
type Config struct {
	AppMode    string
	Port       string
	Storage    string
	Database   DatabaseConfig
	Redis      RedisConfig
	JWT        JWTConfig
	Cookie     CookieConfig
	StockWatch StockWatchConfig
	Line       LineConfig
	Admin      AdminConfig
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Driver   string
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
}

// RedisConfig holds the stats cache settings. An empty Addr disables the cache.
type RedisConfig struct {
	Addr            string
	Password        string
	DB              int
	StatsTTLSeconds int
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret           string
	RefreshSecret    string
	AccessTokenMins  int
	RefreshTokenDays int
}

// CookieConfig holds cookie configuration
type CookieConfig struct {
	Secure   bool
	SameSite string
	Domain   string
}

// StockWatchConfig holds the daily stock check schedule. An empty Cron disables it.
type StockWatchConfig struct {
	Cron string
}

// LineConfig holds LINE Notify settings. An empty Token disables notifications.
type LineConfig struct {
	Token   string
	BaseURL string
}

// AdminConfig is the bootstrap admin account created on first start
type AdminConfig struct {
	Email    string
	Password string
	Name     string
}

// Global config instance
var AppConfig *Config

// Load reads configuration from .env file and environment variables
func Load() (*Config, error) {
	// Load .env file (ignore error if file doesn't exist in production)
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using environment variables")
	}

	config, err := FromEnv()
	if err != nil {
		return nil, err
	}

	// Set global config
	AppConfig = config

	log.Printf("✅ Configuration loaded successfully [MODE: %s, STORAGE: %s]", config.AppMode, config.Storage)
	return config, nil
}

// FromEnv builds the config from the current environment only
func FromEnv() (*Config, error) {
	// Get APP_MODE (default to "dev") - trim spaces for Windows compatibility
	appMode := strings.TrimSpace(getEnv("APP_MODE", "dev"))
	if appMode != "dev" && appMode != "prod" {
		return nil, fmt.Errorf("invalid APP_MODE: '%s' (must be 'dev' or 'prod')", appMode)
	}

	storage := strings.ToLower(strings.TrimSpace(getEnv("STORAGE", StorageGorm)))
	if storage != StorageGorm && storage != StorageMemory {
		return nil, fmt.Errorf("invalid STORAGE: '%s' (must be 'gorm' or 'memory')", storage)
	}

	database := loadDatabaseConfig(appMode)
	if database.Driver != DriverMySQL && database.Driver != DriverPostgres {
		return nil, fmt.Errorf("invalid DB_DRIVER: '%s' (must be 'mysql' or 'postgres')", database.Driver)
	}

	return &Config{
		AppMode:    appMode,
		Port:       getEnv("PORT", "3000"),
		Storage:    storage,
		Database:   database,
		Redis:      loadRedisConfig(),
		JWT:        loadJWTConfig(appMode),
		Cookie:     loadCookieConfig(appMode),
		StockWatch: StockWatchConfig{Cron: os.Getenv("STOCK_WATCH_CRON")},
		Line: LineConfig{
			Token:   os.Getenv("LINE_NOTIFY_TOKEN"),
			BaseURL: getEnv("LINE_NOTIFY_URL", "https://notify-api.line.me"),
		},
		Admin: AdminConfig{
			Email:    getEnv("ADMIN_EMAIL", "admin@bloodbank.local"),
			Password: getEnv("ADMIN_PASSWORD", "admin123456"),
			Name:     getEnv("ADMIN_NAME", "Administrator"),
		},
	}, nil
}

// loadDatabaseConfig loads database config based on mode
func loadDatabaseConfig(mode string) DatabaseConfig {
	prefix := "DEV_"
	if mode == "prod" {
		prefix = "PROD_"
	}

	driver := strings.ToLower(strings.TrimSpace(getEnv("DB_DRIVER", DriverMySQL)))
	defaultPort := "3306"
	if driver == DriverPostgres {
		defaultPort = "5432"
	}

	return DatabaseConfig{
		Driver:   driver,
		Host:     getEnv(prefix+"DB_HOST", "localhost"),
		Port:     getEnv(prefix+"DB_PORT", defaultPort),
		User:     getEnv(prefix+"DB_USER", "root"),
		Password: getEnv(prefix+"DB_PASS", ""),
		DBName:   getEnv(prefix+"DB_NAME", "bloodbank"),
	}
}

// loadRedisConfig loads the stats cache config
func loadRedisConfig() RedisConfig {
	db, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))
	ttl, _ := strconv.Atoi(getEnv("STATS_CACHE_SECONDS", "30"))

	return RedisConfig{
		Addr:            os.Getenv("REDIS_ADDR"),
		Password:        os.Getenv("REDIS_PASSWORD"),
		DB:              db,
		StatsTTLSeconds: ttl,
	}
}

// loadJWTConfig loads JWT config based on mode
func loadJWTConfig(mode string) JWTConfig {
	prefix := "DEV_"
	if mode == "prod" {
		prefix = "PROD_"
	}

	accessMins, _ := strconv.Atoi(getEnv("ACCESS_TOKEN_MINUTES", "15"))
	refreshDays, _ := strconv.Atoi(getEnv("REFRESH_TOKEN_DAYS", "7"))

	return JWTConfig{
		Secret:           getEnv(prefix+"JWT_SECRET", "default_secret"),
		RefreshSecret:    getEnv(prefix+"JWT_REFRESH_SECRET", "default_refresh_secret"),
		AccessTokenMins:  accessMins,
		RefreshTokenDays: refreshDays,
	}
}

// loadCookieConfig loads cookie config based on mode
func loadCookieConfig(mode string) CookieConfig {
	prefix := "DEV_"
	if mode == "prod" {
		prefix = "PROD_"
	}

	secure, _ := strconv.ParseBool(getEnv(prefix+"COOKIE_SECURE", "false"))

	return CookieConfig{
		Secure:   secure,
		SameSite: getEnv("COOKIE_SAMESITE", "lax"),
		Domain:   getEnv("COOKIE_DOMAIN", ""),
	}
}

// getEnv gets environment variable with default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// IsDev returns true if running in development mode
func (c *Config) IsDev() bool {
	return c.AppMode == "dev"
}

// IsProd returns true if running in production mode
func (c *Config) IsProd() bool {
	return c.AppMode == "prod"
}

// UsesMemory reports whether the in-process store is selected
func (c *Config) UsesMemory() bool {
	return c.Storage == StorageMemory
}

// GetAllowedOrigins returns allowed origins for CORS
func (c *Config) GetAllowedOrigins() string {
	origins := getEnv("ALLOWED_ORIGINS", "")
	if origins == "" {
		if c.IsDev() {
			return "*"
		}
		return "http://localhost:8080"
	}
	return origins
}
