package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig
	JWT       JWTConfig
	Market    MarketConfig
	Engine    EngineConfig
	Storage   StorageConfig
	Workspace WorkspaceConfig
	CORS      CORSConfig
	Log       LogConfig
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Host string
	Port string
	Env  string
}

// JWTConfig holds JWT token configuration
type JWTConfig struct {
	Secret            string
	AccessTokenExpire time.Duration
}

// MarketConfig holds market data provider configuration
type MarketConfig struct {
	Provider  string
	OKXAPIURL string
	Watchlist []string
}

// EngineConfig holds the sync engine timing configuration
type EngineConfig struct {
	TickInterval      time.Duration
	SaveInterval      time.Duration
	BackupInterval    time.Duration
	KeepAliveInterval time.Duration
	KeepAliveURL      string
}

// StorageConfig holds persistence paths
type StorageConfig struct {
	DataFile    string
	HistoryFile string
	BackupFile  string
}

// WorkspaceConfig holds workspace behavior configuration
type WorkspaceConfig struct {
	InitialBalance float64
	Shared         bool
	SharedID       string
	// AuthBypass lets any credentials log in, creating the workspace on
	// first use. Simulation-only convenience, never for real deployments.
	AuthBypass bool
}

// CORSConfig holds CORS configuration
type CORSConfig struct {
	AllowedOrigins []string
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string
	Format string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Port: getEnv("SERVER_PORT", "8080"),
			Env:  getEnv("SERVER_ENV", "development"),
		},
		JWT: JWTConfig{
			Secret:            getEnv("JWT_SECRET", ""),
			AccessTokenExpire: time.Duration(getEnvAsInt("JWT_ACCESS_TOKEN_EXPIRE_HOURS", 72)) * time.Hour,
		},
		Market: MarketConfig{
			Provider:  getEnv("MARKET_PROVIDER", "okx"),
			OKXAPIURL: getEnv("OKX_API_URL", "https://www.okx.com"),
			Watchlist: getEnvAsSlice("MARKET_WATCHLIST",
				[]string{"BTC-USDT", "ETH-USDT", "SOL-USDT", "BNB-USDT", "XRP-USDT"}, ","),
		},
		Engine: EngineConfig{
			TickInterval:      getEnvAsDuration("ENGINE_TICK_INTERVAL", 5*time.Second),
			SaveInterval:      getEnvAsDuration("ENGINE_SAVE_INTERVAL", time.Minute),
			BackupInterval:    getEnvAsDuration("ENGINE_BACKUP_INTERVAL", 24*time.Hour),
			KeepAliveInterval: getEnvAsDuration("ENGINE_KEEPALIVE_INTERVAL", 10*time.Minute),
			KeepAliveURL:      getEnv("ENGINE_KEEPALIVE_URL", ""),
		},
		Storage: StorageConfig{
			DataFile:    getEnv("STORAGE_DATA_FILE", "bot_storage.json"),
			HistoryFile: getEnv("STORAGE_HISTORY_FILE", "bot_history.json"),
			BackupFile:  getEnv("STORAGE_BACKUP_FILE", "bot_storage_backup.json"),
		},
		Workspace: WorkspaceConfig{
			InitialBalance: getEnvAsFloat("WORKSPACE_INITIAL_BALANCE", 10000.0),
			Shared:         getEnvAsBool("WORKSPACE_SHARED", false),
			SharedID:       getEnv("WORKSPACE_SHARED_ID", "GLOBAL"),
			AuthBypass:     getEnvAsBool("AUTH_BYPASS", false),
		},
		CORS: CORSConfig{
			AllowedOrigins: getEnvAsSlice("CORS_ALLOWED_ORIGINS", []string{"http://localhost:5173"}, ","),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}

	// Validate required fields
	if cfg.JWT.Secret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	if cfg.Engine.TickInterval <= 0 {
		return nil, fmt.Errorf("ENGINE_TICK_INTERVAL must be positive")
	}

	return cfg, nil
}

// Address returns the full server address
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// IsDevelopment returns true if running in development mode
func (c *ServerConfig) IsDevelopment() bool {
	return c.Env == "development"
}

// SharedWorkspaceID returns the shared workspace id, or empty when workspaces
// are isolated per account.
func (c *WorkspaceConfig) SharedWorkspaceID() string {
	if c.Shared {
		return c.SharedID
	}
	return ""
}

// Helper functions

func getEnv(key string, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsSlice(key string, defaultValue []string, separator string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	return strings.Split(valueStr, separator)
}
