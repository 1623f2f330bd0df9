package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/ini.v1"
)

// Database source kinds, in resolution priority order.
const (
	SourceDSN        = "dsn"
	SourceCredential = "credential"
	SourceConnString = "conn_string"
)

// Config holds all configuration
type Config struct {
	DB       DBConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Lockout  LockoutConfig
	Migrate  bool
	HTTPAddr string
	Currency string
	Uploads  string
}

// DBConfig holds the resolved database connection parameters
type DBConfig struct {
	DSN    string // resolved MySQL DSN, ready for the driver
	Source string // which source the DSN came from
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret        string
	ExpireMinutes int
	Issuer        string
}

// LockoutConfig holds login lockout configuration
type LockoutConfig struct {
	MaxAttempts int
	WindowSec   int
	LockoutSec  int
}

// Load loads configuration from environment variables and, for database
// credentials, an optional credential.ini descriptor.
func Load() (*Config, error) {
	// Load .env file if exists (ignore error if not found)
	_ = godotenv.Load()

	dbCfg, err := resolveDB()
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		DB: dbCfg,
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASS", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		JWT: JWTConfig{
			Secret:        os.Getenv("JWT_SECRET"),
			ExpireMinutes: getEnvInt("JWT_EXPIRE_MINUTES", 1440),
			Issuer:        getEnv("JWT_ISSUER", "go_auction"),
		},
		Lockout: LockoutConfig{
			MaxAttempts: getEnvInt("LOGIN_MAX_ATTEMPTS", 5),
			WindowSec:   getEnvInt("LOGIN_ATTEMPT_WINDOW_SEC", 300),
			LockoutSec:  getEnvInt("LOGIN_LOCKOUT_SEC", 900),
		},
		Migrate:  getEnv("MIGRATE", "0") == "1",
		HTTPAddr: getEnv("HTTP_ADDR", ":8080"),
		Currency: getEnv("CURRENCY_SYMBOL", "HK$"),
		Uploads:  getEnv("UPLOADS_DIR", "static/uploads"),
	}

	if cfg.JWT.Secret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	return cfg, nil
}

// resolveDB resolves database connection parameters in priority order:
//  1. MYSQL_DSN environment variable (named data source)
//  2. credential.ini descriptor file, always preferred over a raw
//     connection string; a broken descriptor propagates as an error and
//     never silently falls back to DB_CONN
//  3. DB_CONN raw connection string
func resolveDB() (DBConfig, error) {
	if dsn := os.Getenv("MYSQL_DSN"); dsn != "" {
		return DBConfig{DSN: withParseTime(dsn), Source: SourceDSN}, nil
	}

	credPath := getEnv("CREDENTIAL_FILE", "credential.ini")
	if _, err := os.Stat(credPath); err == nil {
		dsn, err := loadCredentialFile(credPath)
		if err != nil {
			return DBConfig{}, fmt.Errorf("credential descriptor %s is present but unusable: %w", credPath, err)
		}
		return DBConfig{DSN: dsn, Source: SourceCredential}, nil
	}

	if conn := os.Getenv("DB_CONN"); conn != "" {
		return DBConfig{DSN: withParseTime(conn), Source: SourceConnString}, nil
	}

	return DBConfig{}, fmt.Errorf("no database source configured: set MYSQL_DSN, provide %s, or set DB_CONN", credPath)
}

// loadCredentialFile builds a MySQL DSN from an INI credential descriptor:
//
//	[database]
//	server   = db.example.com:3306
//	database = auction
//	username = app
//	password = secret
func loadCredentialFile(path string) (string, error) {
	f, err := ini.Load(path)
	if err != nil {
		return "", fmt.Errorf("failed to load credential file: %w", err)
	}

	sec := f.Section("database")
	server := sec.Key("server").String()
	database := sec.Key("database").String()
	username := sec.Key("username").String()
	password := sec.Key("password").String()

	if server == "" || database == "" || username == "" {
		return "", fmt.Errorf("credential file must set server, database and username")
	}
	if !strings.Contains(server, ":") {
		server += ":3306"
	}

	dsn := fmt.Sprintf("%s:%s@tcp(%s)/%s", username, password, server, database)
	return withParseTime(dsn), nil
}

// withParseTime ensures the driver returns DATETIME columns as time.Time;
// row normalization depends on it.
func withParseTime(dsn string) string {
	if strings.Contains(dsn, "parseTime") {
		return dsn
	}
	if strings.Contains(dsn, "?") {
		return dsn + "&parseTime=true&loc=UTC"
	}
	return dsn + "?parseTime=true&loc=UTC"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
