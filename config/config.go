package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Dataset sources.
const (
	SourceCSV      = "csv"
	SourceXLSX     = "xlsx"
	SourcePostgres = "postgres"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	DatasetPath   string `validate:"required_unless=DatasetSource postgres"`
	DatasetSource string `validate:"oneof=csv xlsx postgres"`

	HTTPAddr string `validate:"required"`
	LogLevel string `validate:"oneof=debug info warn error"`

	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string

	MaxRetries   int     `validate:"min=1"`
	WSRatePerSec float64 `validate:"gt=0"`
	WSBurst      int     `validate:"min=1"`

	ExportDir      string `validate:"required"`
	SnapshotURL    string `validate:"omitempty,url"`
	SnapshotPath   string
	SnapshotWidth  int `validate:"min=320"`
	SnapshotHeight int `validate:"min=240"`
	ChromeBin      string
}

// Load reads the .env file and returns a populated Config struct.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, falling back to system env vars")
	}

	path := getEnv("DATASET_PATH", "./data/KaggleV2-May-2016.csv")
	return &Config{
		DatasetPath:   path,
		DatasetSource: getEnv("DATASET_SOURCE", sourceFromPath(path)),

		HTTPAddr: getEnv("HTTP_ADDR", ":8050"),
		LogLevel: strings.ToLower(getEnv("LOG_LEVEL", "info")),

		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnv("POSTGRES_USER", "dashboard"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "dashboard"),
		PostgresDB:       getEnv("POSTGRES_DB", "appointments"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),

		MaxRetries:   getEnvInt("MAX_RETRIES", 3),
		WSRatePerSec: getEnvFloat("WS_RATE_PER_SEC", 20),
		WSBurst:      getEnvInt("WS_BURST", 5),

		ExportDir:      getEnv("EXPORT_DIR", "./output"),
		SnapshotURL:    getEnv("SNAPSHOT_URL", "http://localhost:8050/"),
		SnapshotPath:   getEnv("SNAPSHOT_PATH", "./output/dashboard.png"),
		SnapshotWidth:  getEnvInt("SNAPSHOT_WIDTH", 1400),
		SnapshotHeight: getEnvInt("SNAPSHOT_HEIGHT", 2200),
		ChromeBin:      getEnv("CHROME_BIN", ""),
	}
}

// Validate checks the configuration against its field constraints.
func (c *Config) Validate() error {
	v := validator.New()
	if err := v.Struct(c); err != nil {
		var msgs []string
		if verrs, ok := err.(validator.ValidationErrors); ok {
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q (value %v)", fe.Field(), fe.Tag(), fe.Value()))
			}
			return fmt.Errorf("config: invalid: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("config: validate: %w", err)
	}
	return nil
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return "host=" + c.PostgresHost +
		" port=" + c.PostgresPort +
		" user=" + c.PostgresUser +
		" password=" + c.PostgresPassword +
		" dbname=" + c.PostgresDB +
		" sslmode=" + c.PostgresSSLMode
}

func sourceFromPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		return SourceXLSX
	default:
		return SourceCSV
	}
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		n, err := strconv.Atoi(val)
		if err == nil {
			return n
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if val := os.Getenv(key); val != "" {
		f, err := strconv.ParseFloat(val, 64)
		if err == nil {
			return f
		}
	}
	return fallback
}
