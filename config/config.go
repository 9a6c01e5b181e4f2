package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DocumentStoreFirestore = "firestore"
	DocumentStorePostgres  = "postgres"

	ImageStoreFirebase = "firebase"
	ImageStoreS3       = "s3"
)

type Config struct {
	Server      ServerConfig
	App         AppConfig
	Firebase    FirebaseConfig
	Storage     StorageConfig
	Database    DatabaseConfig
	Redis       RedisConfig
	Admin       AdminConfig
	Drafts      DraftsConfig
	Maintenance MaintenanceConfig
}

type ServerConfig struct {
	Port           string
	AllowedOrigins []string
	// Requests per second allowed per client IP on public write endpoints.
	PublicRateLimit float64
	PublicRateBurst int
}

type AppConfig struct {
	Environment string
	LogLevel    string
	Version     string
	ServiceName string
	// IANA zone used to show and parse dates in the admin area.
	TimeZone string
}

type FirebaseConfig struct {
	CredentialsPath string
	ProjectID       string
	StorageBucket   string
}

type StorageConfig struct {
	DocumentStore string
	ImageStore    string

	// S3 / MinIO compatible image store.
	S3Bucket        string
	S3Region        string
	S3Endpoint      string
	S3PublicBaseURL string

	// 1 keeps uploads strictly sequential.
	MaxParallelUploads int
	// Zero disables the public listing cache.
	PortfolioCacheTTL time.Duration
}

type DatabaseConfig struct {
	DSN      string
	MaxConns int
	MinConns int
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type AdminConfig struct {
	Username       string
	Password       string
	SessionTTL     time.Duration
	IdempotencyTTL time.Duration
}

type DraftsConfig struct {
	// "flow" posts {imageDataUri, constructionData} to FlowURL,
	// "gemini" calls the Generative Language API.
	Backend string
	FlowURL string
	APIKey  string
	Model   string
	Timeout time.Duration
}

type MaintenanceConfig struct {
	OrphanSweepSchedule string
	OrphanGracePeriod   time.Duration
}

func Load() (*Config, error) {
	// Load .env file if it exists (ignore error in production)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:            getEnv("PORT", "8080"),
			AllowedOrigins:  getEnvAsList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
			PublicRateLimit: getEnvAsFloat("PUBLIC_RATE_LIMIT", 0.2),
			PublicRateBurst: getEnvAsInt("PUBLIC_RATE_BURST", 5),
		},
		App: AppConfig{
			Environment: getEnv("APP_ENV", "development"),
			LogLevel:    getEnv("LOG_LEVEL", "info"),
			Version:     getEnv("APP_VERSION", "1.0.0"),
			ServiceName: getEnv("SERVICE_NAME", "dreamspace-site-backend"),
			TimeZone:    getEnv("DISPLAY_TIMEZONE", "UTC"),
		},
		Firebase: FirebaseConfig{
			CredentialsPath: getEnv("FIREBASE_CREDENTIALS_PATH", ""),
			ProjectID:       getEnv("FIREBASE_PROJECT_ID", ""),
			StorageBucket:   getEnv("FIREBASE_STORAGE_BUCKET", ""),
		},
		Storage: StorageConfig{
			DocumentStore:      strings.ToLower(getEnv("DOCUMENT_STORE", DocumentStoreFirestore)),
			ImageStore:         strings.ToLower(getEnv("IMAGE_STORE", ImageStoreFirebase)),
			S3Bucket:           getEnv("S3_BUCKET", ""),
			S3Region:           getEnv("S3_REGION", "us-east-1"),
			S3Endpoint:         getEnv("S3_ENDPOINT", ""),
			S3PublicBaseURL:    getEnv("S3_PUBLIC_BASE_URL", ""),
			MaxParallelUploads: getEnvAsInt("MAX_PARALLEL_UPLOADS", 1),
			PortfolioCacheTTL:  getEnvAsDuration("PORTFOLIO_CACHE_TTL", time.Minute),
		},
		Database: DatabaseConfig{
			DSN:      getEnv("DB_DSN", ""),
			MaxConns: getEnvAsInt("DB_MAX_CONNS", 10),
			MinConns: getEnvAsInt("DB_MIN_CONNS", 2),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Admin: AdminConfig{
			Username:       getEnv("ADMIN_USERNAME", ""),
			Password:       getEnv("ADMIN_PASSWORD", ""),
			SessionTTL:     getEnvAsDuration("ADMIN_SESSION_TTL", 8*time.Hour),
			IdempotencyTTL: getEnvAsDuration("IDEMPOTENCY_TTL", 10*time.Minute),
		},
		Drafts: DraftsConfig{
			Backend: strings.ToLower(getEnv("DRAFTS_BACKEND", "gemini")),
			FlowURL: getEnv("DRAFTS_FLOW_URL", ""),
			APIKey:  getEnv("GEMINI_API_KEY", ""),
			Model:   getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
			Timeout: getEnvAsDuration("DRAFTS_TIMEOUT", 60*time.Second),
		},
		Maintenance: MaintenanceConfig{
			OrphanSweepSchedule: getEnv("ORPHAN_SWEEP_SCHEDULE", ""),
			OrphanGracePeriod:   getEnvAsDuration("ORPHAN_GRACE_PERIOD", 24*time.Hour),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}

	switch c.Storage.DocumentStore {
	case DocumentStoreFirestore:
	case DocumentStorePostgres:
		if c.Database.DSN == "" {
			return fmt.Errorf("DB_DSN is required when DOCUMENT_STORE=postgres")
		}
	default:
		return fmt.Errorf("unknown DOCUMENT_STORE %q", c.Storage.DocumentStore)
	}

	switch c.Storage.ImageStore {
	case ImageStoreFirebase:
		if c.Firebase.StorageBucket == "" {
			return fmt.Errorf("FIREBASE_STORAGE_BUCKET is required when IMAGE_STORE=firebase")
		}
	case ImageStoreS3:
		if c.Storage.S3Bucket == "" {
			return fmt.Errorf("S3_BUCKET is required when IMAGE_STORE=s3")
		}
	default:
		return fmt.Errorf("unknown IMAGE_STORE %q", c.Storage.ImageStore)
	}

	if c.Storage.MaxParallelUploads < 1 {
		return fmt.Errorf("MAX_PARALLEL_UPLOADS must be at least 1")
	}

	if _, err := time.LoadLocation(c.App.TimeZone); err != nil {
		return fmt.Errorf("invalid DISPLAY_TIMEZONE %q: %w", c.App.TimeZone, err)
	}

	if c.Admin.Username == "" || c.Admin.Password == "" {
		return fmt.Errorf("ADMIN_USERNAME and ADMIN_PASSWORD are required")
	}

	switch c.Drafts.Backend {
	case "flow":
		if c.Drafts.FlowURL == "" {
			return fmt.Errorf("DRAFTS_FLOW_URL is required when DRAFTS_BACKEND=flow")
		}
	case "gemini":
	default:
		return fmt.Errorf("unknown DRAFTS_BACKEND %q", c.Drafts.Backend)
	}

	return nil
}

// Location returns the display time zone, falling back to UTC.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.App.TimeZone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid integer for %s, using default: %d", key, defaultValue)
		return defaultValue
	}

	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		log.Printf("Warning: Invalid number for %s, using default: %v", key, defaultValue)
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := time.ParseDuration(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid duration for %s, using default: %s", key, defaultValue)
		return defaultValue
	}

	return value
}

func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
