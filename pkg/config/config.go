package config

import (
	"errors"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database    DatabaseConfig
	Redis       RedisConfig
	JWT         JWTConfig
	CORS        CORSConfig
	Log         LogConfig
	Commerce    CommerceConfig
	Paystack    PaystackConfig
	Bank        BankConfig
	Evidence    EvidenceConfig
	Progress    ProgressConfig
	Catalog     CatalogConfig
	Receipts    ReceiptsConfig
	Enrollments EnrollmentWorkerConfig
	Events      EventsConfig
}

type DatabaseConfig struct {
	Enabled      bool
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
	PoolSize int
}

type JWTConfig struct {
	Secret     string
	Expiration time.Duration
	Issuer     string
}

type CORSConfig struct {
	AllowedOrigins []string
	MaxAge         time.Duration
}

type LogConfig struct {
	Level  string
	Format string
}

// CommerceConfig points at the remote course/commerce API.
type CommerceConfig struct {
	BaseURL string
	Timeout time.Duration
}

// PaystackConfig carries gateway keys. An empty SecretKey disables server-side verification.
type PaystackConfig struct {
	PublicKey string
	SecretKey string
	BaseURL   string
	Currency  string
}

// BankConfig holds the manual transfer instructions shown at checkout.
type BankConfig struct {
	BankName       string
	AccountName    string
	AccountNumber  string
	WhatsAppNumber string
	RedirectDelay  time.Duration
}

// EvidenceConfig bounds bank transfer evidence uploads.
type EvidenceConfig struct {
	MaxFileSizeBytes int64
}

// ProgressConfig tunes lecture watch tracking.
type ProgressConfig struct {
	WatchThreshold float64
	CacheTTL       time.Duration
	MarkTimeout    time.Duration
}

// CatalogConfig controls public catalog paging.
type CatalogConfig struct {
	PageSize int
}

// ReceiptsConfig controls receipt storage & signed downloads.
type ReceiptsConfig struct {
	StorageDir      string
	SignedURLSecret string
	SignedURLTTL    time.Duration
}

// EnrollmentWorkerConfig configures the enrollment retry queue.
type EnrollmentWorkerConfig struct {
	WorkerConcurrency int
	WorkerRetries     int
	RetryDelay        time.Duration
}

// EventsConfig configures checkout event publishing. No brokers means publishing is skipped.
type EventsConfig struct {
	Brokers       []string
	CheckoutTopic string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !isMissingFile(err) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
		Enabled:      v.GetBool("DB_ENABLED"),
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
		PoolSize: v.GetInt("REDIS_POOL_SIZE"),
	}

	cfg.JWT = JWTConfig{
		Secret:     v.GetString("JWT_SECRET"),
		Expiration: parseDuration(v.GetString("JWT_EXPIRATION"), 24*time.Hour),
		Issuer:     v.GetString("JWT_ISSUER"),
	}

	cfg.CORS = CORSConfig{
		AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS")),
		MaxAge:         parseDuration(v.GetString("CORS_MAX_AGE"), 10*time.Minute),
	}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Commerce = CommerceConfig{
		BaseURL: strings.TrimRight(v.GetString("COMMERCE_API_BASE_URL"), "/"),
		Timeout: parseDuration(v.GetString("COMMERCE_API_TIMEOUT"), 15*time.Second),
	}

	cfg.Paystack = PaystackConfig{
		PublicKey: v.GetString("PAYSTACK_PUBLIC_KEY"),
		SecretKey: v.GetString("PAYSTACK_SECRET_KEY"),
		BaseURL:   strings.TrimRight(v.GetString("PAYSTACK_BASE_URL"), "/"),
		Currency:  v.GetString("PAYMENT_CURRENCY"),
	}

	cfg.Bank = BankConfig{
		BankName:       v.GetString("BANK_NAME"),
		AccountName:    v.GetString("BANK_ACCOUNT_NAME"),
		AccountNumber:  v.GetString("BANK_ACCOUNT_NUMBER"),
		WhatsAppNumber: v.GetString("BANK_WHATSAPP_NUMBER"),
		RedirectDelay:  parseDuration(v.GetString("BANK_REDIRECT_DELAY"), 2*time.Second),
	}

	maxEvidence := v.GetInt64("EVIDENCE_MAX_FILE_SIZE")
	if maxEvidence <= 0 {
		maxEvidence = 5 * 1024 * 1024
	}
	cfg.Evidence = EvidenceConfig{MaxFileSizeBytes: maxEvidence}

	threshold := v.GetFloat64("PROGRESS_WATCH_THRESHOLD")
	if threshold <= 0 || threshold >= 100 {
		threshold = 90
	}
	cfg.Progress = ProgressConfig{
		WatchThreshold: threshold,
		CacheTTL:       parseDuration(v.GetString("PROGRESS_CACHE_TTL"), 24*time.Hour),
		MarkTimeout:    parseDuration(v.GetString("PROGRESS_MARK_TIMEOUT"), 10*time.Second),
	}

	cfg.Catalog = CatalogConfig{PageSize: v.GetInt("CATALOG_PAGE_SIZE")}

	cfg.Receipts = ReceiptsConfig{
		StorageDir:      v.GetString("RECEIPTS_STORAGE_DIR"),
		SignedURLSecret: v.GetString("RECEIPTS_SIGNED_URL_SECRET"),
		SignedURLTTL:    parseDuration(v.GetString("RECEIPTS_SIGNED_URL_TTL"), 24*time.Hour),
	}

	cfg.Enrollments = EnrollmentWorkerConfig{
		WorkerConcurrency: v.GetInt("ENROLLMENT_WORKER_CONCURRENCY"),
		WorkerRetries:     v.GetInt("ENROLLMENT_WORKER_RETRIES"),
		RetryDelay:        parseDuration(v.GetString("ENROLLMENT_RETRY_DELAY"), 30*time.Second),
	}

	cfg.Events = EventsConfig{
		Brokers:       splitAndTrim(v.GetString("KAFKA_BROKERS")),
		CheckoutTopic: v.GetString("KAFKA_CHECKOUT_TOPIC"),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_ENABLED", true)
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "coursemart")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", "dev_secret")
	v.SetDefault("JWT_EXPIRATION", "24h")
	v.SetDefault("JWT_ISSUER", "coursemart-api")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("COMMERCE_API_BASE_URL", "https://ns.auwebx.com")
	v.SetDefault("COMMERCE_API_TIMEOUT", "15s")

	v.SetDefault("PAYSTACK_PUBLIC_KEY", "")
	v.SetDefault("PAYSTACK_SECRET_KEY", "")
	v.SetDefault("PAYSTACK_BASE_URL", "https://api.paystack.co")
	v.SetDefault("PAYMENT_CURRENCY", "NGN")

	v.SetDefault("BANK_NAME", "Zenith Bank")
	v.SetDefault("BANK_ACCOUNT_NAME", "AUWEBx Academy")
	v.SetDefault("BANK_ACCOUNT_NUMBER", "1234567890")
	v.SetDefault("BANK_WHATSAPP_NUMBER", "+2348000000000")
	v.SetDefault("BANK_REDIRECT_DELAY", "2s")

	v.SetDefault("EVIDENCE_MAX_FILE_SIZE", 5*1024*1024)

	v.SetDefault("PROGRESS_WATCH_THRESHOLD", 90)
	v.SetDefault("PROGRESS_CACHE_TTL", "24h")
	v.SetDefault("PROGRESS_MARK_TIMEOUT", "10s")

	v.SetDefault("CATALOG_PAGE_SIZE", 9)

	v.SetDefault("RECEIPTS_STORAGE_DIR", "./receipts")
	v.SetDefault("RECEIPTS_SIGNED_URL_SECRET", "dev_receipts_secret")
	v.SetDefault("RECEIPTS_SIGNED_URL_TTL", "24h")

	v.SetDefault("ENROLLMENT_WORKER_CONCURRENCY", 1)
	v.SetDefault("ENROLLMENT_WORKER_RETRIES", 5)
	v.SetDefault("ENROLLMENT_RETRY_DELAY", "30s")

	v.SetDefault("KAFKA_BROKERS", "")
	v.SetDefault("KAFKA_CHECKOUT_TOPIC", "coursemart.checkout")
}

func isMissingFile(err error) bool {
	return errors.Is(err, os.ErrNotExist)
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
