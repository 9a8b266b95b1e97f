package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/torn-watcher/internal/pkg/validate"
)

// Credential sources accepted by CREDENTIAL_SOURCE.
const (
	CredentialSourceDynamo   = "dynamo"
	CredentialSourcePostgres = "postgres"
)

// Push providers accepted by PUSH_PROVIDER.
const (
	PushProviderExpo = "expo"
	PushProviderSNS  = "sns"
)

// Config holds all runtime configuration loaded from environment variables.
type Config struct {
	AppPort string
	AppEnv  string

	AWSRegion      string `validate:"required"`
	AWSEndpointURL string // empty in prod, set to LocalStack URL in dev
	AWSAccessKeyID string
	AWSSecretKey   string
	DynamoTables   DynamoTables
	S3BucketName   string // empty disables snapshot archiving

	CredentialSource string `validate:"oneof=dynamo postgres"`
	DatabaseURL      string `validate:"required_if=CredentialSource postgres"`
	KeyEncryptionKey string // base64 32-byte key for encrypted_key on user rows

	TornBaseURL     string        `validate:"required,url"`
	TornTimeout     time.Duration `validate:"gt=0"`
	StockFeedURL    string        `validate:"required,url"`
	PushProvider    string        `validate:"oneof=expo sns"`
	PushGatewayURL  string        `validate:"required_if=PushProvider expo"`
	PushAccessToken string
	SNSRegion       string

	ChainBatchLimit  int           `validate:"min=1"`
	BazaarBatchLimit int           `validate:"min=1"`
	CallSpacing      time.Duration `validate:"gte=0"`
	FetchConcurrency int           `validate:"gte=0"` // 0 = one goroutine per unit
	RunTimeout       time.Duration `validate:"gt=0"`
	SendTimeout      time.Duration `validate:"gt=0"` // push dispatch budget after the run deadline

	JWTPrivateKeyPath string
	JWTPublicKeyPath  string
	JWTExpiry         time.Duration
	AllowedOrigins    []string // CORS allowed origins
	TrustProxy        bool     // honour X-Forwarded-For / X-Real-Ip from a fronting proxy
}

// DynamoTables holds the DynamoDB table name for each entity.
type DynamoTables struct {
	Users         string
	Devices       string
	Notifications string
	ChainTargets  string
	StockAlerts   string
	Items         string
	Stocks        string
	Events        string
}

// Load reads all configuration from environment variables.
func Load() *Config {
	return &Config{
		AppPort:        getEnv("APP_PORT", "3000"),
		AppEnv:         getEnv("APP_ENV", "development"),
		AWSRegion:      getEnv("AWS_REGION", "us-east-1"),
		AWSEndpointURL: getEnv("AWS_ENDPOINT_URL", ""),
		AWSAccessKeyID: getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretKey:   getEnv("AWS_SECRET_ACCESS_KEY", ""),
		DynamoTables: DynamoTables{
			Users:         getEnv("DYNAMO_TABLE_USERS", "users"),
			Devices:       getEnv("DYNAMO_TABLE_DEVICES", "devices"),
			Notifications: getEnv("DYNAMO_TABLE_NOTIFICATIONS", "notifications"),
			ChainTargets:  getEnv("DYNAMO_TABLE_CHAIN_TARGETS", "chain_targets"),
			StockAlerts:   getEnv("DYNAMO_TABLE_STOCK_ALERTS", "stock_alerts"),
			Items:         getEnv("DYNAMO_TABLE_ITEMS", "items"),
			Stocks:        getEnv("DYNAMO_TABLE_STOCKS", "stocks"),
			Events:        getEnv("DYNAMO_TABLE_EVENTS", "events"),
		},
		S3BucketName:      getEnv("S3_BUCKET_NAME", ""),
		CredentialSource:  getEnv("CREDENTIAL_SOURCE", CredentialSourceDynamo),
		DatabaseURL:       getEnv("DATABASE_URL", ""),
		KeyEncryptionKey:  getEnv("KEY_ENCRYPTION_KEY", ""),
		TornBaseURL:       getEnv("TORN_BASE_URL", "https://api.torn.com"),
		TornTimeout:       getEnvDuration("TORN_TIMEOUT", 10*time.Second),
		StockFeedURL:      getEnv("STOCK_FEED_URL", "https://yata.yt/api/v1/travel/export/"),
		PushProvider:      getEnv("PUSH_PROVIDER", PushProviderExpo),
		PushGatewayURL:    getEnv("PUSH_GATEWAY_URL", "https://exp.host/--/api/v2/push/send"),
		PushAccessToken:   getEnv("PUSH_ACCESS_TOKEN", ""),
		SNSRegion:         getEnv("SNS_REGION", "us-east-1"),
		ChainBatchLimit:   getEnvInt("CHAIN_BATCH_LIMIT", 20),
		BazaarBatchLimit:  getEnvInt("BAZAAR_BATCH_LIMIT", 20),
		CallSpacing:       getEnvDuration("CALL_SPACING", 200*time.Millisecond),
		FetchConcurrency:  getEnvInt("FETCH_CONCURRENCY", 0),
		RunTimeout:        getEnvDuration("RUN_TIMEOUT", 55*time.Second),
		SendTimeout:       getEnvDuration("SEND_TIMEOUT", 10*time.Second),
		JWTPrivateKeyPath: getEnv("JWT_PRIVATE_KEY_PATH", "./private_key.pem"),
		JWTPublicKeyPath:  getEnv("JWT_PUBLIC_KEY_PATH", "./public_key.pem"),
		JWTExpiry:         getEnvDuration("JWT_EXPIRY", 5*time.Minute),
		AllowedOrigins:    strings.Split(getEnv("ALLOWED_ORIGINS", "*"), ","),
		TrustProxy:        getEnvBool("TRUST_PROXY", false),
	}
}

// Validate checks the loaded values against their validate tags.
func (c *Config) Validate() error {
	return validate.Struct(c)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
