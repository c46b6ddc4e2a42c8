package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds all configuration values
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	Oracle    OracleConfig
	Chains    ChainsConfig
	Reconcile ReconcileConfig
	Webhook   WebhookConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port string
	Env  string
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// URL returns the database connection URL
func (c DatabaseConfig) URL() string {
	return "postgres://" + c.User + ":" + c.Password + "@" + c.Host + ":" + strconv.Itoa(c.Port) + "/" + c.DBName + "?sslmode=" + c.SSLMode + "&prepare_threshold=0"
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	URL      string
	PASSWORD string
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret string
	Expiry time.Duration
}

// OracleConfig holds price oracle configuration
type OracleConfig struct {
	BaseURL  string
	Timeout  time.Duration
	QuoteTTL time.Duration
}

// ChainsConfig holds chain data source endpoints.
// Explorer URLs are Etherscan-compatible account-history APIs.
type ChainsConfig struct {
	EthereumExplorerURL string
	BaseExplorerURL     string
	BscExplorerURL      string
	ExplorerAPIKey      string
	SolanaRPC           string
}

// ReconcileConfig holds reconciliation policy. Epsilon and the confirmation
// threshold are tunable policy, not invariants.
type ReconcileConfig struct {
	SweepInterval         time.Duration
	ExpiryWindow          time.Duration
	ConfirmationThreshold int
	SPLEpsilon            string
	SignaturePageSize     int
	MatchConcurrency      int
	MatcherTimeout        time.Duration
	RequoteInterval       time.Duration
}

// WebhookConfig holds webhook delivery policy
type WebhookConfig struct {
	MaxAttempts int
	Backoff     time.Duration
	Timeout     time.Duration
}

// Load loads configuration from environment variables
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "8080"),
			Env:  getEnv("SERVER_ENV", "development"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvAsInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "chainpay"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			URL:      getEnv("REDIS_URL", "redis://localhost:6379"),
			PASSWORD: getEnv("REDIS_PASSWORD", ""),
		},
		JWT: JWTConfig{
			Secret: getEnv("JWT_SECRET", "change-this-in-production"),
			Expiry: getEnvAsDuration("JWT_EXPIRY", 24*time.Hour),
		},
		Oracle: OracleConfig{
			BaseURL:  getEnv("PRICE_ORACLE_URL", "https://api.coingecko.com/api/v3"),
			Timeout:  getEnvAsDuration("PRICE_ORACLE_TIMEOUT", 10*time.Second),
			QuoteTTL: getEnvAsDuration("QUOTE_TTL", 60*time.Second),
		},
		Chains: ChainsConfig{
			EthereumExplorerURL: getEnv("ETHEREUM_EXPLORER_URL", "https://api.etherscan.io/api"),
			BaseExplorerURL:     getEnv("BASE_EXPLORER_URL", "https://api.basescan.org/api"),
			BscExplorerURL:      getEnv("BSC_EXPLORER_URL", "https://api.bscscan.com/api"),
			ExplorerAPIKey:      getEnv("EXPLORER_API_KEY", ""),
			SolanaRPC:           getEnv("SOLANA_RPC_URL", "https://api.mainnet-beta.solana.com"),
		},
		Reconcile: ReconcileConfig{
			SweepInterval:         getEnvAsDuration("SWEEP_INTERVAL", 30*time.Second),
			ExpiryWindow:          getEnvAsDuration("PAYMENT_EXPIRY_WINDOW", 5*time.Minute),
			ConfirmationThreshold: getEnvAsInt("CONFIRMATION_THRESHOLD", 5),
			SPLEpsilon:            getEnv("SPL_MATCH_EPSILON", "0.000001"),
			SignaturePageSize:     getEnvAsInt("SOLANA_SIGNATURE_PAGE", 10),
			MatchConcurrency:      getEnvAsInt("MATCH_CONCURRENCY", 4),
			MatcherTimeout:        getEnvAsDuration("MATCHER_TIMEOUT", 10*time.Second),
			RequoteInterval:       getEnvAsDuration("REQUOTE_INTERVAL", 30*time.Second),
		},
		Webhook: WebhookConfig{
			MaxAttempts: getEnvAsInt("WEBHOOK_MAX_ATTEMPTS", 3),
			Backoff:     getEnvAsDuration("WEBHOOK_BACKOFF", 2*time.Second),
			Timeout:     getEnvAsDuration("WEBHOOK_TIMEOUT", 10*time.Second),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
