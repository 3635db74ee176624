package config

import (
	"fmt"
	"github.com/joho/godotenv"
	"github.com/mintlane/marketplace-engine/internal/log"
	"go.uber.org/zap"
	"math/big"
	"os"
	"strconv"
	"strings"
)

type Config struct {
	Env      string
	Network  string
	Index    string
	Debug    bool
	LogPath  string
	Sentry   string
	ApiPort  string
	HealthPort string

	SweepInterval int

	Market        MarketConfig
	Registry      RegistryConfig
	Funds         FundsConfig
	ElasticSearch ElasticSearchConfig
	Aws           AwsConfig
}

type MarketConfig struct {
	Treasury        string
	LicenseTermUnit int64
}

type RegistryConfig struct {
	Url     string
	Debug   bool
	Timeout int
}

type FundsConfig struct {
	Url     string
	Token   string
	Debug   bool
	Timeout int
}

type AwsConfig struct {
	AccessKey     string
	SecretKey     string
	Region        string
	ReceiptBucket string
}

type ElasticSearchConfig struct {
	Hosts            []string
	Sniff            bool
	HealthCheck      bool
	Debug            bool
	Username         string
	Password         string
	MappingDir       string
	BulkPersistCount int
	Refresh          string
}

func Init(app string) {
	err := godotenv.Load(".env")
	if err != nil {
		zap.L().With(zap.Error(err)).Warn("Unable to load .env, using environment")
	}

	initLogger(app)
}

func initLogger(app string) {
	cfg := Get()
	log.NewLogger(fmt.Sprintf("%s/%s.log", cfg.LogPath, app), cfg.Debug, cfg.Sentry)
}

func Get() *Config {
	return &Config{
		Env:        getString("ENV", ""),
		Network:    getString("NETWORK", "mainnet"),
		Index:      getString("INDEX_NAME", "marketplace"),
		Debug:      getBool("DEBUG", false),
		LogPath:    getString("LOG_PATH", "./var/logs"),
		Sentry:     getString("SENTRY_DSN", ""),
		ApiPort:    getString("API_PORT", "8080"),
		HealthPort: getString("HEALTH_PORT", "8008"),

		SweepInterval: getInt("SWEEP_INTERVAL", 5),

		Market: MarketConfig{
			Treasury:        getString("MARKET_TREASURY", ""),
			LicenseTermUnit: int64(getInt("LICENSE_TERM_UNIT", 2592000)),
		},
		Registry: RegistryConfig{
			Url:     getString("REGISTRY_URL", ""),
			Timeout: getInt("REGISTRY_TIMEOUT", 30),
			Debug:   getBool("REGISTRY_DEBUG", false),
		},
		Funds: FundsConfig{
			Url:     getString("FUNDS_URL", ""),
			Token:   getString("FUNDS_TOKEN", "WETH"),
			Timeout: getInt("FUNDS_TIMEOUT", 30),
			Debug:   getBool("FUNDS_DEBUG", false),
		},
		Aws: AwsConfig{
			AccessKey:     getString("AWS_ACCESS_KEY_ID", ""),
			SecretKey:     getString("AWS_SECRET_KEY_ID", ""),
			Region:        getString("AWS_REGION", ""),
			ReceiptBucket: getString("AWS_RECEIPT_BUCKET", ""),
		},
		ElasticSearch: ElasticSearchConfig{
			Hosts:            getSlice("ELASTIC_SEARCH_HOSTS", make([]string, 0), ","),
			Sniff:            getBool("ELASTIC_SEARCH_SNIFF", true),
			HealthCheck:      getBool("ELASTIC_SEARCH_HEALTH_CHECK", true),
			Debug:            getBool("ELASTIC_SEARCH_DEBUG", false),
			Username:         getString("ELASTIC_SEARCH_USERNAME", ""),
			Password:         getString("ELASTIC_SEARCH_PASSWORD", ""),
			MappingDir:       getString("ELASTIC_SEARCH_MAPPING_DIR", "./data/mappings"),
			BulkPersistCount: getInt("ELASTIC_SEARCH_BULK_PERSIST_COUNT", 300),
			Refresh:          getString("ELASTIC_SEARCH_REFRESH", "wait_for"),
		},
	}
}

func getString(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}

	return defaultValue
}

func getInt(key string, defaultValue int) int {
	valStr := getString(key, "")
	val, _, err := big.ParseFloat(valStr, 10, 0, big.ToNearestEven)
	if err != nil {
		return defaultValue
	}

	intVal, _ := val.Int64()
	return int(intVal)
}

func getBool(key string, defaultValue bool) bool {
	valStr := getString(key, "")
	if val, err := strconv.ParseBool(valStr); err == nil {
		return val
	}

	return defaultValue
}

func getSlice(key string, defaultVal []string, sep string) []string {
	valStr := getString(key, "")
	if valStr == "" {
		return defaultVal
	}

	return strings.Split(valStr, sep)
}
