package config

import (
	"os"
	"strings"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Config holds the service settings read from the environment (and .env).
type Config struct {
	DbDriver string
	DbDSN    string
	HttpPort string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	ProposalTTL   time.Duration

	KafkaBrokers string
	KafkaTopic   string

	Compression       string
	MaxChainDocuments int

	JwtSecret string
	Insecure  bool

	CleanerSchedule string

	LogLevel  string
	LogFormat string
}

func init() {
	viper.SetDefault("DB_DRIVER", "sqlite")
	viper.SetDefault("DB_DSN", "./.tmp/cadeia.db")
	viper.SetDefault("HTTP_PORT", "4001")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("PROPOSAL_TTL", "30m")
	viper.SetDefault("KAFKA_TOPIC", "cadeia.imports")
	viper.SetDefault("COMPRESSION", "gzip")
	viper.SetDefault("MAX_CHAIN_DOCUMENTS", 500)
	viper.SetDefault("INSECURE", false)
	viper.SetDefault("CLEANER_SCHEDULE", "@every 10m")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("LOG_FORMAT", "text")
}

// LoadConfig reads the environment and configures the global logger.
func LoadConfig() *Config {
	viper.AutomaticEnv()

	cfg := &Config{
		DbDriver:          strings.ToLower(viper.GetString("DB_DRIVER")),
		DbDSN:             viper.GetString("DB_DSN"),
		HttpPort:          viper.GetString("HTTP_PORT"),
		RedisAddr:         viper.GetString("REDIS_ADDR"),
		RedisPassword:     viper.GetString("REDIS_PASSWORD"),
		RedisDB:           viper.GetInt("REDIS_DB"),
		ProposalTTL:       viper.GetDuration("PROPOSAL_TTL"),
		KafkaBrokers:      viper.GetString("KAFKA_BROKERS"),
		KafkaTopic:        viper.GetString("KAFKA_TOPIC"),
		Compression:       viper.GetString("COMPRESSION"),
		MaxChainDocuments: viper.GetInt("MAX_CHAIN_DOCUMENTS"),
		JwtSecret:         viper.GetString("JWT_SECRET"),
		Insecure:          viper.GetBool("INSECURE"),
		CleanerSchedule:   viper.GetString("CLEANER_SCHEDULE"),
		LogLevel:          viper.GetString("LOG_LEVEL"),
		LogFormat:         viper.GetString("LOG_FORMAT"),
	}

	configureLogger(cfg)

	return cfg
}

func configureLogger(cfg *Config) {
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		logrus.Warnf("invalid LOG_LEVEL %q, using info", cfg.LogLevel)
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)

	if cfg.LogFormat == "json" {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
}

// GetDb opens the configured database. It exits the process when the database
// cannot be opened.
func GetDb(cfg *Config) *gorm.DB {
	var dialector gorm.Dialector
	switch cfg.DbDriver {
	case "postgres":
		dialector = postgres.Open(cfg.DbDSN)
	case "sqlite", "":
		if dir := dirOf(cfg.DbDSN); dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				logrus.Fatalf("failed to create database directory: %v", err)
			}
		}
		dialector = sqlite.Open(cfg.DbDSN)
	default:
		logrus.Fatalf("unsupported DB_DRIVER %q", cfg.DbDriver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		logrus.Fatalf("failed to connect to database: %v", err)
	}

	return db
}

func dirOf(dsn string) string {
	path := strings.SplitN(dsn, "?", 2)[0]
	if path == ":memory:" || strings.HasPrefix(path, "file:") {
		return ""
	}
	i := strings.LastIndex(path, "/")
	if i <= 0 {
		return ""
	}

	return path[:i]
}
