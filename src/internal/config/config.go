package config

import (
	"os"
	"strconv"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

type Configuration struct {
	Logs     LogsSettings     `mapstructure:"logs"`
	App      Application      `mapstructure:"app"`
	Database Database         `mapstructure:"database"`
	Session  SessionSettings  `mapstructure:"session"`
	Cleanup  CleanupSettings  `mapstructure:"cleanup"`
	Queue    QueueConfig      `mapstructure:"queue"`
	Redis    Redis            `mapstructure:"redis"`
	Security SecuritySettings `mapstructure:"security"`
	Server   ServerSettings   `mapstructure:"server"`
	Cache    CacheConfig      `mapstructure:"cache"`
}

type LogsSettings struct {
	Level            string `mapstructure:"level"`
	Path             string `mapstructure:"log-path"`
	EnableJSONOutput bool   `mapstructure:"enable-json-output"`
}

type Application struct {
	Name     string `mapstructure:"name"`
	Timeout  int    `mapstructure:"timeout"`
	Version  string `mapstructure:"version"`
	HostLink string `mapstructure:"host-link"`
}

type Database struct {
	Url               string `mapstructure:"url"`
	DbName            string `mapstructure:"dbname"`
	SessionCollection string `mapstructure:"session-collection"`
	Timeout           int    `mapstructure:"timeout"`
}

type SessionSettings struct {
	TimeoutMinutes int `mapstructure:"timeout-minutes"`
	RetentionDays  int `mapstructure:"retention-days"`
}

type CleanupSettings struct {
	Enabled          bool `mapstructure:"enabled"`
	IntervalMinutes  int  `mapstructure:"interval-minutes"`
	ScanPageSize     int  `mapstructure:"scan-page-size"`
	ReclaimBatchSize int  `mapstructure:"reclaim-batch-size"`
	ReclaimPauseMs   int  `mapstructure:"reclaim-pause-ms"`
}

type QueueConfig struct {
	RabbitMQ RabbitMQConfig `mapstructure:"rabbitmq"`
}

type RabbitMQConfig struct {
	Url               string `mapstructure:"url"`
	Exchange          string `mapstructure:"exchange"`
	ExchangeType      string `mapstructure:"exchange-type"`
	SessionEventQueue string `mapstructure:"session-event-queue"`
	RoutingKey        string `mapstructure:"routing-key"`
	ReconnectDelay    int    `mapstructure:"reconnect-delay"`
	Timeout           int    `mapstructure:"timeout"`
	Durable           bool   `mapstructure:"durable"`
	AutoDelete        bool   `mapstructure:"auto-delete"`
	Internal          bool   `mapstructure:"internal"`
	NoWait            bool   `mapstructure:"no-wait"`
}

type Redis struct {
	Url      string `mapstructure:"url"`
	Password string `mapstructure:"password"`
	Db       int    `mapstructure:"db"`
}

type SecuritySettings struct {
	JwtKey string `mapstructure:"jwt-key"`
}

type ServerSettings struct {
	Port         string `mapstructure:"port"`
	Mode         string `mapstructure:"mode"`
	ReadTimeout  int    `mapstructure:"read-timeout"`
	WriteTimeout int    `mapstructure:"write-timeout"`
	IdleTimeout  int    `mapstructure:"idle-timeout"`
}

type CacheConfig struct {
	SessionExpirationMinutes int    `mapstructure:"session-expiration-minutes"`
	SessionKeyPrefix         string `mapstructure:"session-key-prefix"`
}

// Session lifecycle defaults, applied when the config file leaves the
// corresponding setting unset.
const (
	DefaultSessionTimeoutMinutes  = 480
	DefaultRetentionDays          = 30
	DefaultScanPageSize           = 100
	DefaultReclaimBatchSize       = 25
	DefaultReclaimPauseMs         = 100
	DefaultCleanupIntervalMinutes = 15
)

func Load() *Configuration {
	cfg := read()
	logrus.Info("Configuration loaded")

	// Override with environment variables
	mongoUri := os.Getenv("MONGODB_URL")
	if mongoUri != "" {
		cfg.Database.Url = mongoUri
	}

	dbName := os.Getenv("DB_NAME")
	if dbName != "" {
		cfg.Database.DbName = dbName
	}

	sessionCollection := os.Getenv("SESSION_COLLECTION")
	if sessionCollection != "" {
		cfg.Database.SessionCollection = sessionCollection
	}

	redisUrl := os.Getenv("REDIS_URL")
	if redisUrl != "" {
		cfg.Redis.Url = redisUrl
	}

	redisDB := os.Getenv("REDIS_DB")
	if redisDB != "" {
		if db, err := strconv.Atoi(redisDB); err == nil {
			cfg.Redis.Db = db
		}
	}

	rabbitmqUrl := os.Getenv("RABBITMQ_URL")
	if rabbitmqUrl != "" {
		cfg.Queue.RabbitMQ.Url = rabbitmqUrl
	}

	jwtKey := os.Getenv("JWT_KEY")
	if jwtKey != "" {
		cfg.Security.JwtKey = jwtKey
	}

	applyDefaults(cfg)

	return cfg
}

func applyDefaults(cfg *Configuration) {
	if cfg.Session.TimeoutMinutes <= 0 {
		cfg.Session.TimeoutMinutes = DefaultSessionTimeoutMinutes
	}
	if cfg.Session.RetentionDays <= 0 {
		cfg.Session.RetentionDays = DefaultRetentionDays
	}
	if cfg.Cleanup.ScanPageSize <= 0 {
		cfg.Cleanup.ScanPageSize = DefaultScanPageSize
	}
	// 25 is the store's batch-write ceiling, never exceed it
	if cfg.Cleanup.ReclaimBatchSize <= 0 || cfg.Cleanup.ReclaimBatchSize > DefaultReclaimBatchSize {
		cfg.Cleanup.ReclaimBatchSize = DefaultReclaimBatchSize
	}
	if cfg.Cleanup.ReclaimPauseMs <= 0 {
		cfg.Cleanup.ReclaimPauseMs = DefaultReclaimPauseMs
	}
	if cfg.Cleanup.IntervalMinutes <= 0 {
		cfg.Cleanup.IntervalMinutes = DefaultCleanupIntervalMinutes
	}
}

func read() *Configuration {
	viper.SetConfigFile("src/internal/config/cfg.yml")
	viper.AutomaticEnv()
	viper.SetConfigType("yml")

	var config Configuration

	err := viper.ReadInConfig()
	if err != nil {
		logrus.Panicf("Error reading config file, %s", err)
	}

	err = viper.Unmarshal(&config)
	if err != nil {
		logrus.Panicf("Error unmarshalling config file, %s", err)
	}

	return &config
}
