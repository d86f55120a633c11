package configuration

import (
	"fmt"
	"os"
	"time"

	"youtube-etl/infrastructure/logger"

	"github.com/spf13/viper"
)

const (
	DefaultMongoURI      = "mongodb://localhost:27017/"
	DefaultMongoDatabase = "youtube_data"
	DefaultDagID         = "youtube_topic_etl"
	DefaultSchedule      = "@every 24h"
	DefaultMaxResults    = 100
)

type Config struct {
	App         App         `mapstructure:"app"`
	YouTube     YouTube     `mapstructure:"youtube"`
	Database    Database    `mapstructure:"database"`
	RedisClient RedisClient `mapstructure:"redisClient"`
	Pipeline    Pipeline    `mapstructure:"pipeline"`
}

type App struct {
	Port         int      `mapstructure:"port"`
	AllowOrigins []string `mapstructure:"allowOrigins"`
}

type YouTube struct {
	APIKey            string        `mapstructure:"apiKey"`
	Endpoint          string        `mapstructure:"endpoint"`
	RequestsPerSecond float64       `mapstructure:"requestsPerSecond"`
	Burst             int           `mapstructure:"burst"`
	RequestTimeout    time.Duration `mapstructure:"requestTimeout"`
}

type Database struct {
	Mongo Mongo `mapstructure:"mongo"`
	Psql  Psql  `mapstructure:"psql"`
}

type Mongo struct {
	URI  string `mapstructure:"uri"`
	Name string `mapstructure:"name"`
}

// Psql holds the optional run-history database; empty URL keeps history in memory.
type Psql struct {
	URL string `mapstructure:"url"`
}

// RedisClient holds the optional cross-process run lock; empty host uses an in-process lock.
type RedisClient struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

func (r RedisClient) Addr() string {
	return fmt.Sprintf("%s:%s", r.Host, r.Port)
}

type Pipeline struct {
	DagID      string        `mapstructure:"dagId"`
	TopicFile  string        `mapstructure:"topicFile"`
	DataDir    string        `mapstructure:"dataDir"`
	MaxResults int64         `mapstructure:"maxResults"`
	Retries    int           `mapstructure:"retries"`
	RetryDelay time.Duration `mapstructure:"retryDelay"`
	Schedule   string        `mapstructure:"schedule"`
	RunOnStart bool          `mapstructure:"runOnStart"`
	LockTTL    time.Duration `mapstructure:"lockTTL"`
}

var C Config

func init() {
	LoadConfig()
}

// LoadConfig populates C from config[-ENV].json, environment variables and defaults.
func LoadConfig() {
	v := viper.New()
	name := getConfig()
	v.SetConfigName(name)
	v.SetConfigType("json")
	v.AddConfigPath(".")
	v.AddConfigPath("../")
	v.AddConfigPath("../../")
	v.AutomaticEnv()

	setDefaults(v)
	bindEnv(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			logger.GetLogger().WithField("config", name).Debug("Config file not found, using defaults and environment")
		} else {
			logger.GetLogger().WithField("error", err).Error("Error reading config file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		logger.GetLogger().WithField("error", err).Error("Viper unable to decode into struct")
		return
	}
	C = cfg
	logger.GetLogger().WithFields(map[string]interface{}{
		"config":    name,
		"dagId":     C.Pipeline.DagID,
		"schedule":  C.Pipeline.Schedule,
		"topicFile": C.Pipeline.TopicFile,
		"dataDir":   C.Pipeline.DataDir,
	}).Info("Config set up successfully")
}

func getConfig() string {
	name := "config"
	env := os.Getenv("ENV")
	if env != "" {
		name = fmt.Sprintf("%s-%s", name, env)
	}
	return name
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.port", 10001)
	v.SetDefault("app.allowOrigins", []string{"http://localhost:4200"})

	v.SetDefault("youtube.apiKey", "")
	v.SetDefault("youtube.endpoint", "")
	v.SetDefault("youtube.requestsPerSecond", 5.0)
	v.SetDefault("youtube.burst", 1)
	v.SetDefault("youtube.requestTimeout", "30s")

	v.SetDefault("database.mongo.uri", DefaultMongoURI)
	v.SetDefault("database.mongo.name", DefaultMongoDatabase)
	v.SetDefault("database.psql.url", "")

	v.SetDefault("redisClient.host", "")
	v.SetDefault("redisClient.port", "6379")
	v.SetDefault("redisClient.username", "")
	v.SetDefault("redisClient.password", "")

	v.SetDefault("pipeline.dagId", DefaultDagID)
	v.SetDefault("pipeline.topicFile", "topic.txt")
	v.SetDefault("pipeline.dataDir", ".")
	v.SetDefault("pipeline.maxResults", DefaultMaxResults)
	v.SetDefault("pipeline.retries", 1)
	v.SetDefault("pipeline.retryDelay", "5m")
	v.SetDefault("pipeline.schedule", DefaultSchedule)
	v.SetDefault("pipeline.runOnStart", false)
	v.SetDefault("pipeline.lockTTL", "2h")
}

func bindEnv(v *viper.Viper) {
	bindings := map[string]string{
		"app.port":             "APP_PORT",
		"youtube.apiKey":       "YOUTUBE_API_KEY",
		"youtube.endpoint":     "YOUTUBE_ENDPOINT",
		"database.mongo.uri":   "MONGO_URI",
		"database.mongo.name":  "MONGO_DB_NAME",
		"database.psql.url":    "DATABASE_URL",
		"redisClient.host":     "REDIS_HOST",
		"redisClient.port":     "REDIS_PORT",
		"redisClient.username": "REDIS_USERNAME",
		"redisClient.password": "REDIS_PASSWORD",
		"pipeline.topicFile":   "TOPIC_FILE",
		"pipeline.dataDir":     "DATA_DIR",
		"pipeline.maxResults":  "MAX_RESULTS",
		"pipeline.retryDelay":  "RETRY_DELAY",
		"pipeline.schedule":    "PIPELINE_SCHEDULE",
		"pipeline.runOnStart":  "PIPELINE_RUN_ON_START",
	}
	for key, env := range bindings {
		if err := v.BindEnv(key, env); err != nil {
			logger.GetLogger().WithFields(map[string]interface{}{"key": key, "env": env, "error": err}).Warn("Failed to bind env")
		}
	}
}
