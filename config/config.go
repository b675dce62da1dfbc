package config

import (
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

type Config struct {
	Server        Server
	Database      Database
	Redis         Redis
	Generation    Generation
	EncryptionKey string
}

type Server struct {
	Port string
}

type Database struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
}

type Redis struct {
	Enabled  bool
	Addr     string
	Password string
	DB       int
}

// Generation holds the orchestrator tuning knobs. MaxSyncCount bounds the
// synchronous path; larger batches must go through the async queue.
type Generation struct {
	MaxSyncCount      int
	BatchSize         int
	TaskTTL           time.Duration
	WorkerConcurrency int
	QueuePollInterval time.Duration
}

func NewConfig() (*Config, error) {
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")

	viper.AutomaticEnv()

	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("GENERATION_MAX_SYNC_COUNT", 20)
	viper.SetDefault("GENERATION_BATCH_SIZE", 10)
	viper.SetDefault("GENERATION_TASK_TTL_HOURS", 24)
	viper.SetDefault("GENERATION_WORKER_CONCURRENCY", 2)
	viper.SetDefault("GENERATION_QUEUE_POLL_MS", 500)

	if err := viper.ReadInConfig(); err != nil {
		log.Warn().Err(err).Msg("Error reading config file")
	}

	var config Config

	config.Server.Port = viper.GetString("SERVER_PORT")
	config.Database.Host = viper.GetString("DATABASE_HOST")
	config.Database.Port = viper.GetString("DATABASE_PORT")
	config.Database.User = viper.GetString("DATABASE_USER")
	config.Database.Password = viper.GetString("DATABASE_PASSWORD")
	config.Database.Name = viper.GetString("DATABASE_NAME")

	config.Redis.Enabled = viper.GetBool("REDIS_ENABLED")
	config.Redis.Addr = viper.GetString("REDIS_ADDR")
	config.Redis.Password = viper.GetString("REDIS_PASSWORD")
	config.Redis.DB = viper.GetInt("REDIS_DB")

	config.Generation.MaxSyncCount = viper.GetInt("GENERATION_MAX_SYNC_COUNT")
	config.Generation.BatchSize = viper.GetInt("GENERATION_BATCH_SIZE")
	config.Generation.TaskTTL = time.Duration(viper.GetInt("GENERATION_TASK_TTL_HOURS")) * time.Hour
	config.Generation.WorkerConcurrency = viper.GetInt("GENERATION_WORKER_CONCURRENCY")
	config.Generation.QueuePollInterval = time.Duration(viper.GetInt("GENERATION_QUEUE_POLL_MS")) * time.Millisecond

	config.EncryptionKey = viper.GetString("CONFIG_ENCRYPTION_KEY")

	log.Info().Str("port", config.Server.Port).Bool("redis", config.Redis.Enabled).Msg("Config loaded")
	return &config, nil
}
