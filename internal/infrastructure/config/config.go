package config

import (
	"context"
	"fmt"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port      string `env:"PORT,      default=8080"`
	Env       string `env:"ENV,       default=development"`
	JWTSecret string `env:"JWT_SECRET"`
	LogLevel  string `env:"LOG_LEVEL, default=info"`
	Timezone  string `env:"TIMEZONE,  default=America/New_York"`

	Storage StorageConfig
	Mongo   MongoConfig
	Redis   RedisConfig
}

// StorageConfig selects the record store backend: "mongo" for the hosted
// document store, "local" for the per-device single-file store.
type StorageConfig struct {
	Backend   string `env:"STORAGE_BACKEND, default=mongo"`
	LocalPath string `env:"LOCAL_DB_PATH,   default=timeclock.db"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=timeclock"`
}

type RedisConfig struct {
	Addr string `env:"REDIS_ADDR, default=localhost:6379"`
	DB   int    `env:"REDIS_DB,   default=0"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	var cfg Config
	if err := envconfig.Process(context.Background(), &cfg); err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return &cfg
}
