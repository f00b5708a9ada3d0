package config

import (
	"fmt"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

type HTTPConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type PostgresConfig struct {
	DSN             string
	MaxOpen         int
	MaxIdle         int
	ConnMaxLifetime time.Duration
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type SessionConfig struct {
	Backend    string // "memory" or "redis"
	Secret     string
	TTL        time.Duration
	CookieName string
}

type StorageConfig struct {
	Backend    string // "local" or "minio"
	LocalDir   string
	PublicPath string
	Endpoint   string
	AccessKey  string
	SecretKey  string
	Bucket     string
	UseSSL     bool
	Region     string
}

type UploadConfig struct {
	MaxSizeBytes int64
	MaxDimension int
}

type JanitorConfig struct {
	Stream        string
	Group         string
	MinFileAge    time.Duration
	ClaimInterval time.Duration
}

type AppConfig struct {
	Environment  string
	TemplateGlob string
	StaticDir    string
	HTTP         HTTPConfig
	Postgres     PostgresConfig
	Redis        RedisConfig
	Session      SessionConfig
	Storage      StorageConfig
	Upload       UploadConfig
	Janitor      JanitorConfig
}

func Load() (*AppConfig, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.SetEnvPrefix("ANIMEHOST")
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("load config file: %w", err)
		}
	}

	var cfg AppConfig
	if err := v.Unmarshal(&cfg, func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	}); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("environment", "development")
	v.SetDefault("templateglob", "web/templates/*")
	v.SetDefault("staticdir", "web/static")

	v.SetDefault("http.host", "0.0.0.0")
	v.SetDefault("http.port", 8080)
	v.SetDefault("http.readtimeout", "10s")
	v.SetDefault("http.writetimeout", "15s")
	v.SetDefault("http.idletimeout", "60s")

	v.SetDefault("postgres.maxopen", 30)
	v.SetDefault("postgres.maxidle", 10)
	v.SetDefault("postgres.connmaxlifetime", "30m")

	v.SetDefault("redis.addr", "127.0.0.1:6379")
	v.SetDefault("redis.db", 0)

	v.SetDefault("session.backend", "memory")
	v.SetDefault("session.secret", "change-me-in-production")
	v.SetDefault("session.ttl", "24h")
	v.SetDefault("session.cookiename", "animehost_session")

	v.SetDefault("storage.backend", "local")
	v.SetDefault("storage.localdir", "uploads")
	v.SetDefault("storage.publicpath", "/uploads")
	v.SetDefault("storage.bucket", "animehost-images")
	v.SetDefault("storage.usessl", false)
	v.SetDefault("storage.region", "us-east-1")

	v.SetDefault("upload.maxsizebytes", 5<<20) // 5 MiB
	v.SetDefault("upload.maxdimension", 1200)

	v.SetDefault("janitor.stream", "janitor:tasks")
	v.SetDefault("janitor.group", "janitor")
	v.SetDefault("janitor.minfileage", "1h")
	v.SetDefault("janitor.claiminterval", "1m")
}
