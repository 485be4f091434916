// Package config описывает настройки сервиса и загружает их из YAML-файла,
// путь к которому задаётся переменной окружения CONFIG_PATH.
package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Окружения запуска.
const (
	EnvLocal = "local"
	EnvDev   = "dev"
	EnvProd  = "prod"
)

// Config общая структура для хранения настроек.
type Config struct {
	Env                     string `yaml:"env" env-default:"local"`
	StorageConnectionString string `yaml:"storage_connection_string" env:"STORAGE_CONNECTION_STRING" env-required:"true"`
	MigrationsPath          string `yaml:"migrations_path" env-default:"./migrations"`
	HTTPServer              `yaml:"http_server"`
	RedisConnection         `yaml:"redis_connection"`
	Cache                   Cache     `yaml:"cache"`
	JWTToken                `yaml:"jwttoken"`
	Media                   Media     `yaml:"media"`
	RabbitMQ                RabbitMQ  `yaml:"rabbitmq"`
	CORS                    CORS      `yaml:"cors"`
	RateLimit               RateLimit `yaml:"rate_limit"`
}

// HTTPServer структура для настройки сервера.
type HTTPServer struct {
	AddressHTTP string        `yaml:"addresshttp" env-default:":8080"`
	TimeoutHTTP time.Duration `yaml:"timeouthttp" env-default:"10s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env-default:"60s"`
}

// RedisConnection структура для настройки подключения к redis.
type RedisConnection struct {
	AddressRedis string        `yaml:"addressredis" env-default:"localhost:6379"`
	Password     string        `yaml:"password" env:"REDIS_PASSWORD"`
	User         string        `yaml:"user"`
	DB           int           `yaml:"db"`
	MaxRetries   int           `yaml:"max_retries" env-default:"3"`
	DialTimeout  time.Duration `yaml:"dial_timeout" env-default:"5s"`
	TimeoutRedis time.Duration `yaml:"timeoutredis" env-default:"3s"`
}

// Cache выбирает хранилище кеша справочников: redis, memory или none.
type Cache struct {
	Backend string        `yaml:"backend" env-default:"memory"`
	TTL     time.Duration `yaml:"ttl" env-default:"10m"`
	Size    int           `yaml:"size" env-default:"1024"`
}

// JWTToken секрет для проверки токенов сервиса идентификации.
type JWTToken struct {
	JWTSecretKey string        `yaml:"jwt_secret_key" env:"JWT_SECRET_KEY" env-required:"true"`
	TokenTTL     time.Duration `yaml:"token_ttl" env-default:"24h"`
}

// Media настраивает хранение картинок рецептов.
type Media struct {
	Backend   string `yaml:"backend" env-default:"local"`
	Root      string `yaml:"root" env-default:"./media"`
	URLPrefix string `yaml:"url_prefix" env-default:"/media/"`
	S3        S3     `yaml:"s3"`
}

// S3 параметры объектного хранилища.
type S3 struct {
	Bucket    string `yaml:"bucket"`
	Region    string `yaml:"region" env-default:"us-east-1"`
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key" env:"S3_ACCESS_KEY"`
	SecretKey string `yaml:"secret_key" env:"S3_SECRET_KEY"`
}

// RabbitMQ параметры брокера событий. Пустой URL отключает публикацию.
type RabbitMQ struct {
	URL        string `yaml:"url" env:"RABBITMQ_URL"`
	Exchange   string `yaml:"exchange" env-default:"recipes"`
	RoutingKey string `yaml:"routing_key" env-default:"recipe.published"`
}

// CORS разрешённые источники для браузерного фронтенда.
type CORS struct {
	AllowedOrigins []string `yaml:"allowed_origins" env-default:"*"`
}

// RateLimit ограничения частоты запросов.
type RateLimit struct {
	RPS               float64 `yaml:"rps" env-default:"20"`
	Burst             int     `yaml:"burst" env-default:"40"`
	RegisterPerMinute int     `yaml:"register_per_minute" env-default:"10"`
}

// Load читает конфиг из файла и переменных окружения.
func Load(configPath string) (*Config, error) {
	const op = "config.Load"
	if _, err := os.Stat(configPath); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var cfg Config
	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &cfg, nil
}

// MustLoad загружает конфиг по пути из CONFIG_PATH и завершает процесс при ошибке.
func MustLoad() *Config {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		log.Fatal("CONFIG_PATH is not set")
	}
	cfg, err := Load(configPath)
	if err != nil {
		log.Fatalf("cannot read config: %s", err)
	}
	return cfg
}

// String печатает конфиг без секретов.
func (c *Config) String() string {
	return fmt.Sprintf(
		"Env: %s\n"+
			"HTTPServer: %s (timeout %s, idle %s)\n"+
			"Cache: %s ttl=%s size=%d\n"+
			"Redis: %s db=%d\n"+
			"Media: %s %s\n"+
			"RabbitMQ enabled: %t\n",
		c.Env,
		c.AddressHTTP, c.TimeoutHTTP, c.IdleTimeout,
		c.Cache.Backend, c.Cache.TTL, c.Cache.Size,
		c.AddressRedis, c.DB,
		c.Media.Backend, c.Media.URLPrefix,
		c.RabbitMQ.URL != "",
	)
}
