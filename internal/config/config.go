// Package config предоставляет структуры и функцию для парсинга и загрузки конфига
package config

import (
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config общая структура для хранения настроек клиента и dev-бэкенда
type Config struct {
	Env             string `yaml:"env" env:"ENV" env-default:"local"`
	ClientHTTP      `yaml:"client_http"`
	SessionStorage  `yaml:"session_storage"`
	RedisConnection `yaml:"redis_connection"`
	HTTPServer      `yaml:"http_server"`
	JWTToken        `yaml:"jwttoken"`
}

// ClientHTTP структура для настройки HTTP-клиента платформы
type ClientHTTP struct {
	APIBaseURL  string        `yaml:"api_base_url" env:"API_BASE_URL" env-default:"http://localhost:8080/api/v1"`
	Timeout     time.Duration `yaml:"timeout" env-default:"15s"`
	RateLimit   float64       `yaml:"rate_limit"`
	RateBurst   int           `yaml:"rate_burst"`
	LoginRoute  string        `yaml:"login_route" env-default:"/login"`
	CacheTTL    time.Duration `yaml:"cache_ttl" env-default:"1h"`
	UseRedis    bool          `yaml:"use_redis"`
	RedisPrefix string        `yaml:"redis_prefix" env-default:"query:"`
}

// SessionStorage структура для настройки долговременного хранения сессии
type SessionStorage struct {
	SessionFile string `yaml:"session_file" env:"SESSION_FILE" env-default:".session.json"`
}

// RedisConnection структура для настройки подключения к redis
type RedisConnection struct {
	AddressRedis string        `yaml:"addressredis"`
	Password     string        `yaml:"password"`
	User         string        `yaml:"user"`
	DB           int           `yaml:"db"`
	MaxRetries   int           `yaml:"max_retries"`
	DialTimeout  time.Duration `yaml:"dial_timeout"`
	TimeoutRedis time.Duration `yaml:"timeoutredis"`
}

// HTTPServer структура для настройки dev-бэкенда
type HTTPServer struct {
	AddressHTTP string        `yaml:"addresshttp" env-default:"localhost:8080"`
	TimeoutHTTP time.Duration `yaml:"timeouthttp" env-default:"10s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env-default:"60s"`
}

// JWTToken структура для работы с jwt-токеном dev-бэкенда
type JWTToken struct {
	JWTSecretKey string        `yaml:"jwt_secret_key" env:"JWT_SECRET_KEY" env-default:"dev-secret"`
	TokenTTL     time.Duration `yaml:"token_ttl" env-default:"24h"`
}

// MustLoad функция для загрузки конфига, путь берется из переменной окружения CONFIG_PATH
func MustLoad() *Config {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		log.Fatal("CONFIG_PATH is not set")
	}
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		log.Fatalf("file: %s - does not exist", configPath)
	}
	var cfg Config

	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		log.Fatalf("cannot read config: %s", err)
	}
	return &cfg
}
