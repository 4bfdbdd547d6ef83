// Package config предоставляет структуры и функции для загрузки конфигурации сервиса.
//
// Конфигурация читается из YAML-файла (CONFIG_PATH) и/или переменных окружения.
// Переменные окружения имеют приоритет над значениями из файла.
package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// InsecureDefaultSecret — ключ подписи, который раньше использовался по умолчанию.
// Запуск с ним запрещён.
const InsecureDefaultSecret = "your-secret-key"

// Окружения запуска.
const (
	EnvLocal = "local"
	EnvDev   = "dev"
	EnvProd  = "prod"
)

var (
	// ErrMissingJWTSecret возвращается, если ключ подписи токенов не задан.
	ErrMissingJWTSecret = errors.New("jwt secret is not set")
	// ErrInsecureJWTSecret возвращается, если ключ подписи совпадает с небезопасным значением по умолчанию.
	ErrInsecureJWTSecret = errors.New("jwt secret must not be the insecure default")
	// ErrMissingMongoURI возвращается, если строка подключения к MongoDB не задана.
	ErrMissingMongoURI = errors.New("mongodb uri is not set")
	// ErrInvalidLimits возвращается, если лимит запросов или окно не положительны.
	ErrInvalidLimits = errors.New("rate limits and windows must be positive")
	// ErrMissingRabbitMQURL возвращается процессу уведомлений без адреса брокера.
	ErrMissingRabbitMQURL = errors.New("rabbitmq url is not set")
	// ErrMissingSMTPHost возвращается процессу уведомлений без почтового сервера.
	ErrMissingSMTPHost = errors.New("smtp host is not set")
)

// Config общая структура для хранения настроек
type Config struct {
	Env         string     `yaml:"env" env:"ENV" env-default:"local"`
	FrontendURL string     `yaml:"frontend_url" env:"FRONTEND_URL" env-default:"http://localhost:5173"`
	Mongo       Mongo      `yaml:"mongo"`
	Redis       Redis      `yaml:"redis"`
	RabbitMQ    RabbitMQ   `yaml:"rabbitmq"`
	SMTP        SMTP       `yaml:"smtp"`
	HTTPServer  HTTPServer `yaml:"http_server"`
	JWTToken    JWTToken   `yaml:"jwttoken"`
	Auth        Auth       `yaml:"auth"`
	Limits      Limits     `yaml:"limits"`
	Cache       Cache      `yaml:"cache"`
}

// Mongo настройки подключения к MongoDB.
type Mongo struct {
	URI            string        `yaml:"uri" env:"MONGODB_URI"`
	Database       string        `yaml:"database" env:"MONGODB_DATABASE" env-default:"documind"`
	ConnectTimeout time.Duration `yaml:"connect_timeout" env:"MONGODB_CONNECT_TIMEOUT" env-default:"10s"`
	MaxPoolSize    uint64        `yaml:"max_pool_size" env:"MONGODB_MAX_POOL_SIZE" env-default:"50"`
}

// Redis структура для настройки подключения к redis. Пустой адрес отключает redis.
type Redis struct {
	Address     string        `yaml:"address" env:"REDIS_ADDRESS"`
	Password    string        `yaml:"password" env:"REDIS_PASSWORD"`
	User        string        `yaml:"user" env:"REDIS_USER"`
	DB          int           `yaml:"db" env:"REDIS_DB" env-default:"0"`
	MaxRetries  int           `yaml:"max_retries" env:"REDIS_MAX_RETRIES" env-default:"3"`
	DialTimeout time.Duration `yaml:"dial_timeout" env:"REDIS_DIAL_TIMEOUT" env-default:"5s"`
	Timeout     time.Duration `yaml:"timeout" env:"REDIS_TIMEOUT" env-default:"3s"`
}

// RabbitMQ настройки брокера. Пустой URL отключает публикацию событий.
type RabbitMQ struct {
	URL        string        `yaml:"url" env:"RABBITMQ_URL"`
	MaxRetries int           `yaml:"max_retries" env:"RABBITMQ_MAX_RETRIES" env-default:"5"`
	RetryDelay time.Duration `yaml:"retry_delay" env:"RABBITMQ_RETRY_DELAY" env-default:"2s"`
}

// SMTP настройки почтового сервера для уведомлений.
type SMTP struct {
	Host     string `yaml:"host" env:"SMTP_HOST"`
	Port     string `yaml:"port" env:"SMTP_PORT" env-default:"587"`
	User     string `yaml:"user" env:"SMTP_USER"`
	Password string `yaml:"password" env:"SMTP_PASS"`
	NotifyTo string `yaml:"notify_to" env:"SMTP_NOTIFY_TO"`
}

// HTTPServer структура для настройки сервера
type HTTPServer struct {
	Address     string        `yaml:"address" env:"HTTP_ADDRESS" env-default:":3001"`
	Timeout     time.Duration `yaml:"timeout" env:"HTTP_TIMEOUT" env-default:"10s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env:"HTTP_IDLE_TIMEOUT" env-default:"60s"`
}

// JWTToken структура для работы с jwt-токеном
type JWTToken struct {
	Secret   string        `yaml:"secret" env:"JWT_SECRET"`
	TokenTTL time.Duration `yaml:"token_ttl" env:"JWT_TOKEN_TTL" env-default:"24h"`
}

// Auth настройки регистрации.
type Auth struct {
	AllowRoleOnRegister bool `yaml:"allow_role_on_register" env:"AUTH_ALLOW_ROLE_ON_REGISTER" env-default:"false"`
}

// Limits ограничения частоты запросов по IP.
type Limits struct {
	APIRequests     int           `yaml:"api_requests" env:"LIMIT_API_REQUESTS" env-default:"100"`
	APIWindow       time.Duration `yaml:"api_window" env:"LIMIT_API_WINDOW" env-default:"15m"`
	ContactRequests int           `yaml:"contact_requests" env:"LIMIT_CONTACT_REQUESTS" env-default:"5"`
	ContactWindow   time.Duration `yaml:"contact_window" env:"LIMIT_CONTACT_WINDOW" env-default:"15m"`
}

// Cache время жизни закэшированных ответов.
type Cache struct {
	StatsTTL time.Duration `yaml:"stats_ttl" env:"CACHE_STATS_TTL" env-default:"1m"`
}

// Load читает конфиг из файла CONFIG_PATH (если задан) и переменных окружения,
// затем проверяет его.
func Load() (*Config, error) {
	return load("config.Load", (*Config).Validate)
}

// LoadNotifier читает конфиг процесса уведомлений. JWT и MongoDB ему не нужны.
func LoadNotifier() (*Config, error) {
	return load("config.LoadNotifier", (*Config).ValidateNotifier)
}

func load(op string, validate func(*Config) error) (*Config, error) {
	var cfg Config

	if configPath := os.Getenv("CONFIG_PATH"); configPath != "" {
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("%s: file %s does not exist", op, configPath)
		}
		if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	} else if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &cfg, nil
}

// MustLoad загружает конфиг и завершает процесс, если он некорректен.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		log.Fatalf("cannot load config: %s", err)
	}
	return cfg
}

// Validate проверяет обязательные параметры.
func (c *Config) Validate() error {
	secret := strings.TrimSpace(c.JWTToken.Secret)
	switch {
	case secret == "":
		return ErrMissingJWTSecret
	case secret == InsecureDefaultSecret:
		return ErrInsecureJWTSecret
	}
	if strings.TrimSpace(c.Mongo.URI) == "" {
		return ErrMissingMongoURI
	}
	l := c.Limits
	if l.APIRequests <= 0 || l.ContactRequests <= 0 || l.APIWindow <= 0 || l.ContactWindow <= 0 {
		return ErrInvalidLimits
	}
	return nil
}

// ValidateNotifier проверяет параметры брокера и почтового сервера.
func (c *Config) ValidateNotifier() error {
	if strings.TrimSpace(c.RabbitMQ.URL) == "" {
		return ErrMissingRabbitMQURL
	}
	if strings.TrimSpace(c.SMTP.Host) == "" {
		return ErrMissingSMTPHost
	}
	return nil
}

func (c *Config) String() string {
	return fmt.Sprintf(
		"Env: %s\n"+
			"FrontendURL: %s\n"+
			"Mongo:\n"+
			"  URI: %s\n"+
			"  Database: %s\n"+
			"Redis:\n"+
			"  Address: %s\n"+
			"  Password: %s\n"+
			"  DB: %d\n"+
			"RabbitMQ:\n"+
			"  URL: %s\n"+
			"SMTP:\n"+
			"  Host: %s\n"+
			"  User: %s\n"+
			"  Password: %s\n"+
			"HTTPServer:\n"+
			"  Address: %s\n"+
			"  Timeout: %s\n"+
			"  IdleTimeout: %s\n"+
			"JWTToken:\n"+
			"  Secret: %s\n"+
			"  TokenTTL: %s\n",
		c.Env,
		c.FrontendURL,
		redact(c.Mongo.URI),
		c.Mongo.Database,
		c.Redis.Address,
		redact(c.Redis.Password),
		c.Redis.DB,
		redact(c.RabbitMQ.URL),
		c.SMTP.Host,
		c.SMTP.User,
		redact(c.SMTP.Password),
		c.HTTPServer.Address,
		c.HTTPServer.Timeout,
		c.HTTPServer.IdleTimeout,
		redact(c.JWTToken.Secret),
		c.JWTToken.TokenTTL,
	)
}

func redact(s string) string {
	if s == "" {
		return ""
	}
	return "***"
}
