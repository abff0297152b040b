// Package config содержит конфигурацию клиента маркетплейса.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// Config содержит полную конфигурацию клиента.
type Config struct {
	App     AppConfig
	API     APIConfig
	Session SessionConfig
	Redis   RedisConfig
	Jaeger  JaegerConfig
}

// AppConfig — общие настройки приложения.
type AppConfig struct {
	Name      string `env:"APP_NAME" envDefault:"marketctl"`
	Env       string `env:"APP_ENV" envDefault:"development"`
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogPretty bool   `env:"LOG_PRETTY" envDefault:"false"`
}

// APIConfig — настройки подключения к API маркетплейса.
type APIConfig struct {
	// BaseURL — адрес API сервера (без завершающего слэша).
	BaseURL string `env:"API_BASE_URL" envDefault:"http://localhost:8080"`

	// Timeout — потолок времени на один запрос.
	// Превышение трактуется как транспортная ошибка.
	Timeout time.Duration `env:"API_TIMEOUT" envDefault:"10s"`
}

// SessionConfig — настройки хранения сессии.
type SessionConfig struct {
	// Backend выбирает долговременное хранилище: "file" или "redis".
	Backend string `env:"SESSION_BACKEND" envDefault:"file"`

	// FilePath — путь к файлу сессии для file-бэкенда.
	// Пустое значение — ~/.campus-market/session.json.
	FilePath string `env:"SESSION_FILE" envDefault:""`
}

// ResolveFilePath возвращает путь к файлу сессии,
// подставляя путь в домашнем каталоге, если он не задан явно.
func (c SessionConfig) ResolveFilePath() (string, error) {
	if c.FilePath != "" {
		return c.FilePath, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("не удалось определить домашний каталог: %w", err)
	}
	return filepath.Join(home, ".campus-market", "session.json"), nil
}

// RedisConfig — настройки подключения к Redis для redis-бэкенда сессии.
// Используется на общих терминалах (киосках), где файловое хранилище недоступно.
type RedisConfig struct {
	Host      string `env:"REDIS_HOST" envDefault:"localhost"`
	Port      int    `env:"REDIS_PORT" envDefault:"6379"`
	Password  string `env:"REDIS_PASSWORD" envDefault:""`
	DB        int    `env:"REDIS_DB" envDefault:"0"`
	KeyPrefix string `env:"REDIS_KEY_PREFIX" envDefault:"campus-market:"`
}

// Addr возвращает адрес Redis сервера.
func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// JaegerConfig — настройки трассировки Jaeger.
// Для одноразовых запусков CLI трассировка по умолчанию выключена.
type JaegerConfig struct {
	Enabled  bool   `env:"JAEGER_ENABLED" envDefault:"false"`
	Host     string `env:"JAEGER_HOST" envDefault:"localhost"`
	OTLPPort int    `env:"JAEGER_OTLP_PORT" envDefault:"4317"`
}

// OTLPEndpoint возвращает OTLP gRPC endpoint для Jaeger.
func (c JaegerConfig) OTLPEndpoint() string {
	return fmt.Sprintf("%s:%d", c.Host, c.OTLPPort)
}

// Load загружает конфигурацию из переменных окружения.
func Load() (*Config, error) {
	// Загружаем .env файл (игнорируем ошибку, если файл не найден)
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("ошибка парсинга конфигурации: %w", err)
	}

	return cfg, nil
}

// IsDevelopment возвращает true в режиме разработки.
func (c *Config) IsDevelopment() bool {
	return c.App.Env == "development"
}
