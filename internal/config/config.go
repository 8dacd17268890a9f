package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"go.uber.org/zap"
)

// Типы AI клиентов.
const (
	AIClientTypeOpenAI = "openai"
	AIClientTypeOllama = "ollama"
)

// secretsDir - каталог Docker Secrets. Переменная, чтобы тесты могли подменить путь.
var secretsDir = "/run/secrets"

// ErrMissingAPIKey - ключ обязателен для OpenAI-совместимого клиента.
var ErrMissingAPIKey = errors.New("AI API key is required for openai client type")

// Config содержит конфигурацию сервера раскадровок.
type Config struct {
	Env             string        `envconfig:"ENV" default:"development"`
	HTTPServerPort  string        `envconfig:"HTTP_SERVER_PORT" default:"8080"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`

	LogLevel      string `envconfig:"LOG_LEVEL" default:"info"`
	LogEncoding   string `envconfig:"LOG_ENCODING" default:"json"`
	LogOutputPath string `envconfig:"LOG_OUTPUT_PATH" default:""`

	// Список через запятую
	CORSAllowedOrigins string `envconfig:"CORS_ALLOWED_ORIGINS" default:"http://localhost:3000"`

	// Настройки AI. По умолчанию OpenAI-совместимый эндпоинт Gemini.
	AIClientType  string        `envconfig:"AI_CLIENT_TYPE" default:"openai"`
	AIBaseURL     string        `envconfig:"AI_BASE_URL" default:"https://generativelanguage.googleapis.com/v1beta/openai/"`
	AIModel       string        `envconfig:"AI_MODEL" default:"gemini-2.5-flash"`
	AITimeout     time.Duration `envconfig:"AI_TIMEOUT" default:"120s"`
	AITemperature float64       `envconfig:"AI_TEMPERATURE" default:"1.0"`
	// Секрет: из окружения или из /run/secrets/ai_api_key
	AIAPIKey string `envconfig:"AI_API_KEY"`
}

// GetAllowedOrigins разбивает CORSAllowedOrigins на срез.
func (c *Config) GetAllowedOrigins() []string {
	if strings.TrimSpace(c.CORSAllowedOrigins) == "" {
		return nil
	}
	return strings.Split(strings.ReplaceAll(c.CORSAllowedOrigins, " ", ""), ",")
}

// IsDevelopment - локальный режим.
func (c *Config) IsDevelopment() bool {
	return strings.EqualFold(c.Env, "development")
}

// LoadConfig загружает .env (если есть), переменные окружения и секреты.
func LoadConfig(envFilePath string) (*Config, error) {
	if envFilePath != "" {
		if _, err := os.Stat(envFilePath); err == nil {
			if err := godotenv.Load(envFilePath); err != nil {
				return nil, fmt.Errorf("ошибка загрузки %s: %w", envFilePath, err)
			}
		}
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("ошибка загрузки конфигурации: %w", err)
	}

	cfg.AIClientType = strings.ToLower(strings.TrimSpace(cfg.AIClientType))
	switch cfg.AIClientType {
	case AIClientTypeOpenAI, AIClientTypeOllama:
	default:
		return nil, fmt.Errorf("неизвестный тип AI клиента: '%s'", cfg.AIClientType)
	}

	if cfg.AIAPIKey == "" {
		key, err := ReadSecret("ai_api_key")
		if err == nil {
			cfg.AIAPIKey = key
		} else if cfg.AIClientType == AIClientTypeOpenAI {
			return nil, fmt.Errorf("%w: %v", ErrMissingAPIKey, err)
		}
	}

	return &cfg, nil
}

// ReadSecret читает секрет Docker по имени.
func ReadSecret(secretName string) (string, error) {
	filePath := fmt.Sprintf("%s/%s", secretsDir, secretName)
	secretBytes, err := os.ReadFile(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to read secret file %s: %w", filePath, err)
	}
	secret := strings.TrimSpace(string(secretBytes))
	if secret == "" {
		return "", fmt.Errorf("secret file %s is empty", filePath)
	}
	return secret, nil
}

// LogFields поля для логирования загруженной конфигурации, ключ замаскирован.
func (c *Config) LogFields() []zap.Field {
	apiKey := "[НЕ ЗАДАН]"
	if c.AIAPIKey != "" {
		apiKey = "[ЗАГРУЖЕН]"
	}
	return []zap.Field{
		zap.String("env", c.Env),
		zap.String("http_port", c.HTTPServerPort),
		zap.String("log_level", c.LogLevel),
		zap.Strings("cors_origins", c.GetAllowedOrigins()),
		zap.String("ai_client_type", c.AIClientType),
		zap.String("ai_base_url", c.AIBaseURL),
		zap.String("ai_model", c.AIModel),
		zap.Duration("ai_timeout", c.AITimeout),
		zap.Float64("ai_temperature", c.AITemperature),
		zap.String("ai_api_key", apiKey),
	}
}
