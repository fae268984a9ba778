package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	units "github.com/docker/go-units"
	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"

	"github.com/mdwit/spec2admin/internal/logging"
	"github.com/mdwit/spec2admin/internal/parser"
)

// Переменные окружения
const (
	EnvSource          = "SPEC2ADMIN_SOURCE"
	EnvOutput          = "SPEC2ADMIN_OUTPUT"
	EnvBaseURL         = "SPEC2ADMIN_BASE_URL"
	EnvMaxDocumentSize = "SPEC2ADMIN_MAX_DOCUMENT_SIZE"
	EnvSessionDir      = "SPEC2ADMIN_SESSION_DIR"
	EnvLogLevel        = "SPEC2ADMIN_LOG_LEVEL"
	EnvLogFormat       = "SPEC2ADMIN_LOG_FORMAT"
)

// ErrSourceRequired источник документа не указан; тот же sentinel, что
// возвращает parser.LoadSource.
var ErrSourceRequired = parser.ErrSourceRequired

var validate = validator.New()

type Config struct {
	Source              string         `json:"source" toml:"source"`
	Output              string         `json:"output" toml:"output" validate:"required"`
	BaseURL             string         `json:"baseUrl" toml:"base_url" validate:"omitempty,url"` // базовый URL API для вызовов ресурсов
	Title               string         `json:"title" toml:"title"`
	MaxDocumentSize     string         `json:"maxDocumentSize" toml:"max_document_size"` // например "10MB"; пусто значит без ограничения
	DropNestedRefs      bool           `json:"dropNestedRefs" toml:"drop_nested_refs"`
	IgnoreDocumentBlock bool           `json:"ignoreDocumentBlock" toml:"ignore_document_block"`
	SessionDir          string         `json:"sessionDir" toml:"session_dir" validate:"required"`
	Logging             logging.Config `json:"logging" toml:"logging"`
}

func DefaultConfig() *Config {
	return &Config{
		Output:     "./admin",
		SessionDir: defaultSessionDir(),
		Logging: logging.Config{
			Level:  logging.LevelWarn,
			Format: logging.FormatText,
		},
	}
}

// LoadFromFile читает конфиг; формат определяется по расширению
// (.toml, иначе JSON). Незаданные поля берутся из DefaultConfig.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := DefaultConfig()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	default:
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	return cfg, nil
}

// Finalize применяет значения по умолчанию, переменные окружения и
// проверяет настройки. Источник не проверяется: см. Validate.
func (c *Config) Finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if _, err := c.MaxDocumentBytes(); err != nil {
		return err
	}
	if err := c.Logging.Finalize(&logging.Env{Level: EnvLogLevel, Format: EnvLogFormat}); err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	return nil
}

// Validate проверяет, что задан источник документа.
func (c *Config) Validate() error {
	if c.Source == "" {
		return fmt.Errorf("%w: pass it as an argument or set \"source\" in config", ErrSourceRequired)
	}
	return nil
}

// MaxDocumentBytes возвращает ограничение размера документа в байтах.
func (c *Config) MaxDocumentBytes() (int64, error) {
	if c.MaxDocumentSize == "" {
		return 0, nil
	}
	n, err := units.FromHumanSize(c.MaxDocumentSize)
	if err != nil {
		return 0, fmt.Errorf("invalid max document size %q: %w", c.MaxDocumentSize, err)
	}
	return n, nil
}

func (c *Config) loadDefaults() {
	defaults := DefaultConfig()
	if c.Output == "" {
		c.Output = defaults.Output
	}
	if c.SessionDir == "" {
		c.SessionDir = defaults.SessionDir
	}
}

func (c *Config) loadEnv() {
	if v := os.Getenv(EnvSource); v != "" {
		c.Source = v
	}
	if v := os.Getenv(EnvOutput); v != "" {
		c.Output = v
	}
	if v := os.Getenv(EnvBaseURL); v != "" {
		c.BaseURL = v
	}
	if v := os.Getenv(EnvMaxDocumentSize); v != "" {
		c.MaxDocumentSize = v
	}
	if v := os.Getenv(EnvSessionDir); v != "" {
		c.SessionDir = v
	}
}

func defaultSessionDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "spec2admin")
	}
	return ".spec2admin"
}
