package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config 服务与生成器的全部配置。
type Config struct {
	ServerAddr  string `json:"server_addr,omitempty" yaml:"server_addr,omitempty"`
	Upstream    string `json:"upstream,omitempty" yaml:"upstream,omitempty"`
	APIDocsPath string `json:"api_docs_path,omitempty" yaml:"api_docs_path,omitempty"`
	StorePath   string `json:"store_path,omitempty" yaml:"store_path,omitempty"`

	Provider string    `json:"provider,omitempty" yaml:"provider,omitempty"`
	DeepSeek LLMConfig `json:"deepseek" yaml:"deepseek"`
	OpenAI   LLMConfig `json:"openai" yaml:"openai"`
	// JSDoc 为 true 时提示词要求生成 JSDoc 注释；openai 默认开启。
	JSDoc *bool `json:"jsdoc,omitempty" yaml:"jsdoc,omitempty"`

	LogLevel    string   `json:"log_level,omitempty" yaml:"log_level,omitempty"`
	LogSuppress []string `json:"log_suppress,omitempty" yaml:"log_suppress,omitempty"`
}

// LLMConfig 单个模型提供方的配置。
type LLMConfig struct {
	Model       string  `json:"model,omitempty" yaml:"model,omitempty"`
	APIKey      string  `json:"api_key,omitempty" yaml:"api_key,omitempty"`
	BaseURL     string  `json:"base_url,omitempty" yaml:"base_url,omitempty"`
	Temperature float64 `json:"temperature,omitempty" yaml:"temperature,omitempty"`
	MaxTokens   int     `json:"max_tokens,omitempty" yaml:"max_tokens,omitempty"`
}

const (
	ProviderDeepSeek = "deepseek"
	ProviderOpenAI   = "openai"
	ProviderMock     = "mock"
)

// DefaultLogSuppress lists the host-page noise dropped from the log.
func DefaultLogSuppress() []string {
	return []string{
		"MonacoEnvironment",
		"toUrl",
		"Could not create web worker",
		"Cannot read properties of undefined",
	}
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		ServerAddr:  ":8080",
		APIDocsPath: "/v2/api-docs",
		StorePath:   "data/store.json",
		Provider:    ProviderDeepSeek,
		DeepSeek: LLMConfig{
			Model:       "deepseek-chat",
			Temperature: 0,
			MaxTokens:   5000,
		},
		OpenAI: LLMConfig{
			Model: "gpt-4o-mini",
		},
		LogLevel: "info",
		LogSuppress: DefaultLogSuppress(),
	}
}

// Load reads path (JSON, or YAML for .yaml/.yml), then applies .env and
// environment overrides. A missing file at the default location is not an
// error when allowMissing is set.
func Load(path string, allowMissing bool) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := decode(path, data, &cfg); err != nil {
				return Config{}, fmt.Errorf("parse config %s: %w", path, err)
			}
		case allowMissing && errors.Is(err, os.ErrNotExist):
		default:
			return Config{}, err
		}
	}

	_ = godotenv.Load()
	applyEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func decode(path string, data []byte, cfg *Config) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.Unmarshal(data, cfg)
	default:
		return json.Unmarshal(data, cfg)
	}
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("LLM_PROVIDER"); v != "" {
		cfg.Provider = v
	}
	if v := os.Getenv("DEEPSEEK_API_KEY"); v != "" {
		cfg.DeepSeek.APIKey = v
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		cfg.OpenAI.APIKey = v
	}
	if v := os.Getenv("OPENAI_BASE_URL"); v != "" {
		cfg.OpenAI.BaseURL = v
	}
	if v := os.Getenv("SWAGGER_UPSTREAM"); v != "" {
		cfg.Upstream = v
	}
	if v := os.Getenv("SERVER_ADDR"); v != "" {
		cfg.ServerAddr = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("HELPER_JSDOC"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.JSDoc = &b
		}
	}
}

// Validate checks the provider name and fills derived defaults.
func (c *Config) Validate() error {
	c.Provider = strings.ToLower(strings.TrimSpace(c.Provider))
	switch c.Provider {
	case ProviderDeepSeek, ProviderOpenAI, ProviderMock:
	case "":
		return errors.New("config must include provider")
	default:
		return fmt.Errorf("llm provider %s not supported", c.Provider)
	}
	if c.APIDocsPath == "" {
		c.APIDocsPath = "/v2/api-docs"
	}
	if !strings.HasPrefix(c.APIDocsPath, "/") {
		c.APIDocsPath = "/" + c.APIDocsPath
	}
	c.Upstream = strings.TrimRight(c.Upstream, "/")
	return nil
}

// UseJSDoc reports whether the prompt should ask for JSDoc comments.
func (c Config) UseJSDoc() bool {
	if c.JSDoc != nil {
		return *c.JSDoc
	}
	return c.Provider == ProviderOpenAI
}
