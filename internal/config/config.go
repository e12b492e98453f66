package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Engine  EngineConfig  `mapstructure:"engine"`
	Chat    ChatConfig    `mapstructure:"chat"`
	CORS    CORSConfig    `mapstructure:"cors"`
	Client  ClientConfig  `mapstructure:"client"`
	Session SessionConfig `mapstructure:"session"`
	Log     LogConfig     `mapstructure:"log"`
}

type ServerConfig struct {
	Host           string        `mapstructure:"host"`
	Port           int           `mapstructure:"port"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
	MaxHeaderBytes int           `mapstructure:"max_header_bytes"`
}

// EngineConfig describes the inference engine the gateway relays to.
type EngineConfig struct {
	BaseURL         string        `mapstructure:"base_url"`
	DefaultModel    string        `mapstructure:"default_model"`
	HealthTimeout   time.Duration `mapstructure:"health_timeout"`
	ListTimeout     time.Duration `mapstructure:"list_timeout"`
	GenerateTimeout time.Duration `mapstructure:"generate_timeout"`
}

type ChatConfig struct {
	MaxHistoryTurns int `mapstructure:"max_history_turns"`
}

type CORSConfig struct {
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
	AllowedMethods   []string `mapstructure:"allowed_methods"`
	AllowedHeaders   []string `mapstructure:"allowed_headers"`
	ExposedHeaders   []string `mapstructure:"exposed_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
	MaxAge           int      `mapstructure:"max_age"`
}

// ClientConfig configures the browser-facing chat page process.
type ClientConfig struct {
	Host          string        `mapstructure:"host"`
	Port          int           `mapstructure:"port"`
	GatewayURL    string        `mapstructure:"gateway_url"`
	ChatTimeout   time.Duration `mapstructure:"chat_timeout"`
	ModelsTimeout time.Duration `mapstructure:"models_timeout"`
	Title         string        `mapstructure:"title"`
}

type SessionConfig struct {
	TTL             time.Duration `mapstructure:"ttl"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
	CookieName      string        `mapstructure:"cookie_name"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 90*time.Second)
	v.SetDefault("server.max_header_bytes", 1<<20)

	v.SetDefault("engine.base_url", "http://localhost:11434")
	v.SetDefault("engine.default_model", "llama2")
	v.SetDefault("engine.health_timeout", 5*time.Second)
	v.SetDefault("engine.list_timeout", 10*time.Second)
	v.SetDefault("engine.generate_timeout", 60*time.Second)

	v.SetDefault("chat.max_history_turns", 10)

	v.SetDefault("cors.allowed_origins", []string{"*"})
	v.SetDefault("cors.allowed_methods", []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"})
	v.SetDefault("cors.allowed_headers", []string{"Origin", "Content-Type", "Accept"})
	v.SetDefault("cors.exposed_headers", []string{})
	v.SetDefault("cors.allow_credentials", true)
	v.SetDefault("cors.max_age", 600)

	v.SetDefault("client.host", "0.0.0.0")
	v.SetDefault("client.port", 8501)
	v.SetDefault("client.gateway_url", "http://localhost:8000")
	v.SetDefault("client.chat_timeout", 30*time.Second)
	v.SetDefault("client.models_timeout", 10*time.Second)
	v.SetDefault("client.title", "Smart Chat App")

	v.SetDefault("session.ttl", 24*time.Hour)
	v.SetDefault("session.cleanup_interval", 10*time.Minute)
	v.SetDefault("session.cookie_name", "chat_session")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

// Load reads configuration from an optional YAML file, the environment and
// an optional .env file. A missing config file leaves every key at its default.
func Load(configPath string) (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("CHAT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// 兼容旧的环境变量名
	_ = v.BindEnv("engine.base_url", "CHAT_ENGINE_BASE_URL", "OLLAMA_URL")
	_ = v.BindEnv("engine.default_model", "CHAT_ENGINE_DEFAULT_MODEL", "DEFAULT_MODEL")
	_ = v.BindEnv("client.gateway_url", "CHAT_CLIENT_GATEWAY_URL", "BACKEND_URL")

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			v.SetConfigFile(configPath)
			v.SetConfigType("yaml")
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("read config %s: %w", configPath, err)
			}
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("stat config %s: %w", configPath, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	cfg.Engine.BaseURL = strings.TrimRight(cfg.Engine.BaseURL, "/")
	cfg.Client.GatewayURL = strings.TrimRight(cfg.Client.GatewayURL, "/")

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.Engine.DefaultModel) == "" {
		return errors.New("engine.default_model must not be empty")
	}
	if c.Engine.BaseURL == "" {
		return errors.New("engine.base_url must not be empty")
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", c.Server.Port)
	}
	if c.Client.Port < 1 || c.Client.Port > 65535 {
		return fmt.Errorf("client.port out of range: %d", c.Client.Port)
	}
	if c.Chat.MaxHistoryTurns < 0 {
		return fmt.Errorf("chat.max_history_turns must be >= 0, got %d", c.Chat.MaxHistoryTurns)
	}
	return nil
}

// Addr returns the gateway listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

func (c ClientConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
