package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the application configuration.
type Config struct {
	Telegram    TelegramConfig `yaml:"telegram"`
	DatabaseURL string         `yaml:"-"` // Loaded from environment
}

// TelegramConfig holds the bot credentials and the audit principal.
// AdminChatID may be a group (-100...) or a personal chat (positive).
type TelegramConfig struct {
	Token       string `yaml:"token"`
	AdminChatID int64  `yaml:"admin_chat_id"`
}

// Load reads the yaml config file and the environment. A .env file is
// loaded first if present so DATABASE_URL can live there in dev.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	if token := os.Getenv("BOT_TOKEN"); token != "" {
		cfg.Telegram.Token = token
	}
	cfg.DatabaseURL = os.Getenv("DATABASE_URL")

	if cfg.Telegram.Token == "" {
		return nil, fmt.Errorf("telegram token is not set (config file or BOT_TOKEN)")
	}
	if cfg.Telegram.AdminChatID == 0 {
		return nil, fmt.Errorf("telegram.admin_chat_id is not set")
	}

	return &cfg, nil
}
