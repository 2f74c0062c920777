package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/ilyakaznacheev/cleanenv"
	"gopkg.in/yaml.v3"
)

// MustLoad читает конфиг и паникует при ошибке.
func MustLoad(configPath string) *Config {
	cfg, err := Load(configPath)
	if err != nil {
		panic(err)
	}
	return cfg
}

// Load читает конфиг из YAML-файла (путь из аргумента или CONFIG_PATH)
// с переопределением из переменных окружения. Без файла читается только окружение.
func Load(configPath string) (*Config, error) {
	op := "config.Load()"

	if configPath == "" {
		configPath = os.Getenv("CONFIG_PATH")
	}

	var cfg Config

	if configPath == "" {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("%s: cannot read env: %w", op, err)
		}
	} else {
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("%s: config file does not exist: %s", op, configPath)
		}
		if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
			return nil, fmt.Errorf("%s: cannot read config: %w", op, err)
		}
		cfg.configPath = configPath
	}

	if len(cfg.ScraperConfig.Sites) == 0 {
		cfg.ScraperConfig.Sites = DefaultSites()
	}
	for i := range cfg.ScraperConfig.Sites {
		if cfg.ScraperConfig.Sites[i].PageSize <= 0 {
			cfg.ScraperConfig.Sites[i].PageSize = 10
		}
	}

	if cfg.ScraperConfig.WorkersCount <= 0 {
		cfg.ScraperConfig.WorkersCount = 1
	}

	return &cfg, nil
}

// ValidateBot проверяет поля, без которых бот не может работать.
// Команды, не обращающиеся к Telegram, её не вызывают.
func (c *Config) ValidateBot() error {
	op := "config.ValidateBot()"

	var missing []string
	if c.BotConfig.TgbotApiToken == "" {
		missing = append(missing, "TGBOT_APITOKEN")
	}
	if c.BotConfig.AdminID == 0 {
		missing = append(missing, "ADMIN_ID")
	}
	if c.BotConfig.GroupChatID == 0 {
		missing = append(missing, "GROUP_CHAT_ID")
	}

	if len(missing) > 0 {
		return fmt.Errorf("%s: required bot settings are empty: %s", op, strings.Join(missing, ", "))
	}
	return nil
}

// AIModel возвращает текущую модель AI.
func (c *Config) AIModel() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.BotConfig.AI.ModelName
}

// SetAIModel меняет модель AI и сохраняет конфиг на диск.
func (c *Config) SetAIModel(model string) error {
	c.mu.Lock()
	c.BotConfig.AI.ModelName = model
	c.mu.Unlock()

	return c.Write()
}

// Write сохраняет текущий конфиг в YAML-файл, из которого он был прочитан.
func (c *Config) Write() error {
	op := "config.Write()"

	if c.configPath == "" {
		return fmt.Errorf("%s: config was loaded from env, nothing to write", op)
	}

	c.mu.RLock()
	data, err := yaml.Marshal(c)
	c.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := os.WriteFile(c.configPath, data, 0644); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}
