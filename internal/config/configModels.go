package config

import (
	"sync"
	"time"
)

type Config struct {
	Env           string           `yaml:"env" env:"ENV" env-default:"local"`
	HttpServer    HttpServerConfig `yaml:"httpServer"`
	DBConfig      DBConfig         `yaml:"db"`
	BotConfig     BotConfig        `yaml:"bot"`
	ScraperConfig ScraperConfig    `yaml:"scraper"`
	configPath    string
	mu            sync.RWMutex
}

type HttpServerConfig struct {
	Enabled bool          `yaml:"enabled" env:"HTTP_ENABLED" env-default:"true"`
	Address string        `yaml:"address" env:"HTTP_ADDRESS" env-default:"localhost"`
	Port    string        `yaml:"port" env:"HTTP_PORT" env-default:"8080"`
	Timeout time.Duration `yaml:"timeout" env:"HTTP_TIMEOUT" env-default:"5s"`
	Secret  string        `yaml:"secret" env:"HTTP_SECRET" env-default:"secret"`
}

type DBConfig struct {
	Driver   string `yaml:"driver" env:"DB_DRIVER" env-default:"sqlite3"` // postgres | sqlite3
	Path     string `yaml:"path" env:"DB_PATH" env-default:"tournaments.db"`
	Host     string `yaml:"host" env:"DB_HOST" env-default:"localhost"`
	Port     string `yaml:"port" env:"DB_PORT" env-default:"5432"`
	Name     string `yaml:"name" env:"DB_NAME" env-default:"postgres"`
	User     string `yaml:"user" env:"DB_USER" env-default:"user"`
	Password string `yaml:"password" env:"DB_PASSWORD" env-default:"password"`
	SSLMode  string `yaml:"sslmode" env:"DB_SSLMODE" env-default:"disable"`
}

type AIConfig struct {
	AIApiToken       string  `yaml:"aiapitoken" env:"AI_API_TOKEN" env-default:""`
	ModelName        string  `yaml:"modelName" env:"AI_MODEL_NAME" env-default:"openai/gpt-4o-mini"`
	SystemRolePrompt string  `yaml:"systemRolePrompt" env-default:"Ты помогаешь администратору падел-клуба писать короткие анонсы турниров на русском языке."`
	Timeout          int     `yaml:"timeout" env:"AI_TIMEOUT" env-default:"60"` //in seconds
	MaxTokens        int     `yaml:"maxTokens" env-default:"600"`
	Temperature      float32 `yaml:"temperature" env-default:"0.7"`
}

type BotConfig struct {
	TgbotApiToken string        `yaml:"tgbot_apitoken" env:"TGBOT_APITOKEN"` // обязательны для serve, см. ValidateBot
	AdminID       int64         `yaml:"adminID" env:"ADMIN_ID"`
	GroupChatID   int64         `yaml:"groupChatID" env:"GROUP_CHAT_ID"`
	TopicID       int           `yaml:"topicID" env:"TOPIC_ID" env-default:"0"`
	VenuesFile    string        `yaml:"venuesFile" env:"VENUES_FILE" env-default:"venues.txt"`
	SessionTTL    time.Duration `yaml:"sessionTTL" env:"SESSION_TTL" env-default:"0s"` // 0 — сессия не истекает
	UpdateTimeout int           `yaml:"updateTimeout" env-default:"30"`
	AI            AIConfig      `yaml:"AI"`
}

// SiteConfig описывает источник турниров.
type SiteConfig struct {
	Name           string `yaml:"name"`           // Имя скрапера: padelteams | tiepadel
	URL            string `yaml:"url"`            // URL страницы или метода API
	BaseURL        string `yaml:"baseURL"`        // База для относительных ссылок
	PageSize       int    `yaml:"pageSize"`       // Размер страницы API
	Federation     string `yaml:"federation"`     // Промоутер, которого оставляем
	ExcludeKeyword string `yaml:"excludeKeyword"` // Слово в названии, исключающее турнир
	Country        int    `yaml:"country"`
	Region         int    `yaml:"region"`
}

type ScraperConfig struct {
	JobBufferSize int           `yaml:"jobBufferSize" env:"SCRAPER_JOB_BUFFER_SIZE" env-default:"10"`
	WorkersCount  int           `yaml:"workersCount" env:"SCRAPER_WORKERS_COUNT" env-default:"2"`
	Timeout       int           `yaml:"timeout" env:"SCRAPER_TIMEOUT" env-default:"30"` //in seconds
	Interval      time.Duration `yaml:"interval" env:"CHECK_INTERVAL" env-default:"60m"`
	UserAgent     string        `yaml:"userAgent" env:"SCRAPER_USER_AGENT" env-default:"tournamentBot/1.0"`
	Sites         []SiteConfig  `yaml:"sites"` // Список источников
}

// GetTimeout возвращает таймаут запроса к AI.
func (c AIConfig) GetTimeout() time.Duration {
	return time.Duration(c.Timeout) * time.Second
}

// GetTimeout возвращает таймаут одного HTTP-запроса скрапера.
func (c ScraperConfig) GetTimeout() time.Duration {
	return time.Duration(c.Timeout) * time.Second
}

// DefaultSites — источники по умолчанию, если в конфиге список пуст.
func DefaultSites() []SiteConfig {
	return []SiteConfig{
		{
			Name:    "padelteams",
			URL:     "https://padelteams.pt/infoclub/competitions?k=YmlkPTgy",
			BaseURL: "https://padelteams.pt",
		},
		{
			Name:           "tiepadel",
			URL:            "https://www.tiepadel.com/methods.aspx/Get_Find_Tournaments",
			BaseURL:        "https://www.tiepadel.com",
			PageSize:       10,
			Federation:     "Federação Portuguesa de Padel",
			ExcludeKeyword: "liga",
			Country:        196,
			Region:         11,
		},
	}
}
