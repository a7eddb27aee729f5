package configs

import (
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// Config struct
type Config struct {
	App      `mapstructure:"app"`
	Postgres `mapstructure:"postgres"`
	LMStudio `mapstructure:"lmstudio"`
	Gemini   `mapstructure:"gemini"`
	Weather  `mapstructure:"weather"`
	Redis    `mapstructure:"redis"`
	Session  `mapstructure:"session"`
}

// App struct
type App struct {
	Debug         bool   `mapstructure:"debug"`
	Env           string `mapstructure:"env"`
	Port          string `mapstructure:"port"`
	LanguageModel string `mapstructure:"language_model"`
}

// Postgres struct
type Postgres struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	DbName   string `mapstructure:"database"`
	SSLMode  bool   `mapstructure:"sslmode"`
}

// LMStudio struct - OpenAI-compatible endpoint settings
type LMStudio struct {
	BaseURL      string `mapstructure:"base_url"`
	Model        string `mapstructure:"model"`
	Timeout      int    `mapstructure:"timeout"`
	MaxRetries   int    `mapstructure:"max_retries"`
	SystemPrompt string `mapstructure:"system_prompt"`
}

// Gemini struct
type Gemini struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

// Weather struct - OpenWeatherMap settings
type Weather struct {
	BaseURL  string `mapstructure:"base_url"`
	APIKey   string `mapstructure:"api_key"`
	Location string `mapstructure:"location"`
	Timeout  int    `mapstructure:"timeout"`
	CacheTTL int    `mapstructure:"cache_ttl"`
}

// Redis struct - an empty Addr disables the weather cache
type Redis struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// Session struct - per-connection limits, durations in seconds
type Session struct {
	PingInterval    int     `mapstructure:"ping_interval"`
	PongTimeout     int     `mapstructure:"pong_timeout"`
	MaxMessageBytes int64   `mapstructure:"max_message_bytes"`
	MaxHistory      int     `mapstructure:"max_history"`
	RateLimit       float64 `mapstructure:"rate_limit"`
	RateBurst       int     `mapstructure:"rate_burst"`
	InboundBuffer   int     `mapstructure:"inbound_buffer"`
}

var config Config

// InitViper func
func InitViper(path, env string) {
	getConfig(path, env)
}

// GetViper func
func GetViper() *Config {
	return &config
}

func getConfig(path, env string) {
	viper.SetConfigName("config")
	viper.AddConfigPath(path)
	if env != "" {
		viper.Set("app.env", env)
	}
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	err := viper.ReadInConfig()
	if err != nil {
		panic(err)
	}
	viper.WatchConfig()
	viper.OnConfigChange(func(e fsnotify.Event) {
		logrus.Infof("Config file has changed: %s", e.Name)
	})
	err = viper.Unmarshal(&config)
	if err != nil {
		logrus.Fatalln(err)
	}
}
