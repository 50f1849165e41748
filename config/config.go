package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

type Line struct {
	ChannelSecret      string `mapstructure:"channelSecret" validate:"required"`
	ChannelAccessToken string `mapstructure:"channelAccessToken" validate:"required"`
}

type Gemini struct {
	APIKey      string  `mapstructure:"apiKey" validate:"required"`
	Model       string  `mapstructure:"model" validate:"required"`
	Temperature float64 `mapstructure:"temperature"`
}

type Places struct {
	APIKey   string `mapstructure:"apiKey" validate:"required"`
	Language string `mapstructure:"language" validate:"required"`
}

type Redis struct {
	Host string `mapstructure:"host" validate:"required"`
	Port string `mapstructure:"port" validate:"required"`
}

func (r Redis) Addr() string {
	return fmt.Sprintf("%s:%s", r.Host, r.Port)
}

type Server struct {
	Port int    `mapstructure:"port" validate:"required"`
	Host string `mapstructure:"host"`
}

func (s *Server) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

type Callback struct {
	BaseURL string `mapstructure:"baseURL" validate:"required,url"`
}

type Bot struct {
	MaxRecommendations int  `mapstructure:"maxRecommendations" validate:"min=1"`
	MinReviewRating    int  `mapstructure:"minReviewRating" validate:"min=1,max=5"`
	OnlyOpen           bool `mapstructure:"onlyOpen"`
	HistoryTurns       int  `mapstructure:"historyTurns" validate:"min=1"`
	HistoryTTLSeconds  int  `mapstructure:"historyTtlSeconds" validate:"min=1"`
	ReviewWorkers      int  `mapstructure:"reviewWorkers" validate:"min=1"`
}

func (b Bot) HistoryTTL() time.Duration {
	return time.Duration(b.HistoryTTLSeconds) * time.Second
}

type Config struct {
	Line     Line     `mapstructure:"line"`
	Gemini   Gemini   `mapstructure:"gemini"`
	Places   Places   `mapstructure:"places"`
	Redis    Redis    `mapstructure:"redis"`
	Server   Server   `mapstructure:"server"`
	Callback Callback `mapstructure:"callback"`
	Bot      Bot      `mapstructure:"bot"`
}

func setDefaults() {
	viper.SetDefault("gemini.model", "gemini-1.5-flash-latest")
	viper.SetDefault("gemini.temperature", 0.3)
	viper.SetDefault("places.language", "zh-TW")
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 5000)
	viper.SetDefault("bot.maxRecommendations", 5)
	viper.SetDefault("bot.minReviewRating", 4)
	viper.SetDefault("bot.onlyOpen", false)
	viper.SetDefault("bot.historyTurns", 10)
	viper.SetDefault("bot.historyTtlSeconds", 3600)
	viper.SetDefault("bot.reviewWorkers", 3)
}

func LoadConfig() *Config {
	viper.SetConfigFile("./config/config.yaml")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		log.Fatal(err)
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		log.Fatal(err)
	}

	if err := Validate(&config); err != nil {
		log.Fatal(err)
	}

	return &config
}

// Validate fails fast on missing credentials or out-of-range tuning values.
func Validate(c *Config) error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	return nil
}
