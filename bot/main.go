package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/tmc/langchaingo/llms/googleai"

	"gourmet-linebot/config"
)

type App struct {
	config  *config.Config
	handler *Handler
	line    lineReplier
	redis   *redis.Client
}

func main() {
	cfg := config.LoadConfig()
	ctx := context.Background()

	llm, err := googleai.New(
		ctx,
		googleai.WithAPIKey(cfg.Gemini.APIKey),
		googleai.WithDefaultModel(cfg.Gemini.Model),
	)
	if err != nil {
		log.Fatal(err)
	}

	places, err := NewPlacesClient(cfg.Places.APIKey, cfg.Places.Language)
	if err != nil {
		log.Fatal(err)
	}

	rdb := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr()})
	history := NewHistoryStore(rdb, cfg.Bot.HistoryTurns, cfg.Bot.HistoryTTL())

	line, err := messaging_api.NewMessagingApiAPI(cfg.Line.ChannelAccessToken)
	if err != nil {
		log.Fatal(err)
	}

	handler := NewHandler(llm, places, history, Options{
		MaxRecommendations: cfg.Bot.MaxRecommendations,
		MinReviewRating:    cfg.Bot.MinReviewRating,
		OnlyOpen:           cfg.Bot.OnlyOpen,
		ReviewWorkers:      cfg.Bot.ReviewWorkers,
		HistoryTurns:       cfg.Bot.HistoryTurns,
		Temperature:        cfg.Gemini.Temperature,
	})

	app := &App{
		config:  cfg,
		handler: handler,
		line:    line,
		redis:   rdb,
	}

	if err := app.Run(); err != nil {
		log.Fatalf("failed to run the bot: %v", err)
	}
}

func (a *App) Run() error {
	r := gin.Default()
	r.Use(metricsMiddleware())

	r.POST("/callback", a.callback)
	r.GET("/healthz", a.healthz)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	slog.Info("webhook ready", "callback_url", a.config.Callback.BaseURL+"/callback")

	return r.Run(a.config.Server.Address())
}

func (a *App) healthz(c *gin.Context) {
	if err := a.redis.Ping(c.Request.Context()).Err(); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
