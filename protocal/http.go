package protocal

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"restaurant-concierge/configs"
	httpAdapter "restaurant-concierge/internal/adapters/input/http"
	"restaurant-concierge/internal/adapters/output/gemini"
	"restaurant-concierge/internal/adapters/output/lmstudio"
	"restaurant-concierge/internal/adapters/output/memory"
	"restaurant-concierge/internal/adapters/output/openweather"
	"restaurant-concierge/internal/adapters/output/postgres"
	redisAdapter "restaurant-concierge/internal/adapters/output/redis"
	"restaurant-concierge/internal/application"
	"restaurant-concierge/internal/ports/output"
	"restaurant-concierge/pkg/database_driver/gorm"

	swagger "github.com/arsmn/fiber-swagger/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/sirupsen/logrus"
)

type config struct {
	ENV string `mapstructure:"env"`
}

// ServeHTTP func
func ServeHTTP() error {
	app := fiber.New(fiber.Config{
		AppName: "restaurant-concierge",
	})
	var cfg config
	flag.StringVar(&cfg.ENV, "env", "", "the environment to use")
	flag.Parse()
	configs.InitViper("./configs", cfg.ENV)
	conf := configs.GetViper()

	if conf.App.Env == "production" {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	}
	if conf.App.Debug {
		logrus.SetLevel(logrus.DebugLevel)
	}
	logrus.Info(conf.Env)

	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept,Authorization",
	}))
	dbConGorm, err := gorm.ConnectToPostgreSQL(
		conf.Postgres.Host,
		conf.Postgres.Port,
		conf.Postgres.Username,
		conf.Postgres.Password,
		conf.Postgres.DbName,
		conf.Postgres.SSLMode,
	)
	if err != nil {
		return err
	}

	// Wire up the hexagonal architecture layers
	// Output adapters
	bookingRepo := postgres.NewBookingRepository(dbConGorm.Postgres)
	lm, closeLM, err := newLanguageModel(conf)
	if err != nil {
		gorm.DisconnectPostgres(dbConGorm.Postgres)
		return err
	}
	weatherCache, closeCache := newWeatherCache(conf.Redis)
	weather := application.NewWeatherService(
		openweather.NewOpenWeatherAdapter(conf.Weather),
		weatherCache,
		conf.Weather.Location,
		time.Duration(conf.Weather.CacheTTL)*time.Second,
	)
	store := memory.NewMemorySessionStore(conf.Session.MaxHistory)

	// Application service (use case)
	srv := application.NewConversationService(lm, weather, bookingRepo)

	// Input adapters
	hdl := httpAdapter.New(dbConGorm.Postgres, store)
	sessionHdl := httpAdapter.NewSessionHandler(srv, store, httpAdapter.SessionConfig{
		PingInterval:    time.Duration(conf.Session.PingInterval) * time.Second,
		PongTimeout:     time.Duration(conf.Session.PongTimeout) * time.Second,
		MaxMessageBytes: conf.Session.MaxMessageBytes,
		RateLimit:       conf.Session.RateLimit,
		RateBurst:       conf.Session.RateBurst,
		InboundBuffer:   conf.Session.InboundBuffer,
	})

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	go func() {
		for range c {
			log.Println("Gracefull shut down ...")
			err := app.ShutdownWithTimeout(10 * time.Second)
			if err != nil {
				log.Println("Error when shutdown server: ", err)
			}
			closeLM()
			closeCache()
			gorm.DisconnectPostgres(dbConGorm.Postgres)
		}
	}()

	app.Get("/swagger/*", swagger.HandlerDefault) // default
	app.Get("/health", hdl.HealthCheck)

	app.Use("/ws", sessionHdl.Upgrade)
	app.Get("/ws", sessionHdl.Handler())

	logrus.Println("Listerning on port: ", conf.App.Port)
	return app.Listen(":" + conf.App.Port)
}

// newLanguageModel selects the configured backend. The returned func releases it.
func newLanguageModel(conf *configs.Config) (output.LanguageModel, func(), error) {
	switch strings.ToLower(conf.App.LanguageModel) {
	case "", "lmstudio":
		client, err := lmstudio.NewLMStudioClientAdapter(conf.LMStudio)
		if err != nil {
			return nil, nil, err
		}
		logrus.Infof("Language model: LM Studio at %s", conf.LMStudio.BaseURL)
		return client, func() {}, nil
	case "gemini":
		client, err := gemini.NewGeminiAdapter(context.Background(), conf.Gemini, conf.Session.MaxHistory)
		if err != nil {
			return nil, nil, err
		}
		logrus.Info("Language model: Gemini")
		return client, func() {
			if err := client.Close(); err != nil {
				logrus.Warnf("Failed to close Gemini client: %v", err)
			}
		}, nil
	}
	return nil, nil, fmt.Errorf("unknown language model %q", conf.App.LanguageModel)
}

// newWeatherCache connects the optional redis cache. Any failure runs without a cache.
func newWeatherCache(conf configs.Redis) (output.WeatherCache, func()) {
	if conf.Addr == "" {
		return nil, func() {}
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	client, err := redisAdapter.NewClient(ctx, conf.Addr, conf.Password, conf.DB)
	if err != nil {
		logrus.Warnf("Weather cache disabled: %v", err)
		return nil, func() {}
	}
	logrus.Infof("Weather cache: redis at %s", conf.Addr)
	return redisAdapter.NewWeatherCache(client), func() {
		if err := client.Close(); err != nil {
			logrus.Warnf("Failed to close redis client: %v", err)
		}
	}
}
