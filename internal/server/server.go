package server

import (
	"context"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/mobilefit/companion/internal/cache"
	"github.com/mobilefit/companion/internal/config"
	"github.com/mobilefit/companion/internal/handler"
	"github.com/mobilefit/companion/internal/infrastructure/weatherapi"
	"github.com/mobilefit/companion/internal/infrastructure/workoutapi"
	"github.com/mobilefit/companion/internal/repository"
	"github.com/mobilefit/companion/internal/service"
	"github.com/mobilefit/companion/internal/state"
	"github.com/mobilefit/companion/internal/telemetry"
	"github.com/redis/go-redis/v9"
)

// AppDependencies holds the dependencies required to start the application
type AppDependencies struct {
	Config      *config.Config
	RedisClient *redis.Client
}

// NewApp creates and configures the Fiber application with the given
// dependencies. Persisted session state is rehydrated here, before any
// route can be served.
func NewApp(deps AppDependencies) *fiber.App {
	// Persistent key-value store backing the session state
	kv, err := repository.NewRedisKV(deps.RedisClient, deps.Config.Storage.EncryptionKey)
	if err != nil {
		log.Fatalf("Failed to initialize KV store: %v", err)
	}

	// Session state: construct, rehydrate, then open for transitions
	container := state.NewContainer()
	gateway := state.NewGateway(kv)
	gateway.Rehydrate(context.Background(), container)

	// Remote resource cache shared by workouts and weather
	resourceCache := cache.NewResourceCache()

	// API clients
	workoutClient := workoutapi.NewClient(workoutapi.Config{
		BaseURL: deps.Config.WorkoutAPI.BaseURL,
	})
	weatherClient := weatherapi.NewClient(weatherapi.Config{
		BaseURL: deps.Config.Weather.BaseURL,
		APIKey:  deps.Config.Weather.APIKey,
	})
	if deps.Config.Weather.APIKey == "" {
		log.Println("Warning: WEATHER_API_KEY not set, weather endpoints degraded")
	}

	// Repositories and services
	workoutRepo := repository.NewCachedWorkoutRepository(workoutClient, resourceCache)
	workoutService := service.NewWorkoutService(workoutRepo)
	weatherService := service.NewWeatherService(weatherClient, resourceCache)

	// Handlers
	workoutHandler := handler.NewWorkoutHandler(workoutService)
	weatherHandler := handler.NewWeatherHandler(weatherService)
	stateHandler := handler.NewStateHandler(container)

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "Workout Companion API",
		ErrorHandler: customErrorHandler,
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(telemetry.FiberMiddleware())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, PUT, PATCH, DELETE, OPTIONS",
	}))

	// Health check endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "healthy",
			"service": "workout-companion",
		})
	})

	// API v1 routes
	v1 := app.Group("/v1")

	workouts := v1.Group("/workouts")
	workouts.Get("/", workoutHandler.ListWorkouts)
	workouts.Post("/", workoutHandler.SaveWorkout)
	workouts.Get("/:id", workoutHandler.GetWorkout)
	workouts.Delete("/:id", workoutHandler.DeleteWorkout)
	workouts.Patch("/:id/complete", workoutHandler.CompleteWorkout)

	v1.Get("/summary/weekly", workoutHandler.WeeklySummary)

	weather := v1.Group("/weather")
	weather.Get("/current", weatherHandler.CurrentWeather)
	weather.Get("/forecast", weatherHandler.Forecast)

	sessionState := v1.Group("/state")
	sessionState.Get("/", stateHandler.GetState)
	sessionState.Put("/selected-workout", stateHandler.SelectWorkout)
	sessionState.Put("/selected-date", stateHandler.SetSelectedDate)
	sessionState.Put("/filter", stateHandler.SetFilterType)
	sessionState.Post("/completed/:id", stateHandler.MarkCompleted)
	sessionState.Delete("/completed/:id", stateHandler.MarkNotCompleted)

	return app
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}
	log.Printf("Error: %v", err)
	return c.Status(code).JSON(fiber.Map{
		"error": err.Error(),
	})
}
