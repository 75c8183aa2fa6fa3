package bootstrap

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/yigit/coursereview/internal/app/controllers"
	"github.com/yigit/coursereview/internal/app/migrations"
	"github.com/yigit/coursereview/internal/app/repositories"
	"github.com/yigit/coursereview/internal/app/routes"
	"github.com/yigit/coursereview/internal/app/services"
	"github.com/yigit/coursereview/internal/config"
	"github.com/yigit/coursereview/internal/db"
	"github.com/yigit/coursereview/internal/middleware"
	"github.com/yigit/coursereview/internal/pkg/logger"
	"github.com/yigit/coursereview/internal/seed"
)

// DefaultConfigPath is read unless CONFIG_PATH is set.
const DefaultConfigPath = "config.yaml"

// Dependencies holds the wired application graph.
type Dependencies struct {
	Repositories     *repositories.Repositories
	AggregateService services.AggregateService
	ReviewService    services.ReviewService
	SearchService    services.SearchService
	ProfessorService services.ProfessorService
	Controllers      routes.Controllers
}

// LoadConfigAndSetupLogger loads the configuration and configures the global logger from it.
func LoadConfigAndSetupLogger() (*config.Config, zerolog.Logger, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = DefaultConfigPath
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Str("path", configPath).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	format := strings.ToLower(cfg.Logging.Format)
	lgr := logger.Configure(logger.Config{
		Level:   cfg.Logging.Level,
		Pretty:  format == "console" || format == "pretty",
		Service: "coursereview",
	})
	lgr.Info().
		Str("mode", cfg.Server.Mode).
		Str("logLevel", cfg.Logging.Level).
		Msg("Configuration loaded")

	return cfg, lgr, nil
}

// SetupDatabase connects to PostgreSQL and applies pending migrations when enabled.
func SetupDatabase(cfg *config.Config, lgr zerolog.Logger) (*db.PostgresDB, error) {
	database, err := db.NewPostgresDB(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	lgr.Info().
		Str("host", cfg.Database.Host).
		Str("database", cfg.Database.DBName).
		Msg("Database connection established")

	if cfg.Database.MigrationsOnRun {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()

		if err := migrations.NewMigrator(database).Up(ctx); err != nil {
			database.Close()
			return nil, fmt.Errorf("failed to apply migrations: %w", err)
		}
		lgr.Info().Msg("Database migrations applied")
	}

	return database, nil
}

// BuildDependencies wires repositories, services and controllers, and seeds the
// catalogue when enabled.
func BuildDependencies(cfg *config.Config, database *db.PostgresDB, lgr zerolog.Logger) (*Dependencies, error) {
	repos := repositories.NewRepositories()

	aggregateService := services.NewAggregateService(repos.RatingRepository, repos.CourseRepository)
	reviewService := services.NewReviewService(database, repos, aggregateService, services.ReviewRulesFromConfig(cfg))
	searchService := services.NewSearchService(database.Querier(), repos.ProfessorRepository)
	professorService := services.NewProfessorService(database, repos)

	if cfg.Seed.Enabled {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := seed.CreateDefaultData(ctx, professorService, lgr); err != nil {
			return nil, fmt.Errorf("failed to seed default data: %w", err)
		}
	}

	return &Dependencies{
		Repositories:     repos,
		AggregateService: aggregateService,
		ReviewService:    reviewService,
		SearchService:    searchService,
		ProfessorService: professorService,
		Controllers: routes.Controllers{
			Review:    controllers.NewReviewController(reviewService),
			Search:    controllers.NewSearchController(searchService),
			Professor: controllers.NewProfessorController(professorService),
			Health:    controllers.NewHealthController(database),
		},
	}, nil
}

// SetupRouter builds the gin engine with middleware, API routes and the metrics endpoint.
func SetupRouter(cfg *config.Config, deps *Dependencies, lgr zerolog.Logger) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(middleware.RequestLogger(), middleware.Recovery())
	if cfg.Metrics.Enabled {
		router.Use(middleware.Metrics())
		router.GET(cfg.Metrics.Path, gin.WrapH(promhttp.Handler()))
		lgr.Info().Str("path", cfg.Metrics.Path).Msg("Prometheus metrics endpoint enabled")
	}

	routes.SetupRouter(router, deps.Controllers)

	return router
}
