package factory

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/mcoot/banglascrabble/internal/broadcast"
	"github.com/mcoot/banglascrabble/internal/config"
	"github.com/mcoot/banglascrabble/internal/dependencies/clock"
	"github.com/mcoot/banglascrabble/internal/dependencies/random"
	"github.com/mcoot/banglascrabble/internal/locks"
	"github.com/mcoot/banglascrabble/internal/model"
	"github.com/mcoot/banglascrabble/internal/services/auth"
	"github.com/mcoot/banglascrabble/internal/services/bot"
	"github.com/mcoot/banglascrabble/internal/services/dictionary"
	"github.com/mcoot/banglascrabble/internal/services/evaluator"
	"github.com/mcoot/banglascrabble/internal/services/scoring"
	"github.com/mcoot/banglascrabble/internal/services/session"
	"github.com/mcoot/banglascrabble/internal/services/tiles"
	"github.com/mcoot/banglascrabble/internal/storage"
	"github.com/mcoot/banglascrabble/internal/storage/memory"
	redisstorage "github.com/mcoot/banglascrabble/internal/storage/redis"
	sqlstorage "github.com/mcoot/banglascrabble/internal/storage/sql"
)

// Storage type constants
const (
	StorageTypeMemory   = config.StorageMemory
	StorageTypeRedis    = config.StorageRedis
	StorageTypeSQLite   = config.StorageSQLite
	StorageTypePostgres = config.StoragePostgres
)

// DefaultSQLitePath is used when sqlite storage is selected without a DSN
const DefaultSQLitePath = "bscrabble.db"

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.Storage

	// External dependencies
	Clock  clock.Clock
	Random random.Random
	Locks  *locks.Registry[model.SessionID]

	// Services
	TilesService      *tiles.Service
	DictionaryService *dictionary.Service
	ScoringService    *scoring.Service
	EvaluatorService  *evaluator.Service
	SessionController *session.Controller
	Broadcaster       *broadcast.Coordinator
	AuthService       *auth.Service
	BotService        *bot.Service
}

// Config holds configuration for the application factory
type Config struct {
	// DictionaryPath is an extra word list loaded on top of the embedded lexicon (optional)
	DictionaryPath string
	// AuthConfig holds configuration for the auth service (optional)
	// Zero fields fall back to auth.DefaultConfig()
	AuthConfig auth.Config
	// BroadcastConfig sizes the fan-out queues (optional)
	BroadcastConfig broadcast.Config
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
	// DatabaseDSN is the SQL data source (required if StorageType is "postgres")
	DatabaseDSN string
}

// ConfigFrom translates loaded server configuration into factory configuration
func ConfigFrom(cfg *config.Config, logger *slog.Logger) Config {
	redisCfg := redisstorage.Config{
		URL:            cfg.Redis.URL,
		PoolSize:       cfg.Redis.PoolSize,
		MinIdleConns:   cfg.Redis.MinIdleConns,
		GuestPlayerTTL: cfg.Redis.GuestPlayerTTL,
		SessionTTL:     cfg.Redis.SessionTTL,
	}
	return Config{
		DictionaryPath: cfg.Dictionary.Path,
		AuthConfig: auth.Config{
			Secret:   cfg.Auth.JWTSecret,
			Issuer:   cfg.Auth.Issuer,
			TokenTTL: cfg.Auth.TokenTTL,
		},
		BroadcastConfig: broadcast.Config{
			QueueSize:    cfg.Broadcast.QueueSize,
			ClientBuffer: cfg.Broadcast.ClientBuffer,
		},
		Logger:      logger,
		StorageType: cfg.Storage.Type,
		RedisConfig: &redisCfg,
		DatabaseDSN: cfg.Database.DSN,
	}
}

// New creates a new application with all dependencies wired
func New(ctx context.Context, cfg Config) (*App, error) {
	// Use no-op logger if not provided
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	store, err := openStorage(ctx, cfg)
	if err != nil {
		return nil, err
	}
	logger.Info("storage ready", slog.String("type", storageTypeOrDefault(cfg.StorageType)))

	app := newWithDependencies(store, clock.New(), random.New(), cfg.AuthConfig, cfg.BroadcastConfig, logger)

	if cfg.DictionaryPath != "" {
		if err := app.DictionaryService.LoadFromFile(ctx, cfg.DictionaryPath); err != nil {
			_ = store.Close()
			return nil, err
		}
	}

	return app, nil
}

func storageTypeOrDefault(t string) string {
	if t == "" {
		return StorageTypeMemory
	}
	return t
}

func openStorage(ctx context.Context, cfg Config) (storage.Storage, error) {
	switch storageTypeOrDefault(cfg.StorageType) {
	case StorageTypeMemory:
		return memory.New(), nil
	case StorageTypeRedis:
		if cfg.RedisConfig == nil || cfg.RedisConfig.URL == "" {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		return redisstorage.New(*cfg.RedisConfig)
	case StorageTypeSQLite:
		dsn := cfg.DatabaseDSN
		if dsn == "" {
			dsn = DefaultSQLitePath
		}
		return sqlstorage.Open(ctx, sqlstorage.Config{Driver: sqlstorage.DriverSQLite, DSN: dsn})
	case StorageTypePostgres:
		if cfg.DatabaseDSN == "" {
			return nil, errors.New("DatabaseDSN required when StorageType is postgres")
		}
		return sqlstorage.Open(ctx, sqlstorage.Config{Driver: sqlstorage.DriverPostgres, DSN: cfg.DatabaseDSN})
	default:
		return nil, fmt.Errorf("invalid StorageType %q: must be memory, redis, sqlite or postgres", cfg.StorageType)
	}
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(
	store storage.Storage,
	clk clock.Clock,
	rnd random.Random,
	authCfg auth.Config,
	broadcastCfg broadcast.Config,
	logger *slog.Logger,
) *App {
	lockRegistry := locks.NewRegistry[model.SessionID]()
	tilesService := tiles.New(rnd)
	dictService := dictionary.New(logger)
	scoringService := scoring.New()
	evaluatorService := evaluator.New(dictService, scoringService)

	coordinator := broadcast.NewCoordinator(broadcastCfg, logger)
	sessionController := session.NewController(store, lockRegistry, tilesService, evaluatorService, coordinator, clk, logger)
	coordinator.SetSource(sessionController)

	authService := auth.New(store, clk, authCfg, logger)

	strategies := map[string]bot.Strategy{
		model.BotStrategyWord: bot.NewWordStrategy(dictService, rnd),
		model.BotStrategyPass: bot.NewPassStrategy(),
	}
	botService := bot.NewService(store, sessionController, strategies, clk, logger)

	return &App{
		Storage:           store,
		Clock:             clk,
		Random:            rnd,
		Locks:             lockRegistry,
		TilesService:      tilesService,
		DictionaryService: dictService,
		ScoringService:    scoringService,
		EvaluatorService:  evaluatorService,
		SessionController: sessionController,
		Broadcaster:       coordinator,
		AuthService:       authService,
		BotService:        botService,
	}
}

// Close releases the app's resources
func (a *App) Close() error {
	a.Broadcaster.Close()
	return a.Storage.Close()
}
