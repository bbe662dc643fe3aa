package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/snapledger/snapledger/internal/auth"
	"github.com/snapledger/snapledger/internal/config"
	"github.com/snapledger/snapledger/internal/extract"
	"github.com/snapledger/snapledger/internal/report"
	"github.com/snapledger/snapledger/internal/repository"
	"github.com/snapledger/snapledger/internal/scan"
	"github.com/snapledger/snapledger/internal/server"
	"github.com/snapledger/snapledger/internal/storage"
	"github.com/snapledger/snapledger/internal/vision"
	"github.com/snapledger/snapledger/pkg/database"
	"github.com/snapledger/snapledger/pkg/utils"
	"github.com/subosito/gotenv"
	"go.uber.org/zap"
)

func main() {
	// Load .env before viper reads the environment
	_ = gotenv.Load()

	configPath := "configs/config.yaml"
	if len(os.Args) > 1 {
		configPath = os.Args[1]
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := utils.NewLogger(utils.LoggerConfig{
		Level:      cfg.Logger.Level,
		OutputPath: cfg.Logger.OutputPath,
		Format:     cfg.Logger.Format,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting SnapLedger",
		zap.String("version", "1.0.0"),
		zap.Int("port", cfg.Server.Port))

	if dir := filepath.Dir(cfg.Database.Path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			logger.Fatal("Failed to create data directory", zap.Error(err))
		}
	}

	db, err := database.New(database.Config{
		Path:            cfg.Database.Path,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer db.Close()

	if err := db.Init(); err != nil {
		logger.Fatal("Failed to initialize database schema", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	visionClient, err := vision.NewClient(ctx, cfg.Vision.APIKey, logger)
	if err != nil {
		logger.Fatal("Failed to initialize Vision client", zap.Error(err))
	}

	extractor, err := newExtractor(ctx, cfg.LLM, logger)
	if err != nil {
		logger.Fatal("Failed to initialize extractor", zap.Error(err))
	}

	files, err := storage.NewFileStorage(cfg.Storage.UploadDir, logger)
	if err != nil {
		logger.Fatal("Failed to initialize file storage", zap.Error(err))
	}

	userRepo := repository.NewUserRepository(db, logger)
	expenseRepo := repository.NewExpenseRepository(db, logger)
	authManager := auth.NewManager(cfg.Auth.JWTSecret, cfg.Auth.TokenExpiry)
	scanService := scan.NewService(visionClient, extractor, logger)
	exporter := report.NewExcelExporter(logger)

	if cfg.Logger.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	srv := server.New(cfg.Server, authManager, userRepo, expenseRepo, scanService, files, exporter, logger)

	if err := srv.Start(ctx); err != nil {
		logger.Fatal("Server error", zap.Error(err))
	}

	logger.Info("Server exited successfully")
}

// newExtractor builds the configured LLM extractor, or nil when disabled.
func newExtractor(ctx context.Context, cfg config.LLMConfig, logger *zap.Logger) (extract.Extractor, error) {
	switch cfg.Provider {
	case "gemini":
		return extract.NewGeminiExtractor(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, logger)
	case "openai":
		return extract.NewOpenAIExtractor(cfg.OpenAIAPIKey, cfg.OpenAIModel, logger)
	case "none":
		logger.Info("Structured extraction disabled, scans use OCR only")
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown llm provider: %s", cfg.Provider)
	}
}
