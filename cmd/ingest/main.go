package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/bimakw/wager-analytics/internal/application/services"
	"github.com/bimakw/wager-analytics/internal/config"
	"github.com/bimakw/wager-analytics/internal/domain/analytics"
	"github.com/bimakw/wager-analytics/internal/domain/entities"
	"github.com/bimakw/wager-analytics/internal/infrastructure/cache"
	"github.com/bimakw/wager-analytics/internal/infrastructure/csvsource"
	"github.com/bimakw/wager-analytics/internal/infrastructure/database"
	"github.com/bimakw/wager-analytics/internal/infrastructure/reference"
)

func main() {
	file := flag.String("file", "", "CSV file of normalized rows, or - for stdin")
	source := flag.String("source", "", "label stored with the batch (defaults to the file name)")
	flag.Parse()

	if *file == "" {
		fmt.Fprintln(os.Stderr, "usage: ingest -file <rows.csv> [-source label]")
		os.Exit(2)
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Setup logger
	logger := setupLogger(cfg.Log.Level, cfg.Log.Format)
	defer func() { _ = logger.Sync() }()

	// Cancel the batch on interrupt; the insert transaction rolls back
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rows, unparsed, label, err := readRows(*file)
	if err != nil {
		logger.Fatal("Failed to read rows", zap.String("file", *file), zap.Error(err))
	}
	for _, rej := range unparsed {
		logger.Warn("Row could not be parsed and was skipped",
			zap.String("record_id", rej.RecordID),
			zap.Error(rej.Err),
		)
	}
	if *source != "" {
		label = *source
	}

	// Connect to database
	db, err := database.NewPostgresDB(cfg.Database, logger)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if cfg.Database.AutoMigrate {
		if err := db.Migrate(); err != nil {
			logger.Fatal("Failed to apply migrations", zap.Error(err))
		}
	}

	// Redis is only needed to evict cached responses early
	var store cache.Store
	redisCache, err := cache.NewRedisCache(cfg.Redis, logger)
	if err != nil {
		logger.Warn("Redis unavailable, cached metrics expire on their own", zap.Error(err))
	} else {
		defer redisCache.Close()
		store = redisCache
	}

	aliases, err := reference.LoadAliases(cfg.Engine.AliasesFile)
	if err != nil {
		logger.Fatal("Failed to load alias tables", zap.Error(err))
	}

	ingestService := services.NewIngestService(
		database.NewRecordRepo(db.DB()),
		analytics.NewClassifier(aliases),
		store,
		cfg.Ingest,
		logger,
	)

	report, err := ingestService.IngestBatch(ctx, label, rows)
	if err != nil {
		logger.Fatal("Failed to ingest batch", zap.Error(err))
	}
	rejected := report.Rejections
	report.AddUnparsed(unparsed)

	for _, rej := range rejected {
		logger.Warn("Row will be excluded from metrics",
			zap.String("record_id", rej.RecordID),
			zap.Error(rej.Err),
		)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(report)
}

// readRows parses the CSV at path and returns the rows, the rows that could
// not be parsed, and a default source label
func readRows(path string) ([]entities.RawRecord, []analytics.Rejection, string, error) {
	var in io.Reader = os.Stdin
	label := "stdin"
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, nil, "", err
		}
		defer f.Close()
		in = f
		label = filepath.Base(path)
	}

	rows, unparsed, err := csvsource.ReadRecords(in)
	if err != nil {
		return nil, nil, "", err
	}
	return rows, unparsed, label, nil
}

func setupLogger(level, format string) *zap.Logger {
	var zapLevel zapcore.Level
	switch level {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "warn":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		zapLevel = zapcore.InfoLevel
	}

	encoding := "json"
	encoderConfig := zap.NewProductionEncoderConfig()
	if format == "console" {
		encoding = "console"
		encoderConfig = zap.NewDevelopmentEncoderConfig()
	}

	config := zap.Config{
		Level:            zap.NewAtomicLevelAt(zapLevel),
		Development:      false,
		Encoding:         encoding,
		EncoderConfig:    encoderConfig,
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
	}

	logger, _ := config.Build()
	return logger
}
