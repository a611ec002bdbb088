// Package app wires the configuration, clients and engines together and
// owns the process lifecycle.
package app

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/olusola-dev/askbase/internal/config"
	"github.com/olusola-dev/askbase/internal/core"
	"github.com/olusola-dev/askbase/internal/core/convert"
	db "github.com/olusola-dev/askbase/internal/core/database"
	"github.com/olusola-dev/askbase/internal/core/dispatch"
	"github.com/olusola-dev/askbase/internal/core/extract"
	"github.com/olusola-dev/askbase/internal/core/ingestion_engine"
	"github.com/olusola-dev/askbase/internal/core/llm"
	objectclient "github.com/olusola-dev/askbase/internal/core/object-client"
	"github.com/olusola-dev/askbase/internal/core/ocr"
	"github.com/olusola-dev/askbase/internal/core/query_engine"
	"github.com/olusola-dev/askbase/internal/core/upload_worker"
	"github.com/olusola-dev/askbase/internal/core/vectorstore"
)

const ingestionWorkers = 2

type App struct {
	Logger   *zap.Logger
	DBClient *db.DatabaseClient
	Ingestor *ingestion_engine.DocumentIngestor
	Server   *Server

	embedder *llm.GeminiEmbedder
	genModel *llm.GeminiLLM
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	logger, err := newLogger(cfg.Debug)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	appCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	dbClient, err := db.NewDatabaseClient(appCtx, cfg)
	if err != nil {
		return nil, err
	}
	logger.Info("database initialized and ready")

	awsCfg, err := config.LoadAWS(appCtx, cfg)
	if err != nil {
		return nil, err
	}
	objClient := objectclient.NewS3Client(awsCfg, logger)

	embedder, err := llm.NewGeminiEmbedder(appCtx, cfg.AIAPIKey, cfg.EmbedModel)
	if err != nil {
		return nil, fmt.Errorf("init embedder: %w", err)
	}

	genModel, err := llm.NewGeminiLLM(appCtx, cfg.AIAPIKey, cfg.GenModel)
	if err != nil {
		return nil, fmt.Errorf("init llm: %w", err)
	}

	var store core.VectorStore
	switch cfg.VectorStore {
	case config.VectorStorePgvector:
		store = vectorstore.NewPgvectorStore(dbClient.DB(), embedder)
	default:
		store, err = vectorstore.NewChromemStore(cfg.EmbeddedStorePath, embedder)
		if err != nil {
			return nil, fmt.Errorf("init vector store: %w", err)
		}
	}
	logger.Info("vector store ready", zap.String("backend", cfg.VectorStore))

	textractOCR := ocr.NewTextractOCR(awsCfg)
	extractor := extract.NewExtractor(textractOCR, logger)
	converter := convert.NewConverter(logger)

	worker := upload_worker.NewWorker(objClient, converter, cfg.FinalBucket, cfg.CallbackURL, cfg.InternalAPIKey, logger)

	var dispatcher core.JobDispatcher
	switch cfg.DispatchMode {
	case config.DispatchLambda:
		dispatcher = dispatch.NewLambdaDispatcher(awsCfg)
	default:
		dispatcher = dispatch.NewLocalDispatcher(worker.Handle, logger)
	}
	logger.Info("job dispatch ready", zap.String("mode", cfg.DispatchMode))

	ingestor := ingestion_engine.NewDocumentIngestor(dbClient, objClient, store, extractor, cfg.FinalBucket, logger)
	ingestor.Start(ctx, ingestionWorkers)

	engine := query_engine.NewEngine(dbClient, store, genModel, logger)

	server := NewServer(cfg, dbClient, objClient, store, dispatcher, ingestor, engine, logger)

	return &App{
		Logger:   logger,
		DBClient: dbClient,
		Ingestor: ingestor,
		Server:   server,
		embedder: embedder,
		genModel: genModel,
	}, nil
}

func (a *App) Close() {
	if a.embedder != nil {
		_ = a.embedder.Close()
	}
	if a.genModel != nil {
		_ = a.genModel.Close()
	}
	if a.DBClient != nil {
		_ = a.DBClient.Close()
	}
	if a.Logger != nil {
		_ = a.Logger.Sync()
	}
}

func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
