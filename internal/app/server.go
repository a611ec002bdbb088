package app

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/olusola-dev/askbase/internal/api/handlers"
	appMiddleware "github.com/olusola-dev/askbase/internal/api/middlewares"
	"github.com/olusola-dev/askbase/internal/config"
	"github.com/olusola-dev/askbase/internal/core"
	"github.com/olusola-dev/askbase/internal/core/ingestion_engine"
	"github.com/olusola-dev/askbase/internal/core/query_engine"
)

// Server wraps the HTTP server instance and its handlers.
type Server struct {
	httpServer *http.Server
	logger     *zap.Logger
}

// NewServer builds and wires all routes.
func NewServer(
	cfg *config.Config,
	db core.DbClient,
	obj core.ObjectClient,
	store core.VectorStore,
	dispatcher core.JobDispatcher,
	ingestor *ingestion_engine.DocumentIngestor,
	engine *query_engine.Engine,
	logger *zap.Logger,
) *Server {
	docHandler := handlers.NewDocumentHandler(db, obj, store, dispatcher, cfg, logger)
	sourceHandler := handlers.NewSourceDataHandler(ingestor, engine, logger)
	internalHandler := handlers.NewInternalHandler(db, logger)

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(60 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8888"},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Get("/health", handlers.Health)

	r.Route("/api/v1", func(api chi.Router) {
		// worker-facing endpoints
		api.Group(func(internal chi.Router) {
			internal.Use(appMiddleware.InternalKeyMiddleware(cfg.InternalAPIKey))
			internal.Post("/internal/files/processed", internalHandler.FileProcessed)
		})

		// account-facing endpoints
		api.Group(func(protected chi.Router) {
			protected.Use(appMiddleware.JWTMiddleware)
			protected.Post("/documents/upload", docHandler.UploadDocument)
			protected.Get("/documents", docHandler.GetDocuments)
			protected.Patch("/documents/{document_id}/include", docHandler.ToggleInclude)
			protected.Delete("/documents/{document_id}", docHandler.DeleteDocument)
			protected.Post("/source-data/generate", sourceHandler.GenerateSourceData)
			protected.Post("/source-data/query", sourceHandler.QuerySourceData)
		})
	})

	httpSrv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	return &Server{httpServer: httpSrv, logger: logger}
}

// Start runs the HTTP server until it is shut down.
func (s *Server) Start() error {
	s.logger.Info("HTTP server listening", zap.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}
