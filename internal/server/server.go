// Package server provides the HTTP API for erabu.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/hyperjump/erabu/internal/category"
	"github.com/hyperjump/erabu/internal/config"
	"github.com/hyperjump/erabu/internal/curation"
	"github.com/hyperjump/erabu/internal/searchindex"
	"github.com/hyperjump/erabu/internal/storage"
	"github.com/hyperjump/erabu/internal/store"
)

// Server is the HTTP server for the erabu API.
type Server struct {
	controller *curation.Controller
	categories *category.Manager
	store      *store.Store
	storage    storage.Storage
	index      *searchindex.Index
	config     *config.ServerConfig
	logger     *zap.Logger
	server     *http.Server

	// rescan, when set, is invoked by POST /api/v1/scan.
	rescan func(ctx context.Context) (int, error)
}

// NewServer creates a server with the given dependencies. index may be
// nil, which disables the related-files endpoint.
func NewServer(
	controller *curation.Controller,
	categories *category.Manager,
	st *store.Store,
	stg storage.Storage,
	index *searchindex.Index,
	cfg *config.ServerConfig,
	logger *zap.Logger,
) *Server {
	return &Server{
		controller: controller,
		categories: categories,
		store:      st,
		storage:    stg,
		index:      index,
		config:     cfg,
		logger:     logger,
	}
}

// WithRescan registers the callback behind POST /api/v1/scan.
func (s *Server) WithRescan(fn func(ctx context.Context) (int, error)) *Server {
	s.rescan = fn
	return s
}

// Router builds the chi router with all API routes.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(middleware.Compress(5))

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/files", s.handleListFiles)
		r.Get("/files/{id}", s.handleGetFile)
		r.Post("/files/{id}/actions/{action}", s.handleFileAction)

		r.Get("/selection", s.handleGetSelection)
		r.Put("/selection/{id}", s.handleSelect)
		r.Delete("/selection/{id}", s.handleDeselect)
		r.Delete("/selection", s.handleClearSelection)

		r.Post("/bulk", s.handleBulk)

		r.Get("/categories", s.handleListCategories)
		r.Post("/categories", s.handleCreateCategory)
		r.Delete("/categories/{id}", s.handleDeleteCategory)

		r.Get("/related", s.handleRelated)

		r.Get("/preferences/view-mode", s.handleGetViewMode)
		r.Put("/preferences/view-mode", s.handleSetViewMode)

		r.Post("/scan", s.handleScan)
		r.Get("/status", s.handleStatus)
	})
	r.Get("/health", s.handleHealth)
	return r
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.server = &http.Server{
		Addr:    addr,
		Handler: s.Router(),
	}
	s.logger.Info("Starting server", zap.String("addr", addr))
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
