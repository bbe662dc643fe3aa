// Package server exposes the HTTP API: auth, receipt scanning, expenses,
// dashboard, and report export.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/snapledger/snapledger/internal/auth"
	"github.com/snapledger/snapledger/internal/config"
	"github.com/snapledger/snapledger/internal/report"
	"github.com/snapledger/snapledger/internal/repository"
	"github.com/snapledger/snapledger/internal/scan"
	"github.com/snapledger/snapledger/internal/storage"
	"go.uber.org/zap"
)

// Server is the HTTP server and its dependencies.
type Server struct {
	cfg      config.ServerConfig
	router   *gin.Engine
	httpSrv  *http.Server
	auth     *auth.Manager
	users    *repository.UserRepository
	expenses *repository.ExpenseRepository
	scanner  *scan.Service
	files    *storage.FileStorage
	exporter *report.ExcelExporter
	logger   *zap.Logger
}

// New creates the server and registers its routes.
func New(
	cfg config.ServerConfig,
	authManager *auth.Manager,
	users *repository.UserRepository,
	expenses *repository.ExpenseRepository,
	scanner *scan.Service,
	files *storage.FileStorage,
	exporter *report.ExcelExporter,
	logger *zap.Logger,
) *Server {
	s := &Server{
		cfg:      cfg,
		auth:     authManager,
		users:    users,
		expenses: expenses,
		scanner:  scanner,
		files:    files,
		exporter: exporter,
		logger:   logger,
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(loggingMiddleware(logger))
	router.Use(corsMiddleware())
	router.MaxMultipartMemory = cfg.MaxUploadMB << 20

	router.GET("/health", s.handleHealth)

	api := router.Group("/api/v1")
	{
		api.POST("/auth/register", s.handleRegister)
		api.POST("/auth/login", s.handleLogin)

		protected := api.Group("")
		protected.Use(authMiddleware(s.auth))
		{
			protected.POST("/scan", s.handleScan)
			protected.GET("/categories", s.handleCategories)
			protected.POST("/expenses", s.handleCreateExpense)
			protected.GET("/expenses", s.handleListExpenses)
			protected.GET("/expenses/:id", s.handleGetExpense)
			protected.DELETE("/expenses/:id", s.handleDeleteExpense)
			protected.GET("/dashboard", s.handleDashboard)
			protected.GET("/reports/monthly", s.handleMonthlyReport)
		}
	}

	s.router = router
	return s
}

// Router returns the underlying gin engine. Exposed for tests.
func (s *Server) Router() http.Handler {
	return s.router
}

// Start runs the HTTP server until the context is cancelled, then shuts it
// down gracefully.
func (s *Server) Start(ctx context.Context) error {
	s.httpSrv = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port),
		Handler:      s.router,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("HTTP server listening", zap.String("addr", s.httpSrv.Addr))
		if err := s.httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return s.httpSrv.Shutdown(shutdownCtx)
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "snapledger",
		"time":    time.Now().Format(time.RFC3339),
	})
}
