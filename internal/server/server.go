// Package server exposes the plan repository over HTTP and WebSocket.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/planforge/planforge/internal/clipboard"
	"github.com/planforge/planforge/internal/notify"
	"github.com/planforge/planforge/internal/source"
	"github.com/planforge/planforge/internal/store"
)

// Dependencies holds everything the server routes over.
type Dependencies struct {
	Store     *store.Store
	Hub       *notify.Hub
	Clipboard *clipboard.Clipboard
	Sources   *source.Manager
	Logger    zerolog.Logger
	ExportDir string
}

// Server is the HTTP transport over the repository store.
type Server struct {
	deps Dependencies
	http *http.Server
}

// New creates a server with its routes registered.
func New(deps Dependencies) *Server {
	if deps.Clipboard == nil {
		deps.Clipboard = clipboard.New()
	}
	if deps.Sources == nil {
		deps.Sources = source.NewManager(deps.Store, deps.Logger)
	}
	return &Server{deps: deps}
}

// Router builds the gin engine with all routes registered.
func (s *Server) Router() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger())

	r.GET("/healthcheck", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api/v1")
	{
		api.GET("/ws", s.handleWebsocket)
		api.POST("/import", s.handleImport)
		api.GET("/clipboard", s.handleClipboardList)
		api.POST("/clipboard", s.handleClipboardPush)
		api.DELETE("/clipboard", s.handleClipboardClear)
		api.DELETE("/clipboard/:index", s.handleClipboardRemove)

		col := api.Group("/:collection", s.requireCollection)
		{
			col.GET("", s.handleList)
			col.POST("", s.handleCreate)
			col.GET("/:id", s.handleGet)
			col.PUT("/:id", s.handleEdit)
			col.DELETE("/:id", s.handleDelete)
			col.POST("/:id/touch", s.handleTouch)
			col.POST("/:id/copy", s.handleCopy)
			col.POST("/:id/include", s.handleInclude)
			col.POST("/:id/publish", s.handlePublish)
			col.POST("/:id/sources/refresh", s.handleSourcesRefresh)
			col.POST("/:id/sources/accept", s.handleSourcesAccept)
			col.POST("/:id/sources/reject", s.handleSourcesReject)
			col.POST("/:id/sources/unlink", s.handleSourcesUnlink)
			col.GET("/:id/estimate", s.handleEstimate)
			col.GET("/:id/export", s.handleExport)
			col.GET("/:id/versions", s.handleVersions)
			col.POST("/:id/versions", s.handleNewVersion)
			col.GET("/:id/versions/latest", s.handleLatest)
			col.POST("/:id/versions/:versionId/lock", s.handleLock)
			col.POST("/:id/versions/:versionId/revert", s.handleRevert)
			col.DELETE("/:id/versions/:versionId", s.handleDeleteVersion)
		}
	}
	return r
}

// Run serves until the context is canceled, then drains connections.
func (s *Server) Run(ctx context.Context, addr string) error {
	s.http = &http.Server{
		Addr:    addr,
		Handler: s.Router(),
	}

	errCh := make(chan error, 1)
	go func() {
		s.deps.Logger.Info().Str("addr", addr).Msg("HTTP server listening")
		errCh <- s.http.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return s.http.Shutdown(shutdownCtx)
	}
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.deps.Logger.Debug().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("duration", time.Since(start)).
			Msg("request")
	}
}
