// Package debug provides a minimal REST surface over the block executor
// and historical store, for driving and inspecting it outside of consensus
// — height, UTXO lookups, and point-in-time column views.
package debug

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/weisyn/v1/internal/core/eutxo/domain"
	"github.com/weisyn/v1/internal/core/infrastructure/storage/historical"
	"github.com/weisyn/v1/internal/core/infrastructure/storage/kvstore"
	config "github.com/weisyn/v1/pkg/interfaces/config"
	log "github.com/weisyn/v1/pkg/interfaces/infrastructure/log"
)

// Server is the debug HTTP server: a thin Gin router over the kv backend
// and the historical overlay.
type Server struct {
	router     *gin.Engine
	httpServer *http.Server
	logger     log.Logger
	cfg        config.Provider
	backend    kvstore.Backend
	historical *historical.Store
}

// NewServer wires up the debug endpoints over the given storage handles.
func NewServer(logger log.Logger, cfg config.Provider, backend kvstore.Backend, hist *historical.Store) *Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	s := &Server{router: router, logger: logger, cfg: cfg, backend: backend, historical: hist}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.router.GET("/height", s.handleHeight)
	s.router.GET("/coin/:utxo_id", s.handleCoin)
	s.router.GET("/view/:height/:column/:key", s.handleView)
}

// handleHeight reports the height of the most recently processed
// transaction recorded under ColumnMetadata.
func (s *Server) handleHeight(c *gin.Context) {
	blob, err := s.backend.Get(c.Request.Context(), domain.ColumnMetadata, domain.ReferenceBytesKey("height"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if blob == nil {
		c.JSON(http.StatusOK, gin.H{"height": 0})
		return
	}
	c.JSON(http.StatusOK, gin.H{"height": domain.DecodeHeightComplement(blob)})
}

func (s *Server) handleCoin(c *gin.Context) {
	utxoID, err := hexParam(c.Param("utxo_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	blob, err := s.backend.Get(c.Request.Context(), domain.ColumnCoins, domain.ReferenceBytesKey(utxoID))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if blob == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": domain.ErrCoinDoesNotExist.Error()})
		return
	}
	coin, err := domain.DecodeCoin(blob)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, coin)
}

// handleView answers a historical point-in-time lookup: GET
// /view/{height}/{column}/{key}.
func (s *Server) handleView(c *gin.Context) {
	height, err := strconv.ParseUint(c.Param("height"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid height"})
		return
	}
	key, err := hexParam(c.Param("key"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	column := domain.Column(c.Param("column"))

	if s.historical == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": domain.ErrHistoricalOverlayUnsupported.Error()})
		return
	}

	value, found, err := s.historical.ViewAt(c.Request.Context(), column, domain.ReferenceBytesKey(key), domain.Height(height))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"found": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{"found": true, "value": fmt.Sprintf("%x", value)})
}

func hexParam(raw string) ([]byte, error) {
	out := make([]byte, len(raw)/2)
	if len(raw)%2 != 0 {
		return nil, errors.New("debug: odd-length hex parameter")
	}
	if _, err := fmt.Sscanf(raw, "%x", &out); err != nil {
		return nil, fmt.Errorf("debug: invalid hex parameter: %w", err)
	}
	return out, nil
}

// Start launches the debug HTTP server in the background.
func (s *Server) Start(ctx context.Context) error {
	if s.httpServer != nil {
		return fmt.Errorf("debug server already started")
	}

	opts := s.cfg.GetDebug()
	addr := fmt.Sprintf("%s:%d", opts.Host, opts.Port)

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		if errors.Is(err, syscall.EADDRINUSE) {
			return fmt.Errorf("debug API port already in use: %s", addr)
		}
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	s.httpServer = &http.Server{Addr: addr, Handler: s.router}
	go func() {
		if err := s.httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
			s.logger.Errorf("debug HTTP server error: %v", err)
		}
	}()

	s.logger.Infof("debug API listening on %s", addr)
	return nil
}

// Stop gracefully shuts the debug HTTP server down.
func (s *Server) Stop(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("debug HTTP server shutdown error: %w", err)
	}
	s.logger.Info("debug API stopped")
	return nil
}
