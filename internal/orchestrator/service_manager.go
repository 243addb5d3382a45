package orchestrator

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"stealthcompany.com/wardconsole/internal/metrics"
)

const (
	defaultShutdownTimeout = 5 * time.Second
	systemMetricsInterval  = 15 * time.Second
)

// ServiceManager manages the lifecycle of the local view server
type ServiceManager struct {
	server          *http.Server
	listener        net.Listener
	ShutdownTimeout time.Duration
}

// NewServiceManager creates a manager serving handler on addr
func NewServiceManager(addr string, handler http.Handler) *ServiceManager {
	return &ServiceManager{
		server: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		},
		ShutdownTimeout: defaultShutdownTimeout,
	}
}

// Listen binds the server address. Run calls it when it has not been called.
func (sm *ServiceManager) Listen() error {
	ln, err := net.Listen("tcp", sm.server.Addr)
	if err != nil {
		return err
	}
	sm.listener = ln
	return nil
}

// Addr returns the bound address, or the configured one before Listen.
func (sm *ServiceManager) Addr() string {
	if sm.listener != nil {
		return sm.listener.Addr().String()
	}
	return sm.server.Addr
}

// Run serves until ctx is cancelled or the server fails, then shuts down gracefully.
func (sm *ServiceManager) Run(ctx context.Context) error {
	if sm.listener == nil {
		if err := sm.Listen(); err != nil {
			return err
		}
	}

	metrics.StartSystemMetrics(ctx, systemMetricsInterval)

	log.Info().Str("addr", sm.Addr()).Msg("View server starting")

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- sm.server.Serve(sm.listener)
	}()

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		log.Error().Err(err).Msg("View server exited with error")
		return err
	case <-ctx.Done():
		log.Info().Msg("Shutting down view server...")
		return sm.shutdown()
	}
}

// shutdown drains in-flight requests, then closes whatever is left
func (sm *ServiceManager) shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), sm.ShutdownTimeout)
	defer cancel()

	if err := sm.server.Shutdown(ctx); err != nil {
		log.Warn().Err(err).Msg("Graceful shutdown timed out, closing connections")
		return sm.server.Close()
	}
	log.Info().Msg("View server stopped")
	return nil
}
