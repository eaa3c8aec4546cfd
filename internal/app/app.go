// Package app assembles storages, the shortener service and both transports into a runnable
// application.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"

	grpcapi "github.com/danilovkiri/dk_go_pastebin/internal/api/grpc"
	"github.com/danilovkiri/dk_go_pastebin/internal/api/rest"
	"github.com/danilovkiri/dk_go_pastebin/internal/config"
	"github.com/danilovkiri/dk_go_pastebin/internal/metrics"
	"github.com/danilovkiri/dk_go_pastebin/internal/service/shortener"
	shortenerV1 "github.com/danilovkiri/dk_go_pastebin/internal/service/shortener/v1"
	"github.com/danilovkiri/dk_go_pastebin/internal/storage"
	"github.com/danilovkiri/dk_go_pastebin/internal/storage/blob"
	"github.com/danilovkiri/dk_go_pastebin/internal/storage/blob/infile"
	"github.com/danilovkiri/dk_go_pastebin/internal/storage/blob/ins3"
	"github.com/danilovkiri/dk_go_pastebin/internal/storage/inpsql"
	"github.com/danilovkiri/dk_go_pastebin/internal/storage/insqlite"
)

const shutdownTimeout = 5 * time.Second

// App holds initialized components of the service.
type App struct {
	cfg        *config.Config
	log        *slog.Logger
	metrics    *metrics.Metrics
	processor  shortener.Processor
	httpServer *http.Server
	grpcServer *grpc.Server
}

// New opens storages, loads presets and prepares servers. Storage goroutines register with wg
// and release database handles once ctx is done.
func New(ctx context.Context, wg *sync.WaitGroup, cfg *config.Config, log *slog.Logger) (*App, error) {
	m := metrics.New()
	entries, err := initEntryStorage(ctx, wg, &cfg.StorageConfig, log)
	if err != nil {
		return nil, fmt.Errorf("entry storage: %w", err)
	}
	blobs, err := initBlobStorage(ctx, &cfg.StorageConfig, log)
	if err != nil {
		return nil, fmt.Errorf("blob storage: %w", err)
	}
	processor, err := shortenerV1.InitShortener(entries, blobs, &cfg.ServiceConfig, log, m)
	if err != nil {
		return nil, err
	}
	if err := processor.LoadPresets(ctx, cfg.Presets); err != nil {
		return nil, fmt.Errorf("presets: %w", err)
	}

	a := &App{cfg: cfg, log: log, metrics: m, processor: processor}
	a.httpServer, err = rest.InitServer(processor, cfg.ServerConfig, m, log)
	if err != nil {
		return nil, err
	}
	if cfg.ServerConfig.GRPCAddress != "" {
		srv, err := grpcapi.InitServer(processor, cfg.ServerConfig)
		if err != nil {
			return nil, err
		}
		a.grpcServer = grpcapi.NewGRPCServer(srv, cfg.ServerConfig, log, m)
	}
	return a, nil
}

// Run serves HTTP and, when configured, gRPC until ctx is done or a server fails.
func (a *App) Run(ctx context.Context) error {
	var listen net.Listener
	if a.grpcServer != nil {
		var err error
		listen, err = net.Listen("tcp", a.cfg.ServerConfig.GRPCAddress)
		if err != nil {
			return fmt.Errorf("grpc listener: %w", err)
		}
	}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.log.Info("http server started", "address", a.httpServer.Addr)
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	if a.grpcServer != nil {
		g.Go(func() error {
			a.log.Info("grpc server started", "address", a.cfg.ServerConfig.GRPCAddress)
			if err := a.grpcServer.Serve(listen); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
				return fmt.Errorf("grpc server: %w", err)
			}
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		a.log.Info("server shutdown attempted")
		return a.shutdown()
	})

	return g.Wait()
}

func (a *App) shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	var err error
	if a.grpcServer != nil {
		stopped := make(chan struct{})
		go func() {
			a.grpcServer.GracefulStop()
			close(stopped)
		}()
		select {
		case <-stopped:
		case <-ctx.Done():
			a.grpcServer.Stop()
			err = multierr.Append(err, errors.New("grpc server: graceful stop timed out"))
		}
	}
	if shutdownErr := a.httpServer.Shutdown(ctx); shutdownErr != nil {
		err = multierr.Append(err, fmt.Errorf("http server: %w", shutdownErr))
	}
	return err
}

// initEntryStorage picks PostgreSQL when a DSN is configured and SQLite otherwise.
func initEntryStorage(ctx context.Context, wg *sync.WaitGroup, cfg *config.StorageConfig, log *slog.Logger) (storage.EntryStorage, error) {
	// the storage goroutine calls wg.Done after closing the database
	wg.Add(1)
	var (
		st  storage.EntryStorage
		err error
	)
	switch cfg.DatabaseDSN {
	case "":
		st, err = insqlite.InitStorage(ctx, wg, cfg, log)
	default:
		st, err = inpsql.InitStorage(ctx, wg, cfg, log)
	}
	if err != nil {
		wg.Done()
		return nil, err
	}
	return st, nil
}

func initBlobStorage(ctx context.Context, cfg *config.StorageConfig, log *slog.Logger) (blob.Storage, error) {
	switch cfg.BlobDriver {
	case config.BlobDriverS3:
		return ins3.InitStorage(ctx, &cfg.S3, log)
	default:
		return infile.InitStorage(cfg, log)
	}
}
