// Package rest provides functionality for initializing a server for the pastebin service.
package rest

import (
	"expvar"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"

	"github.com/danilovkiri/dk_go_pastebin/internal/api/rest/handlers"
	"github.com/danilovkiri/dk_go_pastebin/internal/api/rest/middleware"
	"github.com/danilovkiri/dk_go_pastebin/internal/config"
	"github.com/danilovkiri/dk_go_pastebin/internal/metrics"
	"github.com/danilovkiri/dk_go_pastebin/internal/service/shortener"
)

var (
	serverStart = time.Now()
)

func init() {
	expvar.Publish("system.uptime", expvar.Func(uptime))
}

// uptime returns time in seconds since the server start-up.
func uptime() interface{} {
	return int64(time.Since(serverStart).Seconds())
}

// NewRouter builds the HTTP routing tree for processor.
func NewRouter(processor shortener.Processor, cfg config.ServerConfig, m *metrics.Metrics, log *slog.Logger) (http.Handler, error) {
	if log == nil {
		log = slog.Default()
	}
	urlHandler, err := handlers.InitURLHandler(processor, cfg, log)
	if err != nil {
		return nil, err
	}
	trustedNet, err := middleware.NewTrustedNetHandler(cfg.TrustedSubnet, log)
	if err != nil {
		return nil, err
	}
	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(middleware.RequestLogger(log, m))
	r.Use(chiMiddleware.Recoverer)
	r.Use(middleware.CORS(cfg.CORS))
	r.Use(middleware.CompressHandle)
	r.Use(middleware.DecompressHandle)

	r.Get("/", urlHandler.HandleIndex())
	r.Get("/robots.txt", urlHandler.HandleRobots())
	r.Get("/ping", urlHandler.HandlePingDB())
	r.Get("/styles", urlHandler.HandleGetStyles())
	r.Get("/stats/{id}", urlHandler.HandleGetStats())
	r.Get("/md/{id}", urlHandler.HandleGetMarkdown())
	r.Get("/raw/{id}", urlHandler.HandleGetRaw())
	r.Post("/raw/{kind}", urlHandler.HandlePost(true))
	r.Put("/raw/{kind}", urlHandler.HandlePost(true))
	r.Get("/{id}", urlHandler.HandleGet())
	r.Post("/{kind}", urlHandler.HandlePost(false))
	r.Put("/{kind}", urlHandler.HandlePost(false))
	r.Group(func(r chi.Router) {
		r.Use(trustedNet.TrustedNetworkHandler)
		r.Handle("/metrics", m.Handler())
		r.Mount("/debug", chiMiddleware.Profiler()) // see https://github.com/go-chi/chi/blob/master/middleware/profiler.go
	})
	return r, nil
}

// InitServer returns a http.Server object ready to be listening and serving.
func InitServer(processor shortener.Processor, cfg config.ServerConfig, m *metrics.Metrics, log *slog.Logger) (*http.Server, error) {
	if log == nil {
		log = slog.Default()
	}
	router, err := NewRouter(processor, cfg, m, log)
	if err != nil {
		return nil, err
	}
	srv := &http.Server{
		Addr:              cfg.ServerAddress,
		Handler:           router,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      60 * time.Second,
		ErrorLog:          slog.NewLogLogger(log.Handler(), slog.LevelError),
	}
	return srv, nil
}
