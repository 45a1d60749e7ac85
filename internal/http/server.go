package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/galbox/galconsole/internal/domain"
	"github.com/galbox/galconsole/internal/mailbox"
	"github.com/galbox/galconsole/internal/metrics"
	"github.com/galbox/galconsole/internal/probe"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog/log"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 5 * time.Second

var DefaultCORSOrigins = []string{
	"http://localhost:3000",
	"http://localhost:5173",
	"http://127.0.0.1:3000",
}

type Config struct {
	Port           int
	WSPort         int
	PublicDir      string
	ImagesDir      string
	CORSOrigins    []string
	DiscoveryToken string
	SampleInterval time.Duration
	H2C            bool
}

type Prober interface {
	WiFi(ctx context.Context) (probe.WiFi, error)
	Memory(ctx context.Context) (probe.Memory, error)
	Storage(ctx context.Context) (probe.Storage, error)
	CPU(ctx context.Context) (probe.CPU, error)
	Docker(ctx context.Context) probe.Docker
	Elasticsearch(ctx context.Context) probe.Elasticsearch
	Models(ctx context.Context) ([]probe.Model, error)
	NetworkStatus(ctx context.Context) probe.NetworkStatus
	Identify(ctx context.Context) probe.Identity
	ConnectWiFi(ctx context.Context, ssid, password string) (probe.ConnectResult, error)
}

type Namer interface {
	GetName() domain.Name
	SaveName(name string) (domain.Name, error)
}

// Pinger is implemented by mailbox backends that depend on an external service.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Server struct {
	cfg     Config
	prober  Prober
	namer   Namer
	mailbox mailbox.Store
	monitor *Monitor
	r       *chi.Mux
}

func New(cfg Config, prober Prober, namer Namer, box mailbox.Store) *Server {
	if len(cfg.CORSOrigins) == 0 {
		cfg.CORSOrigins = DefaultCORSOrigins
	}
	s := &Server{
		cfg:     cfg,
		prober:  prober,
		namer:   namer,
		mailbox: box,
		monitor: NewMonitor(prober, cfg.SampleInterval),
		r:       chi.NewRouter(),
	}
	s.r.Use(middleware.RequestID)
	s.r.Use(middleware.RealIP)
	s.r.Use(newRequestLogger("/metrics", "/healthz", "/api/command/recent"))
	s.r.Use(middleware.Recoverer)
	s.r.Use(middleware.Timeout(60 * time.Second))
	s.r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	s.r.Use(requestMetrics)
	return s
}

// Routes registers every endpoint. Static files go last so api routes win.
func (s *Server) Routes() *Server {
	s.AddWiFiRoutes()
	s.AddSystemRoutes()
	s.AddCommandRoutes()
	s.AddNameRoutes()
	s.AddImageRoutes()
	s.AddHealthRoutes()
	s.AddStaticRoutes()
	return s
}

func (s *Server) Monitor() *Monitor {
	return s.monitor
}

func (s *Server) Handler() http.Handler {
	if s.cfg.H2C {
		return h2c.NewHandler(s.r, &http2.Server{})
	}
	return s.r
}

// Serve runs the api server, the websocket push server and the monitor until
// ctx is cancelled, then shuts everything down gracefully.
func (s *Server) Serve(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	s.monitor.Start(ctx.Done())

	servers := []*http.Server{{
		Addr:              fmt.Sprintf(":%d", s.cfg.Port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}}
	if s.cfg.WSPort > 0 {
		servers = append(servers, &http.Server{
			Addr:              fmt.Sprintf(":%d", s.cfg.WSPort),
			Handler:           s.WebsocketHandler(),
			ReadHeaderTimeout: 10 * time.Second,
		})
	}

	for _, srv := range servers {
		srv := srv
		g.Go(func() error {
			log.Info().Str("addr", srv.Addr).Msg("listening")
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("listen on %s: %w", srv.Addr, err)
			}
			return nil
		})
	}

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		var errs []error
		for _, srv := range servers {
			if err := srv.Shutdown(shutdownCtx); err != nil {
				errs = append(errs, fmt.Errorf("shutdown %s: %w", srv.Addr, err))
			}
		}
		log.Info().Msg("servers stopped")
		return errors.Join(errs...)
	})

	return g.Wait()
}

func requestMetrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		metrics.RecordHTTPRequest(r.Method, route, status, time.Since(start))
	})
}
