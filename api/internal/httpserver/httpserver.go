package httpserver

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

const AnalyzePath = "/api/analyze-cube"

// Routes — всё, что сервер отдаёт наружу.
type Routes struct {
	Analyze     http.HandlerFunc
	HealthzBody string
}

// NewMux собирает маршруты и оборачивает их в recovery и CORS.
func NewMux(rt Routes, log *zap.Logger) http.Handler {
	body := rt.HealthzBody
	if body == "" {
		body = "ok"
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(body))
	})
	mux.Handle("/metrics", promhttp.Handler())
	if rt.Analyze != nil {
		mux.HandleFunc(AnalyzePath, rt.Analyze)
	}

	return CORS(Recover(log)(mux))
}

// Server — http.Server с таймаутами и мягкой остановкой по ctx.
type Server struct {
	srv *http.Server
	log *zap.Logger
}

func New(addr string, h http.Handler, log *zap.Logger) *Server {
	return &Server{
		srv: &http.Server{
			Addr:              addr,
			Handler:           h,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       60 * time.Second,
			// шесть вызовов vision и один text при UPSTREAM_TIMEOUT=30s
			WriteTimeout: 5 * time.Minute,
			IdleTimeout:  2 * time.Minute,
		},
		log: log,
	}
}

// Run слушает до отмены ctx, затем даёт активным запросам shutdownGrace на завершение.
func (s *Server) Run(ctx context.Context, shutdownGrace time.Duration) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.Info("listening", zap.String("addr", s.srv.Addr))
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := s.srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}
