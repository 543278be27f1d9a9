package rest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/hashicorp/go-hclog"
	"github.com/oapi-codegen/runtime/strictmiddleware/nethttp"
	"github.com/pbinitiative/zenflow/internal/config"
	"github.com/pbinitiative/zenflow/internal/rest/middleware"
	"github.com/pbinitiative/zenflow/internal/rest/public"
	"github.com/pbinitiative/zenflow/pkg/bpmn"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const maxBodySize = 4 << 20

type Server struct {
	engine  *bpmn.Engine
	addr    string
	server  *http.Server
	logger  hclog.Logger
	started time.Time
}

// NewServer exposes the engine under /v1 and the system endpoints under /system.
func NewServer(engine *bpmn.Engine, conf config.Config, logger hclog.Logger) *Server {
	r := chi.NewRouter()
	s := Server{
		engine:  engine,
		addr:    conf.Server.Addr,
		logger:  logger.Named("rest"),
		started: time.Now(),
		server: &http.Server{
			ReadHeaderTimeout: 3 * time.Second,
			Handler:           r,
			Addr:              conf.Server.Addr,
		},
	}
	r.Use(middleware.Cors(conf.Server.AllowedOrigins))
	r.Use(middleware.Opentelemetry(conf.Tracing))
	routes := func(r chi.Router) {
		r.Route("/v1", func(r chi.Router) {
			r.Use(middleware.StripEmptyQueryParams())
			r.Use(chimiddleware.RequestSize(maxBodySize))
			// mount generated handler from open-api
			h := public.HandlerWithOptions(public.NewStrictHandlerWithOptions(&s, []nethttp.StrictHTTPMiddlewareFunc{}, public.StrictHTTPServerOptions{
				RequestErrorHandlerFunc: func(w http.ResponseWriter, r *http.Request, err error) {
					writeError(w, http.StatusBadRequest, public.Error{Code: "BAD_REQUEST", Message: err.Error()})
				},
				ResponseErrorHandlerFunc: s.writeEngineError,
			}), public.ChiServerOptions{
				ErrorHandlerFunc: func(w http.ResponseWriter, r *http.Request, err error) {
					writeError(w, http.StatusBadRequest, public.Error{Code: "BAD_REQUEST", Message: err.Error()})
				},
			})
			r.Mount("/", h)
		})
		r.Route("/system", func(r chi.Router) {
			r.Get("/metrics", promhttp.Handler().ServeHTTP)
			r.Get("/status", s.status)
			r.Get("/openapi", s.openapi)
		})
	}
	if prefix := strings.TrimSuffix(conf.Server.Context, "/"); prefix != "" {
		r.Route(prefix, routes)
	} else {
		routes(r)
	}
	return &s
}

// Handler returns the router, used by tests to serve requests without a listener.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

func (s *Server) Start() (net.Listener, error) {
	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", s.addr, err)
	}
	s.logger.Info(fmt.Sprintf("ZenFlow REST server listening on %s", listener.Addr()))
	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error(fmt.Sprintf("Error serving REST API: %s", err))
		}
	}()
	return listener, nil
}

func (s *Server) Stop(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := s.server.Shutdown(ctx); err != nil {
		s.logger.Error(fmt.Sprintf("Error stopping server: %s", err))
	}
}

func (s *Server) status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, Status{
		NodeId: s.engine.NodeId(),
		Uptime: time.Since(s.started).Round(time.Second).String(),
		Status: "UP",
	})
}

// openapi serves the embedded API description as JSON.
func (s *Server) openapi(w http.ResponseWriter, r *http.Request) {
	swagger, err := public.GetSwagger()
	if err != nil {
		writeError(w, http.StatusInternalServerError, public.Error{Code: "ERROR", Message: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, swagger)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, apiError public.Error) {
	writeJSON(w, status, apiError)
}
