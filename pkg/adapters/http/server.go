package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sort"
	"time"

	"github.com/aretw0/machine"
	"github.com/aretw0/machine/internal/logging"
	"github.com/aretw0/machine/pkg/domain"
	"github.com/aretw0/machine/pkg/ports"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	defaultExecTimeout  = 30 * time.Second
	defaultMaxBodyBytes = 1 << 20
)

// Server exposes a set of machines over HTTP.
type Server struct {
	router   *chi.Mux
	machines map[string]*machine.Machine
	journal  ports.Journal
	gatherer prometheus.Gatherer
	logger   *slog.Logger
	timeout  time.Duration
	maxBody  int64
}

// Option configures the Server.
type Option func(*Server)

// WithJournal enables GET /executions/{id}, backed by j.
func WithJournal(j ports.Journal) Option {
	return func(s *Server) {
		s.journal = j
	}
}

// WithGatherer sets the registry served on /metrics (default prometheus.DefaultGatherer).
func WithGatherer(g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.gatherer = g
	}
}

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithExecTimeout bounds how long a request waits for an execution to settle.
func WithExecTimeout(d time.Duration) Option {
	return func(s *Server) {
		s.timeout = d
	}
}

// WithMaxBodyBytes rejects request bodies larger than n bytes.
func WithMaxBodyBytes(n int64) Option {
	return func(s *Server) {
		s.maxBody = n
	}
}

// NewServer registers machines by identity. A later machine with the same
// identity replaces an earlier one.
func NewServer(machines []*machine.Machine, opts ...Option) *Server {
	s := &Server{
		router:   chi.NewRouter(),
		machines: make(map[string]*machine.Machine, len(machines)),
		gatherer: prometheus.DefaultGatherer,
		logger:   logging.NewNop(),
		timeout:  defaultExecTimeout,
		maxBody:  defaultMaxBodyBytes,
	}
	for _, m := range machines {
		s.machines[m.Identity()] = m
	}
	for _, opt := range opts {
		opt(s)
	}

	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.Recoverer)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{"X-Request-Id"},
		MaxAge:         300,
	}))
	s.routes()
	return s
}

// NewHandler creates a new HTTP handler for the machines.
func NewHandler(machines []*machine.Machine, opts ...Option) http.Handler {
	return NewServer(machines, opts...)
}

func (s *Server) routes() {
	s.router.Get("/version", s.handleVersion)
	s.router.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))

	s.router.Get("/machines", s.handleListMachines)
	s.router.Post("/machines/{identity}", s.handleExec)
	s.router.Get("/executions/{id}", s.handleGetExecution)
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"version": machine.Version}, s.logger)
}

func (s *Server) handleListMachines(w http.ResponseWriter, r *http.Request) {
	list := make([]MachineInfo, 0, len(s.machines))
	for _, m := range s.machines {
		list = append(list, describe(m.Definition()))
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Identity < list[j].Identity })
	writeJSON(w, http.StatusOK, list, s.logger)
}

func (s *Server) handleExec(w http.ResponseWriter, r *http.Request) {
	identity := chi.URLParam(r, "identity")
	m, ok := s.machines[identity]
	if !ok {
		http.Error(w, "machine not found", http.StatusNotFound)
		return
	}

	var body ExecRequest
	if r.ContentLength != 0 {
		r.Body = http.MaxBytesReader(w, r.Body, s.maxBody)
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			s.logger.Warn("exec: invalid request body", "identity", identity, "error", err)
			return
		}
	}

	meta := domain.Metadata(body.Meta)
	if meta == nil {
		meta = domain.Metadata{}
	}
	if _, set := meta["requestID"]; !set {
		if reqID := middleware.GetReqID(r.Context()); reqID != "" {
			meta["requestID"] = reqID
		}
	}

	d := m.Run(domain.Argins(body.Argins)).Meta(meta)
	settled := make(chan struct{})
	go d.Exec(func(error, any) { close(settled) })

	ctx, cancel := context.WithTimeout(r.Context(), s.timeout)
	defer cancel()
	select {
	case <-settled:
	case <-ctx.Done():
		s.logger.Warn("exec: gave up waiting for execution", "identity", identity, "execution_id", d.ID(), "error", ctx.Err())
		writeJSON(w, http.StatusGatewayTimeout, ExecResponse{
			ExecutionID: d.ID(),
			Error:       "execution did not settle in time",
		}, s.logger)
		return
	}

	c, _ := d.Exec(nil).Completion()
	resp := ExecResponse{
		ExecutionID: d.ID(),
		Exit:        c.Exit,
		Result:      c.Result,
	}
	if c.Err != nil {
		resp.Error = c.Err.Error()
		resp.Kind = domain.Kind(c.Err)
		var exc *domain.Exception
		if errors.As(c.Err, &exc) {
			resp.Code = exc.Code
		}
	}
	writeJSON(w, statusFor(c.Err), resp, s.logger)
}

func (s *Server) handleGetExecution(w http.ResponseWriter, r *http.Request) {
	if s.journal == nil {
		http.Error(w, "journal not configured", http.StatusNotImplemented)
		return
	}

	rec, err := s.journal.Get(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, domain.ErrRecordNotFound) {
		http.Error(w, "execution not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, "failed to load execution", http.StatusInternalServerError)
		s.logger.Error("journal lookup failed", "error", err)
		return
	}
	writeJSON(w, http.StatusOK, rec, s.logger)
}

// statusFor maps an execution outcome to an HTTP status.
func statusFor(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, domain.ErrException):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrUsage), errors.Is(err, domain.ErrCompatibility):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrTimeout):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any, logger *slog.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("response encode failed", "error", err)
	}
}
