package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"quickspese/internal/core"
	"quickspese/internal/log"
	"quickspese/internal/middleware/ratelimit"
	"quickspese/internal/middleware/security"
	"quickspese/internal/middleware/trace"
	"quickspese/internal/services"
)

// CommandRunner is what the handlers need from the application layer.
// *services.CommandService implements it.
type CommandRunner interface {
	Execute(ctx context.Context, text string) (services.Outcome, error)
	ExecuteCommand(ctx context.Context, cmd core.Command) (services.Outcome, error)
	List(ctx context.Context, f core.QueryFilters) ([]core.Expense, error)
	Summary(ctx context.Context) (core.Summary, error)
}

// ReadinessCheck reports whether dependencies such as the state store can
// serve requests.
type ReadinessCheck func(ctx context.Context) error

type Server struct {
	http.Server
	svc      CommandRunner
	ready    ReadinessCheck
	logger   *log.Logger
	limiter  *ratelimit.Limiter
	detector *security.Detector
	tracer   *trace.Middleware
	location *time.Location

	shutdownOnce sync.Once
}

// Option configures a Server.
type Option func(*serverOptions)

type serverOptions struct {
	logger            *log.Logger
	ready             ReadinessCheck
	requestsPerMinute int
	location          *time.Location
	readHeaderTimeout time.Duration
}

// WithLogger sets the logger used for request and error logs.
func WithLogger(l *log.Logger) Option {
	return func(o *serverOptions) { o.logger = l }
}

// WithReadiness sets the check run by /readyz.
func WithReadiness(check ReadinessCheck) Option {
	return func(o *serverOptions) { o.ready = check }
}

// WithRateLimit caps command requests per client per minute.
func WithRateLimit(perMinute int) Option {
	return func(o *serverOptions) { o.requestsPerMinute = perMinute }
}

// WithLocation sets the zone bare dates in query strings are read in.
func WithLocation(loc *time.Location) Option {
	return func(o *serverOptions) { o.location = loc }
}

// NewServer configures routes and middleware, returning a ready-to-run
// http.Server.
func NewServer(addr string, svc CommandRunner, opts ...Option) *Server {
	o := serverOptions{
		logger:            log.Nop(),
		requestsPerMinute: 60,
		location:          time.Local,
		readHeaderTimeout: 5 * time.Second,
	}
	for _, opt := range opts {
		opt(&o)
	}

	s := &Server{
		svc:      svc,
		ready:    o.ready,
		logger:   o.logger.WithComponent(log.ComponentHTTP),
		limiter:  ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: o.requestsPerMinute}),
		detector: security.NewDetector(),
		location: o.location,
	}
	s.tracer = trace.NewMiddleware(o.logger, s.detector.ExtractClientIP)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", handleHealth)
	mux.HandleFunc("/readyz", s.handleReady)
	mux.HandleFunc("/commands", s.handleCommand)
	mux.HandleFunc("/expenses", s.handleListExpenses)
	mux.HandleFunc("/expenses/", s.handleDeleteExpense)
	mux.HandleFunc("/summary", s.handleSummary)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           s.middleware(mux),
		ReadHeaderTimeout: o.readHeaderTimeout,
	}
	return s
}

// middleware wraps h so every request gets a request id, security headers,
// suspicious-request logging and, for writes, rate limiting.
func (s *Server) middleware(h http.Handler) http.Handler {
	onLimit := func(w http.ResponseWriter, r *http.Request) {
		s.logger.WarnContext(r.Context(), "Rate limit exceeded",
			log.FieldClientIP, s.detector.ExtractClientIP(r),
			log.FieldMethod, r.Method,
			log.FieldPath, r.URL.Path)
		ErrorResponse(http.StatusTooManyRequests, "rate limit exceeded, please try again later").
			WithRequestID(trace.GetRequestID(r.Context())).
			Write(w)
	}

	h = s.limiter.Middleware(s.detector.ExtractClientIP, onLimit, http.MethodPost, http.MethodDelete)(h)
	h = s.detector.Middleware(s.logger)(h)
	h = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(h)
	return s.tracer.Middleware(h)
}

// Shutdown stops the rate limiter and gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}
