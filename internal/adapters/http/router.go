package httpadapter

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/kirillkom/hris-onboarding/internal/config"
	"github.com/kirillkom/hris-onboarding/internal/core/ports"
	"github.com/kirillkom/hris-onboarding/internal/observability/metrics"
)

const (
	serviceName     = "api"
	maxRequestBytes = 1 << 20
)

var openAPIRouter = sync.OnceValues(loadOpenAPIRouter)

type Router struct {
	cfg        config.Config
	profiles   ports.ProfileService
	onboarding ports.OnboardingService
	starter    ports.OnboardingStarter

	metrics *metrics.HTTPServerMetrics
	logger  *slog.Logger
	now     func() time.Time
}

type RouterOption func(*Router)

func WithMetrics(m *metrics.HTTPServerMetrics) RouterOption {
	return func(rt *Router) { rt.metrics = m }
}

func WithLogger(logger *slog.Logger) RouterOption {
	return func(rt *Router) {
		if logger != nil {
			rt.logger = logger
		}
	}
}

// WithClock fixes the time used for overdue and bottleneck evaluation.
func WithClock(now func() time.Time) RouterOption {
	return func(rt *Router) {
		if now != nil {
			rt.now = now
		}
	}
}

func NewRouter(
	cfg config.Config,
	profiles ports.ProfileService,
	onboarding ports.OnboardingService,
	starter ports.OnboardingStarter,
	opts ...RouterOption,
) *Router {
	rt := &Router{
		cfg:        cfg,
		profiles:   profiles,
		onboarding: onboarding,
		starter:    starter,
		logger:     slog.Default(),
		now:        func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(rt)
	}
	return rt
}

// Handler builds the full middleware chain. It panics if the embedded
// OpenAPI document is invalid.
func (rt *Router) Handler() http.Handler {
	contract, err := openAPIRouter()
	if err != nil {
		panic(err)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", rt.healthz)
	if rt.metrics != nil {
		mux.Handle("GET /metrics", rt.metrics.Handler())
	}

	mux.HandleFunc("GET /v1/profiles/{applicantID}", rt.getProfile)
	mux.HandleFunc("PATCH /v1/profiles/{applicantID}", rt.updateProfile)
	mux.HandleFunc("GET /v1/profiles/{applicantID}/completion", rt.getProfileCompletion)
	mux.HandleFunc("GET /v1/me/profile", rt.getMyProfile)
	mux.HandleFunc("PATCH /v1/me/profile", rt.updateMyProfile)
	mux.HandleFunc("GET /v1/me/onboarding", rt.getMyOnboarding)

	mux.HandleFunc("GET /v1/onboarding", rt.listOnboarding)
	mux.HandleFunc("GET /v1/templates/documents", rt.getDocumentChecklist)
	mux.HandleFunc("GET /v1/onboarding/{applicantID}", rt.getOnboardingStatus)
	mux.HandleFunc("GET /v1/onboarding/{applicantID}/summary", rt.getOnboardingSummary)
	mux.HandleFunc("POST /v1/onboarding/{applicantID}/start", rt.startOnboarding)
	mux.HandleFunc("POST /v1/onboarding/{applicantID}/initialize", rt.initializeOnboarding)
	mux.HandleFunc("POST /v1/onboarding/{applicantID}/reseed", rt.mergeOnboardingSeed)
	mux.HandleFunc("PUT /v1/onboarding/{applicantID}/stage", rt.updateOnboardingStage)
	mux.HandleFunc("POST /v1/onboarding/{applicantID}/tasks", rt.addTask)
	mux.HandleFunc("PATCH /v1/onboarding/{applicantID}/tasks/{taskID}", rt.updateTask)
	mux.HandleFunc("POST /v1/onboarding/{applicantID}/documents", rt.addDocument)
	mux.HandleFunc("PUT /v1/onboarding/{applicantID}/documents/{documentID}/status", rt.updateDocumentStatus)

	mux.HandleFunc("GET /v1/reports/onboarding.xlsx", rt.exportOnboarding)

	var handler http.Handler = mux
	if rt.metrics != nil {
		handler = rt.metrics.Middleware(serviceName, handler)
	}
	handler = openAPIValidationMiddleware(contract, handler)
	handler = backpressureMiddleware(
		handler,
		rt.cfg.APIBackpressureMaxInFlight,
		time.Duration(rt.cfg.APIBackpressureWaitMS)*time.Millisecond,
	)
	handler = rateLimitMiddleware(handler, rt.cfg.APIRateLimitRPS, rt.cfg.APIRateLimitBurst, rt.onRateLimited)
	handler = actorMiddleware(handler)
	handler = accessLogMiddleware(rt.logger, handler)
	return requestIDMiddleware(handler)
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (rt *Router) onRateLimited() {
	if rt.metrics != nil {
		rt.metrics.RecordRateLimited(serviceName)
	}
}

func (rt *Router) recordMutation(operation string, err error) {
	if rt.metrics != nil {
		rt.metrics.RecordMutation(serviceName, operation, err)
	}
}

// writeDomainError maps error kinds to status codes. Unclassified failures
// are logged and reported without internals.
func (rt *Router) writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	status := mapErrorToHTTPStatus(err)
	if status == http.StatusInternalServerError {
		rt.logger.Error("http_handler_failed",
			"request_id", requestIDFromContext(r.Context()),
			"path", r.URL.Path,
			"error", err,
		)
		writeError(w, status, "internal server error")
		return
	}
	writeError(w, status, err.Error())
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes))
	if err := decoder.Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
		case errors.Is(err, io.EOF):
			writeError(w, http.StatusBadRequest, "request body is required")
		default:
			writeError(w, http.StatusBadRequest, "invalid json: "+err.Error())
		}
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
