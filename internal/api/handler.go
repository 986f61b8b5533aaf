// Package api exposes the odds calculator over HTTP.
package api

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/cory-johannsen/risus/internal/config"
	"github.com/cory-johannsen/risus/internal/game/probability"
	"github.com/cory-johannsen/risus/internal/game/ruleset"
	"github.com/cory-johannsen/risus/internal/report"
	"github.com/cory-johannsen/risus/internal/tables"
)

// MaxListedFailures caps how many sequences a failures response carries.
const MaxListedFailures = 5000

var errBadRequest = errors.New("bad request")

// Handler wires the odds endpoints to the table service.
type Handler struct {
	service  *tables.Service
	registry *ruleset.Registry
	logger   *zap.Logger
	limits   config.HTTPConfig
	metrics  http.Handler
}

// New constructs a Handler. metrics may be nil to omit /metrics.
//
// Precondition: service, registry and logger must be non-nil.
func New(service *tables.Service, registry *ruleset.Registry, logger *zap.Logger, limits config.HTTPConfig, metrics http.Handler) *Handler {
	return &Handler{
		service:  service,
		registry: registry,
		logger:   logger,
		limits:   limits,
		metrics:  metrics,
	}
}

// Routes returns the router serving every endpoint.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(h.logRequests)

	r.Get("/healthz", h.HandleHealth)
	if h.metrics != nil {
		r.Handle("/metrics", h.metrics)
	}
	r.Route("/v1/rulesets", func(r chi.Router) {
		r.Get("/", h.HandleListRulesets)
		r.Get("/{id}/probability", h.HandleProbability)
		r.Get("/{id}/failures", h.HandleFailures)
		r.Get("/{id}/table", h.HandleTable)
	})
	return r
}

// HandleHealth handles GET /healthz.
func (h *Handler) HandleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// HandleListRulesets handles GET /v1/rulesets.
func (h *Handler) HandleListRulesets(w http.ResponseWriter, _ *http.Request) {
	policies := h.registry.All()
	out := make([]rulesetResponse, len(policies))
	for i, p := range policies {
		out[i] = toRulesetResponse(p)
	}
	writeJSON(w, http.StatusOK, out)
}

// HandleProbability handles GET /v1/rulesets/{id}/probability?pool=&target=.
func (h *Handler) HandleProbability(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	pool, target, err := h.cellParams(r)
	if err != nil {
		h.writeError(w, err)
		return
	}
	p, err := h.service.Cell(r.Context(), id, pool, target)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, probabilityResponse{
		Ruleset:     id,
		Pool:        pool,
		Target:      target,
		Probability: p,
		Percent:     100 * p,
	})
}

// HandleFailures handles GET /v1/rulesets/{id}/failures?pool=&target=.
func (h *Handler) HandleFailures(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	pool, target, err := h.cellParams(r)
	if err != nil {
		h.writeError(w, err)
		return
	}
	calc, err := h.service.Calculator(id)
	if err != nil {
		h.writeError(w, err)
		return
	}

	resp := failuresResponse{
		Ruleset:   id,
		Pool:      pool,
		Target:    target,
		MaxLength: calc.MaxFailureLength(pool, target),
		Failures:  []probability.Failure{},
	}
	calc.ListFailures(pool, target, func(f probability.Failure) {
		resp.Count++
		if len(resp.Failures) < MaxListedFailures {
			resp.Failures = append(resp.Failures, f)
		}
	})
	resp.Truncated = resp.Count > len(resp.Failures)
	writeJSON(w, http.StatusOK, resp)
}

// HandleTable handles GET /v1/rulesets/{id}/table?max_pool=&max_target=&precision=
// and responds with the rendered text table.
func (h *Handler) HandleTable(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	q := r.URL.Query()
	maxPool, err := intParam(q.Get("max_pool"), report.MaxPoolSize)
	if err != nil {
		h.writeError(w, err)
		return
	}
	maxTarget, err := intParam(q.Get("max_target"), h.limits.MaxTarget)
	if err != nil {
		h.writeError(w, err)
		return
	}
	precision, err := intParam(q.Get("precision"), 2)
	if err != nil {
		h.writeError(w, err)
		return
	}
	if maxTarget > h.limits.MaxTarget {
		h.writeError(w, fmt.Errorf("%w: max_target above %d", errBadRequest, h.limits.MaxTarget))
		return
	}
	if precision < 0 || precision > 10 {
		h.writeError(w, fmt.Errorf("%w: precision must be 0-10", errBadRequest))
		return
	}

	policy, err := h.registry.Get(id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	grid, err := h.service.Grid(r.Context(), id, maxPool, maxTarget, nil)
	if err != nil {
		h.writeError(w, err)
		return
	}
	var buf bytes.Buffer
	if err := report.RenderTable(&buf, grid, policy.PoolTerm(), precision); err != nil {
		h.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func (h *Handler) cellParams(r *http.Request) (int, int, error) {
	q := r.URL.Query()
	pool, err := intParam(q.Get("pool"), -1)
	if err != nil {
		return 0, 0, err
	}
	target, err := intParam(q.Get("target"), -1)
	if err != nil {
		return 0, 0, err
	}
	if pool < 1 || pool > h.limits.MaxPoolSize {
		return 0, 0, fmt.Errorf("%w: pool must be 1-%d", errBadRequest, h.limits.MaxPoolSize)
	}
	if target < 1 || target > h.limits.MaxTarget {
		return 0, 0, fmt.Errorf("%w: target must be 1-%d", errBadRequest, h.limits.MaxTarget)
	}
	return pool, target, nil
}

func intParam(raw string, fallback int) (int, error) {
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not an integer", errBadRequest, raw)
	}
	return n, nil
}

func (h *Handler) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		h.logger.Info("request",
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Int("bytes", ww.BytesWritten()),
			zap.Duration("elapsed", time.Since(start)),
		)
	})
}
