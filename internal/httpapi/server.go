// Package httpapi exposes the order pipeline over HTTP.
//
// The API is a thin shell: every interesting decision lives in the order
// service, and every endpoint translates one service call to JSON. Routes:
//
//	GET  /menu                       - full catalog snapshot
//	GET  /menu/categories/{category} - items in one category
//	POST /orders/validate            - price an order without submitting it
//	POST /orders                     - submit an order upstream
//	GET  /orders                     - recent submission log entries
//	GET  /orders/{orderID}           - upstream order status
//
// All request and response bodies use camelCase JSON. Handlers never panic
// on bad input; malformed orders come back as ordinary validation failures.
package httpapi

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ordervox/ordervox/internal/health"
	"github.com/ordervox/ordervox/internal/menu"
	"github.com/ordervox/ordervox/internal/observe"
	"github.com/ordervox/ordervox/internal/order"
	"github.com/ordervox/ordervox/internal/orderlog"
)

// maxBodyBytes caps request body size for order payloads.
const maxBodyBytes = 1 << 20

// defaultListLimit caps GET /orders responses when no limit is given.
const defaultListLimit = 50

// Server holds the handler dependencies. Construct with [New].
type Server struct {
	menu    menu.Store
	orders  *order.Service
	log     orderlog.Store
	metrics *observe.Metrics
	health  *health.Handler
}

// Option configures a [Server].
type Option func(*Server)

// WithOrderLog enables the GET /orders listing endpoint.
func WithOrderLog(store orderlog.Store) Option {
	return func(s *Server) {
		s.log = store
	}
}

// WithHealth registers liveness and readiness probes on the handler.
func WithHealth(h *health.Handler) Option {
	return func(s *Server) {
		s.health = h
	}
}

// WithMetrics overrides the metrics instance used by the middleware.
func WithMetrics(m *observe.Metrics) Option {
	return func(s *Server) {
		s.metrics = m
	}
}

// New creates a [Server] over the given catalog store and order service.
func New(menuStore menu.Store, orders *order.Service, opts ...Option) *Server {
	s := &Server{
		menu:   menuStore,
		orders: orders,
	}
	for _, o := range opts {
		o(s)
	}
	if s.metrics == nil {
		s.metrics = observe.DefaultMetrics()
	}
	return s
}

// Handler returns the fully routed handler, wrapped in the tracing and
// metrics middleware. The /metrics scrape endpoint bypasses the middleware
// so scrapes do not pollute request telemetry.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /menu", s.handleMenu)
	mux.HandleFunc("GET /menu/categories/{category}", s.handleCategory)
	mux.HandleFunc("POST /orders/validate", s.handleValidate)
	mux.HandleFunc("POST /orders", s.handleSubmit)
	mux.HandleFunc("GET /orders/{orderID}", s.handleStatus)
	if s.log != nil {
		mux.HandleFunc("GET /orders", s.handleList)
	}
	if s.health != nil {
		s.health.Register(mux)
	}

	wrapped := observe.Middleware(s.metrics)(mux)

	root := http.NewServeMux()
	root.Handle("GET /metrics", promhttp.Handler())
	root.Handle("/", wrapped)
	return root
}

// handleMenu serves the full catalog snapshot.
func (s *Server) handleMenu(w http.ResponseWriter, r *http.Request) {
	m, err := s.menu.Snapshot(r.Context())
	if err != nil {
		s.internalError(w, r, "load menu", err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

// categoryResponse is the body of GET /menu/categories/{category}.
type categoryResponse struct {
	Category string      `json:"category"`
	Items    []menu.Item `json:"items"`
}

// handleCategory serves the items of one category. An unknown category is
// an empty list, not a 404: category names are spoken, so near-misses are
// expected and the caller decides how to react.
func (s *Server) handleCategory(w http.ResponseWriter, r *http.Request) {
	category := r.PathValue("category")
	m, err := s.menu.Snapshot(r.Context())
	if err != nil {
		s.internalError(w, r, "load menu", err)
		return
	}

	items := make([]menu.Item, 0)
	for _, it := range m.Items {
		if it.Available && strings.EqualFold(it.Category, category) {
			items = append(items, it)
		}
	}
	writeJSON(w, http.StatusOK, categoryResponse{Category: category, Items: items})
}

// handleValidate prices an order without submitting it. A well-formed
// request always gets a summary: 200 when the order is buildable (warnings
// included), 422 when it is not.
func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	vo, ok := decodeVoiceOrder(w, r)
	if !ok {
		return
	}
	summary := s.orders.ValidateOrder(r.Context(), vo)
	status := http.StatusOK
	if !summary.Valid {
		status = http.StatusUnprocessableEntity
	}
	writeJSON(w, status, summary)
}

// handleSubmit builds and submits an order. 201 on upstream acceptance,
// 422 when the order cannot be built, 502 when the build succeeded but the
// upstream rejected or was unreachable.
func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	vo, ok := decodeVoiceOrder(w, r)
	if !ok {
		return
	}
	result := s.orders.SubmitOrder(r.Context(), vo)

	status := http.StatusCreated
	if !result.Success {
		if hasSubmissionFailure(result.Errors) {
			status = http.StatusBadGateway
		} else {
			status = http.StatusUnprocessableEntity
		}
	}
	writeJSON(w, status, result)
}

// handleStatus looks an order up upstream.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	result := s.orders.GetOrderStatus(r.Context(), r.PathValue("orderID"))
	status := http.StatusOK
	if !result.Found {
		status = http.StatusNotFound
	}
	writeJSON(w, status, result)
}

// listResponse is the body of GET /orders.
type listResponse struct {
	Entries []orderlog.Entry `json:"entries"`
}

// handleList serves recent submission log entries, newest first. Supports
// ?phone= and ?limit= query filters.
func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	opts := orderlog.ListOptions{
		Limit: defaultListLimit,
		Phone: r.URL.Query().Get("phone"),
	}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		opts.Limit = n
	}

	entries, err := s.log.List(r.Context(), opts)
	if err != nil {
		s.internalError(w, r, "list order log", err)
		return
	}
	if entries == nil {
		entries = []orderlog.Entry{}
	}
	writeJSON(w, http.StatusOK, listResponse{Entries: entries})
}

// decodeVoiceOrder parses the request body, writing a 400 on failure.
func decodeVoiceOrder(w http.ResponseWriter, r *http.Request) (order.VoiceOrder, bool) {
	var vo order.VoiceOrder
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&vo); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
		} else {
			writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		}
		return order.VoiceOrder{}, false
	}
	return vo, true
}

// hasSubmissionFailure reports whether the error list contains an upstream
// submission failure, distinguishing it from build-time validation errors.
func hasSubmissionFailure(errs []string) bool {
	for _, e := range errs {
		if strings.HasPrefix(e, submissionFailurePrefix) {
			return true
		}
	}
	return false
}

const submissionFailurePrefix = "Order submission failed:"

// internalError logs err and writes a generic 500 without leaking detail.
func (s *Server) internalError(w http.ResponseWriter, r *http.Request, op string, err error) {
	observe.Logger(r.Context()).Error("request failed",
		slog.String("op", op),
		slog.String("err", err.Error()),
	)
	writeError(w, http.StatusInternalServerError, "internal error")
}

// errorResponse is the JSON body for request-level failures.
type errorResponse struct {
	Error string `json:"error"`
}

// writeError writes a JSON error body with the given status.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// writeJSON encodes v as JSON and writes it with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("httpapi: encode response", "err", err)
	}
}
