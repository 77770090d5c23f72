// Package health serves Kubernetes-style liveness and readiness probes.
//
// /healthz reports liveness: a process that can answer HTTP is alive, so it
// always returns 200. /readyz reports readiness and returns 503 until every
// registered [Checker] passes, which keeps the service out of rotation while
// the menu catalog is empty or the order gateway is tripped. Both endpoints
// answer with a JSON body carrying an overall "status" and a per-check
// "checks" map.
package health

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"
)

// checkTimeout bounds one /readyz evaluation. A dependency that cannot
// answer within this window is treated as down.
const checkTimeout = 5 * time.Second

// Checker probes one dependency. Check returns nil when the dependency is
// healthy; the error text of a failure is reported verbatim in the /readyz
// body under Name.
type Checker struct {
	// Name keys this check in the JSON response, e.g. "menu" or "pos".
	Name string

	// Check must respect context cancellation.
	Check func(ctx context.Context) error
}

// Handler answers /healthz and /readyz. The checker list is fixed at
// construction, so a Handler is safe for concurrent use.
type Handler struct {
	checkers []Checker
}

// New returns a [Handler] that evaluates the given checkers on each /readyz
// request.
func New(checkers ...Checker) *Handler {
	c := make([]Checker, len(checkers))
	copy(c, checkers)
	return &Handler{checkers: c}
}

// result is the JSON body for both probe endpoints.
type result struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// Healthz always answers 200 OK.
func (h *Handler) Healthz(w http.ResponseWriter, _ *http.Request) {
	respond(w, http.StatusOK, result{Status: "ok"})
}

// Readyz evaluates all checkers concurrently under a shared [checkTimeout]
// deadline and answers 503 if any of them fails.
func (h *Handler) Readyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), checkTimeout)
	defer cancel()

	outcomes := make([]error, len(h.checkers))
	var g errgroup.Group
	for i, c := range h.checkers {
		g.Go(func() error {
			outcomes[i] = c.Check(ctx)
			return nil
		})
	}
	_ = g.Wait()

	res := result{
		Status: "ok",
		Checks: make(map[string]string, len(h.checkers)),
	}
	code := http.StatusOK
	for i, c := range h.checkers {
		if err := outcomes[i]; err != nil {
			res.Checks[c.Name] = "fail: " + err.Error()
			res.Status = "fail"
			code = http.StatusServiceUnavailable
		} else {
			res.Checks[c.Name] = "ok"
		}
	}
	respond(w, code, res)
}

// Register adds the /healthz and /readyz routes to mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", h.Healthz)
	mux.HandleFunc("GET /readyz", h.Readyz)
}

func respond(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"status":"error"}`, http.StatusInternalServerError)
	}
}
