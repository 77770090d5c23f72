package pos

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"sync"

	"github.com/ordervox/ordervox/internal/order"
)

// Compile-time interface assertion.
var _ order.Gateway = (*Local)(nil)

// Local is an in-process gateway that accepts every well-formed order and
// keeps it in memory. It stands in for the upstream API when no base URL is
// configured, so the pipeline stays exercisable in development and tests.
// Safe for concurrent use.
type Local struct {
	mu     sync.RWMutex
	orders map[string]map[string]any
}

// NewLocal returns an empty [Local] gateway.
func NewLocal() *Local {
	return &Local{orders: make(map[string]map[string]any)}
}

// Create accepts the order, assigns it a random identifier, and stores it.
func (l *Local) Create(ctx context.Context, req *order.CreateOrderRequest) order.GatewayResult {
	// Round-trip through JSON so stored orders have the same shape a real
	// upstream would echo back.
	raw, err := json.Marshal(req)
	if err != nil {
		return order.GatewayResult{Error: "encode order: " + err.Error()}
	}
	var data map[string]any
	if err := json.Unmarshal(raw, &data); err != nil {
		return order.GatewayResult{Error: "encode order: " + err.Error()}
	}

	id := newLocalID()
	data["id"] = id

	l.mu.Lock()
	l.orders[id] = data
	l.mu.Unlock()

	return order.GatewayResult{OK: true, OrderID: id, Data: data}
}

// GetByID returns a previously accepted order, or a not-found result.
func (l *Local) GetByID(ctx context.Context, id string) order.GatewayResult {
	l.mu.RLock()
	data, ok := l.orders[id]
	l.mu.RUnlock()

	if !ok {
		return order.GatewayResult{Error: "order " + id + " not found"}
	}
	return order.GatewayResult{OK: true, OrderID: id, Data: data}
}

// newLocalID returns a random 16-byte hex identifier.
func newLocalID() string {
	var b [16]byte
	if _, err := rand.Read(b[:]); err != nil {
		panic("pos: read random: " + err.Error())
	}
	return hex.EncodeToString(b[:])
}
