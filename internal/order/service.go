package order

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/ordervox/ordervox/internal/observe"
	"github.com/ordervox/ordervox/internal/orderlog"
)

// GatewayResult is the opaque outcome of one upstream order-management call.
type GatewayResult struct {
	// OK reports whether the upstream accepted the call.
	OK bool

	// OrderID is the upstream order identifier, when one was assigned.
	OrderID string

	// Data is the raw upstream payload (order status, receipt, etc.).
	Data map[string]any

	// Error is the upstream's failure description when OK is false.
	Error string
}

// Gateway is the external order-management collaborator. Transport, auth,
// and retry policy are the implementation's business; the service treats a
// call as a single opaque remote operation.
type Gateway interface {
	Create(ctx context.Context, req *CreateOrderRequest) GatewayResult
	GetByID(ctx context.Context, id string) GatewayResult
}

// ServiceOption is a functional option for configuring a [Service].
type ServiceOption func(*Service)

// WithOrderLog enables submission-outcome recording to the given store.
func WithOrderLog(store orderlog.Store) ServiceOption {
	return func(s *Service) {
		s.log = store
	}
}

// WithMetrics enables build and submission telemetry.
func WithMetrics(m *observe.Metrics) ServiceOption {
	return func(s *Service) {
		s.metrics = m
	}
}

// Service exposes the validate/submit/status operations to the HTTP
// boundary. Every call is a pure request/response transformation; there is
// no conversational state here.
type Service struct {
	builder *Builder
	gateway Gateway
	log     orderlog.Store
	metrics *observe.Metrics
}

// NewService returns a [Service] over the given builder and upstream
// gateway.
func NewService(b *Builder, gw Gateway, opts ...ServiceOption) *Service {
	s := &Service{builder: b, gateway: gw}
	for _, o := range opts {
		o(s)
	}
	return s
}

// SummaryItem is one line of a customer-facing validation summary.
type SummaryItem struct {
	Name      string   `json:"name"`
	Size      string   `json:"size,omitempty"`
	Quantity  int      `json:"quantity"`
	UnitPrice float64  `json:"unitPrice"`
	Modifiers []string `json:"modifiers,omitempty"`
}

// ValidationSummary is the customer-facing result of [Service.ValidateOrder].
// Monetary fields are rounded to cents for reading back over the phone.
type ValidationSummary struct {
	Valid    bool          `json:"valid"`
	Items    []SummaryItem `json:"items,omitempty"`
	Subtotal float64       `json:"subtotal"`
	Tax      float64       `json:"tax"`
	Total    float64       `json:"total"`
	Errors   []string      `json:"errors,omitempty"`
	Warnings []string      `json:"warnings,omitempty"`
}

// ValidateOrder builds the order without submitting it and reshapes the
// result into a summary the voice front end can read back. A malformed
// order is a normal, reportable outcome, never an error return.
func (s *Service) ValidateOrder(ctx context.Context, vo VoiceOrder) ValidationSummary {
	build := s.build(ctx, vo)
	summary := ValidationSummary{
		Valid:    build.Success,
		Errors:   build.Errors,
		Warnings: build.Warnings,
	}
	if !build.Success {
		return summary
	}

	for _, line := range build.Order.OrderLines {
		item := SummaryItem{
			Name:      line.Description,
			Quantity:  line.Quantity.Value,
			UnitPrice: roundCents(line.UnitPrice),
		}
		for _, note := range line.Notes {
			if note.Type == NotePreferences {
				item.Modifiers = append(item.Modifiers, note.Text)
			}
		}
		summary.Items = append(summary.Items, item)
	}
	for _, t := range build.Order.Totals {
		switch t.Type {
		case TotalTaxExcluded:
			summary.Subtotal = roundCents(t.Amount)
		case TotalNet:
			summary.Total = roundCents(t.Amount)
		}
	}
	for _, t := range build.Order.Taxes {
		summary.Tax = roundCents(t.Amount)
	}
	return summary
}

// SubmitResult is the outcome of [Service.SubmitOrder].
type SubmitResult struct {
	Success  bool     `json:"success"`
	OrderID  string   `json:"orderId,omitempty"`
	Errors   []string `json:"errors,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}

// SubmitOrder builds the order and, when the build succeeds, hands it to
// the upstream gateway. A build failure returns immediately without a
// network call. An upstream failure is folded into the error list with a
// distinguishing prefix rather than surfaced as a distinct error type.
func (s *Service) SubmitOrder(ctx context.Context, vo VoiceOrder) SubmitResult {
	ctx, span := observe.StartSpan(ctx, "order.submit")
	defer span.End()

	if s.metrics != nil {
		s.metrics.InflightSubmits.Add(ctx, 1)
		defer func(start time.Time) {
			s.metrics.InflightSubmits.Add(ctx, -1)
			s.metrics.SubmitDuration.Record(ctx, time.Since(start).Seconds())
		}(time.Now())
	}

	build := s.build(ctx, vo)
	result := SubmitResult{
		Errors:   build.Errors,
		Warnings: build.Warnings,
	}

	status := "rejected"
	if build.Success {
		gw := s.gateway.Create(ctx, build.Order)
		if gw.OK {
			result.Success = true
			result.OrderID = gw.OrderID
			status = "accepted"
		} else {
			result.Errors = append(result.Errors,
				fmt.Sprintf("Order submission failed: %s", gw.Error))
			status = "failed"
			observe.RecordError(span, errors.New(gw.Error))
			if s.metrics != nil {
				s.metrics.RecordGatewayError(ctx)
			}
		}
	}
	if s.metrics != nil {
		s.metrics.RecordSubmission(ctx, status)
	}

	s.record(ctx, vo, build, result)
	return result
}

// build times the document construction and records line-count telemetry.
func (s *Service) build(ctx context.Context, vo VoiceOrder) BuildResult {
	start := time.Now()
	build := s.builder.Build(vo)
	if s.metrics != nil {
		s.metrics.BuildDuration.Record(ctx, time.Since(start).Seconds())
		if build.Success {
			s.metrics.OrderLines.Record(ctx, int64(len(build.Order.OrderLines)))
		}
	}
	return build
}

// StatusResult is the outcome of [Service.GetOrderStatus].
type StatusResult struct {
	Found  bool           `json:"found"`
	Order  map[string]any `json:"order,omitempty"`
	Errors []string       `json:"errors,omitempty"`
}

// GetOrderStatus looks up an order upstream. Absence of an order is a
// normal negative result, shaped as found=false with a message.
func (s *Service) GetOrderStatus(ctx context.Context, orderID string) StatusResult {
	gw := s.gateway.GetByID(ctx, orderID)
	if !gw.OK {
		return StatusResult{
			Errors: []string{fmt.Sprintf("Order not found: %s", orderID)},
		}
	}
	return StatusResult{Found: true, Order: gw.Data}
}

// record writes the submission outcome to the order log, when one is
// configured. Logging failures are reported but never affect the result.
func (s *Service) record(ctx context.Context, vo VoiceOrder, build BuildResult, result SubmitResult) {
	if s.log == nil {
		return
	}
	entry := orderlog.Entry{
		OrderID:       result.OrderID,
		CustomerName:  vo.Customer.Name,
		CustomerPhone: vo.Customer.Phone,
		OrderType:     vo.OrderType,
		Success:       result.Success,
		Errors:        result.Errors,
		Warnings:      result.Warnings,
	}
	if build.Order != nil {
		for _, t := range build.Order.Totals {
			if t.Type == TotalNet {
				entry.Total = t.Amount
			}
		}
	}
	if _, err := s.log.Record(ctx, entry); err != nil {
		slog.Warn("order log record failed", "err", err)
	}
}

// roundCents rounds a monetary amount to two decimal places for display.
func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
