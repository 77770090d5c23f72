// Package order turns loosely-structured voice orders into priced,
// schema-valid purchase orders.
//
// The pipeline has three layers, each a pure request/response transformation
// over a fixed menu snapshot:
//
//   - [Resolver] resolves one spoken order line to a [ResolvedItem] using
//     the catalog matcher, applying default-size and required-group policy.
//   - [Builder] aggregates resolved lines into a [CreateOrderRequest] with
//     subtotal, tax, and totals.
//   - [Service] exposes validate/submit/status operations and talks to the
//     external order-management [Gateway].
//
// Errors and warnings are accumulated as plain string slices rather than
// returned as Go errors: one unresolvable line degrades the order instead of
// aborting it, and the caller decides whether warnings are acceptable.
package order

// Fulfillment type markers for the upstream purchase-order document.
const (
	FulfillmentPickup   = "Pickup"
	FulfillmentDelivery = "Delivery"
	FulfillmentDineIn   = "DineIn"
)

// ChannelVoice marks purchase orders that originated from the voice
// ordering channel.
const ChannelVoice = "Voice"

// Note type markers for order-line notes.
const (
	NotePreferences = "Preferences"
	NoteOther       = "Other"
)

// Totals type markers.
const (
	TotalTaxExcluded = "TaxExcluded"
	TotalNet         = "Net"
)

// UnitEach is the unit of measure for counted order lines.
const UnitEach = "EA"

// VoiceOrder is the loosely-structured order produced by the speech/LLM
// front end. Item names, sizes, and modifiers are free text.
type VoiceOrder struct {
	// OrderType is "pickup", "delivery", or "dine-in". Anything else maps
	// to dine-in.
	OrderType string `json:"orderType"`

	Items []VoiceItem `json:"items"`

	Customer Customer `json:"customer"`

	// DeliveryAddress is only meaningful for delivery orders.
	DeliveryAddress *Address `json:"deliveryAddress,omitempty"`

	// SpecialInstructions is free text applying to the whole order.
	SpecialInstructions string `json:"specialInstructions,omitempty"`
}

// VoiceItem is one spoken order line.
type VoiceItem struct {
	// ItemName is the item as the caller said it.
	ItemName string `json:"itemName"`

	// Quantity defaults to 1 when absent or zero.
	Quantity int `json:"quantity,omitempty"`

	// Size is the spoken size phrase, if any.
	Size string `json:"size,omitempty"`

	// Modifiers are spoken flavour/add-on phrases.
	Modifiers []string `json:"modifiers,omitempty"`

	SpecialInstructions string `json:"specialInstructions,omitempty"`
}

// Customer identifies who placed the order.
type Customer struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Email string `json:"email,omitempty"`
}

// Address is a delivery address.
type Address struct {
	Line1      string `json:"line1"`
	City       string `json:"city,omitempty"`
	State      string `json:"state,omitempty"`
	PostalCode string `json:"postalCode,omitempty"`
}

// ResolvedItem is one voice line after catalog matching: fully priced and
// attributed. It is created per line during resolution, consumed immediately
// by the builder, and never persisted.
type ResolvedItem struct {
	ItemID   string
	ItemName string

	// SizeID and SizeName are empty when the item has no sizes.
	SizeID   string
	SizeName string

	Quantity int

	// UnitPrice is base price + size adjustment + sum of modifier prices.
	UnitPrice float64

	Modifiers []ResolvedModifier

	SpecialInstructions string
}

// ResolvedModifier is one accepted modifier on a resolved line.
type ResolvedModifier struct {
	ID    string
	Name  string
	Price float64
}

// CreateOrderRequest is the purchase-order document submitted upstream.
// It is built fresh per request; no shared state survives the build call.
type CreateOrderRequest struct {
	Customer    Customer    `json:"customer"`
	Fulfillment Fulfillment `json:"fulfillment"`
	OrderLines  []OrderLine `json:"orderLines"`
	Taxes       []TaxEntry  `json:"taxes"`
	Totals      []Total     `json:"totals"`
	Channel     string      `json:"channel"`
	Currency    string      `json:"currency"`

	// Owner is the restaurant name from the menu.
	Owner string `json:"owner"`

	// Comments carries the order-level special instructions.
	Comments string `json:"comments,omitempty"`
}

// Fulfillment describes how the order reaches the customer.
type Fulfillment struct {
	Type string `json:"type"`

	// Address is set for delivery orders only. Its State field is left
	// blank: the voice front end never captures it, and the gap is kept
	// visible rather than guessed at.
	Address *Address `json:"address,omitempty"`
}

// OrderLine is one priced entry of the purchase order.
type OrderLine struct {
	// ProductID is "<itemID>" or "<itemID>-<sizeID>" when a size was
	// chosen.
	ProductID string `json:"productId"`

	Description string `json:"description"`

	Quantity Quantity `json:"quantity"`

	UnitPrice float64 `json:"unitPrice"`

	// ExtendedAmount is UnitPrice multiplied by the quantity.
	ExtendedAmount float64 `json:"extendedAmount"`

	Notes []Note `json:"notes,omitempty"`

	// PriceModifiers lists every chosen modifier with a positive price.
	PriceModifiers []PriceModifier `json:"priceModifiers,omitempty"`
}

// Quantity is a counted amount with its unit of measure.
type Quantity struct {
	Value         int    `json:"value"`
	UnitOfMeasure string `json:"unitOfMeasure"`
}

// Note is a free-text annotation on an order line.
type Note struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// PriceModifier is a priced add-on attached to an order line.
type PriceModifier struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
}

// TaxEntry is one tax breakdown entry.
type TaxEntry struct {
	Amount     float64 `json:"amount"`
	Code       string  `json:"code"`
	Percentage float64 `json:"percentage"`
	IsIncluded bool    `json:"isIncluded"`
}

// Total is one entry of the order totals.
type Total struct {
	Type   string  `json:"type"`
	Amount float64 `json:"amount"`
}
