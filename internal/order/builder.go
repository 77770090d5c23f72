package order

import (
	"fmt"
	"strings"
)

// Tax is the injected regional tax configuration. The reference deployment
// uses Ontario HST: rate 0.13, code "HST".
type Tax struct {
	// Rate is the fractional tax rate applied to the subtotal (0.13 = 13%).
	Rate float64 `yaml:"rate" json:"rate"`

	// Code is the tax code reported in the order's tax breakdown.
	Code string `yaml:"code" json:"code"`
}

// DefaultTax returns the reference deployment's tax configuration.
func DefaultTax() Tax {
	return Tax{Rate: 0.13, Code: "HST"}
}

// Builder aggregates resolved voice lines into a complete purchase order.
// It is read-only and safe for concurrent use.
type Builder struct {
	resolver *Resolver
	tax      Tax
}

// NewBuilder returns a [Builder] over the given resolver and tax
// configuration.
func NewBuilder(r *Resolver, tax Tax) *Builder {
	return &Builder{resolver: r, tax: tax}
}

// BuildResult is the outcome of [Builder.Build].
type BuildResult struct {
	// Success is false only when not a single line resolved. A successful
	// build may still carry warnings, and even line-level errors from
	// lines that were dropped.
	Success bool

	// Order is nil when Success is false.
	Order *CreateOrderRequest

	Errors   []string
	Warnings []string
}

// Build resolves every line of vo and assembles the purchase order:
// customer, fulfillment, order lines, tax breakdown, and totals. Line-level
// errors and warnings from all lines are concatenated into the result.
//
// Building is deterministic: the same voice order against the same menu
// yields an identical document.
func (b *Builder) Build(vo VoiceOrder) BuildResult {
	var out BuildResult

	var resolved []ResolvedItem
	for _, line := range vo.Items {
		res := b.resolver.ResolveItem(line)
		out.Errors = append(out.Errors, res.Errors...)
		out.Warnings = append(out.Warnings, res.Warnings...)
		if res.Resolved != nil {
			resolved = append(resolved, *res.Resolved)
		}
	}

	if len(resolved) == 0 {
		out.Errors = append(out.Errors, "No valid items in order")
		return out
	}

	m := b.resolver.matcher.Menu()
	req := &CreateOrderRequest{
		Customer:    vo.Customer,
		Fulfillment: buildFulfillment(vo),
		Channel:     ChannelVoice,
		Currency:    m.Restaurant.Currency,
		Owner:       m.Restaurant.Name,
		Comments:    vo.SpecialInstructions,
	}

	var subtotal float64
	for _, item := range resolved {
		line := buildLine(item)
		subtotal += line.ExtendedAmount
		req.OrderLines = append(req.OrderLines, line)
	}

	taxAmount := subtotal * b.tax.Rate
	req.Taxes = []TaxEntry{{
		Amount:     taxAmount,
		Code:       b.tax.Code,
		Percentage: b.tax.Rate * 100,
		IsIncluded: false,
	}}
	req.Totals = []Total{
		{Type: TotalTaxExcluded, Amount: subtotal},
		{Type: TotalNet, Amount: subtotal + taxAmount},
	}

	out.Success = true
	out.Order = req
	return out
}

// buildFulfillment maps the spoken order type onto the upstream fulfillment
// document. Unknown types are treated as dine-in.
func buildFulfillment(vo VoiceOrder) Fulfillment {
	switch vo.OrderType {
	case "pickup":
		return Fulfillment{Type: FulfillmentPickup}
	case "delivery":
		addr := &Address{}
		if vo.DeliveryAddress != nil {
			addr.Line1 = vo.DeliveryAddress.Line1
			addr.City = vo.DeliveryAddress.City
			addr.PostalCode = vo.DeliveryAddress.PostalCode
		}
		// State stays blank: the voice front end never captures it.
		return Fulfillment{Type: FulfillmentDelivery, Address: addr}
	default:
		return Fulfillment{Type: FulfillmentDineIn}
	}
}

// buildLine converts one resolved item into an order line.
func buildLine(item ResolvedItem) OrderLine {
	line := OrderLine{
		ProductID:   item.ItemID,
		Description: item.ItemName,
		Quantity: Quantity{
			Value:         item.Quantity,
			UnitOfMeasure: UnitEach,
		},
		UnitPrice:      item.UnitPrice,
		ExtendedAmount: item.UnitPrice * float64(item.Quantity),
	}
	if item.SizeID != "" {
		line.ProductID = fmt.Sprintf("%s-%s", item.ItemID, item.SizeID)
		line.Description = fmt.Sprintf("%s - %s", item.ItemName, item.SizeName)
	}

	if len(item.Modifiers) > 0 {
		names := make([]string, len(item.Modifiers))
		for i, mod := range item.Modifiers {
			names[i] = mod.Name
		}
		line.Notes = append(line.Notes, Note{
			Type: NotePreferences,
			Text: strings.Join(names, ", "),
		})
	}
	if item.SpecialInstructions != "" {
		line.Notes = append(line.Notes, Note{
			Type: NoteOther,
			Text: item.SpecialInstructions,
		})
	}

	for _, mod := range item.Modifiers {
		if mod.Price > 0 {
			line.PriceModifiers = append(line.PriceModifiers, PriceModifier{
				ID:     mod.ID,
				Name:   mod.Name,
				Amount: mod.Price,
			})
		}
	}

	return line
}
