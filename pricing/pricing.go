// Package pricing implements the leasing price calculation engine: selling
// price from purchase price and margin, tiered coefficient resolution, and
// whole-order recalculation under a single shared coefficient.
//
// The package is pure computation over data already fetched by the caller.
// It performs no I/O and holds no state between calls, so every calling
// context (storefront, checkout, back-office) goes through the same code.
package pricing

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

// Engine error sentinels. Callers distinguish configuration gaps from bad
// input: ErrTierNotFound and ErrNoLeaser require administrator action,
// ErrInvalidInput is a caller validation failure.
var (
	// ErrTierNotFound indicates the rate table has no tier covering the
	// requested leaser, duration, and amount.
	ErrTierNotFound = errors.New("no rate tier covers the requested amount")

	// ErrNoLeaser indicates no financing partner is assigned, so no rate
	// table can even be consulted.
	ErrNoLeaser = errors.New("no leaser assigned")

	// ErrInvalidInput indicates a negative price or margin, a non-positive
	// duration, or a non-positive quantity. Inputs are never coerced.
	ErrInvalidInput = errors.New("invalid pricing input")
)

// IsTierNotFound reports whether err is a rate-table coverage gap.
func IsTierNotFound(err error) bool {
	return errors.Is(err, ErrTierNotFound)
}

// IsNoLeaser reports whether err means no financing partner was assigned.
func IsNoLeaser(err error) bool {
	return errors.Is(err, ErrNoLeaser)
}

// IsInvalidInput reports whether err is an input validation failure.
func IsInvalidInput(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// Tier is one row of a leaser's rate table: an inclusive amount range mapped
// to a coefficient (a percentage, e.g. 3.8 meaning 3.8%), scoped to one
// leaser and one contract duration. A nil MaxAmount marks the tier as
// unbounded above.
type Tier struct {
	LeaserID       uint
	DurationMonths int
	MinAmount      float64
	MaxAmount      *float64
	Coefficient    float64
}

// Unbounded reports whether the tier has no upper amount limit.
func (t Tier) Unbounded() bool {
	return t.MaxAmount == nil
}

// Contains reports whether amount falls inside the tier's inclusive range.
func (t Tier) Contains(amount float64) bool {
	if amount < t.MinAmount {
		return false
	}
	return t.MaxAmount == nil || amount <= *t.MaxAmount
}

// Table is an in-memory rate table. Load the full tier set for the leasers
// and durations in play once, then resolve purely in memory; this keeps the
// resolver deterministic and unit-testable without a database.
type Table struct {
	tiers []Tier
}

// NewTable builds a Table from tier rows. The input slice is copied; row
// order does not matter.
func NewTable(tiers []Tier) *Table {
	copied := make([]Tier, len(tiers))
	copy(copied, tiers)
	return &Table{tiers: copied}
}

// ResolveCoefficient looks up the coefficient for the given leaser, duration,
// and amount.
//
// Bounded tiers are searched first. If more than one bounded tier contains
// the amount (a misconfigured, overlapping table) the tier with the lowest
// coefficient wins, so a configuration mistake can never overcharge the
// customer. If no bounded tier matches, the unbounded tier with the highest
// MinAmount at or below the amount is used. Exhausting both searches is a
// rate-table coverage gap, reported as ErrTierNotFound.
func (t *Table) ResolveCoefficient(leaserID uint, durationMonths int, amount float64) (float64, error) {
	if durationMonths <= 0 {
		return 0, fmt.Errorf("%w: duration must be positive, got %d", ErrInvalidInput, durationMonths)
	}
	if amount < 0 || math.IsNaN(amount) || math.IsInf(amount, 0) {
		return 0, fmt.Errorf("%w: amount must be a non-negative number", ErrInvalidInput)
	}

	bestBounded := -1
	bestUnbounded := -1
	for i, tier := range t.tiers {
		if tier.LeaserID != leaserID || tier.DurationMonths != durationMonths || !tier.Contains(amount) {
			continue
		}
		if tier.Unbounded() {
			if bestUnbounded < 0 || tier.MinAmount > t.tiers[bestUnbounded].MinAmount {
				bestUnbounded = i
			}
			continue
		}
		if bestBounded < 0 || tier.Coefficient < t.tiers[bestBounded].Coefficient {
			bestBounded = i
		}
	}

	if bestBounded >= 0 {
		return t.tiers[bestBounded].Coefficient, nil
	}
	if bestUnbounded >= 0 {
		return t.tiers[bestUnbounded].Coefficient, nil
	}
	return 0, fmt.Errorf("%w: leaser %d, duration %d months, amount %.2f", ErrTierNotFound, leaserID, durationMonths, amount)
}

// TiersFor returns the tiers for one (leaser, duration) pair ordered by
// MinAmount, bounded tiers before the unbounded tail. Used by the back-office
// to render and export a leaser's rate grid.
func (t *Table) TiersFor(leaserID uint, durationMonths int) []Tier {
	out := make([]Tier, 0)
	for _, tier := range t.tiers {
		if tier.LeaserID == leaserID && tier.DurationMonths == durationMonths {
			out = append(out, tier)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Unbounded() != out[j].Unbounded() {
			return out[j].Unbounded()
		}
		return out[i].MinAmount < out[j].MinAmount
	})
	return out
}

// SellingPrice computes the platform selling price: the purchase price
// inflated by the margin percentage. No rounding happens here; both inputs
// are assumed non-negative (validated by the calling operation).
func SellingPrice(purchasePrice, marginPercent float64) float64 {
	return purchasePrice * (1 + marginPercent/100)
}

// Quote is the full pricing output for a single product at one duration.
type Quote struct {
	SellingPrice float64
	Coefficient  float64
	MonthlyPrice float64
	TotalPrice   float64
}

// QuoteProduct prices a single product: selling price from purchase price and
// margin, coefficient resolved against the selling price, monthly rental and
// total over the contract.
//
// A nil leaserID fails with ErrNoLeaser before any lookup, so callers can
// report "no financing partner configured" separately from a rate-table gap.
func QuoteProduct(table *Table, purchasePrice, marginPercent float64, leaserID *uint, durationMonths int) (Quote, error) {
	if purchasePrice < 0 {
		return Quote{}, fmt.Errorf("%w: purchase price must be non-negative", ErrInvalidInput)
	}
	if marginPercent < 0 {
		return Quote{}, fmt.Errorf("%w: margin percent must be non-negative", ErrInvalidInput)
	}
	if durationMonths <= 0 {
		return Quote{}, fmt.Errorf("%w: duration must be positive, got %d", ErrInvalidInput, durationMonths)
	}
	if leaserID == nil {
		return Quote{}, ErrNoLeaser
	}

	sellingPrice := SellingPrice(purchasePrice, marginPercent)
	coefficient, err := table.ResolveCoefficient(*leaserID, durationMonths, sellingPrice)
	if err != nil {
		return Quote{}, err
	}

	monthlyPrice := sellingPrice * coefficient / 100
	return Quote{
		SellingPrice: sellingPrice,
		Coefficient:  coefficient,
		MonthlyPrice: monthlyPrice,
		TotalPrice:   monthlyPrice * float64(durationMonths),
	}, nil
}

// LineItem is one order line before pricing.
type LineItem struct {
	ProductID     uint
	PurchasePrice float64
	MarginPercent float64
	Quantity      int
}

// PricedLine is one order line after recalculation. CalculatedPrice is the
// line total across its full quantity and full duration; Coefficient is the
// order-level coefficient, identical on every line of one recalculation.
type PricedLine struct {
	LineItem
	SellingPrice    float64
	MonthlyPrice    float64
	CalculatedPrice float64
	Coefficient     float64
}

// UnitPrice is the per-unit share of CalculatedPrice, derived from the
// unrounded line total. Round only at the persistence or display edge;
// mixing rounded and unrounded figures causes cent-level drift when lines
// are re-aggregated.
func (p PricedLine) UnitPrice() float64 {
	if p.Quantity == 0 {
		return 0
	}
	return p.CalculatedPrice / float64(p.Quantity)
}

// Recalculate prices an entire order under one shared coefficient.
//
// Leasing coefficients are tiered by the total financed amount, not by
// individual line amounts, so the coefficient is resolved once against the
// aggregate of selling prices times quantities and then applied to every
// line. Any mutation of an order's item set invalidates all previously
// calculated line prices: callers must re-run Recalculate over the full
// union of items, never price a new item in isolation.
//
// The result is all-or-nothing. If the coefficient cannot be resolved no
// lines are returned. An empty item list is a no-op returning an empty slice.
func Recalculate(table *Table, items []LineItem, leaserID uint, durationMonths int) ([]PricedLine, error) {
	if durationMonths <= 0 {
		return nil, fmt.Errorf("%w: duration must be positive, got %d", ErrInvalidInput, durationMonths)
	}
	for _, item := range items {
		if item.PurchasePrice < 0 {
			return nil, fmt.Errorf("%w: product %d has a negative purchase price", ErrInvalidInput, item.ProductID)
		}
		if item.MarginPercent < 0 {
			return nil, fmt.Errorf("%w: product %d has a negative margin", ErrInvalidInput, item.ProductID)
		}
		if item.Quantity <= 0 {
			return nil, fmt.Errorf("%w: product %d has a non-positive quantity", ErrInvalidInput, item.ProductID)
		}
	}

	priced := make([]PricedLine, 0, len(items))
	if len(items) == 0 {
		return priced, nil
	}

	total := 0.0
	sellingPrices := make([]float64, len(items))
	for i, item := range items {
		sellingPrices[i] = SellingPrice(item.PurchasePrice, item.MarginPercent)
		total += sellingPrices[i] * float64(item.Quantity)
	}

	coefficient, err := table.ResolveCoefficient(leaserID, durationMonths, total)
	if err != nil {
		return nil, err
	}

	for i, item := range items {
		monthlyPrice := sellingPrices[i] * coefficient / 100
		priced = append(priced, PricedLine{
			LineItem:        item,
			SellingPrice:    sellingPrices[i],
			MonthlyPrice:    monthlyPrice,
			CalculatedPrice: monthlyPrice * float64(durationMonths) * float64(item.Quantity),
			Coefficient:     coefficient,
		})
	}

	return priced, nil
}

// Round2 rounds a monetary value to two decimals. Applied only at the
// persistence and display edges, never inside the engine.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
