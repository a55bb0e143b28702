package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func maxAmount(v float64) *float64 {
	return &v
}

// grensisTable models a typical leaser grid: tiers for 36 months only, with
// an unbounded tail above 15000.
func grensisTable() *Table {
	return NewTable([]Tier{
		{LeaserID: 1, DurationMonths: 36, MinAmount: 0, MaxAmount: maxAmount(5000), Coefficient: 4.2},
		{LeaserID: 1, DurationMonths: 36, MinAmount: 5000, MaxAmount: maxAmount(15000), Coefficient: 3.8},
		{LeaserID: 1, DurationMonths: 36, MinAmount: 15000, MaxAmount: nil, Coefficient: 3.2},
	})
}

func TestSellingPrice(t *testing.T) {
	t.Run("ExactFormula", func(t *testing.T) {
		assert.Equal(t, 1200.0, SellingPrice(1000, 20))
		assert.Equal(t, 1000.0, SellingPrice(1000, 0))
		assert.Equal(t, 0.0, SellingPrice(0, 50))
	})

	t.Run("NoRounding", func(t *testing.T) {
		// The raw formula result must come back untouched.
		assert.Equal(t, 999.99*(1+12.345/100), SellingPrice(999.99, 12.345))
	})
}

func TestResolveCoefficient(t *testing.T) {
	table := grensisTable()

	t.Run("BoundedMatch", func(t *testing.T) {
		coeff, err := table.ResolveCoefficient(1, 36, 2500)
		require.NoError(t, err)
		assert.Equal(t, 4.2, coeff)
	})

	t.Run("UnboundedMatch", func(t *testing.T) {
		coeff, err := table.ResolveCoefficient(1, 36, 100000)
		require.NoError(t, err)
		assert.Equal(t, 3.2, coeff)
	})

	t.Run("Idempotent", func(t *testing.T) {
		first, err := table.ResolveCoefficient(1, 36, 7500)
		require.NoError(t, err)
		second, err := table.ResolveCoefficient(1, 36, 7500)
		require.NoError(t, err)
		assert.Equal(t, first, second)
	})

	t.Run("BoundaryAmountIsDeterministic", func(t *testing.T) {
		// Tiers [0,1000]→5 and [1000,∞)→3: bounded tiers are searched
		// first, so exactly 1000 lands in the bounded tier.
		boundary := NewTable([]Tier{
			{LeaserID: 7, DurationMonths: 24, MinAmount: 0, MaxAmount: maxAmount(1000), Coefficient: 5},
			{LeaserID: 7, DurationMonths: 24, MinAmount: 1000, MaxAmount: nil, Coefficient: 3},
		})
		coeff, err := boundary.ResolveCoefficient(7, 24, 1000)
		require.NoError(t, err)
		assert.Equal(t, 5.0, coeff)
	})

	t.Run("SharedBoundedEdgeBothInclusive", func(t *testing.T) {
		// Adjacent bounded tiers share the 5000 edge; both contain the
		// amount, so the overlap rule applies and the cheaper one wins.
		coeff, err := table.ResolveCoefficient(1, 36, 5000)
		require.NoError(t, err)
		assert.Equal(t, 3.8, coeff)
	})

	t.Run("OverlappingBoundedTiersLowestCoefficientWins", func(t *testing.T) {
		// Regression pin for the overlap policy: a misconfigured table
		// must resolve to the lowest coefficient, never overcharging.
		overlapping := NewTable([]Tier{
			{LeaserID: 2, DurationMonths: 48, MinAmount: 0, MaxAmount: maxAmount(10000), Coefficient: 4.5},
			{LeaserID: 2, DurationMonths: 48, MinAmount: 8000, MaxAmount: maxAmount(20000), Coefficient: 3.9},
		})
		coeff, err := overlapping.ResolveCoefficient(2, 48, 9000)
		require.NoError(t, err)
		assert.Equal(t, 3.9, coeff)
	})

	t.Run("MultipleUnboundedTiersHighestMinWins", func(t *testing.T) {
		stacked := NewTable([]Tier{
			{LeaserID: 3, DurationMonths: 60, MinAmount: 0, MaxAmount: nil, Coefficient: 5.0},
			{LeaserID: 3, DurationMonths: 60, MinAmount: 50000, MaxAmount: nil, Coefficient: 2.5},
		})
		coeff, err := stacked.ResolveCoefficient(3, 60, 60000)
		require.NoError(t, err)
		assert.Equal(t, 2.5, coeff)
	})

	t.Run("MissingDurationIsTierNotFound", func(t *testing.T) {
		// The table only covers 36 months: 48 must fail, not fall back
		// to some default coefficient.
		_, err := table.ResolveCoefficient(1, 48, 2500)
		require.Error(t, err)
		assert.True(t, IsTierNotFound(err))
	})

	t.Run("UnknownLeaserIsTierNotFound", func(t *testing.T) {
		_, err := table.ResolveCoefficient(99, 36, 2500)
		require.Error(t, err)
		assert.True(t, IsTierNotFound(err))
	})

	t.Run("CoverageGapIsTierNotFound", func(t *testing.T) {
		gapped := NewTable([]Tier{
			{LeaserID: 4, DurationMonths: 36, MinAmount: 1000, MaxAmount: maxAmount(2000), Coefficient: 4},
		})
		_, err := gapped.ResolveCoefficient(4, 36, 500)
		require.Error(t, err)
		assert.True(t, IsTierNotFound(err))
	})

	t.Run("InvalidInputs", func(t *testing.T) {
		_, err := table.ResolveCoefficient(1, 0, 2500)
		assert.True(t, IsInvalidInput(err))

		_, err = table.ResolveCoefficient(1, 36, -1)
		assert.True(t, IsInvalidInput(err))
	})
}

func TestTiersFor(t *testing.T) {
	table := grensisTable()

	tiers := table.TiersFor(1, 36)
	require.Len(t, tiers, 3)
	assert.Equal(t, 0.0, tiers[0].MinAmount)
	assert.Equal(t, 5000.0, tiers[1].MinAmount)
	assert.True(t, tiers[2].Unbounded())

	assert.Empty(t, table.TiersFor(1, 48))
}

func TestQuoteProduct(t *testing.T) {
	table := grensisTable()
	leaserID := uint(1)

	t.Run("FullQuote", func(t *testing.T) {
		// purchase 2000, margin 25 → selling 2500 → tier 4.2 →
		// monthly 105, total over 36 months 3780.
		quote, err := QuoteProduct(table, 2000, 25, &leaserID, 36)
		require.NoError(t, err)
		assert.Equal(t, 2500.0, quote.SellingPrice)
		assert.Equal(t, 4.2, quote.Coefficient)
		assert.InDelta(t, 105.0, quote.MonthlyPrice, 1e-9)
		assert.InDelta(t, 3780.0, quote.TotalPrice, 1e-9)
	})

	t.Run("LookupUsesSellingPriceNotPurchasePrice", func(t *testing.T) {
		// purchase 4000, margin 50 → selling 6000, which crosses into
		// the second tranche even though the purchase price would not.
		quote, err := QuoteProduct(table, 4000, 50, &leaserID, 36)
		require.NoError(t, err)
		assert.Equal(t, 3.8, quote.Coefficient)
	})

	t.Run("NilLeaserIsDistinctFromTierNotFound", func(t *testing.T) {
		_, err := QuoteProduct(table, 2000, 25, nil, 36)
		require.Error(t, err)
		assert.True(t, IsNoLeaser(err))
		assert.False(t, IsTierNotFound(err))
	})

	t.Run("TierNotFoundPropagates", func(t *testing.T) {
		_, err := QuoteProduct(table, 2000, 25, &leaserID, 48)
		require.Error(t, err)
		assert.True(t, IsTierNotFound(err))
	})

	t.Run("InvalidInputs", func(t *testing.T) {
		_, err := QuoteProduct(table, -1, 25, &leaserID, 36)
		assert.True(t, IsInvalidInput(err))

		_, err = QuoteProduct(table, 2000, -5, &leaserID, 36)
		assert.True(t, IsInvalidInput(err))

		_, err = QuoteProduct(table, 2000, 25, &leaserID, -36)
		assert.True(t, IsInvalidInput(err))
	})
}

func TestRecalculate(t *testing.T) {
	table := grensisTable()

	t.Run("EmptyOrderIsNoop", func(t *testing.T) {
		priced, err := Recalculate(table, nil, 1, 36)
		require.NoError(t, err)
		assert.Empty(t, priced)

		priced, err = Recalculate(table, []LineItem{}, 1, 36)
		require.NoError(t, err)
		assert.Empty(t, priced)
	})

	t.Run("SingleCoefficientAcrossAllLines", func(t *testing.T) {
		items := []LineItem{
			{ProductID: 1, PurchasePrice: 1000, MarginPercent: 20, Quantity: 2},
			{ProductID: 2, PurchasePrice: 3000, MarginPercent: 10, Quantity: 1},
			{ProductID: 3, PurchasePrice: 500, MarginPercent: 0, Quantity: 4},
		}
		priced, err := Recalculate(table, items, 1, 36)
		require.NoError(t, err)
		require.Len(t, priced, 3)

		for _, line := range priced {
			assert.Equal(t, priced[0].Coefficient, line.Coefficient)
		}
	})

	t.Run("CoefficientComesFromAggregateNotLines", func(t *testing.T) {
		// Each line's own selling price sits in the 4.2 tranche, but
		// the aggregate (3 × 1200 + 2 × 1210 = 6020) crosses into the
		// 3.8 tranche, which every line must then receive.
		items := []LineItem{
			{ProductID: 1, PurchasePrice: 1000, MarginPercent: 20, Quantity: 3},
			{ProductID: 2, PurchasePrice: 1100, MarginPercent: 10, Quantity: 2},
		}
		priced, err := Recalculate(table, items, 1, 36)
		require.NoError(t, err)
		require.Len(t, priced, 2)
		assert.Equal(t, 3.8, priced[0].Coefficient)
		assert.Equal(t, 3.8, priced[1].Coefficient)
	})

	t.Run("AddingAnItemRepricesExistingLines", func(t *testing.T) {
		// Tiers [0,500]→10 and [500,∞)→5. Item A alone (selling 400)
		// prices at 10% → monthly 40. Adding item B (selling 300)
		// moves the aggregate to 700, so A must reprice at 5% →
		// monthly 20, not remain at 40.
		steps := NewTable([]Tier{
			{LeaserID: 9, DurationMonths: 24, MinAmount: 0, MaxAmount: maxAmount(500), Coefficient: 10},
			{LeaserID: 9, DurationMonths: 24, MinAmount: 500, MaxAmount: nil, Coefficient: 5},
		})
		a := LineItem{ProductID: 1, PurchasePrice: 400, MarginPercent: 0, Quantity: 1}
		b := LineItem{ProductID: 2, PurchasePrice: 300, MarginPercent: 0, Quantity: 1}

		alone, err := Recalculate(steps, []LineItem{a}, 9, 24)
		require.NoError(t, err)
		assert.InDelta(t, 40.0, alone[0].MonthlyPrice, 1e-9)

		together, err := Recalculate(steps, []LineItem{a, b}, 9, 24)
		require.NoError(t, err)
		require.Len(t, together, 2)
		assert.InDelta(t, 20.0, together[0].MonthlyPrice, 1e-9)
		assert.InDelta(t, 15.0, together[1].MonthlyPrice, 1e-9)
		assert.Equal(t, 5.0, together[0].Coefficient)
		assert.Equal(t, 5.0, together[1].Coefficient)
	})

	t.Run("LineTotalsAccountForQuantityAndDuration", func(t *testing.T) {
		items := []LineItem{
			{ProductID: 1, PurchasePrice: 1000, MarginPercent: 20, Quantity: 2},
		}
		priced, err := Recalculate(table, items, 1, 36)
		require.NoError(t, err)
		require.Len(t, priced, 1)

		line := priced[0]
		assert.Equal(t, 1200.0, line.SellingPrice)
		// total 2400 → 4.2 tranche; monthly per unit 50.4.
		assert.InDelta(t, 50.4, line.MonthlyPrice, 1e-9)
		assert.InDelta(t, 50.4*36*2, line.CalculatedPrice, 1e-9)
		assert.InDelta(t, line.CalculatedPrice/2, line.UnitPrice(), 1e-9)
	})

	t.Run("AllOrNothingOnResolverFailure", func(t *testing.T) {
		items := []LineItem{
			{ProductID: 1, PurchasePrice: 1000, MarginPercent: 20, Quantity: 1},
		}
		priced, err := Recalculate(table, items, 1, 48)
		require.Error(t, err)
		assert.True(t, IsTierNotFound(err))
		assert.Nil(t, priced)
	})

	t.Run("InvalidItemsRejectedBeforeLookup", func(t *testing.T) {
		_, err := Recalculate(table, []LineItem{{ProductID: 1, PurchasePrice: -1, Quantity: 1}}, 1, 36)
		assert.True(t, IsInvalidInput(err))

		_, err = Recalculate(table, []LineItem{{ProductID: 1, PurchasePrice: 10, Quantity: 0}}, 1, 36)
		assert.True(t, IsInvalidInput(err))

		_, err = Recalculate(table, []LineItem{{ProductID: 1, PurchasePrice: 10, MarginPercent: -2, Quantity: 1}}, 1, 36)
		assert.True(t, IsInvalidInput(err))
	})
}

func TestRound2(t *testing.T) {
	assert.Equal(t, 10.46, Round2(10.456))
	assert.Equal(t, 10.45, Round2(10.454))
	assert.Equal(t, 0.0, Round2(0))
}
