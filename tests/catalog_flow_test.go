package tests

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marlonhq/marlon-api/app/dto"
	"github.com/marlonhq/marlon-api/app/services"
	businessflow "github.com/marlonhq/marlon-api/business_flow"
	"github.com/marlonhq/marlon-api/repository"
	testingutil "github.com/marlonhq/marlon-api/testing"
	"github.com/marlonhq/marlon-api/utils"
)

func newCatalogFlow(testDB *testingutil.TestDB) businessflow.CatalogFlow {
	productRepo := repository.NewProductRepository(testDB.DB)
	durationRepo := repository.NewLeasingDurationRepository(testDB.DB)
	leaserRepo := repository.NewLeaserRepository(testDB.DB)
	coefficientRepo := repository.NewLeaserCoefficientRepository(testDB.DB)
	rateTables := services.NewRateTableService(nil, coefficientRepo, "test", time.Minute)

	return businessflow.NewCatalogFlow(productRepo, durationRepo, leaserRepo, rateTables)
}

func TestGetProductPrice(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)

		leaser, err := fixtures.CreateTestLeaser("Alpha Lease")
		require.NoError(t, err)
		duration, err := fixtures.CreateTestDuration(36)
		require.NoError(t, err)
		require.NoError(t, fixtures.CreateStandardRateTable(leaser.ID, duration.ID))

		product, err := fixtures.CreateTestProduct("Workstation", 1000, 10, &leaser.ID)
		require.NoError(t, err)

		flow := newCatalogFlow(testDB)

		t.Run("PricesThroughTheDefaultLeaser", func(t *testing.T) {
			res, err := flow.GetProductPrice(context.Background(), &dto.ProductPriceRequest{
				ProductUUID:    product.UUID.String(),
				DurationMonths: 36,
			})
			require.NoError(t, err)
			require.NotNil(t, res)

			// selling = 1000 * 1.10 = 1100, first tranche at 5.2
			assert.Equal(t, leaser.ID, res.LeaserID)
			assert.Equal(t, 36, res.DurationMonths)
			assert.InDelta(t, 1100, res.SellingPrice, 0.001)
			assert.Equal(t, 5.2, res.Coefficient)
			assert.InDelta(t, 57.2, res.MonthlyPrice, 0.001)
			assert.InDelta(t, 2059.2, res.TotalPrice, 0.001)
		})

		t.Run("HigherAmountHitsTheNextTranche", func(t *testing.T) {
			expensive, err := fixtures.CreateTestProduct("Server Rack", 10000, 20, &leaser.ID)
			require.NoError(t, err)

			res, err := flow.GetProductPrice(context.Background(), &dto.ProductPriceRequest{
				ProductUUID:    expensive.UUID.String(),
				DurationMonths: 36,
			})
			require.NoError(t, err)

			// selling = 12000 falls in the 5000.01..20000 tranche
			assert.Equal(t, 4.1, res.Coefficient)
			assert.InDelta(t, 12000, res.SellingPrice, 0.001)
			assert.InDelta(t, 492, res.MonthlyPrice, 0.001)
		})

		t.Run("OpenEndedTrancheCoversLargeAmounts", func(t *testing.T) {
			huge, err := fixtures.CreateTestProduct("Data Center Pod", 50000, 10, &leaser.ID)
			require.NoError(t, err)

			res, err := flow.GetProductPrice(context.Background(), &dto.ProductPriceRequest{
				ProductUUID:    huge.UUID.String(),
				DurationMonths: 36,
			})
			require.NoError(t, err)
			assert.Equal(t, 3.4, res.Coefficient)
		})

		t.Run("ExplicitLeaserOverridesTheDefault", func(t *testing.T) {
			other, err := fixtures.CreateTestLeaser("Beta Lease")
			require.NoError(t, err)
			_, err = fixtures.CreateTestCoefficient(other.ID, duration.ID, 0, nil, 2.9)
			require.NoError(t, err)

			res, err := flow.GetProductPrice(context.Background(), &dto.ProductPriceRequest{
				ProductUUID:    product.UUID.String(),
				DurationMonths: 36,
				LeaserID:       &other.ID,
			})
			require.NoError(t, err)
			assert.Equal(t, other.ID, res.LeaserID)
			assert.Equal(t, 2.9, res.Coefficient)
		})

		t.Run("UnknownDurationFails", func(t *testing.T) {
			_, err := flow.GetProductPrice(context.Background(), &dto.ProductPriceRequest{
				ProductUUID:    product.UUID.String(),
				DurationMonths: 13,
			})
			require.Error(t, err)
			assert.True(t, businessflow.IsDurationNotFound(err))
		})

		t.Run("ProductWithoutLeaserFails", func(t *testing.T) {
			orphan, err := fixtures.CreateTestProduct("Orphan Printer", 500, 10, nil)
			require.NoError(t, err)

			_, err = flow.GetProductPrice(context.Background(), &dto.ProductPriceRequest{
				ProductUUID:    orphan.UUID.String(),
				DurationMonths: 36,
			})
			require.Error(t, err)
			assert.True(t, businessflow.IsNoLeaserConfigured(err))
		})

		t.Run("RateTableGapFails", func(t *testing.T) {
			// 48 months is offered but this leaser has no tranches for it
			_, err := fixtures.CreateTestDuration(48)
			require.NoError(t, err)

			_, err = flow.GetProductPrice(context.Background(), &dto.ProductPriceRequest{
				ProductUUID:    product.UUID.String(),
				DurationMonths: 48,
			})
			require.Error(t, err)
			assert.True(t, businessflow.IsCoefficientNotFound(err))
		})

		return nil
	})
	require.NoError(t, err)
}

func TestQuoteCart(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)

		leaser, err := fixtures.CreateTestLeaser("Gamma Lease")
		require.NoError(t, err)
		duration, err := fixtures.CreateTestDuration(36)
		require.NoError(t, err)
		require.NoError(t, fixtures.CreateStandardRateTable(leaser.ID, duration.ID))

		laptop, err := fixtures.CreateTestProduct("Laptop", 1000, 10, &leaser.ID)
		require.NoError(t, err)
		screen, err := fixtures.CreateTestProduct("Screen", 3000, 20, &leaser.ID)
		require.NoError(t, err)

		flow := newCatalogFlow(testDB)

		t.Run("SingleCoefficientFromAggregateTotal", func(t *testing.T) {
			res, err := flow.QuoteCart(context.Background(), &dto.CartQuoteRequest{
				DurationMonths: 36,
				Lines: []dto.CartQuoteLine{
					{ProductUUID: laptop.UUID.String(), Quantity: 2},
					{ProductUUID: screen.UUID.String(), Quantity: 1},
				},
			})
			require.NoError(t, err)
			require.Len(t, res.Lines, 2)

			// aggregate 2*1100 + 3600 = 5800 resolves the 4.1 tranche even
			// though each line alone would hit the 5.2 one
			assert.Equal(t, 4.1, res.Coefficient)
			assert.InDelta(t, 5800, res.TotalSellingPrice, 0.001)
			assert.InDelta(t, 237.8, res.TotalMonthlyPrice, 0.001)

			assert.InDelta(t, 45.1, res.Lines[0].MonthlyPrice, 0.001)
			assert.InDelta(t, 3247.2, res.Lines[0].CalculatedPrice, 0.001)
			assert.InDelta(t, 147.6, res.Lines[1].MonthlyPrice, 0.001)
			assert.InDelta(t, 5313.6, res.Lines[1].CalculatedPrice, 0.001)
		})

		t.Run("EmptyCartQuotesToNothing", func(t *testing.T) {
			res, err := flow.QuoteCart(context.Background(), &dto.CartQuoteRequest{
				DurationMonths: 36,
				Lines:          []dto.CartQuoteLine{},
			})
			require.NoError(t, err)
			assert.Empty(t, res.Lines)
			assert.Zero(t, res.Coefficient)
			assert.Zero(t, res.TotalSellingPrice)
		})

		t.Run("AllOrNothingOnCoverageGap", func(t *testing.T) {
			// no tranches configured for this leaser
			bare, err := fixtures.CreateTestLeaser("Delta Lease")
			require.NoError(t, err)

			_, err = flow.QuoteCart(context.Background(), &dto.CartQuoteRequest{
				DurationMonths: 36,
				LeaserID:       &bare.ID,
				Lines: []dto.CartQuoteLine{
					{ProductUUID: laptop.UUID.String(), Quantity: 1},
				},
			})
			require.Error(t, err)
			assert.True(t, businessflow.IsCoefficientNotFound(err))
		})

		return nil
	})
	require.NoError(t, err)
}

func TestListProducts(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)

		leaser, err := fixtures.CreateTestLeaser("Epsilon Lease")
		require.NoError(t, err)

		names := []string{"MacBook Pro", "ThinkPad X1", "Dell Latitude", "Standing Desk", "Office Chair"}
		for _, name := range names {
			_, err := fixtures.CreateTestProduct(name, 1000, 10, &leaser.ID)
			require.NoError(t, err)
		}

		// inactive products stay out of the storefront
		hidden, err := fixtures.CreateTestProduct("Retired Scanner", 100, 10, &leaser.ID)
		require.NoError(t, err)
		hidden.IsActive = utils.ToPtr(false)
		require.NoError(t, testDB.DB.Save(hidden).Error)

		flow := newCatalogFlow(testDB)

		t.Run("PaginatesActiveProducts", func(t *testing.T) {
			res, err := flow.ListProducts(context.Background(), &dto.ListProductsRequest{Page: 1, PageSize: 2})
			require.NoError(t, err)
			assert.Len(t, res.Items, 2)
			assert.Equal(t, int64(5), res.Total)

			// selling price is computed, purchase price never leaks
			assert.InDelta(t, 1100, res.Items[0].SellingPrice, 0.001)
		})

		t.Run("SearchFiltersByName", func(t *testing.T) {
			search := "pad"
			res, err := flow.ListProducts(context.Background(), &dto.ListProductsRequest{Page: 1, PageSize: 20, Search: &search})
			require.NoError(t, err)
			require.Len(t, res.Items, 1)
			assert.Equal(t, "ThinkPad X1", res.Items[0].Name)
		})

		t.Run("InactiveProductIsInvisible", func(t *testing.T) {
			res, err := flow.ListProducts(context.Background(), &dto.ListProductsRequest{Page: 1, PageSize: 20})
			require.NoError(t, err)
			for _, item := range res.Items {
				assert.NotEqual(t, "Retired Scanner", item.Name)
			}
		})

		return nil
	})
	require.NoError(t, err)
}
