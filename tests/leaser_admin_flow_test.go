package tests

import (
	"context"
	"strings"
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

func newLeaserAdminFlow(testDB *testingutil.TestDB) businessflow.LeaserAdminFlow {
	leaserRepo := repository.NewLeaserRepository(testDB.DB)
	durationRepo := repository.NewLeasingDurationRepository(testDB.DB)
	coefficientRepo := repository.NewLeaserCoefficientRepository(testDB.DB)
	productRepo := repository.NewProductRepository(testDB.DB)
	rateTables := services.NewRateTableService(nil, coefficientRepo, "test", time.Minute)

	return businessflow.NewLeaserAdminFlow(testDB.DB, leaserRepo, durationRepo, coefficientRepo, productRepo, rateTables)
}

func TestLeaserAdministration(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		flow := newLeaserAdminFlow(testDB)

		t.Run("CreatesAndListsLeasers", func(t *testing.T) {
			created, err := flow.CreateLeaser(context.Background(), &dto.AdminCreateLeaserRequest{Name: "Grenke"})
			require.NoError(t, err)
			assert.Equal(t, "Grenke", created.Leaser.Name)
			assert.True(t, created.Leaser.IsActive)
			assert.NotEmpty(t, created.Leaser.UUID)

			listed, err := flow.ListLeasers(context.Background())
			require.NoError(t, err)
			require.Len(t, listed.Items, 1)
			assert.Equal(t, created.Leaser.UUID, listed.Items[0].UUID)
		})

		t.Run("RejectsDuplicateName", func(t *testing.T) {
			_, err := flow.CreateLeaser(context.Background(), &dto.AdminCreateLeaserRequest{Name: "Grenke"})
			require.Error(t, err)
			assert.True(t, businessflow.IsLeaserNameTaken(err))
		})

		t.Run("UpdatesNameAndActivation", func(t *testing.T) {
			created, err := flow.CreateLeaser(context.Background(), &dto.AdminCreateLeaserRequest{Name: "BNP Leasing"})
			require.NoError(t, err)

			updated, err := flow.UpdateLeaser(context.Background(), &dto.AdminUpdateLeaserRequest{
				UUID:     created.Leaser.UUID,
				Name:     utils.ToPtr("BNP Paribas Leasing"),
				IsActive: utils.ToPtr(false),
			})
			require.NoError(t, err)
			assert.Equal(t, "BNP Paribas Leasing", updated.Leaser.Name)
			assert.False(t, updated.Leaser.IsActive)
		})

		t.Run("UnknownLeaserFails", func(t *testing.T) {
			_, err := flow.UpdateLeaser(context.Background(), &dto.AdminUpdateLeaserRequest{
				UUID: "4f7c9a4e-0000-4000-8000-000000000000",
				Name: utils.ToPtr("Nobody"),
			})
			require.Error(t, err)
			assert.True(t, businessflow.IsLeaserNotFound(err))
		})

		return nil
	})
	require.NoError(t, err)
}

func TestCoefficientAdministration(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)
		flow := newLeaserAdminFlow(testDB)

		leaser, err := fixtures.CreateTestLeaser("Coefficient Lease")
		require.NoError(t, err)

		durationRes, err := flow.CreateDuration(context.Background(), &dto.AdminCreateDurationRequest{Months: 36})
		require.NoError(t, err)
		durationID := durationRes.Duration.ID

		t.Run("DuplicateDurationFails", func(t *testing.T) {
			_, err := flow.CreateDuration(context.Background(), &dto.AdminCreateDurationRequest{Months: 36})
			require.Error(t, err)
			assert.True(t, businessflow.IsDurationAlreadyKnown(err))
		})

		t.Run("CreatesBoundedAndUnboundedTiers", func(t *testing.T) {
			first, err := flow.CreateCoefficient(context.Background(), &dto.AdminCreateCoefficientRequest{
				LeaserUUID:  leaser.UUID.String(),
				DurationID:  durationID,
				MinAmount:   0,
				MaxAmount:   utils.ToPtr(5000.0),
				Coefficient: 5.2,
			})
			require.NoError(t, err)
			assert.Equal(t, 36, first.Coefficient.DurationMonths)

			_, err = flow.CreateCoefficient(context.Background(), &dto.AdminCreateCoefficientRequest{
				LeaserUUID:  leaser.UUID.String(),
				DurationID:  durationID,
				MinAmount:   5000.01,
				Coefficient: 3.4,
			})
			require.NoError(t, err)

			listed, err := flow.ListCoefficients(context.Background(), leaser.UUID.String())
			require.NoError(t, err)
			assert.Len(t, listed.Items, 2)
		})

		t.Run("RejectsInvertedRange", func(t *testing.T) {
			_, err := flow.CreateCoefficient(context.Background(), &dto.AdminCreateCoefficientRequest{
				LeaserUUID:  leaser.UUID.String(),
				DurationID:  durationID,
				MinAmount:   8000,
				MaxAmount:   utils.ToPtr(8000.0),
				Coefficient: 2.1,
			})
			require.Error(t, err)
			assert.True(t, businessflow.IsTierRangeInvalid(err))
		})

		t.Run("RejectsSecondUnboundedTier", func(t *testing.T) {
			_, err := flow.CreateCoefficient(context.Background(), &dto.AdminCreateCoefficientRequest{
				LeaserUUID:  leaser.UUID.String(),
				DurationID:  durationID,
				MinAmount:   9000,
				Coefficient: 2.8,
			})
			require.Error(t, err)
			assert.True(t, businessflow.IsTierRangeInvalid(err))
		})

		t.Run("UpdatesATier", func(t *testing.T) {
			listed, err := flow.ListCoefficients(context.Background(), leaser.UUID.String())
			require.NoError(t, err)
			require.NotEmpty(t, listed.Items)
			tier := listed.Items[0]

			updated, err := flow.UpdateCoefficient(context.Background(), &dto.AdminUpdateCoefficientRequest{
				LeaserUUID:    leaser.UUID.String(),
				CoefficientID: tier.ID,
				Coefficient:   utils.ToPtr(5.5),
			})
			require.NoError(t, err)
			assert.Equal(t, 5.5, updated.Coefficient.Coefficient)
			assert.Equal(t, tier.MinAmount, updated.Coefficient.MinAmount)
		})

		t.Run("DeletesATier", func(t *testing.T) {
			listed, err := flow.ListCoefficients(context.Background(), leaser.UUID.String())
			require.NoError(t, err)
			before := len(listed.Items)
			require.NotZero(t, before)

			_, err = flow.DeleteCoefficient(context.Background(), leaser.UUID.String(), listed.Items[0].ID)
			require.NoError(t, err)

			listed, err = flow.ListCoefficients(context.Background(), leaser.UUID.String())
			require.NoError(t, err)
			assert.Len(t, listed.Items, before-1)
		})

		t.Run("DeletingUnknownTierFails", func(t *testing.T) {
			_, err := flow.DeleteCoefficient(context.Background(), leaser.UUID.String(), 999999)
			require.Error(t, err)
			assert.True(t, businessflow.IsCoefficientNotFound(err))
		})

		return nil
	})
	require.NoError(t, err)
}

func TestExportCoefficientsExcel(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)
		flow := newLeaserAdminFlow(testDB)

		first, err := fixtures.CreateTestLeaser("Export One")
		require.NoError(t, err)
		second, err := fixtures.CreateTestLeaser("Export Two")
		require.NoError(t, err)
		duration, err := fixtures.CreateTestDuration(36)
		require.NoError(t, err)
		require.NoError(t, fixtures.CreateStandardRateTable(first.ID, duration.ID))
		require.NoError(t, fixtures.CreateStandardRateTable(second.ID, duration.ID))

		filename, content, err := flow.ExportCoefficientsExcel(context.Background())
		require.NoError(t, err)

		assert.True(t, strings.HasPrefix(filename, "leaser_coefficients_"))
		assert.True(t, strings.HasSuffix(filename, ".xlsx"))
		// xlsx files are zip archives, check the magic bytes
		require.Greater(t, len(content), 4)
		assert.Equal(t, []byte{0x50, 0x4b}, content[:2])

		return nil
	})
	require.NoError(t, err)
}

func TestProductAdministration(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)
		flow := newLeaserAdminFlow(testDB)

		leaser, err := fixtures.CreateTestLeaser("Product Lease")
		require.NoError(t, err)

		t.Run("CreatesAProduct", func(t *testing.T) {
			res, err := flow.CreateProduct(context.Background(), &dto.AdminCreateProductRequest{
				SKU:             "LAP-001",
				Name:            "Laptop",
				PurchasePrice:   1000,
				MarginPercent:   10,
				DefaultLeaserID: &leaser.ID,
			})
			require.NoError(t, err)
			assert.Equal(t, "LAP-001", res.Product.SKU)
			assert.InDelta(t, 1100, res.Product.SellingPrice, 0.001)
			assert.True(t, res.Product.IsActive)
		})

		t.Run("RejectsDuplicateSKU", func(t *testing.T) {
			_, err := flow.CreateProduct(context.Background(), &dto.AdminCreateProductRequest{
				SKU:           "LAP-001",
				Name:          "Another Laptop",
				PurchasePrice: 1200,
				MarginPercent: 10,
			})
			require.Error(t, err)
			assert.True(t, businessflow.IsProductSKUTaken(err))
		})

		t.Run("UpdatesPriceAndRecomputesSelling", func(t *testing.T) {
			created, err := flow.CreateProduct(context.Background(), &dto.AdminCreateProductRequest{
				SKU:           "SCR-001",
				Name:          "Screen",
				PurchasePrice: 3000,
				MarginPercent: 20,
			})
			require.NoError(t, err)

			updated, err := flow.UpdateProduct(context.Background(), &dto.AdminUpdateProductRequest{
				UUID:          created.Product.UUID,
				PurchasePrice: utils.ToPtr(2000.0),
				MarginPercent: utils.ToPtr(10.0),
			})
			require.NoError(t, err)
			assert.InDelta(t, 2200, updated.Product.SellingPrice, 0.001)
		})

		t.Run("ListsWithPurchasePrices", func(t *testing.T) {
			res, err := flow.ListProducts(context.Background(), 1, 10)
			require.NoError(t, err)
			assert.Equal(t, int64(2), res.Total)
			for _, item := range res.Items {
				assert.NotZero(t, item.PurchasePrice)
			}
		})

		return nil
	})
	require.NoError(t, err)
}

func TestAdminCalculatePrice(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)
		flow := newLeaserAdminFlow(testDB)

		leaser, err := fixtures.CreateTestLeaser("Calc Lease")
		require.NoError(t, err)
		duration, err := fixtures.CreateTestDuration(36)
		require.NoError(t, err)
		require.NoError(t, fixtures.CreateStandardRateTable(leaser.ID, duration.ID))

		t.Run("PricesAnArbitraryAmount", func(t *testing.T) {
			res, err := flow.CalculatePrice(context.Background(), &dto.AdminCalculatePriceRequest{
				LeaserUUID:     leaser.UUID.String(),
				PurchasePrice:  1000,
				MarginPercent:  10,
				DurationMonths: 36,
			})
			require.NoError(t, err)
			assert.InDelta(t, 1100, res.SellingPrice, 0.001)
			assert.Equal(t, 5.2, res.Coefficient)
			assert.InDelta(t, 57.2, res.MonthlyPrice, 0.001)
			assert.InDelta(t, 2059.2, res.TotalPrice, 0.001)
		})

		t.Run("MissingTrancheFails", func(t *testing.T) {
			_, err := fixtures.CreateTestDuration(24)
			require.NoError(t, err)

			_, err = flow.CalculatePrice(context.Background(), &dto.AdminCalculatePriceRequest{
				LeaserUUID:     leaser.UUID.String(),
				PurchasePrice:  1000,
				MarginPercent:  10,
				DurationMonths: 24,
			})
			require.Error(t, err)
			assert.True(t, businessflow.IsCoefficientNotFound(err))
		})

		return nil
	})
	require.NoError(t, err)
}
