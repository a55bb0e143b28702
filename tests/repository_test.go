package tests

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marlonhq/marlon-api/models"
	"github.com/marlonhq/marlon-api/repository"
	testingutil "github.com/marlonhq/marlon-api/testing"
	"github.com/marlonhq/marlon-api/utils"
)

func TestLeaserRepository(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)
		repo := repository.NewLeaserRepository(testDB.DB)
		ctx := testingutil.CreateTestContext()

		leaser, err := fixtures.CreateTestLeaser("Repo Lease")
		require.NoError(t, err)

		t.Run("ByID", func(t *testing.T) {
			found, err := repo.ByID(ctx, leaser.ID)
			require.NoError(t, err)
			require.NotNil(t, found)
			assert.Equal(t, "Repo Lease", found.Name)
		})

		t.Run("ByUUID", func(t *testing.T) {
			found, err := repo.ByUUID(ctx, leaser.UUID.String())
			require.NoError(t, err)
			require.NotNil(t, found)
			assert.Equal(t, leaser.ID, found.ID)
		})

		t.Run("ByUUIDMissReturnsNil", func(t *testing.T) {
			found, err := repo.ByUUID(ctx, "4f7c9a4e-0000-4000-8000-000000000000")
			require.NoError(t, err)
			assert.Nil(t, found)
		})

		t.Run("ByName", func(t *testing.T) {
			found, err := repo.ByName(ctx, "Repo Lease")
			require.NoError(t, err)
			require.NotNil(t, found)
			assert.Equal(t, leaser.ID, found.ID)

			missing, err := repo.ByName(ctx, "No Such Lease")
			require.NoError(t, err)
			assert.Nil(t, missing)
		})

		t.Run("FilterByActivity", func(t *testing.T) {
			inactive, err := fixtures.CreateTestLeaser("Dormant Lease")
			require.NoError(t, err)
			inactive.IsActive = utils.ToPtr(false)
			require.NoError(t, repo.Update(ctx, inactive))

			active, err := repo.ByFilter(ctx, models.LeaserFilter{IsActive: utils.ToPtr(true)}, "name ASC", 0, 0)
			require.NoError(t, err)
			require.Len(t, active, 1)
			assert.Equal(t, leaser.ID, active[0].ID)

			count, err := repo.Count(ctx, models.LeaserFilter{})
			require.NoError(t, err)
			assert.Equal(t, int64(2), count)

			exists, err := repo.Exists(ctx, models.LeaserFilter{Name: utils.ToPtr("Dormant Lease")})
			require.NoError(t, err)
			assert.True(t, exists)
		})

		return nil
	})
	require.NoError(t, err)
}

func TestCoefficientRepository(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)
		repo := repository.NewLeaserCoefficientRepository(testDB.DB)
		ctx := testingutil.CreateTestContext()

		leaser, err := fixtures.CreateTestLeaser("Coeff Repo Lease")
		require.NoError(t, err)
		short, err := fixtures.CreateTestDuration(24)
		require.NoError(t, err)
		long, err := fixtures.CreateTestDuration(36)
		require.NoError(t, err)
		require.NoError(t, fixtures.CreateStandardRateTable(leaser.ID, short.ID))
		require.NoError(t, fixtures.CreateStandardRateTable(leaser.ID, long.ID))

		t.Run("ListByLeaserSpansDurations", func(t *testing.T) {
			rows, err := repo.ListByLeaser(ctx, leaser.ID)
			require.NoError(t, err)
			assert.Len(t, rows, 6)
		})

		t.Run("ListByLeaserAndDuration", func(t *testing.T) {
			rows, err := repo.ListByLeaserAndDuration(ctx, leaser.ID, long.ID)
			require.NoError(t, err)
			require.Len(t, rows, 3)
			for _, row := range rows {
				assert.Equal(t, long.ID, row.DurationID)
			}
		})

		t.Run("UpdateAndDelete", func(t *testing.T) {
			rows, err := repo.ListByLeaserAndDuration(ctx, leaser.ID, short.ID)
			require.NoError(t, err)
			require.NotEmpty(t, rows)

			rows[0].Coefficient = 6.0
			require.NoError(t, repo.Update(ctx, rows[0]))

			reloaded, err := repo.ByID(ctx, rows[0].ID)
			require.NoError(t, err)
			assert.Equal(t, 6.0, reloaded.Coefficient)

			require.NoError(t, repo.Delete(ctx, rows[0].ID))
			gone, err := repo.ByID(ctx, rows[0].ID)
			require.NoError(t, err)
			assert.Nil(t, gone)
		})

		return nil
	})
	require.NoError(t, err)
}

func TestOrderRepositories(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)
		orderRepo := repository.NewOrderRepository(testDB.DB)
		itemRepo := repository.NewOrderItemRepository(testDB.DB)
		logRepo := repository.NewOrderLogRepository(testDB.DB)
		ctx := testingutil.CreateTestContext()

		leaser, err := fixtures.CreateTestLeaser("Order Repo Lease")
		require.NoError(t, err)
		duration, err := fixtures.CreateTestDuration(36)
		require.NoError(t, err)
		product, err := fixtures.CreateTestProduct("Repo Laptop", 1000, 10, &leaser.ID)
		require.NoError(t, err)

		order, err := fixtures.CreateTestOrder(leaser.ID, duration.ID)
		require.NoError(t, err)
		_, err = fixtures.CreateTestOrderItem(order.ID, product.ID, 1000, 10, 2)
		require.NoError(t, err)

		t.Run("ByUUIDWithItemsPreloadsLines", func(t *testing.T) {
			found, err := orderRepo.ByUUIDWithItems(ctx, order.UUID.String())
			require.NoError(t, err)
			require.NotNil(t, found)
			require.Len(t, found.Items, 1)
			assert.Equal(t, product.ID, found.Items[0].ProductID)
			assert.Equal(t, 2, found.Items[0].Quantity)
		})

		t.Run("ReplaceForOrderSwapsAllLines", func(t *testing.T) {
			second, err := fixtures.CreateTestProduct("Repo Screen", 3000, 20, &leaser.ID)
			require.NoError(t, err)

			err = itemRepo.ReplaceForOrder(ctx, order.ID, []*models.OrderItem{
				{OrderID: order.ID, ProductID: second.ID, Quantity: 1,
					PurchasePrice: 3000, MarginPercent: 20, SellingPrice: 3600,
					Coefficient: 5.2, MonthlyPrice: 187.2, CalculatedPrice: 6739.2},
			})
			require.NoError(t, err)

			items, err := itemRepo.ListByOrder(ctx, order.ID)
			require.NoError(t, err)
			require.Len(t, items, 1)
			assert.Equal(t, second.ID, items[0].ProductID)
		})

		t.Run("OrderLogsPaginateNewestFirst", func(t *testing.T) {
			base := utils.UTCNow().Add(-time.Minute)
			for i, action := range []string{models.OrderLogActionCreated, models.OrderLogActionItemAdded, models.OrderLogActionRecalculated} {
				entry := &models.OrderLog{OrderID: order.ID, Action: action, Description: utils.ToPtr(action), CreatedAt: base.Add(time.Duration(i) * time.Second)}
				require.NoError(t, logRepo.Save(ctx, entry))
			}

			logs, err := logRepo.ListByOrder(ctx, order.ID, 2, 0)
			require.NoError(t, err)
			require.Len(t, logs, 2)
			assert.Equal(t, models.OrderLogActionRecalculated, logs[0].Action)

			rest, err := logRepo.ListByOrder(ctx, order.ID, 2, 2)
			require.NoError(t, err)
			require.Len(t, rest, 1)
			assert.Equal(t, models.OrderLogActionCreated, rest[0].Action)
		})

		return nil
	})
	require.NoError(t, err)
}

func TestWithTransaction(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		repo := repository.NewLeaserRepository(testDB.DB)
		ctx := testingutil.CreateTestContext()

		t.Run("CommitsOnSuccess", func(t *testing.T) {
			err := repository.WithTransaction(ctx, testDB.DB, func(txCtx context.Context) error {
				leaser := &models.Leaser{Name: "Tx Lease", IsActive: utils.ToPtr(true)}
				leaser.UUID = uuid.New()
				return repo.Save(txCtx, leaser)
			})
			require.NoError(t, err)

			exists, err := repo.Exists(ctx, models.LeaserFilter{Name: utils.ToPtr("Tx Lease")})
			require.NoError(t, err)
			assert.True(t, exists)
		})

		t.Run("RollsBackOnError", func(t *testing.T) {
			boom := errors.New("boom")
			err := repository.WithTransaction(ctx, testDB.DB, func(txCtx context.Context) error {
				leaser := &models.Leaser{Name: "Ghost Lease", IsActive: utils.ToPtr(true)}
				leaser.UUID = uuid.New()
				if err := repo.Save(txCtx, leaser); err != nil {
					return err
				}
				return boom
			})
			require.ErrorIs(t, err, boom)

			exists, err := repo.Exists(ctx, models.LeaserFilter{Name: utils.ToPtr("Ghost Lease")})
			require.NoError(t, err)
			assert.False(t, exists)
		})

		return nil
	})
	require.NoError(t, err)
}
