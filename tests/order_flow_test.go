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
	"github.com/marlonhq/marlon-api/models"
	"github.com/marlonhq/marlon-api/repository"
	testingutil "github.com/marlonhq/marlon-api/testing"
	"github.com/marlonhq/marlon-api/utils"
)

func newOrderFlow(testDB *testingutil.TestDB) businessflow.OrderFlow {
	orderRepo := repository.NewOrderRepository(testDB.DB)
	orderItemRepo := repository.NewOrderItemRepository(testDB.DB)
	orderLogRepo := repository.NewOrderLogRepository(testDB.DB)
	productRepo := repository.NewProductRepository(testDB.DB)
	leaserRepo := repository.NewLeaserRepository(testDB.DB)
	durationRepo := repository.NewLeasingDurationRepository(testDB.DB)
	coefficientRepo := repository.NewLeaserCoefficientRepository(testDB.DB)
	rateTables := services.NewRateTableService(nil, coefficientRepo, "test", time.Minute)
	notifier := services.NewNotificationService(services.NewMockEmailProvider())

	return businessflow.NewOrderFlow(testDB.DB, orderRepo, orderItemRepo, orderLogRepo,
		productRepo, leaserRepo, durationRepo, rateTables, notifier)
}

func TestCreateOrder(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)

		leaser, err := fixtures.CreateTestLeaser("Order Lease")
		require.NoError(t, err)
		duration, err := fixtures.CreateTestDuration(36)
		require.NoError(t, err)
		require.NoError(t, fixtures.CreateStandardRateTable(leaser.ID, duration.ID))

		laptop, err := fixtures.CreateTestProduct("Laptop", 1000, 10, &leaser.ID)
		require.NoError(t, err)
		screen, err := fixtures.CreateTestProduct("Screen", 3000, 20, &leaser.ID)
		require.NoError(t, err)

		flow := newOrderFlow(testDB)

		t.Run("CreatesDraftWithPricedLines", func(t *testing.T) {
			res, err := flow.CreateOrder(context.Background(), &dto.CreateOrderRequest{
				DurationMonths: 36,
				CompanyName:    "Acme SARL",
				ContactEmail:   utils.ToPtr("contact@acme.fr"),
				Lines: []dto.OrderLineRequest{
					{ProductUUID: laptop.UUID.String(), Quantity: 2},
					{ProductUUID: screen.UUID.String(), Quantity: 1},
				},
			})
			require.NoError(t, err)
			require.Len(t, res.Order.Lines, 2)

			assert.Equal(t, string(models.OrderStatusDraft), res.Order.Status)
			assert.Equal(t, "Acme SARL", res.Order.CompanyName)
			assert.Equal(t, leaser.ID, res.Order.LeaserID)
			assert.Equal(t, 36, res.Order.DurationMonths)

			// aggregate 5800 resolves the 4.1 tranche for every line
			assert.Equal(t, 4.1, res.Order.Coefficient)
			assert.InDelta(t, 5800, res.Order.TotalSellingPrice, 0.001)
			assert.InDelta(t, 237.8, res.Order.TotalMonthlyPrice, 0.001)
			assert.InDelta(t, 45.1, res.Order.Lines[0].MonthlyPrice, 0.001)
			assert.InDelta(t, 147.6, res.Order.Lines[1].MonthlyPrice, 0.001)

			logs, err := flow.ListOrderLogs(context.Background(), res.Order.UUID, 10, 0)
			require.NoError(t, err)
			require.NotEmpty(t, logs.Items)
			assert.Equal(t, models.OrderLogActionCreated, logs.Items[0].Action)
		})

		t.Run("SnapshotsPricesAtCreation", func(t *testing.T) {
			res, err := flow.CreateOrder(context.Background(), &dto.CreateOrderRequest{
				DurationMonths: 36,
				CompanyName:    "Snapshot SAS",
				Lines:          []dto.OrderLineRequest{{ProductUUID: laptop.UUID.String(), Quantity: 1}},
			})
			require.NoError(t, err)

			// bumping the catalog price later must not move the order
			laptop.PurchasePrice = 9999
			require.NoError(t, testDB.DB.Save(laptop).Error)
			defer func() {
				laptop.PurchasePrice = 1000
				require.NoError(t, testDB.DB.Save(laptop).Error)
			}()

			got, err := flow.GetOrder(context.Background(), res.Order.UUID)
			require.NoError(t, err)
			assert.InDelta(t, 1100, got.Order.Lines[0].SellingPrice, 0.001)
		})

		t.Run("RejectsEmptyOrder", func(t *testing.T) {
			_, err := flow.CreateOrder(context.Background(), &dto.CreateOrderRequest{
				DurationMonths: 36,
				CompanyName:    "Empty SARL",
				Lines:          []dto.OrderLineRequest{},
			})
			require.Error(t, err)
			assert.True(t, businessflow.IsOrderEmpty(err))
		})

		t.Run("RejectsUnknownProduct", func(t *testing.T) {
			_, err := flow.CreateOrder(context.Background(), &dto.CreateOrderRequest{
				DurationMonths: 36,
				CompanyName:    "Ghost SARL",
				Lines:          []dto.OrderLineRequest{{ProductUUID: "4f7c9a4e-0000-4000-8000-000000000000", Quantity: 1}},
			})
			require.Error(t, err)
			assert.True(t, businessflow.IsProductNotFound(err))
		})

		return nil
	})
	require.NoError(t, err)
}

func TestOrderItemMutations(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)

		leaser, err := fixtures.CreateTestLeaser("Mutation Lease")
		require.NoError(t, err)
		duration, err := fixtures.CreateTestDuration(36)
		require.NoError(t, err)
		require.NoError(t, fixtures.CreateStandardRateTable(leaser.ID, duration.ID))

		laptop, err := fixtures.CreateTestProduct("Laptop", 1000, 10, &leaser.ID)
		require.NoError(t, err)
		screen, err := fixtures.CreateTestProduct("Screen", 3000, 20, &leaser.ID)
		require.NoError(t, err)

		flow := newOrderFlow(testDB)

		res, err := flow.CreateOrder(context.Background(), &dto.CreateOrderRequest{
			DurationMonths: 36,
			CompanyName:    "Mutation SARL",
			Lines:          []dto.OrderLineRequest{{ProductUUID: laptop.UUID.String(), Quantity: 2}},
		})
		require.NoError(t, err)
		orderUUID := res.Order.UUID

		t.Run("AddingAnItemRepricesTheWholeOrder", func(t *testing.T) {
			// the new aggregate of 5800 crosses into the 4.1 tranche,
			// so the existing laptop line is repriced too
			res, err := flow.AddOrderItem(context.Background(), &dto.AddOrderItemRequest{
				OrderUUID:   orderUUID,
				ProductUUID: screen.UUID.String(),
				Quantity:    1,
			})
			require.NoError(t, err)
			require.Len(t, res.Order.Lines, 2)

			assert.Equal(t, 4.1, res.Order.Coefficient)
			assert.InDelta(t, 45.1, res.Order.Lines[0].MonthlyPrice, 0.001)
			assert.InDelta(t, 237.8, res.Order.TotalMonthlyPrice, 0.001)
		})

		t.Run("AddingTheSameProductMergesQuantities", func(t *testing.T) {
			res, err := flow.AddOrderItem(context.Background(), &dto.AddOrderItemRequest{
				OrderUUID:   orderUUID,
				ProductUUID: laptop.UUID.String(),
				Quantity:    3,
			})
			require.NoError(t, err)
			require.Len(t, res.Order.Lines, 2)

			var laptopLine *dto.OrderLineItem
			for i := range res.Order.Lines {
				if res.Order.Lines[i].ProductUUID == laptop.UUID.String() {
					laptopLine = &res.Order.Lines[i]
				}
			}
			require.NotNil(t, laptopLine)
			assert.Equal(t, 5, laptopLine.Quantity)
		})

		t.Run("RemovingAnItemRepricesDownward", func(t *testing.T) {
			got, err := flow.GetOrder(context.Background(), orderUUID)
			require.NoError(t, err)

			var screenLineID uint
			for _, line := range got.Order.Lines {
				if line.ProductUUID == screen.UUID.String() {
					screenLineID = line.ID
				}
			}
			require.NotZero(t, screenLineID)

			res, err := flow.RemoveOrderItem(context.Background(), &dto.RemoveOrderItemRequest{
				OrderUUID: orderUUID,
				ItemID:    screenLineID,
			})
			require.NoError(t, err)
			require.Len(t, res.Order.Lines, 1)

			// 5 laptops at 1100 = 5500, still in the 4.1 tranche
			assert.Equal(t, 4.1, res.Order.Coefficient)
			assert.InDelta(t, 5500, res.Order.TotalSellingPrice, 0.001)
		})

		t.Run("RemovingAnUnknownItemFails", func(t *testing.T) {
			_, err := flow.RemoveOrderItem(context.Background(), &dto.RemoveOrderItemRequest{
				OrderUUID: orderUUID,
				ItemID:    999999,
			})
			require.Error(t, err)
			assert.True(t, businessflow.IsOrderItemNotFound(err))
		})

		t.Run("MutationLogsAreRecorded", func(t *testing.T) {
			logs, err := flow.ListOrderLogs(context.Background(), orderUUID, 50, 0)
			require.NoError(t, err)

			actions := make(map[string]bool)
			for _, entry := range logs.Items {
				actions[entry.Action] = true
			}
			assert.True(t, actions[models.OrderLogActionItemAdded])
			assert.True(t, actions[models.OrderLogActionItemRemoved])
		})

		return nil
	})
	require.NoError(t, err)
}

func TestUpdateOrderPrices(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)

		leaser, err := fixtures.CreateTestLeaser("Override Lease")
		require.NoError(t, err)
		duration, err := fixtures.CreateTestDuration(36)
		require.NoError(t, err)
		require.NoError(t, fixtures.CreateStandardRateTable(leaser.ID, duration.ID))
		laptop, err := fixtures.CreateTestProduct("Laptop", 1000, 10, &leaser.ID)
		require.NoError(t, err)

		flow := newOrderFlow(testDB)

		res, err := flow.CreateOrder(context.Background(), &dto.CreateOrderRequest{
			DurationMonths: 36,
			CompanyName:    "Override SARL",
			Lines:          []dto.OrderLineRequest{{ProductUUID: laptop.UUID.String(), Quantity: 1}},
		})
		require.NoError(t, err)
		orderUUID := res.Order.UUID

		t.Run("SetsOverridesWithoutTouchingLinePrices", func(t *testing.T) {
			res, err := flow.UpdateOrderPrices(context.Background(), &dto.UpdateOrderPricesRequest{
				OrderUUID:               orderUUID,
				OverridePurchasePriceHT: utils.ToPtr(950.0),
				OverrideMonthlyTTC:      utils.ToPtr(60.0),
			})
			require.NoError(t, err)

			require.NotNil(t, res.Order.OverridePurchasePriceHT)
			assert.InDelta(t, 950, *res.Order.OverridePurchasePriceHT, 0.001)
			require.NotNil(t, res.Order.OverrideMonthlyTTC)
			assert.InDelta(t, 60, *res.Order.OverrideMonthlyTTC, 0.001)
			assert.Nil(t, res.Order.OverrideCAMarlonHT)

			// computed line prices stay what the rate table produced
			assert.InDelta(t, 57.2, res.Order.Lines[0].MonthlyPrice, 0.001)
			assert.InDelta(t, 57.2, res.Order.TotalMonthlyPrice, 0.001)
		})

		t.Run("ClearOverridesWipesAllThree", func(t *testing.T) {
			res, err := flow.UpdateOrderPrices(context.Background(), &dto.UpdateOrderPricesRequest{
				OrderUUID:      orderUUID,
				ClearOverrides: true,
			})
			require.NoError(t, err)
			assert.Nil(t, res.Order.OverridePurchasePriceHT)
			assert.Nil(t, res.Order.OverrideCAMarlonHT)
			assert.Nil(t, res.Order.OverrideMonthlyTTC)
		})

		t.Run("RejectsNegativeOverride", func(t *testing.T) {
			_, err := flow.UpdateOrderPrices(context.Background(), &dto.UpdateOrderPricesRequest{
				OrderUUID:          orderUUID,
				OverrideCAMarlonHT: utils.ToPtr(-1.0),
			})
			require.Error(t, err)
			assert.True(t, businessflow.IsOverrideNegative(err))
		})

		return nil
	})
	require.NoError(t, err)
}

func TestUpdateOrderStatus(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)

		leaser, err := fixtures.CreateTestLeaser("Status Lease")
		require.NoError(t, err)
		duration, err := fixtures.CreateTestDuration(36)
		require.NoError(t, err)
		require.NoError(t, fixtures.CreateStandardRateTable(leaser.ID, duration.ID))
		laptop, err := fixtures.CreateTestProduct("Laptop", 1000, 10, &leaser.ID)
		require.NoError(t, err)

		flow := newOrderFlow(testDB)

		createOrder := func(t *testing.T) string {
			res, err := flow.CreateOrder(context.Background(), &dto.CreateOrderRequest{
				DurationMonths: 36,
				CompanyName:    "Status SARL",
				ContactEmail:   utils.ToPtr("buyer@status.fr"),
				Lines:          []dto.OrderLineRequest{{ProductUUID: laptop.UUID.String(), Quantity: 1}},
			})
			require.NoError(t, err)
			return res.Order.UUID
		}

		t.Run("DraftToSubmittedToApproved", func(t *testing.T) {
			orderUUID := createOrder(t)

			res, err := flow.UpdateOrderStatus(context.Background(), &dto.UpdateOrderStatusRequest{
				OrderUUID: orderUUID,
				Status:    string(models.OrderStatusSubmitted),
			})
			require.NoError(t, err)
			assert.Equal(t, string(models.OrderStatusSubmitted), res.Order.Status)

			res, err = flow.UpdateOrderStatus(context.Background(), &dto.UpdateOrderStatusRequest{
				OrderUUID: orderUUID,
				Status:    string(models.OrderStatusApproved),
			})
			require.NoError(t, err)
			assert.Equal(t, string(models.OrderStatusApproved), res.Order.Status)

			logs, err := flow.ListOrderLogs(context.Background(), orderUUID, 50, 0)
			require.NoError(t, err)
			changes := 0
			for _, entry := range logs.Items {
				if entry.Action == models.OrderLogActionStatusChanged {
					changes++
				}
			}
			assert.Equal(t, 2, changes)
		})

		t.Run("DraftCannotBeApprovedDirectly", func(t *testing.T) {
			orderUUID := createOrder(t)

			_, err := flow.UpdateOrderStatus(context.Background(), &dto.UpdateOrderStatusRequest{
				OrderUUID: orderUUID,
				Status:    string(models.OrderStatusApproved),
			})
			require.Error(t, err)
			assert.True(t, businessflow.IsInvalidStatusChange(err))
		})

		t.Run("ApprovedIsTerminal", func(t *testing.T) {
			orderUUID := createOrder(t)

			for _, next := range []models.OrderStatus{models.OrderStatusSubmitted, models.OrderStatusApproved} {
				_, err := flow.UpdateOrderStatus(context.Background(), &dto.UpdateOrderStatusRequest{
					OrderUUID: orderUUID,
					Status:    string(next),
				})
				require.NoError(t, err)
			}

			_, err := flow.UpdateOrderStatus(context.Background(), &dto.UpdateOrderStatusRequest{
				OrderUUID: orderUUID,
				Status:    string(models.OrderStatusRejected),
			})
			require.Error(t, err)
			assert.True(t, businessflow.IsInvalidStatusChange(err))
		})

		t.Run("SubmittedOrderRefusesEdits", func(t *testing.T) {
			orderUUID := createOrder(t)

			_, err := flow.UpdateOrderStatus(context.Background(), &dto.UpdateOrderStatusRequest{
				OrderUUID: orderUUID,
				Status:    string(models.OrderStatusSubmitted),
			})
			require.NoError(t, err)

			_, err = flow.AddOrderItem(context.Background(), &dto.AddOrderItemRequest{
				OrderUUID:   orderUUID,
				ProductUUID: laptop.UUID.String(),
				Quantity:    1,
			})
			require.Error(t, err)
			assert.True(t, businessflow.IsOrderNotEditable(err))

			got, err := flow.GetOrder(context.Background(), orderUUID)
			require.NoError(t, err)
			require.NotEmpty(t, got.Order.Lines)

			_, err = flow.RemoveOrderItem(context.Background(), &dto.RemoveOrderItemRequest{
				OrderUUID: orderUUID,
				ItemID:    got.Order.Lines[0].ID,
			})
			require.Error(t, err)
			assert.True(t, businessflow.IsOrderNotEditable(err))

			// price overrides are a back-office concern and stay available
			// after submission
			res, err := flow.UpdateOrderPrices(context.Background(), &dto.UpdateOrderPricesRequest{
				OrderUUID:          orderUUID,
				OverrideMonthlyTTC: utils.ToPtr(55.0),
			})
			require.NoError(t, err)
			require.NotNil(t, res.Order.OverrideMonthlyTTC)
		})

		return nil
	})
	require.NoError(t, err)
}

func TestListOrders(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)

		leaser, err := fixtures.CreateTestLeaser("Listing Lease")
		require.NoError(t, err)
		duration, err := fixtures.CreateTestDuration(36)
		require.NoError(t, err)
		require.NoError(t, fixtures.CreateStandardRateTable(leaser.ID, duration.ID))
		laptop, err := fixtures.CreateTestProduct("Laptop", 1000, 10, &leaser.ID)
		require.NoError(t, err)

		flow := newOrderFlow(testDB)

		var submittedUUID string
		for i := 0; i < 3; i++ {
			res, err := flow.CreateOrder(context.Background(), &dto.CreateOrderRequest{
				DurationMonths: 36,
				CompanyName:    "Listing SARL",
				Lines:          []dto.OrderLineRequest{{ProductUUID: laptop.UUID.String(), Quantity: 1}},
			})
			require.NoError(t, err)
			submittedUUID = res.Order.UUID
		}
		_, err = flow.UpdateOrderStatus(context.Background(), &dto.UpdateOrderStatusRequest{
			OrderUUID: submittedUUID,
			Status:    string(models.OrderStatusSubmitted),
		})
		require.NoError(t, err)

		t.Run("ListsAllOrders", func(t *testing.T) {
			res, err := flow.ListOrders(context.Background(), &dto.ListOrdersRequest{Page: 1, PageSize: 10})
			require.NoError(t, err)
			assert.Equal(t, int64(3), res.Total)
			assert.Len(t, res.Items, 3)
		})

		t.Run("FiltersByStatus", func(t *testing.T) {
			status := string(models.OrderStatusSubmitted)
			res, err := flow.ListOrders(context.Background(), &dto.ListOrdersRequest{Page: 1, PageSize: 10, Status: &status})
			require.NoError(t, err)
			require.Len(t, res.Items, 1)
			assert.Equal(t, submittedUUID, res.Items[0].UUID)
		})

		return nil
	})
	require.NoError(t, err)
}
