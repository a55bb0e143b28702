package testing

import (
	"fmt"
	"math/rand"

	"github.com/google/uuid"

	"github.com/marlonhq/marlon-api/models"
	"github.com/marlonhq/marlon-api/utils"
)

// TestFixtures provides helper methods for creating test data
type TestFixtures struct {
	DB *TestDB
}

// NewTestFixtures creates a new test fixtures instance
func NewTestFixtures(db *TestDB) *TestFixtures {
	return &TestFixtures{DB: db}
}

// CreateTestLeaser creates an active financing partner
func (tf *TestFixtures) CreateTestLeaser(name string) (*models.Leaser, error) {
	if name == "" {
		name = fmt.Sprintf("Leaser %06d", rand.Intn(1000000))
	}

	leaser := &models.Leaser{
		UUID:     uuid.New(),
		Name:     name,
		IsActive: utils.ToPtr(true),
	}

	if err := tf.DB.DB.Create(leaser).Error; err != nil {
		return nil, fmt.Errorf("failed to create test leaser: %w", err)
	}
	return leaser, nil
}

// CreateTestDuration creates an offered contract length
func (tf *TestFixtures) CreateTestDuration(months int) (*models.LeasingDuration, error) {
	duration := &models.LeasingDuration{
		Months:   months,
		IsActive: utils.ToPtr(true),
	}

	if err := tf.DB.DB.Create(duration).Error; err != nil {
		return nil, fmt.Errorf("failed to create test duration: %w", err)
	}
	return duration, nil
}

// CreateTestCoefficient creates a rate table row. Pass nil maxAmount for the
// open-ended tranche.
func (tf *TestFixtures) CreateTestCoefficient(leaserID, durationID uint, minAmount float64, maxAmount *float64, coefficient float64) (*models.LeaserCoefficient, error) {
	row := &models.LeaserCoefficient{
		LeaserID:    leaserID,
		DurationID:  durationID,
		MinAmount:   minAmount,
		MaxAmount:   maxAmount,
		Coefficient: coefficient,
	}

	if err := tf.DB.DB.Create(row).Error; err != nil {
		return nil, fmt.Errorf("failed to create test coefficient: %w", err)
	}
	return row, nil
}

// CreateStandardRateTable builds the usual three-tranche grid for a leaser and
// duration: two bounded tranches and one open-ended above them.
func (tf *TestFixtures) CreateStandardRateTable(leaserID, durationID uint) error {
	tranches := []struct {
		min         float64
		max         *float64
		coefficient float64
	}{
		{0, utils.ToPtr(5000.0), 5.2},
		{5000.01, utils.ToPtr(20000.0), 4.1},
		{20000.01, nil, 3.4},
	}

	for _, t := range tranches {
		if _, err := tf.CreateTestCoefficient(leaserID, durationID, t.min, t.max, t.coefficient); err != nil {
			return err
		}
	}
	return nil
}

// CreateTestProduct creates an active catalog product linked to a leaser
func (tf *TestFixtures) CreateTestProduct(name string, purchasePrice, marginPercent float64, defaultLeaserID *uint) (*models.Product, error) {
	if name == "" {
		name = fmt.Sprintf("Test Laptop %06d", rand.Intn(1000000))
	}

	product := &models.Product{
		UUID:            uuid.New(),
		Name:            name,
		SKU:             fmt.Sprintf("SKU-%08d", rand.Intn(100000000)),
		PurchasePrice:   purchasePrice,
		MarginPercent:   marginPercent,
		DefaultLeaserID: defaultLeaserID,
		IsActive:        utils.ToPtr(true),
	}

	if err := tf.DB.DB.Create(product).Error; err != nil {
		return nil, fmt.Errorf("failed to create test product: %w", err)
	}
	return product, nil
}

// CreateTestOrder creates a draft order shell without lines
func (tf *TestFixtures) CreateTestOrder(leaserID, durationID uint) (*models.Order, error) {
	order := &models.Order{
		UUID:        uuid.New(),
		CompanyName: "Acme SARL",
		LeaserID:    leaserID,
		DurationID:  durationID,
		Status:      models.OrderStatusDraft,
	}

	if err := tf.DB.DB.Create(order).Error; err != nil {
		return nil, fmt.Errorf("failed to create test order: %w", err)
	}
	return order, nil
}

// CreateTestOrderItem creates one priced order line with snapshot fields set
func (tf *TestFixtures) CreateTestOrderItem(orderID, productID uint, purchasePrice, marginPercent float64, quantity int) (*models.OrderItem, error) {
	item := &models.OrderItem{
		OrderID:       orderID,
		ProductID:     productID,
		PurchasePrice: purchasePrice,
		MarginPercent: marginPercent,
		Quantity:      quantity,
	}

	if err := tf.DB.DB.Create(item).Error; err != nil {
		return nil, fmt.Errorf("failed to create test order item: %w", err)
	}
	return item, nil
}
