package tests

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marlonhq/marlon-api/models"
)

func TestOrderStatus(t *testing.T) {
	t.Run("ValidStatuses", func(t *testing.T) {
		for _, s := range []models.OrderStatus{
			models.OrderStatusDraft,
			models.OrderStatusSubmitted,
			models.OrderStatusApproved,
			models.OrderStatusRejected,
		} {
			assert.True(t, s.Valid(), "expected %s to be valid", s)
		}
		assert.False(t, models.OrderStatus("cancelled").Valid())
		assert.False(t, models.OrderStatus("").Valid())
	})

	t.Run("ScanAcceptsStringAndBytes", func(t *testing.T) {
		var s models.OrderStatus
		require.NoError(t, s.Scan("approved"))
		assert.Equal(t, models.OrderStatusApproved, s)

		require.NoError(t, s.Scan([]byte("draft")))
		assert.Equal(t, models.OrderStatusDraft, s)

		require.NoError(t, s.Scan(nil))
		assert.Equal(t, models.OrderStatus(""), s)

		assert.Error(t, s.Scan(42))
	})

	t.Run("ValueRejectsUnknownStatus", func(t *testing.T) {
		v, err := models.OrderStatusSubmitted.Value()
		require.NoError(t, err)
		assert.Equal(t, "submitted", v)

		_, err = models.OrderStatus("shipped").Value()
		assert.Error(t, err)
	})
}

func TestTableNames(t *testing.T) {
	assert.Equal(t, "leasers", models.Leaser{}.TableName())
	assert.Equal(t, "leasing_durations", models.LeasingDuration{}.TableName())
	assert.Equal(t, "leaser_coefficients", models.LeaserCoefficient{}.TableName())
	assert.Equal(t, "products", models.Product{}.TableName())
	assert.Equal(t, "orders", models.Order{}.TableName())
	assert.Equal(t, "order_items", models.OrderItem{}.TableName())
	assert.Equal(t, "order_logs", models.OrderLog{}.TableName())
}
