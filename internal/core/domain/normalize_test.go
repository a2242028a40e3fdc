package domain_test

import (
	"testing"
	"time"

	"github.com/M4kuro/budget-cloud-solution/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshotFromEventImage(t *testing.T) {
	t.Run("Regular", func(t *testing.T) {
		img := domain.EventImage{
			domain.FieldProductID:   domain.StringAttr("P-1"),
			domain.FieldProductName: domain.StringAttr("Gadget"),
			domain.FieldCategory:    domain.StringAttr("Tools"),
			domain.FieldStockCount:  domain.NumberAttr("7"),
		}

		s, err := domain.SnapshotFromEventImage(img)
		require.NoError(t, err)

		assert.Equal(t, "P-1", s.ProductID)
		assert.Equal(t, "Gadget", s.Name)
		assert.Equal(t, "Tools", s.Category)
		assert.Equal(t, 7, s.StockCount)
		assert.True(t, s.LastAlertTime.IsZero())
	})

	t.Run("MissingNameAndCategory", func(t *testing.T) {
		img := domain.EventImage{
			domain.FieldProductID:  domain.StringAttr("P-1"),
			domain.FieldStockCount: domain.NumberAttr("0"),
		}

		s, err := domain.SnapshotFromEventImage(img)
		require.NoError(t, err)

		assert.Equal(t, domain.UnknownProductName, s.Name)
		assert.Equal(t, domain.UncategorizedCategory, s.Category)
	})

	t.Run("MissingProductID", func(t *testing.T) {
		img := domain.EventImage{
			domain.FieldStockCount: domain.NumberAttr("7"),
		}

		_, err := domain.SnapshotFromEventImage(img)
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrMissingProductID)

		var rejected *domain.RejectedRecord
		assert.ErrorAs(t, err, &rejected)
	})

	t.Run("MissingStockCount", func(t *testing.T) {
		img := domain.EventImage{
			domain.FieldProductID: domain.StringAttr("P-1"),
		}

		_, err := domain.SnapshotFromEventImage(img)
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrMalformedRecord)
	})

	t.Run("NonNumericStockCount", func(t *testing.T) {
		img := domain.EventImage{
			domain.FieldProductID:  domain.StringAttr("P-1"),
			domain.FieldStockCount: domain.NumberAttr("many"),
		}

		_, err := domain.SnapshotFromEventImage(img)
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrMalformedRecord)
	})

	t.Run("NegativeStockCount", func(t *testing.T) {
		img := domain.EventImage{
			domain.FieldProductID:  domain.StringAttr("P-1"),
			domain.FieldStockCount: domain.NumberAttr("-3"),
		}

		_, err := domain.SnapshotFromEventImage(img)
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrMalformedRecord)
	})

	t.Run("LastAlertTime", func(t *testing.T) {
		img := domain.EventImage{
			domain.FieldProductID:     domain.StringAttr("P-1"),
			domain.FieldStockCount:    domain.NumberAttr("7"),
			domain.FieldLastAlertTime: domain.StringAttr("2026-08-30T10:15:00Z"),
		}

		s, err := domain.SnapshotFromEventImage(img)
		require.NoError(t, err)

		want := time.Date(2026, 8, 30, 10, 15, 0, 0, time.UTC)
		assert.Equal(t, want, s.LastAlertTime)
	})

	t.Run("InvalidLastAlertTime", func(t *testing.T) {
		img := domain.EventImage{
			domain.FieldProductID:     domain.StringAttr("P-1"),
			domain.FieldStockCount:    domain.NumberAttr("7"),
			domain.FieldLastAlertTime: domain.StringAttr("yesterday"),
		}

		_, err := domain.SnapshotFromEventImage(img)
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrMalformedRecord)
	})
}

func TestSnapshotFromTableRow(t *testing.T) {
	t.Run("Regular", func(t *testing.T) {
		lastAlert := time.Date(2026, 8, 29, 20, 0, 0, 0, time.UTC)
		row := domain.TableRow{
			domain.FieldProductID:     "P-2",
			domain.FieldProductName:   "Widget",
			domain.FieldCategory:      "Parts",
			domain.FieldStockCount:    int64(12),
			domain.FieldProductPrice:  decimal.NewFromFloat(9.99),
			domain.FieldLastAlertTime: lastAlert,
		}

		s, err := domain.SnapshotFromTableRow(row)
		require.NoError(t, err)

		assert.Equal(t, "P-2", s.ProductID)
		assert.Equal(t, "Widget", s.Name)
		assert.Equal(t, "Parts", s.Category)
		assert.Equal(t, 12, s.StockCount)
		require.True(t, s.HasPrice)
		assert.True(t, s.Price.Equal(decimal.NewFromFloat(9.99)))
		assert.Equal(t, lastAlert, s.LastAlertTime)
	})

	t.Run("MissingStockDefaultsToZero", func(t *testing.T) {
		row := domain.TableRow{
			domain.FieldProductID: "P-2",
		}

		s, err := domain.SnapshotFromTableRow(row)
		require.NoError(t, err)

		assert.Equal(t, 0, s.StockCount)
		assert.Equal(t, domain.UnknownProductName, s.Name)
		assert.False(t, s.HasPrice)
	})

	t.Run("StockScalarVariants", func(t *testing.T) {
		for _, v := range []any{int(3), int64(3), float64(3), "3"} {
			row := domain.TableRow{
				domain.FieldProductID:  "P-2",
				domain.FieldStockCount: v,
			}
			s, err := domain.SnapshotFromTableRow(row)
			require.NoError(t, err)
			assert.Equal(t, 3, s.StockCount)
		}
	})

	t.Run("FractionalStockRejected", func(t *testing.T) {
		row := domain.TableRow{
			domain.FieldProductID:  "P-2",
			domain.FieldStockCount: 3.5,
		}

		_, err := domain.SnapshotFromTableRow(row)
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrMalformedRecord)
	})

	t.Run("MissingProductID", func(t *testing.T) {
		row := domain.TableRow{
			domain.FieldStockCount: int64(3),
		}

		_, err := domain.SnapshotFromTableRow(row)
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrMissingProductID)
	})
}

func TestSnapshotFromImportedRow(t *testing.T) {
	t.Run("Regular", func(t *testing.T) {
		row := domain.ImportedRow{
			domain.FieldProductID:    "P-3",
			domain.FieldProductName:  "Bolt",
			domain.FieldCategory:     "Hardware",
			domain.FieldStockCount:   "40",
			domain.FieldProductPrice: "1.25",
		}

		s, err := domain.SnapshotFromImportedRow(row)
		require.NoError(t, err)

		assert.Equal(t, "P-3", s.ProductID)
		assert.Equal(t, 40, s.StockCount)
		require.True(t, s.HasPrice)
		assert.True(t, s.Price.Equal(decimal.RequireFromString("1.25")))
	})

	t.Run("EmptyFieldsFallBack", func(t *testing.T) {
		row := domain.ImportedRow{
			domain.FieldProductID: "P-3",
		}

		s, err := domain.SnapshotFromImportedRow(row)
		require.NoError(t, err)

		assert.Equal(t, domain.UnknownProductName, s.Name)
		assert.Equal(t, domain.UncategorizedCategory, s.Category)
		assert.Equal(t, 0, s.StockCount)
		assert.False(t, s.HasPrice)
	})

	t.Run("NegativePriceRejected", func(t *testing.T) {
		row := domain.ImportedRow{
			domain.FieldProductID:    "P-3",
			domain.FieldProductPrice: "-0.5",
		}

		_, err := domain.SnapshotFromImportedRow(row)
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrMalformedRecord)
	})

	t.Run("BadStockRejected", func(t *testing.T) {
		row := domain.ImportedRow{
			domain.FieldProductID:  "P-3",
			domain.FieldStockCount: "lots",
		}

		_, err := domain.SnapshotFromImportedRow(row)
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrMalformedRecord)
	})
}
