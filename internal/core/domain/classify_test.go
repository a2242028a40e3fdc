package domain_test

import (
	"testing"

	"github.com/M4kuro/budget-cloud-solution/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	const threshold = 10

	t.Run("NewProductAboveThreshold", func(t *testing.T) {
		cur := domain.ProductSnapshot{
			ProductID: "P-1", Name: "Gadget", Category: "Tools", StockCount: 50,
		}

		fs := domain.Classify(domain.OpInsert, nil, cur, threshold)

		require.Len(t, fs, 1)
		assert.Equal(t, domain.FindingNewProduct, fs[0].Kind)
		assert.Equal(t, cur, fs[0].Snapshot)
	})

	t.Run("NewProductLowStock", func(t *testing.T) {
		cur := domain.ProductSnapshot{
			ProductID: "P-1", Name: "Gadget", Category: "Tools", StockCount: 5,
		}

		fs := domain.Classify(domain.OpInsert, nil, cur, threshold)

		require.Len(t, fs, 2)
		assert.Equal(t, domain.FindingNewProduct, fs[0].Kind)
		assert.Equal(t, domain.FindingLowStock, fs[1].Kind)
		assert.Equal(t, threshold, fs[1].Threshold)
	})

	t.Run("NameAndCategoryChange", func(t *testing.T) {
		old := domain.ProductSnapshot{
			ProductID: "P-1", Name: "Gadget", Category: "Tools", StockCount: 50,
		}
		cur := domain.ProductSnapshot{
			ProductID: "P-1", Name: "Gadget Pro", Category: "Pro Tools", StockCount: 50,
		}

		fs := domain.Classify(domain.OpModify, &old, cur, threshold)

		require.Len(t, fs, 2)

		assert.Equal(t, domain.FindingAttributeChanged, fs[0].Kind)
		assert.Equal(t, domain.FieldProductName, fs[0].Field)
		assert.Equal(t, "Gadget", fs[0].OldValue)
		assert.Equal(t, "Gadget Pro", fs[0].NewValue)

		assert.Equal(t, domain.FindingAttributeChanged, fs[1].Kind)
		assert.Equal(t, domain.FieldCategory, fs[1].Field)
	})

	t.Run("StockOnlyChangeAboveThreshold", func(t *testing.T) {
		old := domain.ProductSnapshot{
			ProductID: "P-1", Name: "Gadget", Category: "Tools", StockCount: 50,
		}
		cur := old
		cur.StockCount = 20

		fs := domain.Classify(domain.OpModify, &old, cur, threshold)

		assert.Empty(t, fs)
	})

	t.Run("LowStockRepeats", func(t *testing.T) {
		old := domain.ProductSnapshot{
			ProductID: "P-1", Name: "Gadget", Category: "Tools", StockCount: 5,
		}
		cur := old
		cur.StockCount = 4

		fs := domain.Classify(domain.OpModify, &old, cur, threshold)

		require.Len(t, fs, 1)
		assert.Equal(t, domain.FindingLowStock, fs[0].Kind)
	})

	t.Run("StockAtThreshold", func(t *testing.T) {
		cur := domain.ProductSnapshot{
			ProductID: "P-1", Name: "Gadget", Category: "Tools", StockCount: threshold,
		}

		fs := domain.Classify(domain.OpModify, &cur, cur, threshold)

		require.Len(t, fs, 1)
		assert.Equal(t, domain.FindingLowStock, fs[0].Kind)
	})
}
