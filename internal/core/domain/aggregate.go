package domain

import "time"

// Aggregate folds a collection of snapshots into a summary report.
// Input order is preserved in both the low-stock subset and the full
// listing. An empty input yields an empty report, not an error.
func Aggregate(snapshots []ProductSnapshot, threshold int, ts time.Time) SummaryReport {
	r := SummaryReport{
		Timestamp:     ts.UTC().Truncate(time.Second),
		TotalProducts: len(snapshots),
		LowStockItems: make([]LowStockItem, 0, len(snapshots)),
		FullInventory: make([]ProductSnapshot, 0, len(snapshots)),
	}

	for _, s := range snapshots {
		r.FullInventory = append(r.FullInventory, s)
		if s.StockCount <= threshold {
			r.LowStockItems = append(r.LowStockItems, LowStockItem{
				ProductID:  s.ProductID,
				Name:       s.Name,
				StockLevel: s.StockCount,
			})
		}
	}

	r.LowStockCount = len(r.LowStockItems)
	return r
}
