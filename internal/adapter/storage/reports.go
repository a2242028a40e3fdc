package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"time"

	"github.com/M4kuro/budget-cloud-solution/internal/core/domain"
	"github.com/M4kuro/budget-cloud-solution/internal/core/port"
	"github.com/M4kuro/budget-cloud-solution/pkg/retry"
	"github.com/colinmarc/hdfs/v2"
	"github.com/shopspring/decimal"
)

var _ port.ReportSink = (*ReportsRepository)(nil)

const reportFilePrefix = "inventory_summary"

type (
	summaryDoc struct {
		ReportID      string         `json:"report_id"`
		Timestamp     string         `json:"timestamp"`
		TotalProducts int            `json:"total_products"`
		LowStockCount int            `json:"low_stock_count"`
		LowStockItems []lowStockItem `json:"low_stock_items"`
		FullInventory []inventoryRow `json:"full_inventory"`
	}

	lowStockItem struct {
		ProductID  string `json:"product_id"`
		Name       string `json:"product_name"`
		StockLevel int    `json:"stock_level"`
	}

	inventoryRow struct {
		ProductID  string           `json:"product_id"`
		Name       string           `json:"product_name"`
		Category   string           `json:"product_category"`
		StockCount int              `json:"stock_count"`
		Price      *decimal.Decimal `json:"product_price,omitempty"`
	}
)

type hdfsStorage interface {
	Create(name string) (*hdfs.FileWriter, error)
	MkdirAll(dirname string, perm os.FileMode) error
}

// A ReportsRepository persists summary documents as JSON files in the
// distributed store. The file name carries the report timestamp and a
// short report ID, so repeated runs within one second cannot collide.
type ReportsRepository struct {
	hdfs hdfsStorage
	dir  string
}

func NewReportsRepository(hdfs hdfsStorage, dir string) (ReportsRepository, error) {
	const op = "NewReportsRepository"

	if err := hdfs.MkdirAll(dir, 0o755); err != nil {
		return ReportsRepository{}, fmt.Errorf("%s: %w", op, err)
	}
	return ReportsRepository{hdfs: hdfs, dir: dir}, nil
}

func (r ReportsRepository) StoreReport(
	ctx context.Context, report domain.SummaryReport,
) (string, error) {
	const op = "ReportsRepository.StoreReport"

	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	filepath := r.fileName(report)

	w, err := r.hdfs.Create(filepath)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	if err := r.writeDoc(w, report); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	if err := r.closeWriter(ctx, w); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return filepath, nil
}

func (r ReportsRepository) fileName(report domain.SummaryReport) string {
	suffix := report.ReportID
	if len(suffix) > 8 {
		suffix = suffix[:8]
	}
	name := fmt.Sprintf("%s_%s_%s.json",
		reportFilePrefix,
		report.Timestamp.UTC().Format("20060102_150405"),
		suffix,
	)
	return path.Join(r.dir, name)
}

func (r ReportsRepository) writeDoc(
	w io.WriteCloser, report domain.SummaryReport,
) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "    ")
	return enc.Encode(r.toDoc(report))
}

func (r ReportsRepository) closeWriter(ctx context.Context, w io.WriteCloser) error {
	retryCfg := retry.RetryConfig{
		MaxAttempts: 5,
		Backoff:     retry.LineareBackoff(50 * time.Millisecond),
		ShouldRetry: func(err error) bool {
			return errors.Is(err, hdfs.ErrReplicating)
		},
	}

	return retry.Do(ctx, retryCfg, w.Close)
}

func (r ReportsRepository) toDoc(report domain.SummaryReport) summaryDoc {
	doc := summaryDoc{
		ReportID:      report.ReportID,
		Timestamp:     report.Timestamp.UTC().Format(domain.TimeLayout),
		TotalProducts: report.TotalProducts,
		LowStockCount: report.LowStockCount,
		LowStockItems: make([]lowStockItem, 0, len(report.LowStockItems)),
		FullInventory: make([]inventoryRow, 0, len(report.FullInventory)),
	}

	for _, it := range report.LowStockItems {
		doc.LowStockItems = append(doc.LowStockItems, lowStockItem{
			ProductID:  it.ProductID,
			Name:       it.Name,
			StockLevel: it.StockLevel,
		})
	}

	for _, s := range report.FullInventory {
		row := inventoryRow{
			ProductID:  s.ProductID,
			Name:       s.Name,
			Category:   s.Category,
			StockCount: s.StockCount,
		}
		if s.HasPrice {
			price := s.Price
			row.Price = &price
		}
		doc.FullInventory = append(doc.FullInventory, row)
	}

	return doc
}
