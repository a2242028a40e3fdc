package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/M4kuro/budget-cloud-solution/internal/core/domain"
	"github.com/M4kuro/budget-cloud-solution/internal/core/port"
	"github.com/shopspring/decimal"
)

var _ port.SnapshotsStorage = (*ProductsRepository)(nil)
var _ port.InventoryScanner = (*ProductsRepository)(nil)
var _ port.LastAlertStore = (*ProductsRepository)(nil)

const scanPageSize = 500

// A ProductsRepository keeps the inventory system of record: product
// snapshots, their imported prices and the per-product last-alert time.
type ProductsRepository struct {
	sqldb sqldb
}

func NewProductsRepository(sqldb sqldb) ProductsRepository {
	return ProductsRepository{sqldb}
}

// StoreSnapshots upserts the given snapshots. A snapshot without a
// price keeps the previously stored price; last_alert_time is never
// touched here, it belongs to the cooldown gate.
func (r ProductsRepository) StoreSnapshots(
	ctx context.Context, vs []domain.ProductSnapshot,
) (storeErr error) {
	const op = "ProductsRepository.StoreSnapshots"
	log := slog.With("op", op)

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	tx, err := r.sqldb.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: failed to begin tx: %w", op, err)
	}

	defer func() {
		if storeErr == nil {
			if err := tx.Commit(); err != nil {
				storeErr = fmt.Errorf("%s: failed to commit: %w", op, err)
			}
			return
		}

		err := tx.Rollback()
		if err != nil {
			log.Error("failed to rollback tx", "err", err)
		}
	}()

	query := `
		INSERT INTO products (
			product_id, product_name, product_category,
			stock_count, product_price
		)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (product_id) DO UPDATE SET
			product_name = EXCLUDED.product_name,
			product_category = EXCLUDED.product_category,
			stock_count = EXCLUDED.stock_count,
			product_price = COALESCE(EXCLUDED.product_price, products.product_price);
	`

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("%s: failed to prepare stmt: %w", op, err)
	}
	defer func() {
		if err := stmt.Close(); err != nil {
			log.Error("failed to close prepared stmt", "err", err)
		}
	}()

	for _, v := range vs {
		var price any
		if v.HasPrice {
			price = v.Price.String()
		}
		_, err := stmt.ExecContext(ctx,
			v.ProductID, v.Name, v.Category, v.StockCount, price,
		)
		if err != nil {
			return fmt.Errorf("%s: failed to exec: %w", op, err)
		}
	}

	return nil
}

// ScanInventory reads the whole products table as flat scalar rows,
// paginating by product_id under the hood.
func (r ProductsRepository) ScanInventory(
	ctx context.Context,
) ([]domain.TableRow, error) {
	const op = "ProductsRepository.ScanInventory"

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	query := `
		SELECT product_id, product_name, product_category,
			stock_count, product_price, last_alert_time
		FROM products
		WHERE product_id > $1
		ORDER BY product_id ASC
		LIMIT $2;`

	var all []domain.TableRow
	lastKey := ""

	for {
		page, err := r.scanPage(ctx, query, lastKey)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if len(page) == 0 {
			return all, nil
		}

		all = append(all, page...)
		lastKey, _ = page[len(page)-1][domain.FieldProductID].(string)

		if len(page) < scanPageSize {
			return all, nil
		}
	}
}

func (r ProductsRepository) scanPage(
	ctx context.Context, query, afterKey string,
) ([]domain.TableRow, error) {
	rows, err := r.sqldb.QueryContext(ctx, query, afterKey, scanPageSize)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var page []domain.TableRow
	for rows.Next() {
		var (
			id, name, category string
			stock              int64
			price              decimal.NullDecimal
			lastAlert          sql.NullTime
		)
		err := rows.Scan(&id, &name, &category, &stock, &price, &lastAlert)
		if err != nil {
			return nil, err
		}

		row := domain.TableRow{
			domain.FieldProductID:   id,
			domain.FieldProductName: name,
			domain.FieldCategory:    category,
			domain.FieldStockCount:  stock,
		}
		if price.Valid {
			row[domain.FieldProductPrice] = price.Decimal
		}
		if lastAlert.Valid {
			row[domain.FieldLastAlertTime] = lastAlert.Time.UTC()
		}
		page = append(page, row)
	}

	return page, rows.Err()
}

// GetLastAlert returns the stored last-alert time for the product.
// An unknown product or a product never alerted yields a zero time.
func (r ProductsRepository) GetLastAlert(
	ctx context.Context, productID string,
) (time.Time, error) {
	const op = "ProductsRepository.GetLastAlert"

	if err := ctx.Err(); err != nil {
		return time.Time{}, fmt.Errorf("%s: %w", op, err)
	}

	query := `SELECT last_alert_time FROM products WHERE product_id = $1;`

	var t sql.NullTime
	err := r.sqldb.QueryRowContext(ctx, query, productID).Scan(&t)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return time.Time{}, nil
		}
		return time.Time{}, fmt.Errorf("%s: %w", op, err)
	}
	if !t.Valid {
		return time.Time{}, nil
	}
	return t.Time.UTC().Truncate(time.Second), nil
}

// CompareAndSetLastAlert writes next only while the stored value still
// equals prev (zero prev matches NULL). The conditional update is what
// keeps concurrent cooldown decisions for one product from both
// winning. Reports whether the swap happened.
func (r ProductsRepository) CompareAndSetLastAlert(
	ctx context.Context, productID string, prev, next time.Time,
) (bool, error) {
	const op = "ProductsRepository.CompareAndSetLastAlert"

	if err := ctx.Err(); err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	query := `
		INSERT INTO products (
			product_id, product_name, product_category,
			stock_count, last_alert_time
		)
		VALUES ($1, $2, $3, 0, $4)
		ON CONFLICT (product_id) DO UPDATE SET
			last_alert_time = EXCLUDED.last_alert_time
		WHERE products.last_alert_time IS NOT DISTINCT FROM $5;
	`

	// The column round-trips at second precision: GetLastAlert truncates
	// on read, so anything written with sub-second digits would never
	// match its own readback in the conditional update.
	var prevArg any
	if !prev.IsZero() {
		prevArg = prev.UTC().Truncate(time.Second)
	}

	res, err := r.sqldb.ExecContext(ctx, query,
		productID, domain.UnknownProductName, domain.UncategorizedCategory,
		next.UTC().Truncate(time.Second), prevArg,
	)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return n > 0, nil
}
