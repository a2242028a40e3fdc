package port

import (
	"context"
	"time"

	"github.com/M4kuro/budget-cloud-solution/internal/core/domain"
)

// Inbound ports: the surrounding runtime drives the engine through these.

type ChangeEventsProcessor interface {
	ProcessChangeEvents(context.Context, []domain.ChangeEvent) (domain.ProcessStats, error)
}

type ReportGenerator interface {
	GenerateReport(context.Context) (domain.ReportStats, error)
}

type InventoryImporter interface {
	ImportInventory(context.Context, []domain.ImportedRow) (domain.ImportStats, error)
}

type SnapshotProvider interface {
	GetSnapshot(productID string) (domain.ProductSnapshot, bool, error)
	ListSnapshots() ([]domain.ProductSnapshot, error)
}

// Outbound ports: external collaborators the engine depends on.

// InventoryScanner delivers the complete current inventory as flat
// scalar rows. Pagination is the adapter's concern.
type InventoryScanner interface {
	ScanInventory(context.Context) ([]domain.TableRow, error)
}

// LastAlertStore keeps the per-product last-alert timestamp. A zero
// time stands for "never alerted". CompareAndSetLastAlert writes next
// only while the stored value still equals prev and reports whether the
// swap happened, so concurrent deciders for one product cannot both win.
type LastAlertStore interface {
	GetLastAlert(ctx context.Context, productID string) (time.Time, error)
	CompareAndSetLastAlert(ctx context.Context, productID string, prev, next time.Time) (bool, error)
}

type ReportSink interface {
	StoreReport(context.Context, domain.SummaryReport) (string, error)
}

type Notifier interface {
	Notify(context.Context, domain.AlertMessage) error
}

type SnapshotsStorage interface {
	StoreSnapshots(context.Context, []domain.ProductSnapshot) error
}
