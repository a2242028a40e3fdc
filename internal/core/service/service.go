package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/M4kuro/budget-cloud-solution/internal/core/domain"
	"github.com/M4kuro/budget-cloud-solution/internal/core/port"
	"github.com/google/uuid"
)

var _ port.ChangeEventsProcessor = (*Service)(nil)
var _ port.ReportGenerator = (*Service)(nil)
var _ port.InventoryImporter = (*Service)(nil)

// Config carries the decision parameters. The clock is injected so the
// cooldown rule never reads wall time on its own.
type Config struct {
	Threshold      int
	CooldownWindow time.Duration
	Now            func() time.Time
}

func (c *Config) normalize() {
	if c.CooldownWindow == 0 {
		c.CooldownWindow = domain.DefaultCooldownWindow
	}
	if c.Now == nil {
		c.Now = time.Now
	}
}

type Service struct {
	threshold  int
	cooldown   time.Duration
	now        func() time.Time
	alertStore port.LastAlertStore
	scanner    port.InventoryScanner
	sink       port.ReportSink
	notifier   port.Notifier
	snapshots  port.SnapshotsStorage
}

func New(
	cfg Config,
	alertStore port.LastAlertStore,
	scanner port.InventoryScanner,
	sink port.ReportSink,
	notifier port.Notifier,
	snapshots port.SnapshotsStorage,
) Service {
	cfg.normalize()
	return Service{
		threshold:  cfg.Threshold,
		cooldown:   cfg.CooldownWindow,
		now:        cfg.Now,
		alertStore: alertStore,
		scanner:    scanner,
		sink:       sink,
		notifier:   notifier,
		snapshots:  snapshots,
	}
}

// ProcessChangeEvents runs one batch of mutation events through the
// decision pipeline: normalize, classify, gate low-stock findings
// through the cooldown store, then send at most one composed alert.
// Malformed records are skipped and counted, never abort the batch.
func (s Service) ProcessChangeEvents(
	ctx context.Context, events []domain.ChangeEvent,
) (domain.ProcessStats, error) {
	const op = "Service.ProcessChangeEvents"
	log := slog.With("op", op)

	var stats domain.ProcessStats
	if err := ctx.Err(); err != nil {
		return stats, fmt.Errorf("%s: %w", op, err)
	}

	var (
		findings  []domain.ChangeFinding
		decisions []domain.AlertDecision
		upserts   []domain.ProductSnapshot
	)

	for _, evt := range events {
		cur, err := domain.SnapshotFromEventImage(evt.NewImage)
		if err != nil {
			stats.Skipped++
			log.Warn("skipping change event", "err", err)
			continue
		}

		var old *domain.ProductSnapshot
		if evt.OldImage != nil {
			prev, err := domain.SnapshotFromEventImage(evt.OldImage)
			if err == nil {
				old = &prev
			}
			// a malformed old image classifies as if no prior existed
		}

		stats.Processed++
		upserts = append(upserts, cur)

		for _, f := range domain.Classify(evt.Op, old, cur, s.threshold) {
			if f.Kind != domain.FindingLowStock {
				findings = append(findings, f)
				continue
			}

			stats.LowStock++
			d, err := s.gateLowStock(ctx, f, cur.LastAlertTime)
			if err != nil {
				// Store outage fails this finding closed: no alert goes
				// out now, the next observation of the same condition
				// retriggers it.
				log.Error("last-alert store unavailable",
					"productID", cur.ProductID, "err", err)
				continue
			}
			if d.Eligible {
				stats.Alerted++
			}
			decisions = append(decisions, d)
		}
	}

	if len(upserts) > 0 {
		if err := s.snapshots.StoreSnapshots(ctx, upserts); err != nil {
			return stats, fmt.Errorf("%s: %w", op, err)
		}
	}

	msg, ok := domain.ComposeAlert(findings, decisions)
	if !ok {
		return stats, nil
	}
	msg.MessageID = uuid.NewString()

	if err := s.notifier.Notify(ctx, msg); err != nil {
		return stats, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("alert sent",
		"messageID", msg.MessageID, "alerted", stats.Alerted)
	return stats, nil
}

// gateLowStock applies the cooldown rule against the shared store.
// The decide-then-write sequence is a conditional swap scoped to the
// product, so two concurrent deciders cannot both alert.
func (s Service) gateLowStock(
	ctx context.Context, f domain.ChangeFinding, imageLastAlert time.Time,
) (domain.AlertDecision, error) {
	productID := f.Snapshot.ProductID

	storeLast, err := s.alertStore.GetLastAlert(ctx, productID)
	if err != nil {
		return domain.AlertDecision{}, err
	}

	// The image-carried time only informs the decision when the store
	// has no value yet. The swap must compare against what the store
	// actually holds, or it can never succeed on an empty store.
	last := storeLast
	if last.IsZero() {
		last = imageLastAlert
	}

	d := domain.DecideAlert(f, last, s.now(), s.cooldown)
	if !d.Eligible {
		return d, nil
	}

	swapped, err := s.alertStore.CompareAndSetLastAlert(
		ctx, productID, storeLast, d.NewLastAlertTime,
	)
	if err != nil {
		return domain.AlertDecision{}, err
	}
	if !swapped {
		// lost the race: a concurrent decider alerted first
		d.Eligible = false
		d.NewLastAlertTime = time.Time{}
	}
	return d, nil
}

// GenerateReport scans the whole inventory, aggregates it into a
// summary document, hands the document to the report sink and sends a
// notice with the stored location.
func (s Service) GenerateReport(ctx context.Context) (domain.ReportStats, error) {
	const op = "Service.GenerateReport"
	log := slog.With("op", op)

	var stats domain.ReportStats
	if err := ctx.Err(); err != nil {
		return stats, fmt.Errorf("%s: %w", op, err)
	}

	rows, err := s.scanner.ScanInventory(ctx)
	if err != nil {
		return stats, fmt.Errorf("%s: %w", op, err)
	}

	var snaps []domain.ProductSnapshot
	for _, row := range rows {
		snap, err := domain.SnapshotFromTableRow(row)
		if err != nil {
			stats.Skipped++
			log.Warn("skipping inventory row", "err", err)
			continue
		}
		snaps = append(snaps, snap)
	}
	stats.Scanned = len(snaps)

	report := domain.Aggregate(snaps, s.threshold, s.now())
	report.ReportID = uuid.NewString()

	key, err := s.sink.StoreReport(ctx, report)
	if err != nil {
		return stats, fmt.Errorf("%s: %w", op, err)
	}
	stats.LowStock = report.LowStockCount
	stats.ReportKey = key

	notice := domain.AlertMessage{
		MessageID: uuid.NewString(),
		Subject:   "Inventory Summary Report",
		Body: fmt.Sprintf(
			"Inventory report has been generated!\n\nLink: %s", key),
	}
	if err := s.notifier.Notify(ctx, notice); err != nil {
		return stats, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("report generated", "key", key,
		"scanned", stats.Scanned, "skipped", stats.Skipped)
	return stats, nil
}

// ImportInventory normalizes bulk-imported rows, upserts the survivors,
// stores an upload summary and sends an upload notice. Rows failing
// coercion are skipped and counted; one bad row never fails the batch.
func (s Service) ImportInventory(
	ctx context.Context, rows []domain.ImportedRow,
) (domain.ImportStats, error) {
	const op = "Service.ImportInventory"
	log := slog.With("op", op)

	var stats domain.ImportStats
	if err := ctx.Err(); err != nil {
		return stats, fmt.Errorf("%s: %w", op, err)
	}

	var snaps []domain.ProductSnapshot
	for _, row := range rows {
		snap, err := domain.SnapshotFromImportedRow(row)
		if err != nil {
			stats.Skipped++
			log.Warn("skipping imported row", "err", err)
			continue
		}
		snaps = append(snaps, snap)
	}
	stats.Imported = len(snaps)

	if len(snaps) > 0 {
		if err := s.snapshots.StoreSnapshots(ctx, snaps); err != nil {
			return stats, fmt.Errorf("%s: %w", op, err)
		}
	}

	report := domain.Aggregate(snaps, s.threshold, s.now())
	report.ReportID = uuid.NewString()

	key, err := s.sink.StoreReport(ctx, report)
	if err != nil {
		return stats, fmt.Errorf("%s: %w", op, err)
	}
	stats.LowStock = report.LowStockCount
	stats.ReportKey = key

	notice := domain.AlertMessage{
		MessageID: uuid.NewString(),
		Subject:   "Inventory Upload Summary",
		Body: fmt.Sprintf(
			"Inventory report generated from bulk upload!\n\nLink: %s", key),
	}
	if err := s.notifier.Notify(ctx, notice); err != nil {
		return stats, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("import processed", "imported", stats.Imported,
		"skipped", stats.Skipped, "key", key)
	return stats, nil
}
