package kafka

import (
	"context"
	"log/slog"

	"github.com/M4kuro/budget-cloud-solution/internal/core/domain"
	"github.com/M4kuro/budget-cloud-solution/internal/core/port"
	"github.com/M4kuro/budget-cloud-solution/pkg/schema"
	"github.com/lovoo/goka"
)

var _ port.SnapshotProvider = (*InventoryView)(nil)

// An InventoryView reads the snapshot group table maintained by
// [SnapshotTableProcessor] and serves point and range lookups of the
// latest known product state.
type InventoryView struct {
	opPrefix string
	gv       *goka.View
}

func NewInventoryView(
	seedBrokers []string, groupTable string,
) (InventoryView, error) {
	const op = "NewInventoryView"

	gv, err := goka.NewView(
		seedBrokers,
		goka.GroupTable(goka.Group(groupTable)),
		snapshotCodec{},
	)
	if err != nil {
		return InventoryView{}, opErr(err, op)
	}

	return InventoryView{opPrefix: "InventoryView", gv: gv}, nil
}

func (v InventoryView) Run(ctx context.Context) {
	const op = "Run"
	log := slog.With("op", makeOp(v.opPrefix, op))

	err := v.gv.Run(ctx)
	if err != nil {
		log.Error("unexpected fail on run", "err", err)
	}
}

func (v InventoryView) GetSnapshot(
	productID string,
) (domain.ProductSnapshot, bool, error) {
	const op = "GetSnapshot"

	val, err := v.gv.Get(productID)
	if err != nil {
		return domain.ProductSnapshot{}, false, opErr(err, v.opPrefix, op)
	}
	if val == nil {
		return domain.ProductSnapshot{}, false, nil
	}

	s, ok := val.(schema.SnapshotV1)
	if !ok {
		return domain.ProductSnapshot{}, false,
			opErr(ErrInvalidValueType, v.opPrefix, op)
	}
	return schemaV1ToSnapshot(s), true, nil
}

func (v InventoryView) ListSnapshots() ([]domain.ProductSnapshot, error) {
	const op = "ListSnapshots"

	it, err := v.gv.Iterator()
	if err != nil {
		return nil, opErr(err, v.opPrefix, op)
	}
	defer it.Release()

	var snaps []domain.ProductSnapshot
	for it.Next() {
		val, err := it.Value()
		if err != nil {
			return nil, opErr(err, v.opPrefix, op)
		}
		s, ok := val.(schema.SnapshotV1)
		if !ok {
			return nil, opErr(ErrInvalidValueType, v.opPrefix, op)
		}
		snaps = append(snaps, schemaV1ToSnapshot(s))
	}
	return snaps, nil
}
