package kafka

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/M4kuro/budget-cloud-solution/internal/core/domain"
	"github.com/M4kuro/budget-cloud-solution/pkg/schema"
	"github.com/lovoo/goka"
)

// A processor is used for composition.
//
// Running and closing the underlying [goka.Processor]
type processor struct {
	opPrefix string
	gp       *goka.Processor
}

func (p *processor) run(
	ctx context.Context, stopFn context.CancelFunc, wg *sync.WaitGroup,
) {
	const op = "run"
	log := slog.With("op", makeOp(p.opPrefix, op))

	defer wg.Done()

	go p.runProc(ctx, stopFn)

	log.Info("preparing...")
	p.waitForReady(ctx)
	log.Info("running")
}

func (p *processor) runProc(ctx context.Context, stopFn context.CancelFunc) {
	const op = "run"
	log := slog.With("op", makeOp(p.opPrefix, op))

	defer stopFn()

	err := p.gp.Run(ctx)
	if err != nil {
		log.Error("stopped", "err", err)
		return
	}
	log.Info("stopped")
}

func (p *processor) waitForReady(ctx context.Context) {
	const op = "waitForReady"
	log := slog.With("op", makeOp(p.opPrefix, op))

	err := p.gp.WaitForReadyContext(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		log.Error("fall down while preparing", "err", err)
		return
	}
}

func (p *processor) close() {
	const op = "close"
	log := slog.With("op", makeOp(p.opPrefix, op))

	log.Info("closing processor...")
	p.gp.Stop()
	log.Info("processor is closed")
}

// A changeEventCodec used for serde [schema.ChangeEventV1]
type changeEventCodec struct {
	serde Serde
}

func newChangeEventCodec(s Serde) changeEventCodec {
	return changeEventCodec{s}
}

func (c changeEventCodec) Encode(v any) ([]byte, error) {
	const op = "changeEventCodec.Encode"
	if _, ok := v.(schema.ChangeEventV1); !ok {
		return nil, opErr(ErrInvalidValueType, op)
	}
	return c.serde.Encode(v)
}

func (c changeEventCodec) Decode(data []byte) (any, error) {
	const op = "changeEventCodec.Decode"
	var s schema.ChangeEventV1
	err := c.serde.Decode(data, &s)
	if err != nil {
		return nil, opErr(err, op)
	}
	return s, nil
}

// A snapshotCodec used for serde [schema.SnapshotV1] group-table values
type snapshotCodec struct{}

func (snapshotCodec) Encode(v any) ([]byte, error) {
	const op = "snapshotCodec.Encode"
	s, ok := v.(schema.SnapshotV1)
	if !ok {
		return nil, opErr(ErrInvalidValueType, op)
	}
	return schema.AvroEncodeFn(schema.SnapshotV1Avro())(s)
}

func (snapshotCodec) Decode(data []byte) (any, error) {
	const op = "snapshotCodec.Decode"
	var s schema.SnapshotV1
	err := schema.AvroDecodeFn(schema.SnapshotV1Avro())(data, &s)
	if err != nil {
		return nil, opErr(err, op)
	}
	return s, nil
}

// A SnapshotTableProcessor folds the change-event stream into a
// per-product latest-snapshot group table. Events are partitioned by
// product, so each product has a single writer.
type SnapshotTableProcessor struct {
	opPrefix string
	proc     processor
}

func NewSnapshotTableProc(
	seedBrokers []string,
	inputStream string,
	groupTable string,
	changeEventSerde Serde,
) (*SnapshotTableProcessor, error) {
	const op = "NewSnapshotTableProc"

	var p SnapshotTableProcessor
	p.opPrefix = "SnapshotTableProcessor"

	gg := goka.DefineGroup(goka.Group(groupTable),
		goka.Input(
			goka.Stream(inputStream),
			newChangeEventCodec(changeEventSerde),
			p.processFn,
		),
		goka.Persist(snapshotCodec{}),
	)

	gp, err := goka.NewProcessor(seedBrokers, gg, withNonlogProcOpt())
	if err != nil {
		return nil, opErr(err, op)
	}

	p.proc = processor{
		opPrefix: p.opPrefix,
		gp:       gp,
	}

	return &p, nil
}

func (p *SnapshotTableProcessor) Run(
	ctx context.Context, stopFn context.CancelFunc, wg *sync.WaitGroup,
) {
	p.proc.run(ctx, stopFn, wg)
}

func (p *SnapshotTableProcessor) Close() {
	p.proc.close()
}

func (p *SnapshotTableProcessor) processFn(ctx goka.Context, msg any) {
	const op = "processFn"
	log := slog.With("op", makeOp(p.opPrefix, op))

	event, _ := msg.(schema.ChangeEventV1)
	evt := changeEventToDomain(event)

	snap, err := domain.SnapshotFromEventImage(evt.NewImage)
	if err != nil {
		log.Warn("skipping event", "err", err)
		return
	}

	ctx.SetValue(snapshotToSchemaV1(snap))
	log.Info("snapshot updated",
		"productID", snap.ProductID, "stockCount", snap.StockCount)
}
