package kafka

import (
	"context"
	"log/slog"
	"time"

	"github.com/M4kuro/budget-cloud-solution/internal/core/domain"
	"github.com/M4kuro/budget-cloud-solution/internal/core/port"
	"github.com/M4kuro/budget-cloud-solution/pkg/retry"
	"github.com/twmb/franz-go/pkg/kgo"
)

var _ port.Notifier = (*AlertsProducer)(nil)

// An AlertsProducer delivers composed alert messages to the alerts
// topic. The record key is the message ID, so redelivered messages stay
// identifiable downstream.
type AlertsProducer struct {
	opPrefix string
	cl       ProducerClient
	encoder  Encoder
}

func NewAlertsProducer(opts ...ProducerOpt) (AlertsProducer, error) {
	const op = "NewAlertsProducer"

	if len(opts) != 2 {
		panic(opErr(ErrTooFewOpts, op)) // develop mistake
	}

	var options producerOpts
	for _, opt := range opts {
		if err := opt(&options); err != nil {
			return AlertsProducer{}, opErr(err, op)
		}
	}

	return AlertsProducer{
		opPrefix: "AlertsProducer",
		cl:       options.cl,
		encoder:  options.encoder,
	}, nil
}

func (p AlertsProducer) Close() {
	const op = "close"
	log := slog.With("op", makeOp(p.opPrefix, op))
	log.Info("closing producer...")
	p.cl.Close()
	log.Info("producer is closed")
}

func (p AlertsProducer) Notify(
	ctx context.Context, msg domain.AlertMessage,
) error {
	const op = "Notify"

	if err := ctx.Err(); err != nil {
		return opErr(err, p.opPrefix, op)
	}

	r, err := p.createRecord(msg)
	if err != nil {
		return opErr(err, p.opPrefix, op)
	}

	if err := p.produce(ctx, r); err != nil {
		return opErr(err, p.opPrefix, op)
	}
	return nil
}

func (p AlertsProducer) createRecord(
	msg domain.AlertMessage,
) (*kgo.Record, error) {
	const op = "createRecord"

	s := alertToSchemaV1(msg)
	b, err := p.encoder.Encode(s)
	if err != nil {
		return nil, opErr(err, p.opPrefix, op)
	}
	return &kgo.Record{Key: []byte(s.MessageID), Value: b}, nil
}

func (p AlertsProducer) produce(ctx context.Context, r *kgo.Record) error {
	const op = "produce"

	retryCfg := retry.RetryConfig{
		MaxAttempts: 3,
		Backoff:     retry.ExponentialBackoff(100 * time.Millisecond),
	}

	err := retry.Do(ctx, retryCfg, func() error {
		res := p.cl.ProduceSync(ctx, r)
		return res.FirstErr()
	})
	if err != nil {
		return opErr(err, p.opPrefix, op)
	}
	return nil
}
