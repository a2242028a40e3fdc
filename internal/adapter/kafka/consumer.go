package kafka

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/M4kuro/budget-cloud-solution/internal/core/domain"
	"github.com/M4kuro/budget-cloud-solution/internal/core/port"
	"github.com/M4kuro/budget-cloud-solution/pkg/schema"
	"github.com/twmb/franz-go/pkg/kgo"
)

type ConsumerOpt func(*consumerOpts) error

func ConsumerClientOpt(
	seedBrokers []string, topic, group string,
) ConsumerOpt {
	return func(co *consumerOpts) error {
		cl, err := kgo.NewClient(
			kgo.SeedBrokers(seedBrokers...),
			kgo.ConsumeTopics(topic),
			kgo.ConsumerGroup(group),
			kgo.DisableAutoCommit(),
		)
		if err != nil {
			return err
		}
		co.cl = cl
		return nil
	}
}

func ConsumerDecoderOpt(decoder Decoder) ConsumerOpt {
	return func(co *consumerOpts) error {
		if decoder == nil {
			return errors.New("decoder is nil")
		}
		co.decoder = decoder
		return nil
	}
}

func ConsumerProcessorOpt(p port.ChangeEventsProcessor) ConsumerOpt {
	return func(co *consumerOpts) error {
		if p == nil {
			return errors.New("change events processor is nil")
		}
		co.processor = p
		return nil
	}
}

type consumerOpts struct {
	cl        ConsumerClient
	decoder   Decoder
	processor port.ChangeEventsProcessor
}

func (co *consumerOpts) apply(opts ...ConsumerOpt) error {
	for _, opt := range opts {
		if err := opt(co); err != nil {
			return err
		}
	}
	return nil
}

// A consumer is used for composition.
//
// Fetching records from kafka broker and closing underlying [kgo.Client].
type consumerParent interface {
	processFetches(context.Context, kgo.Fetches) error
}

type consumer struct {
	opPrefix      string
	parent        consumerParent
	cl            ConsumerClient
	slowDownTimer *time.Timer
}

func (c consumer) run(ctx context.Context) {
	const op = "run"
	log := slog.With("op", makeOp(c.opPrefix, op))

	log.Info("running")

	for {
		select {
		case <-ctx.Done():
			return
		default:
			err := c.consume(ctx)
			if err != nil {
				if errors.Is(err, context.Canceled) {
					continue
				}
				log.Error("failed to consume", "err", err)
				c.slowDown()
			}
		}
	}
}

func (c consumer) consume(ctx context.Context) error {
	const op = "consume"

	fetches, err := c.pollFetches(ctx)
	if err != nil {
		return opErr(err, c.opPrefix, op)
	}

	if fetches.Empty() {
		return nil
	}

	err = c.parent.processFetches(ctx, fetches)
	if err != nil {
		return opErr(err, c.opPrefix, op)
	}

	err = c.commit(ctx)
	if err != nil {
		return opErr(err, c.opPrefix, op)
	}
	return nil
}

func (c consumer) pollFetches(ctx context.Context) (kgo.Fetches, error) {
	const op = "pollFetches"

	fetches := c.cl.PollFetches(ctx)
	if err := fetches.Err0(); err != nil {
		return nil, opErr(err, c.opPrefix, op)
	}

	err := c.handleFetchesErrs(fetches)
	if err != nil {
		return nil, opErr(err, c.opPrefix, op)
	}

	return fetches, nil
}

func (c consumer) handleFetchesErrs(fetches kgo.Fetches) error {
	var errsMessages []string
	fetches.EachError(func(t string, p int32, err error) {
		if err != nil {
			errMsg := fmt.Sprintf(
				"topic %q partition %d: %q", t, p, err,
			)
			errsMessages = append(errsMessages, errMsg)
		}
	})

	if len(errsMessages) != 0 {
		return errors.New(strings.Join(errsMessages, "; "))
	}
	return nil
}

func (c consumer) slowDown() {
	c.slowDownTimer.Reset(1 * time.Second)
	<-c.slowDownTimer.C
}

func (c consumer) commit(ctx context.Context) error {
	const op = "commit"

	err := ctx.Err()
	if err != nil {
		return opErr(err, c.opPrefix, op)
	}

	err = c.cl.CommitUncommittedOffsets(ctx)
	if err != nil {
		return opErr(err, c.opPrefix, op)
	}
	return nil
}

func (c consumer) close() {
	const op = "close"
	log := slog.With("op", makeOp(c.opPrefix, op))

	c.slowDownTimer.Stop()

	log.Info("closing consumer...")
	c.cl.Close()
	log.Info("consumer is closed")
}

// A ChangeEventsConsumer consumes inventory mutation events and hands
// each polled batch to the core processor. Offsets are committed only
// after the batch was processed, so a crashed run replays its events.
type ChangeEventsConsumer struct {
	opPrefix  string
	consumer  consumer
	processor port.ChangeEventsProcessor
	decoder   Decoder
}

func NewChangeEventsConsumer(opts ...ConsumerOpt) (cc ChangeEventsConsumer, err error) {
	const op = "NewChangeEventsConsumer"

	var options consumerOpts
	if err := options.apply(opts...); err != nil {
		return cc, opErr(err, op)
	}

	opPrefix := "ChangeEventsConsumer"

	cc.opPrefix = opPrefix
	cc.processor = options.processor
	cc.decoder = options.decoder

	cc.consumer = consumer{
		opPrefix:      opPrefix,
		parent:        cc,
		cl:            options.cl,
		slowDownTimer: time.NewTimer(0),
	}

	return cc, nil
}

func (c ChangeEventsConsumer) Run(ctx context.Context) {
	c.consumer.run(ctx)
}

func (c ChangeEventsConsumer) Close() {
	c.consumer.close()
}

func (c ChangeEventsConsumer) processFetches(
	ctx context.Context, fetches kgo.Fetches,
) error {
	const op = "processFetches"
	log := slog.With("op", makeOp(c.opPrefix, op))

	events := c.toDomain(fetches)
	if len(events) == 0 {
		return nil
	}

	stats, err := c.processor.ProcessChangeEvents(ctx, events)
	if err != nil {
		return opErr(err, c.opPrefix, op)
	}

	log.Info("batch processed",
		"processed", stats.Processed,
		"skipped", stats.Skipped,
		"lowStock", stats.LowStock,
		"alerted", stats.Alerted,
	)
	return nil
}

func (c ChangeEventsConsumer) toDomain(
	fetches kgo.Fetches,
) (events []domain.ChangeEvent) {
	const op = "toDomain"
	log := slog.With("op", makeOp(c.opPrefix, op))

	fetches.EachRecord(func(r *kgo.Record) {
		evt, err := c.decodeRecValue(r)
		if err != nil {
			log.Error(
				"failed to decode value",
				"err", opErr(err, c.opPrefix, op),
			)
			return
		}
		events = append(events, evt)
	})
	return events
}

func (c ChangeEventsConsumer) decodeRecValue(
	r *kgo.Record,
) (domain.ChangeEvent, error) {
	var s schema.ChangeEventV1
	err := c.decoder.Decode(r.Value, &s)
	if err != nil {
		return domain.ChangeEvent{}, err
	}
	return changeEventToDomain(s), nil
}
