package kafka

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/M4kuro/budget-cloud-solution/internal/core/domain"
	"github.com/M4kuro/budget-cloud-solution/pkg/schema"
	"github.com/lovoo/goka"
	"github.com/twmb/franz-go/pkg/kgo"
)

var (
	ErrTooFewOpts       = errors.New("too few options")
	ErrInvalidValueType = errors.New("invalid value type")
)

type ProducerClient interface {
	ProduceSync(ctx context.Context, rs ...*kgo.Record) kgo.ProduceResults
	Close()
}

type ConsumerClient interface {
	PollFetches(context.Context) kgo.Fetches
	CommitUncommittedOffsets(context.Context) error
	Close()
}

type Encoder interface {
	Encode(v any) ([]byte, error)
}

type Decoder interface {
	Decode(b []byte, v any) error
}

type Serde interface {
	Encoder
	Decoder
}

type ProducerOpt func(*producerOpts) error

type producerOpts struct {
	cl      ProducerClient
	encoder Encoder
}

func ProducerClientOpt(
	ctx context.Context, seedBrokers []string, topic string,
) ProducerOpt {
	return func(opts *producerOpts) error {
		cl, err := kgo.NewClient(
			kgo.SeedBrokers(seedBrokers...),
			kgo.DefaultProduceTopicAlways(),
			kgo.DefaultProduceTopic(topic),
			kgo.RequiredAcks(kgo.AllISRAcks()),
			kgo.AllowAutoTopicCreation(),
		)
		if err != nil {
			return err
		}

		if err := cl.Ping(ctx); err != nil {
			return err
		}
		opts.cl = cl
		return nil
	}
}

func ProducerEncoderOpt(encoder Encoder) ProducerOpt {
	return func(opts *producerOpts) error {
		if encoder == nil {
			return errors.New("encoder is nil")
		}
		opts.encoder = encoder
		return nil
	}
}

func withNonlogProcOpt() goka.ProcessorOption {
	return goka.WithLogger(log.New(io.Discard, "", 0))
}

func makeOp(s ...string) string {
	return strings.Join(s, ".")
}

func opErr(err error, op ...string) error {
	return fmt.Errorf("%s: %w", makeOp(op...), err)
}

func changeEventToDomain(s schema.ChangeEventV1) domain.ChangeEvent {
	evt := domain.ChangeEvent{
		Op:       domain.ChangeOp(s.EventName),
		NewImage: imageToDomain(s.NewImage),
	}
	if len(s.OldImage) > 0 {
		evt.OldImage = imageToDomain(s.OldImage)
	}
	return evt
}

func imageToDomain(m map[string]schema.AttrV1) domain.EventImage {
	img := make(domain.EventImage, len(m))
	for k, a := range m {
		if a.Kind == string(domain.AttrNumber) {
			img[k] = domain.NumberAttr(a.Value)
			continue
		}
		img[k] = domain.StringAttr(a.Value)
	}
	return img
}

func snapshotToSchemaV1(v domain.ProductSnapshot) (s schema.SnapshotV1) {
	s.ProductID = v.ProductID
	s.Name = v.Name
	s.Category = v.Category
	s.StockCount = v.StockCount
	return
}

func schemaV1ToSnapshot(s schema.SnapshotV1) (v domain.ProductSnapshot) {
	v.ProductID = s.ProductID
	v.Name = s.Name
	v.Category = s.Category
	v.StockCount = s.StockCount
	return
}

func alertToSchemaV1(v domain.AlertMessage) (s schema.AlertV1) {
	s.MessageID = v.MessageID
	s.Subject = v.Subject
	s.Message = v.Body
	return
}
