package kafka

import (
	"context"
	"fmt"

	"github.com/IBM/sarama"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"

	"tabetl/internal/dataset"
	"tabetl/internal/logging"
	"tabetl/sink"
)

type driver struct {
	cfg Config
	p   sarama.SyncProducer
}

// newProducer is swapped in tests.
var newProducer = func(brokers []string, sc *sarama.Config) (sarama.SyncProducer, error) {
	return sarama.NewSyncProducer(brokers, sc)
}

func (d *driver) Configure(c any) error {
	cfg, ok := c.(Config)
	if !ok {
		return fmt.Errorf("kafka-sink: want Config, got %T", c)
	}
	if err := cfg.validate(); err != nil {
		return err
	}
	d.cfg = cfg

	sc, err := saramaConfig(cfg)
	if err != nil {
		return err
	}
	d.p, err = newProducer(cfg.Brokers, sc)
	return err
}

func saramaConfig(cfg Config) (*sarama.Config, error) {
	sc := sarama.NewConfig()
	if cfg.Version != "" {
		ver, err := sarama.ParseKafkaVersion(cfg.Version)
		if err != nil {
			return nil, fmt.Errorf("kafka-sink: %w", err)
		}
		sc.Version = ver
	}
	sc.Producer.RequiredAcks = sarama.RequiredAcks(cfg.RequiredAcks)
	sc.Producer.Return.Successes = true
	sc.Producer.Return.Errors = true
	if cfg.TLSEn {
		sc.Net.TLS.Enable = true
	}
	if cfg.SASLUser != "" {
		sc.Net.SASL.Enable = true
		sc.Net.SASL.User, sc.Net.SASL.Password = cfg.SASLUser, cfg.SASLPass
	}
	return sc, nil
}

// Write publishes one message per row, in batches of cfg.BatchSize.
func (d *driver) Write(ctx context.Context, ds *dataset.Dataset) error {
	if d.p == nil {
		return fmt.Errorf("kafka-sink: not configured")
	}
	if d.cfg.KeyField != "" && !ds.Has(d.cfg.KeyField) {
		return fmt.Errorf("kafka-sink: key field %q not in dataset", d.cfg.KeyField)
	}
	batch := make([]*sarama.ProducerMessage, 0, d.cfg.BatchSize)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := d.p.SendMessages(batch); err != nil {
			return fmt.Errorf("kafka-sink: %w", err)
		}
		batch = batch[:0]
		return nil
	}

	for i := 0; i < ds.Len(); i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		msg, err := d.message(ds, i)
		if err != nil {
			return fmt.Errorf("kafka-sink: row %d: %w", i, err)
		}
		batch = append(batch, msg)
		if len(batch) >= d.cfg.BatchSize {
			if err := flush(); err != nil {
				return err
			}
		}
	}
	if err := flush(); err != nil {
		return err
	}
	logging.L().Debug("kafka sink published", "topic", d.cfg.Topic, "rows", ds.Len())
	return nil
}

func (d *driver) message(ds *dataset.Dataset, i int) (*sarama.ProducerMessage, error) {
	value, err := d.encode(ds, i)
	if err != nil {
		return nil, err
	}
	msg := &sarama.ProducerMessage{
		Topic: d.cfg.Topic,
		Value: sarama.ByteEncoder(value),
		Headers: []sarama.RecordHeader{
			{Key: []byte("content-type"), Value: []byte(contentType(d.cfg.Encoding))},
		},
	}
	if d.cfg.KeyField != "" {
		col, _ := ds.Column(d.cfg.KeyField)
		if v := col.Values[i]; !dataset.IsNull(v) {
			msg.Key = sarama.StringEncoder(dataset.Format(v))
		}
	}
	return msg, nil
}

func (d *driver) encode(ds *dataset.Dataset, i int) ([]byte, error) {
	if d.cfg.Encoding == EncodingProtobuf {
		st, err := structpb.NewStruct(ds.RowMap(i))
		if err != nil {
			return nil, err
		}
		return proto.Marshal(st)
	}
	return ds.AppendRowJSON(nil, i)
}

func contentType(e Encoding) string {
	if e == EncodingProtobuf {
		return "application/x-protobuf"
	}
	return "application/json"
}

func (d *driver) Close() error {
	if d.p == nil {
		return nil
	}
	p := d.p
	d.p = nil
	return p.Close()
}

func init() { sink.Register("kafka", func() sink.Adapter { return &driver{} }) }

// compile-time check
var _ sink.Adapter = (*driver)(nil)
