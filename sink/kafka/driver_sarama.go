// Package kafka is a sink producing each file's value to a Kafka topic.
package kafka

import (
	"fmt"
	"sync"

	"github.com/IBM/sarama"

	"unifold/internal/logging"
	"unifold/internal/vfile"
	"unifold/sink"
	source "unifold/source/kafka"
)

type Config struct {
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic"`
	Acks    int16    `yaml:"required_acks"` // 0,1,-1
}

type driver struct {
	cfg Config
	p   sarama.AsyncProducer
	ack sink.EmitFn

	wg   sync.WaitGroup
	once sync.Once
}

func (d *driver) Configure(c any) error {
	cfg, ok := c.(Config)
	if !ok {
		return fmt.Errorf("kafka-sink: want Config, got %T", c)
	}
	if cfg.Topic == "" {
		return fmt.Errorf("kafka-sink: topic is required")
	}
	p, err := sarama.NewAsyncProducer(cfg.Brokers, producerConfig(cfg))
	if err != nil {
		return err
	}
	d.start(cfg, p)
	return nil
}

func producerConfig(cfg Config) *sarama.Config {
	sc := sarama.NewConfig()
	sc.Producer.RequiredAcks = sarama.RequiredAcks(cfg.Acks)
	sc.Producer.Return.Successes = true
	sc.Producer.Return.Errors = true
	return sc
}

// start wires a producer whose Successes and Errors are both enabled.
func (d *driver) start(cfg Config, p sarama.AsyncProducer) {
	d.cfg, d.p = cfg, p
	d.wg.Add(2)
	go func() {
		defer d.wg.Done()
		for msg := range p.Successes() {
			if f, ok := msg.Metadata.(*vfile.File); ok && d.ack != nil {
				d.ack(f)
			}
		}
	}()
	go func() {
		defer d.wg.Done()
		for perr := range p.Errors() {
			path := ""
			if f, ok := perr.Msg.Metadata.(*vfile.File); ok {
				path = f.Path
			}
			logging.L().Error("kafka-sink: produce failed", "topic", d.cfg.Topic, "path", path, "err", perr.Err)
		}
	}()
}

func (d *driver) Push(f *vfile.File) error {
	msg := &sarama.ProducerMessage{
		Topic:    d.cfg.Topic,
		Value:    sarama.ByteEncoder(f.Value),
		Metadata: f,
	}
	if key, ok := f.Data[source.DataKey].(string); ok && key != "" {
		msg.Key = sarama.StringEncoder(key)
	}
	d.p.Input() <- msg
	return nil
}

func (d *driver) BindAck(fn sink.EmitFn) { d.ack = fn }

func (d *driver) Close() error {
	var err error
	d.once.Do(func() {
		err = d.p.Close()
		d.wg.Wait()
	})
	return err
}

func init() { sink.Register("kafka", func() sink.Adapter { return &driver{} }) }
