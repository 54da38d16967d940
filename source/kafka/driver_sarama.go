package kafka

import (
	"context"
	"errors"
	"sync"

	"github.com/IBM/sarama"

	"unifold/internal/logging"
	"unifold/internal/vfile"
)

type SaramaDriver struct {
	cfg   Config
	cl    sarama.Client
	group sarama.ConsumerGroup
	bp    *Controller
	cp    *Checkpointer

	mu      sync.Mutex
	pending map[recordID]func()

	ackCh chan recordID
}

func init() { Register("sarama", func() Adapter { return &SaramaDriver{} }) }

func (d *SaramaDriver) Configure(config Config) error {
	d.cfg = config
	d.pending = make(map[recordID]func())
	d.bp = NewController(config.BackPressure.Capacity, config.BackPressure.Capacity/10, config.BackPressure.CheckInt)
	d.cp = NewCheckpointer(config.Checkpoint.CommitInt)
	d.ackCh = make(chan recordID, int(config.BackPressure.Capacity))

	sc, err := saramaConfig(config)
	if err != nil {
		return err
	}
	if d.cl, err = sarama.NewClient(config.Brokers, sc); err != nil {
		return err
	}
	d.group, err = sarama.NewConsumerGroupFromClient(config.GroupID, d.cl)
	return err
}

func saramaConfig(config Config) (*sarama.Config, error) {
	ver, err := sarama.ParseKafkaVersion(config.Version)
	if err != nil {
		return nil, err
	}
	sc := sarama.NewConfig()
	sc.Version = ver
	sc.Consumer.Return.Errors = true
	sc.Consumer.Offsets.AutoCommit.Enable = false
	if config.TLSEn {
		sc.Net.TLS.Enable = true
	}
	if config.SASLUser != "" {
		sc.Net.SASL.Enable = true
		sc.Net.SASL.User, sc.Net.SASL.Password = config.SASLUser, config.SASLPass
	}
	switch config.StartFrom {
	case "oldest":
		sc.Consumer.Offsets.Initial = sarama.OffsetOldest
	default:
		sc.Consumer.Offsets.Initial = sarama.OffsetNewest
	}
	return sc, nil
}

func (d *SaramaDriver) Run(ctx context.Context, emit EmitFunc) error {
	handler := &groupHandler{driver: d, emit: emit}
	go func() {
		for err := range d.group.Errors() {
			logging.L().Warn("sarama-driver: consumer error", "err", err)
		}
	}()
	for {
		if err := d.group.Consume(ctx, d.cfg.Topics, handler); err != nil {
			if errors.Is(err, sarama.ErrClosedConsumerGroup) {
				return nil
			}
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
}

func (d *SaramaDriver) Close() error {
	var err error
	if d.group != nil {
		err = d.group.Close()
	}
	if d.cl != nil && !d.cl.Closed() {
		err = errors.Join(err, d.cl.Close())
	}
	if d.bp != nil {
		d.bp.Close()
	}
	return err
}

// OnAck queues the record behind f for commit. Only meaningful in e2e mode;
// an ack for a record that is not pending is ignored downstream.
func (d *SaramaDriver) OnAck(f *vfile.File) {
	rec, ok := idOf(f)
	if !ok {
		return
	}
	select {
	case d.ackCh <- rec:
		return
	default:
	}
	// Full: drop the oldest queued ack to make room.
	select {
	case <-d.ackCh:
	default:
	}
	select {
	case d.ackCh <- rec:
	default:
		logging.L().Warn("sarama-driver: ack channel full; dropping ack", "record", rec.String())
	}
}

// settle runs the commit callback registered for rec, if any.
func (d *SaramaDriver) settle(rec recordID) {
	d.mu.Lock()
	cb, ok := d.pending[rec]
	if ok {
		delete(d.pending, rec)
	}
	d.mu.Unlock()
	if ok {
		cb()
		d.bp.Release(1)
		logging.L().Debug("kafka ack released", "record", rec.String())
	}
}

type groupHandler struct {
	driver *SaramaDriver
	emit   EmitFunc
}

func (*groupHandler) Setup(sarama.ConsumerGroupSession) error { return nil }

func (h *groupHandler) Cleanup(sess sarama.ConsumerGroupSession) error {
	h.driver.mu.Lock()
	dropped := len(h.driver.pending)
	h.driver.pending = make(map[recordID]func())
	h.driver.mu.Unlock()

	if dropped > 0 {
		h.driver.bp.Release(int64(dropped))
		logging.L().Info("sarama-driver: rebalance, cleared pending acks", "count", dropped)
	}
	if h.driver.cp.Dirty() {
		sess.Commit()
	}
	return nil
}

func (h *groupHandler) ConsumeClaim(sess sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	ctx := sess.Context()
	for {
		// Drain acks first so a full bucket can make progress.
		if !h.driver.bp.TryAcquire(1) {
			select {
			case rec := <-h.driver.ackCh:
				h.driver.settle(rec)
				continue
			case <-ctx.Done():
				return nil
			}
		}

		select {
		case <-ctx.Done():
			h.driver.bp.Release(1)
			return nil

		case rec := <-h.driver.ackCh:
			h.driver.bp.Release(1)
			h.driver.settle(rec)

		case msg, ok := <-claim.Messages():
			if !ok {
				h.driver.bp.Release(1)
				return nil
			}
			if err := h.handle(sess, msg); err != nil {
				h.driver.bp.Release(1)
				return err
			}
		}
	}
}

func (h *groupHandler) handle(sess sarama.ConsumerGroupSession, msg *sarama.ConsumerMessage) error {
	resolve := h.driver.cp.Track()
	commit := func() {
		sess.MarkMessage(msg, "")
		if resolve() {
			sess.Commit()
		}
	}

	file := NewFile(Record{
		Topic:     msg.Topic,
		Partition: msg.Partition,
		Offset:    msg.Offset,
		Key:       msg.Key,
		Value:     msg.Value,
		Headers:   headerMap(msg.Headers),
		Timestamp: msg.Timestamp,
	})

	rec := recordID{msg.Topic, msg.Partition, msg.Offset}
	if h.driver.cfg.CommitMode == CommitE2E {
		// Register before emitting: sinks may ack synchronously.
		h.driver.mu.Lock()
		h.driver.pending[rec] = commit
		h.driver.mu.Unlock()
		if err := h.emit(file); err != nil {
			h.driver.mu.Lock()
			delete(h.driver.pending, rec)
			h.driver.mu.Unlock()
			return err
		}
		return nil
	}

	if err := h.emit(file); err != nil {
		return err
	}
	commit()
	h.driver.bp.Release(1)
	return nil
}

func headerMap(src []*sarama.RecordHeader) map[string][]byte {
	if len(src) == 0 {
		return nil
	}
	out := make(map[string][]byte, len(src))
	for _, h := range src {
		out[string(h.Key)] = h.Value
	}
	return out
}
