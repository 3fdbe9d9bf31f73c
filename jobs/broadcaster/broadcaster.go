package broadcaster

import (
	"context"
	"strconv"
	"time"

	"github.com/IBM/sarama"
	"go.uber.org/zap"

	"pairbook/infra/outbox"
	"pairbook/metrics"
)

// Broadcaster drains the notification outbox to Kafka. Each pass marks a row
// SENT, publishes it, then marks it ACKED; a publish failure leaves the row
// pending for the next pass, so delivery is at-least-once.
type Broadcaster struct {
	outbox   *outbox.Outbox
	producer sarama.SyncProducer
	topic    string
	interval time.Duration
	log      *zap.Logger
}

func New(ob *outbox.Outbox, brokers []string, topic string, interval time.Duration, log *zap.Logger) (*Broadcaster, error) {
	cfg := sarama.NewConfig()
	cfg.Producer.Return.Successes = true
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Retry.Max = 5

	producer, err := sarama.NewSyncProducer(brokers, cfg)
	if err != nil {
		return nil, err
	}
	return NewWithProducer(ob, producer, topic, interval, log), nil
}

// NewWithProducer wires an existing producer; tests use it with sarama mocks.
func NewWithProducer(ob *outbox.Outbox, producer sarama.SyncProducer, topic string, interval time.Duration, log *zap.Logger) *Broadcaster {
	return &Broadcaster{
		outbox:   ob,
		producer: producer,
		topic:    topic,
		interval: interval,
		log:      log,
	}
}

// Run drains the outbox on a ticker until ctx is cancelled.
func (b *Broadcaster) Run(ctx context.Context) {
	b.log.Info("broadcaster started", zap.String("topic", b.topic), zap.Duration("interval", b.interval))

	ticker := time.NewTicker(b.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			b.log.Info("broadcaster stopped")
			return
		case <-ticker.C:
			b.DrainOnce()
			if n, err := b.outbox.SweepAcked(); err != nil {
				b.log.Warn("outbox sweep failed", zap.Error(err))
			} else if n > 0 {
				b.log.Debug("outbox swept", zap.Int("acked", n))
			}
			if n, err := b.outbox.PendingCount(); err == nil {
				metrics.OutboxPending.Set(float64(n))
			}
		}
	}
}

// DrainOnce publishes every pending row once.
func (b *Broadcaster) DrainOnce() {
	err := b.outbox.ScanPending(func(rec outbox.Record) error {
		if err := b.outbox.MarkSent(rec.Seq); err != nil {
			return err
		}

		msg := &sarama.ProducerMessage{
			Topic: b.topic,
			Key:   sarama.StringEncoder(strconv.FormatUint(rec.Seq, 10)),
			Value: sarama.ByteEncoder(rec.Payload),
		}
		if _, _, err := b.producer.SendMessage(msg); err != nil {
			b.log.Warn("publish failed", zap.Uint64("seq", rec.Seq), zap.Error(err))
			_ = b.outbox.MarkFailed(rec.Seq)
			return nil // retry on the next pass
		}

		metrics.EventsPublished.Inc()
		return b.outbox.MarkAcked(rec.Seq)
	})
	if err != nil {
		b.log.Warn("outbox scan failed", zap.Error(err))
	}
}

func (b *Broadcaster) Close() error {
	return b.producer.Close()
}
