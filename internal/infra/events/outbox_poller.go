package events

import (
	"context"
	"strconv"
	"time"

	"jewelrystore/internal/config"
	"jewelrystore/internal/domain/model"
	repo "jewelrystore/internal/repository"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// *kafka.Writerを満たす部分だけ
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// outbox_eventsを定期的に読んでKafkaへ送る
type OutboxPoller struct {
	repo      repo.OutboxRepository
	writer    MessageWriter
	logger    *zap.Logger
	interval  time.Duration
	batchSize int
	now       func() time.Time
}

func NewKafkaWriter(cfg config.Config) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(cfg.KafkaBrokers...),
		Topic:                  cfg.KafkaTopic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		AllowAutoTopicCreation: true,
	}
}

func NewOutboxPoller(r repo.OutboxRepository, w MessageWriter, logger *zap.Logger, interval time.Duration) *OutboxPoller {
	if interval <= 0 {
		interval = time.Second
	}
	return &OutboxPoller{
		repo:      r,
		writer:    w,
		logger:    logger,
		interval:  interval,
		batchSize: 100,
		now:       time.Now,
	}
}

// ctxがキャンセルされるまで回る
func (p *OutboxPoller) Run(ctx context.Context) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			p.ProcessOnce(ctx)
		}
	}
}

// 1バッチ送る。送れなかったものは次回に回す
func (p *OutboxPoller) ProcessOnce(ctx context.Context) int {
	events, err := p.repo.ListUnprocessed(ctx, p.batchSize)
	if err != nil {
		p.logger.Error("failed to fetch outbox events", zap.Error(err))
		return 0
	}

	sent := 0
	for _, ev := range events {
		if err := p.writer.WriteMessages(ctx, toMessage(ev)); err != nil {
			p.logger.Warn("failed to publish outbox event",
				zap.Int64("id", ev.ID),
				zap.String("event_type", string(ev.EventType)),
				zap.Error(err))
			// 順序を守るため、同じ注文の後続も含めてここで止める
			break
		}
		if err := p.repo.MarkProcessed(ctx, ev.ID, p.now()); err != nil {
			p.logger.Error("failed to mark outbox event as processed", zap.Int64("id", ev.ID), zap.Error(err))
			break
		}
		sent++
	}
	return sent
}

func toMessage(ev model.OutboxEvent) kafka.Message {
	return kafka.Message{
		Key:   []byte(ev.AggregateID), // order_id単位で順序を保つ
		Value: ev.Payload,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(ev.EventType)},
			{Key: "event_id", Value: []byte(ev.EventID)},
			{Key: "outbox_id", Value: []byte(strconv.FormatInt(ev.ID, 10))},
		},
		Time: ev.CreatedAt,
	}
}
