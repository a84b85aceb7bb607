package kafka

import (
	"context"
	"errors"
	"sync"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// Handler returns nil only when the message was processed and its offset
// may be committed.
type Handler func(ctx context.Context, m kafka.Message) error

type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type Consumer struct {
	r       messageReader
	workers int
	log     *zap.Logger
}

func NewConsumer(brokers []string, group, topic string, workers int, log *zap.Logger) *Consumer {
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		GroupID:        group,
		Topic:          topic,
		MinBytes:       1,
		MaxBytes:       10e6,
		CommitInterval: 0, // explicit commits
	})
	return newConsumer(r, workers, log.With(zap.String("topic", topic), zap.String("group", group)))
}

func newConsumer(r messageReader, workers int, log *zap.Logger) *Consumer {
	if workers <= 0 {
		workers = 1
	}
	return &Consumer{r: r, workers: workers, log: log}
}

// Start fetches messages and fans them out to the worker pool until ctx
// ends. A nil return means a clean shutdown.
func (c *Consumer) Start(ctx context.Context, h Handler) error {
	defer c.r.Close()

	jobs := make(chan kafka.Message, c.workers*4)
	var wg sync.WaitGroup
	for i := 0; i < c.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for m := range jobs {
				if err := h(ctx, m); err != nil {
					c.log.Error("handle_message_failed",
						zap.Int("partition", m.Partition),
						zap.Int64("offset", m.Offset),
						zap.Error(err))
					continue
				}
				if err := c.r.CommitMessages(ctx, m); err != nil && ctx.Err() == nil {
					c.log.Warn("commit_failed", zap.Int64("offset", m.Offset), zap.Error(err))
				}
			}
		}()
	}
	defer wg.Wait()
	defer close(jobs)

	for {
		m, err := c.r.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}
		select {
		case jobs <- m:
		case <-ctx.Done():
			return nil
		}
	}
}
