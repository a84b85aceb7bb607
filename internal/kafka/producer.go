package kafka

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

var (
	ErrBufferFull     = errors.New("kafka producer buffer full")
	ErrProducerClosed = errors.New("kafka producer closed")
)

// Publisher accepts messages for asynchronous delivery.
type Publisher interface {
	Publish(key, value []byte, headers ...kafka.Header) error
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer buffers messages and writes them from a single goroutine so
// request handlers never wait on the broker.
type Producer struct {
	w       messageWriter
	topic   string
	log     *zap.Logger
	inbox   chan kafka.Message
	done    chan struct{}
	closeCh chan struct{}
	once    sync.Once
}

func NewProducer(brokers []string, topic string, buf int, log *zap.Logger) *Producer {
	return newProducer(&kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		AllowAutoTopicCreation: true,
	}, topic, buf, log)
}

func newProducer(w messageWriter, topic string, buf int, log *zap.Logger) *Producer {
	if buf <= 0 {
		buf = 1
	}
	return &Producer{
		w:       w,
		topic:   topic,
		log:     log.With(zap.String("topic", topic)),
		inbox:   make(chan kafka.Message, buf),
		done:    make(chan struct{}),
		closeCh: make(chan struct{}),
	}
}

// Start runs the write loop until ctx ends or Close is called, then
// flushes what is buffered.
func (p *Producer) Start(ctx context.Context) {
	go func() {
		defer close(p.closeCh)
		for {
			select {
			case <-ctx.Done():
				p.flush()
				return
			case <-p.done:
				p.flush()
				return
			case m := <-p.inbox:
				p.write(m)
			}
		}
	}()
}

func (p *Producer) flush() {
	for {
		select {
		case m := <-p.inbox:
			p.write(m)
		default:
			if err := p.w.Close(); err != nil {
				p.log.Warn("kafka_writer_close_failed", zap.Error(err))
			}
			return
		}
	}
}

func (p *Producer) write(m kafka.Message) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := p.w.WriteMessages(ctx, m); err != nil {
		p.log.Error("kafka_write_failed", zap.ByteString("key", m.Key), zap.Error(err))
	}
}

// Publish enqueues a message without blocking.
func (p *Producer) Publish(key, value []byte, headers ...kafka.Header) error {
	select {
	case <-p.done:
		return ErrProducerClosed
	default:
	}
	select {
	case p.inbox <- kafka.Message{Key: key, Value: value, Time: time.Now(), Headers: headers}:
		return nil
	default:
		return ErrBufferFull
	}
}

// Close stops accepting messages; the loop flushes and exits.
func (p *Producer) Close() { p.once.Do(func() { close(p.done) }) }

// WaitClosed blocks until the write loop has exited.
func (p *Producer) WaitClosed() { <-p.closeCh }
