package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/abrezinsky/councilvote/internal/logger"
)

// messageWriter is the subset of *kafka.Writer the publisher needs
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher writes audit events to a Kafka topic from a background
// goroutine so request handlers never wait on the brokers. Events are keyed
// by polling unit name, which keeps each unit's history on one partition.
type KafkaPublisher struct {
	log     logger.Logger
	writer  messageWriter
	queue   chan kafka.Message
	timeout time.Duration

	wg        sync.WaitGroup
	closeOnce sync.Once
	mu        sync.RWMutex
	closed    bool
}

// queueSize bounds how many events may wait for the brokers
const queueSize = 256

// NewKafkaPublisher creates a publisher for the given brokers and topic
func NewKafkaPublisher(log logger.Logger, brokers []string, topic string) *KafkaPublisher {
	w := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		BatchTimeout: 10 * time.Millisecond,
		MaxAttempts:  5,
		Compression:  kafka.Snappy,
	}
	return newKafkaPublisher(log, w)
}

func newKafkaPublisher(log logger.Logger, w messageWriter) *KafkaPublisher {
	p := &KafkaPublisher{
		log:     log,
		writer:  w,
		queue:   make(chan kafka.Message, queueSize),
		timeout: 10 * time.Second,
	}
	p.wg.Add(1)
	go p.run()
	return p
}

// Publish enqueues an event. It fails only when the queue is full or the
// publisher is closed.
func (p *KafkaPublisher) Publish(ctx context.Context, e AuditEvent) error {
	value, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("failed to marshal audit event: %w", err)
	}
	msg := kafka.Message{Key: []byte(e.PollingUnit), Value: value, Time: e.CreatedAt}

	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return fmt.Errorf("kafka publisher is closed")
	}

	select {
	case p.queue <- msg:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		return fmt.Errorf("kafka publish queue is full")
	}
}

func (p *KafkaPublisher) run() {
	defer p.wg.Done()
	for msg := range p.queue {
		ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
		if err := p.writer.WriteMessages(ctx, msg); err != nil {
			p.log.Error("Failed to write audit event to kafka", "key", string(msg.Key), "error", err)
		}
		cancel()
	}
}

// Close drains queued events and closes the writer
func (p *KafkaPublisher) Close() error {
	var err error
	p.closeOnce.Do(func() {
		p.mu.Lock()
		p.closed = true
		close(p.queue)
		p.mu.Unlock()

		p.wg.Wait()
		if cerr := p.writer.Close(); cerr != nil {
			err = fmt.Errorf("failed to close kafka writer: %w", cerr)
		}
	})
	return err
}
