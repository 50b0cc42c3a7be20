// Package kafka は Kafka を利用したイベント発行と購読の実装です。
package kafka

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/PookieLand/employee-management-service/internal/core/event"
)

// Publisher は event.Broker の Kafka 実装です。同一キーのメッセージが
// 同一パーティションへ届くようハッシュバランサを使います。
type Publisher struct {
	writer *kafkago.Writer
}

var _ event.Broker = (*Publisher)(nil)

// NewPublisher は Publisher を生成します。
func NewPublisher(brokers []string) *Publisher {
	return &Publisher{
		writer: &kafkago.Writer{
			Addr:                   kafkago.TCP(brokers...),
			Balancer:               &kafkago.Hash{},
			RequiredAcks:           kafkago.RequireAll,
			AllowAutoTopicCreation: true,
		},
	}
}

// Publish はメッセージを指定トピックへ書き込みます。
func (p *Publisher) Publish(ctx context.Context, topic string, key string, value []byte) error {
	return p.writer.WriteMessages(ctx, kafkago.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: value,
	})
}

// Close はライターを閉じます。
func (p *Publisher) Close() error {
	return p.writer.Close()
}

// HandleFunc はトピックごとのメッセージ処理関数です。エラーを返すと
// オフセットはコミットされず、メッセージは再配送されます。
type HandleFunc func(ctx context.Context, topic string, value []byte) error

// Consumer は複数トピックをコンシューマグループとして購読します。
type Consumer struct {
	readers []*kafkago.Reader
	handle  HandleFunc
	logger  *slog.Logger
}

// NewConsumer は Consumer を生成します。logger が nil の場合は
// slog.Default() を使用します。
func NewConsumer(brokers []string, groupID string, topics []string, handle HandleFunc, logger *slog.Logger) *Consumer {
	if logger == nil {
		logger = slog.Default()
	}

	readers := make([]*kafkago.Reader, 0, len(topics))
	for _, topic := range topics {
		readers = append(readers, kafkago.NewReader(kafkago.ReaderConfig{
			Brokers:  brokers,
			GroupID:  groupID,
			Topic:    topic,
			MinBytes: 1,
			MaxBytes: 10 << 20,
			MaxWait:  time.Second,
		}))
	}

	return &Consumer{readers: readers, handle: handle, logger: logger}
}

// Run は全トピックの購読ループを開始し、ctx のキャンセルまで
// ブロックします。
func (c *Consumer) Run(ctx context.Context) error {
	var wg sync.WaitGroup
	for _, reader := range c.readers {
		wg.Add(1)
		go func(r *kafkago.Reader) {
			defer wg.Done()
			c.consume(ctx, r)
		}(reader)
	}
	wg.Wait()
	return nil
}

func (c *Consumer) consume(ctx context.Context, reader *kafkago.Reader) {
	topic := reader.Config().Topic
	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, io.EOF) {
				return
			}
			c.logger.ErrorContext(ctx, "kafka: fetch failed",
				slog.String("topic", topic),
				slog.String("error", err.Error()),
			)
			continue
		}

		if err := c.handle(ctx, msg.Topic, msg.Value); err != nil {
			// コミットせず再配送に委ねる。
			c.logger.ErrorContext(ctx, "kafka: handler failed",
				slog.String("topic", msg.Topic),
				slog.Int64("offset", msg.Offset),
				slog.String("error", err.Error()),
			)
			continue
		}

		if err := reader.CommitMessages(ctx, msg); err != nil {
			c.logger.ErrorContext(ctx, "kafka: commit failed",
				slog.String("topic", msg.Topic),
				slog.Int64("offset", msg.Offset),
				slog.String("error", err.Error()),
			)
		}
	}
}

// Close は全リーダーを閉じます。
func (c *Consumer) Close() error {
	var errs []error
	for _, reader := range c.readers {
		if err := reader.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
