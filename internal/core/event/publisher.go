package event

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Broker はメッセージブローカーへの発行口を抽象化します。
type Broker interface {
	Publish(ctx context.Context, topic string, key string, value []byte) error
}

// FailureSink は発行失敗イベントの記録先です。失敗は呼び出し元の
// トランザクション結果に影響させないため、エラー返却ではなく
// サイドチャネルで通知します。
type FailureSink interface {
	RecordPublishFailure(topic string, eventType Type, err error)
}

type noopFailureSink struct{}

func (noopFailureSink) RecordPublishFailure(string, Type, error) {}

// Clock は現在時刻の取得を抽象化します。
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// Meta は発行時に呼び出し元が指定する相関メタデータです。
// CorrelationID が空の場合は新規に採番されます。
type Meta struct {
	ActorUserID   string
	ActorRole     string
	CorrelationID string
	CausationID   string
	TraceID       string
}

// Publisher はドメインイベントをエンベロープへ包んでブローカーへ
// 送出します。発行はベストエフォートであり、失敗してもエラーを
// 返しません。
type Publisher struct {
	broker Broker
	logger *slog.Logger
	clock  Clock
	sink   FailureSink
	newID  func() string
}

// PublisherOption は Publisher の構成オプションです。
type PublisherOption func(*Publisher)

// WithPublisherClock は時刻取得を差し替えます。
func WithPublisherClock(c Clock) PublisherOption {
	return func(p *Publisher) { p.clock = c }
}

// WithPublisherIDGenerator はイベント ID の採番を差し替えます。
func WithPublisherIDGenerator(fn func() string) PublisherOption {
	return func(p *Publisher) { p.newID = fn }
}

// WithFailureSink は発行失敗の記録先を設定します。
func WithFailureSink(s FailureSink) PublisherOption {
	return func(p *Publisher) { p.sink = s }
}

// NewPublisher は Publisher を生成します。logger が nil の場合は
// slog.Default() を使用します。
func NewPublisher(broker Broker, logger *slog.Logger, opts ...PublisherOption) *Publisher {
	p := &Publisher{
		broker: broker,
		logger: resolveLogger(logger),
		clock:  realClock{},
		sink:   noopFailureSink{},
		newID:  func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func resolveLogger(logger *slog.Logger) *slog.Logger {
	if logger != nil {
		return logger
	}
	return slog.Default()
}

// Publish はペイロードをエンベロープへ包み、種別に対応するトピックへ
// 発行します。key はパーティションキーです。失敗はログと FailureSink に
// 記録され、呼び出し元へは伝播しません。
func (p *Publisher) Publish(ctx context.Context, key string, payload Payload, meta Meta) {
	eventType := payload.eventType()

	topic, err := TopicFor(eventType)
	if err != nil {
		p.logger.ErrorContext(ctx, "event: unmapped event type",
			slog.String("event_type", string(eventType)),
		)
		return
	}

	correlationID := meta.CorrelationID
	if correlationID == "" {
		correlationID = p.newID()
	}

	envelope := Envelope{
		EventID:   p.newID(),
		EventType: eventType,
		Timestamp: p.clock.Now().UTC().Format(time.RFC3339Nano),
		Version:   SchemaVersion,
		Data:      payload,
		Metadata: Metadata{
			SourceService: SourceService,
			CorrelationID: correlationID,
			CausationID:   meta.CausationID,
			ActorUserID:   meta.ActorUserID,
			ActorRole:     meta.ActorRole,
			TraceID:       meta.TraceID,
		},
	}

	value, err := json.Marshal(envelope)
	if err != nil {
		p.logger.ErrorContext(ctx, "event: marshal envelope failed",
			slog.String("event_type", string(eventType)),
			slog.String("error", err.Error()),
		)
		p.sink.RecordPublishFailure(topic, eventType, err)
		return
	}

	if err := p.broker.Publish(ctx, topic, key, value); err != nil {
		p.logger.ErrorContext(ctx, "event: publish failed",
			slog.String("topic", topic),
			slog.String("event_type", string(eventType)),
			slog.String("event_id", envelope.EventID),
			slog.String("error", err.Error()),
		)
		p.sink.RecordPublishFailure(topic, eventType, err)
		return
	}

	p.logger.InfoContext(ctx, "event: published",
		slog.String("topic", topic),
		slog.String("event_type", string(eventType)),
		slog.String("event_id", envelope.EventID),
	)
}
