package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/IBM/sarama"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Kinds of drift between the image host and the document store.
const (
	KindOrphanedImage     = "orphaned_remote_image"
	KindDanglingReference = "dangling_image_reference"
)

// Reconciliation describes a remote/local pair that no longer agrees and
// needs an operator or a sweeper to fix it.
type Reconciliation struct {
	ID          string    `json:"id"`
	Kind        string    `json:"kind"`
	Entity      string    `json:"entity"`
	EntityID    string    `json:"entityId,omitempty"`
	PublicIDs   []string  `json:"publicIds"`
	Compensated bool      `json:"compensated"`
	Reason      string    `json:"reason"`
	OccurredAt  time.Time `json:"occurredAt"`
}

func NewReconciliation(kind, entity, entityID string, publicIDs []string, reason error) Reconciliation {
	r := Reconciliation{
		ID:         uuid.NewString(),
		Kind:       kind,
		Entity:     entity,
		EntityID:   entityID,
		PublicIDs:  publicIDs,
		OccurredAt: time.Now().UTC(),
	}
	if reason != nil {
		r.Reason = reason.Error()
	}
	return r
}

type Emitter interface {
	Emit(ctx context.Context, r Reconciliation)
}

// LogEmitter only writes the event to the log.
type LogEmitter struct{}

func (LogEmitter) Emit(_ context.Context, r Reconciliation) {
	zap.L().Warn("reconciliation needed",
		zap.String("event_id", r.ID),
		zap.String("kind", r.Kind),
		zap.String("entity", r.Entity),
		zap.String("entity_id", r.EntityID),
		zap.Strings("public_ids", r.PublicIDs),
		zap.Bool("compensated", r.Compensated),
		zap.String("reason", r.Reason))
}

// KafkaEmitter publishes events to a topic and falls back to the log when
// the broker refuses them.
type KafkaEmitter struct {
	producer sarama.SyncProducer
	topic    string
}

func NewKafkaEmitter(brokers []string, topic string) (*KafkaEmitter, error) {
	cfg := sarama.NewConfig()
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Retry.Max = 3
	cfg.Producer.Return.Successes = true
	cfg.Producer.Timeout = 5 * time.Second

	producer, err := sarama.NewSyncProducer(brokers, cfg)
	if err != nil {
		return nil, errors.Wrap(err, "kafka producer")
	}
	zap.S().Infow("✅ connected to Kafka", "brokers", brokers, "topic", topic)
	return &KafkaEmitter{producer: producer, topic: topic}, nil
}

func (k *KafkaEmitter) Emit(ctx context.Context, r Reconciliation) {
	payload, err := json.Marshal(r)
	if err == nil {
		_, _, err = k.producer.SendMessage(&sarama.ProducerMessage{
			Topic: k.topic,
			Key:   sarama.StringEncoder(r.Entity + ":" + r.EntityID),
			Value: sarama.ByteEncoder(payload),
		})
	}
	if err != nil {
		zap.L().Error("❌ kafka emit failed", zap.String("event_id", r.ID), zap.Error(err))
	}
	LogEmitter{}.Emit(ctx, r)
}

func (k *KafkaEmitter) Close() error {
	return k.producer.Close()
}
