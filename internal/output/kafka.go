package output

import (
	"fmt"
	"strings"
	"time"

	"github.com/IBM/sarama"
	"github.com/chrisdamba/orderpulse/internal/models"
	"go.uber.org/zap"
)

// KafkaOutput sends each record to <prefix><topic> with a sync producer.
type KafkaOutput struct {
	producer sarama.SyncProducer
	prefix   string
	log      *zap.Logger
}

func NewKafkaOutput(config *models.Config, log *zap.Logger) (*KafkaOutput, error) {
	saramaConfig := sarama.NewConfig()
	saramaConfig.Producer.RequiredAcks = sarama.WaitForAll
	saramaConfig.Producer.Retry.Max = 5
	saramaConfig.Producer.Retry.Backoff = 100 * time.Millisecond
	saramaConfig.Producer.Return.Successes = true
	saramaConfig.Net.DialTimeout = 30 * time.Second
	saramaConfig.Net.ReadTimeout = 30 * time.Second
	saramaConfig.Net.WriteTimeout = 30 * time.Second

	brokerList := strings.Split(config.KafkaBrokerList, ",")
	producer, err := sarama.NewSyncProducer(brokerList, saramaConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create Sarama producer: %w", err)
	}

	log.Info("kafka producer created", zap.Strings("brokers", brokerList))
	return newKafkaOutput(producer, config.KafkaTopicPrefix, log), nil
}

func newKafkaOutput(producer sarama.SyncProducer, prefix string, log *zap.Logger) *KafkaOutput {
	return &KafkaOutput{producer: producer, prefix: prefix, log: log}
}

func (k *KafkaOutput) WriteMessage(topic string, msg []byte) error {
	if k.producer == nil {
		return fmt.Errorf("kafka producer is closed")
	}

	_, _, err := k.producer.SendMessage(&sarama.ProducerMessage{
		Topic: k.prefix + topic,
		Value: sarama.ByteEncoder(msg),
	})
	if err != nil {
		k.log.Error("failed to send message", zap.String("topic", k.prefix+topic), zap.Error(err))
		return err
	}
	return nil
}

func (k *KafkaOutput) Close() error {
	if k.producer == nil {
		return nil
	}
	err := k.producer.Close()
	k.producer = nil
	return err
}
