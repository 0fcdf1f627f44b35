package producer

import (
	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
	"github.com/sirupsen/logrus"

	"github.com/k-code-yt/retail-orders/internal/config"
)

type KafkaProducer struct {
	producer *kafka.Producer
	topic    string
}

func NewKafkaProducer(cfg *config.KafkaConfig) (*KafkaProducer, error) {
	p, err := kafka.NewProducer(&kafka.ConfigMap{"bootstrap.servers": cfg.BootstrapServers})
	if err != nil {
		return nil, err
	}

	go func() {
		for e := range p.Events() {
			switch ev := e.(type) {
			case *kafka.Message:
				if ev.TopicPartition.Error != nil {
					logrus.WithFields(logrus.Fields{
						"PRTN": ev.TopicPartition,
					}).Warn("delivery failed")
				} else {
					logrus.WithFields(logrus.Fields{
						"PRTN":   ev.TopicPartition.Partition,
						"OFFSET": ev.TopicPartition.Offset,
					}).Debug("delivery success")
				}
			}
		}
	}()

	return &KafkaProducer{
		producer: p,
		topic:    cfg.EventsTopic,
	}, nil
}

func (p *KafkaProducer) Produce(key, msg []byte) error {
	return p.producer.Produce(&kafka.Message{
		TopicPartition: kafka.TopicPartition{Topic: &p.topic, Partition: kafka.PartitionAny},
		Key:            key,
		Value:          msg,
	}, nil)
}

// Flush waits up to timeoutMs for outstanding delivery reports and returns
// how many messages are still in flight.
func (p *KafkaProducer) Flush(timeoutMs int) int {
	return p.producer.Flush(timeoutMs)
}

func (p *KafkaProducer) Close() {
	p.producer.Flush(5000)
	p.producer.Close()
}
