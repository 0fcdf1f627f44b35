package config

type KafkaConfig struct {
	BootstrapServers string
	EventsTopic      string
}

func NewKafkaConfig() *KafkaConfig {
	return &KafkaConfig{
		BootstrapServers: getEnv("KAFKA_BOOTSTRAP_SERVERS", "localhost"),
		EventsTopic:      getEnv("KAFKA_EVENTS_TOPIC", "order_events"),
	}
}
