package kafka_client

import "os"

type KafkaConfig struct {
	Broker          string
	GroupID         string
	Topic           string
	TransactionalID string
}

func getEnv(key, defaultValue string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return defaultValue
}

func GetKafkaConfig() KafkaConfig {
	return KafkaConfig{
		Broker:          getEnv("KAFKA_BROKER", "localhost:29092"),
		GroupID:         getEnv("KAFKA_CONSUMER_GROUP_ID", "moodflow-analysis-group"),
		Topic:           getEnv("KAFKA_CONSUMER_TOPIC", KAFKA_TOPIC_JOURNAL_ENTRIES),
		TransactionalID: getEnv("KAFKA_TRANSACTIONAL_ID", "moodflow-producer-1"),
	}
}
