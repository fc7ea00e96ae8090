package kafka_client

import "time"

const (
	KAFKA_TOPIC_JOURNAL_ENTRIES = "journal-entries" // entries saved without analysis
)

const (
	BATCH_SIZE    = 20
	BATCH_TIMEOUT = 5 * time.Second
	POLL_TIMEOUT  = 1 * time.Second
	MAX_RETRIES   = 5
	RETRY_DELAY   = 2 * time.Second
)
