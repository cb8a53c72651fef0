// Package events publishes game events produced by the service.
//
// KafkaPublisher streams every drop, rejection, victory and reset to a
// Kafka topic for downstream analytics. NopPublisher is used when no
// brokers are configured.
package events
