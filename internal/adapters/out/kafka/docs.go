// Package kafka publishes committed order state changes to a Kafka topic.
package kafka
