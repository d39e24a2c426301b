// Package queue provides the dispatch channel that decouples work item
// submission from asynchronous processing. It defines the JSON wire format
// for dispatch messages and Publisher/Subscriber interfaces satisfied by an
// in-process channel-backed queue (tests, local development) and a RabbitMQ
// backend (production).
package queue
