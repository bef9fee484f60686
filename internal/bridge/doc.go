// Package bridge exposes a KLF gateway session over HTTP.
//
// A small REST API reads gateway state and moves nodes; GET /ws streams
// every notification as JSON to websocket clients, and a RedisPublisher
// can mirror the same stream to a Redis Pub/Sub channel.
package bridge
