// Package queue defines message payloads exchanged over the message broker.
package queue

// QueryServedEvent is published after the API answered a request.  It is
// enough for downstream consumers to log or aggregate traffic without
// access to the API process.
type QueryServedEvent struct {
	RequestID string `json:"request_id"`
	Method    string `json:"method"`
	Route     string `json:"route"`
	Path      string `json:"path"`
	Query     string `json:"query"`
	Status    int    `json:"status"`
	LatencyMS int64  `json:"latency_ms"`
	ClientIP  string `json:"client_ip"`
	ServedAt  string `json:"served_at"`
}
