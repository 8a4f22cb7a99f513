package pool

import "time"

// EventType identifies a connection lifecycle event.
type EventType string

const (
	EventConnecting    EventType = "connection_connecting"
	EventConnected     EventType = "connection_connected"
	EventDisconnected  EventType = "connection_disconnected"
	EventError         EventType = "connection_error"
	EventHealthCheck   EventType = "health_check"
	EventCircuitOpened EventType = "circuit_opened"
	EventCircuitClosed EventType = "circuit_closed"
)

// Event describes a change in a managed store's connection state. Err is set
// on connection_error and on failed health_check events.
type Event struct {
	Type  EventType
	Store string
	Err   error
	Time  time.Time
}
