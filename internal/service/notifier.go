package service

import ws "backoffice/internal/websocket"

// Re-exported so callers of the service package need not import the hub.
const (
	EventComplaintCreated       = ws.EventComplaintCreated
	EventComplaintStatusChanged = ws.EventComplaintStatusChanged
	EventPaymentReminders       = ws.EventPaymentReminders
	EventUserTasksGenerated     = ws.EventUserTasksGenerated
	EventPermissionsChanged     = ws.EventPermissionsChanged
)

// Notifier pushes realtime events to connected back office clients. *websocket.Hub implements it.
type Notifier interface {
	Publish(eventType string, data interface{})
}

type nopNotifier struct{}

func (nopNotifier) Publish(string, interface{}) {}

func notifierOrNop(n Notifier) Notifier {
	if n == nil {
		return nopNotifier{}
	}
	return n
}
