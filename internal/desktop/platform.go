package desktop

import (
	"context"

	"github.com/cristianoliveira/rx-intray/internal/domain"
)

// Message is what gets shown on the desktop. Data is the producer's
// payload, such as the conversation a message belongs to.
type Message struct {
	Title string
	Body  string
	Kind  domain.Kind
	Data  domain.Data
}

// MessageFor builds the desktop message for n. The message owns a copy of
// the payload.
func MessageFor(n domain.Notification) Message {
	return Message{Title: n.Title, Body: n.Message, Kind: n.Kind, Data: n.Data.Clone()}
}

// Platform is the operating system's desktop notification capability.
type Platform interface {
	// PermissionState reports the platform's view of the permission:
	// StateUnsupported, StateUnrequested, StateGranted or StateDenied.
	PermissionState() State
	// RequestPermission asks the user. It blocks until the user decides.
	RequestPermission(ctx context.Context) (bool, error)
	// Display shows one notification.
	Display(ctx context.Context, m Message) error
}
