// Package domain provides the domain layer for notifications.
// It contains the notification record, its kinds and snapshot helpers.
package domain

import (
	"fmt"
	"maps"
	"strings"
	"time"
)

// Kind represents the category of a notification. It drives default titles
// and styling.
type Kind string

const (
	KindInfo    Kind = "info"
	KindSuccess Kind = "success"
	KindError   Kind = "error"
	KindWarning Kind = "warning"
)

// Kinds lists every supported kind in display order.
var Kinds = []Kind{KindInfo, KindSuccess, KindWarning, KindError}

// IsValid checks if the kind is one of the supported kinds.
func (k Kind) IsValid() bool {
	switch k {
	case KindInfo, KindSuccess, KindError, KindWarning:
		return true
	default:
		return false
	}
}

// String returns the string representation of the kind.
func (k Kind) String() string {
	return string(k)
}

// DefaultTitle returns the title used when a producer supplies none.
func (k Kind) DefaultTitle() string {
	switch k {
	case KindSuccess:
		return "Success"
	case KindError:
		return "Error"
	case KindWarning:
		return "Warning"
	default:
		return "Info"
	}
}

// ParseKind parses a string into a Kind.
func ParseKind(kind string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(kind)))
	if !k.IsValid() {
		return "", fmt.Errorf("invalid notification kind: %s", kind)
	}
	return k, nil
}

// Data is an opaque producer payload. The engine never interprets it.
type Data map[string]any

// Clone returns a shallow copy of the payload. Nil stays nil.
func (d Data) Clone() Data {
	if d == nil {
		return nil
	}
	return maps.Clone(d)
}

// String returns the value stored under key when it is a string.
func (d Data) String(key string) string {
	if v, ok := d[key].(string); ok {
		return v
	}
	return ""
}

// Notification is a single user-facing alert.
type Notification struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Title     string    `json:"title"`
	Message   string    `json:"message,omitempty"`
	Kind      Kind      `json:"kind"`
	Data      Data      `json:"data,omitempty"`
	Read      bool      `json:"read"`
}

// Input carries what a producer supplies when showing a notification.
// ID and Timestamp are assigned by the registry.
type Input struct {
	Title   string
	Message string
	Kind    Kind
	Data    Data
}

// Normalize returns a copy of the input that is always insertable: unknown
// kinds become info and an empty title falls back to the kind's default.
func (in Input) Normalize() Input {
	if !in.Kind.IsValid() {
		in.Kind = KindInfo
	}
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		in.Title = in.Kind.DefaultTitle()
	}
	in.Data = in.Data.Clone()
	return in
}

// Clone returns a copy that shares no mutable state with n.
func (n Notification) Clone() Notification {
	n.Data = n.Data.Clone()
	return n
}

// IsRead reports whether the notification was marked read.
func (n Notification) IsRead() bool {
	return n.Read
}

// Validate reports whether a stored notification is well formed.
func (n Notification) Validate() error {
	if n.ID == "" {
		return fmt.Errorf("notification ID cannot be empty")
	}
	if n.Timestamp.IsZero() {
		return fmt.Errorf("notification timestamp cannot be empty")
	}
	if n.Title == "" {
		return fmt.Errorf("notification title cannot be empty")
	}
	if !n.Kind.IsValid() {
		return fmt.Errorf("invalid notification kind: %s", n.Kind)
	}
	return nil
}
