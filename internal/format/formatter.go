// Package format renders notification snapshots for the command line.
package format

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/cristianoliveira/rx-intray/internal/domain"
)

// Formatter writes a snapshot to w.
type Formatter interface {
	Format(w io.Writer, s domain.Snapshot) error
}

// FormatterType names an output style.
type FormatterType string

const (
	// FormatterTypeSimple prints one line per notification with time, kind and text.
	FormatterTypeSimple FormatterType = "simple"
	// FormatterTypeTable prints a styled table.
	FormatterTypeTable FormatterType = "table"
	// FormatterTypeCompact prints titles only.
	FormatterTypeCompact FormatterType = "compact"
	// FormatterTypeJSON prints the snapshot as a JSON array.
	FormatterTypeJSON FormatterType = "json"
)

// FormatterTypes lists the accepted output styles.
var FormatterTypes = []FormatterType{FormatterTypeSimple, FormatterTypeTable, FormatterTypeCompact, FormatterTypeJSON}

// ParseFormatterType converts user input into a FormatterType.
func ParseFormatterType(value string) (FormatterType, error) {
	t := FormatterType(strings.ToLower(strings.TrimSpace(value)))
	for _, known := range FormatterTypes {
		if t == known {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown format %q", value)
}

// NewFormatter creates a formatter of the given type. Unknown types get the
// simple formatter.
func NewFormatter(t FormatterType) Formatter {
	switch t {
	case FormatterTypeTable:
		return NewTableFormatter(0)
	case FormatterTypeCompact:
		return CompactFormatter{}
	case FormatterTypeJSON:
		return JSONFormatter{}
	default:
		return SimpleFormatter{}
	}
}

// SimpleFormatter prints "<time>  <marker> [kind] title - message".
type SimpleFormatter struct{}

// Format implements Formatter.
func (SimpleFormatter) Format(w io.Writer, s domain.Snapshot) error {
	for _, n := range s {
		line := fmt.Sprintf("%s  %s %-9s %s", n.Timestamp.Local().Format(time.TimeOnly), readMarker(n), "["+n.Kind.String()+"]", n.Title)
		if n.Message != "" {
			line += " - " + truncate(n.Message, 60)
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// CompactFormatter prints one title per line.
type CompactFormatter struct{}

// Format implements Formatter.
func (CompactFormatter) Format(w io.Writer, s domain.Snapshot) error {
	for _, n := range s {
		if _, err := fmt.Fprintln(w, n.Title); err != nil {
			return err
		}
	}
	return nil
}

// JSONFormatter prints the snapshot as indented JSON.
type JSONFormatter struct{}

// Format implements Formatter.
func (JSONFormatter) Format(w io.Writer, s domain.Snapshot) error {
	if s == nil {
		s = domain.Snapshot{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(s)
}

// Summary returns a one-line count of s, e.g. "3 notifications (1 unread)".
func Summary(s domain.Snapshot) string {
	noun := "notifications"
	if len(s) == 1 {
		noun = "notification"
	}
	return fmt.Sprintf("%d %s (%d unread)", len(s), noun, s.Unread())
}

func readMarker(n domain.Notification) string {
	if n.Read {
		return " "
	}
	return "*"
}

func truncate(value string, width int) string {
	if width <= 3 || utf8.RuneCountInString(value) <= width {
		return value
	}
	return string([]rune(value)[:width-3]) + "..."
}
