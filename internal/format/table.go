package format

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/cristianoliveira/rx-intray/internal/domain"
)

const (
	idWidth             = 8
	timeWidth           = 8
	kindWidth           = 9
	statusWidth         = 6
	titleWidth          = 28
	defaultMessageWidth = 40
	spacesBetween       = 10
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("4"))
	kindStyles  = map[domain.Kind]lipgloss.Style{
		domain.KindInfo:    lipgloss.NewStyle().Foreground(lipgloss.Color("6")),
		domain.KindSuccess: lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
		domain.KindWarning: lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
		domain.KindError:   lipgloss.NewStyle().Foreground(lipgloss.Color("1")),
	}
	unreadStyle = lipgloss.NewStyle().Bold(true)
)

// TableFormatter renders a styled table. Width is the terminal width; zero
// uses a default message column.
type TableFormatter struct {
	Width int
}

// NewTableFormatter returns a table formatter for a terminal of width columns.
func NewTableFormatter(width int) TableFormatter {
	return TableFormatter{Width: width}
}

// Format implements Formatter.
func (f TableFormatter) Format(w io.Writer, s domain.Snapshot) error {
	if len(s) == 0 {
		_, err := fmt.Fprintln(w, "No notifications")
		return err
	}
	messageWidth := f.messageWidth()
	header := fmt.Sprintf("%-*s  %-*s  %-*s  %-*s  %-*s  %s",
		idWidth, "ID",
		timeWidth, "TIME",
		kindWidth, "KIND",
		statusWidth, "STATUS",
		titleWidth, "TITLE",
		"MESSAGE")
	if _, err := fmt.Fprintln(w, headerStyle.Render(header)); err != nil {
		return err
	}
	for _, n := range s {
		if _, err := fmt.Fprintln(w, row(n, messageWidth)); err != nil {
			return err
		}
	}
	return nil
}

func (f TableFormatter) messageWidth() int {
	used := idWidth + timeWidth + kindWidth + statusWidth + titleWidth + spacesBetween
	if f.Width <= 0 || f.Width-used < 10 {
		return defaultMessageWidth
	}
	return f.Width - used
}

func row(n domain.Notification, messageWidth int) string {
	status := "read"
	if !n.Read {
		status = "new"
	}
	kind := kindStyles[n.Kind].Render(fmt.Sprintf("%-*s", kindWidth, n.Kind.String()))
	title := fmt.Sprintf("%-*s", titleWidth, truncate(n.Title, titleWidth))
	if !n.Read {
		title = unreadStyle.Render(title)
	}
	message := strings.ReplaceAll(truncate(n.Message, messageWidth), "\n", " ")

	return fmt.Sprintf("%-*s  %-*s  %s  %-*s  %s  %s",
		idWidth, shortID(n.ID),
		timeWidth, n.Timestamp.Local().Format(time.TimeOnly),
		kind,
		statusWidth, status,
		title,
		message)
}

// shortID returns the first characters of id, enough to address it in a session.
func shortID(id string) string {
	if len(id) <= idWidth {
		return id
	}
	return id[:idWidth]
}
