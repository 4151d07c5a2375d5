package format

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/cristianoliveira/rx-intray/internal/domain"
)

// variablePattern matches {{variable-name}} placeholders.
var variablePattern = regexp.MustCompile(`\{\{([a-z0-9-]+)\}\}`)

// Preset is a named status template.
type Preset struct {
	Name        string
	Template    string
	Description string
}

// Presets lists the built-in status templates in display order.
var Presets = []Preset{
	{
		Name:        "summary",
		Template:    "{{total-count}} notifications ({{unread-count}} unread)",
		Description: "Totals, as printed by the status command",
	},
	{
		Name:        "compact",
		Template:    "[{{unread-count}}] {{latest-title}}",
		Description: "Unread count and the newest title",
	},
	{
		Name:        "detailed",
		Template:    "{{unread-count}} unread, {{read-count}} read | Latest: {{latest-title}} {{latest-message}}",
		Description: "Counts with the newest notification",
	},
	{
		Name:        "kinds",
		Template:    "i:{{info-count}} s:{{success-count}} w:{{warning-count}} e:{{error-count}}",
		Description: "Count per kind",
	},
	{
		Name:        "json",
		Template:    `{"unread":{{unread-count}},"total":{{total-count}},"highest":"{{highest-kind}}"}`,
		Description: "Counts as a JSON object",
	},
}

// LookupPreset returns the preset called name.
func LookupPreset(name string) (Preset, bool) {
	for _, p := range Presets {
		if p.Name == name {
			return p, true
		}
	}
	return Preset{}, false
}

// Variables returns the template variables for s.
func Variables(s domain.Snapshot) map[string]string {
	counts := s.CountByKind()
	vars := map[string]string{
		"total-count":    strconv.Itoa(len(s)),
		"unread-count":   strconv.Itoa(s.Unread()),
		"read-count":     strconv.Itoa(len(s) - s.Unread()),
		"has-unread":     strconv.FormatBool(s.Unread() > 0),
		"highest-kind":   string(highestKind(s)),
		"latest-title":   "",
		"latest-message": "",
	}
	for _, k := range domain.Kinds {
		vars[string(k)+"-count"] = strconv.Itoa(counts[k])
	}
	if len(s) > 0 {
		latest := s[len(s)-1]
		vars["latest-title"] = latest.Title
		vars["latest-message"] = latest.Message
	}
	return vars
}

// highestKind returns the most severe kind among unread notifications,
// or "" when everything is read.
func highestKind(s domain.Snapshot) domain.Kind {
	rank := map[domain.Kind]int{domain.KindInfo: 1, domain.KindSuccess: 2, domain.KindWarning: 3, domain.KindError: 4}
	var best domain.Kind
	for _, n := range s {
		if !n.Read && rank[n.Kind] > rank[best] {
			best = n.Kind
		}
	}
	return best
}

// TemplateVariables lists every variable a template may use, sorted.
func TemplateVariables() []string {
	names := make([]string, 0, 12)
	for name := range Variables(nil) {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Render substitutes {{variable}} placeholders in template with values for
// s. Unknown variables are an error.
func Render(template string, s domain.Snapshot) (string, error) {
	vars := Variables(s)
	var unknown []string
	out := variablePattern.ReplaceAllStringFunc(template, func(match string) string {
		name := variablePattern.FindStringSubmatch(match)[1]
		value, ok := vars[name]
		if !ok {
			unknown = append(unknown, name)
			return match
		}
		return value
	})
	if len(unknown) > 0 {
		return "", fmt.Errorf("unknown template variable: %s", strings.Join(unknown, ", "))
	}
	return out, nil
}

// RenderStatus renders a preset by name, or tmpl itself as a template when
// no preset has that name.
func RenderStatus(tmpl string, s domain.Snapshot) (string, error) {
	if tmpl == "" {
		tmpl = Presets[0].Name
	}
	if p, ok := LookupPreset(tmpl); ok {
		tmpl = p.Template
	}
	return Render(tmpl, s)
}
