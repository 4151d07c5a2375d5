// Package manager is the notification facade for one session. Producers call
// the Show methods, the interface subscribes to snapshots, and the manager
// keeps the registry, the observers, the user's settings and the desktop
// mirror consistent with each other.
package manager

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/cristianoliveira/rx-intray/internal/bus"
	"github.com/cristianoliveira/rx-intray/internal/dedup"
	"github.com/cristianoliveira/rx-intray/internal/desktop"
	"github.com/cristianoliveira/rx-intray/internal/domain"
	"github.com/cristianoliveira/rx-intray/internal/hooks"
	"github.com/cristianoliveira/rx-intray/internal/logging"
	"github.com/cristianoliveira/rx-intray/internal/registry"
	"github.com/cristianoliveira/rx-intray/internal/settings"
)

// Options configure a Manager. The zero value gives an in-memory session
// without a desktop surface or hooks.
type Options struct {
	Persister settings.Persister
	Platform  desktop.Platform
	Hooks     *hooks.Runner
	Logger    logging.Logger

	// Registry options, such as capacity or a fixed clock.
	Registry []registry.Option

	DesktopDedup          dedup.Options
	DesktopRatePerMinute  int
	DesktopDisplayTimeout time.Duration

	// Now is used for quiet hours. Defaults to time.Now.
	Now func() time.Time
}

// Manager is the notification engine facade. It is safe for concurrent use.
type Manager struct {
	registry *registry.Registry
	bus      *bus.Bus
	settings *settings.Store
	closer   io.Closer
	bridge   *desktop.Bridge
	hooks    *hooks.Runner
	log      logging.Logger
	now      func() time.Time

	closeOnce sync.Once
}

// New builds a manager and loads settings through opts.Persister. A failed
// load is logged and defaults are used.
func New(ctx context.Context, opts Options) *Manager {
	log := opts.Logger
	if log == nil {
		log = logging.Nop()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	m := &Manager{
		registry: registry.New(opts.Registry...),
		bus:      bus.New(log),
		settings: settings.NewStore(ctx, opts.Persister, log),
		hooks:    opts.Hooks,
		log:      log.With("component", "manager"),
		now:      now,
	}
	if c, ok := opts.Persister.(io.Closer); ok {
		m.closer = c
	}
	m.bridge = desktop.NewBridge(desktop.Options{
		Platform:       opts.Platform,
		Logger:         log,
		Persisted:      desktop.ParseState(m.settings.Get().DesktopPermission),
		OnStateChange:  m.persistDesktopState,
		Dedup:          opts.DesktopDedup,
		RatePerMinute:  opts.DesktopRatePerMinute,
		DisplayTimeout: opts.DesktopDisplayTimeout,
	})
	m.log.Debug("notification manager ready", "desktop", m.bridge.State().String())
	return m
}

// persistDesktopState records settled permission decisions.
func (m *Manager) persistDesktopState(s desktop.State) {
	switch s {
	case desktop.StateGranted, desktop.StateDenied, desktop.StateUnrequested:
	default:
		return
	}
	if m.settings.Get().DesktopPermission == s.String() {
		return
	}
	m.settings.Update(settings.DesktopPermission(s.String()))
}

// Show records a notification and returns its ID. When notifications are
// disabled nothing is recorded, published or mirrored, but a well-formed ID
// is still returned. Show never waits for the desktop or hooks.
func (m *Manager) Show(in domain.Input) string {
	in = in.Normalize()
	current := m.settings.Get()
	if !current.Enabled {
		id := m.registry.NewID()
		m.log.Debug("notifications disabled, dropping", "kind", in.Kind.String(), "title", in.Title)
		return id
	}

	id := m.registry.Insert(domain.Notification{
		Title:   in.Title,
		Message: in.Message,
		Kind:    in.Kind,
		Data:    in.Data,
	})
	n, _ := m.registry.Get(id)
	m.bus.PublishFrom(m.registry)

	if n.ID != "" {
		m.mirror(n, current)
		m.hooks.Run(hooks.PostShow, hooks.NotificationEnv(n))
	}
	return id
}

func (m *Manager) mirror(n domain.Notification, s settings.Settings) {
	if !s.DesktopEnabled {
		return
	}
	if s.QuietHours.Active(m.now()) {
		m.log.Debug("quiet hours, skipping desktop notification", "id", n.ID)
		return
	}
	m.bridge.Mirror(n)
}

// ShowMessage shows an info notification.
func (m *Manager) ShowMessage(title, message string, data domain.Data) string {
	return m.Show(domain.Input{Title: title, Message: message, Kind: domain.KindInfo, Data: data})
}

// ShowSuccess shows a success notification.
func (m *Manager) ShowSuccess(title, message string, data domain.Data) string {
	return m.Show(domain.Input{Title: title, Message: message, Kind: domain.KindSuccess, Data: data})
}

// ShowError shows an error notification.
func (m *Manager) ShowError(title, message string, data domain.Data) string {
	return m.Show(domain.Input{Title: title, Message: message, Kind: domain.KindError, Data: data})
}

// ShowWarning shows a warning notification.
func (m *Manager) ShowWarning(title, message string, data domain.Data) string {
	return m.Show(domain.Input{Title: title, Message: message, Kind: domain.KindWarning, Data: data})
}

// Dismiss removes the notification with id. Unknown IDs are ignored.
func (m *Manager) Dismiss(id string) bool {
	n, _ := m.registry.Get(id)
	if !m.registry.Dismiss(id) {
		return false
	}
	m.bus.PublishFrom(m.registry)
	m.hooks.Run(hooks.PostDismiss, hooks.NotificationEnv(n))
	return true
}

// MarkAsRead flags the notification with id as read.
func (m *Manager) MarkAsRead(id string) bool {
	if !m.registry.MarkAsRead(id) {
		return false
	}
	m.bus.PublishFrom(m.registry)
	return true
}

// MarkAllAsRead flags every notification as read and returns how many changed.
func (m *Manager) MarkAllAsRead() int {
	changed := m.registry.MarkAllAsRead()
	if changed > 0 {
		m.bus.PublishFrom(m.registry)
	}
	return changed
}

// ClearAll removes every notification and returns how many were removed.
func (m *Manager) ClearAll() int {
	removed := m.registry.ClearAll()
	if removed > 0 {
		m.bus.PublishFrom(m.registry)
		m.hooks.Run(hooks.PostClear, hooks.ClearEnv(removed))
	}
	return removed
}

// Get returns the notification with id.
func (m *Manager) Get(id string) (domain.Notification, bool) {
	return m.registry.Get(id)
}

// Snapshot returns the current notifications, oldest first.
func (m *Manager) Snapshot() domain.Snapshot {
	return m.registry.Snapshot()
}

// UnreadCount returns how many notifications are unread.
func (m *Manager) UnreadCount() int {
	return m.registry.UnreadCount()
}

// Subscribe registers o and immediately delivers the current snapshot to it.
// The returned function unsubscribes.
func (m *Manager) Subscribe(o bus.Observer) func() {
	id, unsubscribe := m.bus.Subscribe(o)
	m.bus.DeliverFrom(id, m.registry)
	return unsubscribe
}

// SubscribeFunc is Subscribe for a plain function.
func (m *Manager) SubscribeFunc(fn func(domain.Snapshot)) func() {
	return m.Subscribe(bus.ObserverFunc(func(s domain.Snapshot) error {
		fn(s)
		return nil
	}))
}

// Settings returns the current settings.
func (m *Manager) Settings() settings.Settings {
	return m.settings.Get()
}

// UpdateSettings merges p into the settings and returns the result.
// Saving happens in the background.
func (m *Manager) UpdateSettings(p settings.Patch) settings.Settings {
	return m.settings.Update(p)
}

// EnableDesktopNotifications asks for desktop permission if needed.
func (m *Manager) EnableDesktopNotifications(ctx context.Context) *desktop.Request {
	return m.bridge.Enable(ctx)
}

// DesktopState returns the desktop permission state.
func (m *Manager) DesktopState() desktop.State {
	return m.bridge.State()
}

// ResetDesktopPermission lets the user be asked again after a denial.
func (m *Manager) ResetDesktopPermission() bool {
	return m.bridge.Reset()
}

// Close waits for desktop displays, hooks and settings saves to finish, then
// releases the settings backend.
func (m *Manager) Close() error {
	var err error
	m.closeOnce.Do(func() {
		m.bridge.Wait()
		m.hooks.Wait()
		m.settings.Flush()
		if m.closer != nil {
			err = m.closer.Close()
		}
	})
	return err
}
