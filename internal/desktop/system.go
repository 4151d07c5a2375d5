package desktop

import (
	"context"
	"os"
	"runtime"

	"github.com/gen2brain/beeep"
)

// Prompter asks the user a yes/no question.
type Prompter interface {
	Confirm(ctx context.Context, question string) (bool, error)
}

// PrompterFunc adapts a function to Prompter.
type PrompterFunc func(ctx context.Context, question string) (bool, error)

// Confirm implements Prompter.
func (f PrompterFunc) Confirm(ctx context.Context, question string) (bool, error) {
	return f(ctx, question)
}

const permissionQuestion = "Allow rx-intray to show desktop notifications?"

// SystemPlatform shows notifications through the operating system's
// notification service. The operating system has no permission prompt of
// its own for command line programs, so the decision is asked through the
// Prompter; without one, permission is granted on request.
type SystemPlatform struct {
	prompter Prompter
	notify   func(title, message string) error
	goos     string
	getenv   func(string) string
}

// NewSystemPlatform returns a platform backed by beeep.
func NewSystemPlatform(p Prompter) *SystemPlatform {
	return &SystemPlatform{
		prompter: p,
		notify: func(title, message string) error {
			return beeep.Notify(title, message, "")
		},
		goos:   runtime.GOOS,
		getenv: os.Getenv,
	}
}

// PermissionState implements Platform.
func (p *SystemPlatform) PermissionState() State {
	if !p.supported() {
		return StateUnsupported
	}
	return StateUnrequested
}

func (p *SystemPlatform) supported() bool {
	switch p.goos {
	case "darwin", "windows":
		return true
	case "linux", "freebsd", "netbsd", "openbsd", "dragonfly":
		// Notifications go over the session D-Bus.
		return p.getenv("DBUS_SESSION_BUS_ADDRESS") != "" ||
			p.getenv("DISPLAY") != "" ||
			p.getenv("WAYLAND_DISPLAY") != ""
	default:
		return false
	}
}

// RequestPermission implements Platform.
func (p *SystemPlatform) RequestPermission(ctx context.Context) (bool, error) {
	if !p.supported() {
		return false, ErrUnsupported
	}
	if p.prompter == nil {
		return true, nil
	}
	return p.prompter.Confirm(ctx, permissionQuestion)
}

// Display implements Platform. The call is abandoned when ctx ends.
func (p *SystemPlatform) Display(ctx context.Context, m Message) error {
	errc := make(chan error, 1)
	go func() {
		errc <- p.notify(m.Title, m.Body)
	}()
	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}
