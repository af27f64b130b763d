// Package notify delivers user-facing messages about sync outcomes.
package notify

import (
	"fmt"
	"os/exec"
	"runtime"

	"github.com/rs/zerolog/log"
)

// Notifier delivers one message to the user.
type Notifier interface {
	Notify(title, message string)
}

// LogNotifier reports through the process log.
type LogNotifier struct{}

func (LogNotifier) Notify(title, message string) {
	log.Info().Str("title", title).Msg(message)
}

// DesktopNotifier posts a desktop notification via osascript on macOS and is
// a no-op elsewhere. Delivery is best effort; errors are ignored.
type DesktopNotifier struct{}

func (DesktopNotifier) Notify(title, message string) {
	if runtime.GOOS != "darwin" {
		return
	}
	script := fmt.Sprintf("display notification %q with title %q", message, title)
	_ = exec.Command("osascript", "-e", script).Run()
}

// Sink fans messages out to its notifiers, applying the configured gating
// for success and error outcomes. A nil Sink discards everything.
type Sink struct {
	notifiers []Notifier
	onSuccess bool
	onError   bool
}

// NewSink returns a Sink honoring the notification settings. When enabled is
// false all messages are dropped regardless of the per-outcome flags.
func NewSink(enabled, onSuccess, onError bool, notifiers ...Notifier) *Sink {
	if !enabled {
		return nil
	}
	return &Sink{notifiers: notifiers, onSuccess: onSuccess, onError: onError}
}

func (s *Sink) Success(message string) {
	if s == nil || !s.onSuccess {
		return
	}
	s.send("Cursor Sync", message)
}

func (s *Sink) Failure(message string) {
	if s == nil || !s.onError {
		return
	}
	s.send("Cursor Sync Error", message)
}

func (s *Sink) send(title, message string) {
	for _, n := range s.notifiers {
		n.Notify(title, message)
	}
}
