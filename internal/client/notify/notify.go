// Package notify raises desktop notifications when a recording finishes.
package notify

import "github.com/gen2brain/beeep"

const appTitle = "Talkflo"

type Notifier interface {
	Notify(message string) error
}

// New returns a desktop notifier, or one that does nothing when disabled.
func New(enabled bool) Notifier {
	if !enabled {
		return Nop{}
	}
	return &Desktop{send: func(title, message string) error {
		return beeep.Notify(title, message, "")
	}}
}

type Desktop struct {
	send func(title, message string) error
}

func (d *Desktop) Notify(message string) error {
	return d.send(appTitle, message)
}

type Nop struct{}

func (Nop) Notify(string) error { return nil }
