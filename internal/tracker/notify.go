package tracker

import (
	"fmt"
	"io"
)

// Notifier tells the user something outside the normal command output.
type Notifier interface {
	Notify(title, body string) error
}

// Chime plays the task-finished sound.
type Chime interface {
	Play() error
}

// BellNotifier writes the message to W preceded by a terminal bell.
type BellNotifier struct {
	W io.Writer
}

// Notify implements Notifier.
func (n BellNotifier) Notify(title, body string) error {
	_, err := fmt.Fprintf(n.W, "\a🔔 %s: %s\n", title, body)
	return err
}

// BellChime rings the terminal bell on W.
type BellChime struct {
	W io.Writer
}

// Play implements Chime.
func (c BellChime) Play() error {
	_, err := io.WriteString(c.W, "\a")
	return err
}

type nopNotifier struct{}

func (nopNotifier) Notify(string, string) error { return nil }

type nopChime struct{}

func (nopChime) Play() error { return nil }
