// Package ui holds frontend state that is independent of any rendering:
// the error popup and the navigation menu.
package ui

import "time"

// Transition durations of the popup.
const (
	PopupShowDuration = 500 * time.Millisecond
	PopupHideDuration = 800 * time.Millisecond
)

// PopupPhase is where the popup is in its show/hide cycle.
type PopupPhase int

const (
	PopupHidden PopupPhase = iota
	PopupShowing
	PopupShown
	PopupHiding
)

// Popup is a single message box: closed until Open, open until Close.
// Open and Close start the show and hide transitions; Phase tells a
// frontend which one is running.
type Popup struct {
	open     bool
	message  string
	openedAt time.Time
	closedAt time.Time
}

// Open shows msg, replacing any message already shown.
func (p *Popup) Open(msg string) {
	p.open = true
	p.message = msg
	p.openedAt = time.Now()
	p.closedAt = time.Time{}
}

// Close hides the popup. Closing a closed popup does nothing.
func (p *Popup) Close() {
	if !p.open {
		return
	}
	p.open = false
	p.closedAt = time.Now()
}

func (p *Popup) IsOpen() bool { return p.open }

// Message is the text of the popup while it is open.
func (p *Popup) Message() string {
	if !p.open {
		return ""
	}
	return p.message
}

// Text is the last message opened, kept through the hide transition.
func (p *Popup) Text() string { return p.message }

// Shown reports whether the show transition has finished at now.
func (p *Popup) Shown(now time.Time) bool {
	return p.open && now.Sub(p.openedAt) >= PopupShowDuration
}

// Phase reports the transition state at now.
func (p *Popup) Phase(now time.Time) PopupPhase {
	switch {
	case p.open && now.Sub(p.openedAt) < PopupShowDuration:
		return PopupShowing
	case p.open:
		return PopupShown
	case !p.closedAt.IsZero() && now.Sub(p.closedAt) < PopupHideDuration:
		return PopupHiding
	}
	return PopupHidden
}
