// Package tui adapts terminal input to the integrity model. A terminal
// has no full screen or wake lock of its own, so "exclusive mode" means
// a window at least the layout minimum, and focus reporting stands in
// for page visibility.
package tui

import (
	"unicode"

	tea "charm.land/bubbletea/v2"

	"github.com/ronitrai27/clario-career-platform-sub000/internal/integrity"
	"github.com/ronitrai27/clario-career-platform-sub000/internal/ui/layout"
)

// Signals turns terminal messages into integrity event kinds. It keeps
// the little state needed to detect transitions: whether focus was lost
// and whether the window was last seen below the minimum size.
//
// Signals is not safe for concurrent use; it belongs to one Update loop.
type Signals struct {
	env     *Environment
	blurred bool
	small   bool
	sized   bool
}

// NewSignals creates a translator that keeps env's size in sync.
func NewSignals(env *Environment) *Signals {
	return &Signals{env: env}
}

// Translate returns the kinds msg represents, in order. alert reports
// whether the session is in Alert, where plain keys and clicks count.
// The re-entry key is the caller's business and must be filtered out
// before calling Translate.
func (s *Signals) Translate(msg tea.Msg, alert bool) []integrity.Kind {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return s.resize(msg.Width, msg.Height)

	case tea.BlurMsg:
		s.blurred = true

	case tea.FocusMsg:
		if s.blurred {
			s.blurred = false
			return []integrity.Kind{integrity.KindFocusLostReturned}
		}

	case tea.PasteMsg:
		return []integrity.Kind{integrity.KindClipboardPaste}

	case tea.MouseClickMsg:
		if msg.Button == tea.MouseRight {
			return []integrity.Kind{integrity.KindContextMenu}
		}
		if alert {
			return []integrity.Kind{integrity.KindPointerClick}
		}

	case tea.KeyPressMsg:
		if k, ok := KeyKind(msg); ok {
			return []integrity.Kind{k}
		}
		if alert {
			return []integrity.Kind{integrity.KindKeyPress}
		}
	}
	return nil
}

func (s *Signals) resize(w, h int) []integrity.Kind {
	small := layout.IsTooSmall(w, h)
	if s.env != nil {
		s.env.SetFits(!small)
	}
	first := !s.sized
	s.sized = true
	if small == s.small && !first {
		return nil
	}
	was := s.small
	s.small = small
	switch {
	case small:
		return []integrity.Kind{integrity.KindFullscreenExited}
	case was:
		return []integrity.Kind{integrity.KindFullscreenEntered}
	}
	return nil
}

// KeyKind classifies the restricted key chords: clipboard shortcuts and
// the developer-tools combinations.
func KeyKind(msg tea.KeyPressMsg) (integrity.Kind, bool) {
	if msg.Code == tea.KeyF12 {
		return integrity.KindRestrictedKey, true
	}
	if msg.Mod&tea.ModCtrl == 0 {
		return "", false
	}
	code := unicode.ToLower(msg.Code)
	if msg.Mod&tea.ModShift != 0 {
		switch code {
		case 'i', 'j', 'c':
			return integrity.KindRestrictedKey, true
		}
		return "", false
	}
	switch code {
	case 'c':
		return integrity.KindClipboardCopy, true
	case 'x':
		return integrity.KindClipboardCut, true
	case 'v':
		return integrity.KindClipboardPaste, true
	case 'u':
		// view-source
		return integrity.KindRestrictedKey, true
	}
	return "", false
}
