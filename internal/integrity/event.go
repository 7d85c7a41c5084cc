// Package integrity turns raw environment signals into session
// transitions. It never touches session state directly; every decision
// goes through the session.Controller transition methods.
package integrity

import (
	"fmt"
	"strings"
	"time"
)

// Kind names an integrity signal.
type Kind string

const (
	KindFocusLostReturned Kind = "focus-lost-returned"
	KindFullscreenExited  Kind = "fullscreen-exited"
	KindClipboardCopy     Kind = "clipboard-copy"
	KindClipboardCut      Kind = "clipboard-cut"
	KindClipboardPaste    Kind = "clipboard-paste"
	KindInspectionTool    Kind = "inspection-tool-detected"
	KindPointerLeft       Kind = "pointer-left-bounds"
	KindRestrictedKey     Kind = "restricted-key-combo"
	KindContextMenu       Kind = "context-menu"

	// Delivered on the same stream but not violations by themselves.
	KindFullscreenEntered Kind = "fullscreen-entered"
	KindKeyPress          Kind = "key-press"
	KindPointerClick      Kind = "pointer-click"
)

var kinds = []Kind{
	KindFocusLostReturned,
	KindFullscreenExited,
	KindClipboardCopy,
	KindClipboardCut,
	KindClipboardPaste,
	KindInspectionTool,
	KindPointerLeft,
	KindRestrictedKey,
	KindContextMenu,
	KindFullscreenEntered,
	KindKeyPress,
	KindPointerClick,
}

// Kinds lists every known kind.
func Kinds() []Kind { return append([]Kind(nil), kinds...) }

// ParseKind accepts a kind name, ignoring case and using '-' or '_'.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "_", "-"))
	for _, known := range kinds {
		if k == known {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown integrity event kind %q", s)
}

// Event is a single signal. Events are consumed immediately and never
// stored; only the session's counters persist.
type Event struct {
	Kind Kind      `json:"kind"`
	At   time.Time `json:"at"`
}

// NewEvent stamps kind with the current time.
func NewEvent(kind Kind) Event {
	return Event{Kind: kind, At: time.Now()}
}

// Class is the policy bucket a kind falls into.
type Class int

const (
	ClassIgnored Class = iota
	ClassModeExit
	ClassModeRestored
	ClassGeneric
	ClassFocusLoss
	ClassInteraction
)

func (c Class) String() string {
	switch c {
	case ClassModeExit:
		return "mode-exit"
	case ClassModeRestored:
		return "mode-restored"
	case ClassGeneric:
		return "generic"
	case ClassFocusLoss:
		return "focus-loss"
	case ClassInteraction:
		return "interaction"
	}
	return "ignored"
}

// Classify maps a kind to its policy class.
func Classify(k Kind) Class {
	switch k {
	case KindFullscreenExited:
		return ClassModeExit
	case KindFullscreenEntered:
		return ClassModeRestored
	case KindFocusLostReturned:
		return ClassFocusLoss
	case KindClipboardCopy, KindClipboardCut, KindClipboardPaste,
		KindInspectionTool, KindPointerLeft, KindRestrictedKey, KindContextMenu:
		return ClassGeneric
	case KindKeyPress, KindPointerClick:
		return ClassInteraction
	}
	return ClassIgnored
}
