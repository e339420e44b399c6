package utils

import (
	telnet "github.com/moodclient/teleconsole"
	"github.com/moodclient/teleconsole/telopts"
)

// CharacterModeTracker follows the local ECHO and SUPPRESS-GO-AHEAD options, which
// together put a client into character-at-a-time mode
type CharacterModeTracker struct {
	terminal *telnet.Terminal

	localSuppressGA bool
	localEcho       bool
}

func NewCharacterModeTracker(t *telnet.Terminal) *CharacterModeTracker {
	tracker := &CharacterModeTracker{terminal: t}
	t.RegisterTelOptEventHook(tracker.TelOptEvent)

	if sga := telnet.GetTelOpt[telopts.SUPPRESSGOAHEAD](t); sga != nil {
		tracker.localSuppressGA = sga.GoAheadSuppressed()
	}

	if echo := telnet.GetTelOpt[telopts.ECHO](t); echo != nil {
		tracker.localEcho = echo.Echoing()
	}

	return tracker
}

func (t *CharacterModeTracker) TelOptEvent(terminal *telnet.Terminal, data telnet.TelOptEvent) {
	typed, ok := data.(telnet.TelOptStateChangeEvent)
	if !ok || typed.Side != telnet.TelOptSideLocal {
		return
	}

	switch typed.Option().(type) {
	case *telopts.SUPPRESSGOAHEAD:
		if typed.NewState == telnet.TelOptActive {
			t.localSuppressGA = true
		} else if typed.NewState == telnet.TelOptInactive {
			t.localSuppressGA = false
		}
	case *telopts.ECHO:
		if typed.NewState == telnet.TelOptActive {
			t.localEcho = true
		} else if typed.NewState == telnet.TelOptInactive {
			t.localEcho = false
		}
	}
}

// IsCharacterMode will return true if both the ECHO and SUPPRESS-GO-AHEAD options are
// enabled on our side. The client then sends every key as it is typed and leaves
// echoing to us, which is what a full-screen editor needs. Clients that refuse either
// option stay in line-at-a-time mode and edit the line themselves.
func (t *CharacterModeTracker) IsCharacterMode() bool {
	return t.localEcho && t.localSuppressGA
}

// Echoing reports whether the client expects us to echo its input
func (t *CharacterModeTracker) Echoing() bool {
	return t.localEcho
}
