package session

// Phase is a session lifecycle state.
type Phase string

const (
	PhaseIdle          Phase = "idle"
	PhaseLoading       Phase = "loading"
	PhaseAwaitingStart Phase = "awaiting-start"
	PhaseActive        Phase = "active"
	PhaseAlert         Phase = "alert"
	PhaseCompleted     Phase = "completed"
	PhaseTerminated    Phase = "terminated"
)

// Terminal reports whether p accepts no further input.
func (p Phase) Terminal() bool {
	return p == PhaseCompleted || p == PhaseTerminated
}

// Running reports whether the session clock is counting.
func (p Phase) Running() bool {
	return p == PhaseActive || p == PhaseAlert
}

// Reason explains how a session reached a terminal phase.
type Reason string

const (
	ReasonNone             Reason = ""
	ReasonCompleted        Reason = "completed"
	ReasonModeExit         Reason = "mode-exit"
	ReasonTabSwitch        Reason = "tab-switch"
	ReasonViolationCap     Reason = "violation-cap"
	ReasonAlertInteraction Reason = "disqualifying interaction during alert"
	ReasonGraceExpired     Reason = "grace-expired"
	ReasonGenerationFailed Reason = "generation-failed"
	ReasonAbandoned        Reason = "abandoned"
)

// Describe returns a sentence suitable for showing the user.
func (r Reason) Describe() string {
	switch r {
	case ReasonCompleted:
		return "You answered every question."
	case ReasonModeExit:
		return "The session left full screen a second time."
	case ReasonTabSwitch:
		return "You switched away from the assessment window."
	case ReasonViolationCap:
		return "Too many integrity warnings (copy, paste, inspection tools, or restricted keys)."
	case ReasonAlertInteraction:
		return "Input was detected while the full screen warning was showing."
	case ReasonGraceExpired:
		return "Full screen was not restored within the grace period."
	case ReasonGenerationFailed:
		return "Questions could not be prepared."
	case ReasonAbandoned:
		return "The session was abandoned."
	}
	return ""
}
