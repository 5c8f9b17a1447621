package tracker

import (
	"fmt"

	"price-tracker/internal/domain"
)

type Phase int

const (
	PhaseUninitialized Phase = iota
	PhaseLoading
	PhaseReady
	PhaseError
)

func (p Phase) String() string {
	switch p {
	case PhaseUninitialized:
		return "uninitialized"
	case PhaseLoading:
		return "loading"
	case PhaseReady:
		return "ready"
	case PhaseError:
		return "error"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// State is a snapshot of the coordinator's state machine.
type State struct {
	Phase    Phase
	Interval domain.Interval
	// Message is set in PhaseError.
	Message string
}

func (s State) String() string {
	switch s.Phase {
	case PhaseUninitialized:
		return s.Phase.String()
	case PhaseError:
		return fmt.Sprintf("%s(%s, %q)", s.Phase, s.Interval, s.Message)
	default:
		return fmt.Sprintf("%s(%s)", s.Phase, s.Interval)
	}
}

// TrackerState is the externally visible view: active interval plus last error.
type TrackerState struct {
	ActiveInterval domain.Interval
	LastError      string
	State          State
}
