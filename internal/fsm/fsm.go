package fsm

import "fmt"

type State string

type Event string

const (
	StateSilence State = "silence"
	StateSpeech  State = "speech"
)

const (
	EventVoice Event = "voice"
	EventPause Event = "pause"
	EventCap   Event = "cap"
	EventAbort Event = "abort"
)

func Transition(current State, event Event) (State, error) {
	switch current {
	case StateSilence:
		switch event {
		case EventVoice:
			return StateSpeech, nil
		case EventAbort:
			return StateSilence, nil
		default:
			return current, invalidTransition(current, event)
		}
	case StateSpeech:
		switch event {
		case EventPause, EventCap, EventAbort:
			return StateSilence, nil
		case EventVoice:
			return StateSpeech, nil
		default:
			return current, invalidTransition(current, event)
		}
	default:
		return current, fmt.Errorf("unknown state %q", current)
	}
}

func invalidTransition(state State, event Event) error {
	return fmt.Errorf("invalid transition: %s --(%s)--> ?", state, event)
}
