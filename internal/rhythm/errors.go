package rhythm

import "fmt"

// ErrorKind is the error taxonomy from the engine's error handling design.
// Kinds, not types: every engine error carries one of these so the host can
// decide what is fatal, what is recoverable, and what is machine-readable.
type ErrorKind string

const (
	// ConfigInvalid: stage fields out of range or inconsistent. Surfaced on
	// Start; the run does not begin.
	ConfigInvalid ErrorKind = "config_invalid"
	// ChordUnknown: a progression references an id not in the chord library.
	// Surfaced on Start; the run does not begin.
	ChordUnknown ErrorKind = "chord_unknown"
	// ClockNotReady: Tick called before Transport has confirmed a start
	// instant. Tick is a no-op; the core waits.
	ClockNotReady ErrorKind = "clock_not_ready"
	// InputOverflow: InputBus queue exceeded capacity. Recoverable.
	InputOverflow ErrorKind = "input_overflow"
	// TransposeOutOfRange: a computed transpose fell outside [-12..+12]
	// before normalisation. Recoverable; normalised modulo 12.
	TransposeOutOfRange ErrorKind = "transpose_out_of_range"
	// TransportLost: Transport reported a non-monotonic jump larger than
	// loopDuration+200ms outside of a legitimate loop boundary. Fatal to
	// the current run unless the host calls Resume in time.
	TransportLost ErrorKind = "transport_lost"
)

// EngineError is the concrete error value for every failure the engine can
// report. Fatal kinds (ConfigInvalid, ChordUnknown) are returned from Start
// and prevent the run from beginning. Recoverable kinds are emitted only as
// events (see events.go) and never returned from Tick.
type EngineError struct {
	Kind    ErrorKind
	Message string
}

func (e *EngineError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func newError(kind ErrorKind, format string, args ...any) *EngineError {
	return &EngineError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}
