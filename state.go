package framepump

// State is the lifecycle state of a [Coordinator].
type State int32

const (
	// StateUninitialized waits for the first paint event.
	StateUninitialized State = iota
	// StateInitializing is entered once by the first paint event.
	StateInitializing
	// StateRunning is the steady state: the pump drives updates.
	StateRunning
	// StateFailed is terminal: bootstrap could not complete. See Coordinator.Err.
	StateFailed
	// StateClosed is terminal: Close was called.
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateInitializing:
		return "initializing"
	case StateRunning:
		return "running"
	case StateFailed:
		return "failed"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Mode is the scheduling regime chosen at initialization.
type Mode int32

const (
	// ModeUnset means initialization has not run yet.
	ModeUnset Mode = iota
	// ModeSingleThreaded runs update and render on the affinity context
	// without locking.
	ModeSingleThreaded
	// ModeCrossThread runs updates on the affinity context and paints on
	// another, serialized by the render lock.
	ModeCrossThread
)

func (m Mode) String() string {
	switch m {
	case ModeSingleThreaded:
		return "single-threaded"
	case ModeCrossThread:
		return "cross-thread"
	default:
		return "unset"
	}
}

// Frame is the payload of the Update event.
type Frame struct {
	// Seq counts update cycles run by the coordinator, starting at 1.
	Seq uint64
	// Mode is the scheduling regime in effect.
	Mode Mode
}
