package pipeline

type State string

const (
	StateIdle              State = "idle"
	StateSnapshotting      State = "snapshotting"
	StateResolvingStrategy State = "resolving_strategy"
	StateRunning           State = "running"
	StateClassifying       State = "classifying"
	StateOpening           State = "opening"
	StateDone              State = "done"
	StateFailed            State = "failed"
)

// Terminal reports whether no further transition can follow s.
func (s State) Terminal() bool {
	return s == StateDone || s == StateFailed
}

// Observer is called on every transition, including the terminal one.
type Observer func(State)
