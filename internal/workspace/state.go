package workspace

// State is the lifecycle of workspace indexing.
type State uint8

const (
	StateIdle State = iota
	StateScanning
	StateIndexing
	StateReady
	// StateDegraded means the last indexing run was cancelled or some files
	// failed to load. The index is consistent but incomplete.
	StateDegraded
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateScanning:
		return "scanning"
	case StateIndexing:
		return "indexing"
	case StateReady:
		return "ready"
	case StateDegraded:
		return "degraded"
	default:
		return "unknown"
	}
}
