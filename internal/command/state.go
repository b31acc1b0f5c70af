package command

// State is a stage of the per-message pipeline.
type State int

const (
	StateIdle State = iota
	StateParsing
	StateResolving
	StateMutating
	StateResponding
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateParsing:
		return "parsing"
	case StateResolving:
		return "resolving"
	case StateMutating:
		return "mutating"
	case StateResponding:
		return "responding"
	default:
		return "unknown"
	}
}

// allowed lists the legal successors of each state. Resolving and Mutating
// are optional.
var allowed = map[State][]State{
	StateIdle:       {StateParsing},
	StateParsing:    {StateResolving, StateMutating, StateResponding},
	StateResolving:  {StateMutating, StateResponding},
	StateMutating:   {StateMutating, StateResponding},
	StateResponding: {StateIdle},
}

func canTransition(from, to State) bool {
	for _, s := range allowed[from] {
		if s == to {
			return true
		}
	}
	return false
}
