// Package health derives what the UI should show from two independent
// observations about a collection: whether data is available, and whether
// the last local and remote operations succeeded.
package health

import "fmt"

// Availability describes whether a collection has data to show.
type Availability int

// Availability values.
const (
	Loading Availability = iota
	Available
	Empty
)

func (a Availability) String() string {
	switch a {
	case Loading:
		return "loading"
	case Available:
		return "available"
	case Empty:
		return "empty"
	default:
		return fmt.Sprintf("availability(%d)", int(a))
	}
}

// Health records the outcome of the most recent local and remote operations.
type Health int

// Health values.
const (
	Healthy Health = iota
	LocalError
	RemoteError
)

func (h Health) String() string {
	switch h {
	case Healthy:
		return "healthy"
	case LocalError:
		return "local_error"
	case RemoteError:
		return "remote_error"
	default:
		return fmt.Sprintf("health(%d)", int(h))
	}
}

// Description is the human-readable explanation shown alongside a degraded or critical state.
func (h Health) Description() string {
	switch h {
	case LocalError:
		return "Local storage unavailable"
	case RemoteError:
		return "Unable to sync with the server"
	default:
		return ""
	}
}

// Kind is the category of a resolved SystemState.
type Kind int

// Kind values.
const (
	KindLoading Kind = iota
	KindEmptyData
	KindNormal
	KindDegraded
	KindCritical
	// KindDependentEmpty means the primary collection has data but a
	// dependent collection has none; the user can fix it by opting in.
	KindDependentEmpty
)

func (k Kind) String() string {
	switch k {
	case KindLoading:
		return "loading"
	case KindEmptyData:
		return "empty"
	case KindNormal:
		return "normal"
	case KindDegraded:
		return "degraded"
	case KindCritical:
		return "critical"
	case KindDependentEmpty:
		return "dependent_empty"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// SystemState is the single value the UI renders.
type SystemState struct {
	Kind        Kind
	Description string
}

// States without a description.
var (
	StateLoading        = SystemState{Kind: KindLoading}
	StateEmpty          = SystemState{Kind: KindEmptyData}
	StateNormal         = SystemState{Kind: KindNormal}
	StateDependentEmpty = SystemState{Kind: KindDependentEmpty}
)

// Critical returns a critical state with a description.
func Critical(desc string) SystemState {
	return SystemState{Kind: KindCritical, Description: desc}
}

// Degraded returns a degraded state with a description.
func Degraded(desc string) SystemState {
	return SystemState{Kind: KindDegraded, Description: desc}
}

func (s SystemState) String() string {
	if s.Description == "" {
		return s.Kind.String()
	}
	return s.Kind.String() + ": " + s.Description
}

// Resolve maps the two axes to a SystemState. It is total and pure.
//
//	loading           -> loading
//	empty   + healthy -> emptyData
//	empty   + error   -> critical(health)
//	available + healthy -> normal
//	available + error   -> degraded(health)
func Resolve(a Availability, h Health) SystemState {
	switch a {
	case Loading:
		return StateLoading
	case Empty:
		if h == Healthy {
			return StateEmpty
		}
		return Critical(h.Description())
	default:
		if h == Healthy {
			return StateNormal
		}
		return Degraded(h.Description())
	}
}
