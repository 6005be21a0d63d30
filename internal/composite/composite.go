// Package composite resolves one state for views that show a primary
// collection together with a collection derived from it.
package composite

import (
	"github.com/bunkbed-tech/fushigi-sub000/internal/coordinator"
	"github.com/bunkbed-tech/fushigi-sub000/internal/domain"
	"github.com/bunkbed-tech/fushigi-sub000/internal/health"
)

// Resolve combines the primary and dependent states, highest precedence first:
//
//	1. primary critical
//	2. primary empty
//	3. primary loading
//	4. dependent critical
//	5. dependent loading
//	6. dependent empty and healthy -> dependent empty
//	7. primary degraded
//	8. dependent degraded
//	9. normal
//
// A primary failure always wins because nothing derived from it can be acted
// on without it.
func Resolve(primary, dependent health.View) health.SystemState {
	p := primary.State()
	d := dependent.State()

	switch {
	case p.Kind == health.KindCritical:
		return p
	case p.Kind == health.KindEmptyData:
		return p
	case p.Kind == health.KindLoading:
		return p
	case d.Kind == health.KindCritical:
		return d
	case d.Kind == health.KindLoading:
		return d
	case d.Kind == health.KindEmptyData:
		return health.StateDependentEmpty
	case p.Kind == health.KindDegraded:
		return p
	case d.Kind == health.KindDegraded:
		return d
	default:
		return health.StateNormal
	}
}

// Snapshot is what a joint view renders.
type Snapshot[P, D any] struct {
	Primary   []P
	Dependent []D
	State     health.SystemState
}

// Resolver owns a primary and a dependent coordinator and reads both.
// It never mutates either one.
type Resolver[P, D domain.Record] struct {
	primary   *coordinator.Coordinator[P]
	dependent *coordinator.Coordinator[D]
}

// NewResolver creates a Resolver over two coordinators.
func NewResolver[P, D domain.Record](primary *coordinator.Coordinator[P], dependent *coordinator.Coordinator[D]) *Resolver[P, D] {
	return &Resolver[P, D]{primary: primary, dependent: dependent}
}

// State resolves the combined state.
func (r *Resolver[P, D]) State() health.SystemState {
	return Resolve(r.primary, r.dependent)
}

// Snapshot returns both item sets with the combined state.
func (r *Resolver[P, D]) Snapshot() Snapshot[P, D] {
	return Snapshot[P, D]{
		Primary:   r.primary.Items(),
		Dependent: r.dependent.Items(),
		State:     r.State(),
	}
}
