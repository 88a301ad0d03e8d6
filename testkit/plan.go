package testkit

import (
	"slices"
	"time"

	"github.com/google/uuid"
)

// Plan is one exportable scenario: metadata plus the ordered root-level steps.
type Plan struct {
	ID        uuid.UUID
	Name      string
	CreatedAt time.Time
	Steps     []Step
}

// NewPlan returns an empty plan created now.
func NewPlan(name string) Plan {
	return Plan{
		ID:   uuid.New(),
		Name: name,
		// UTC drops the monotonic reading so the value survives a JSON round trip.
		CreatedAt: time.Now().UTC(),
	}
}

// AddStep returns a copy of p with step appended to the root sequence.
func (p Plan) AddStep(step Step) Plan {
	steps := make([]Step, len(p.Steps), len(p.Steps)+1)
	copy(steps, p.Steps)
	p.Steps = append(steps, step)
	return p
}

// UpdateStep replaces the first step with the given id, searching root steps
// in order and descending into each root's subtree before moving on to the
// next one. If ids are duplicated only the first occurrence changes. The
// second result reports whether anything was replaced.
func (p Plan) UpdateStep(step Step, id uuid.UUID) (Plan, bool) {
	steps, ok := updateInSlice(p.Steps, step, id)
	if !ok {
		return p, false
	}
	p.Steps = steps
	return p, true
}

// DeleteStep removes the first root-level step with the given id. Nested
// steps are not searched. The second result reports whether a step was removed.
func (p Plan) DeleteStep(id uuid.UUID) (Plan, bool) {
	i := slices.IndexFunc(p.Steps, func(s Step) bool { return s.StepID() == id })
	if i < 0 {
		return p, false
	}
	p.Steps = slices.Delete(slices.Clone(p.Steps), i, i+1)
	return p, true
}

// Equal reports whether both plans have the same metadata and equal steps.
func (p Plan) Equal(other Plan) bool {
	return p.ID == other.ID && p.Name == other.Name && p.CreatedAt.Equal(other.CreatedAt) &&
		StepSlicesEqual(p.Steps, other.Steps)
}

// Len returns the number of steps in the whole tree.
func (p Plan) Len() int {
	n := 0
	Walk(p.Steps, func(Step, int) bool {
		n++
		return true
	})
	return n
}
