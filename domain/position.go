package domain

// Placement locates an item inside an ordered container: a board for columns,
// a column for tasks.
type Placement struct {
	Container string
	Position  int
}

// Unbounded marks a Shift range with no upper end.
const Unbounded = -1

// Shift moves every item of Container whose position lies in [From, To] by Delta.
// To == Unbounded extends the range to the end of the container.
type Shift struct {
	Container string
	From      int
	To        int
	Delta     int
}

// Includes reports whether position falls inside the shift range.
func (s Shift) Includes(position int) bool {
	if position < s.From {
		return false
	}
	return s.To == Unbounded || position <= s.To
}

// MovePlan is the set of sibling shifts that keeps positions contiguous plus the
// final placement of the moved item.
type MovePlan struct {
	Shifts []Shift
	Target Placement
}

// NoOp reports whether the plan leaves every item where it is.
func (p MovePlan) NoOp() bool {
	return len(p.Shifts) == 0
}

// PlanAppend places a new item at the end of a container holding count items.
func PlanAppend(container string, count int) MovePlan {
	return MovePlan{Target: Placement{Container: container, Position: count}}
}

// PlanMove computes the shifts needed to move an item from one placement to another.
func PlanMove(from, to Placement) MovePlan {
	plan := MovePlan{Target: to}

	switch {
	case from.Container != to.Container:
		plan.Shifts = []Shift{
			{Container: from.Container, From: from.Position + 1, To: Unbounded, Delta: -1},
			{Container: to.Container, From: to.Position, To: Unbounded, Delta: 1},
		}
	case from.Position < to.Position:
		plan.Shifts = []Shift{
			{Container: from.Container, From: from.Position + 1, To: to.Position, Delta: -1},
		}
	case from.Position > to.Position:
		plan.Shifts = []Shift{
			{Container: from.Container, From: to.Position, To: from.Position - 1, Delta: 1},
		}
	}

	return plan
}

// PlanRemoval closes the gap an item leaves behind when it is deleted.
func PlanRemoval(at Placement) MovePlan {
	return MovePlan{
		Shifts: []Shift{{Container: at.Container, From: at.Position + 1, To: Unbounded, Delta: -1}},
		Target: at,
	}
}

// ValidateTarget checks a requested position against the size of the target
// container. A move within one container may land on [0, count-1]; an item
// entering a container may also take the slot after the last one.
func ValidateTarget(from, to Placement, count int) error {
	upper := count - 1
	if from.Container != to.Container {
		upper = count
	}
	if to.Position < 0 || to.Position > upper {
		return ErrPositionOutOfRange
	}
	return nil
}

// Apply runs the plan against an in-memory view of positions keyed by item id.
// It is the reference semantics the stores implement in SQL.
func (p MovePlan) Apply(items map[string]Placement, moved string) {
	for _, shift := range p.Shifts {
		for id, at := range items {
			if id == moved || at.Container != shift.Container || !shift.Includes(at.Position) {
				continue
			}
			at.Position += shift.Delta
			items[id] = at
		}
	}
	if moved != "" {
		items[moved] = p.Target
	}
}
