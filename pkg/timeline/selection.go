package timeline

import (
	"github.com/vanderheijden86/buildline/pkg/debug"
	"github.com/vanderheijden86/buildline/pkg/metrics"
)

// MaxDependantDepth stops the dependant walk if the visited set somehow does
// not.
const MaxDependantDepth = 256

// RoleSet is the set of roles a row plays in the current selection.
type RoleSet uint8

const (
	RoleSelected RoleSet = 1 << iota
	RoleDependency
	RoleDirectDependant
	RoleIndirectDependant
)

// Has reports whether every role in o is set.
func (s RoleSet) Has(o RoleSet) bool { return s&o == o && o != 0 }

// RowState is the dominant visual state of a row.
type RowState int

const (
	StateNormal RowState = iota
	StateSelected
	StateDependency
	StateDirectDependant
	StateIndirectDependant
	StateHidden
)

// String returns the state's class name as used by the HTML export.
func (s RowState) String() string {
	switch s {
	case StateSelected:
		return "selected"
	case StateDependency:
		return "dependency"
	case StateDirectDependant:
		return "directDependant"
	case StateIndirectDependant:
		return "indirectDependant"
	case StateHidden:
		return "hidden"
	default:
		return "normal"
	}
}

// stateOf applies the precedence
// Selected > Dependency > DirectDependant > IndirectDependant.
func stateOf(roles RoleSet, hidden bool) RowState {
	switch {
	case roles.Has(RoleSelected):
		return StateSelected
	case roles.Has(RoleDependency):
		return StateDependency
	case roles.Has(RoleDirectDependant):
		return StateDirectDependant
	case roles.Has(RoleIndirectDependant):
		return StateIndirectDependant
	case hidden:
		return StateHidden
	default:
		return StateNormal
	}
}

// SelectionPlan is the outcome of selecting one row, computed without
// touching any row state.
type SelectionPlan struct {
	Selected string             // raw name of the selected row
	Roles    map[string]RoleSet // raw name -> roles; rows not listed are hidden
}

// RoleOf returns the roles for a raw name.
func (p SelectionPlan) RoleOf(name string) RoleSet { return p.Roles[name] }

// Visible reports whether the row stays visible under the plan.
func (p SelectionPlan) Visible(name string) bool { return p.Roles[name] != 0 }

// State returns the row state the plan assigns to name.
func (p SelectionPlan) State(name string) RowState {
	roles := p.Roles[name]
	return stateOf(roles, roles == 0)
}

// Plan computes the selection of name. References are marked one level deep;
// dependants are walked breadth first with a visited set, so cycles end and
// each dependant is classified by the shortest distance at which it is found.
func (t *Timeline) Plan(name string) (SelectionPlan, bool) {
	row, ok := t.Lookup(name)
	if !ok {
		return SelectionPlan{}, false
	}

	plan := SelectionPlan{
		Selected: row.Name(),
		Roles:    map[string]RoleSet{row.Name(): RoleSelected},
	}

	for _, ref := range row.Entry.References {
		if dep, ok := t.Lookup(ref); ok {
			plan.Roles[dep.Name()] |= RoleDependency
		}
	}

	type step struct {
		row   *Row
		depth int
	}
	visited := map[string]bool{row.Name(): true}
	queue := []step{{row, 0}}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if cur.depth >= MaxDependantDepth {
			continue
		}
		role := RoleIndirectDependant
		if cur.depth == 0 {
			role = RoleDirectDependant
		}
		for _, name := range cur.row.Entry.Dependants {
			next, ok := t.Lookup(name)
			if !ok || visited[next.Name()] {
				continue
			}
			visited[next.Name()] = true
			plan.Roles[next.Name()] |= role
			queue = append(queue, step{next, cur.depth + 1})
		}
	}
	return plan, true
}

// Controller owns the visual state of one timeline: row roles and
// visibility, the active selection and the clear control.
type Controller struct {
	tl           *Timeline
	active       string
	hasActive    bool
	clearVisible bool
}

// NewController wraps tl. tl may be empty but not nil.
func NewController(tl *Timeline) *Controller {
	return &Controller{tl: tl}
}

// Timeline returns the controlled timeline.
func (c *Controller) Timeline() *Timeline { return c.tl }

// Active returns the raw name of the selected row, if any.
func (c *Controller) Active() (string, bool) { return c.active, c.hasActive }

// ClearControlVisible reports whether the clear-selection control is shown.
func (c *Controller) ClearControlVisible() bool { return c.clearVisible }

// Activate handles a click on name. Activating the selected row again clears
// it. Unknown names return false and leave the state untouched.
func (c *Controller) Activate(name string) bool {
	defer metrics.Timer(metrics.Selection)()

	plan, ok := c.tl.Plan(name)
	if !ok {
		debug.Log("selection: %q does not resolve to a row", name)
		return false
	}

	c.reset()
	if c.hasActive && c.active == plan.Selected {
		c.active, c.hasActive = "", false
		debug.Log("selection: toggled off %s", plan.Selected)
		return true
	}

	c.apply(plan)
	debug.Log("selection: %s (%d rows visible)", plan.Selected, len(plan.Roles))
	return true
}

// Clear restores every row to normal and forgets the selection.
func (c *Controller) Clear() {
	c.reset()
	c.active, c.hasActive = "", false
}

// reset drops every role and hides the clear control. The active marker is
// left to the caller.
func (c *Controller) reset() {
	for _, r := range c.tl.Rows {
		r.roles = 0
		r.hidden = false
	}
	c.clearVisible = false
}

func (c *Controller) apply(plan SelectionPlan) {
	for _, r := range c.tl.Rows {
		r.roles = plan.Roles[r.Name()]
		r.hidden = r.roles == 0
	}
	c.active, c.hasActive = plan.Selected, true
	c.clearVisible = true
}
