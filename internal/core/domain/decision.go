package domain

import "slices"

// Reason explains a single module's decision.
type Reason string

// Decision reasons, in the order finalization checks them.
const (
	ReasonNeverRun   Reason = "never-run"
	ReasonNotAllowed Reason = "not-allowed"
	ReasonGlobal     Reason = "global"
	ReasonDirect     Reason = "direct"
	ReasonDependent  Reason = "dependent"
	ReasonAlwaysRun  Reason = "always-run"
	ReasonUnaffected Reason = "unaffected"
)

// Affected reports whether the reason leads to the module running.
func (r Reason) Affected() bool {
	switch r {
	case ReasonGlobal, ReasonDirect, ReasonDependent, ReasonAlwaysRun:
		return true
	default:
		return false
	}
}

// DebugSnapshot exposes the intermediate sets of a computation for diagnostics.
type DebugSnapshot struct {
	Direct    []string `json:"direct"`
	Dependent []string `json:"dependent"`
	Global    bool     `json:"global"`
	AlwaysRun []string `json:"alwaysRun"`
	NeverRun  []string `json:"neverRun"`
	Allow     []string `json:"allow"`
}

// DecisionSet is the immutable result of a computation. It holds one decision per
// registered module and may be queried concurrently without synchronization.
type DecisionSet struct {
	order    []InternedString
	reasons  map[InternedString]Reason
	affected []InternedString
	snapshot DebugSnapshot
	notices  []Notice
}

// NewDecisionSet freezes the reasons computed for the modules in order.
func NewDecisionSet(order []InternedString, reasons map[InternedString]Reason, snapshot DebugSnapshot, notices []Notice) *DecisionSet {
	d := &DecisionSet{
		order:    slices.Clone(order),
		reasons:  make(map[InternedString]Reason, len(order)),
		snapshot: snapshot,
		notices:  slices.Clone(notices),
	}
	for _, id := range d.order {
		r, ok := reasons[id]
		if !ok {
			r = ReasonUnaffected
		}
		d.reasons[id] = r
		if r.Affected() {
			d.affected = append(d.affected, id)
		}
	}
	return d
}

// IsAffected reports whether the module's target task should run.
// Unknown ids are never affected.
func (d *DecisionSet) IsAffected(id InternedString) bool {
	return d.reasons[id].Affected()
}

// Reason returns why the module was, or was not, selected.
func (d *DecisionSet) Reason(id InternedString) (Reason, bool) {
	r, ok := d.reasons[id]
	return r, ok
}

// Affected returns the affected module ids in registry order.
func (d *DecisionSet) Affected() []InternedString {
	return slices.Clone(d.affected)
}

// Modules returns every decided module id in registry order.
func (d *DecisionSet) Modules() []InternedString {
	return slices.Clone(d.order)
}

// Debug returns the intermediate sets of the computation.
func (d *DecisionSet) Debug() DebugSnapshot {
	s := d.snapshot
	s.Direct = slices.Clone(s.Direct)
	s.Dependent = slices.Clone(s.Dependent)
	s.AlwaysRun = slices.Clone(s.AlwaysRun)
	s.NeverRun = slices.Clone(s.NeverRun)
	s.Allow = slices.Clone(s.Allow)
	return s
}

// Notices returns the non-fatal conditions recorded during the computation.
func (d *DecisionSet) Notices() []Notice {
	return slices.Clone(d.notices)
}
