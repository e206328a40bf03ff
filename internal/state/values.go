package state

import "encoding/json"

// ValueEntry holds a value's weight (how much it matters, [0,1]) and
// rigidity (how resistant to reinforcement it is, [0,1]).
type ValueEntry struct {
	Weight   float32
	Rigidity float32
}

// ValueNetwork maps a value name (e.g. "honesty", "loyalty") to its
// ValueEntry.
type ValueNetwork struct {
	entries map[string]ValueEntry
}

// NewValueNetwork returns a value network seeded with a small set of
// default core values at moderate weight and rigidity.
func NewValueNetwork() ValueNetwork {
	vn := ValueNetwork{entries: make(map[string]ValueEntry)}
	for _, name := range []string{"honesty", "care", "autonomy", "loyalty", "fairness"} {
		vn.entries[name] = ValueEntry{Weight: 0.6, Rigidity: 0.3}
	}
	return vn
}

// Get reads a value's entry; absent values report zero weight/rigidity.
func (vn ValueNetwork) Get(name string) ValueEntry {
	return vn.entries[name]
}

// Reinforce nudges a value's weight upward by delta, clamped to [0,1].
// Rigidity dampens how much a reinforcement can move the weight: high
// rigidity makes an already-settled value harder to shift.
func (vn *ValueNetwork) Reinforce(name string, delta float32) {
	if vn.entries == nil {
		vn.entries = make(map[string]ValueEntry)
	}
	e, ok := vn.entries[name]
	if !ok {
		e = ValueEntry{Weight: 0.5, Rigidity: 0.3}
	}
	effective := delta * (1 - e.Rigidity*0.5)
	e.Weight = clampF32(e.Weight+effective, 0, 1, 0.5)
	vn.entries[name] = e
}

// ComputeMoralCost derives a stress/energy/valence cost from the set of
// violated value names, weighted by each value's current weight. An
// unknown value name contributes a small flat cost so that unmodeled
// violations are still felt, just less acutely than tracked ones.
func (vn ValueNetwork) ComputeMoralCost(violated []string) float32 {
	if len(violated) == 0 {
		return 0
	}
	var total float32
	for _, name := range violated {
		e, ok := vn.entries[name]
		if !ok {
			total += 0.15
			continue
		}
		total += 0.1 + 0.4*e.Weight
	}
	return clampF32(total, 0, 1.5, 0)
}

// ReinforceConsolidated applies a sleep-consolidation reinforcement
// directly to both weight and rigidity, bypassing the rigidity damping
// Reinforce uses for moment-to-moment nudges: sleep-time updates have
// already passed uncertainty discounting and temporal smoothing, so they
// are trusted at full strength.
func (vn *ValueNetwork) ReinforceConsolidated(name string, weightDelta float32) {
	if vn.entries == nil {
		vn.entries = make(map[string]ValueEntry)
	}
	e, ok := vn.entries[name]
	if !ok {
		return
	}
	e.Weight = clampF32(e.Weight+weightDelta, 0, 1, e.Weight)
	e.Rigidity = clampF32(e.Rigidity+weightDelta*0.5, 0, 1, e.Rigidity)
	vn.entries[name] = e
}

func (vn *ValueNetwork) sanitize() {
	if vn.entries == nil {
		vn.entries = make(map[string]ValueEntry)
		return
	}
	for name, e := range vn.entries {
		e.Weight = clampF32(e.Weight, 0, 1, 0.5)
		e.Rigidity = clampF32(e.Rigidity, 0, 1, 0.3)
		vn.entries[name] = e
	}
}

func (vn ValueNetwork) clone() ValueNetwork {
	cp := make(map[string]ValueEntry, len(vn.entries))
	for k, v := range vn.entries {
		cp[k] = v
	}
	return ValueNetwork{entries: cp}
}

// MarshalJSON serializes the name->entry map directly, since the
// persistence layer round-trips OrganismState through JSON and the map is
// otherwise unexported.
func (vn ValueNetwork) MarshalJSON() ([]byte, error) {
	if vn.entries == nil {
		return json.Marshal(map[string]ValueEntry{})
	}
	return json.Marshal(vn.entries)
}

// UnmarshalJSON restores the name->entry map produced by MarshalJSON.
func (vn *ValueNetwork) UnmarshalJSON(data []byte) error {
	var m map[string]ValueEntry
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	if m == nil {
		m = make(map[string]ValueEntry)
	}
	vn.entries = m
	return nil
}

// Names returns the tracked value names in no particular order.
func (vn ValueNetwork) Names() []string {
	names := make([]string, 0, len(vn.entries))
	for name := range vn.entries {
		names = append(names, name)
	}
	return names
}
