package state

import (
	"encoding/json"
	"sort"
)

// CuriosityVector is a bounded mapping from topic tag to intensity in
// [0,1], with top-K retrieval for the curiosity-exploration evaluator and
// for context-assembly's interest-biased recall query.
type CuriosityVector struct {
	intensities map[string]float32
}

// NewCuriosityVector returns an empty curiosity vector.
func NewCuriosityVector() CuriosityVector {
	return CuriosityVector{intensities: make(map[string]float32)}
}

// Bump raises (or introduces) a topic's intensity by delta, clamped to
// [0,1].
func (c *CuriosityVector) Bump(topic string, delta float32) {
	if c.intensities == nil {
		c.intensities = make(map[string]float32)
	}
	c.intensities[topic] = clampF32(c.intensities[topic]+delta, 0, 1, 0)
}

// Decay multiplies every topic's intensity by factor, pruning entries that
// fall below a negligible threshold.
func (c *CuriosityVector) Decay(factor float32) {
	for topic, v := range c.intensities {
		v *= factor
		if v < 0.01 {
			delete(c.intensities, topic)
			continue
		}
		c.intensities[topic] = v
	}
}

// TopicIntensity reads a single topic's intensity (0 if absent).
func (c CuriosityVector) TopicIntensity(topic string) float32 {
	return c.intensities[topic]
}

// Interest pairs a topic with its intensity for TopK results.
type Interest struct {
	Topic     string
	Intensity float32
}

// TopK returns the k highest-intensity interests, descending, ties broken
// by topic name for determinism.
func (c CuriosityVector) TopK(k int) []Interest {
	out := make([]Interest, 0, len(c.intensities))
	for topic, v := range c.intensities {
		out = append(out, Interest{Topic: topic, Intensity: v})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Intensity != out[j].Intensity {
			return out[i].Intensity > out[j].Intensity
		}
		return out[i].Topic < out[j].Topic
	})
	if k < len(out) {
		out = out[:k]
	}
	return out
}

func (c *CuriosityVector) sanitize() {
	if c.intensities == nil {
		c.intensities = make(map[string]float32)
		return
	}
	for topic, v := range c.intensities {
		c.intensities[topic] = clampF32(v, 0, 1, 0)
	}
}

// MarshalJSON serializes the topic->intensity map directly, since the
// persistence layer round-trips OrganismState through JSON and the map is
// otherwise unexported.
func (c CuriosityVector) MarshalJSON() ([]byte, error) {
	if c.intensities == nil {
		return json.Marshal(map[string]float32{})
	}
	return json.Marshal(c.intensities)
}

// UnmarshalJSON restores the topic->intensity map produced by MarshalJSON.
func (c *CuriosityVector) UnmarshalJSON(data []byte) error {
	var m map[string]float32
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	if m == nil {
		m = make(map[string]float32)
	}
	c.intensities = m
	return nil
}

func (c CuriosityVector) clone() CuriosityVector {
	cp := make(map[string]float32, len(c.intensities))
	for k, v := range c.intensities {
		cp[k] = v
	}
	return CuriosityVector{intensities: cp}
}
