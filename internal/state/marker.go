package state

// SomaticMarker is a read-only projection of the current organism state,
// published by the limbic loop for context injection into the reasoning
// orchestrator. It never carries a pointer back into live state.
type SomaticMarker struct {
	Affect           Affect
	Energy           float32
	Stress           float32
	SocialNeed       float32
	Curiosity        float32
	MoodBias         float32
	AttachmentStyle  AttachmentStyle
	Openness         float32
	ShortDescription string
	BehavioralHints  []string
}

// Marker projects the live OrganismState into a SomaticMarker.
func (s OrganismState) Marker() SomaticMarker {
	return SomaticMarker{
		Affect:           s.Fast.Affect,
		Energy:           s.Fast.Energy,
		Stress:           s.Fast.Stress,
		SocialNeed:       s.Fast.SocialNeed,
		Curiosity:        s.Fast.Curiosity,
		MoodBias:         s.Medium.MoodBias,
		AttachmentStyle:  s.Medium.Attachment.Style(),
		Openness:         s.Medium.Openness,
		ShortDescription: s.Fast.Affect.Describe(),
		BehavioralHints:  s.behavioralHints(),
	}
}

// behavioralHints composes short cues from thresholded fields — the
// "describe_for_context" building blocks.
func (s OrganismState) behavioralHints() []string {
	var hints []string
	if s.Fast.Energy < 0.25 {
		hints = append(hints, "low energy: prefers brevity")
	}
	if s.Fast.Stress > 0.7 {
		hints = append(hints, "high stress: seeks reassurance")
	}
	if s.Fast.SocialNeed > 0.75 {
		hints = append(hints, "craves social contact")
	}
	if s.Fast.Curiosity > 0.8 {
		hints = append(hints, "eager to explore new topics")
	}
	if s.Fast.Boredom > 0.6 {
		hints = append(hints, "restless, mind wandering")
	}
	if s.Medium.Attachment.Style() == AttachmentAnxious {
		hints = append(hints, "attachment: seeks frequent check-ins")
	}
	if s.Medium.Attachment.Style() == AttachmentAvoidant {
		hints = append(hints, "attachment: prefers independence")
	}
	if s.Slow.Rigidity > 0.8 {
		hints = append(hints, "set in its ways")
	}
	return hints
}

// DescribeForContext composes a short natural-language summary of the
// current state for direct inclusion in an LLM system prompt.
func (s OrganismState) DescribeForContext() string {
	desc := s.Fast.Affect.Describe()
	hints := s.behavioralHints()
	if len(hints) == 0 {
		return desc
	}
	out := desc + "."
	for _, h := range hints {
		out += " " + h + "."
	}
	return out
}
