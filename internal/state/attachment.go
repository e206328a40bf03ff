package state

// AttachmentState holds the medium-scale attachment dimensions, anxiety and
// avoidance, both in [0,1].
type AttachmentState struct {
	Anxiety   float32
	Avoidance float32
}

// AttachmentStyle is the four-way classification derived from
// (anxiety, avoidance).
type AttachmentStyle string

const (
	AttachmentSecure       AttachmentStyle = "secure"
	AttachmentAnxious      AttachmentStyle = "anxious"
	AttachmentAvoidant     AttachmentStyle = "avoidant"
	AttachmentDisorganized AttachmentStyle = "disorganized"
)

// Style projects (anxiety, avoidance) onto the four-way attachment typology
// using a 0.5 midpoint split on each axis.
func (a AttachmentState) Style() AttachmentStyle {
	const mid = 0.5
	highAnxiety := a.Anxiety >= mid
	highAvoidance := a.Avoidance >= mid
	switch {
	case !highAnxiety && !highAvoidance:
		return AttachmentSecure
	case highAnxiety && !highAvoidance:
		return AttachmentAnxious
	case !highAnxiety && highAvoidance:
		return AttachmentAvoidant
	default:
		return AttachmentDisorganized
	}
}
