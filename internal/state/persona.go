package state

import "sort"

// ProjectedPersona is a read-only, presentation-oriented projection of the
// organism state: who it currently "is" in a few cues, not a full state
// dump. Grounded on the original persona projection of the source system.
type ProjectedPersona struct {
	ArchetypeTags []string
	Bio           string
	DominantValue string
}

// Project builds a ProjectedPersona from the current state's dominant
// traits. Pure; never panics.
func (s OrganismState) Project() ProjectedPersona {
	var tags []string
	switch s.Medium.Attachment.Style() {
	case AttachmentSecure:
		tags = append(tags, "steady")
	case AttachmentAnxious:
		tags = append(tags, "earnest")
	case AttachmentAvoidant:
		tags = append(tags, "reserved")
	case AttachmentDisorganized:
		tags = append(tags, "unsettled")
	}
	if s.Fast.Curiosity > 0.6 {
		tags = append(tags, "curious")
	}
	if s.Fast.Energy > 0.7 {
		tags = append(tags, "energetic")
	}
	if s.Slow.Rigidity > 0.7 {
		tags = append(tags, "principled")
	}
	if s.Medium.Openness > 0.7 {
		tags = append(tags, "open-minded")
	}

	dominant := dominantValue(s.Slow.Values)

	return ProjectedPersona{
		ArchetypeTags: tags,
		Bio:           s.DescribeForContext(),
		DominantValue: dominant,
	}
}

func dominantValue(vn ValueNetwork) string {
	type pair struct {
		name   string
		weight float32
	}
	var pairs []pair
	for name, e := range vn.entries {
		pairs = append(pairs, pair{name, e.Weight})
	}
	if len(pairs) == 0 {
		return ""
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].weight != pairs[j].weight {
			return pairs[i].weight > pairs[j].weight
		}
		return pairs[i].name < pairs[j].name
	})
	return pairs[0].name
}
