package coordinator

import (
	"strings"

	"github.com/mneme-ai/organism/internal/state"
)

// Situation is a proposed action to be weighed against the value network.
type Situation struct {
	Description    string
	ProposedAction string
	EmotionalValence float32
}

// ValueImpact names a value and how strongly a situation touches it.
type ValueImpact struct {
	ValueName string
	Strength  float32
	Reason    string
}

// JudgmentResult is a ValueJudge's verdict on a Situation.
type JudgmentResult struct {
	SupportedValues []ValueImpact
	ViolatedValues  []ValueImpact
	MoralValence    float32
	HasConflict     bool
	Explanation     string
}

// ValueConflict is a detected tension between two values in one situation.
type ValueConflict struct {
	ValueA   string
	ValueB   string
	Context  string
	Severity float32
}

// ValueJudge evaluates situations against a value network. RuleBasedJudge is
// the only implementation for now; the interface exists so a learned judge
// can be swapped in later without touching the coordinator.
type ValueJudge interface {
	Evaluate(situation Situation, values state.ValueNetwork) JudgmentResult
	DetectConflicts(situation Situation, values state.ValueNetwork) []ValueConflict
	ResolveConflict(conflict ValueConflict, values state.ValueNetwork) string
}

// ruleKeywords maps each core value to the keywords whose presence in a
// situation's text supports or violates it.
var ruleKeywords = []struct {
	value    string
	support  []string
	violate  []string
}{
	{"honesty", []string{"tell the truth", "be honest", "disclose", "admit"}, []string{"lie", "deceive", "mislead", "hide the truth", "pretend"}},
	{"care", []string{"help", "comfort", "support", "reassure"}, []string{"hurt", "neglect", "abandon", "ignore their pain"}},
	{"autonomy", []string{"let them choose", "respect their decision", "their call"}, []string{"force", "control", "pressure", "manipulate"}},
	{"loyalty", []string{"stand by", "stick with", "keep their secret"}, []string{"betray", "abandon", "turn on"}},
	{"fairness", []string{"treat equally", "fair", "impartial"}, []string{"unfair", "biased", "favor one over", "discriminate"}},
}

// RuleBasedJudge is a keyword-matching ValueJudge, the hardcoded baseline
// before any learned judge exists.
type RuleBasedJudge struct{}

// NewRuleBasedJudge constructs a RuleBasedJudge.
func NewRuleBasedJudge() *RuleBasedJudge {
	return &RuleBasedJudge{}
}

func situationText(s Situation) string {
	return strings.ToLower(s.Description + " " + s.ProposedAction)
}

func (j *RuleBasedJudge) Evaluate(situation Situation, values state.ValueNetwork) JudgmentResult {
	text := situationText(situation)

	var supported, violated []ValueImpact
	for _, rk := range ruleKeywords {
		for _, kw := range rk.support {
			if strings.Contains(text, kw) {
				supported = append(supported, ValueImpact{ValueName: rk.value, Strength: values.Get(rk.value).Weight, Reason: "matched: " + kw})
				break
			}
		}
		for _, kw := range rk.violate {
			if strings.Contains(text, kw) {
				violated = append(violated, ValueImpact{ValueName: rk.value, Strength: values.Get(rk.value).Weight, Reason: "matched: " + kw})
				break
			}
		}
	}

	var moralValence float32
	for _, v := range supported {
		moralValence += 0.3 + 0.4*v.Strength
	}
	for _, v := range violated {
		moralValence -= 0.3 + 0.5*v.Strength
	}
	moralValence = clampSigned(moralValence)

	explanation := "no strongly-weighted value implicated"
	switch {
	case len(violated) > 0 && len(supported) > 0:
		explanation = "this action both supports and conflicts with tracked values"
	case len(violated) > 0:
		explanation = "this action conflicts with tracked values"
	case len(supported) > 0:
		explanation = "this action aligns with tracked values"
	}

	return JudgmentResult{
		SupportedValues: supported,
		ViolatedValues:  violated,
		MoralValence:    moralValence,
		HasConflict:     len(supported) > 0 && len(violated) > 0,
		Explanation:     explanation,
	}
}

func (j *RuleBasedJudge) DetectConflicts(situation Situation, values state.ValueNetwork) []ValueConflict {
	judgment := j.Evaluate(situation, values)
	if !judgment.HasConflict {
		return nil
	}
	var conflicts []ValueConflict
	for _, s := range judgment.SupportedValues {
		for _, v := range judgment.ViolatedValues {
			conflicts = append(conflicts, ValueConflict{
				ValueA:   s.ValueName,
				ValueB:   v.ValueName,
				Context:  situation.Description,
				Severity: (s.Strength + v.Strength) / 2,
			})
		}
	}
	return conflicts
}

func (j *RuleBasedJudge) ResolveConflict(conflict ValueConflict, values state.ValueNetwork) string {
	a := values.Get(conflict.ValueA)
	b := values.Get(conflict.ValueB)
	if a.Weight >= b.Weight {
		return conflict.ValueA
	}
	return conflict.ValueB
}

func clampSigned(v float32) float32 {
	if v < -1 {
		return -1
	}
	if v > 1 {
		return 1
	}
	return v
}
