package limbic

// SurpriseDetector implements a lightweight predictive-coding model: it
// holds a short bounded history of recent inputs and an optional prediction
// string, and reports how surprising new content is relative to a
// slow-moving baseline.
type SurpriseDetector struct {
	cfg        SurpriseConfig
	history    []string
	prediction string
	hasPrediction bool
	baseline   float32
}

// NewSurpriseDetector returns a detector configured per cfg.
func NewSurpriseDetector(cfg SurpriseConfig) *SurpriseDetector {
	if cfg.HistorySize <= 0 {
		cfg.HistorySize = 5
	}
	if cfg.BaselineSmoothing <= 0 {
		cfg.BaselineSmoothing = 0.05
	}
	return &SurpriseDetector{cfg: cfg, baseline: 0.3}
}

// SetPrediction records the content the detector expects next.
func (d *SurpriseDetector) SetPrediction(content string) {
	d.prediction = content
	d.hasPrediction = true
}

// ComputeSurprise scores how surprising content is, in [0,1]: it computes a
// character-set Jaccard distance either against the stored prediction (if
// one exists) or averaged over the last three history entries, updates the
// exponentially-smoothed baseline, and returns the deviation from baseline
// shifted into [0,1].
func (d *SurpriseDetector) ComputeSurprise(content string) float32 {
	var raw float32
	if d.hasPrediction {
		raw = jaccardDistance(content, d.prediction)
	} else {
		raw = d.averageHistoryDistance(content)
	}

	deviation := raw - d.baseline
	surprise := clamp01(0.5 + deviation)

	d.baseline = d.baseline*(1-d.cfg.BaselineSmoothing) + raw*d.cfg.BaselineSmoothing

	d.pushHistory(content)
	return surprise
}

func (d *SurpriseDetector) averageHistoryDistance(content string) float32 {
	n := len(d.history)
	if n == 0 {
		return 0.3 // no history yet: assume mild ambient surprise
	}
	take := 3
	if n < take {
		take = n
	}
	var sum float32
	for i := n - take; i < n; i++ {
		sum += jaccardDistance(content, d.history[i])
	}
	return sum / float32(take)
}

func (d *SurpriseDetector) pushHistory(content string) {
	d.history = append(d.history, content)
	if len(d.history) > d.cfg.HistorySize {
		d.history = d.history[len(d.history)-d.cfg.HistorySize:]
	}
}

// jaccardDistance is 1 - |intersection|/|union| over the two strings'
// character sets. Equal strings give distance 0; disjoint strings give 1.
func jaccardDistance(a, b string) float32 {
	if a == "" && b == "" {
		return 0
	}
	setA := charSet(a)
	setB := charSet(b)
	if len(setA) == 0 || len(setB) == 0 {
		return 1
	}
	intersection := 0
	for r := range setA {
		if setB[r] {
			intersection++
		}
	}
	union := len(setA) + len(setB) - intersection
	if union == 0 {
		return 0
	}
	return 1 - float32(intersection)/float32(union)
}

func charSet(s string) map[rune]bool {
	set := make(map[rune]bool)
	for _, r := range s {
		set[r] = true
	}
	return set
}

func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
