package store

import (
	"strings"

	"github.com/tsawler/prose/v3"
	"gonum.org/v1/gonum/floats"
)

// tokenize lowercases and splits text into content words using prose's
// tokenizer, generalizing the pack's entity-extraction tokenization
// (memory-service/pkg/extract/prose.go) to plain bag-of-words scoring
// since recall has no embedding backend wired (spec §1 scopes the
// vector-embedding backend out of the core).
func tokenize(text string) []string {
	doc, err := prose.NewDocument(text)
	if err != nil {
		return strings.Fields(strings.ToLower(text))
	}
	var out []string
	for _, tok := range doc.Tokens() {
		w := strings.ToLower(strings.TrimSpace(tok.Text))
		if w == "" || isStopword(w) {
			continue
		}
		out = append(out, w)
	}
	if len(out) == 0 {
		return strings.Fields(strings.ToLower(text))
	}
	return out
}

var stopwords = map[string]bool{
	"the": true, "a": true, "an": true, "is": true, "are": true, "was": true,
	"were": true, "to": true, "of": true, "and": true, "in": true, "on": true,
	"it": true, "i": true, "you": true, "that": true, "this": true, "for": true,
	".": true, ",": true, "?": true, "!": true, "'s": true,
}

func isStopword(w string) bool { return stopwords[w] }

// termVector builds a sparse bag-of-words count vector over vocab (index
// assigned by caller), used as a cheap stand-in for a real embedding when
// cosine-scoring candidate episodes against a query.
func termVector(tokens []string, vocab map[string]int) []float64 {
	v := make([]float64, len(vocab))
	for _, t := range tokens {
		if idx, ok := vocab[t]; ok {
			v[idx]++
		}
	}
	return v
}

// buildVocab assigns a dense index to every distinct token across query and
// candidates.
func buildVocab(queryTokens []string, candidateTokens [][]string) map[string]int {
	vocab := make(map[string]int)
	add := func(tokens []string) {
		for _, t := range tokens {
			if _, ok := vocab[t]; !ok {
				vocab[t] = len(vocab)
			}
		}
	}
	add(queryTokens)
	for _, c := range candidateTokens {
		add(c)
	}
	return vocab
}

// cosineSimilarity scores two term-frequency vectors via gonum, returning 0
// for either zero vector rather than dividing by zero.
func cosineSimilarity(a, b []float64) float64 {
	na, nb := floats.Norm(a, 2), floats.Norm(b, 2)
	if na == 0 || nb == 0 {
		return 0
	}
	return floats.Dot(a, b) / (na * nb)
}

// emotionalLens selects the recall-layer annotation bucket the memory
// collaborator prefixes recall_reconstructed's result with, derived from
// the moodBias/stress scalars the core passes at the call site (spec
// §4.7 layer 1).
func emotionalLens(moodBias, stress float32) string {
	switch {
	case stress > 0.75:
		return "high-stress"
	case stress > 0.5:
		return "anxious"
	case moodBias > 0.3:
		return "positive"
	case moodBias < -0.3:
		return "negative"
	default:
		return "neutral"
	}
}
