package store

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mneme-ai/organism/internal/logging"
	"github.com/mneme-ai/organism/internal/ports"
	"github.com/mneme-ai/organism/internal/state"
)

// candidateWindow bounds how many recent episodes recall scores against,
// keeping the cosine-similarity pass cheap regardless of table size.
const candidateWindow = 300

// Memorize stores an episode owned by this collaborator from now on; the
// core never mutates Strength after this call.
func (d *DB) Memorize(ctx context.Context, ep state.Episode) error {
	if ep.ID == "" {
		ep.ID = uuid.NewString()
	}
	if ep.Strength == 0 {
		ep.Strength = 1.0
	}
	_, err := d.db.ExecContext(ctx,
		`INSERT INTO episodes (id, source, author, body, modality, strength, timestamp_event) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		ep.ID, ep.Source, ep.Author, ep.Body, ep.Modality, ep.Strength, ep.Timestamp)
	return err
}

// EpisodeCount returns the total number of stored episodes.
func (d *DB) EpisodeCount(ctx context.Context) (int, error) {
	var n int
	err := d.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM episodes`).Scan(&n)
	return n, err
}

type scoredEpisode struct {
	ep    state.Episode
	score float64
}

// candidateEpisodes fetches the most recent candidateWindow episodes,
// newest first.
func (d *DB) candidateEpisodes(ctx context.Context) ([]state.Episode, error) {
	rows, err := d.db.QueryContext(ctx,
		`SELECT id, source, author, body, modality, strength, timestamp_event FROM episodes
		 ORDER BY timestamp_event DESC LIMIT ?`, candidateWindow)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []state.Episode
	for rows.Next() {
		var ep state.Episode
		if err := rows.Scan(&ep.ID, &ep.Source, &ep.Author, &ep.Body, &ep.Modality, &ep.Strength, &ep.Timestamp); err != nil {
			return nil, err
		}
		out = append(out, ep)
	}
	return out, rows.Err()
}

// scoreByQuery ranks candidates against query by bag-of-words cosine
// similarity, blended with recall strength — the KNN-over-episodes
// re-ranking spec §4.7 layer 1 describes, implemented without a real
// embedding backend (scoped out per spec §1).
func scoreByQuery(query string, candidates []state.Episode) []scoredEpisode {
	queryTokens := tokenize(query)
	tokensByEpisode := make([][]string, len(candidates))
	for i, ep := range candidates {
		tokensByEpisode[i] = tokenize(ep.Body)
	}
	vocab := buildVocab(queryTokens, tokensByEpisode)
	queryVec := termVector(queryTokens, vocab)

	scored := make([]scoredEpisode, len(candidates))
	for i, ep := range candidates {
		sim := cosineSimilarity(queryVec, termVector(tokensByEpisode[i], vocab))
		scored[i] = scoredEpisode{ep: ep, score: sim*0.7 + float64(ep.Strength)*0.3}
	}
	return scored
}

// biasByMood re-ranks toward mood-congruent recency: positive moodBias
// favors positively-toned-sounding recent content, negative moodBias
// favors the inverse, applied as a small additive nudge scaled by recency.
func biasByMood(scored []scoredEpisode, moodBias float32, now time.Time) {
	for i := range scored {
		age := now.Sub(scored[i].ep.Timestamp).Hours()
		recency := 1.0 / (1.0 + age/24.0)
		valenceGuess := guessValence(scored[i].ep.Body)
		congruence := float64(moodBias) * valenceGuess
		scored[i].score += 0.15 * recency * congruence
	}
}

// guessValence is a crude positive/negative keyword tilt used only to bias
// recall ranking, not to write any affect state.
func guessValence(body string) float64 {
	lower := strings.ToLower(body)
	var v float64
	for _, w := range []string{"happy", "glad", "great", "love", "good", "excited"} {
		if strings.Contains(lower, w) {
			v += 0.3
		}
	}
	for _, w := range []string{"sad", "angry", "hate", "bad", "upset", "worried"} {
		if strings.Contains(lower, w) {
			v -= 0.3
		}
	}
	if v > 1 {
		v = 1
	}
	if v < -1 {
		v = -1
	}
	return v
}

func topK(scored []scoredEpisode, k int) []state.Episode {
	sort.Slice(scored, func(i, j int) bool { return scored[i].score > scored[j].score })
	if k > len(scored) {
		k = len(scored)
	}
	out := make([]state.Episode, k)
	for i := 0; i < k; i++ {
		out[i] = scored[i].ep
	}
	return out
}

func formatEpisodes(eps []state.Episode) string {
	if len(eps) == 0 {
		return ""
	}
	var b strings.Builder
	for i, ep := range eps {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "[%s] %s: %s", ep.Timestamp.Format("2006-01-02 15:04"), ep.Author, ep.Body)
	}
	return b.String()
}

// Recall returns the top-5 episodes matching query by plain relevance, with
// no mood biasing.
func (d *DB) Recall(ctx context.Context, query string) (string, error) {
	candidates, err := d.candidateEpisodes(ctx)
	if err != nil {
		return "", err
	}
	scored := scoreByQuery(query, candidates)
	return formatEpisodes(topK(scored, 5)), nil
}

// RecallWithBias is Recall with mood-congruent recency biasing but no
// emotional-lens prefix (used by internal callers that format their own
// framing).
func (d *DB) RecallWithBias(ctx context.Context, query string, moodBias float32) (string, error) {
	candidates, err := d.candidateEpisodes(ctx)
	if err != nil {
		return "", err
	}
	scored := scoreByQuery(query, candidates)
	biasByMood(scored, moodBias, time.Now())
	return formatEpisodes(topK(scored, 5)), nil
}

// RecallReconstructed is the context-assembly recall layer's entry point:
// KNN over episodes re-ranked by strength, biased toward mood-congruent
// recency, and prefixed with an emotional-lens annotation derived from the
// moodBias/stress the caller supplies.
func (d *DB) RecallReconstructed(ctx context.Context, query string, moodBias, stress float32) (string, error) {
	candidates, err := d.candidateEpisodes(ctx)
	if err != nil {
		return "", err
	}
	if len(candidates) == 0 {
		return "", nil
	}
	scored := scoreByQuery(query, candidates)
	biasByMood(scored, moodBias, time.Now())
	body := formatEpisodes(topK(scored, 6))
	if body == "" {
		return "", nil
	}
	lens := emotionalLens(moodBias, stress)
	return fmt.Sprintf("[%s] %s", lens, body), nil
}

// StoreFact persists one extracted (subject, predicate, object) triple.
func (d *DB) StoreFact(ctx context.Context, subject, predicate, object string, confidence float32) error {
	_, err := d.db.ExecContext(ctx,
		`INSERT INTO facts (subject, predicate, object, confidence) VALUES (?, ?, ?, ?)`,
		subject, predicate, object, confidence)
	return err
}

// RecallFactsFormatted returns facts whose subject, predicate, or object
// textually overlaps query, most-confident first.
func (d *DB) RecallFactsFormatted(ctx context.Context, query string) (string, error) {
	rows, err := d.db.QueryContext(ctx,
		`SELECT subject, predicate, object, confidence FROM facts ORDER BY confidence DESC LIMIT 200`)
	if err != nil {
		return "", err
	}
	defer rows.Close()

	queryTokens := tokenSet(tokenize(query))
	var matched []string
	for rows.Next() {
		var subject, predicate, object string
		var confidence float32
		if err := rows.Scan(&subject, &predicate, &object, &confidence); err != nil {
			return "", err
		}
		if len(queryTokens) > 0 && !overlaps(queryTokens, tokenize(subject+" "+predicate+" "+object)) {
			continue
		}
		matched = append(matched, fmt.Sprintf("%s %s %s (%.0f%%)", subject, predicate, object, confidence*100))
		if len(matched) >= 10 {
			break
		}
	}
	if err := rows.Err(); err != nil {
		return "", err
	}
	return strings.Join(matched, "; "), nil
}

func tokenSet(tokens []string) map[string]bool {
	s := make(map[string]bool, len(tokens))
	for _, t := range tokens {
		s[t] = true
	}
	return s
}

func overlaps(a map[string]bool, tokens []string) bool {
	for _, t := range tokens {
		if a[t] {
			return true
		}
	}
	return false
}

// RecallSelfKnowledgeByDomain returns every stored self-knowledge entry for
// domain, most-confident first.
func (d *DB) RecallSelfKnowledgeByDomain(ctx context.Context, domain string) ([]ports.SelfKnowledgeEntry, error) {
	rows, err := d.db.QueryContext(ctx,
		`SELECT content, confidence FROM self_knowledge WHERE domain = ? ORDER BY confidence DESC, created_at DESC LIMIT 20`,
		domain)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ports.SelfKnowledgeEntry
	for rows.Next() {
		var e ports.SelfKnowledgeEntry
		if err := rows.Scan(&e.Content, &e.Confidence); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// StoreSelfKnowledge persists one domain-partitioned introspective fact.
func (d *DB) StoreSelfKnowledge(ctx context.Context, sk ports.SelfKnowledge) error {
	private := 0
	if sk.Private {
		private = 1
	}
	var episodeID any
	if sk.EpisodeID != "" {
		episodeID = sk.EpisodeID
	}
	_, err := d.db.ExecContext(ctx,
		`INSERT INTO self_knowledge (domain, content, confidence, source, episode_id, private) VALUES (?, ?, ?, ?, ?, ?)`,
		sk.Domain, sk.Content, sk.Confidence, sk.Source, episodeID, private)
	if err != nil {
		logging.Error(subsystem, "store self-knowledge failed: %v", err)
	}
	return err
}

// DetectRepeatedPatterns groups self-knowledge content by exact text and
// returns every group whose count meets minCount, feeding the habit
// evaluator's detection step.
func (d *DB) DetectRepeatedPatterns(ctx context.Context, minCount int) ([]ports.RepeatedPattern, error) {
	rows, err := d.db.QueryContext(ctx,
		`SELECT content, COUNT(*) as c FROM self_knowledge GROUP BY content HAVING c >= ? ORDER BY c DESC LIMIT 20`,
		minCount)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ports.RepeatedPattern
	for rows.Next() {
		var p ports.RepeatedPattern
		if err := rows.Scan(&p.Pattern, &p.Count); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
