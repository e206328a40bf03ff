package reasoning

import (
	"context"

	"github.com/mneme-ai/organism/internal/logging"
	"github.com/mneme-ai/organism/internal/ports"
)

// extractedFact is a single (subject, predicate, object) triple recovered
// from a conversation turn.
type extractedFact struct {
	Subject    string  `json:"subject"`
	Predicate  string  `json:"predicate"`
	Object     string  `json:"object"`
	Confidence float32 `json:"confidence"`
}

type extractionResponse struct {
	Facts []extractedFact `json:"facts"`
}

const extractionSystemPrompt = `You extract factual information from a conversation exchange.

Rules:
1. Only extract facts explicitly stated, never infer.
2. "subject" is usually "user" or a named person.
3. "predicate" is a short verb phrase such as "likes", "lives in", "is", "dislikes", "has".
4. "object" is the concrete content of the fact.
5. "confidence" reflects how directly it was stated: direct statement = 0.9, hedged = 0.5, implied = 0.3.
6. If there is nothing to extract, return an empty array.
7. Do not extract pleasantries, greetings, or emotional expressions.

Respond in JSON:
{"facts": [{"subject": "user", "predicate": "likes", "object": "cats", "confidence": 0.9}]}`

// extractFacts makes a small, low-temperature LLM call to pull factual
// triples out of one user/assistant exchange. Failures (network, parse) are
// non-fatal: it logs and returns an empty slice rather than erroring.
func extractFacts(ctx context.Context, client ports.LlmClient, cfg Config, userText, assistantReply string) []extractedFact {
	if len(userText) < 5 {
		return nil
	}

	conversation := "user: " + userText + "\nreply: " + assistantReply
	messages := []ports.Message{{
		Role:    "user",
		Content: []ports.ContentBlock{{Type: "text", Text: conversation}},
	}}

	params := ports.CompletionParams{MaxTokens: cfg.ExtractionMaxTokens, Temperature: cfg.ExtractionTemperature}
	resp, err := client.Complete(ctx, extractionSystemPrompt, messages, nil, params)
	if err != nil {
		logging.Warn("reasoning", "fact extraction failed (non-fatal): %v", err)
		return nil
	}

	text := concatText(resp.Content)
	var parsed extractionResponse
	if !parseLenientJSON(text, &parsed) {
		logging.Debug("reasoning", "could not parse extraction response: %s", logging.Truncate(text, 200))
		return nil
	}

	valid := make([]extractedFact, 0, len(parsed.Facts))
	for _, f := range parsed.Facts {
		if f.Confidence == 0 {
			f.Confidence = 0.7
		}
		if f.Subject == "" || f.Predicate == "" || f.Object == "" {
			continue
		}
		if f.Confidence <= 0 || f.Confidence > 1 {
			continue
		}
		valid = append(valid, f)
	}
	return valid
}

// storeExtractedFacts persists every valid fact via the memory collaborator,
// logging (not failing) any individual store error.
func storeExtractedFacts(ctx context.Context, mem ports.Memory, facts []extractedFact) {
	for _, f := range facts {
		if err := mem.StoreFact(ctx, f.Subject, f.Predicate, f.Object, f.Confidence); err != nil {
			logging.Error("reasoning", "failed to store extracted fact: %v", err)
		}
	}
}

func concatText(blocks []ports.ContentBlock) string {
	var out string
	for _, b := range blocks {
		if b.Type == "text" {
			out += b.Text
		}
	}
	return out
}
