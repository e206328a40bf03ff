package evaluators

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/mneme-ai/organism/internal/ports"
)

// SocialConfig tunes the proactive-outreach evaluator. Grounded on
// original_source's social.rs SocialTriggerConfig defaults.
type SocialConfig struct {
	Threshold float32       // social_need floor, default 0.75
	Cooldown  time.Duration // default 1h
}

// DefaultSocialConfig returns the specification's documented defaults.
func DefaultSocialConfig() SocialConfig {
	return SocialConfig{Threshold: 0.75, Cooldown: time.Hour}
}

// Social fires a routed Rumination trigger pointing at a recently-contacted
// person when social need crosses Threshold and a contact exists.
type Social struct {
	reader StateReader
	graph  ports.SocialGraph
	cfg    SocialConfig

	lastFiredUnixNano atomic.Int64
}

// NewSocial constructs a Social evaluator using DefaultSocialConfig.
func NewSocial(reader StateReader, graph ports.SocialGraph) *Social {
	return NewSocialWithConfig(reader, graph, DefaultSocialConfig())
}

// NewSocialWithConfig constructs a Social evaluator with an explicit
// Config.
func NewSocialWithConfig(reader StateReader, graph ports.SocialGraph, cfg SocialConfig) *Social {
	return &Social{reader: reader, graph: graph, cfg: cfg}
}

func (s *Social) Evaluate(ctx context.Context) ([]ports.Trigger, error) {
	state := s.reader.Snapshot()
	if state.Fast.SocialNeed < s.cfg.Threshold {
		return nil, nil
	}

	now := time.Now()
	last := s.lastFiredUnixNano.Load()
	if last != 0 && now.Sub(time.Unix(0, last)) < s.cfg.Cooldown {
		return nil, nil
	}

	contacts, err := s.graph.ListRecentContacts(ctx, 5)
	if err != nil {
		return nil, err
	}
	if len(contacts) == 0 {
		return nil, nil
	}
	contact := contacts[0]

	s.lastFiredUnixNano.Store(now.UnixNano())

	route := fmt.Sprintf("person:%s", contact.Person.ID)
	return []ports.Trigger{{
		Kind:           ports.TriggerRumination,
		RuminationKind: "social_outreach",
		Context: fmt.Sprintf(
			"social need is high (%.0f%%); wants to talk with %s. Last seen: %s.",
			state.Fast.SocialNeed*100, contact.Person.Name, contact.LastSeen,
		),
		Route: route,
	}}, nil
}

func (s *Social) Name() string { return "SocialEvaluator" }

var _ ports.TriggerEvaluator = (*Social)(nil)
