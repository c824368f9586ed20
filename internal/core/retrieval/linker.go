package retrieval

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/agenthands/pyrite/internal/config"
	"github.com/agenthands/pyrite/internal/core/aggregate"
	"github.com/agenthands/pyrite/internal/core/model"
	"github.com/agenthands/pyrite/internal/driver"
	"github.com/agenthands/pyrite/internal/errs"
)

const (
	containmentScore = 0.8
	maxMentions      = 25
)

// EntityLinker resolves entity mentions to graph nodes: exact ID match
// first, then fuzzy containment over IDs and names. Each resolved node
// yields a LINKS_TO fact plus one fact per scalar attribute.
type EntityLinker struct {
	store driver.GraphStore
	cfg   config.RetrievalConfig
}

func NewEntityLinker(store driver.GraphStore, cfg config.RetrievalConfig) *EntityLinker {
	return &EntityLinker{store: store, cfg: cfg}
}

func (l *EntityLinker) Name() string            { return "entity_linking" }
func (l *EntityLinker) BaseConfidence() float64 { return EntityLinkingConfidence }

func (l *EntityLinker) Execute(ctx context.Context, analysis model.AnalysisResult, current *aggregate.ContextSet) ([]model.Fact, error) {
	mentions := analysis.EntityMentions
	if len(mentions) > maxMentions {
		mentions = mentions[:maxMentions]
	}

	var facts []model.Fact
	for _, mention := range mentions {
		mention = strings.TrimSpace(mention)
		if mention == "" {
			continue
		}

		node, err := l.store.GetNode(ctx, mention)
		if err != nil {
			return nil, errs.Strategy(l.Name(), err)
		}
		if node != nil {
			facts = append(facts, l.linkFacts(mention, node, EntityLinkingConfidence)...)
			continue
		}

		fuzzy, err := l.fuzzyMatch(ctx, mention)
		if err != nil {
			return nil, errs.Strategy(l.Name(), err)
		}
		for _, match := range fuzzy {
			facts = append(facts, l.linkFacts(mention, match.node, match.score)...)
		}
	}
	return facts, nil
}

// linkFacts emits the LINKS_TO fact and one fact per scalar attribute of the
// resolved node.
func (l *EntityLinker) linkFacts(mention string, node *model.Node, confidence float64) []model.Fact {
	facts := []model.Fact{{
		Subject:    mention,
		Predicate:  model.PredicateLinksTo,
		Object:     node.ID,
		Strategy:   l.Name(),
		Confidence: boost(confidence, mention, node),
	}}

	if node.Name != "" {
		facts = append(facts, model.Fact{
			Subject:    node.ID,
			Predicate:  "name",
			Object:     node.Name,
			Strategy:   l.Name(),
			Confidence: boost(confidence, node.ID, node),
		})
	}
	for attr, value := range node.Attributes {
		rendered, ok := scalar(value)
		if !ok {
			continue
		}
		facts = append(facts, model.Fact{
			Subject:    node.ID,
			Predicate:  attr,
			Object:     rendered,
			Strategy:   l.Name(),
			Confidence: boost(confidence, node.ID, node),
		})
	}
	return facts
}

type fuzzyCandidate struct {
	node  *model.Node
	score float64
}

// fuzzyMatch searches the graph for mention and scores each candidate:
// exact (case-insensitive) 1.0, containment either way 0.8, otherwise a
// character-overlap ratio. Candidates below the threshold are dropped and at
// most CandidateLimit survive.
func (l *EntityLinker) fuzzyMatch(ctx context.Context, mention string) ([]fuzzyCandidate, error) {
	limit := l.cfg.CandidateLimit
	if limit <= 0 {
		limit = 5
	}
	threshold := l.cfg.FuzzyThreshold
	if threshold <= 0 {
		threshold = 0.7
	}

	nodes, err := l.store.SearchNodes(ctx, mention, limit*4)
	if err != nil {
		return nil, err
	}

	var candidates []fuzzyCandidate
	for i := range nodes {
		node := &nodes[i]
		score := matchScore(mention, node)
		if score > threshold {
			candidates = append(candidates, fuzzyCandidate{node: node, score: score})
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})
	if len(candidates) > limit {
		candidates = candidates[:limit]
	}
	return candidates, nil
}

func matchScore(mention string, node *model.Node) float64 {
	mentionLower := strings.ToLower(mention)

	score := 0.0
	for _, value := range []string{node.ID, node.Name} {
		if value == "" {
			continue
		}
		valueLower := strings.ToLower(value)

		if valueLower == mentionLower {
			return 1.0
		}
		if strings.Contains(valueLower, mentionLower) || strings.Contains(mentionLower, valueLower) {
			if containmentScore > score {
				score = containmentScore
			}
			continue
		}
		if overlap := charOverlap(mentionLower, valueLower); overlap > score {
			score = overlap
		}
	}
	return score
}

func charOverlap(a, b string) float64 {
	setA := map[rune]bool{}
	for _, r := range a {
		setA[r] = true
	}
	common := 0
	seen := map[rune]bool{}
	for _, r := range b {
		if setA[r] && !seen[r] {
			seen[r] = true
			common++
		}
	}
	longest := len([]rune(a))
	if lb := len([]rune(b)); lb > longest {
		longest = lb
	}
	if longest == 0 {
		return 0
	}
	return float64(common) / float64(longest)
}

func scalar(v interface{}) (string, bool) {
	switch val := v.(type) {
	case string:
		if val == "" {
			return "", false
		}
		return val, true
	case bool:
		return fmt.Sprintf("%t", val), true
	case int, int32, int64:
		return fmt.Sprintf("%d", val), true
	case float32, float64:
		return strings.TrimSuffix(strings.TrimRight(fmt.Sprintf("%f", val), "0"), "."), true
	default:
		return "", false
	}
}
