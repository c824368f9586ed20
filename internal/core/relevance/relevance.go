// Package relevance scores retrieved facts against the query so off-topic
// evidence never reaches the aggregator. Scoring is deterministic for fixed
// inputs; the optional embedding term only applies when an embedder is
// configured.
package relevance

import (
	"context"
	"log/slog"
	"strings"

	"gonum.org/v1/gonum/floats"

	"github.com/agenthands/pyrite/internal/core/model"
	"github.com/agenthands/pyrite/internal/llm"
)

const (
	lexicalWeight  = 0.6
	skuBonusWeight = 0.4
)

// Scorer filters fact batches by relevance to the raw query.
type Scorer struct {
	MinRelevance float64
	Embedder     llm.EmbedderClient
}

func NewScorer(minRelevance float64, embedder llm.EmbedderClient) *Scorer {
	return &Scorer{MinRelevance: minRelevance, Embedder: embedder}
}

// Score rates one fact against the query in [0,1]: token overlap (Jaccard)
// weighted 0.6 plus an exact SKU mention bonus weighted 0.4. With an
// embedder configured the lexical score is blended 50/50 with cosine
// similarity of the two texts.
func (s *Scorer) Score(ctx context.Context, query string, f model.Fact) float64 {
	factText := f.String()
	score := lexicalWeight*jaccard(tokens(query), tokens(factText)) + skuBonusWeight*skuBonus(query, f)

	if s.Embedder != nil {
		if cos, ok := s.cosine(ctx, query, factText); ok {
			score = 0.5*score + 0.5*cos
		}
	}

	if score > 1 {
		score = 1
	}
	return score
}

// Filter drops facts scoring below MinRelevance. The surviving facts keep
// their batch order; ranking is the aggregator's job.
func (s *Scorer) Filter(ctx context.Context, query string, facts []model.Fact) []model.Fact {
	if s == nil || s.MinRelevance <= 0 {
		return facts
	}

	kept := facts[:0:0]
	for _, f := range facts {
		if s.Score(ctx, query, f) >= s.MinRelevance {
			kept = append(kept, f)
		}
	}
	return kept
}

func (s *Scorer) cosine(ctx context.Context, query, factText string) (float64, bool) {
	qv, err := s.Embedder.Embed(ctx, query)
	if err != nil {
		slog.Debug("embedding failed, lexical score only", "error", err)
		return 0, false
	}
	fv, err := s.Embedder.Embed(ctx, factText)
	if err != nil || len(qv) != len(fv) || len(qv) == 0 {
		return 0, false
	}

	q64 := toFloat64(qv)
	f64 := toFloat64(fv)

	qn := floats.Norm(q64, 2)
	fn := floats.Norm(f64, 2)
	if qn == 0 || fn == 0 {
		return 0, false
	}
	cos := floats.Dot(q64, f64) / (qn * fn)
	if cos < 0 {
		cos = 0
	}
	return cos, true
}

func toFloat64(v []float32) []float64 {
	out := make([]float64, len(v))
	for i, x := range v {
		out[i] = float64(x)
	}
	return out
}

func tokens(text string) map[string]bool {
	set := map[string]bool{}
	for _, tok := range strings.Fields(strings.ToLower(text)) {
		tok = strings.Trim(tok, ".,;:!?()[]\"'")
		if len(tok) > 1 {
			set[tok] = true
		}
	}
	return set
}

func jaccard(a, b map[string]bool) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	intersection := 0
	for tok := range a {
		if b[tok] {
			intersection++
		}
	}
	union := len(a) + len(b) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

// skuBonus is 1 when the fact carries a SKU the query literally mentions.
func skuBonus(query string, f model.Fact) float64 {
	querySKUs := model.SKUTokens(query)
	if len(querySKUs) == 0 {
		return 0
	}
	for _, sku := range querySKUs {
		if strings.EqualFold(sku, f.Subject) || strings.EqualFold(sku, f.Object) {
			return 1
		}
	}
	return 0
}
