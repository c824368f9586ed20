// Package arbiter produces the two answer candidates and picks the one to
// return: a graph-free baseline and a graph-enhanced answer conditioned on
// the frozen context. Selection is a deterministic heuristic; the language
// model only generates, it never judges.
package arbiter

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/agenthands/pyrite/internal/core/aggregate"
	"github.com/agenthands/pyrite/internal/core/model"
	"github.com/agenthands/pyrite/internal/errs"
	"github.com/agenthands/pyrite/internal/llm"
)

const baselinePrompt = `You are a senior fire alarm systems engineer. Answer the question directly and practically.

Question: %s

After the answer, include a bill of quantities as a fenced JSON array:
` + "```json" + `
[{"sku": "...", "description": "...", "quantity": 1, "unit": "ea", "notes": "..."}]
` + "```"

const enhancedPrompt = `You are a senior fire alarm systems engineer. Answer using ONLY the verified product evidence below; reference exact SKUs from it.

Question: %s

Verified evidence from the product knowledge graph:
%s

Provide the technical answer, compatibility notes, and a bill of quantities as a fenced JSON array:
` + "```json" + `
[{"sku": "...", "description": "...", "quantity": 1, "unit": "ea", "notes": "..."}]
` + "```"

// Selection is the arbitration outcome: the chosen candidate plus both
// candidates for result metadata. A nil candidate means that generation
// path produced nothing.
type Selection struct {
	Selected model.AnswerCandidate
	Baseline *model.AnswerCandidate
	Enhanced *model.AnswerCandidate
}

func (s Selection) BaselineScore() float64 {
	if s.Baseline == nil {
		return 0
	}
	return s.Baseline.Score
}

func (s Selection) EnhancedScore() float64 {
	if s.Enhanced == nil {
		return 0
	}
	return s.Enhanced.Score
}

type Arbiter struct {
	LLM llm.LLMClient
}

func NewArbiter(client llm.LLMClient) *Arbiter {
	return &Arbiter{LLM: client}
}

// Arbitrate generates both candidates, scores them against the frozen
// context and selects the winner. The enhanced path is skipped on an empty
// context. Both generations failing is fatal; one failing leaves the other
// as the sole candidate.
func (a *Arbiter) Arbitrate(ctx context.Context, rawQuery string, cs *aggregate.ContextSet) (Selection, error) {
	var sel Selection

	baselineText, baseErr := a.LLM.Generate(ctx, fmt.Sprintf(baselinePrompt, rawQuery))
	if baseErr != nil {
		slog.WarnContext(ctx, "baseline generation failed", "error", baseErr)
	} else {
		score, supporting := scoreCandidate(baselineText, cs)
		sel.Baseline = &model.AnswerCandidate{
			Text:            baselineText,
			SupportingFacts: supporting,
			Origin:          model.OriginBaseline,
			Score:           score,
		}
	}

	var enhErr error
	if cs != nil && cs.Size() > 0 {
		var enhancedText string
		enhancedText, enhErr = a.LLM.Generate(ctx, fmt.Sprintf(enhancedPrompt, rawQuery, renderEvidence(cs)))
		if enhErr != nil {
			slog.WarnContext(ctx, "enhanced generation failed", "error", enhErr)
		} else {
			score, supporting := scoreCandidate(enhancedText, cs)
			sel.Enhanced = &model.AnswerCandidate{
				Text:            enhancedText,
				SupportingFacts: supporting,
				Origin:          model.OriginGraphEnhanced,
				Score:           score,
			}
		}
	}

	if sel.Baseline == nil && sel.Enhanced == nil {
		err := fmt.Errorf("%w: baseline: %v, enhanced: %v", errs.ErrNoCandidates, baseErr, enhErr)
		return Selection{}, errs.Arbiter("arbiter.Arbitrate", err)
	}

	// Higher score wins; ties favor the enhanced candidate, which is
	// strictly informed by verified facts.
	switch {
	case sel.Enhanced == nil:
		sel.Selected = *sel.Baseline
	case sel.Baseline == nil:
		sel.Selected = *sel.Enhanced
	case sel.Baseline.Score > sel.Enhanced.Score:
		sel.Selected = *sel.Baseline
	default:
		sel.Selected = *sel.Enhanced
	}
	return sel, nil
}

// renderEvidence lays the ranked facts out as an evidence block, highest
// confidence first.
func renderEvidence(cs *aggregate.ContextSet) string {
	var b strings.Builder
	for _, f := range cs.Facts() {
		fmt.Fprintf(&b, "- %s %s %s (confidence %.2f, via %s)\n",
			f.Subject, f.Predicate, f.Object, f.Confidence, f.Strategy)
	}
	return b.String()
}

// scoreCandidate rates an answer by its concrete checkable claims: SKU
// tokens (weight 2) and relation phrases (weight 1) found in the text,
// scored by the share also present in the context. No claims, or no
// supporting facts at all, scores 0.
func scoreCandidate(text string, cs *aggregate.ContextSet) (float64, []model.Fact) {
	if cs == nil || cs.Size() == 0 {
		return 0, nil
	}

	facts := cs.Facts()
	known := map[string]bool{}
	predicates := map[string]bool{}
	for _, f := range facts {
		known[strings.ToLower(f.Subject)] = true
		known[strings.ToLower(f.Object)] = true
		predicates[strings.ToLower(f.Predicate)] = true
	}

	total, matched := 0.0, 0.0
	matchedSKUs := map[string]bool{}
	for _, sku := range model.SKUTokens(text) {
		total += 2
		if known[strings.ToLower(sku)] {
			matched += 2
			matchedSKUs[strings.ToLower(sku)] = true
		}
	}

	textLower := strings.ToLower(text)
	for _, et := range model.EdgeTypes() {
		phrase := strings.ToLower(string(et))
		spaced := strings.ReplaceAll(phrase, "_", " ")
		if !strings.Contains(textLower, phrase) && !strings.Contains(textLower, spaced) {
			continue
		}
		total++
		if predicates[phrase] {
			matched++
		}
	}

	if total == 0 {
		return 0, nil
	}

	var supporting []model.Fact
	for _, f := range facts {
		if matchedSKUs[strings.ToLower(f.Subject)] || matchedSKUs[strings.ToLower(f.Object)] {
			supporting = append(supporting, f)
		}
	}
	return matched / total, supporting
}
