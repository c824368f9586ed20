// Package analyze decomposes the user query plus accumulated context into
// entity mentions, structured query intents and a stop/continue signal. The
// language model does the understanding; a rule-based pass keeps literal
// part numbers alive when the model misses them.
package analyze

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/agenthands/pyrite/internal/core/aggregate"
	"github.com/agenthands/pyrite/internal/core/model"
	"github.com/agenthands/pyrite/internal/errs"
	"github.com/agenthands/pyrite/internal/llm"
)

// ResponseSchema is the JSON Schema every analysis completion must satisfy.
// entities and intents are required; continue defaults to true when absent.
const ResponseSchema = `{
	"type": "object",
	"required": ["entities", "intents"],
	"properties": {
		"entities": {"type": "array", "items": {"type": "string"}},
		"intents": {
			"type": "array",
			"items": {
				"type": "object",
				"properties": {
					"description": {"type": "string"},
					"node_type": {"type": "string"},
					"attributes": {"type": "object"},
					"relation": {"type": "string"}
				}
			}
		},
		"continue": {"type": "boolean"}
	}
}`

const promptTemplate = `You are analyzing a fire alarm system design question against a product knowledge graph.

Graph node types: Panel, Module, InternalModule, Device, Base.
Graph relation types: COMPATIBLE_WITH, HAS_INTERNAL_MODULE, REQUIRES_BASE, COMPATIBLE_WITH_BASE, REQUIRES, ALTERNATIVE_TO.

Question: %s
%s
Identify product mentions (SKUs or product names) and the structured graph lookups that would answer the question.
Set "continue" to false only when the evidence gathered so far already covers the question.

Respond with JSON only:
{
  "entities": ["mention", ...],
  "intents": [{"description": "...", "node_type": "Panel", "attributes": {"capacity": 318}, "relation": "HAS_INTERNAL_MODULE"}, ...],
  "continue": true
}`

const correctiveInstruction = `

Your previous response did not match the required JSON schema. Respond with a single JSON object containing the keys "entities" (array of strings), "intents" (array of objects) and "continue" (boolean). No prose.`

// wire mirrors the completion payload; Continue is a pointer so an absent
// key can default to true.
type wire struct {
	Entities []string            `json:"entities"`
	Intents  []model.QueryIntent `json:"intents"`
	Continue *bool               `json:"continue"`
}

type Analyzer struct {
	LLM llm.LLMClient
}

func NewAnalyzer(client llm.LLMClient) *Analyzer {
	return &Analyzer{LLM: client}
}

// Analyze runs one analysis round. A schema-validation or transport failure
// is retried once with a corrective instruction; a second failure returns a
// degraded empty result with Continue=false alongside the AnalysisError, so
// the controller stops gracefully instead of failing the query.
func (a *Analyzer) Analyze(ctx context.Context, rawQuery string, cs *aggregate.ContextSet) (model.AnalysisResult, error) {
	prompt := fmt.Sprintf(promptTemplate, rawQuery, renderContext(cs))

	result, err := a.complete(ctx, prompt)
	if err != nil {
		slog.DebugContext(ctx, "analysis attempt failed, retrying with corrective instruction", "error", err)
		result, err = a.complete(ctx, prompt+correctiveInstruction)
	}
	if err != nil {
		degraded := model.AnalysisResult{Continue: false}
		degraded.EntityMentions = model.SKUTokens(rawQuery)
		return degraded, errs.Analysis("analyze.Analyze", err)
	}

	result.EntityMentions = seedMentions(rawQuery, result.EntityMentions)
	return result, nil
}

func (a *Analyzer) complete(ctx context.Context, prompt string) (model.AnalysisResult, error) {
	raw, err := llm.Complete(ctx, a.LLM, prompt, ResponseSchema)
	if err != nil {
		return model.AnalysisResult{}, err
	}

	var w wire
	if err := json.Unmarshal(raw, &w); err != nil {
		return model.AnalysisResult{}, fmt.Errorf("%w: %v", errs.ErrSchemaMismatch, err)
	}

	cont := true
	if w.Continue != nil {
		cont = *w.Continue
	}
	return model.AnalysisResult{
		EntityMentions: w.Entities,
		Intents:        w.Intents,
		Continue:       cont,
	}, nil
}

// seedMentions merges SKU-shaped tokens from the raw query into the model's
// mentions, so a literal part number survives an LLM miss.
func seedMentions(rawQuery string, mentions []string) []string {
	seen := map[string]bool{}
	out := make([]string, 0, len(mentions))
	for _, m := range mentions {
		key := strings.ToLower(strings.TrimSpace(m))
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, m)
	}
	for _, sku := range model.SKUTokens(rawQuery) {
		key := strings.ToLower(sku)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, sku)
	}
	return out
}

// renderContext summarizes the highest-ranked facts for the prompt. Empty
// context renders to nothing so the first round stays a plain decomposition.
func renderContext(cs *aggregate.ContextSet) string {
	if cs == nil || cs.Size() == 0 {
		return ""
	}

	facts := cs.Facts()
	if len(facts) > 15 {
		facts = facts[:15]
	}

	var b strings.Builder
	b.WriteString("\nEvidence gathered so far:\n")
	for _, f := range facts {
		fmt.Fprintf(&b, "- %s (confidence %.2f)\n", f.String(), f.Confidence)
	}
	return b.String()
}
