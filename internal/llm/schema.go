package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/agenthands/pyrite/internal/errs"
)

// Complete runs the prompt and validates the first JSON object of the model
// output against the caller's JSON Schema. Non-conforming output is an
// error, never silently coerced.
func Complete(ctx context.Context, client LLMClient, prompt, schema string) (json.RawMessage, error) {
	response, err := client.Generate(ctx, prompt)
	if err != nil {
		return nil, err
	}

	jsonStr, err := extractObject(response)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrSchemaMismatch, err)
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(schema),
		gojsonschema.NewStringLoader(jsonStr),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrSchemaMismatch, err)
	}
	if !result.Valid() {
		var msgs []string
		for _, desc := range result.Errors() {
			msgs = append(msgs, fmt.Sprintf("%s: %s", desc.Field(), desc.Description()))
		}
		return nil, fmt.Errorf("%w: %s", errs.ErrSchemaMismatch, strings.Join(msgs, "; "))
	}

	return json.RawMessage(jsonStr), nil
}

// extractObject slices the first '{' through the last '}' out of model
// output, tolerating surrounding prose and markdown fences.
func extractObject(response string) (string, error) {
	start := strings.Index(response, "{")
	end := strings.LastIndex(response, "}")
	if start == -1 || end == -1 || end < start {
		return "", fmt.Errorf("no JSON object found in response")
	}
	return response[start : end+1], nil
}
