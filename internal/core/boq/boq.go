// Package boq extracts the structured bill-of-quantities from a generated
// answer. The prompts ask for a fenced JSON array; extraction tolerates a
// bare array and an answer carrying no BOQ at all.
package boq

import (
	"encoding/json"
	"strings"

	"github.com/agenthands/pyrite/internal/core/model"
)

// Extract parses the BOQ out of answerText. A missing or unparseable block
// is not an error: callers get an empty BOQ and the prose answer stands on
// its own.
func Extract(answerText string) []model.BOQItem {
	if block, ok := fencedBlock(answerText); ok {
		if items, ok := parseItems(block); ok {
			return items
		}
	}

	// Fall back to the first bare JSON array in the text.
	start := strings.Index(answerText, "[")
	end := strings.LastIndex(answerText, "]")
	if start == -1 || end <= start {
		return nil
	}
	items, _ := parseItems(answerText[start : end+1])
	return items
}

// Prose strips the fenced BOQ block from the answer, leaving the part meant
// for reading.
func Prose(answerText string) string {
	if idx := strings.Index(answerText, "```json"); idx != -1 {
		return strings.TrimSpace(answerText[:idx])
	}
	return strings.TrimSpace(answerText)
}

func fencedBlock(text string) (string, bool) {
	_, after, found := strings.Cut(text, "```json")
	if !found {
		return "", false
	}
	block, _, found := strings.Cut(after, "```")
	if !found {
		return "", false
	}
	return strings.TrimSpace(block), true
}

func parseItems(block string) ([]model.BOQItem, bool) {
	var items []model.BOQItem
	if err := json.Unmarshal([]byte(block), &items); err != nil {
		return nil, false
	}
	return items, true
}
