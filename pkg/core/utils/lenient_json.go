// Package utils provides small shared helpers: lenient JSON parsing for
// scraped and hand-written payloads, and markdown cleanup for generated
// narrative text.
package utils

import (
	"encoding/json"
	"fmt"
	"strings"

	jsonrepair "github.com/RealAlexandreAI/json-repair"
	hjson "github.com/hjson/hjson-go/v4"
)

// RepairJSON fixes common defects in JSON lifted out of quote pages or
// pasted by hand: single quotes, unquoted keys, trailing commas, unclosed
// containers, comments, stray markdown fences.
func RepairJSON(malformed string) (string, error) {
	repaired, err := jsonrepair.RepairJSON(malformed)
	if err != nil {
		return "", fmt.Errorf("json repair failed: %w", err)
	}
	return repaired, nil
}

// ParseHJSONToStruct parses Hjson (human-friendly JSON: comments, unquoted
// keys, optional commas, multiline strings) directly into schema. Manual
// snapshot files and presets are written in Hjson so analysts can annotate
// their assumptions inline.
func ParseHJSONToStruct(data string, schema interface{}) error {
	if err := hjson.Unmarshal([]byte(data), schema); err != nil {
		return fmt.Errorf("hjson unmarshal failed: %w", err)
	}
	return nil
}

// SmartParse tries progressively more lenient strategies to decode input
// into schema:
//
//  1. standard JSON
//  2. Hjson
//  3. JSON repair, then standard JSON
//
// Hjson runs before repair: the repairer happily folds an Hjson document
// into a single quoted string, which would decode as an empty struct and
// shadow the real parse. Repair stays last, for payloads that are broken
// JSON rather than another dialect (truncated bodies, stray fences).
//
// It returns the form that parsed, so callers can persist the normalized
// payload.
func SmartParse(input string, schema interface{}) (string, error) {
	if strings.TrimSpace(input) == "" {
		return "", fmt.Errorf("smart parse failed: empty input")
	}

	if err := json.Unmarshal([]byte(input), schema); err == nil {
		return input, nil
	}

	var loose interface{}
	if err := hjson.Unmarshal([]byte(input), &loose); err == nil && loose != nil {
		normalized, merr := json.Marshal(loose)
		if merr == nil {
			if err := json.Unmarshal(normalized, schema); err == nil {
				return string(normalized), nil
			}
		}
	}

	if repaired, err := RepairJSON(input); err == nil {
		if err := json.Unmarshal([]byte(repaired), schema); err == nil {
			return repaired, nil
		}
	}

	return "", fmt.Errorf("smart parse failed: input is not JSON, Hjson, or repairable JSON")
}
