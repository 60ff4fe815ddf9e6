// Package parser recovers the species JSON object from free-form model text.
package parser

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"species-bot/api/internal/species/types"
	"species-bot/api/internal/util"
)

var (
	ErrNoObject  = errors.New("no JSON object in text")
	ErrNotObject = errors.New("JSON value is not an object")
)

// Parse returns the result or nil. It never panics and never returns a partial object.
func Parse(raw string) *types.Result {
	res, _ := ParseErr(raw)
	return res
}

// ParseErr is Parse with the reason for the sentinel as a *types.ParseError.
//
// The full text is tried first; if that fails, the span from the first '{' to
// the last '}' is tried. Several objects in one text are not told apart: the span
// covers all of them and usually fails to decode.
func ParseErr(raw string) (*types.Result, error) {
	res, err := decode(raw)
	if err == nil {
		return res, nil
	}
	if errors.Is(err, ErrNotObject) && json.Valid([]byte(raw)) {
		// Well-formed JSON that is not an object (null, array, string) is not an identification.
		return nil, &types.ParseError{Raw: raw, Err: err}
	}
	first := err

	start := strings.IndexByte(raw, '{')
	end := strings.LastIndexByte(raw, '}')
	if start < 0 || end <= start {
		return nil, &types.ParseError{Raw: raw, Err: errors.Join(first, ErrNoObject)}
	}
	span := raw[start : end+1]
	if n := topLevelValues(span); n > 1 {
		slog.Warn("model output holds several JSON values; using outermost brace span", "values", n)
	}
	res, err = decode(span)
	if err != nil {
		slog.Debug("brace span did not decode", "err", err, "span", util.Truncate(span, 200))
		return nil, &types.ParseError{Raw: raw, Err: err}
	}
	return res, nil
}

func decode(s string) (*types.Result, error) {
	trimmed := strings.TrimSpace(s)
	if !strings.HasPrefix(trimmed, "{") {
		return nil, ErrNotObject
	}
	var obj map[string]any
	if err := json.Unmarshal([]byte(trimmed), &obj); err != nil {
		return nil, err
	}
	return fromObject(obj), nil
}

// fromObject reads each field on its own. A field of the wrong shape is coerced when the
// intent is clear and dropped otherwise, so one bad field never costs the whole result.
func fromObject(obj map[string]any) *types.Result {
	res := &types.Result{}
	if v, ok := obj["most_likely_species"]; ok && v != nil {
		if sp, ok := v.(map[string]any); ok {
			res.Species = &types.SpeciesIdentification{
				ScientificName:   text(sp, "scientific_name"),
				CommonNames:      list(sp, "common_names"),
				BriefDescription: list(sp, "brief_description"),
				ConfidenceLevel:  confidence(sp, "confidence_level"),
			}
		} else {
			dropped("most_likely_species", v)
		}
	}
	res.OverallAppearance = text(obj, "overall_appearance")
	res.DistinguishingFeatures = list(obj, "distinguishing_features")
	res.Habitat = text(obj, "habitat")
	res.GeographicLocation = text(obj, "geographic_location")
	res.AdditionalResources = resources(obj, "links_to_additional_resources")
	return res
}

func text(obj map[string]any, key string) *string {
	switch v := obj[key].(type) {
	case nil:
		return nil
	case string:
		return &v
	default:
		dropped(key, v)
		return nil
	}
}

// list accepts an array of strings or a single string.
func list(obj map[string]any, key string) []string {
	switch v := obj[key].(type) {
	case nil:
		return nil
	case string:
		return []string{v}
	case []any:
		out := make([]string, 0, len(v))
		for _, x := range v {
			if s, ok := x.(string); ok {
				out = append(out, s)
			}
		}
		if len(out) < len(v) {
			dropped(key+"[]", v)
		}
		return out
	default:
		dropped(key, v)
		return nil
	}
}

// confidence accepts a number or a numeric string and drops values outside [0, 1].
func confidence(obj map[string]any, key string) *float64 {
	var f float64
	switch v := obj[key].(type) {
	case nil:
		return nil
	case float64:
		f = v
	case string:
		n, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			dropped(key, v)
			return nil
		}
		f = n
	default:
		dropped(key, v)
		return nil
	}
	if !types.ValidConfidence(f) {
		slog.Warn("confidence_level out of range, ignoring", "value", f)
		return nil
	}
	return &f
}

// resources accepts {title, link} objects and bare URL strings.
func resources(obj map[string]any, key string) []types.Resource {
	v, ok := obj[key]
	if !ok || v == nil {
		return nil
	}
	items, ok := v.([]any)
	if !ok {
		items = []any{v}
	}
	out := make([]types.Resource, 0, len(items))
	for _, it := range items {
		switch x := it.(type) {
		case string:
			out = append(out, types.Resource{Link: x})
		case map[string]any:
			title, _ := x["title"].(string)
			link, _ := x["link"].(string)
			if link == "" {
				link, _ = x["url"].(string)
			}
			out = append(out, types.Resource{Title: title, Link: link})
		default:
			dropped(key+"[]", x)
		}
	}
	return out
}

func dropped(key string, v any) {
	slog.Warn("model output field has unexpected type, ignoring", "field", key, "type", fmt.Sprintf("%T", v))
}

// topLevelValues counts consecutive JSON values in s, stopping at the first syntax error.
func topLevelValues(s string) int {
	dec := json.NewDecoder(bytes.NewReader([]byte(s)))
	n := 0
	for {
		var v json.RawMessage
		if err := dec.Decode(&v); err != nil {
			if errors.Is(err, io.EOF) {
				return n
			}
			return n + 1
		}
		n++
	}
}
