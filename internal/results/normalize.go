// Package results converts the heterogeneous payload shapes served by the
// restaurant API into one canonical record sequence. The server variously
// returns plain restaurant arrays, ranked {restaurant, score} arrays, a
// {restaurants: [...]} wrapper, or a single restaurant object; everything
// downstream of this package sees only []types.RestaurantRecord.
package results

import (
	"go.uber.org/zap"

	"platefinder/internal/types"
)

// Normalizer decodes raw payloads into renderable records.
type Normalizer struct {
	logger *zap.Logger
}

// New creates a Normalizer. logger may be nil.
func New(logger *zap.Logger) *Normalizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Normalizer{logger: logger}
}

// Normalize maps an arbitrary decoded payload to an ordered record sequence.
// Shapes are tried in priority order; anything unrecognized yields an empty
// sequence. Malformed elements are skipped with a warning — one bad element
// never aborts the batch.
func (n *Normalizer) Normalize(payload any) []types.RestaurantRecord {
	switch v := payload.(type) {
	case []any:
		return n.fromSequence(v)
	case map[string]any:
		// {restaurants: [...]} wrapper around ranked elements.
		if wrapped, ok := v["restaurants"].([]any); ok {
			return n.fromSequence(wrapped)
		}
		// A single restaurant object, not a collection.
		if _, ok := v["name"]; ok {
			if rec, ok := n.element(v); ok {
				return []types.RestaurantRecord{rec}
			}
		}
		return []types.RestaurantRecord{}
	default:
		return []types.RestaurantRecord{}
	}
}

// fromSequence normalizes a payload array, preserving order. Ranked and
// plain elements are both accepted; the ranked wrapper is detected per
// element by its "restaurant" field.
func (n *Normalizer) fromSequence(seq []any) []types.RestaurantRecord {
	records := make([]types.RestaurantRecord, 0, len(seq))
	for i, raw := range seq {
		elem, ok := raw.(map[string]any)
		if !ok {
			n.logger.Warn("skipping non-object result element", zap.Int("index", i))
			continue
		}

		var score *float64
		if inner, ranked := elem["restaurant"]; ranked {
			score = firstFloat(elem, "foodRelevanceScore", "relevanceScore")
			elem, ok = inner.(map[string]any)
			if !ok {
				n.logger.Warn("skipping ranked element with malformed restaurant", zap.Int("index", i))
				continue
			}
		}

		rec, ok := n.element(elem)
		if !ok {
			n.logger.Warn("skipping malformed result element", zap.Int("index", i))
			continue
		}
		rec.RelevanceScore = score
		records = append(records, rec)
	}
	return records
}

// element builds one record from a raw restaurant object. Missing optionals
// map to their declared defaults; a missing name makes the element
// malformed.
func (n *Normalizer) element(m map[string]any) (types.RestaurantRecord, bool) {
	name, ok := asString(m["name"])
	if !ok || name == "" {
		return types.RestaurantRecord{}, false
	}

	rec := types.RestaurantRecord{
		Name:           name,
		Cuisines:       stringSlice(m["cuisines"]),
		DietaryOptions: stringSlice(m["dietaryOptions"]),
		OccasionTags:   stringSlice(m["occasionTags"]),
		AmbienceTags:   stringSlice(m["ambienceTags"]),
	}
	if s, ok := asString(m["location"]); ok {
		rec.Location = s
	}
	if s, ok := asString(m["description"]); ok {
		rec.Description = s
	}
	if f, ok := asFloat(m["priceMin"]); ok {
		rec.PriceMin = f
	}
	rec.PriceMax = floatPtr(m["priceMax"])
	rec.Rating = floatPtr(m["rating"])
	rec.DistanceKm = floatPtr(m["distanceKm"])
	rec.Latitude = floatPtr(m["latitude"])
	rec.Longitude = floatPtr(m["longitude"])
	return rec, true
}

func asString(v any) (string, bool) {
	s, ok := v.(string)
	return s, ok
}

func asFloat(v any) (float64, bool) {
	switch f := v.(type) {
	case float64:
		return f, true
	case int:
		return float64(f), true
	default:
		return 0, false
	}
}

func floatPtr(v any) *float64 {
	if f, ok := asFloat(v); ok {
		return &f
	}
	return nil
}

func firstFloat(m map[string]any, keys ...string) *float64 {
	for _, k := range keys {
		if f, ok := asFloat(m[k]); ok {
			return &f
		}
	}
	return nil
}

func stringSlice(v any) []string {
	raw, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
