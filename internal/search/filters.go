// Package search builds outgoing query parameters for restaurant searches
// and validates user input before any network call is made.
package search

import (
	"net/url"
	"strconv"
	"strings"

	"platefinder/internal/types"
)

// ValidationError rejects malformed user input at the form boundary.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

// Filters is one guided-questionnaire submission. It is constructed fresh
// per submission; zero values mean "not filtered on".
type Filters struct {
	Location       string
	Cuisines       []string
	DietaryOptions []string
	OccasionTags   []string
	MaxPrice       *int
	MaxDistanceKm  *float64
	Position       *types.Position
}

// Values encodes the filters as query parameters. Empty or absent fields
// are omitted entirely — never sent as empty strings or empty lists. Set
// fields repeat their key per element, matching the filter endpoint.
func (f Filters) Values() url.Values {
	values := url.Values{}
	if loc := strings.TrimSpace(f.Location); loc != "" {
		values.Set("location", loc)
	}
	addAll(values, "cuisines", f.Cuisines)
	addAll(values, "dietaryOptions", f.DietaryOptions)
	addAll(values, "occasionTags", f.OccasionTags)
	if f.MaxPrice != nil {
		values.Set("maxPrice", strconv.Itoa(*f.MaxPrice))
	}
	if f.MaxDistanceKm != nil {
		values.Set("maxDistanceKm", strconv.FormatFloat(*f.MaxDistanceKm, 'f', -1, 64))
	}
	if f.Position != nil {
		values.Set("userLat", strconv.FormatFloat(f.Position.Latitude, 'f', -1, 64))
		values.Set("userLon", strconv.FormatFloat(f.Position.Longitude, 'f', -1, 64))
	}
	return values
}

// IsEmpty reports whether no filter at all was supplied.
func (f Filters) IsEmpty() bool {
	return len(f.Values()) == 0
}

func addAll(values url.Values, key string, items []string) {
	for _, item := range items {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			values.Add(key, trimmed)
		}
	}
}

// ValidateQuery checks a quick-search query before it is sent.
func ValidateQuery(query string) (string, error) {
	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		return "", &ValidationError{Field: "query", Message: "search query must not be empty"}
	}
	return trimmed, nil
}

// ParseMaxPrice converts the questionnaire's price field. Blank input means
// no limit; non-numeric or negative input is rejected.
func ParseMaxPrice(input string) (*int, error) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(trimmed)
	if err != nil || n < 0 {
		return nil, &ValidationError{Field: "maxPrice", Message: "must be a non-negative number"}
	}
	return &n, nil
}

// ParseMaxDistance converts the questionnaire's distance field. Blank input
// means no limit.
func ParseMaxDistance(input string) (*float64, error) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(trimmed, 64)
	if err != nil || f < 0 {
		return nil, &ValidationError{Field: "maxDistanceKm", Message: "must be a non-negative number"}
	}
	return &f, nil
}
