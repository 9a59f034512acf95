package ui

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"platefinder/internal/types"
)

func fp(f float64) *float64 { return &f }

func TestRenderCards_EmptyShowsPlaceholder(t *testing.T) {
	out := RenderCards(nil, PlainStyles())
	assert.Contains(t, out, NoResultsMessage)

	out = RenderCards([]types.RestaurantRecord{}, PlainStyles())
	assert.Contains(t, out, NoResultsMessage)
}

func TestRenderCard_Fallbacks(t *testing.T) {
	// A record with only a name must render with every documented fallback
	// and never panic.
	out := RenderCard(types.RestaurantRecord{Name: "X"}, PlainStyles())

	assert.Contains(t, out, "X")
	assert.Contains(t, out, "Not specified")
	assert.Contains(t, out, "0 - N/A")
	assert.NotContains(t, out, "Rating:")
	assert.NotContains(t, out, "Match Score")
}

func TestRenderCard_EmptyNameFallback(t *testing.T) {
	out := RenderCard(types.RestaurantRecord{}, PlainStyles())
	assert.Contains(t, out, "Unknown Restaurant")
}

func TestRenderCard_FullRecord(t *testing.T) {
	rec := types.RestaurantRecord{
		Name:           "Taverna",
		Location:       "Old Town",
		PriceMin:       10,
		PriceMax:       fp(30),
		Rating:         fp(4.5),
		Description:    "Cosy corner spot",
		DistanceKm:     fp(1.2),
		Cuisines:       []string{"greek"},
		DietaryOptions: []string{"vegetarian_friendly"},
		OccasionTags:   []string{"date_night"},
		AmbienceTags:   []string{"quiet"},
	}

	out := RenderCard(rec, PlainStyles())
	assert.Contains(t, out, "Taverna")
	assert.Contains(t, out, "10 - 30")
	assert.Contains(t, out, "4.5/5")
	assert.Contains(t, out, "Cosy corner spot")
	assert.Contains(t, out, "1.2 km")
	assert.Contains(t, out, "[Greek]")
	assert.Contains(t, out, "[Vegetarian Friendly]")
	assert.Contains(t, out, "[Date Night]")
	assert.Contains(t, out, "[Quiet]")
}

func TestMatchPercent(t *testing.T) {
	// 7.5 on the 0-10 scale displays as 75%.
	assert.Equal(t, 75, MatchPercent(7.5))
	assert.Equal(t, 100, MatchPercent(10))
	assert.Equal(t, 0, MatchPercent(0))
	assert.Equal(t, 46, MatchPercent(4.6))
}

func TestRenderCard_MatchScoreLine(t *testing.T) {
	out := RenderCard(types.RestaurantRecord{Name: "X", RelevanceScore: fp(7.5)}, PlainStyles())
	assert.Contains(t, out, "Match Score: 75%")
}

func TestMapURL(t *testing.T) {
	rec := types.RestaurantRecord{Latitude: fp(48.85), Longitude: fp(2.35)}
	assert.Equal(t, "https://www.openstreetmap.org/?mlat=48.85&mlon=2.35", MapURL(rec))

	// Missing coordinates degrade to the acknowledged 0.0 link.
	assert.Equal(t, "https://www.openstreetmap.org/?mlat=0&mlon=0", MapURL(types.RestaurantRecord{}))
}

func TestFormatTag(t *testing.T) {
	assert.Equal(t, "Date Night", FormatTag("date_night"))
	assert.Equal(t, "Vegan", FormatTag("vegan"))
	assert.Equal(t, "Late Night Eats", FormatTag("late_night_eats"))
	assert.Equal(t, "", FormatTag(""))
}

func TestRenderCards_OnePerRecord(t *testing.T) {
	records := []types.RestaurantRecord{{Name: "A"}, {Name: "B"}, {Name: "C"}}
	out := RenderCards(records, PlainStyles())

	for _, name := range []string{"A", "B", "C"} {
		assert.Contains(t, out, name)
	}
	// Order preserved.
	assert.Less(t, strings.Index(out, "A"), strings.Index(out, "B"))
	assert.Less(t, strings.Index(out, "B"), strings.Index(out, "C"))
}
