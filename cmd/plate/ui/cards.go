package ui

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"platefinder/internal/types"
)

// NoResultsMessage is shown instead of an empty container so the UI never
// looks broken next to a loading state.
const NoResultsMessage = "No restaurants found matching your criteria."

// RenderCards renders a normalized result sequence as display cards. It is
// a pure function of its input: no network, no session, no global state.
func RenderCards(records []types.RestaurantRecord, styles Styles) string {
	if len(records) == 0 {
		return styles.Card.Render(styles.Muted.Render(NoResultsMessage))
	}

	cards := make([]string, 0, len(records))
	for _, rec := range records {
		cards = append(cards, RenderCard(rec, styles))
	}
	return strings.Join(cards, "\n")
}

// RenderCard renders a single restaurant card with the documented fallbacks.
func RenderCard(rec types.RestaurantRecord, styles Styles) string {
	var sb strings.Builder

	name := rec.Name
	if name == "" {
		name = "Unknown Restaurant"
	}
	sb.WriteString(styles.Title.Render(name))
	sb.WriteString("\n")

	location := rec.Location
	if location == "" {
		location = "Not specified"
	}
	sb.WriteString(fmt.Sprintf("%s %s\n", styles.Bold.Render("Location:"), location))

	priceMax := "N/A"
	if rec.PriceMax != nil {
		priceMax = formatNumber(*rec.PriceMax)
	}
	sb.WriteString(fmt.Sprintf("%s %s - %s\n",
		styles.Bold.Render("Price Range:"), formatNumber(rec.PriceMin), priceMax))

	if rec.Rating != nil {
		sb.WriteString(fmt.Sprintf("%s %s/5\n", styles.Bold.Render("Rating:"), formatNumber(*rec.Rating)))
	}
	if rec.Description != "" {
		sb.WriteString(fmt.Sprintf("%s %s\n", styles.Bold.Render("Description:"), rec.Description))
	}
	if rec.DistanceKm != nil {
		sb.WriteString(fmt.Sprintf("%s %s km\n", styles.Bold.Render("Distance:"), formatNumber(*rec.DistanceKm)))
	}

	if tags := renderTagGroups(rec, styles); tags != "" {
		sb.WriteString(tags)
		sb.WriteString("\n")
	}

	if rec.RelevanceScore != nil {
		sb.WriteString(styles.Score.Render(fmt.Sprintf("Match Score: %d%%", MatchPercent(*rec.RelevanceScore))))
		sb.WriteString("\n")
	}

	sb.WriteString(styles.Muted.Render("Map: " + MapURL(rec)))

	return styles.Card.Render(sb.String())
}

// MatchPercent converts a 0-10 relevance score to a displayed percentage.
// The x10 scale factor is fixed: scores arrive on a 0-10 scale.
func MatchPercent(score float64) int {
	return int(math.Round(score * 10))
}

// MapURL derives a navigation link from the record's coordinates. Missing
// coordinates default to 0.0 — a known degenerate link, preferred over no
// link at all.
func MapURL(rec types.RestaurantRecord) string {
	lat, lon := 0.0, 0.0
	if rec.Latitude != nil {
		lat = *rec.Latitude
	}
	if rec.Longitude != nil {
		lon = *rec.Longitude
	}
	return fmt.Sprintf("https://www.openstreetmap.org/?mlat=%s&mlon=%s",
		formatNumber(lat), formatNumber(lon))
}

// FormatTag turns snake_case server tags into display form:
// "date_night" -> "Date Night".
func FormatTag(tag string) string {
	words := strings.Split(strings.ReplaceAll(tag, "_", " "), " ")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

func renderTagGroups(rec types.RestaurantRecord, styles Styles) string {
	var parts []string
	appendGroup := func(tags []string, style lipgloss.Style) {
		for _, tag := range tags {
			parts = append(parts, style.Render("["+FormatTag(tag)+"]"))
		}
	}
	appendGroup(rec.Cuisines, styles.CuisineTag)
	appendGroup(rec.DietaryOptions, styles.DietaryTag)
	appendGroup(rec.OccasionTags, styles.Tag)
	appendGroup(rec.AmbienceTags, styles.Tag)
	return strings.Join(parts, " ")
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
