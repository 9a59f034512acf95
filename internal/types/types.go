// Package types holds the shared domain records exchanged between the API
// layer, the session store and the UI. Records are plain data: they are
// replaced wholesale on every fetch, never mutated field by field.
package types

// RoleRestaurantAdmin is the profile role claim that unlocks restaurant
// management (the Add Restaurant page).
const RoleRestaurantAdmin = "restaurant_admin"

// UserProfile is the authenticated user's profile as served by GET /users/me.
type UserProfile struct {
	Username            string   `json:"username"`
	Email               string   `json:"email"`
	DefaultBudget       *int     `json:"defaultBudget,omitempty"`
	HomeAddress         string   `json:"homeAddress,omitempty"`
	FavoriteCuisines    []string `json:"favoriteCuisines,omitempty"`
	DietaryRestrictions []string `json:"dietaryRestrictions,omitempty"`
	Roles               []string `json:"roles,omitempty"`
}

// HasRole reports whether the profile carries the given role claim.
func (p *UserProfile) HasRole(role string) bool {
	if p == nil {
		return false
	}
	for _, r := range p.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// ProfileUpdate is the partial-profile body for PUT /users/me. Zero-valued
// fields are omitted so the server only sees what the user actually changed.
type ProfileUpdate struct {
	FavoriteCuisines    []string `json:"favoriteCuisines,omitempty"`
	DietaryRestrictions []string `json:"dietaryRestrictions,omitempty"`
	DefaultBudget       *int     `json:"defaultBudget,omitempty"`
	HomeAddress         string   `json:"homeAddress,omitempty"`
}

// Preferences is the preference block collected at registration.
type Preferences struct {
	FavoriteCuisines    []string `json:"favoriteCuisines,omitempty"`
	DietaryRestrictions []string `json:"dietaryRestrictions,omitempty"`
	DefaultBudget       *int     `json:"defaultBudget,omitempty"`
	HomeAddress         string   `json:"homeAddress,omitempty"`
}

// Registration is the body for POST /auth/register.
type Registration struct {
	Username    string      `json:"username"`
	Email       string      `json:"email"`
	Password    string      `json:"password"`
	Preferences Preferences `json:"preferences"`
}

// Credentials is the body for POST /auth/login.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// RestaurantRecord is a normalized, render-ready restaurant. It is derived
// from whatever shape the server returned and carries no identity across
// queries. Optional fields are pointers so "absent" survives normalization.
type RestaurantRecord struct {
	Name           string
	Location       string
	PriceMin       float64
	PriceMax       *float64
	Rating         *float64
	Description    string
	DistanceKm     *float64
	Latitude       *float64
	Longitude      *float64
	Cuisines       []string
	DietaryOptions []string
	OccasionTags   []string
	AmbienceTags   []string
	RelevanceScore *float64
}

// Session is a snapshot of the client's authentication state. User is
// non-nil only when Token is non-empty and has been validated by a
// successful profile fetch.
type Session struct {
	Token string
	User  *UserProfile
}

// Authenticated reports whether the session holds a validated identity.
func (s Session) Authenticated() bool {
	return s.Token != ""
}

// Position is a geographic coordinate pair from the geolocation collaborator.
type Position struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}
