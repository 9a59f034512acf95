package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"platefinder/internal/types"
)

// SuggestQuery carries the quick-search parameters. Location fields are
// attached only when a position is known; DetectedCity only when cached.
type SuggestQuery struct {
	Query         string
	MaxDistanceKm *float64
	Position      *types.Position
	DetectedCity  string
}

// Login exchanges credentials for a bearer token.
func (c *Client) Login(ctx context.Context, creds types.Credentials) (string, error) {
	var resp struct {
		Token string `json:"token"`
	}
	err := c.CallInto(ctx, "/auth/login", CallOptions{Method: http.MethodPost, Body: creds}, &resp)
	if err != nil {
		return "", err
	}
	if resp.Token == "" {
		return "", &Error{Status: 0, Message: "login response carried no token"}
	}
	return resp.Token, nil
}

// Register creates a new account with its preference block.
func (c *Client) Register(ctx context.Context, reg types.Registration) error {
	return c.CallInto(ctx, "/auth/register", CallOptions{Method: http.MethodPost, Body: reg}, nil)
}

// Me fetches the authenticated user's profile.
func (c *Client) Me(ctx context.Context) (*types.UserProfile, error) {
	var profile types.UserProfile
	err := c.CallInto(ctx, "/users/me", CallOptions{RequiresAuth: true}, &profile)
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

// UpdateMe applies a partial profile update and returns the replacement
// profile served by the API.
func (c *Client) UpdateMe(ctx context.Context, update types.ProfileUpdate) (*types.UserProfile, error) {
	var profile types.UserProfile
	err := c.CallInto(ctx, "/users/me", CallOptions{Method: http.MethodPut, Body: update, RequiresAuth: true}, &profile)
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

// Suggest runs the quick search. The payload shape varies by server version,
// so the raw parsed body is returned for the normalizer.
func (c *Client) Suggest(ctx context.Context, q SuggestQuery) (any, error) {
	values := url.Values{}
	values.Set("query", q.Query)
	if q.MaxDistanceKm != nil {
		values.Set("maxDistanceKm", formatFloat(*q.MaxDistanceKm))
	}
	if q.Position != nil {
		values.Set("userLat", formatFloat(q.Position.Latitude))
		values.Set("userLon", formatFloat(q.Position.Longitude))
	}
	if q.DetectedCity != "" {
		values.Set("detectedCity", q.DetectedCity)
	}
	return c.Call(ctx, "/restaurants/suggest?"+values.Encode(), CallOptions{})
}

// Filter runs the guided filter query. values must already have empty
// fields stripped (see the search package).
func (c *Client) Filter(ctx context.Context, values url.Values) (any, error) {
	path := "/restaurants/filter"
	if encoded := values.Encode(); encoded != "" {
		path += "?" + encoded
	}
	return c.Call(ctx, path, CallOptions{})
}

// Feed fetches the personalized feed for the authenticated user.
func (c *Client) Feed(ctx context.Context) (any, error) {
	return c.Call(ctx, "/feed", CallOptions{RequiresAuth: true})
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
