// Package router is the page state machine. It owns the single
// authoritative current-page variable; Goto is the only writer. The UI
// layer executes whatever load a transition names — the router itself
// performs no I/O.
package router

import (
	"go.uber.org/zap"

	"platefinder/internal/types"
)

// Page is one of the client's logical pages. Exactly one is visible at any
// instant.
type Page int

const (
	Home Page = iota
	Login
	Register
	Profile
	Feed
	AddRestaurant
)

func (p Page) String() string {
	switch p {
	case Home:
		return "home"
	case Login:
		return "login"
	case Register:
		return "register"
	case Profile:
		return "profile"
	case Feed:
		return "feed"
	case AddRestaurant:
		return "add-restaurant"
	default:
		return "unknown"
	}
}

// LoadKind names the data load a page requires on entry.
type LoadKind int

const (
	LoadNone LoadKind = iota
	LoadProfile
	LoadFeed
)

// SessionReader is the router's view of the session store.
type SessionReader interface {
	IsAuthenticated() bool
	Current() types.Session
	DetectedCity() string
}

// Transition is the result of a Goto. To is where the router actually went;
// Redirected is set when a gate diverted the request. PrefillLocation
// carries the cached detected city, handed out at most once, for the
// Register page (the form applies it only to an empty field).
type Transition struct {
	Requested       Page
	To              Page
	Load            LoadKind
	Redirected      bool
	PrefillLocation string
}

// Router tracks the visible page.
type Router struct {
	current   Page
	session   SessionReader
	prefilled bool
	logger    *zap.Logger
}

// New creates a router starting on Home.
func New(session SessionReader, logger *zap.Logger) *Router {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Router{current: Home, session: session, logger: logger}
}

// Current returns the visible page.
func (r *Router) Current() Page {
	return r.current
}

// Goto transitions to target, applying the gating rules:
//   - Profile and Feed require an authenticated session; otherwise the
//     transition lands on Login instead (never a silent no-op).
//   - AddRestaurant additionally requires the restaurant-admin role claim,
//     re-evaluated against the current session on every attempt; an
//     authenticated non-admin is sent Home.
//   - Entering Profile or Feed names the data load the UI must trigger.
func (r *Router) Goto(target Page) Transition {
	tr := Transition{Requested: target, To: target}

	switch target {
	case Profile, Feed:
		if !r.session.IsAuthenticated() {
			tr.To = Login
			tr.Redirected = true
		}
	case AddRestaurant:
		if !r.session.IsAuthenticated() {
			tr.To = Login
			tr.Redirected = true
		} else if !r.session.Current().User.HasRole(types.RoleRestaurantAdmin) {
			tr.To = Home
			tr.Redirected = true
		}
	}

	switch tr.To {
	case Profile:
		tr.Load = LoadProfile
	case Feed:
		tr.Load = LoadFeed
	case Register:
		if !r.prefilled {
			if city := r.session.DetectedCity(); city != "" {
				tr.PrefillLocation = city
				r.prefilled = true
			}
		}
	}

	if tr.Redirected {
		r.logger.Info("transition redirected",
			zap.Stringer("requested", tr.Requested),
			zap.Stringer("to", tr.To))
	}

	r.current = tr.To
	return tr
}

// CanManageRestaurants reports whether the Add Restaurant entry should be
// offered at all. Purely advisory for nav rendering — Goto re-checks on
// every transition regardless.
func (r *Router) CanManageRestaurants() bool {
	return r.session.IsAuthenticated() &&
		r.session.Current().User.HasRole(types.RoleRestaurantAdmin)
}
