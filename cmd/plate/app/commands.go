package app

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"platefinder/internal/api"
	"platefinder/internal/router"
	"platefinder/internal/search"
	"platefinder/internal/types"
)

const toastDuration = 3 * time.Second

// Completion messages. Every network command resolves to exactly one of
// these, which is what lets Update release the busy indicator
// unconditionally.
type (
	resumeDoneMsg struct {
		profile *types.UserProfile
		err     error
	}
	cityDetectedMsg struct {
		pos  *types.Position
		city string
	}
	loginDoneMsg struct {
		profile *types.UserProfile
		err     error
	}
	registerDoneMsg struct{ err error }
	profileLoadedMsg struct {
		profile *types.UserProfile
		err     error
	}
	profileSavedMsg struct {
		profile *types.UserProfile
		err     error
	}
	searchDoneMsg struct {
		title   string
		records []types.RestaurantRecord
		err     error
	}
	feedDoneMsg struct {
		records []types.RestaurantRecord
		err     error
	}
	toastExpiredMsg struct{ seq int }
)

// resumeCmd replays a persisted token, one attempt only.
func (m *Model) resumeCmd() tea.Cmd {
	return func() tea.Msg {
		profile, err := m.store.Resume(context.Background(), m.client)
		return resumeDoneMsg{profile: profile, err: err}
	}
}

// detectCityCmd runs the best-effort position + city lookup. It is
// background enrichment: it never surfaces errors and does not hold the
// busy indicator.
func (m *Model) detectCityCmd() tea.Cmd {
	return func() tea.Msg {
		pos, err := m.locator.Locate(context.Background())
		if err != nil {
			return cityDetectedMsg{}
		}
		city, err := m.locator.ReverseCity(context.Background(), *pos)
		if err != nil {
			// Position is still useful for distance filtering.
			return cityDetectedMsg{pos: pos}
		}
		return cityDetectedMsg{pos: pos, city: city}
	}
}

// loginCmd runs the login sequence strictly in order: authenticate, then
// validate the token with a profile fetch (inside the store), then publish.
func (m *Model) loginCmd(creds types.Credentials) tea.Cmd {
	return func() tea.Msg {
		token, err := m.client.Login(context.Background(), creds)
		if err != nil {
			return loginDoneMsg{err: err}
		}
		profile, err := m.store.Login(context.Background(), token, m.client)
		return loginDoneMsg{profile: profile, err: err}
	}
}

func (m *Model) registerCmd(reg types.Registration) tea.Cmd {
	return func() tea.Msg {
		return registerDoneMsg{err: m.client.Register(context.Background(), reg)}
	}
}

func (m *Model) loadProfileCmd() tea.Cmd {
	return func() tea.Msg {
		profile, err := m.client.Me(context.Background())
		return profileLoadedMsg{profile: profile, err: err}
	}
}

func (m *Model) saveProfileCmd(update types.ProfileUpdate) tea.Cmd {
	return func() tea.Msg {
		profile, err := m.client.UpdateMe(context.Background(), update)
		return profileSavedMsg{profile: profile, err: err}
	}
}

// quickSearchCmd runs the suggest endpoint, attaching position and detected
// city when known.
func (m *Model) quickSearchCmd(query string) tea.Cmd {
	pos := m.position
	city := m.store.DetectedCity()
	return func() tea.Msg {
		payload, err := m.client.Suggest(context.Background(), api.SuggestQuery{
			Query:        query,
			Position:     pos,
			DetectedCity: city,
		})
		if err != nil {
			return searchDoneMsg{title: "Search Results", err: err}
		}
		return searchDoneMsg{title: "Search Results", records: m.normalizer.Normalize(payload)}
	}
}

func (m *Model) filterCmd(filters search.Filters) tea.Cmd {
	return func() tea.Msg {
		payload, err := m.client.Filter(context.Background(), filters.Values())
		if err != nil {
			return searchDoneMsg{title: "Restaurant Suggestions", err: err}
		}
		return searchDoneMsg{title: "Restaurant Suggestions", records: m.normalizer.Normalize(payload)}
	}
}

func (m *Model) loadFeedCmd() tea.Cmd {
	return func() tea.Msg {
		payload, err := m.client.Feed(context.Background())
		if err != nil {
			return feedDoneMsg{err: err}
		}
		return feedDoneMsg{records: m.normalizer.Normalize(payload)}
	}
}

// showToast replaces the current toast and schedules its dismissal. The
// sequence number keeps a stale timer from clearing a newer toast.
func (m *Model) showToast(text string, kind toastKind) tea.Cmd {
	m.toast = toast{text: text, kind: kind, seq: m.toast.seq + 1}
	seq := m.toast.seq
	return tea.Tick(toastDuration, func(time.Time) tea.Msg {
		return toastExpiredMsg{seq: seq}
	})
}

// reportError converts a failure into the single user-visible toast the
// action boundary allows, logging the detail. A stale-token rejection
// logs the session out and returns Home instead of showing a generic error.
func (m *Model) reportError(action, friendly string, err error) tea.Cmd {
	m.logger.Warn("action failed", zap.String("action", action), zap.Error(err))
	if api.IsAuthExpired(err) {
		m.store.Logout()
		cmd := m.gotoPage(router.Home)
		return tea.Batch(cmd, m.showToast("Session expired. Please log in again.", toastError))
	}
	return m.showToast(friendly, toastError)
}
