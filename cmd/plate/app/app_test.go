package app

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"platefinder/internal/api"
	"platefinder/internal/config"
	"platefinder/internal/router"
	"platefinder/internal/types"
)

type stubFetcher struct{ profile *types.UserProfile }

func (s *stubFetcher) Me(ctx context.Context) (*types.UserProfile, error) {
	return s.profile, nil
}

func newTestModel(t *testing.T) *Model {
	t.Helper()
	cfg := config.Default()
	cfg.StateDir = t.TempDir()
	cfg.Theme = "dark"

	m, err := New(cfg, nil)
	require.NoError(t, err)

	// Simulate the terminal attach so the viewport exists.
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 32})
	return m
}

func loginAs(t *testing.T, m *Model, roles ...string) {
	t.Helper()
	_, err := m.store.Login(context.Background(), "tok",
		&stubFetcher{profile: &types.UserProfile{Username: "ada", Email: "ada@example.com", Roles: roles}})
	require.NoError(t, err)
}

func TestView_StartsOnHome(t *testing.T) {
	m := newTestModel(t)
	view := m.View()

	assert.Contains(t, view, "Quick Search")
	assert.Contains(t, view, "Guided Filter")
	assert.Contains(t, view, "2:Login")
	assert.NotContains(t, view, "5:Feed", "feed entry is hidden while logged out")
}

func TestGotoProfile_UnauthenticatedLandsOnLogin(t *testing.T) {
	m := newTestModel(t)

	m.gotoPage(router.Profile)
	assert.Equal(t, router.Login, m.router.Current())
	assert.Contains(t, m.View(), "Login")
	assert.Contains(t, m.toast.text, "log in")
}

func TestBusyIndicator_ReleasedOnFailure(t *testing.T) {
	m := newTestModel(t)
	m.startOp(nil)
	require.Equal(t, 1, m.busy)
	m.inFlight = true

	m.Update(searchDoneMsg{err: errors.New("boom")})

	assert.Zero(t, m.busy, "busy indicator must clear on failure")
	assert.False(t, m.inFlight, "submit control must re-enable on failure")
	assert.NotEmpty(t, m.toast.text)
}

func TestBusyIndicator_ReleasedOnSuccess(t *testing.T) {
	m := newTestModel(t)
	m.startOp(nil)
	m.inFlight = true

	m.Update(searchDoneMsg{title: "Search Results", records: []types.RestaurantRecord{{Name: "Taverna"}}})

	assert.Zero(t, m.busy)
	assert.False(t, m.inFlight)
	assert.Contains(t, m.View(), "Search Results")
	assert.Contains(t, m.View(), "Taverna")
}

func TestAuthExpired_TriggersLogoutAndHome(t *testing.T) {
	m := newTestModel(t)
	loginAs(t, m)
	m.gotoPage(router.Feed)
	require.Equal(t, router.Feed, m.router.Current())

	m.Update(feedDoneMsg{err: &api.Error{Status: 401, Message: "expired", Authenticated: true}})

	assert.False(t, m.store.IsAuthenticated(), "stale session must be cleared")
	assert.Equal(t, router.Home, m.router.Current())
	assert.Contains(t, m.toast.text, "Session expired")
}

func TestFeedFailure_PageStillShownEmpty(t *testing.T) {
	m := newTestModel(t)
	loginAs(t, m)
	m.gotoPage(router.Feed)

	m.Update(feedDoneMsg{err: &api.Error{Status: 500, Message: "oops"}})

	// Not an auth failure: page stays, list is empty, a notice shows.
	assert.Equal(t, router.Feed, m.router.Current())
	assert.True(t, m.feedLoaded)
	assert.Empty(t, m.feedResults)
	assert.NotEmpty(t, m.toast.text)
}

func TestLogout_ResetsUI(t *testing.T) {
	m := newTestModel(t)
	loginAs(t, m)
	m.feedResults = []types.RestaurantRecord{{Name: "Old"}}
	m.feedLoaded = true

	m.logout()

	assert.Equal(t, router.Home, m.router.Current())
	assert.False(t, m.store.IsAuthenticated())
	assert.Empty(t, m.feedResults)
	assert.Contains(t, m.toast.text, "Logged out")
}

func TestToast_StaleTimerDoesNotClearNewerToast(t *testing.T) {
	m := newTestModel(t)
	m.showToast("first", toastInfo)
	firstSeq := m.toast.seq
	m.showToast("second", toastInfo)

	m.Update(toastExpiredMsg{seq: firstSeq})
	assert.Equal(t, "second", m.toast.text)

	m.Update(toastExpiredMsg{seq: m.toast.seq})
	assert.Empty(t, m.toast.text)
}

func TestRegisterPrefill_OnlyIntoEmptyField(t *testing.T) {
	m := newTestModel(t)
	m.store.SetDetectedCity("Lisbon")

	m.gotoPage(router.Register)
	assert.Equal(t, "Lisbon", m.register.inputs[regLocation].Value())

	// User edits the field; a later prefill attempt must not overwrite it.
	m.register.inputs[regLocation].SetValue("Porto")
	m.register.prefillLocation("Lisbon")
	assert.Equal(t, "Porto", m.register.inputs[regLocation].Value())
}

func TestSubmit_DuplicateSubmissionsDropped(t *testing.T) {
	m := newTestModel(t)
	m.gotoPage(router.Login)
	m.login.inputs[loginUsername].SetValue("ada")
	m.login.inputs[loginPassword].SetValue("pw")

	cmd := m.submit()
	require.NotNil(t, cmd)
	assert.True(t, m.inFlight)
	assert.Equal(t, 1, m.busy)

	// Second enter while the first is in flight does nothing.
	assert.Nil(t, m.submit())
	assert.Equal(t, 1, m.busy)
}

func TestSubmit_EmptyQueryRejectedBeforeNetwork(t *testing.T) {
	m := newTestModel(t)
	m.setHomeFocus(0)
	m.search.SetValue("   ")

	m.submit()

	assert.Zero(t, m.busy, "validation failures must not issue a request")
	assert.NotEmpty(t, m.toast.text)
}

func TestNav_AdminEntryFollowsSession(t *testing.T) {
	m := newTestModel(t)
	loginAs(t, m)
	assert.NotContains(t, m.View(), "Add Restaurant")

	m.store.Logout()
	loginAs(t, m, types.RoleRestaurantAdmin)
	assert.Contains(t, m.View(), "Add Restaurant")

	m.gotoPage(router.AddRestaurant)
	assert.Equal(t, router.AddRestaurant, m.router.Current())
	assert.Contains(t, m.View(), "placeholder")
}

func TestLoginFailure_WrongPasswordStaysOnLogin(t *testing.T) {
	m := newTestModel(t)
	m.gotoPage(router.Login)
	m.startOp(nil)
	m.inFlight = true

	// An unauthenticated 401 is a credential rejection, not a stale session.
	m.Update(loginDoneMsg{err: &api.Error{Status: 401, Message: "bad credentials"}})

	assert.Equal(t, router.Login, m.router.Current(), "the login form must stay visible")
	assert.Contains(t, m.toast.text, "credentials")
	assert.False(t, m.store.IsAuthenticated())
}

func TestProfileForm_TypingReachesFocusedField(t *testing.T) {
	m := newTestModel(t)
	loginAs(t, m)
	m.gotoPage(router.Profile)

	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("thai")})
	assert.Equal(t, "thai", m.profile.inputs[profCuisines].Value())
}

func TestProfileForm_PendingUpdate(t *testing.T) {
	f := newProfileForm()
	f.inputs[profCuisines].SetValue("thai, greek")
	f.inputs[profBudget].SetValue("40")

	upd, err := f.pendingUpdate()
	require.NoError(t, err)
	assert.Equal(t, []string{"thai", "greek"}, upd.FavoriteCuisines)
	require.NotNil(t, upd.DefaultBudget)
	assert.Equal(t, 40, *upd.DefaultBudget)

	f.inputs[profBudget].SetValue("lots")
	_, err = f.pendingUpdate()
	assert.Error(t, err)
}

func TestProfileLoaded_PopulatesForm(t *testing.T) {
	m := newTestModel(t)
	loginAs(t, m)
	m.gotoPage(router.Profile)

	budget := 50
	m.Update(profileLoadedMsg{profile: &types.UserProfile{
		Username:         "ada",
		Email:            "ada@example.com",
		DefaultBudget:    &budget,
		FavoriteCuisines: []string{"thai", "greek"},
		HomeAddress:      "Old Town 5",
	}})

	assert.Equal(t, "thai, greek", m.profile.inputs[profCuisines].Value())
	assert.Equal(t, "50", m.profile.inputs[profBudget].Value())
	assert.Equal(t, "Old Town 5", m.profile.inputs[profAddress].Value())
	view := m.View()
	assert.Contains(t, view, "ada@example.com")
}

func TestHomeFocusCycle(t *testing.T) {
	m := newTestModel(t)
	require.Equal(t, 0, m.homeFocus)

	m.cycleFocus(false)
	assert.Equal(t, 1, m.homeFocus)
	assert.False(t, m.search.Focused())

	// Wrap all the way around.
	for i := 0; i < len(m.filter.inputs); i++ {
		m.cycleFocus(false)
	}
	assert.Equal(t, 0, m.homeFocus)
	assert.True(t, m.search.Focused())

	m.cycleFocus(true)
	assert.Equal(t, len(m.filter.inputs), m.homeFocus)
}

func TestFilterForm_ValidationSurfacesToast(t *testing.T) {
	m := newTestModel(t)
	m.setHomeFocus(1)
	m.filter.inputs[filtMaxPrice].SetValue("cheap")

	m.submit()

	assert.Zero(t, m.busy)
	assert.NotEmpty(t, m.toast.text)
}

func TestRenderStatus_ShowsSpinnerWhileBusy(t *testing.T) {
	m := newTestModel(t)
	m.startOp(nil)

	assert.True(t, strings.Contains(m.View(), "Working..."))
	m.releaseOp()
	assert.False(t, strings.Contains(m.View(), "Working..."))
}
