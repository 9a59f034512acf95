package session

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"platefinder/internal/types"
)

type fakeFetcher struct {
	profile *types.UserProfile
	err     error
	calls   int
}

func (f *fakeFetcher) Me(ctx context.Context) (*types.UserProfile, error) {
	f.calls++
	return f.profile, f.err
}

func newStore(t *testing.T) (*Store, string) {
	t.Helper()
	dir := t.TempDir()
	s, err := NewStore(dir, nil)
	require.NoError(t, err)
	return s, dir
}

func TestLogin_RoundTrip(t *testing.T) {
	s, dir := newStore(t)
	fetcher := &fakeFetcher{profile: &types.UserProfile{Username: "ada"}}

	profile, err := s.Login(context.Background(), "tok-1", fetcher)
	require.NoError(t, err)
	assert.Equal(t, "ada", profile.Username)

	current := s.Current()
	assert.Equal(t, "tok-1", current.Token)
	require.NotNil(t, current.User)
	assert.Equal(t, "ada", current.User.Username)
	assert.True(t, s.IsAuthenticated())

	// Token persisted to the state file.
	data, err := os.ReadFile(filepath.Join(dir, "session.json"))
	require.NoError(t, err)
	var state stateFile
	require.NoError(t, json.Unmarshal(data, &state))
	assert.Equal(t, "tok-1", state.Token)
}

func TestLogin_FailedValidationLogsOut(t *testing.T) {
	s, _ := newStore(t)
	fetcher := &fakeFetcher{err: errors.New("401")}

	_, err := s.Login(context.Background(), "bad-token", fetcher)
	require.Error(t, err)

	// Never a token-without-user state.
	current := s.Current()
	assert.Empty(t, current.Token)
	assert.Nil(t, current.User)
	assert.False(t, s.IsAuthenticated())
	assert.Empty(t, s.Token())
}

func TestLogin_StagedTokenVisibleToAdapter(t *testing.T) {
	s, _ := newStore(t)

	var seenDuringFetch string
	fetcher := &fetcherFunc{fn: func(ctx context.Context) (*types.UserProfile, error) {
		seenDuringFetch = s.Token()
		return &types.UserProfile{Username: "ada"}, nil
	}}

	_, err := s.Login(context.Background(), "tok-staged", fetcher)
	require.NoError(t, err)
	assert.Equal(t, "tok-staged", seenDuringFetch, "validation fetch must be signed with the staged token")
}

type fetcherFunc struct {
	fn func(ctx context.Context) (*types.UserProfile, error)
}

func (f *fetcherFunc) Me(ctx context.Context) (*types.UserProfile, error) { return f.fn(ctx) }

func TestLogout_Idempotent(t *testing.T) {
	s, _ := newStore(t)
	fetcher := &fakeFetcher{profile: &types.UserProfile{Username: "ada"}}
	_, err := s.Login(context.Background(), "tok", fetcher)
	require.NoError(t, err)

	s.Logout()
	first := s.Current()
	s.Logout()
	second := s.Current()

	assert.Equal(t, first, second)
	assert.Empty(t, second.Token)
	assert.Nil(t, second.User)
}

func TestResume_ValidToken(t *testing.T) {
	dir := t.TempDir()
	s1, err := NewStore(dir, nil)
	require.NoError(t, err)
	_, err = s1.Login(context.Background(), "tok-persisted", &fakeFetcher{profile: &types.UserProfile{Username: "ada"}})
	require.NoError(t, err)

	// Fresh store, same state dir: token should be staged, not published.
	s2, err := NewStore(dir, nil)
	require.NoError(t, err)
	assert.False(t, s2.IsAuthenticated())

	fetcher := &fakeFetcher{profile: &types.UserProfile{Username: "ada"}}
	profile, err := s2.Resume(context.Background(), fetcher)
	require.NoError(t, err)
	require.NotNil(t, profile)
	assert.True(t, s2.IsAuthenticated())
	assert.Equal(t, 1, fetcher.calls, "resume is a single validation attempt")
}

func TestResume_ExpiredTokenEndsLoggedOut(t *testing.T) {
	dir := t.TempDir()
	s1, err := NewStore(dir, nil)
	require.NoError(t, err)
	_, err = s1.Login(context.Background(), "tok-stale", &fakeFetcher{profile: &types.UserProfile{Username: "ada"}})
	require.NoError(t, err)

	s2, err := NewStore(dir, nil)
	require.NoError(t, err)
	_, err = s2.Resume(context.Background(), &fakeFetcher{err: errors.New("401")})
	require.Error(t, err)

	assert.Equal(t, types.Session{}, s2.Current())

	// The stale token is gone from disk too: a third store has nothing to resume.
	s3, err := NewStore(dir, nil)
	require.NoError(t, err)
	profile, err := s3.Resume(context.Background(), &fakeFetcher{})
	require.NoError(t, err)
	assert.Nil(t, profile)
}

func TestResume_NoStoredToken(t *testing.T) {
	s, _ := newStore(t)
	fetcher := &fakeFetcher{}

	profile, err := s.Resume(context.Background(), fetcher)
	require.NoError(t, err)
	assert.Nil(t, profile)
	assert.Zero(t, fetcher.calls)
}

func TestDetectedCity_Persists(t *testing.T) {
	dir := t.TempDir()
	s1, err := NewStore(dir, nil)
	require.NoError(t, err)
	s1.SetDetectedCity("Lisbon")

	s2, err := NewStore(dir, nil)
	require.NoError(t, err)
	assert.Equal(t, "Lisbon", s2.DetectedCity())
}

func TestReplaceUser_RequiresSession(t *testing.T) {
	s, _ := newStore(t)
	s.ReplaceUser(&types.UserProfile{Username: "ghost"})
	assert.Nil(t, s.Current().User)

	_, err := s.Login(context.Background(), "tok", &fakeFetcher{profile: &types.UserProfile{Username: "ada"}})
	require.NoError(t, err)
	s.ReplaceUser(&types.UserProfile{Username: "ada", Email: "new@example.com"})
	assert.Equal(t, "new@example.com", s.Current().User.Email)
}

func TestExpiresAt_PeeksClaims(t *testing.T) {
	s, _ := newStore(t)
	assert.Nil(t, s.ExpiresAt())

	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(exp),
	})
	signed, err := token.SignedString([]byte("irrelevant"))
	require.NoError(t, err)

	_, err = s.Login(context.Background(), signed, &fakeFetcher{profile: &types.UserProfile{Username: "ada"}})
	require.NoError(t, err)

	got := s.ExpiresAt()
	require.NotNil(t, got)
	assert.True(t, got.Equal(exp))
}

func TestNewStore_CorruptStateFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "session.json"), []byte("{nope"), 0o600))

	s, err := NewStore(dir, nil)
	require.NoError(t, err)
	assert.Empty(t, s.Token())
	assert.Empty(t, s.DetectedCity())
}
