// Package session holds the client's authentication state: the bearer token,
// the validated user snapshot, and the durable bits that survive restarts
// (token and best-effort detected city). The store is the single writer of
// session state; the API adapter only reads the token through it.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"platefinder/internal/types"
)

// ProfileFetcher validates a token by fetching the profile it belongs to.
// Satisfied by *api.Client.
type ProfileFetcher interface {
	Me(ctx context.Context) (*types.UserProfile, error)
}

// stateFile is the durable client state, one JSON file under the state dir.
type stateFile struct {
	Token        string `json:"token,omitempty"`
	DetectedCity string `json:"detected_city,omitempty"`
}

// Store manages the current session.
//
// Login sequencing: the incoming token is staged so the adapter can sign the
// validation fetch, but the session is published (visible via Current and
// IsAuthenticated) only once the profile fetch succeeds. A failed fetch
// falls back to Logout — a token without a user is never observable.
type Store struct {
	mu       sync.Mutex
	path     string
	token    string              // published credential
	user     *types.UserProfile  // validated snapshot, nil unless token set
	staged   string              // token under validation, pre-publication
	detected string              // cached detected city
	logger   *zap.Logger
}

// NewStore creates the store and loads durable state from stateDir. A
// loaded token is staged, not published; call Resume to validate it.
func NewStore(stateDir string, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Store{
		path:   filepath.Join(stateDir, "session.json"),
		logger: logger,
	}

	data, err := os.ReadFile(s.path)
	switch {
	case err == nil:
		var state stateFile
		if err := json.Unmarshal(data, &state); err != nil {
			// A corrupt state file is discarded, not fatal.
			logger.Warn("discarding unreadable session state", zap.Error(err))
			break
		}
		s.staged = state.Token
		s.detected = state.DetectedCity
	case !os.IsNotExist(err):
		return nil, fmt.Errorf("failed to read session state: %w", err)
	}
	return s, nil
}

// Token returns the credential the adapter should attach: the staged token
// while a validation is in flight, otherwise the published one.
func (s *Store) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.staged != "" {
		return s.staged
	}
	return s.token
}

// Current returns a snapshot of the session.
func (s *Store) Current() types.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return types.Session{Token: s.token, User: s.user}
}

// IsAuthenticated reports whether a validated session is published.
func (s *Store) IsAuthenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token != "" && s.user != nil
}

// Login validates token by fetching its profile, then publishes the
// authenticated session and persists the token. On any failure the store
// ends up logged out.
func (s *Store) Login(ctx context.Context, token string, fetch ProfileFetcher) (*types.UserProfile, error) {
	s.mu.Lock()
	s.staged = token
	s.mu.Unlock()

	profile, err := fetch.Me(ctx)
	if err != nil {
		s.logger.Warn("token validation failed, logging out", zap.Error(err))
		s.Logout()
		return nil, err
	}

	s.mu.Lock()
	s.staged = ""
	s.token = token
	s.user = profile
	s.mu.Unlock()

	if err := s.persist(); err != nil {
		// The in-memory session stands; persistence failure only costs
		// the next restart.
		s.logger.Warn("failed to persist session", zap.Error(err))
	}
	return profile, nil
}

// Resume replays a persisted token at startup. It is a single validation
// attempt: success publishes the session, failure logs out. Returns the
// profile, or nil when no token was stored.
func (s *Store) Resume(ctx context.Context, fetch ProfileFetcher) (*types.UserProfile, error) {
	s.mu.Lock()
	token := s.staged
	s.mu.Unlock()
	if token == "" {
		return nil, nil
	}
	s.logger.Info("resuming persisted session")
	return s.Login(ctx, token, fetch)
}

// Logout clears the session, durable and in-memory. Idempotent.
func (s *Store) Logout() {
	s.mu.Lock()
	s.staged = ""
	s.token = ""
	s.user = nil
	s.mu.Unlock()

	if err := s.persist(); err != nil {
		s.logger.Warn("failed to clear persisted session", zap.Error(err))
	}
}

// ReplaceUser swaps the profile snapshot after a successful fetch or update.
// No-op when logged out (a user without a token is as invalid as the
// reverse).
func (s *Store) ReplaceUser(user *types.UserProfile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.token == "" {
		return
	}
	s.user = user
}

// DetectedCity returns the cached best-effort city, if any.
func (s *Store) DetectedCity() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.detected
}

// SetDetectedCity caches the detected city for form pre-fill.
func (s *Store) SetDetectedCity(city string) {
	s.mu.Lock()
	s.detected = city
	s.mu.Unlock()

	if err := s.persist(); err != nil {
		s.logger.Debug("failed to persist detected city", zap.Error(err))
	}
}

// ExpiresAt peeks at the token's registered expiry claim for display. The
// token is not verified here — validity decisions stay server-side.
func (s *Store) ExpiresAt() *time.Time {
	s.mu.Lock()
	token := s.token
	s.mu.Unlock()
	if token == "" {
		return nil
	}

	claims := jwt.RegisteredClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, &claims); err != nil {
		return nil
	}
	if claims.ExpiresAt == nil {
		return nil
	}
	t := claims.ExpiresAt.Time
	return &t
}

func (s *Store) persist() error {
	s.mu.Lock()
	state := stateFile{Token: s.token, DetectedCity: s.detected}
	path := s.path
	s.mu.Unlock()

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal session state: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}
	return os.WriteFile(path, data, 0o600)
}
