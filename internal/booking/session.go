package booking

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// SessionStore owns the bearer token and the signed-in account. The token is
// persisted to a file so a restarted client can restore its session.
type SessionStore struct {
	client    *Client
	tokenPath string

	mu   sync.RWMutex
	user *Account
}

// NewSessionStore creates a logged-out session over the client. tokenPath is
// where the token survives restarts; an empty path disables persistence.
func NewSessionStore(client *Client, tokenPath string) *SessionStore {
	return &SessionStore{client: client, tokenPath: tokenPath}
}

// Login authenticates and installs the session on success.
func (s *SessionStore) Login(ctx context.Context, username, password string) (*Account, error) {
	res, err := s.client.Login(ctx, username, password)
	if err != nil {
		return nil, err
	}
	s.client.SetToken(res.AccessToken)
	s.mu.Lock()
	user := res.User
	s.user = &user
	s.mu.Unlock()
	s.persistToken(res.AccessToken)
	cp := res.User
	return &cp, nil
}

// Register creates the account but never signs it in; the caller logs in
// separately afterwards.
func (s *SessionStore) Register(ctx context.Context, reg Registration) (string, error) {
	return s.client.Register(ctx, reg)
}

// Restore rebuilds the session from the persisted token. It is best-effort:
// a missing file, an expired token or an unreachable authority all leave the
// store logged out without returning an error.
func (s *SessionStore) Restore(ctx context.Context) {
	token := s.readToken()
	if token == "" {
		return
	}
	s.client.SetToken(token)
	user, err := s.client.Me(ctx)
	if err != nil {
		s.clear()
		return
	}
	s.mu.Lock()
	s.user = user
	s.mu.Unlock()
}

// Logout drops the session. Calling it while logged out is a no-op.
func (s *SessionStore) Logout() {
	s.clear()
}

// Current returns the signed-in account, if any.
func (s *SessionStore) Current() (*Account, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil, false
	}
	cp := *s.user
	return &cp, true
}

// LoggedIn reports whether a session is active.
func (s *SessionStore) LoggedIn() bool {
	_, ok := s.Current()
	return ok
}

func (s *SessionStore) clear() {
	s.client.SetToken("")
	s.mu.Lock()
	s.user = nil
	s.mu.Unlock()
	if s.tokenPath != "" {
		_ = os.Remove(s.tokenPath)
	}
}

func (s *SessionStore) persistToken(token string) {
	if s.tokenPath == "" {
		return
	}
	_ = os.MkdirAll(filepath.Dir(s.tokenPath), 0o700)
	_ = os.WriteFile(s.tokenPath, []byte(token), 0o600)
}

func (s *SessionStore) readToken() string {
	if s.tokenPath == "" {
		return ""
	}
	raw, err := os.ReadFile(s.tokenPath)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(raw))
}
