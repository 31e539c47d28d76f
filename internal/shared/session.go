package shared

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/interviewhub/gateway/internal/authz"
)

// Auth is an immutable snapshot of the authenticated identity carried by a
// session. The zero value is the anonymous session.
type Auth struct {
	Token           string     `json:"token,omitempty"`
	UserID          int64      `json:"userId,omitempty"`
	Username        string     `json:"username,omitempty"`
	Role            authz.Role `json:"role,omitempty"`
	Permissions     []string   `json:"permissions,omitempty"`
	IsAuthenticated bool       `json:"isAuthenticated"`
}

// valid checks the shape invariant: authenticated sessions carry token,
// user id, username and role; anything else collapses to anonymous.
func (a Auth) valid() bool {
	if !a.IsAuthenticated {
		return a.Token == "" && a.UserID == 0 && a.Username == "" && a.Role == ""
	}
	return a.Token != "" && a.UserID != 0 && a.Username != "" && a.Role != ""
}

// SessionManager orchestrates cookie based sessions backed by Redis. The
// Redis record is the durable copy of the session state; writes are best
// effort and the in-memory snapshot stays authoritative for the lifetime of
// the process when persistence fails.
type SessionManager struct {
	client     *redis.Client
	cookieName string
	ttl        time.Duration
	secure     bool
	secret     []byte
}

// Session holds per-browser session state. Mutations replace whole values
// under the lock, so concurrent readers observe either the pre- or
// post-update snapshot, never a partial one.
type Session struct {
	ID string

	mu        sync.Mutex
	auth      Auth
	eval      authz.Evaluator
	view      authz.View
	values    map[string]string
	isNew     bool
	dirty     bool
	destroyed bool
}

type sessionPayload struct {
	Auth   Auth              `json:"auth"`
	Values map[string]string `json:"values,omitempty"`
}

// NewSessionManager constructs a SessionManager.
func NewSessionManager(client *redis.Client, cookieName string, secret string, ttl time.Duration, secure bool) *SessionManager {
	return &SessionManager{
		client:     client,
		cookieName: cookieName,
		ttl:        ttl,
		secure:     secure,
		secret:     []byte(secret),
	}
}

// Load loads the session identified by the request cookie, or creates a new
// anonymous one. Absent or corrupt stored payloads yield the empty session
// rather than an error.
func (sm *SessionManager) Load(ctx context.Context, r *http.Request) (*Session, error) {
	cookie, err := r.Cookie(sm.cookieName)
	if err != nil {
		if errors.Is(err, http.ErrNoCookie) {
			return sm.newSession(), nil
		}
		return nil, err
	}

	payload, err := sm.client.Get(ctx, sm.redisKey(cookie.Value)).Bytes()
	if err != nil {
		// Missing record or unreachable store both degrade to anonymous.
		sess := sm.newSession()
		sess.ID = cookie.Value
		return sess, nil
	}

	var stored sessionPayload
	if err := json.Unmarshal(payload, &stored); err != nil || !stored.Auth.valid() {
		sess := sm.newSession()
		sess.ID = cookie.Value
		return sess, nil
	}

	sess := sm.newSession()
	sess.ID = cookie.Value
	sess.isNew = false
	sess.dirty = false
	sess.setAuthLocked(stored.Auth)
	sess.values = stored.Values
	return sess, nil
}

// Commit persists the session and writes cookie headers as needed. A failed
// Redis write is reported but does not invalidate the in-memory session.
func (sm *SessionManager) Commit(ctx context.Context, w http.ResponseWriter, r *http.Request, sess *Session) error {
	if sess == nil {
		return nil
	}

	sess.mu.Lock()
	destroyed := sess.destroyed
	dirty := sess.dirty || sess.isNew
	payload := sessionPayload{Auth: sess.auth, Values: sess.values}
	if sess.isNew && sess.ID == "" {
		sess.ID = sm.generateSessionID()
	}
	id := sess.ID
	sess.mu.Unlock()

	if destroyed {
		if err := sm.client.Del(ctx, sm.redisKey(id)).Err(); err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		http.SetCookie(w, &http.Cookie{
			Name:     sm.cookieName,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
			Secure:   sm.secure,
			SameSite: http.SameSiteStrictMode,
		})
		return nil
	}

	if dirty {
		data, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		if err := sm.client.Set(ctx, sm.redisKey(id), data, sm.ttl).Err(); err != nil {
			return err
		}
		sess.mu.Lock()
		sess.dirty = false
		sess.mu.Unlock()
	}

	if id != "" {
		http.SetCookie(w, &http.Cookie{
			Name:     sm.cookieName,
			Value:    id,
			Path:     "/",
			HttpOnly: true,
			Secure:   sm.secure,
			SameSite: http.SameSiteStrictMode,
			Expires:  time.Now().Add(sm.ttl),
		})
	}
	return nil
}

// Destroy marks the session for deletion at commit time.
func (sm *SessionManager) Destroy(sess *Session) {
	if sess == nil {
		return
	}
	sess.mu.Lock()
	sess.destroyed = true
	sess.mu.Unlock()
}

// TTL exposes the configured session lifetime.
func (sm *SessionManager) TTL() time.Duration {
	return sm.ttl
}

// CookieName returns the cookie identifier used for sessions.
func (sm *SessionManager) CookieName() string {
	return sm.cookieName
}

// SetAuth atomically populates the identity fields from a successful login
// response and marks the session authenticated. Field contents are trusted.
func (s *Session) SetAuth(token string, userID int64, username string, role authz.Role) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setAuthLocked(Auth{
		Token:           token,
		UserID:          userID,
		Username:        username,
		Role:            role,
		IsAuthenticated: true,
	})
	s.dirty = true
}

// SetPermissions atomically replaces the granted permission codes.
func (s *Session) SetPermissions(codes []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	auth := s.auth
	auth.Permissions = append([]string(nil), codes...)
	s.setAuthLocked(auth)
	s.dirty = true
}

// ClearAuth atomically resets identity, permissions and derived state to the
// pristine anonymous session.
func (s *Session) ClearAuth() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setAuthLocked(Auth{})
	s.dirty = true
}

// Auth returns the current identity snapshot.
func (s *Session) Auth() Auth {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.auth
}

// Evaluator returns the permission evaluator computed at the last session
// change.
func (s *Session) Evaluator() authz.Evaluator {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.eval
}

// View returns the capability view computed at the last session change.
func (s *Session) View() authz.View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view
}

// Set stores an auxiliary key-value pair (CSRF token and the like).
func (s *Session) Set(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.values == nil {
		s.values = make(map[string]string)
	}
	s.values[key] = value
	s.dirty = true
}

// Get retrieves an auxiliary value.
func (s *Session) Get(key string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.values[key]
}

// setAuthLocked swaps the identity snapshot and recomputes the derived
// evaluator and view. Callers hold s.mu.
func (s *Session) setAuthLocked(auth Auth) {
	if !auth.valid() {
		auth = Auth{}
	}
	s.auth = auth
	s.eval = authz.Evaluator{Role: auth.Role, Perms: authz.NewSet(auth.Permissions...)}
	s.view = authz.NewView(auth.IsAuthenticated, auth.Role)
}

func (sm *SessionManager) newSession() *Session {
	return &Session{
		ID:     sm.generateSessionID(),
		values: make(map[string]string),
		isNew:  true,
		dirty:  true,
		view:   authz.ViewPublic,
	}
}

func (sm *SessionManager) redisKey(id string) string {
	return "session:" + id
}

func (sm *SessionManager) generateSessionID() string {
	if id, err := uuid.NewRandom(); err == nil {
		return id.String()
	}
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return base64.RawURLEncoding.EncodeToString([]byte(time.Now().Format(time.RFC3339Nano)))
	}
	if len(sm.secret) > 0 {
		for i := range b {
			b[i] ^= sm.secret[i%len(sm.secret)]
		}
	}
	return base64.RawURLEncoding.EncodeToString(b)
}
