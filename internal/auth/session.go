package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/stephanofer/atlas/internal/core/domain"
	"github.com/stephanofer/atlas/internal/core/ports"
)

// Claims carries the authenticated identity through request handling.
type Claims struct {
	UserID    string
	CompanyID string
	Role      domain.Role
	AreaID    string
}

// Event describes a session state change delivered to subscribers.
type Event struct {
	Type   string // "signed_in" or "signed_out"
	UserID string
}

type tokenClaims struct {
	CompanyID string `json:"cid"`
	Role      string `json:"role"`
	AreaID    string `json:"aid,omitempty"`
	jwt.RegisteredClaims
}

// SessionManager issues and verifies signed session tokens. The
// manager must be closed on shutdown so subscriber callbacks stop
// firing before their owners are torn down.
type SessionManager struct {
	secret      []byte
	ttl         time.Duration
	users       ports.UserRepository
	credentials ports.CredentialStore

	mu          sync.Mutex
	nextSubID   int
	subscribers map[int]func(Event)
	closed      bool
}

func NewSessionManager(secret string, ttl time.Duration, users ports.UserRepository, credentials ports.CredentialStore) (*SessionManager, error) {
	if secret == "" {
		return nil, errors.New("auth: signing secret is required")
	}
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return &SessionManager{
		secret:      []byte(secret),
		ttl:         ttl,
		users:       users,
		credentials: credentials,
		subscribers: make(map[int]func(Event)),
	}, nil
}

// SignIn verifies the credential, checks the account is usable and
// returns a fresh token together with the user profile.
func (m *SessionManager) SignIn(ctx context.Context, email, password string) (string, *domain.User, error) {
	userID, err := m.credentials.Verify(ctx, email, password)
	if err != nil {
		return "", nil, err
	}
	user, err := m.users.GetByEmail(ctx, email)
	if err != nil {
		return "", nil, fmt.Errorf("load user: %w", err)
	}
	if user.ID != userID {
		return "", nil, domain.WrapError(domain.ErrUnauthorized, "sign in", errors.New("credential does not match profile"))
	}
	if user.Status == domain.UserInactive {
		return "", nil, domain.WrapError(domain.ErrUnauthorized, "sign in", errors.New("account is deactivated"))
	}

	token, err := m.issue(user)
	if err != nil {
		return "", nil, err
	}
	m.notify(Event{Type: "signed_in", UserID: user.ID})
	return token, user, nil
}

// Verify parses and validates a token, returning the embedded claims.
func (m *SessionManager) Verify(token string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(token, &tokenClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil {
		return nil, domain.WrapError(domain.ErrUnauthorized, "verify token", err)
	}
	tc, ok := parsed.Claims.(*tokenClaims)
	if !ok || !parsed.Valid {
		return nil, domain.WrapError(domain.ErrUnauthorized, "verify token", errors.New("invalid claims"))
	}
	role, err := domain.ParseRole(tc.Role)
	if err != nil {
		return nil, domain.WrapError(domain.ErrUnauthorized, "verify token", err)
	}
	return &Claims{
		UserID:    tc.Subject,
		CompanyID: tc.CompanyID,
		Role:      role,
		AreaID:    tc.AreaID,
	}, nil
}

// SignOut notifies subscribers. Tokens are stateless, so the caller is
// expected to discard its copy; expiry bounds the remaining lifetime.
func (m *SessionManager) SignOut(userID string) {
	m.notify(Event{Type: "signed_out", UserID: userID})
}

// Subscribe registers a callback for session events and returns an
// unsubscribe function.
func (m *SessionManager) Subscribe(fn func(Event)) func() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return func() {}
	}
	id := m.nextSubID
	m.nextSubID++
	m.subscribers[id] = fn
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.subscribers, id)
	}
}

// Close drops all subscribers. Tokens already issued stay verifiable
// until they expire.
func (m *SessionManager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	m.subscribers = make(map[int]func(Event))
}

func (m *SessionManager) issue(user *domain.User) (string, error) {
	now := time.Now()
	claims := tokenClaims{
		CompanyID: user.CompanyID,
		Role:      string(user.Role),
		AreaID:    user.AreaID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

func (m *SessionManager) notify(ev Event) {
	m.mu.Lock()
	fns := make([]func(Event), 0, len(m.subscribers))
	for _, fn := range m.subscribers {
		fns = append(fns, fn)
	}
	m.mu.Unlock()
	for _, fn := range fns {
		fn(ev)
	}
}
