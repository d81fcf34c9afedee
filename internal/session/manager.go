package session

import (
	"context"
	"crypto/subtle"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"ms-gifting/internal/models"
	"ms-gifting/internal/utils"
)

// Manager implements the session collaborator: start, look up and end
// sessions. Credentials are a single shared secret; tokens are HS256 JWTs
// carrying the session ID so the KV store stays the source of truth.
type Manager struct {
	store  Store
	secret []byte
	ttl    time.Duration
}

func NewManager(store Store, secret string, ttl time.Duration) *Manager {
	return &Manager{store: store, secret: []byte(secret), ttl: ttl}
}

type sessionClaims struct {
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

// StartSession checks the shared secret, stores a new session for the given
// principal and mints its bearer token.
func (m *Manager) StartSession(ctx context.Context, req models.LoginRequest, principalID string) (string, *models.Session, error) {
	if subtle.ConstantTimeCompare([]byte(req.AccessCode), m.secret) != 1 {
		return "", nil, ErrInvalidCredentials
	}
	if req.Role != models.RoleFan && req.Role != models.RolePerformer {
		return "", nil, fmt.Errorf("%w: unknown role %q", ErrInvalidCredentials, req.Role)
	}

	sess := models.Session{
		ID:          utils.GenerateSessionID(),
		UserID:      principalID,
		Role:        req.Role,
		DisplayName: req.DisplayName,
	}

	if err := m.store.Put(ctx, sess.ID, sess, m.ttl); err != nil {
		return "", nil, fmt.Errorf("failed to store session: %w", err)
	}

	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, sessionClaims{
		SessionID: sess.ID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   sess.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	})

	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", nil, fmt.Errorf("failed to sign session token: %w", err)
	}
	return signed, &sess, nil
}

// GetActiveSession resolves a bearer token to its stored session. Returns
// ErrNoSession when the token is invalid, expired, or the session was ended.
func (m *Manager) GetActiveSession(ctx context.Context, token string) (*models.Session, error) {
	sid, err := m.parseToken(token)
	if err != nil {
		return nil, ErrNoSession
	}

	sess, err := m.store.Get(ctx, sid)
	if err != nil {
		return nil, fmt.Errorf("session lookup failed: %w", err)
	}
	if sess == nil {
		return nil, ErrNoSession
	}
	return sess, nil
}

// EndSession clears the stored session. Ending an already-ended session is a
// no-op.
func (m *Manager) EndSession(ctx context.Context, token string) error {
	sid, err := m.parseToken(token)
	if err != nil {
		return ErrNoSession
	}
	return m.store.Clear(ctx, sid)
}

func (m *Manager) parseToken(token string) (string, error) {
	var claims sessionClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil {
		return "", err
	}
	if !parsed.Valid || claims.SessionID == "" {
		return "", ErrNoSession
	}
	return claims.SessionID, nil
}
