// Package session implements the credential exchange and the signed session
// cookie that keeps an operator logged in across requests.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/golang-jwt/jwt/v4"
	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
	"github.com/spf13/cast"
	"go.uber.org/zap"

	"github.com/FischerJoao/mindestoque/internal/domain"
)

// CredentialExchanger sends credentials to the backend login endpoint.
// Implemented by backend.Client.
type CredentialExchanger interface {
	Login(ctx context.Context, email, password string) (*domain.SessionUser, error)
}

var (
	ErrInvalidToken   = errors.New("invalid session token")
	ErrSessionExpired = errors.New("session expired")
)

// Manager exchanges credentials for sessions, signs them into HS256 tokens
// for the cookie, and tracks live sessions so each one can own an inventory
// collection until logout.
type Manager struct {
	secret    []byte
	ttl       time.Duration
	exchanger CredentialExchanger
	node      *snowflake.Node

	mu   sync.RWMutex
	live map[string]*domain.Session
}

func NewManager(secret string, ttl time.Duration, exchanger CredentialExchanger, node *snowflake.Node) *Manager {
	return &Manager{
		secret:    []byte(secret),
		ttl:       ttl,
		exchanger: exchanger,
		node:      node,
		live:      make(map[string]*domain.Session),
	}
}

// Authenticate performs the credential exchange and, on success, registers a
// live session and returns it with its signed token. Any backend rejection
// or network failure comes back as an error the caller presents as an
// invalid sign-in; there is no retry here.
func (m *Manager) Authenticate(ctx context.Context, email, password string) (*domain.Session, string, error) {
	user, err := m.exchanger.Login(ctx, email, password)
	if err != nil {
		zap.L().Info("authentication refused", zap.String("email", email), zap.Error(err))
		return nil, "", err
	}

	sess := &domain.Session{
		ID:        m.node.Generate().String(),
		User:      *user,
		ExpiresAt: time.Now().Add(m.ttl),
	}

	signed, err := m.sign(sess)
	if err != nil {
		return nil, "", errors.Wrap(err, "sign session token")
	}

	m.mu.Lock()
	m.live[sess.ID] = sess
	m.mu.Unlock()

	zap.L().Info("session established",
		zap.String("sid", sess.ID), zap.String("email", user.Email))
	return sess, signed, nil
}

// CurrentSession returns the live session for a sid, nil when the operator
// is unauthenticated or already logged out.
func (m *Manager) CurrentSession(sid string) *domain.Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	sess, ok := m.live[sid]
	if !ok {
		return nil
	}
	if time.Now().After(sess.ExpiresAt) {
		return nil
	}
	return sess
}

// Logout drops the live session. Purely local; the backend is not consulted.
func (m *Manager) Logout(sid string) {
	m.mu.Lock()
	_, ok := m.live[sid]
	delete(m.live, sid)
	m.mu.Unlock()
	if ok {
		zap.L().Info("session closed", zap.String("sid", sid))
	}
}

// LiveSessions snapshots the active sessions, expired ones excluded.
func (m *Manager) LiveSessions() []*domain.Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	now := time.Now()
	out := make([]*domain.Session, 0, len(m.live))
	for _, sess := range m.live {
		if now.Before(sess.ExpiresAt) {
			out = append(out, sess)
		}
	}
	return out
}

// Restore re-registers a session parsed from a still-valid cookie, used when
// the process restarted and lost its in-memory registry.
func (m *Manager) Restore(sess *domain.Session) {
	m.mu.Lock()
	m.live[sess.ID] = sess
	m.mu.Unlock()
}

func (m *Manager) sign(sess *domain.Session) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sid": sess.ID,
		"user": map[string]interface{}{
			"id":          sess.User.ID,
			"email":       sess.User.Email,
			"name":        sess.User.Name,
			"accessToken": sess.User.AccessToken,
		},
		"iat": now.Unix(),
		"exp": sess.ExpiresAt.Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
}

// Parse validates a signed session token and rebuilds the Session.
func (m *Manager) Parse(tokenString string) (*domain.Session, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		return m.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, errors.WithStack(ErrSessionExpired)
		}
		return nil, errors.Wrap(ErrInvalidToken, err.Error())
	}
	return m.FromToken(token)
}

// FromToken rebuilds a Session from an already-verified jwt token, as handed
// over by the echo-jwt middleware.
func (m *Manager) FromToken(token *jwt.Token) (*domain.Session, error) {
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.WithStack(ErrInvalidToken)
	}
	sid := cast.ToString(claims["sid"])
	if sid == "" {
		return nil, errors.WithStack(ErrInvalidToken)
	}

	var user domain.SessionUser
	if err := mapstructure.Decode(claims["user"], &user); err != nil {
		return nil, errors.Wrap(ErrInvalidToken, err.Error())
	}

	return &domain.Session{
		ID:        sid,
		User:      user,
		ExpiresAt: time.Unix(cast.ToInt64(claims["exp"]), 0),
	}, nil
}

// Secret exposes the signing key for the cookie-guard middleware.
func (m *Manager) Secret() []byte {
	return m.secret
}
