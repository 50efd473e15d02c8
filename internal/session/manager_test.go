package session_test

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FischerJoao/mindestoque/internal/domain"
	"github.com/FischerJoao/mindestoque/internal/session"
)

type fakeExchanger struct {
	calls int
	user  *domain.SessionUser
	err   error
}

func (f *fakeExchanger) Login(_ context.Context, email, _ string) (*domain.SessionUser, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	u := *f.user
	u.Email = email
	return &u, nil
}

func newManager(t *testing.T, exchanger session.CredentialExchanger) *session.Manager {
	t.Helper()
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	return session.NewManager("unit-test-secret", time.Hour, exchanger, node)
}

func TestManager_AuthenticateRoundTrip(t *testing.T) {
	m := newManager(t, &fakeExchanger{user: &domain.SessionUser{
		ID: "u1", Name: "Ana", AccessToken: "tok-123",
	}})

	sess, signed, err := m.Authenticate(context.Background(), "a@b.com", "Abcd1")
	require.NoError(t, err)
	require.NotNil(t, sess)
	require.NotEmpty(t, signed)
	assert.Equal(t, "tok-123", sess.Token())

	parsed, err := m.Parse(signed)
	require.NoError(t, err)
	assert.Equal(t, sess.ID, parsed.ID)
	assert.Equal(t, "a@b.com", parsed.User.Email)
	assert.Equal(t, "Ana", parsed.User.Name)
	assert.Equal(t, "tok-123", parsed.User.AccessToken)
}

func TestManager_AuthenticateRefused(t *testing.T) {
	m := newManager(t, &fakeExchanger{err: errors.New("401: invalid credentials")})

	sess, signed, err := m.Authenticate(context.Background(), "a@b.com", "wrong")
	require.Error(t, err)
	assert.Nil(t, sess)
	assert.Empty(t, signed)
	assert.Empty(t, m.LiveSessions())
}

func TestManager_CurrentSessionAndLogout(t *testing.T) {
	m := newManager(t, &fakeExchanger{user: &domain.SessionUser{ID: "u1", AccessToken: "tok"}})

	sess, _, err := m.Authenticate(context.Background(), "a@b.com", "Abcd1")
	require.NoError(t, err)

	assert.NotNil(t, m.CurrentSession(sess.ID))
	assert.Len(t, m.LiveSessions(), 1)

	m.Logout(sess.ID)
	assert.Nil(t, m.CurrentSession(sess.ID), "logout invalidates locally, no backend round trip")
	assert.Empty(t, m.LiveSessions())
}

func TestManager_ParseRejectsForeignSignature(t *testing.T) {
	good := newManager(t, &fakeExchanger{user: &domain.SessionUser{AccessToken: "tok"}})
	_, signed, err := good.Authenticate(context.Background(), "a@b.com", "Abcd1")
	require.NoError(t, err)

	node, err := snowflake.NewNode(2)
	require.NoError(t, err)
	otherSecret := session.NewManager("another-secret", time.Hour, nil, node)

	_, err = otherSecret.Parse(signed)
	require.Error(t, err)
	assert.ErrorIs(t, err, session.ErrInvalidToken)

	_, err = otherSecret.Parse("garbage.token.value")
	require.Error(t, err)
}

func TestManager_ExpiredSessionNotLive(t *testing.T) {
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	m := session.NewManager("unit-test-secret", -time.Minute,
		&fakeExchanger{user: &domain.SessionUser{AccessToken: "tok"}}, node)

	sess, signed, err := m.Authenticate(context.Background(), "a@b.com", "Abcd1")
	require.NoError(t, err)

	assert.Nil(t, m.CurrentSession(sess.ID), "expired session is not current")

	_, err = m.Parse(signed)
	assert.ErrorIs(t, err, session.ErrSessionExpired)
}

func TestManager_Restore(t *testing.T) {
	m := newManager(t, &fakeExchanger{user: &domain.SessionUser{AccessToken: "tok"}})

	sess := &domain.Session{
		ID:        "restored",
		User:      domain.SessionUser{AccessToken: "tok"},
		ExpiresAt: time.Now().Add(time.Hour),
	}
	m.Restore(sess)
	assert.NotNil(t, m.CurrentSession("restored"))
}
