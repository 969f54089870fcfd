package session

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Yassi1511/pfemedical-go/internal/domain"
)

func signedToken(t *testing.T, sub, role string, exp time.Time) string {
	t.Helper()
	claims := jwt.MapClaims{
		"sub":  sub,
		"role": role,
		"exp":  jwt.NewNumericDate(exp),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret-de-test"))
	require.NoError(t, err)
	return token
}

func TestFileStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session.json")
	store := NewFileStore(path)

	_, err := store.Load()
	assert.ErrorIs(t, err, ErrNoSession)

	saved := FromAuth("jeton", "secretaire", "64a000000000000000000001")
	require.NoError(t, store.Save(saved))

	loaded, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, "jeton", loaded.TokenValue)
	assert.Equal(t, domain.RoleSecretaire, loaded.Role)
	assert.Equal(t, "64a000000000000000000001", loaded.UserID)

	require.NoError(t, store.Clear())
	_, err = store.Load()
	assert.ErrorIs(t, err, ErrNoSession)

	// Clearing twice is fine.
	assert.NoError(t, store.Clear())
}

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore()
	_, err := store.Load()
	assert.ErrorIs(t, err, ErrNoSession)

	require.NoError(t, store.Save(FromAuth("jeton", "patient", "id")))
	loaded, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, domain.RolePatient, loaded.Role)

	require.NoError(t, store.Clear())
	_, err = store.Load()
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestTokenSource(t *testing.T) {
	var nilSession *Session
	assert.Equal(t, "", nilSession.Token(), "nil session yields an empty bearer")
	assert.False(t, nilSession.Active())

	s := FromAuth("jeton", "patient", "id")
	assert.Equal(t, "jeton", s.Token())
	assert.True(t, s.Active())
}

func TestInspectToken(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	s := FromAuth(signedToken(t, "64a000000000000000000001", "medecin", exp), "medecin", "64a000000000000000000001")

	claims, err := s.InspectToken()
	require.NoError(t, err)
	assert.Equal(t, "64a000000000000000000001", claims.Subject)
	assert.Equal(t, "medecin", claims.Role)
	assert.Equal(t, exp.Unix(), claims.ExpiresAt.Unix())
}

func TestInspectTokenWithoutSession(t *testing.T) {
	s := &Session{}
	_, err := s.InspectToken()
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestExpired(t *testing.T) {
	now := time.Now()

	live := FromAuth(signedToken(t, "id", "patient", now.Add(time.Hour)), "patient", "id")
	assert.False(t, live.Expired(now))

	stale := FromAuth(signedToken(t, "id", "patient", now.Add(-time.Hour)), "patient", "id")
	assert.True(t, stale.Expired(now))

	// Not a JWT at all: assume live, the backend decides.
	opaque := FromAuth("pas-un-jwt", "patient", "id")
	assert.False(t, opaque.Expired(now))
}
