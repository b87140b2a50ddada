package auth

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndVerify(t *testing.T) {
	m := NewJWTManager("secret", time.Hour)
	userID := uuid.New()

	token, err := m.Generate(userID)
	require.NoError(t, err)

	got, err := m.UserID(token)
	require.NoError(t, err)
	assert.Equal(t, userID, got)

	exp, err := m.Expiry(token)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, 5*time.Second)
}

func TestVerifyRejects(t *testing.T) {
	m := NewJWTManager("secret", time.Hour)
	token, err := NewJWTManager("other", time.Hour).Generate(uuid.New())
	require.NoError(t, err)

	_, err = m.UserID(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	expired, err := NewJWTManager("secret", -time.Minute).Generate(uuid.New())
	require.NoError(t, err)
	_, err = m.UserID(expired)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = m.UserID("garbage")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestExtractToken(t *testing.T) {
	r := httptest.NewRequest("GET", "/ws?token=abc", nil)
	r.Header.Set("Authorization", "Bearer header")
	token, err := ExtractToken(r)
	require.NoError(t, err)
	assert.Equal(t, "abc", token)

	r = httptest.NewRequest("GET", "/api", nil)
	r.Header.Set("Authorization", "bearer header")
	token, err = ExtractToken(r)
	require.NoError(t, err)
	assert.Equal(t, "header", token)

	r = httptest.NewRequest("GET", "/api", nil)
	r.Header.Set("Authorization", "Basic xyz")
	_, err = ExtractToken(r)
	assert.ErrorIs(t, err, ErrMissingToken)
}
