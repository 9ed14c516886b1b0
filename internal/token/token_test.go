package token

import (
	"regexp"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-signing-secret-with-enough-length"

func newTestService(clock clockwork.Clock) *Service {
	return NewService(testSecret, 15*time.Minute, clock)
}

func TestSignVerify_Roundtrip(t *testing.T) {
	svc := newTestService(clockwork.NewFakeClock())

	identity := Identity{
		UserID: uuid.New(),
		Email:  "anna@example.com",
		Roles:  []string{"admin"},
	}

	signed, err := svc.SignAccessToken(identity)
	require.NoError(t, err)
	assert.NotEmpty(t, signed)

	verified, err := svc.VerifyAccessToken(signed)
	require.NoError(t, err)
	assert.Equal(t, identity.UserID, verified.UserID)
	assert.Equal(t, identity.Email, verified.Email)
	assert.Equal(t, []string{"admin"}, verified.Roles)
}

func TestVerifyAccessToken_Garbage(t *testing.T) {
	svc := newTestService(clockwork.NewFakeClock())

	tests := []string{
		"garbage",
		"",
		"a.b.c",
		"eyJhbGciOiJIUzI1NiJ9.e30.invalid",
	}

	for _, tok := range tests {
		_, err := svc.VerifyAccessToken(tok)
		assert.ErrorIs(t, err, ErrInvalidToken)
	}
}

func TestVerifyAccessToken_Expired(t *testing.T) {
	clock := clockwork.NewFakeClock()
	svc := newTestService(clock)

	signed, err := svc.SignAccessToken(Identity{UserID: uuid.New(), Roles: []string{"accountant"}})
	require.NoError(t, err)

	// Still valid just before expiry
	clock.Advance(14 * time.Minute)
	_, err = svc.VerifyAccessToken(signed)
	require.NoError(t, err)

	clock.Advance(2 * time.Minute)
	_, err = svc.VerifyAccessToken(signed)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyAccessToken_WrongSecret(t *testing.T) {
	clock := clockwork.NewFakeClock()
	svc := newTestService(clock)
	other := NewService("another-secret-entirely-with-length", 15*time.Minute, clock)

	signed, err := svc.SignAccessToken(Identity{UserID: uuid.New()})
	require.NoError(t, err)

	_, err = other.VerifyAccessToken(signed)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyAccessToken_TamperedClaims(t *testing.T) {
	svc := newTestService(clockwork.NewFakeClock())

	signed, err := svc.SignAccessToken(Identity{UserID: uuid.New(), Roles: []string{"client"}})
	require.NoError(t, err)

	// Flip a byte in the payload segment; the signature no longer matches.
	tampered := []byte(signed)
	mid := len(tampered) / 2
	if tampered[mid] == 'A' {
		tampered[mid] = 'B'
	} else {
		tampered[mid] = 'A'
	}

	_, err = svc.VerifyAccessToken(string(tampered))
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestGenerateRefreshToken(t *testing.T) {
	svc := newTestService(clockwork.NewFakeClock())

	t1, err := svc.GenerateRefreshToken()
	require.NoError(t, err)
	t2, err := svc.GenerateRefreshToken()
	require.NoError(t, err)

	assert.Len(t, t1, 96)
	assert.Regexp(t, regexp.MustCompile(`^[0-9a-f]{96}$`), t1)
	assert.NotEqual(t, t1, t2)
}

func TestHashToken_Deterministic(t *testing.T) {
	svc := newTestService(clockwork.NewFakeClock())

	tok, err := svc.GenerateRefreshToken()
	require.NoError(t, err)

	h1 := svc.HashToken(tok)
	h2 := svc.HashToken(tok)

	assert.Equal(t, h1, h2)
	assert.NotEqual(t, tok, h1)
	assert.Len(t, h1, 64) // sha256 hex

	assert.NotEqual(t, h1, svc.HashToken(tok+"x"))
}
