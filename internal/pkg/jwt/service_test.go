package jwt

import (
	"testing"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestHMACService_RoundTrip(t *testing.T) {
	svc := NewHMACService("secret", time.Hour, "devhub")
	uid := uuid.New()

	tok, err := svc.GenerateToken(uid, "ana@x.com")
	require.NoError(t, err)

	c, err := svc.ValidateToken(tok)
	require.NoError(t, err)
	require.Equal(t, uid, c.UserID)
	require.Equal(t, "ana@x.com", c.Email)
	require.Equal(t, uid.String(), c.Subject)
}

func TestHMACService_DefaultExpiryIs24h(t *testing.T) {
	fixed := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	svc := NewHMACService("secret", 0, "")
	svc.now = func() time.Time { return fixed }

	tok, err := svc.GenerateToken(uuid.New(), "a@b.c")
	require.NoError(t, err)

	c, err := svc.ValidateToken(tok)
	require.NoError(t, err)
	require.Equal(t, fixed.Add(24*time.Hour), c.ExpiresAt.Time.UTC())
}

func TestHMACService_Expired(t *testing.T) {
	now := time.Now()
	svc := NewHMACService("secret", time.Minute, "")
	svc.now = func() time.Time { return now }

	tok, err := svc.GenerateToken(uuid.New(), "a@b.c")
	require.NoError(t, err)

	svc.now = func() time.Time { return now.Add(2 * time.Minute) }
	_, err = svc.ValidateToken(tok)
	require.ErrorIs(t, err, ErrTokenExpired)
}

func TestHMACService_WrongSecret(t *testing.T) {
	tok, err := NewHMACService("one", time.Hour, "").GenerateToken(uuid.New(), "a@b.c")
	require.NoError(t, err)

	_, err = NewHMACService("two", time.Hour, "").ValidateToken(tok)
	require.ErrorIs(t, err, ErrTokenInvalid)
}

func TestHMACService_RejectsOtherAlgorithms(t *testing.T) {
	c := Claims{
		UserID: uuid.New(),
		RegisteredClaims: jwtlib.RegisteredClaims{
			ExpiresAt: jwtlib.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	tok, err := jwtlib.NewWithClaims(jwtlib.SigningMethodNone, c).SignedString(jwtlib.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = NewHMACService("secret", time.Hour, "").ValidateToken(tok)
	require.ErrorIs(t, err, ErrTokenInvalid)
}

func TestHMACService_Garbage(t *testing.T) {
	_, err := NewHMACService("secret", time.Hour, "").ValidateToken("not-a-token")
	require.ErrorIs(t, err, ErrTokenInvalid)
}
