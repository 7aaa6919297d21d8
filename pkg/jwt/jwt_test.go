package jwt

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ana = Identity{UserID: "u-1", Email: "ana@crochet.local", Role: "ADMIN"}

func TestGenerateParse(t *testing.T) {
	token, err := Generate("secret", ana, "crochet-api", 5*time.Minute)
	require.NoError(t, err)

	id, err := Parse("secret", token)
	require.NoError(t, err)
	assert.Equal(t, ana, id)
}

func TestParse_FirmaIncorrecta(t *testing.T) {
	token, err := Generate("secret", ana, "crochet-api", 5*time.Minute)
	require.NoError(t, err)

	_, err = Parse("otro", token)
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestParse_Expirado(t *testing.T) {
	token, err := Generate("secret", ana, "crochet-api", -time.Minute)
	require.NoError(t, err)

	_, err = Parse("secret", token)
	assert.ErrorIs(t, err, ErrExpired)
}

func TestParse_RechazaOtroAlgoritmo(t *testing.T) {
	claims := Claims{RegisteredClaims: jwt.RegisteredClaims{
		Subject:   "u-1",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
	}}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = Parse("secret", token)
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestParse_SinSubject(t *testing.T) {
	claims := Claims{RegisteredClaims: jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
	}}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = Parse("secret", token)
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestEntradasVacias(t *testing.T) {
	_, err := Generate("", ana, "i", time.Minute)
	assert.Error(t, err)
	_, err = Generate("secret", Identity{Email: "x"}, "i", time.Minute)
	assert.Error(t, err)
	_, err = Parse("", "x")
	assert.Error(t, err)
}
