package jwt_test

import (
	"testing"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/amlak-api/pkg/jwt"
)

const secret = "test-secret"

func TestGenerateParse_IdaYVuelta(t *testing.T) {
	token, exp, err := jwt.Generate(secret, "sess-1", "amlak-api", 30)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(30*time.Minute), exp, 5*time.Second)

	sid, err := jwt.Parse(secret, "amlak-api", token)
	require.NoError(t, err)
	assert.Equal(t, "sess-1", sid)
}

func TestParse_Rechazos(t *testing.T) {
	token, _, err := jwt.Generate(secret, "sess-1", "amlak-api", 30)
	require.NoError(t, err)

	_, err = jwt.Parse("otro-secreto", "amlak-api", token)
	assert.Error(t, err, "firma incorrecta")

	_, err = jwt.Parse(secret, "otro-emisor", token)
	assert.Error(t, err, "emisor distinto")

	expired, _, err := jwt.Generate(secret, "sess-1", "amlak-api", -1)
	require.NoError(t, err)
	_, err = jwt.Parse(secret, "amlak-api", expired)
	assert.ErrorIs(t, err, gojwt.ErrTokenExpired)

	none := gojwt.NewWithClaims(gojwt.SigningMethodNone, jwt.Claims{SessionID: "x"})
	unsigned, err := none.SignedString(gojwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = jwt.Parse(secret, "", unsigned)
	assert.Error(t, err, "alg none")
}

func TestGenerate_Validaciones(t *testing.T) {
	_, _, err := jwt.Generate("", "s", "", 10)
	assert.Error(t, err)
	_, _, err = jwt.Generate(secret, "", "", 10)
	assert.Error(t, err)
}
