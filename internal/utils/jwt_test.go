package utils_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"book-catalog-service/internal/utils"
)

func TestJWTRoundTrip(t *testing.T) {
	utils.InitJwtSecret("test-secret")

	token, err := utils.GenerateJWT("user-42")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := utils.ParseJWT(token)
	require.NoError(t, err)
	assert.Equal(t, "user-42", claims.UserID)
}

func TestParseJWT_Garbage(t *testing.T) {
	utils.InitJwtSecret("test-secret")

	_, err := utils.ParseJWT("not.a.token")
	require.Error(t, err)
}

func TestParseJWT_WrongSecret(t *testing.T) {
	utils.InitJwtSecret("first-secret")
	token, err := utils.GenerateJWT("user-42")
	require.NoError(t, err)

	utils.InitJwtSecret("second-secret")
	_, err = utils.ParseJWT(token)
	require.Error(t, err)
}
