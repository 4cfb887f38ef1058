package auth

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestGenerateVerifyRoundtrip(t *testing.T) {
	manager := NewJWTManager("test-secret", time.Hour)

	token, err := manager.Generate("user-42")
	require.NoError(t, err)

	claims, err := manager.Verify(token)
	require.NoError(t, err)
	require.Equal(t, "user-42", claims.Subject)

	exp, err := manager.Expiry(token)
	require.NoError(t, err)
	require.WithinDuration(t, time.Now().Add(time.Hour), exp, time.Minute)

	// токен, подписанный другим секретом, не проходит
	other := NewJWTManager("other-secret", time.Hour)
	_, err = other.Verify(token)
	require.Error(t, err)
}

func TestExtractTokenFromRequest(t *testing.T) {
	newRequest := func() *http.Request {
		r, err := http.NewRequest(http.MethodGet, "/api/v1/rooms/general/live", nil)
		require.NoError(t, err)
		return r
	}

	r := newRequest()
	_, err := ExtractTokenFromRequest(r)
	require.Error(t, err)

	r = newRequest()
	r.AddCookie(&http.Cookie{Name: "token", Value: "from-cookie"})
	token, err := ExtractTokenFromRequest(r)
	require.NoError(t, err)
	require.Equal(t, "from-cookie", token)

	// header, когда он есть, выигрывает у cookie
	r.Header.Set("Authorization", "Bearer from-header")
	token, err = ExtractTokenFromRequest(r)
	require.NoError(t, err)
	require.Equal(t, "from-header", token)

	r = newRequest()
	r.Header.Set("Authorization", "Basic not-a-bearer")
	_, err = ExtractTokenFromRequest(r)
	require.Error(t, err)
}
