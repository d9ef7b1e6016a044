package utils

import (
	"testing"
	"time"

	"cargodesk/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestIssuer() *TokenIssuer {
	return NewTokenIssuer(config.LoadTestConfig().JWT)
}

func TestIssuePairRoundTrip(t *testing.T) {
	issuer := newTestIssuer()

	pair, err := issuer.IssuePair(PrincipalAdmin, 7, "MANAGER")
	require.NoError(t, err)

	claims, err := issuer.ParseAccess(pair.AccessToken, PrincipalAdmin)
	require.NoError(t, err)
	assert.Equal(t, uint64(7), claims.PrincipalID)
	assert.Equal(t, "MANAGER", claims.Role)

	claims, err = issuer.ParseRefresh(pair.RefreshToken, PrincipalAdmin)
	require.NoError(t, err)
	assert.Equal(t, RefreshToken, claims.Type)
}

func TestTokensAreNotInterchangeable(t *testing.T) {
	issuer := newTestIssuer()

	pair, err := issuer.IssuePair(PrincipalAdmin, 1, "ADMIN")
	require.NoError(t, err)

	_, err = issuer.ParseAccess(pair.RefreshToken, PrincipalAdmin)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = issuer.ParseRefresh(pair.AccessToken, PrincipalAdmin)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = issuer.ParseAccess(pair.AccessToken, PrincipalClient)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokensAreUniquePerIssue(t *testing.T) {
	issuer := newTestIssuer()
	issuer.now = func() time.Time { return time.Unix(1_700_000_000, 0) }

	a, err := issuer.IssueAccess(PrincipalClient, 3, "")
	require.NoError(t, err)
	b, err := issuer.IssueAccess(PrincipalClient, 3, "")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestExpiredToken(t *testing.T) {
	issuer := newTestIssuer()
	issuer.now = func() time.Time { return time.Now().Add(-48 * time.Hour) }

	token, err := issuer.IssueAccess(PrincipalClient, 3, "")
	require.NoError(t, err)

	_, err = issuer.ParseAccess(token, PrincipalClient)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestGenerateNumericCode(t *testing.T) {
	code, err := GenerateNumericCode(6)
	require.NoError(t, err)
	assert.Len(t, code, 6)
	assert.Regexp(t, `^[0-9]{6}$`, code)
}
