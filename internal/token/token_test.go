package token

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vidtube-server/internal/apierr"
)

func newTestCodec() *Codec {
	return NewCodec(Config{
		AccessSecret:  []byte("test-access-secret"),
		RefreshSecret: []byte("test-refresh-secret"),
		AccessTTL:     15 * time.Minute,
		RefreshTTL:    10 * 24 * time.Hour,
	})
}

func TestCodec_IssueAndVerify(t *testing.T) {
	t.Parallel()

	codec := newTestCodec()

	access, err := codec.IssueAccessToken("user-1")
	require.NoError(t, err)
	require.NotEmpty(t, access)

	refresh, err := codec.IssueRefreshToken("user-1")
	require.NoError(t, err)
	require.NotEmpty(t, refresh)

	subject, err := codec.Verify(access, Access)
	require.NoError(t, err)
	assert.Equal(t, "user-1", subject)

	subject, err = codec.Verify(refresh, Refresh)
	require.NoError(t, err)
	assert.Equal(t, "user-1", subject)
}

func TestCodec_Verify_WrongKind(t *testing.T) {
	t.Parallel()

	codec := newTestCodec()

	access, err := codec.IssueAccessToken("user-1")
	require.NoError(t, err)

	_, err = codec.Verify(access, Refresh)
	require.Error(t, err)
	assert.ErrorIs(t, err, apierr.ErrUnauthorized)
}

func TestCodec_Verify_Tampered(t *testing.T) {
	t.Parallel()

	codec := newTestCodec()

	refresh, err := codec.IssueRefreshToken("user-1")
	require.NoError(t, err)

	parts := strings.Split(refresh, ".")
	require.Len(t, parts, 3)
	tampered := parts[0] + "." + parts[1] + ".AAAA" + parts[2][4:]

	_, err = codec.Verify(tampered, Refresh)
	require.Error(t, err)
	assert.ErrorIs(t, err, apierr.ErrUnauthorized)
}

func TestCodec_Verify_Expired(t *testing.T) {
	t.Parallel()

	codec := NewCodec(Config{
		AccessSecret:  []byte("a"),
		RefreshSecret: []byte("r"),
		AccessTTL:     -1 * time.Second,
		RefreshTTL:    -1 * time.Second,
	})

	expired, err := codec.IssueRefreshToken("user-1")
	require.NoError(t, err)

	_, err = codec.Verify(expired, Refresh)
	require.Error(t, err)
	assert.ErrorIs(t, err, apierr.ErrUnauthorized)
}

func TestCodec_Verify_Garbage(t *testing.T) {
	t.Parallel()

	codec := newTestCodec()

	_, err := codec.Verify("not-a-token", Access)
	require.Error(t, err)
	assert.ErrorIs(t, err, apierr.ErrUnauthorized)
}
