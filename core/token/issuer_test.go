package token_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/sessionkit/core/token"
)

// failingReader always errors to simulate an unavailable entropy source.
type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, errors.New("entropy exhausted")
}

func TestIssuer_Issue(t *testing.T) {
	t.Parallel()

	t.Run("returns hex string of double the byte length", func(t *testing.T) {
		t.Parallel()

		issuer := token.New()
		for _, n := range []int{1, 16, 32, 64} {
			raw, err := issuer.Issue(n)
			require.NoError(t, err)
			assert.Len(t, raw, n*2)
		}
	})

	t.Run("successive calls never collide", func(t *testing.T) {
		t.Parallel()

		issuer := token.New()
		first, err := issuer.Issue(32)
		require.NoError(t, err)
		second, err := issuer.Issue(32)
		require.NoError(t, err)
		assert.NotEqual(t, first, second)
	})

	t.Run("rejects non-positive lengths", func(t *testing.T) {
		t.Parallel()

		issuer := token.New()
		for _, n := range []int{0, -1, -32} {
			_, err := issuer.Issue(n)
			assert.ErrorIs(t, err, token.ErrInvalidLength)
		}
	})

	t.Run("propagates entropy source failure", func(t *testing.T) {
		t.Parallel()

		issuer := token.New(token.WithRandSource(failingReader{}))
		_, err := issuer.Issue(32)
		require.ErrorIs(t, err, token.ErrEntropySource)
	})
}

func TestIssuer_IssueTyped(t *testing.T) {
	t.Parallel()

	t.Run("applies configured lengths and TTLs", func(t *testing.T) {
		t.Parallel()

		base := time.Now().UTC().Truncate(time.Second)
		cfg := token.Config{
			AccessLength:  8,
			RefreshLength: 16,
			CSRFLength:    4,
			AccessTTL:     time.Hour,
			RefreshTTL:    24 * time.Hour,
			CSRFTTL:       30 * time.Minute,
		}
		issuer := token.NewFromConfig(cfg, token.WithClock(func() time.Time { return base }))

		access, err := issuer.IssueAccess()
		require.NoError(t, err)
		assert.Len(t, access.Raw(), 16)
		assert.Equal(t, base.Add(time.Hour), access.ExpiresAt())

		refresh, err := issuer.IssueRefresh()
		require.NoError(t, err)
		assert.Len(t, refresh.Raw(), 32)
		assert.Equal(t, base.Add(24*time.Hour), refresh.ExpiresAt())

		csrf, err := issuer.IssueCSRF()
		require.NoError(t, err)
		assert.Len(t, csrf.Raw(), 8)
		assert.Equal(t, base.Add(30*time.Minute), csrf.ExpiresAt())
	})

	t.Run("entropy failure surfaces through typed issuance", func(t *testing.T) {
		t.Parallel()

		issuer := token.New(token.WithRandSource(failingReader{}))
		_, err := issuer.IssueAccess()
		assert.ErrorIs(t, err, token.ErrEntropySource)
	})
}
