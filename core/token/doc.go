// Package token provides cryptographically secure session credential generation
// and hashed token value objects for timing-safe validation.
//
// The package covers two concerns: the Issuer mints fixed-length random secrets
// from crypto/rand, and the AccessToken/RefreshToken/CSRFToken value objects pair
// a raw secret with an expiry while keeping a one-way SHA-256 digest for all
// comparisons. Equality and presented-secret matching run in constant time over
// the digest, never over the raw secret, to avoid timing side channels.
//
// # Issuing Tokens
//
//	issuer := token.New()
//
//	access, err := issuer.IssueAccess()   // 32 random bytes, 1h TTL
//	refresh, err := issuer.IssueRefresh() // 64 random bytes, 30d TTL
//	csrf, err := issuer.IssueCSRF()       // 16 random bytes, 1h TTL
//
// Raw tokens are hex-encoded, so the visible length is double the byte length.
// Lengths and TTLs come from Config (env-mapped) and are not hardcoded.
//
// # Validation
//
//	if access.Matches(presentedSecret) && !access.IsExpired(time.Now()) {
//		// authorized
//	}
//
// Repositories store only the digest, obtained via Hash or HashString:
//
//	sess, err := repo.GetByAccessToken(ctx, token.HashString(presented))
//
// # Errors
//
// Construction errors are hard and immediate: ErrEmptyToken and ErrPastExpiry are
// returned by the value object constructors, ErrInvalidLength and ErrEntropySource
// by the issuer. An unavailable entropy source is always propagated, never
// silently replaced with a weaker source.
package token
