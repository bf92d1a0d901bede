// Package token derives short, non-reversible identifiers from access
// tokens so raw credentials never appear in cache keys, rate-limit
// buckets, or log lines.
package token

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

// fingerprintLen is the number of hex characters kept from the digest.
const fingerprintLen = 16

// Fingerprint returns a deterministic one-way identifier for a token.
// Stable across process restarts; the token is not recoverable from it.
func Fingerprint(tok string) string {
	sum := sha256.Sum256([]byte(tok))
	return hex.EncodeToString(sum[:])[:fingerprintLen]
}

// CacheKey builds the cache key for one source's series over a day range.
// Two requests bearing the same token and range land on the same key.
func CacheKey(source, fingerprint string, from, to time.Time) string {
	const day = "2006-01-02"
	return fmt.Sprintf("contrib:%s:%s:%s_%s", source, fingerprint, from.UTC().Format(day), to.UTC().Format(day))
}
