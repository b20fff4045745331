package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// etagLen is the number of hex digits kept from the digest.
const etagLen = 16

// ETag returns a strong entity tag for a served body.
func ETag(body []byte) string {
	sum := sha256.Sum256(body)
	return `"` + hex.EncodeToString(sum[:])[:etagLen] + `"`
}

// MatchesETag reports whether an If-None-Match header value names etag.
// Weak comparison applies, as RFC 9110 requires for If-None-Match.
func MatchesETag(header, etag string) bool {
	header = strings.TrimSpace(header)
	switch header {
	case "":
		return false
	case "*":
		return true
	}
	for candidate := range strings.SplitSeq(header, ",") {
		if strings.TrimPrefix(strings.TrimSpace(candidate), "W/") == etag {
			return true
		}
	}
	return false
}
