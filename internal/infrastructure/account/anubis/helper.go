package anubis

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// principalKey is the cache key for a bearer token. The raw token never
// reaches the cache.
func principalKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return "principal:" + hex.EncodeToString(sum[:])
}

// joinEndpoint resolves path against baseURL; an absolute path wins.
func joinEndpoint(baseURL, path string) string {
	path = strings.TrimSpace(path)
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	base := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if path == "" {
		return base
	}
	return base + "/" + strings.TrimLeft(path, "/")
}
