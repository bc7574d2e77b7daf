package domain

import (
	"crypto/sha3"
	"encoding/hex"
	"encoding/json"
)

// Fingerprint returns the lowercase hex SHA3-256 of the policy body with the
// volatile top-level @id and @type stripped. Connectors mint a fresh offer id
// on every catalog render, so the id must not participate in the digest or a
// cached entry would never revalidate as current.
func Fingerprint(policy map[string]any) string {
	if len(policy) == 0 {
		return ""
	}
	body := make(map[string]any, len(policy))
	for k, v := range policy {
		if k == "@id" || k == "@type" {
			continue
		}
		body[k] = v
	}
	// map keys marshal in sorted order, so the digest is stable
	b, err := json.Marshal(body)
	if err != nil {
		return ""
	}
	sum := sha3.Sum256(b)
	return hex.EncodeToString(sum[:])
}
