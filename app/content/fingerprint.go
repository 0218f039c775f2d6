package content

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// Fingerprint hashes normalized title+body into a secondary dedup key
// that is independent of the item's link, so the same story
// republished under a different URL is still caught. Text-less items
// (photo-only posts) yield "": they carry no content to compare and
// dedup by identity key alone.
func Fingerprint(title, body string) string {
	title = canonicalize(title)
	body = canonicalize(body)
	if title == "" && body == "" {
		return ""
	}

	hash := sha256.Sum256([]byte(fmt.Sprintf("%s|%s", title, body)))
	return hex.EncodeToString(hash[:])
}

func canonicalize(text string) string {
	return strings.ToLower(strings.Join(strings.Fields(text), " "))
}
