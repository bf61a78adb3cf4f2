package session

import (
	"crypto/rand"
	"encoding/base64"
)

// maxTokenLen bounds presented tokens before hashing. 64 random bytes encode
// to 86 characters; anything far longer is not ours.
const maxTokenLen = 256

func newOpaqueToken(nBytes int) (string, error) {
	b := make([]byte, nBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	// URL-safe, no padding: safe as a cookie value.
	return base64.RawURLEncoding.EncodeToString(b), nil
}
