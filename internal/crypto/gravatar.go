package crypto

import (
	"crypto/md5"
	"fmt"
	"strings"
)

// GravatarURL derives the Gravatar image URL for an email address.
// The address is trimmed and lowercased before hashing, per the Gravatar spec.
func GravatarURL(email string) string {
	normalized := strings.ToLower(strings.TrimSpace(email))
	return fmt.Sprintf("https://www.gravatar.com/avatar/%x", md5.Sum([]byte(normalized)))
}
