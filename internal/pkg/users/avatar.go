package users

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

const avatarSize = 200

// gravatarURL is the fallback avatar for accounts without a provider image.
// d=mp serves the neutral silhouette when no Gravatar exists.
func gravatarURL(email string) string {
	sum := sha256.Sum256([]byte(strings.ToLower(strings.TrimSpace(email))))
	return fmt.Sprintf("https://www.gravatar.com/avatar/%s?s=%d&d=mp", hex.EncodeToString(sum[:]), avatarSize)
}
