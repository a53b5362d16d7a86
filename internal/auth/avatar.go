package auth

import (
	"crypto/md5"
	"encoding/hex"
	"net/url"
	"strings"
)

// Avatar options: 200px, "pg" rating, "mystery man" fallback image.
const (
	avatarSize    = "200"
	avatarRating  = "pg"
	avatarDefault = "mm"
)

// AvatarURL derives a Gravatar URL from an email address. The result depends
// only on the address, compared case- and whitespace-insensitively, so the
// same email always maps to the same avatar. Like Gravatar's own helpers it
// is protocol-relative.
func AvatarURL(email string) string {
	sum := md5.Sum([]byte(strings.ToLower(strings.TrimSpace(email))))

	q := url.Values{}
	q.Set("s", avatarSize)
	q.Set("r", avatarRating)
	q.Set("d", avatarDefault)

	return "//www.gravatar.com/avatar/" + hex.EncodeToString(sum[:]) + "?" + q.Encode()
}
