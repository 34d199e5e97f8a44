package id

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"

	"github.com/oklog/ulid/v2"
)

// New generates a new ULID string. ULIDs sort by creation time, so
// notification and subscription IDs double as a coarse ordering key.
func New() string {
	return ulid.MustNew(ulid.Now(), rand.Reader).String()
}

// Derive returns a stable ID for a natural key such as a push endpoint URL,
// so writes keyed on it are upserts.
func Derive(key string) string {
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:16])
}
