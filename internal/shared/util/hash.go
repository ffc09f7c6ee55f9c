package util

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
)

// HashOwner returns an opaque, path-safe key for a user ID so object keys never expose it.
func HashOwner(userID int64) string {
	sum := sha256.Sum256([]byte(strconv.FormatInt(userID, 10)))
	return hex.EncodeToString(sum[:])
}
