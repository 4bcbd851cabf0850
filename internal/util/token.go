package util

import (
	"crypto/rand"
	"encoding/hex"
)

// Token returns a hex-encoded secret of nbytes random bytes.
func Token(nbytes int) string {
	buf := make([]byte, nbytes)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand never fails on supported platforms
		panic(err)
	}
	return hex.EncodeToString(buf)
}
