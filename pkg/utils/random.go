package utils

import (
	"crypto/rand"
	"math/big"
)

// Share codes avoid ambiguous characters (no 0/O, 1/I/L) so they survive
// being read aloud in a voice channel.
const shareCodeAlphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"

// ShareCodeLength is the fixed length of one-time share codes.
const ShareCodeLength = 8

// GenerateShareCode returns a high-entropy one-time code.
func GenerateShareCode() string {
	return randomString(ShareCodeLength, shareCodeAlphabet)
}

func randomString(n int, alphabet string) string {
	b := make([]byte, n)
	max := big.NewInt(int64(len(alphabet)))
	for i := range b {
		num, err := rand.Int(rand.Reader, max)
		if err != nil {
			// crypto/rand failing means the platform is broken; don't hand
			// out a guessable code.
			return ""
		}
		b[i] = alphabet[num.Int64()]
	}
	return string(b)
}
