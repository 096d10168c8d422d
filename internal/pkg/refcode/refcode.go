package refcode

import (
	"crypto/rand"
	"fmt"
)

// alphabet deliberately omits 0/O and 1/I so codes survive being read out
// loud or typed from a paper transfer slip.
const alphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// New generates a payment reference code of the form PSD-XXXXXXXX.
func New() (string, error) {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate reference code: %w", err)
	}
	for i := range b {
		b[i] = alphabet[int(b[i])%len(alphabet)]
	}
	return "PSD-" + string(b), nil
}
