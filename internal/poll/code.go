package poll

import (
	"crypto/rand"
	"errors"
)

const (
	codeAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	codeLength   = 5

	// maxAllocateAttempts bounds redraws across both a positive existence
	// probe and a lost conditional write. 62^5 codes make more than a
	// couple of collisions in a row vanishingly unlikely.
	maxAllocateAttempts = 8
)

// ErrAllocationExhausted indicates every allocation attempt collided.
var ErrAllocationExhausted = errors.New("could not allocate an unused poll code")

// randomCode draws codeLength symbols uniformly from codeAlphabet.
// Rejection sampling keeps the draw uniform: a plain modulo would map 256
// byte values onto 62 symbols and skew the first 256%62 symbols by 25%.
func randomCode() (string, error) {
	const limit = byte(256 - 256%len(codeAlphabet))
	out := make([]byte, 0, codeLength)
	buf := make([]byte, codeLength)
	for len(out) < codeLength {
		if _, err := rand.Read(buf); err != nil {
			return "", err
		}
		for _, b := range buf {
			if b >= limit {
				continue
			}
			out = append(out, codeAlphabet[int(b)%len(codeAlphabet)])
			if len(out) == codeLength {
				break
			}
		}
	}
	return string(out), nil
}
