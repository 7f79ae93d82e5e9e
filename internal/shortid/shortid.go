// internal/shortid/shortid.go
package shortid

import (
	"crypto/rand"
	"math/big"
	"math/bits"
	"strings"
	"time"
)

const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// TimeSeeded returns a '*'-prefixed string of n characters drawn from
// [A-Z0-9], seeded from the current monotonic-ish nanosecond clock. Two
// clients starting a game in the same lobby at the same wall time get the
// same seed only if they ask the server, which is the point: the server
// generates one seed and relays it to everyone.
func TimeSeeded(n int) string {
	var b strings.Builder
	b.Grow(n + 1)
	b.WriteByte('*')

	seed := uint64(time.Now().UnixNano())
	for i := 0; i < n; i++ {
		// Mix per character: xor with index, rotate.
		seed ^= uint64(i)
		seed = bits.RotateLeft64(seed, 7)
		b.WriteByte(alphabet[seed%uint64(len(alphabet))])
	}
	return b.String()
}

// LobbyCode returns a 5-character code from [A-Z0-9] using the process
// random source. Callers must regenerate on collision.
func LobbyCode() string {
	var b strings.Builder
	b.Grow(5)
	max := big.NewInt(int64(len(alphabet)))
	for i := 0; i < 5; i++ {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			// crypto/rand only fails if the OS entropy source is broken;
			// fall back to the clock rather than return a short code.
			b.WriteByte(alphabet[time.Now().UnixNano()%int64(len(alphabet))])
			continue
		}
		b.WriteByte(alphabet[idx.Int64()])
	}
	return b.String()
}
