package selection

import (
	crand "crypto/rand"
	"io"
	"math/big"
	mrand "math/rand/v2"
	"sync"

	"github.com/julianstephens/riseroll/internal/logger"
)

// IndexSource returns a uniformly distributed index in [0, n). Callers guarantee n > 0.
type IndexSource interface {
	Index(n int) int
}

// IndexFunc adapts a plain function to IndexSource.
type IndexFunc func(n int) int

func (f IndexFunc) Index(n int) int { return f(n) }

// CryptoSource draws indices from the system entropy source. crypto/rand.Int uses
// rejection sampling, so there is no modulo bias. If the entropy source fails the
// draw falls back to the auto-seeded math/rand/v2 generator.
type CryptoSource struct {
	reader io.Reader
	warn   sync.Once
}

// NewCryptoSource returns a source backed by crypto/rand.Reader.
func NewCryptoSource() *CryptoSource {
	return &CryptoSource{reader: crand.Reader}
}

func (c *CryptoSource) Index(n int) int {
	if c.reader != nil {
		v, err := crand.Int(c.reader, big.NewInt(int64(n)))
		if err == nil {
			return int(v.Int64())
		}
		c.warn.Do(func() {
			logger.Warn("Strong random source unavailable, using pseudo-random fallback", "error", err)
		})
	}
	return mrand.IntN(n)
}
