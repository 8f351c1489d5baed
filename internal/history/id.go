package history

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"
)

// NewID creates a history entry ID from the current wall clock plus a random
// suffix, so concurrent generations in the same millisecond stay distinct.
func NewID() string {
	b := make([]byte, 4)
	if _, err := rand.Read(b); err != nil {
		// crypto/rand failing means the platform is broken; fall back to
		// the clock alone rather than aborting a generation.
		return fmt.Sprintf("gen-%d", time.Now().UnixNano())
	}
	return fmt.Sprintf("gen-%d-%s", time.Now().UnixMilli(), hex.EncodeToString(b))
}
