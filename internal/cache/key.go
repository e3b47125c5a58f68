package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"strings"
)

// DeriveKey computes the cache key for a transcription request: a sha256 of
// every input that influences the output, truncated to 16 hex characters.
// The file's modification time is part of the key, so editing or replacing
// the audio invalidates old entries implicitly. If the mtime cannot be read
// the component degrades to an empty string; the key is still computed,
// just keyed looser. Collisions at 16 hex chars are accepted for this
// workload; there is no collision handling.
func DeriveKey(audioPath, model, language, instructions string) string {
	mtime := ""
	if fi, err := os.Stat(audioPath); err == nil {
		mtime = fmt.Sprintf("%.6f", float64(fi.ModTime().UnixNano())/1e9)
	}

	preimage := strings.Join([]string{audioPath, mtime, model, language, instructions}, "|")
	sum := sha256.Sum256([]byte(preimage))
	return hex.EncodeToString(sum[:])[:16]
}
