// Package fileid provides a deterministic record ID from a file path.
package fileid

import (
	"crypto/sha256"
	"encoding/hex"
	"path/filepath"
)

const prefix = "file:"

// FromPath returns a stable record ID for the given path. Same path always
// yields the same ID. Records are normalized at ingestion so that every
// downstream lookup uses this ID, never a name fallback.
func FromPath(path string) string {
	normalized := filepath.Clean(path)
	hash := sha256.Sum256([]byte(normalized))
	return prefix + hex.EncodeToString(hash[:])
}
