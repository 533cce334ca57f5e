package engine

import (
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/crypto/sha3"
)

// newWorkDir creates a fresh, uniquely named temp directory for one engine
// session's debug log and graph SVG, and returns its path. The name is
// derived from the engine's argv and the current time hashed with SHA3-256,
// the same hash core/planfmt/idfactory.go uses to derive deterministic
// identifiers - applied here directly rather than through HKDF, since the
// directory name needs only to be collision-resistant, not a derived key.
func newWorkDir(argv []string) (string, error) {
	h := sha3.New256()
	h.Write([]byte(strings.Join(argv, "\x00")))
	fmt.Fprintf(h, "\x00%d", time.Now().UnixNano())
	name := "kdebug-" + hex.EncodeToString(h.Sum(nil))[:16]

	dir := filepath.Join(os.TempDir(), name)
	if err := os.Mkdir(dir, 0o755); err != nil {
		return "", fmt.Errorf("engine: creating work dir: %w", err)
	}
	return dir, nil
}
