// Package archive moves processed source documents out of the way
// once their records have been written to the ledger.
package archive

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Move relocates each existing path into targetDir, creating the
// directory if needed. A name collision gets a timestamp suffix
// instead of overwriting. Missing sources are skipped silently.
func Move(paths []string, targetDir string) error {
	if strings.TrimSpace(targetDir) == "" {
		return nil
	}

	if err := os.MkdirAll(targetDir, 0o755); err != nil {
		return fmt.Errorf("creating archive dir: %w", err)
	}

	for _, src := range paths {
		if _, err := os.Stat(src); err != nil {
			continue
		}

		name := filepath.Base(src)
		dst := filepath.Join(targetDir, name)

		if _, err := os.Stat(dst); err == nil {
			ext := filepath.Ext(name)
			stem := strings.TrimSuffix(name, ext)
			stamp := time.Now().Format("20060102_150405")
			dst = filepath.Join(targetDir, fmt.Sprintf("%s_%s%s", stem, stamp, ext))
		}

		if err := os.Rename(src, dst); err != nil {
			return fmt.Errorf("moving %s to archive: %w", src, err)
		}
	}
	return nil
}
