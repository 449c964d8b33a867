package datagen

import (
	"fmt"
	"os"
	"path/filepath"
)

// WriteCalendar writes the generated document to path, creating parent
// directories as needed.
func WriteCalendar(doc, path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
