package notes

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// LoadDir parses every supported file under dir, walking subdirectories
// in lexical order. A file that fails to parse is logged and skipped so
// one bad note cannot block the rest.
func LoadDir(dir string, log *slog.Logger) ([]*Note, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("notes directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("notes directory: %s is not a directory", dir)
	}

	var loaded []*Note
	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		name := d.Name()
		if strings.HasPrefix(name, ".") {
			if d.IsDir() && path != dir {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if !IsSupportedExtension(name) {
			return nil
		}
		parser, err := ForFile(name)
		if err != nil {
			return nil
		}

		f, openErr := os.Open(path)
		if openErr != nil {
			log.Warn("skipping unreadable note", "path", path, "error", openErr)
			return nil
		}
		note, parseErr := parser.Parse(f, name)
		f.Close()
		if parseErr != nil {
			log.Warn("skipping unparseable note", "path", path, "error", parseErr)
			return nil
		}
		note.Path = path
		loaded = append(loaded, note)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk notes directory: %w", err)
	}

	return loaded, nil
}
