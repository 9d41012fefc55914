package discovery

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"uetp/internal/domain"

	log15 "gopkg.in/inconshreveable/log15.v2"
)

// ModuleFile is one discovered test module on disk
type ModuleFile struct {
	Path     string
	Category domain.Category
}

// Scanner scans the category directories for test module files
type Scanner struct {
	skipDirs map[string]bool
}

// NewScanner creates a new Scanner with the given directories to skip
func NewScanner(skipDirs []string) *Scanner {
	skipMap := make(map[string]bool)
	for _, dir := range skipDirs {
		skipMap[dir] = true
	}
	return &Scanner{skipDirs: skipMap}
}

// Scan finds all test modules under the given root directory. Modules
// live in the integration, unit and validation subdirectories and
// follow the test_*.yaml naming convention. A missing category
// directory is skipped; a missing root is an error.
func (s *Scanner) Scan(root string) ([]ModuleFile, error) {
	var modules []ModuleFile

	// Clean and validate the root path
	root = filepath.Clean(root)
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("test root does not exist: %s", root)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("test root is not a directory: %s", root)
	}

	for _, category := range domain.Categories {
		dir := filepath.Join(root, string(category))
		if _, err := os.Stat(dir); err != nil {
			log15.Debug("category directory missing", "dir", dir)
			continue
		}

		err = filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
			if err != nil {
				return err
			}

			if d.IsDir() {
				name := d.Name()
				// Skip hidden directories (starting with .)
				if strings.HasPrefix(name, ".") && name != "." && name != ".." {
					return filepath.SkipDir
				}

				if s.skipDirs[name] {
					return filepath.SkipDir
				}

				return nil
			}

			if isModuleFile(d.Name()) {
				modules = append(modules, ModuleFile{Path: path, Category: category})
			}

			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	return modules, nil
}

// isModuleFile reports whether a file name follows the test module
// naming convention
func isModuleFile(name string) bool {
	if !strings.HasPrefix(name, "test_") {
		return false
	}
	return strings.HasSuffix(name, ".yaml") || strings.HasSuffix(name, ".yml")
}
