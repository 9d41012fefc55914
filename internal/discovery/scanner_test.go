package discovery

import (
	"os"
	"path/filepath"
	"testing"

	"uetp/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTestFile(t *testing.T, root, rel, content string) string {
	t.Helper()
	path := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestScannerScan(t *testing.T) {
	root := t.TempDir()

	writeTestFile(t, root, "integration/test_actor.yaml", "tests: []")
	writeTestFile(t, root, "unit/test_math.yml", "tests: []")
	writeTestFile(t, root, "unit/nested/test_vector.yaml", "tests: []")
	writeTestFile(t, root, "validation/test_assets.yaml", "tests: []")
	writeTestFile(t, root, "unit/helpers.yaml", "not a module")
	writeTestFile(t, root, "unit/test_notes.txt", "not yaml")
	writeTestFile(t, root, "unit/.archive/test_old.yaml", "hidden")
	writeTestFile(t, root, "unit/fixtures/test_skipme.yaml", "skipped dir")
	writeTestFile(t, root, "test_toplevel.yaml", "outside categories")

	scanner := NewScanner([]string{"fixtures"})

	t.Run("finds modules in category directories", func(t *testing.T) {
		modules, err := scanner.Scan(root)
		require.NoError(t, err)
		require.Len(t, modules, 4)

		byCategory := make(map[domain.Category][]string)
		for _, m := range modules {
			byCategory[m.Category] = append(byCategory[m.Category], filepath.Base(m.Path))
		}
		assert.Equal(t, []string{"test_actor.yaml"}, byCategory[domain.CategoryIntegration])
		assert.Equal(t, []string{"test_math.yml", "test_vector.yaml"}, byCategory[domain.CategoryUnit])
		assert.Equal(t, []string{"test_assets.yaml"}, byCategory[domain.CategoryValidation])
	})

	t.Run("category order is deterministic", func(t *testing.T) {
		first, err := scanner.Scan(root)
		require.NoError(t, err)
		second, err := scanner.Scan(root)
		require.NoError(t, err)
		assert.Equal(t, first, second)
	})

	t.Run("missing category directory is tolerated", func(t *testing.T) {
		partial := t.TempDir()
		writeTestFile(t, partial, "unit/test_only.yaml", "tests: []")

		modules, err := scanner.Scan(partial)
		require.NoError(t, err)
		require.Len(t, modules, 1)
		assert.Equal(t, domain.CategoryUnit, modules[0].Category)
	})

	t.Run("returns error for non-existent root", func(t *testing.T) {
		_, err := scanner.Scan(filepath.Join(root, "nope"))
		assert.ErrorContains(t, err, "does not exist")
	})

	t.Run("returns error for file instead of directory", func(t *testing.T) {
		file := writeTestFile(t, root, "rootfile.txt", "x")
		_, err := scanner.Scan(file)
		assert.ErrorContains(t, err, "not a directory")
	})
}

func TestIsModuleFile(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"test_actor.yaml", true},
		{"test_actor.yml", true},
		{"test_.yaml", true},
		{"actor_test.yaml", false},
		{"test_actor.json", false},
		{"test_actor", false},
		{"readme.md", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, isModuleFile(tt.name), "name %q", tt.name)
	}
}
