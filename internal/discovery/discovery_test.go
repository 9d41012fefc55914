package discovery

import (
	"testing"

	"uetp/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const actorModule = `
tests:
  - name: test_spawn
    steps: [{command: spawn_actor}]
  - name: test_delete
    steps: [{command: delete_actor}]
`

const mathModule = `
tests:
  - name: test_add
    steps: [{command: add}]
`

func newDiscovery() *Discovery {
	return NewDiscovery(NewScanner(nil), NewParser(testDefaults()))
}

func TestDiscover(t *testing.T) {
	root := t.TempDir()
	writeTestFile(t, root, "integration/test_actor.yaml", actorModule)
	writeTestFile(t, root, "unit/test_math.yaml", mathModule)
	writeTestFile(t, root, "unit/test_broken.yaml", "tests: [unclosed")

	d := newDiscovery()

	t.Run("loads good modules and skips broken ones", func(t *testing.T) {
		suites, err := d.Discover(root, nil)
		require.NoError(t, err)
		require.Len(t, suites, 2)
		assert.Contains(t, suites, "test_actor")
		assert.Contains(t, suites, "test_math")
		assert.Equal(t, 3, CountUnits(suites))
	})

	t.Run("category flag prunes whole suites before parsing", func(t *testing.T) {
		suites, err := d.Discover(root, &Filter{UnitOnly: true})
		require.NoError(t, err)
		require.Len(t, suites, 1)
		assert.Contains(t, suites, "test_math")
	})

	t.Run("suites emptied by unit filters are dropped", func(t *testing.T) {
		suites, err := d.Discover(root, &Filter{Patterns: []string{"*spawn*"}})
		require.NoError(t, err)
		require.Len(t, suites, 1)
		require.Len(t, suites["test_actor"].Units, 1)
		assert.Equal(t, "test_actor.test_spawn", suites["test_actor"].Units[0].Name)
	})

	t.Run("missing root is an error", func(t *testing.T) {
		_, err := d.Discover(root+"-missing", nil)
		assert.Error(t, err)
	})
}

func TestDiscoverDuplicateModuleNames(t *testing.T) {
	root := t.TempDir()
	writeTestFile(t, root, "unit/test_actor.yaml", mathModule)
	writeTestFile(t, root, "validation/test_actor.yaml", actorModule)

	suites, err := newDiscovery().Discover(root, nil)
	require.NoError(t, err)
	require.Len(t, suites, 1)

	// The unit copy is scanned first and wins
	assert.Equal(t, domain.CategoryUnit, suites["test_actor"].Category)
	assert.Len(t, suites["test_actor"].Units, 1)
}
