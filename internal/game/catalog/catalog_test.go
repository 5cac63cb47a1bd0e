package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategories_ItemsAreDistinct(t *testing.T) {
	t.Parallel()

	for _, c := range Categories() {
		assert.NotEmpty(t, c.Name)
		assert.NotEmpty(t, c.Icon)
		assert.GreaterOrEqual(t, len(c.Items), 8)

		seen := make(map[string]struct{})
		for _, item := range c.Items {
			_, dup := seen[item]
			assert.False(t, dup, "duplicate item %q in %s", item, c.Name)
			seen[item] = struct{}{}
		}
	}
}

func TestFind(t *testing.T) {
	t.Parallel()

	c, ok := Find("animals")
	require.True(t, ok)
	assert.Equal(t, "animals", c.Name)
	assert.True(t, c.HasItem("Tiger"))
	assert.False(t, c.HasItem("Blue"))

	_, ok = Find("nonsense")
	assert.False(t, ok)
}
