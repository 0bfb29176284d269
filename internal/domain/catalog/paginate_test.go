package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaginate(t *testing.T) {
	items := make([]int, 13)
	for i := range items {
		items[i] = i + 1
	}

	t.Run("thirteen records at page size six", func(t *testing.T) {
		p := Paginate(items, 1, 6)
		assert.Equal(t, 3, p.PagesCount)
		assert.Equal(t, 13, p.Total)
		require.Len(t, p.Items, 6)
		assert.Equal(t, 1, p.Items[0])
	})

	t.Run("last page holds the remainder", func(t *testing.T) {
		p := Paginate(items, 3, 6)
		require.Len(t, p.Items, 1)
		assert.Equal(t, 13, p.Items[0])
	})

	t.Run("page past the end is empty", func(t *testing.T) {
		p := Paginate(items, 9, 6)
		assert.Empty(t, p.Items)
		assert.Equal(t, 3, p.PagesCount)
	})

	t.Run("page index below one clamps to one", func(t *testing.T) {
		p := Paginate(items, 0, 6)
		assert.Equal(t, 1, p.Index)
		require.Len(t, p.Items, 6)
	})

	t.Run("exact multiple", func(t *testing.T) {
		p := Paginate(items[:12], 1, 6)
		assert.Equal(t, 2, p.PagesCount)
	})

	t.Run("empty input", func(t *testing.T) {
		p := Paginate([]int{}, 1, 6)
		assert.Empty(t, p.Items)
		assert.Equal(t, 0, p.PagesCount)
	})
}

func TestPagesCount(t *testing.T) {
	assert.Equal(t, 3, PagesCount(13, 6))
	assert.Equal(t, 2, PagesCount(12, 6))
	assert.Equal(t, 1, PagesCount(1, 6))
	assert.Equal(t, 0, PagesCount(0, 6))
}
