package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChunk(t *testing.T) {
	assert.Equal(t, [][]int{{1, 2}, {3, 4}, {5}}, Chunk([]int{1, 2, 3, 4, 5}, 2))
	assert.Equal(t, [][]int{{1, 2, 3}}, Chunk([]int{1, 2, 3}, 0))
	assert.Nil(t, Chunk([]int{}, 3))
}

func TestUniqueBy(t *testing.T) {
	type row struct {
		name string
		n    int
	}
	got := UniqueBy([]row{{"a", 1}, {"b", 2}, {"a", 3}}, func(r row) string { return r.name })
	assert.Equal(t, []row{{"a", 1}, {"b", 2}}, got)
}

func TestFilterMapFind(t *testing.T) {
	even := Filter([]int{1, 2, 3, 4}, func(n int) bool { return n%2 == 0 })
	assert.Equal(t, []int{2, 4}, even)
	assert.Equal(t, []string{"2", "4"}, Map(even, func(n int) string { return JoinInts([]int{n}) }))
	assert.Nil(t, Find(even, func(n int) bool { return n > 10 }))
	assert.Equal(t, 4, *Find(even, func(n int) bool { return n > 2 }))
}
