package slist

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCompare(t *testing.T) {
	tests := []struct {
		a, b []int
		want int
	}{
		{[]int{1, 2, 3}, []int{1, 2, 4}, -1},
		{[]int{1, 2}, []int{1, 2, 3}, -1},
		{[]int{1, 2, 3}, []int{1, 2, 3}, 0},
		{nil, []int{1}, -1},
		{nil, nil, 0},
		{[]int{2}, []int{1, 9, 9}, 1},
		{[]int{1, 2, 3}, []int{1, 2}, 1},
	}
	for _, tt := range tests {
		a, b := Of(tt.a...), Of(tt.b...)
		got := Compare(a, b)
		assert.Equal(t, tt.want, got, "%v vs %v", tt.a, tt.b)

		assert.Equal(t, tt.want < 0, Less(a, b))
		assert.Equal(t, tt.want <= 0, LessOrEqual(a, b))
		assert.Equal(t, tt.want > 0, Greater(a, b))
		assert.Equal(t, tt.want >= 0, GreaterOrEqual(a, b))
		assert.Equal(t, tt.want == 0, Equal(a, b))
		assert.Equal(t, -tt.want, Compare(b, a))
	}
}

func TestEqual_Properties(t *testing.T) {
	a := Of(1, 2, 3)
	b := New[int]()
	b.PushFront(3)
	b.PushFront(2)
	b.PushFront(1)
	c := a.Clone()

	assert.True(t, Equal(a, a))
	assert.True(t, Equal(a, b))
	assert.True(t, Equal(b, a))
	assert.True(t, Equal(b, c))
	assert.True(t, Equal(a, c))

	assert.False(t, Equal(a, Of(1, 2)))
	assert.False(t, Equal(a, Of(1, 2, 4)))
}

func TestEqualFunc(t *testing.T) {
	a := Of("Foo", "BAR")
	b := Of("foo", "bar")
	assert.False(t, Equal(a, b))
	assert.True(t, EqualFunc(a, b, strings.EqualFold))
}

func TestCompareFunc(t *testing.T) {
	byLen := func(x, y string) int { return len(x) - len(y) }
	assert.Negative(t, CompareFunc(Of("aa", "b"), Of("aa", "bb"), byLen))
	assert.Zero(t, CompareFunc(Of("aa"), Of("bb"), byLen))
	assert.Positive(t, CompareFunc(Of("aaa"), Of("b", "c"), byLen))
}
